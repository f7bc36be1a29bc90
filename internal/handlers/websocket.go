package handlers

import (
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"casino401k-backend/internal/ledger"
	"casino401k-backend/internal/middleware"
	"casino401k-backend/internal/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Message struct {
	Type string `json:"type"`
	Game string `json:"game,omitempty"`
	Data any    `json:"data,omitempty"`
}

type Client struct {
	UserID string
	Conn   *websocket.Conn

	mu sync.Mutex // websocket writes are not concurrency-safe
}

func (c *Client) send(msg *Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteJSON(msg)
}

// WebSocketHandler pushes balance and settlement updates to connected
// clients. It implements rounds.Broadcaster.
type WebSocketHandler struct {
	ledger *ledger.Ledger

	mu      sync.Mutex
	clients map[string][]*Client
}

func NewWebSocketHandler(l *ledger.Ledger) *WebSocketHandler {
	return &WebSocketHandler{
		ledger:  l,
		clients: make(map[string][]*Client),
	}
}

func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	userID := middleware.UserID(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade to WebSocket: %v", err)
		return
	}

	client := &Client{UserID: userID, Conn: conn}
	h.register(client)

	defer func() {
		h.unregister(client)
		conn.Close()
	}()

	h.sendBalance(c, client)

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		switch msg.Type {
		case "PING":
			client.send(&Message{Type: "PONG"})
		case "BALANCE":
			h.sendBalance(c, client)
		}
	}
}

func (h *WebSocketHandler) register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.UserID] = append(h.clients[client.UserID], client)
}

func (h *WebSocketHandler) unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns := h.clients[client.UserID]
	for i, existing := range conns {
		if existing == client {
			h.clients[client.UserID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(h.clients[client.UserID]) == 0 {
		delete(h.clients, client.UserID)
	}
}

func (h *WebSocketHandler) sendBalance(c *gin.Context, client *Client) {
	balance, err := h.ledger.Balance(c.Request.Context(), client.UserID)
	if err != nil {
		log.Printf("Failed to read balance for WS push: %v", err)
		return
	}
	client.send(&Message{Type: "BALANCE_UPDATE", Data: gin.H{"balance": balance}})
}

func (h *WebSocketHandler) push(userID string, msg *Message) {
	h.mu.Lock()
	conns := append([]*Client(nil), h.clients[userID]...)
	h.mu.Unlock()

	for _, client := range conns {
		if err := client.send(msg); err != nil {
			log.Printf("Failed to push %s to %s: %v", msg.Type, userID, err)
		}
	}
}

// BalanceUpdate implements rounds.Broadcaster.
func (h *WebSocketHandler) BalanceUpdate(userID string, balance int64) {
	h.push(userID, &Message{Type: "BALANCE_UPDATE", Data: gin.H{"balance": balance}})
}

// RoundSettled implements rounds.Broadcaster.
func (h *WebSocketHandler) RoundSettled(userID string, game models.GameType, entry models.HistoryEntry) {
	h.push(userID, &Message{Type: "ROUND_SETTLED", Game: string(game), Data: entry})
}
