package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"casino401k-backend/internal/audit"
	"casino401k-backend/internal/ledger"
	"casino401k-backend/internal/middleware"
	"casino401k-backend/internal/models"
	"casino401k-backend/internal/services"
)

type UserHandler struct {
	ledger     *ledger.Ledger
	jwtService *services.JWTService
	audit      *audit.Log
}

func NewUserHandler(l *ledger.Ledger, jwtService *services.JWTService, auditLog *audit.Log) *UserHandler {
	return &UserHandler{
		ledger:     l,
		jwtService: jwtService,
		audit:      auditLog,
	}
}

type sessionRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// CreateSession issues a session token for a player name. There is no
// password: the stakes are satirical retirement tokens.
func (h *UserHandler) CreateSession(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	sessionID := models.GenerateSessionID()
	token, err := h.jwtService.GenerateToken(req.UserID, sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"user_id":    req.UserID,
		"session_id": sessionID,
	})
}

// GetCurrentUser returns the identity plus the account aggregate, creating
// the account with its initial grant on first touch.
func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	userID := middleware.UserID(c)

	account, err := h.ledger.Account(c.Request.Context(), userID)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	sessionID, _ := c.Get("session_id")

	c.JSON(http.StatusOK, gin.H{
		"user_id":    userID,
		"session_id": sessionID,
		"wallet": gin.H{
			"balance":      account.Balance,
			"transactions": account.Transactions,
		},
	})
}

// GetGameSessions returns the user's settled rounds from the audit log,
// seeds included, so any payout can be independently re-derived.
func (h *UserHandler) GetGameSessions(c *gin.Context) {
	userID := middleware.UserID(c)

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
			return
		}
		limit = parsed
	}

	sessions, err := h.audit.RecentSessions(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load game sessions", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessions": sessions,
	})
}
