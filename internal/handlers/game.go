package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"casino401k-backend/internal/games"
	"casino401k-backend/internal/middleware"
	"casino401k-backend/internal/models"
	"casino401k-backend/internal/rounds"
)

type GameHandler struct {
	engine *rounds.Engine
}

func NewGameHandler(engine *rounds.Engine) *GameHandler {
	return &GameHandler{engine: engine}
}

// --- Blackjack ---

func (h *GameHandler) BlackjackState(c *gin.Context) {
	userID := middleware.UserID(c)
	c.JSON(http.StatusOK, h.blackjackResponse(userID, h.engine.BlackjackState(userID)))
}

func (h *GameHandler) BlackjackBet(c *gin.Context) {
	userID := middleware.UserID(c)

	var req models.BetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	round, err := h.engine.BlackjackBet(c.Request.Context(), userID, req.Amount)
	if err != nil {
		respondRoundError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.blackjackResponse(userID, round))
}

func (h *GameHandler) BlackjackHit(c *gin.Context) {
	userID := middleware.UserID(c)

	round, err := h.engine.BlackjackHit(c.Request.Context(), userID)
	if err != nil {
		respondRoundError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.blackjackResponse(userID, round))
}

func (h *GameHandler) BlackjackStand(c *gin.Context) {
	userID := middleware.UserID(c)

	round, err := h.engine.BlackjackStand(c.Request.Context(), userID)
	if err != nil {
		respondRoundError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.blackjackResponse(userID, round))
}

func (h *GameHandler) BlackjackNewRound(c *gin.Context) {
	userID := middleware.UserID(c)

	round, err := h.engine.BlackjackNewRound(userID)
	if err != nil {
		respondRoundError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.blackjackResponse(userID, round))
}

// blackjackResponse masks the dealer hole card while the player is still
// acting. The full hand never leaves the server mid-round.
func (h *GameHandler) blackjackResponse(userID string, round *rounds.BlackjackRound) gin.H {
	dealerHand := round.DealerHand
	if round.HideDealerHole && len(dealerHand) > 0 {
		dealerHand = dealerHand[:1]
	}

	return gin.H{
		"round": gin.H{
			"id":               round.ID,
			"stage":            round.Stage,
			"stake":            round.Stake,
			"player_hand":      round.PlayerHand,
			"dealer_hand":      dealerHand,
			"player_total":     round.PlayerTotal,
			"dealer_total":     round.DealerTotal,
			"hide_dealer_hole": round.HideDealerHole,
			"outcome":          round.Outcome,
			"payout":           round.Payout,
			"message":          round.Message,
			"ledger_note":      round.LedgerNote,
		},
		"history":    h.engine.History(userID, models.GameTypeBlackjack),
		"last_stake": h.engine.LastStake(userID, models.GameTypeBlackjack),
	}
}

// --- High-Low ---

func (h *GameHandler) HighLowState(c *gin.Context) {
	userID := middleware.UserID(c)
	c.JSON(http.StatusOK, h.highLowResponse(userID, h.engine.HighLowState(userID)))
}

func (h *GameHandler) HighLowBet(c *gin.Context) {
	userID := middleware.UserID(c)

	var req models.BetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	round, err := h.engine.HighLowBet(c.Request.Context(), userID, req.Amount)
	if err != nil {
		respondRoundError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.highLowResponse(userID, round))
}

func (h *GameHandler) HighLowChoose(c *gin.Context) {
	userID := middleware.UserID(c)

	var req models.HighLowChoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Direction must be higher or lower"})
		return
	}

	round, err := h.engine.HighLowChoose(c.Request.Context(), userID, games.Direction(req.Direction))
	if err != nil {
		respondRoundError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.highLowResponse(userID, round))
}

func (h *GameHandler) highLowResponse(userID string, round *rounds.HighLowRound) gin.H {
	return gin.H{
		"round":      round,
		"history":    h.engine.History(userID, models.GameTypeHighLow),
		"last_stake": h.engine.LastStake(userID, models.GameTypeHighLow),
	}
}

// --- Slots ---

func (h *GameHandler) SlotsState(c *gin.Context) {
	userID := middleware.UserID(c)
	c.JSON(http.StatusOK, h.slotsResponse(userID, h.engine.SlotsState(userID)))
}

func (h *GameHandler) SlotsSpin(c *gin.Context) {
	userID := middleware.UserID(c)

	var req models.SlotsSpinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.engine.SlotsSpin(c.Request.Context(), userID, req.Amount)
	if err != nil {
		respondRoundError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.slotsResponse(userID, result))
}

// SlotsPaytable describes the symbols, lines, and chip sizes so the UI
// renders from the same tables the resolver settles with.
func (h *GameHandler) SlotsPaytable(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"symbols":            games.SlotSymbols,
		"paylines":           games.Paylines,
		"bet_options":        models.SlotsBetOptions,
		"jackpot_multiplier": games.JackpotMultiplier,
	})
}

func (h *GameHandler) slotsResponse(userID string, result *rounds.SlotsResult) gin.H {
	return gin.H{
		"spin":       result,
		"history":    h.engine.History(userID, models.GameTypeSlots),
		"last_stake": h.engine.LastStake(userID, models.GameTypeSlots),
	}
}

// --- Roulette ---

func (h *GameHandler) RouletteState(c *gin.Context) {
	userID := middleware.UserID(c)
	c.JSON(http.StatusOK, h.rouletteResponse(userID, h.engine.RouletteState(userID)))
}

func (h *GameHandler) RouletteSpin(c *gin.Context) {
	userID := middleware.UserID(c)

	var req models.RouletteSpinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.engine.RouletteSpin(c.Request.Context(), userID, req.Amount, games.RouletteColor(req.Color))
	if err != nil {
		respondRoundError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.rouletteResponse(userID, result))
}

func (h *GameHandler) rouletteResponse(userID string, result *rounds.RouletteResult) gin.H {
	return gin.H{
		"spin":       result,
		"history":    h.engine.History(userID, models.GameTypeRoulette),
		"last_stake": h.engine.LastStake(userID, models.GameTypeRoulette),
	}
}

func respondRoundError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, rounds.ErrRoundInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": "A round is already in progress"})
	case errors.Is(err, rounds.ErrNoActiveRound):
		c.JSON(http.StatusConflict, gin.H{"error": "No active round"})
	case errors.Is(err, rounds.ErrInvalidAction):
		c.JSON(http.StatusConflict, gin.H{"error": "Action not valid right now"})
	case errors.Is(err, rounds.ErrInvalidStake):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bet must be one of the fixed chip sizes"})
	case errors.Is(err, rounds.ErrInvalidColor):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Pick red or black before spinning"})
	default:
		respondLedgerError(c, err)
	}
}
