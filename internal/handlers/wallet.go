package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"casino401k-backend/internal/export"
	"casino401k-backend/internal/ledger"
	"casino401k-backend/internal/middleware"
	"casino401k-backend/internal/models"
)

type WalletHandler struct {
	ledger *ledger.Ledger
}

func NewWalletHandler(l *ledger.Ledger) *WalletHandler {
	return &WalletHandler{ledger: l}
}

func (h *WalletHandler) GetBalance(c *gin.Context) {
	userID := middleware.UserID(c)

	balance, err := h.ledger.Balance(c.Request.Context(), userID)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"balance": balance,
	})
}

func (h *WalletHandler) GetHistory(c *gin.Context) {
	userID := middleware.UserID(c)

	limit := models.MaxTransactions
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
			return
		}
		limit = parsed
	}

	transactions, err := h.ledger.History(c.Request.Context(), userID, limit)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	balance, err := h.ledger.Balance(c.Request.Context(), userID)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"balance":      balance,
		"transactions": transactions,
	})
}

// ResetAccount restores the initial grant. The satirical 401k always
// refills.
func (h *WalletHandler) ResetAccount(c *gin.Context) {
	userID := middleware.UserID(c)

	account, err := h.ledger.Reset(c.Request.Context(), userID)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"balance":      account.Balance,
		"transactions": account.Transactions,
	})
}

// ExportCSV streams the transaction history as a statement download.
func (h *WalletHandler) ExportCSV(c *gin.Context) {
	userID := middleware.UserID(c)

	transactions, err := h.ledger.History(c.Request.Context(), userID, export.ExportLimit)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	filename := export.Filename(userID, time.Now())
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := export.WriteCSV(c.Writer, transactions); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export transactions", "details": err.Error()})
		return
	}
}

// respondLedgerError maps ledger sentinels to HTTP statuses.
func respondLedgerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ledger.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
	case errors.Is(err, ledger.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
	case errors.Is(err, ledger.ErrInsufficientFunds):
		c.JSON(http.StatusConflict, gin.H{"error": "Insufficient 401k tokens for that bet"})
	case errors.Is(err, ledger.ErrAccountNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ledger operation failed", "details": err.Error()})
	}
}
