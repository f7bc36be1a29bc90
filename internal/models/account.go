package models

import "time"

const (
	// InitialBalance is the token grant every account starts with.
	InitialBalance int64 = 401000

	// MaxTransactions bounds the per-account transaction log.
	MaxTransactions = 50

	// SeedDescription labels the credit that opens every fresh ledger.
	SeedDescription = "Initial satirical 401k deposit"
)

type TransactionType string

const (
	TransactionTypeDebit  TransactionType = "debit"
	TransactionTypeCredit TransactionType = "credit"
)

// Transaction is an immutable ledger entry. BalanceAfter snapshots the
// account balance immediately after the entry was applied.
type Transaction struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	Type         TransactionType `json:"type"`
	Amount       int64           `json:"amount"`
	BalanceAfter int64           `json:"balance_after"`
	Description  string          `json:"description"`
	GameID       string          `json:"game_id,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Account is the ledger aggregate for one user: the authoritative balance
// plus the bounded, newest-first transaction log. Only the ledger service
// mutates it, and only through whole-aggregate atomic writes.
type Account struct {
	UserID       string        `json:"user_id"`
	Balance      int64         `json:"balance"`
	Transactions []Transaction `json:"transactions"`
}

// NewAccount builds a fresh account holding the initial grant and its
// single seed credit transaction.
func NewAccount(userID string) *Account {
	seed := Transaction{
		ID:           GenerateTransactionID(),
		UserID:       userID,
		Type:         TransactionTypeCredit,
		Amount:       InitialBalance,
		BalanceAfter: InitialBalance,
		Description:  SeedDescription,
		CreatedAt:    time.Now().UTC(),
	}

	return &Account{
		UserID:       userID,
		Balance:      InitialBalance,
		Transactions: []Transaction{seed},
	}
}
