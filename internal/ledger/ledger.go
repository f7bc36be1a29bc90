// Package ledger is the sole authority over token balance mutation. Every
// debit and credit flows through here; game code never writes balance or
// transactions directly.
package ledger

import (
	"context"
	"sync"
	"time"

	"casino401k-backend/internal/metrics"
	"casino401k-backend/internal/models"
)

// Gateway is the persistence contract the ledger consumes. ApplyTransaction
// must be atomic: either the balance moves and the entry is appended, or
// nothing changes.
type Gateway interface {
	LoadAccount(ctx context.Context, userID string) (*models.Account, error)
	ApplyTransaction(ctx context.Context, userID string, txn *models.Transaction) (*models.Transaction, error)
	ResetAccount(ctx context.Context, userID string, account *models.Account) error
	RecentTransactions(ctx context.Context, userID string, limit int) ([]models.Transaction, error)
}

type Ledger struct {
	gateway Gateway

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(gateway Gateway) *Ledger {
	return &Ledger{
		gateway: gateway,
		locks:   make(map[string]*sync.Mutex),
	}
}

// userLock serializes ledger operations per account. The store's atomic
// scripts already prevent corruption; the lock keeps one user's debits and
// credits ordered the way their rounds issued them.
func (l *Ledger) userLock(userID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[userID] = lock
	}
	return lock
}

// Debit removes tokens from the account and appends the matching
// transaction. Fails without any observable effect on ErrInvalidAmount or
// ErrInsufficientFunds.
func (l *Ledger) Debit(ctx context.Context, userID string, amount int64, description, gameID string) (*models.Transaction, error) {
	return l.apply(ctx, userID, models.TransactionTypeDebit, amount, description, gameID)
}

// Credit adds tokens to the account and appends the matching transaction.
func (l *Ledger) Credit(ctx context.Context, userID string, amount int64, description, gameID string) (*models.Transaction, error) {
	return l.apply(ctx, userID, models.TransactionTypeCredit, amount, description, gameID)
}

func (l *Ledger) apply(ctx context.Context, userID string, txType models.TransactionType, amount int64, description, gameID string) (*models.Transaction, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	lock := l.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	txn := &models.Transaction{
		ID:          models.GenerateTransactionID(),
		UserID:      userID,
		Type:        txType,
		Amount:      amount,
		Description: description,
		GameID:      gameID,
		CreatedAt:   time.Now().UTC(),
	}

	applied, err := l.gateway.ApplyTransaction(ctx, userID, txn)
	if err != nil {
		metrics.LedgerFailures.WithLabelValues(string(txType)).Inc()
		return nil, err
	}

	metrics.TransactionsTotal.WithLabelValues(string(txType)).Inc()
	metrics.TokensMoved.WithLabelValues(string(txType)).Add(float64(amount))
	return applied, nil
}

// Balance reports the current token balance, creating the account with its
// initial grant on first access.
func (l *Ledger) Balance(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, ErrUnauthenticated
	}

	account, err := l.gateway.LoadAccount(ctx, userID)
	if err != nil {
		return 0, err
	}
	return account.Balance, nil
}

// Account returns the full aggregate for the user.
func (l *Ledger) Account(ctx context.Context, userID string) (*models.Account, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	return l.gateway.LoadAccount(ctx, userID)
}

// History returns up to limit transactions, newest first.
func (l *Ledger) History(ctx context.Context, userID string, limit int) ([]models.Transaction, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if limit <= 0 || limit > models.MaxTransactions {
		limit = models.MaxTransactions
	}
	return l.gateway.RecentTransactions(ctx, userID, limit)
}

// Reset restores the account to its initial state: the starting balance and
// a single seed credit transaction. Calling it twice yields the same state.
func (l *Ledger) Reset(ctx context.Context, userID string) (*models.Account, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	lock := l.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	account := models.NewAccount(userID)
	if err := l.gateway.ResetAccount(ctx, userID, account); err != nil {
		return nil, err
	}
	return account, nil
}
