package store

import (
	"context"
	"sync"

	"casino401k-backend/internal/ledger"
	"casino401k-backend/internal/models"
)

// Memory is an in-process gateway with the same contract as the Redis
// store. Tests and single-process development run against it.
type Memory struct {
	mu       sync.Mutex
	accounts map[string]*models.Account
	payouts  map[string]*models.PendingPayout
}

func NewMemory() *Memory {
	return &Memory{
		accounts: make(map[string]*models.Account),
		payouts:  make(map[string]*models.PendingPayout),
	}
}

func (s *Memory) LoadAccount(ctx context.Context, userID string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(userID), nil
}

func (s *Memory) loadLocked(userID string) *models.Account {
	account, ok := s.accounts[userID]
	if !ok {
		account = models.NewAccount(userID)
		s.accounts[userID] = account
	}
	return copyAccount(account)
}

func (s *Memory) ApplyTransaction(ctx context.Context, userID string, txn *models.Transaction) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loadLocked(userID)
	account := s.accounts[userID]

	switch txn.Type {
	case models.TransactionTypeDebit:
		if txn.Amount > account.Balance {
			return nil, ledger.ErrInsufficientFunds
		}
		account.Balance -= txn.Amount
	case models.TransactionTypeCredit:
		account.Balance += txn.Amount
	default:
		return nil, ledger.ErrInvalidAmount
	}

	applied := *txn
	applied.BalanceAfter = account.Balance

	account.Transactions = append([]models.Transaction{applied}, account.Transactions...)
	if len(account.Transactions) > models.MaxTransactions {
		account.Transactions = account.Transactions[:models.MaxTransactions]
	}

	return &applied, nil
}

func (s *Memory) ResetAccount(ctx context.Context, userID string, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts[userID] = copyAccount(account)
	return nil
}

func (s *Memory) RecentTransactions(ctx context.Context, userID string, limit int) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account := s.loadLocked(userID)
	if limit > len(account.Transactions) {
		limit = len(account.Transactions)
	}
	return account.Transactions[:limit], nil
}

func (s *Memory) EnqueuePayout(ctx context.Context, payout *models.PendingPayout) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *payout
	s.payouts[payout.RoundID] = &clone
	return nil
}

func (s *Memory) PendingPayouts(ctx context.Context) ([]*models.PendingPayout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	payouts := make([]*models.PendingPayout, 0, len(s.payouts))
	for _, payout := range s.payouts {
		clone := *payout
		payouts = append(payouts, &clone)
	}
	return payouts, nil
}

func (s *Memory) RemovePayout(ctx context.Context, roundID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.payouts, roundID)
	return nil
}

func copyAccount(account *models.Account) *models.Account {
	clone := *account
	clone.Transactions = append([]models.Transaction(nil), account.Transactions...)
	return &clone
}
