package store_test

import (
	"context"
	"errors"
	"testing"

	"casino401k-backend/internal/config"
	"casino401k-backend/internal/ledger"
	"casino401k-backend/internal/models"
	"casino401k-backend/internal/store"
)

func setupRedis(t *testing.T) *store.Redis {
	t.Helper()

	cfg := &config.Config{
		RedisAddr:     "localhost:6379",
		RedisPassword: "",
		RedisDB:       0,
	}

	s, err := store.NewRedis(cfg)
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	return s
}

func TestRedisAccountLifecycle(t *testing.T) {
	s := setupRedis(t)
	defer s.Close()

	ctx := context.Background()
	userID := "redis-test-user"
	defer s.DeleteAccount(ctx, userID)

	account, err := s.LoadAccount(ctx, userID)
	if err != nil {
		t.Fatalf("failed to load account: %v", err)
	}
	if account.Balance != models.InitialBalance {
		t.Errorf("fresh balance = %d, want %d", account.Balance, models.InitialBalance)
	}

	txn := &models.Transaction{
		ID:          models.GenerateTransactionID(),
		UserID:      userID,
		Type:        models.TransactionTypeDebit,
		Amount:      1000,
		Description: "Blackjack bet",
	}

	applied, err := s.ApplyTransaction(ctx, userID, txn)
	if err != nil {
		t.Fatalf("failed to apply debit: %v", err)
	}
	if applied.BalanceAfter != models.InitialBalance-1000 {
		t.Errorf("balance_after = %d, want %d", applied.BalanceAfter, models.InitialBalance-1000)
	}

	history, err := s.RecentTransactions(ctx, userID, 2)
	if err != nil {
		t.Fatalf("failed to read history: %v", err)
	}
	if len(history) != 2 || history[0].ID != txn.ID {
		t.Errorf("newest history entry is not the applied transaction")
	}
}

func TestRedisInsufficientFunds(t *testing.T) {
	s := setupRedis(t)
	defer s.Close()

	ctx := context.Background()
	userID := "redis-test-broke"
	defer s.DeleteAccount(ctx, userID)

	txn := &models.Transaction{
		ID:     models.GenerateTransactionID(),
		UserID: userID,
		Type:   models.TransactionTypeDebit,
		Amount: models.InitialBalance + 1,
	}

	if _, err := s.ApplyTransaction(ctx, userID, txn); !errors.Is(err, ledger.ErrInsufficientFunds) {
		t.Fatalf("error = %v, want ErrInsufficientFunds", err)
	}

	account, _ := s.LoadAccount(ctx, userID)
	if account.Balance != models.InitialBalance {
		t.Errorf("failed debit moved balance to %d", account.Balance)
	}
}

func TestRedisPendingPayouts(t *testing.T) {
	s := setupRedis(t)
	defer s.Close()

	ctx := context.Background()
	payout := &models.PendingPayout{
		RoundID:     "redis-test-round",
		UserID:      "redis-test-user",
		Amount:      500,
		Description: "Roulette win",
	}
	defer s.RemovePayout(ctx, payout.RoundID)

	if err := s.EnqueuePayout(ctx, payout); err != nil {
		t.Fatalf("failed to enqueue payout: %v", err)
	}

	payouts, err := s.PendingPayouts(ctx)
	if err != nil {
		t.Fatalf("failed to list payouts: %v", err)
	}

	found := false
	for _, p := range payouts {
		if p.RoundID == payout.RoundID && p.Amount == 500 {
			found = true
		}
	}
	if !found {
		t.Error("enqueued payout not found in pending set")
	}

	if err := s.RemovePayout(ctx, payout.RoundID); err != nil {
		t.Fatalf("failed to remove payout: %v", err)
	}
}
