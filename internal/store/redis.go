// Package store implements the ledger's persistence gateway. The Redis
// store keeps each account as one JSON aggregate and mutates it through
// Lua scripts, so a balance change and its transaction append commit as a
// single atomic step.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"casino401k-backend/internal/config"
	"casino401k-backend/internal/ledger"
	"casino401k-backend/internal/models"
)

type Redis struct {
	client *redis.Client
}

func NewRedis(cfg *config.Config) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %v", err)
	}

	return &Redis{client: client}, nil
}

func (s *Redis) Close() error {
	return s.client.Close()
}

// applyTxnScript applies one transaction to the account aggregate: it
// checks funds, moves the balance, stamps balance_after onto the entry,
// prepends it, and trims the log — all in one script execution.
var applyTxnScript = redis.NewScript(`
	local data = redis.call("GET", KEYS[1])
	if not data then
		return redis.error_reply("account not found")
	end

	local account = cjson.decode(data)
	local txn = cjson.decode(ARGV[1])
	local amount = tonumber(ARGV[2])
	local max = tonumber(ARGV[3])

	if ARGV[4] == "debit" then
		if account.balance < amount then
			return redis.error_reply("insufficient balance")
		end
		account.balance = account.balance - amount
	else
		account.balance = account.balance + amount
	end

	txn.balance_after = account.balance

	local trimmed = { txn }
	local keep = max - 1
	for i = 1, math.min(#account.transactions, keep) do
		trimmed[i + 1] = account.transactions[i]
	end
	account.transactions = trimmed

	redis.call("SET", KEYS[1], cjson.encode(account))
	return account.balance
`)

func (s *Redis) LoadAccount(ctx context.Context, userID string) (*models.Account, error) {
	key := fmt.Sprintf(KeyAccount, userID)

	data, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		account := models.NewAccount(userID)
		created, err := s.createAccount(ctx, key, account)
		if err != nil {
			return nil, err
		}
		if created {
			return account, nil
		}
		// Another writer beat us to it; read theirs.
		data, err = s.client.Get(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ledger.ErrPersistence, err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrPersistence, err)
	}

	var account models.Account
	if err := json.Unmarshal([]byte(data), &account); err != nil {
		return nil, fmt.Errorf("%w: corrupt account payload: %v", ledger.ErrPersistence, err)
	}
	return &account, nil
}

func (s *Redis) createAccount(ctx context.Context, key string, account *models.Account) (bool, error) {
	data, err := json.Marshal(account)
	if err != nil {
		return false, fmt.Errorf("failed to marshal account: %v", err)
	}

	created, err := s.client.SetNX(ctx, key, data, 0).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ledger.ErrPersistence, err)
	}
	return created, nil
}

func (s *Redis) ApplyTransaction(ctx context.Context, userID string, txn *models.Transaction) (*models.Transaction, error) {
	// Lazily create the account so a first bet works without a prior read.
	if _, err := s.LoadAccount(ctx, userID); err != nil {
		return nil, err
	}

	key := fmt.Sprintf(KeyAccount, userID)

	payload, err := json.Marshal(txn)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transaction: %v", err)
	}

	newBalance, err := applyTxnScript.Run(ctx, s.client, []string{key},
		payload, txn.Amount, models.MaxTransactions, string(txn.Type)).Int64()
	if err != nil {
		if strings.Contains(err.Error(), "insufficient balance") {
			return nil, ledger.ErrInsufficientFunds
		}
		if strings.Contains(err.Error(), "account not found") {
			return nil, ledger.ErrAccountNotFound
		}
		return nil, fmt.Errorf("%w: %v", ledger.ErrPersistence, err)
	}

	applied := *txn
	applied.BalanceAfter = newBalance
	return &applied, nil
}

func (s *Redis) ResetAccount(ctx context.Context, userID string, account *models.Account) error {
	key := fmt.Sprintf(KeyAccount, userID)

	data, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("failed to marshal account: %v", err)
	}

	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ledger.ErrPersistence, err)
	}
	return nil
}

func (s *Redis) RecentTransactions(ctx context.Context, userID string, limit int) ([]models.Transaction, error) {
	account, err := s.LoadAccount(ctx, userID)
	if err != nil {
		return nil, err
	}

	if limit > len(account.Transactions) {
		limit = len(account.Transactions)
	}
	return account.Transactions[:limit], nil
}

func (s *Redis) DeleteAccount(ctx context.Context, userID string) error {
	return s.client.Del(ctx, fmt.Sprintf(KeyAccount, userID)).Err()
}

func (s *Redis) EnqueuePayout(ctx context.Context, payout *models.PendingPayout) error {
	data, err := json.Marshal(payout)
	if err != nil {
		return fmt.Errorf("failed to marshal pending payout: %v", err)
	}

	if err := s.client.HSet(ctx, KeyPendingPayouts, payout.RoundID, data).Err(); err != nil {
		return fmt.Errorf("%w: %v", ledger.ErrPersistence, err)
	}
	return nil
}

func (s *Redis) PendingPayouts(ctx context.Context) ([]*models.PendingPayout, error) {
	entries, err := s.client.HGetAll(ctx, KeyPendingPayouts).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %v", ledger.ErrPersistence, err)
	}

	payouts := make([]*models.PendingPayout, 0, len(entries))
	for _, data := range entries {
		var payout models.PendingPayout
		if err := json.Unmarshal([]byte(data), &payout); err != nil {
			continue
		}
		payouts = append(payouts, &payout)
	}
	return payouts, nil
}

func (s *Redis) RemovePayout(ctx context.Context, roundID string) error {
	return s.client.HDel(ctx, KeyPendingPayouts, roundID).Err()
}

// CheckRateLimit counts hits per user per action in a rolling window.
func (s *Redis) CheckRateLimit(ctx context.Context, userID, action string, limit int, window time.Duration) (bool, error) {
	key := fmt.Sprintf(KeyRateLimit, userID, action)

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit: %v", err)
	}

	if count == 1 {
		s.client.Expire(ctx, key, window)
	}

	return count <= int64(limit), nil
}
