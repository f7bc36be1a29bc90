package ledger

import "errors"

// Ledger failures are sentinels so callers can branch with errors.Is.
var (
	// ErrInvalidAmount rejects non-positive token amounts.
	ErrInvalidAmount = errors.New("amount must be a positive number of tokens")

	// ErrInsufficientFunds rejects a debit larger than the balance.
	ErrInsufficientFunds = errors.New("insufficient 401k tokens for that bet")

	// ErrUnauthenticated rejects operations without a resolved user identity.
	ErrUnauthenticated = errors.New("you need to be logged in to manage tokens")

	// ErrAccountNotFound reports a missing account aggregate.
	ErrAccountNotFound = errors.New("account not found")

	// ErrPersistence wraps store failures; the in-memory view is never
	// allowed to run ahead of the durable one.
	ErrPersistence = errors.New("ledger store unavailable")
)
