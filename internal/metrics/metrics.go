// Package metrics exposes Prometheus instrumentation for the ledger and
// the round controllers.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TransactionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "casino_ledger_transactions_total",
		Help: "Ledger transactions applied, by type (debit/credit).",
	}, []string{"type"})

	TokensMoved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "casino_ledger_tokens_moved_total",
		Help: "Token volume through the ledger, by transaction type.",
	}, []string{"type"})

	LedgerFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "casino_ledger_failures_total",
		Help: "Ledger operations rejected or failed, by attempted type.",
	}, []string{"type"})

	RoundsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "casino_rounds_total",
		Help: "Settled rounds, by game and outcome.",
	}, []string{"game", "outcome"})

	PayoutTokens = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "casino_round_payout_tokens_total",
		Help: "Tokens credited back by settled rounds, by game.",
	}, []string{"game"})

	PendingPayoutRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "casino_pending_payout_retries_total",
		Help: "Retry attempts for payouts that failed to credit at settlement.",
	})

	PendingPayoutsResolved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "casino_pending_payouts_resolved_total",
		Help: "Stranded payouts eventually applied by the reconciler.",
	})
)
