package rounds

import (
	"context"
	"log"
	"time"

	"casino401k-backend/internal/ledger"
	"casino401k-backend/internal/metrics"
)

// Settler retries pending payouts until each is durably applied. A payout
// is removed from the queue only after its credit lands, so a crash between
// credit and removal can pay a round twice; the queue is never allowed to
// silently drop an owed amount.
type Settler struct {
	ledger   *ledger.Ledger
	queue    PayoutQueue
	interval time.Duration
}

func NewSettler(l *ledger.Ledger, queue PayoutQueue, interval time.Duration) *Settler {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Settler{ledger: l, queue: queue, interval: interval}
}

// Run reconciles on a fixed interval until the context is cancelled.
func (s *Settler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Reconcile(ctx)
		}
	}
}

// Reconcile attempts every pending payout once and returns how many were
// applied. Failures stay queued for the next pass.
func (s *Settler) Reconcile(ctx context.Context) int {
	payouts, err := s.queue.PendingPayouts(ctx)
	if err != nil {
		log.Printf("failed to list pending payouts: %v", err)
		return 0
	}

	applied := 0
	for _, payout := range payouts {
		metrics.PendingPayoutRetries.Inc()

		if _, err := s.ledger.Credit(ctx, payout.UserID, payout.Amount, payout.Description, payout.RoundID); err != nil {
			log.Printf("pending payout %s (user %s, %d tokens) still failing: %v",
				payout.RoundID, payout.UserID, payout.Amount, err)
			continue
		}

		if err := s.queue.RemovePayout(ctx, payout.RoundID); err != nil {
			// The credit landed but the queue entry survived; the next pass
			// will pay again. Loud log beats a silent shortfall.
			log.Printf("RECONCILE: payout %s applied but not dequeued: %v", payout.RoundID, err)
			continue
		}

		metrics.PendingPayoutsResolved.Inc()
		applied++
	}
	return applied
}
