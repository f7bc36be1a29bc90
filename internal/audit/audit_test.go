package audit_test

import (
	"context"
	"testing"
	"time"

	"casino401k-backend/internal/audit"
	"casino401k-backend/internal/models"
)

func TestAppendAndQuery(t *testing.T) {
	log, err := audit.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open audit log: %v", err)
	}
	defer log.Close()

	ctx := context.Background()

	session := &models.GameSession{
		ID:           models.GenerateSessionID(),
		UserID:       "alice",
		GameType:     models.GameTypeSlots,
		BetAmount:    250,
		PayoutAmount: 1250,
		Result:       "win",
		Details: map[string]any{
			"lines": []any{"line-2"},
		},
		RNGSeed:   "123456789",
		CreatedAt: time.Now().UTC(),
	}

	if err := log.Append(ctx, session); err != nil {
		t.Fatalf("failed to append session: %v", err)
	}

	sessions, err := log.RecentSessions(ctx, "alice", 10)
	if err != nil {
		t.Fatalf("failed to query sessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("got %d sessions, want 1", len(sessions))
	}

	got := sessions[0]
	if got.ID != session.ID || got.RNGSeed != "123456789" || got.PayoutAmount != 1250 {
		t.Errorf("stored session does not match appended one: %+v", got)
	}
	if got.GameType != models.GameTypeSlots {
		t.Errorf("game type = %s, want %s", got.GameType, models.GameTypeSlots)
	}
}

func TestRecentSessionsNewestFirst(t *testing.T) {
	log, err := audit.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open audit log: %v", err)
	}
	defer log.Close()

	ctx := context.Background()
	base := time.Now().UTC()

	for i := 0; i < 3; i++ {
		session := &models.GameSession{
			ID:        models.GenerateSessionID(),
			UserID:    "alice",
			GameType:  models.GameTypeRoulette,
			BetAmount: int64(100 * (i + 1)),
			Result:    "loss",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := log.Append(ctx, session); err != nil {
			t.Fatalf("failed to append session %d: %v", i, err)
		}
	}

	sessions, err := log.RecentSessions(ctx, "alice", 2)
	if err != nil {
		t.Fatalf("failed to query sessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("got %d sessions, want 2", len(sessions))
	}
	if sessions[0].BetAmount != 300 || sessions[1].BetAmount != 200 {
		t.Errorf("sessions not newest-first: bets [%d, %d]", sessions[0].BetAmount, sessions[1].BetAmount)
	}

	other, err := log.RecentSessions(ctx, "bob", 10)
	if err != nil {
		t.Fatalf("failed to query empty user: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("bob has %d sessions, want 0", len(other))
	}
}
