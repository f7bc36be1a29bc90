package rounds_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"casino401k-backend/internal/deck"
	"casino401k-backend/internal/games"
	"casino401k-backend/internal/ledger"
	"casino401k-backend/internal/models"
	"casino401k-backend/internal/rng"
	"casino401k-backend/internal/rounds"
	"casino401k-backend/internal/store"
)

// fixture wires an engine against the in-memory gateway with a counted
// seed sequence, so every test run deals the same rounds.
type fixture struct {
	engine *rounds.Engine
	ledger *ledger.Ledger
	store  *store.Memory
	seed   uint64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mem := store.NewMemory()
	l := ledger.New(mem)
	f := &fixture{
		engine: rounds.NewEngine(l, mem, nil, nil),
		ledger: l,
		store:  mem,
		seed:   1000,
	}
	f.engine.SetSourceFactory(func() *rng.Source {
		f.seed++
		return rng.New(f.seed)
	})
	return f
}

func (f *fixture) balance(t *testing.T, userID string) int64 {
	t.Helper()
	balance, err := f.ledger.Balance(context.Background(), userID)
	if err != nil {
		t.Fatalf("failed to read balance: %v", err)
	}
	return balance
}

// dealPlayerTurn bets until the deal survives past an immediate natural and
// the round is waiting on the player.
func (f *fixture) dealPlayerTurn(t *testing.T, userID string, stake int64) *rounds.BlackjackRound {
	t.Helper()
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		round, err := f.engine.BlackjackBet(ctx, userID, stake)
		if err != nil {
			t.Fatalf("blackjack bet failed: %v", err)
		}
		if round.Stage == models.StagePlayerTurn {
			return round
		}
	}
	t.Fatal("never dealt a hand that reached the player turn")
	return nil
}

func TestBlackjackBetConservesTokens(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	before := f.balance(t, "alice")
	round, err := f.engine.BlackjackBet(ctx, "alice", 1000)
	if err != nil {
		t.Fatalf("bet failed: %v", err)
	}

	// Whether or not the deal was a natural, the balance moved by exactly
	// the stake out and the settled payout (zero mid-round) back in.
	if got, want := f.balance(t, "alice"), before-1000+round.Payout; got != want {
		t.Errorf("balance = %d, want %d (stake 1000, payout %d)", got, want, round.Payout)
	}
	if len(round.PlayerHand) != 2 || len(round.DealerHand) != 2 {
		t.Errorf("deal sizes = %d/%d, want 2/2", len(round.PlayerHand), len(round.DealerHand))
	}
}

func TestBlackjackSecondBetRejectedMidRound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.dealPlayerTurn(t, "alice", 500)

	if _, err := f.engine.BlackjackBet(ctx, "alice", 500); !errors.Is(err, rounds.ErrRoundInProgress) {
		t.Errorf("second bet error = %v, want ErrRoundInProgress", err)
	}
}

func TestBlackjackStandSettles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	round := f.dealPlayerTurn(t, "alice", 500)
	afterDeal := f.balance(t, "alice")

	round, err := f.engine.BlackjackStand(ctx, "alice")
	if err != nil {
		t.Fatalf("stand failed: %v", err)
	}

	if round.Stage != models.StageRoundOver {
		t.Fatalf("stage after stand = %s, want round-over", round.Stage)
	}
	if round.HideDealerHole {
		t.Error("dealer hole still hidden after the round resolved")
	}

	outcome := games.SettleBlackjack(round.PlayerHand, round.DealerHand)
	if round.Outcome != string(outcome) {
		t.Errorf("outcome = %s, resolver says %s", round.Outcome, outcome)
	}
	if want := games.BlackjackPayout(outcome, 500); round.Payout != want {
		t.Errorf("payout = %d, want %d for outcome %s", round.Payout, want, outcome)
	}
	if games.HandValue(round.DealerHand) < games.DealerStandTotal {
		t.Errorf("dealer stopped under %d with %d", games.DealerStandTotal, games.HandValue(round.DealerHand))
	}

	if got, want := f.balance(t, "alice"), afterDeal+round.Payout; got != want {
		t.Errorf("balance = %d, want %d", got, want)
	}

	history := f.engine.History("alice", models.GameTypeBlackjack)
	if len(history) == 0 || history[0].ID != round.ID {
		t.Error("settled round missing from the top of history")
	}
}

func TestBlackjackHitPlaysToResolution(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	round := f.dealPlayerTurn(t, "alice", 500)

	for round.Stage == models.StagePlayerTurn {
		var err error
		round, err = f.engine.BlackjackHit(ctx, "alice")
		if err != nil {
			t.Fatalf("hit failed: %v", err)
		}
	}

	if round.Stage != models.StageRoundOver {
		t.Fatalf("stage = %s after hitting to resolution, want round-over", round.Stage)
	}

	playerTotal := games.HandValue(round.PlayerHand)
	if playerTotal > 21 && round.Outcome != string(games.BlackjackDealer) {
		t.Errorf("busted with %d but outcome = %s", playerTotal, round.Outcome)
	}
	if playerTotal > 21 && round.Payout != 0 {
		t.Errorf("bust paid %d tokens", round.Payout)
	}
}

func TestBlackjackActionsRequireActiveRound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.engine.BlackjackHit(ctx, "alice"); !errors.Is(err, rounds.ErrNoActiveRound) {
		t.Errorf("hit with no round error = %v, want ErrNoActiveRound", err)
	}
	if _, err := f.engine.BlackjackStand(ctx, "alice"); !errors.Is(err, rounds.ErrNoActiveRound) {
		t.Errorf("stand with no round error = %v, want ErrNoActiveRound", err)
	}
}

func TestBlackjackDebitFailureStaysIdle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.BlackjackBet(ctx, "alice", models.InitialBalance+1)
	if !errors.Is(err, ledger.ErrInsufficientFunds) {
		t.Fatalf("error = %v, want ErrInsufficientFunds", err)
	}

	if state := f.engine.BlackjackState("alice"); state.Stage != models.StageIdle {
		t.Errorf("failed bet left stage %s, want idle", state.Stage)
	}
	if got := f.balance(t, "alice"); got != models.InitialBalance {
		t.Errorf("failed bet moved balance to %d", got)
	}
	if len(f.engine.History("alice", models.GameTypeBlackjack)) != 0 {
		t.Error("failed bet appended a history entry")
	}
}

func TestHighLowFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	before := f.balance(t, "alice")
	round, err := f.engine.HighLowBet(ctx, "alice", 200)
	if err != nil {
		t.Fatalf("bet failed: %v", err)
	}
	if round.Stage != models.StageWaitingChoice {
		t.Fatalf("stage = %s after bet, want waiting-choice", round.Stage)
	}
	if round.FirstCard == nil || round.SecondCard != nil {
		t.Fatal("bet must reveal exactly the reference card")
	}

	if _, err := f.engine.HighLowBet(ctx, "alice", 200); !errors.Is(err, rounds.ErrRoundInProgress) {
		t.Errorf("second bet error = %v, want ErrRoundInProgress", err)
	}

	first := *round.FirstCard
	round, err = f.engine.HighLowChoose(ctx, "alice", games.DirectionHigher)
	if err != nil {
		t.Fatalf("choose failed: %v", err)
	}
	if round.Stage != models.StageRoundOver || round.SecondCard == nil {
		t.Fatal("choose must reveal the second card and end the round")
	}

	outcome := games.ResolveHighLow(first, *round.SecondCard, games.DirectionHigher)
	if round.Outcome != string(outcome) {
		t.Errorf("outcome = %s, resolver says %s", round.Outcome, outcome)
	}
	if want := games.HighLowPayout(outcome, 200); round.Payout != want {
		t.Errorf("payout = %d, want %d", round.Payout, want)
	}
	if got, want := f.balance(t, "alice"), before-200+round.Payout; got != want {
		t.Errorf("balance = %d, want %d", got, want)
	}
}

func TestHighLowChooseRequiresActiveRound(t *testing.T) {
	f := newFixture(t)

	if _, err := f.engine.HighLowChoose(context.Background(), "alice", games.DirectionLower); !errors.Is(err, rounds.ErrNoActiveRound) {
		t.Errorf("choose with no round error = %v, want ErrNoActiveRound", err)
	}
}

func TestSlotsSpin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.engine.SlotsSpin(ctx, "alice", 150); !errors.Is(err, rounds.ErrInvalidStake) {
		t.Errorf("off-menu stake error = %v, want ErrInvalidStake", err)
	}

	before := f.balance(t, "alice")
	result, err := f.engine.SlotsSpin(ctx, "alice", 250)
	if err != nil {
		t.Fatalf("spin failed: %v", err)
	}

	if result.Stage != models.StageRoundOver {
		t.Errorf("stage = %s, want round-over", result.Stage)
	}

	eval := games.EvaluateSpin(result.Grid, 250)
	if result.TotalPayout != eval.TotalPayout || result.Jackpot != eval.Jackpot {
		t.Errorf("spin result disagrees with evaluator: got %d/%v, want %d/%v",
			result.TotalPayout, result.Jackpot, eval.TotalPayout, eval.Jackpot)
	}
	if got, want := f.balance(t, "alice"), before-250+result.TotalPayout; got != want {
		t.Errorf("balance = %d, want %d", got, want)
	}

	switch {
	case result.Jackpot && result.Outcome != "jackpot":
		t.Errorf("jackpot spin labelled %s", result.Outcome)
	case !result.Jackpot && result.TotalPayout > 0 && result.Outcome != "win":
		t.Errorf("paying spin labelled %s", result.Outcome)
	case result.TotalPayout == 0 && result.Outcome != "loss":
		t.Errorf("dead spin labelled %s", result.Outcome)
	}

	if state := f.engine.SlotsState("alice"); state.ID != result.ID {
		t.Error("state does not hold the last spin")
	}
}

func TestRouletteSpin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.engine.RouletteSpin(ctx, "alice", 100, "green"); !errors.Is(err, rounds.ErrInvalidColor) {
		t.Errorf("bad color error = %v, want ErrInvalidColor", err)
	}

	before := f.balance(t, "alice")
	result, err := f.engine.RouletteSpin(ctx, "alice", 100, games.RouletteRed)
	if err != nil {
		t.Fatalf("spin failed: %v", err)
	}

	if got := games.SectionForAngle(result.Rotation); got != result.Section {
		t.Errorf("section %d disagrees with rotation %f (maps to %d)", result.Section, result.Rotation, got)
	}
	if result.ResultColor != games.ColorForSection(result.Section) {
		t.Errorf("color %s disagrees with section %d", result.ResultColor, result.Section)
	}
	if result.Won != (result.ResultColor == games.RouletteRed) {
		t.Errorf("won = %v on %s with red selected", result.Won, result.ResultColor)
	}
	if want := games.RoulettePayout(result.Won, 100); result.Payout != want {
		t.Errorf("payout = %d, want %d", result.Payout, want)
	}
	if got, want := f.balance(t, "alice"), before-100+result.Payout; got != want {
		t.Errorf("balance = %d, want %d", got, want)
	}
}

func TestHistoryBounded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < models.MaxHistoryEntries+5; i++ {
		if _, err := f.engine.RouletteSpin(ctx, "alice", 100, games.RouletteBlack); err != nil {
			t.Fatalf("spin %d failed: %v", i, err)
		}
	}

	history := f.engine.History("alice", models.GameTypeRoulette)
	if len(history) != models.MaxHistoryEntries {
		t.Errorf("history holds %d entries, cap is %d", len(history), models.MaxHistoryEntries)
	}
}

func TestLastStakeRemembered(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if got := f.engine.LastStake("alice", models.GameTypeRoulette); got != models.MinBet {
		t.Errorf("default stake = %d, want %d", got, models.MinBet)
	}

	if _, err := f.engine.RouletteSpin(ctx, "alice", 500, games.RouletteRed); err != nil {
		t.Fatalf("spin failed: %v", err)
	}
	if got := f.engine.LastStake("alice", models.GameTypeRoulette); got != 500 {
		t.Errorf("remembered stake = %d, want 500", got)
	}
}

// creditBlocker passes debits through and fails credits on demand, to force
// the settlement path where the win cannot be paid immediately.
type creditBlocker struct {
	*store.Memory
	blocked atomic.Bool
}

func (g *creditBlocker) ApplyTransaction(ctx context.Context, userID string, txn *models.Transaction) (*models.Transaction, error) {
	if g.blocked.Load() && txn.Type == models.TransactionTypeCredit {
		return nil, ledger.ErrPersistence
	}
	return g.Memory.ApplyTransaction(ctx, userID, txn)
}

func TestFailedPayoutIsQueuedThenReconciled(t *testing.T) {
	mem := store.NewMemory()
	gateway := &creditBlocker{Memory: mem}
	l := ledger.New(gateway)

	engine := rounds.NewEngine(l, mem, nil, nil)
	seed := uint64(9000)
	engine.SetSourceFactory(func() *rng.Source {
		seed++
		return rng.New(seed)
	})

	ctx := context.Background()
	gateway.blocked.Store(true)

	var result *rounds.RouletteResult
	for i := 0; i < 50; i++ {
		spin, err := engine.RouletteSpin(ctx, "alice", 100, games.RouletteRed)
		if err != nil {
			t.Fatalf("spin %d failed: %v", i, err)
		}
		if spin.Won {
			result = spin
			break
		}
	}
	if result == nil {
		t.Fatal("no winning spin in 50 attempts")
	}

	if result.LedgerNote == "" {
		t.Error("blocked credit left no note on the round")
	}

	payouts, err := mem.PendingPayouts(ctx)
	if err != nil {
		t.Fatalf("failed to list payouts: %v", err)
	}
	var pending *models.PendingPayout
	for _, p := range payouts {
		if p.RoundID == result.ID {
			pending = p
		}
	}
	if pending == nil {
		t.Fatal("winning round with a blocked credit was not queued")
	}
	if pending.Amount != result.Payout || pending.UserID != "alice" {
		t.Errorf("queued payout = %d to %s, want %d to alice", pending.Amount, pending.UserID, result.Payout)
	}

	balanceBefore, _ := l.Balance(ctx, "alice")

	gateway.blocked.Store(false)
	settler := rounds.NewSettler(l, mem, 0)
	if applied := settler.Reconcile(ctx); applied == 0 {
		t.Fatal("reconcile applied nothing with credits unblocked")
	}

	balanceAfter, _ := l.Balance(ctx, "alice")
	if balanceAfter != balanceBefore+pending.Amount {
		t.Errorf("reconciled balance = %d, want %d", balanceAfter, balanceBefore+pending.Amount)
	}

	payouts, _ = mem.PendingPayouts(ctx)
	for _, p := range payouts {
		if p.RoundID == result.ID {
			t.Error("applied payout still pending")
		}
	}
}

// State reads must not share memory with the live round a concurrent
// action is mutating. Run with -race.
func TestConcurrentStateReadsDuringRounds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
			}

			state := f.engine.BlackjackState("alice")
			if state.Stage == models.StagePlayerTurn && len(state.PlayerHand) < 2 {
				t.Errorf("live round observed with %d player cards", len(state.PlayerHand))
			}
			f.engine.HighLowState("alice")
			f.engine.SlotsState("alice")
			f.engine.RouletteState("alice")
		}
	}()

	for i := 0; i < 10; i++ {
		round := f.dealPlayerTurn(t, "alice", 100)
		for round.Stage == models.StagePlayerTurn {
			var err error
			round, err = f.engine.BlackjackHit(ctx, "alice")
			if err != nil {
				t.Fatalf("hit failed: %v", err)
			}
		}

		if _, err := f.engine.HighLowBet(ctx, "alice", 100); err != nil {
			t.Fatalf("high-low bet failed: %v", err)
		}
		if _, err := f.engine.HighLowChoose(ctx, "alice", games.DirectionHigher); err != nil {
			t.Fatalf("high-low choose failed: %v", err)
		}
	}

	close(done)
	wg.Wait()
}

// Returned rounds are copies: mutating one must not reach the engine.
func TestStateReturnsIndependentCopy(t *testing.T) {
	f := newFixture(t)

	round := f.dealPlayerTurn(t, "alice", 100)
	round.PlayerHand[0] = deck.Card{Rank: "X", Code: "X?"}
	round.Stage = models.StageRoundOver

	state := f.engine.BlackjackState("alice")
	if state.Stage != models.StagePlayerTurn {
		t.Errorf("mutating a returned round changed the live stage to %s", state.Stage)
	}
	if state.PlayerHand[0].Rank == "X" {
		t.Error("mutating a returned hand reached the live round")
	}

	state.PlayerHand = state.PlayerHand[:0]
	if again := f.engine.BlackjackState("alice"); len(again.PlayerHand) != 2 {
		t.Errorf("mutating a state copy reached the live round (%d cards)", len(again.PlayerHand))
	}
}

// recorder captures broadcast pushes.
type recorder struct {
	balances []int64
	settled  []models.HistoryEntry
}

func (r *recorder) BalanceUpdate(userID string, balance int64) {
	r.balances = append(r.balances, balance)
}

func (r *recorder) RoundSettled(userID string, game models.GameType, entry models.HistoryEntry) {
	r.settled = append(r.settled, entry)
}

func TestSettlementBroadcast(t *testing.T) {
	mem := store.NewMemory()
	l := ledger.New(mem)
	rec := &recorder{}

	engine := rounds.NewEngine(l, mem, nil, rec)
	seed := uint64(7000)
	engine.SetSourceFactory(func() *rng.Source {
		seed++
		return rng.New(seed)
	})

	ctx := context.Background()
	result, err := engine.RouletteSpin(ctx, "alice", 100, games.RouletteBlack)
	if err != nil {
		t.Fatalf("spin failed: %v", err)
	}

	if len(rec.settled) != 1 || rec.settled[0].ID != result.ID {
		t.Fatalf("got %d settlement pushes, want exactly the spun round", len(rec.settled))
	}
	balance, _ := l.Balance(ctx, "alice")
	if len(rec.balances) != 1 || rec.balances[0] != balance {
		t.Errorf("balance push = %v, want [%d]", rec.balances, balance)
	}
}
