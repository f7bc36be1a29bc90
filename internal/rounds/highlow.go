package rounds

import (
	"context"
	"fmt"

	"casino401k-backend/internal/deck"
	"casino401k-backend/internal/games"
	"casino401k-backend/internal/models"
)

// HighLowRound holds a reference card waiting for a higher/lower call. The
// rest of the shuffled deck stays server-side so the second card cannot be
// predicted.
type HighLowRound struct {
	ID         string       `json:"id"`
	Stage      models.Stage `json:"stage"`
	Stake      int64        `json:"stake"`
	FirstCard  *deck.Card   `json:"first_card,omitempty"`
	SecondCard *deck.Card   `json:"second_card,omitempty"`
	Guess      string       `json:"guess,omitempty"`
	Outcome    string       `json:"outcome,omitempty"`
	Payout     int64        `json:"payout"`
	Message    string       `json:"message"`
	LedgerNote string       `json:"ledger_note,omitempty"`

	shoe deck.Deck
	seed string
}

// snapshot copies the round for callers outside the user lock.
func (r *HighLowRound) snapshot() *HighLowRound {
	clone := *r
	if r.FirstCard != nil {
		first := *r.FirstCard
		clone.FirstCard = &first
	}
	if r.SecondCard != nil {
		second := *r.SecondCard
		clone.SecondCard = &second
	}
	clone.shoe = nil
	return &clone
}

// HighLowState returns a copy of the current round, or an idle placeholder.
func (e *Engine) HighLowState(userID string) *HighLowRound {
	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	e.mu.Lock()
	round, ok := e.highlow[userID]
	e.mu.Unlock()

	if ok {
		return round.snapshot()
	}
	return &HighLowRound{Stage: models.StageIdle, Message: "Place a bet to draw a card."}
}

// HighLowBet debits the stake and draws the reference card. The round then
// waits for the player's call.
func (e *Engine) HighLowBet(ctx context.Context, userID string, stake int64) (*HighLowRound, error) {
	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	if current, ok := e.highlow[userID]; ok && current.Stage == models.StageWaitingChoice {
		return nil, ErrRoundInProgress
	}

	roundID := models.GenerateRoundID()
	if _, err := e.ledger.Debit(ctx, userID, stake, "High-Low bet", roundID); err != nil {
		return nil, err
	}
	e.rememberStake(userID, models.GameTypeHighLow, stake)

	src := e.newSource()
	shoe := deck.New()
	shoe.Shuffle(src)
	first := shoe.Draw()

	round := &HighLowRound{
		ID:        roundID,
		Stage:     models.StageWaitingChoice,
		Stake:     stake,
		FirstCard: &first,
		Message:   fmt.Sprintf("Showing %s. Higher or lower?", first.Code),
		shoe:      shoe,
		seed:      src.SeedString(),
	}

	e.mu.Lock()
	e.highlow[userID] = round
	e.mu.Unlock()

	return round.snapshot(), nil
}

// HighLowChoose reveals the second card and settles against the guess.
// Matching values push and refund the stake.
func (e *Engine) HighLowChoose(ctx context.Context, userID string, guess games.Direction) (*HighLowRound, error) {
	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	e.mu.Lock()
	round, ok := e.highlow[userID]
	e.mu.Unlock()
	if !ok || round.Stage == models.StageIdle || round.Stage == models.StageRoundOver {
		return nil, ErrNoActiveRound
	}
	if round.Stage != models.StageWaitingChoice {
		return nil, ErrInvalidAction
	}

	second := round.shoe.Draw()
	round.SecondCard = &second
	round.Guess = string(guess)

	outcome := games.ResolveHighLow(*round.FirstCard, second, guess)
	round.Stage = models.StageRoundOver
	round.Outcome = string(outcome)
	round.Payout = games.HighLowPayout(outcome, round.Stake)

	var note string
	switch outcome {
	case games.HighLowWin:
		note = fmt.Sprintf("%s beats %s. You win %d tokens!", second.Code, round.FirstCard.Code, round.Payout)
	case games.HighLowPush:
		note = fmt.Sprintf("%s matches %s. Push, bet returned.", second.Code, round.FirstCard.Code)
	default:
		note = fmt.Sprintf("%s against %s. House takes it.", second.Code, round.FirstCard.Code)
	}
	round.Message = note

	creditDesc := "High-Low win"
	if outcome == games.HighLowPush {
		creditDesc = "High-Low push refund"
	}

	details := map[string]any{
		"first_card":  round.FirstCard.Code,
		"second_card": second.Code,
		"guess":       string(guess),
	}

	round.LedgerNote = e.settle(ctx, userID, models.GameTypeHighLow, round.ID,
		round.Stake, round.Payout, string(outcome), creditDesc, note, details, round.seed)

	return round.snapshot(), nil
}
