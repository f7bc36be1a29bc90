package rounds

import (
	"context"
	"fmt"

	"casino401k-backend/internal/deck"
	"casino401k-backend/internal/games"
	"casino401k-backend/internal/models"
)

// BlackjackRound is the live state of one blackjack hand. The shoe and the
// dealer hole card stay server-side until the round resolves.
type BlackjackRound struct {
	ID             string       `json:"id"`
	Stage          models.Stage `json:"stage"`
	Stake          int64        `json:"stake"`
	PlayerHand     []deck.Card  `json:"player_hand"`
	DealerHand     []deck.Card  `json:"dealer_hand"`
	PlayerTotal    int          `json:"player_total"`
	DealerTotal    int          `json:"dealer_total"`
	HideDealerHole bool         `json:"hide_dealer_hole"`
	Outcome        string       `json:"outcome,omitempty"`
	Payout         int64        `json:"payout"`
	Message        string       `json:"message"`
	LedgerNote     string       `json:"ledger_note,omitempty"`

	shoe deck.Deck
	seed string
}

// snapshot copies the round for callers outside the user lock. Handlers
// marshal the copy after the lock is released, so they must never share
// memory with the live round.
func (r *BlackjackRound) snapshot() *BlackjackRound {
	clone := *r
	clone.PlayerHand = append([]deck.Card(nil), r.PlayerHand...)
	clone.DealerHand = append([]deck.Card(nil), r.DealerHand...)
	clone.shoe = nil
	return &clone
}

func (r *BlackjackRound) refreshTotals() {
	r.PlayerTotal = games.HandValue(r.PlayerHand)
	if r.HideDealerHole && len(r.DealerHand) > 0 {
		r.DealerTotal = games.HandValue(r.DealerHand[:1])
	} else {
		r.DealerTotal = games.HandValue(r.DealerHand)
	}
}

// BlackjackState returns a copy of the current round, or an idle
// placeholder when the user has never dealt.
func (e *Engine) BlackjackState(userID string) *BlackjackRound {
	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	e.mu.Lock()
	round, ok := e.blackjack[userID]
	e.mu.Unlock()

	if ok {
		return round.snapshot()
	}
	return &BlackjackRound{Stage: models.StageIdle, Message: "Place a bet to deal a hand."}
}

// BlackjackBet debits the stake and deals a fresh hand. A natural on the
// deal settles the round immediately.
func (e *Engine) BlackjackBet(ctx context.Context, userID string, stake int64) (*BlackjackRound, error) {
	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	if current, ok := e.blackjack[userID]; ok {
		if current.Stage != models.StageIdle && current.Stage != models.StageRoundOver {
			return nil, ErrRoundInProgress
		}
	}

	roundID := models.GenerateRoundID()
	if _, err := e.ledger.Debit(ctx, userID, stake, "Blackjack bet", roundID); err != nil {
		return nil, err
	}
	e.rememberStake(userID, models.GameTypeBlackjack, stake)

	src := e.newSource()
	shoe := deck.NewBlackjack()
	shoe.Shuffle(src)

	round := &BlackjackRound{
		ID:             roundID,
		Stage:          models.StagePlayerTurn,
		Stake:          stake,
		PlayerHand:     []deck.Card{shoe.Draw(), shoe.Draw()},
		DealerHand:     []deck.Card{shoe.Draw(), shoe.Draw()},
		HideDealerHole: true,
		Message:        "Hit or stand?",
		shoe:           shoe,
		seed:           src.SeedString(),
	}

	e.mu.Lock()
	e.blackjack[userID] = round
	e.mu.Unlock()

	if games.IsNatural(round.PlayerHand) {
		outcome := games.BlackjackNatural
		note := "Natural blackjack! 2x payout credited."
		if games.IsNatural(round.DealerHand) {
			outcome = games.BlackjackPush
			note = "Double blackjack. Bet returned."
		}
		e.concludeBlackjack(ctx, userID, round, outcome, note)
		return round.snapshot(), nil
	}

	round.refreshTotals()
	return round.snapshot(), nil
}

// BlackjackHit draws one card for the player. Busting settles the round,
// and a 21 auto-stands into the dealer turn.
func (e *Engine) BlackjackHit(ctx context.Context, userID string) (*BlackjackRound, error) {
	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	round, err := e.activeBlackjack(userID)
	if err != nil {
		return nil, err
	}

	round.PlayerHand = append(round.PlayerHand, round.shoe.Draw())
	total := games.HandValue(round.PlayerHand)

	switch {
	case total > 21:
		e.concludeBlackjack(ctx, userID, round, games.BlackjackDealer,
			fmt.Sprintf("Bust with %d. Dealer takes the bet.", total))
	case total == 21:
		e.playOutDealer(ctx, userID, round)
	default:
		round.refreshTotals()
		round.Message = fmt.Sprintf("Sitting on %d. Hit or stand?", total)
	}

	return round.snapshot(), nil
}

// BlackjackStand locks the player hand and plays the dealer out.
func (e *Engine) BlackjackStand(ctx context.Context, userID string) (*BlackjackRound, error) {
	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	round, err := e.activeBlackjack(userID)
	if err != nil {
		return nil, err
	}

	e.playOutDealer(ctx, userID, round)
	return round.snapshot(), nil
}

// BlackjackNewRound clears a finished round back to idle. No ledger motion.
func (e *Engine) BlackjackNewRound(userID string) (*BlackjackRound, error) {
	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if round, ok := e.blackjack[userID]; ok && round.Stage == models.StagePlayerTurn {
		return nil, ErrRoundInProgress
	}

	idle := &BlackjackRound{Stage: models.StageIdle, Message: "Place a bet to deal a hand."}
	e.blackjack[userID] = idle
	return idle.snapshot(), nil
}

func (e *Engine) activeBlackjack(userID string) (*BlackjackRound, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	round, ok := e.blackjack[userID]
	if !ok || round.Stage == models.StageIdle || round.Stage == models.StageRoundOver {
		return nil, ErrNoActiveRound
	}
	if round.Stage != models.StagePlayerTurn {
		return nil, ErrInvalidAction
	}
	return round, nil
}

func (e *Engine) playOutDealer(ctx context.Context, userID string, round *BlackjackRound) {
	round.Stage = models.StageDealerTurn
	round.HideDealerHole = false
	round.DealerHand = games.PlayDealer(&round.shoe, round.DealerHand)

	outcome := games.SettleBlackjack(round.PlayerHand, round.DealerHand)
	playerTotal := games.HandValue(round.PlayerHand)
	dealerTotal := games.HandValue(round.DealerHand)

	var note string
	switch outcome {
	case games.BlackjackWin:
		if dealerTotal > 21 {
			note = fmt.Sprintf("Dealer busts with %d. You win!", dealerTotal)
		} else {
			note = fmt.Sprintf("You win with %d over dealer %d.", playerTotal, dealerTotal)
		}
	case games.BlackjackPush:
		note = fmt.Sprintf("Push at %d. Bet returned.", playerTotal)
	default:
		note = fmt.Sprintf("Dealer takes it with %d over %d.", dealerTotal, playerTotal)
	}

	e.concludeBlackjack(ctx, userID, round, outcome, note)
}

func (e *Engine) concludeBlackjack(ctx context.Context, userID string, round *BlackjackRound, outcome games.BlackjackOutcome, note string) {
	round.Stage = models.StageRoundOver
	round.HideDealerHole = false
	round.Outcome = string(outcome)
	round.Message = note
	round.Payout = games.BlackjackPayout(outcome, round.Stake)
	round.refreshTotals()

	creditDesc := "Blackjack win"
	switch outcome {
	case games.BlackjackNatural:
		creditDesc = "Blackjack win (natural)"
	case games.BlackjackPush:
		creditDesc = "Blackjack push refund"
	}

	details := map[string]any{
		"player_hand":  cardCodes(round.PlayerHand),
		"dealer_hand":  cardCodes(round.DealerHand),
		"player_total": games.HandValue(round.PlayerHand),
		"dealer_total": games.HandValue(round.DealerHand),
	}

	round.LedgerNote = e.settle(ctx, userID, models.GameTypeBlackjack, round.ID,
		round.Stake, round.Payout, string(outcome), creditDesc, note, details, round.seed)
}

func cardCodes(hand []deck.Card) []string {
	codes := make([]string, len(hand))
	for i, c := range hand {
		codes[i] = c.Code
	}
	return codes
}
