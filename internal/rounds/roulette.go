package rounds

import (
	"context"
	"fmt"

	"casino401k-backend/internal/games"
	"casino401k-backend/internal/models"
)

// RouletteResult is the settled state of one wheel spin. The outcome is a
// pure function of the final rotation, so the UI can animate to Rotation
// and land on the same section the ledger already paid.
type RouletteResult struct {
	ID            string              `json:"id"`
	Stage         models.Stage        `json:"stage"`
	Stake         int64               `json:"stake"`
	SelectedColor games.RouletteColor `json:"selected_color"`
	Rotation      float64             `json:"rotation"`
	Section       int                 `json:"section"`
	ResultColor   games.RouletteColor `json:"result_color"`
	Won           bool                `json:"won"`
	Payout        int64               `json:"payout"`
	Outcome       string              `json:"outcome"`
	Message       string              `json:"message"`
	LedgerNote    string              `json:"ledger_note,omitempty"`

	seed string
}

// snapshot copies the result for callers outside the user lock.
func (r *RouletteResult) snapshot() *RouletteResult {
	clone := *r
	return &clone
}

// RouletteState returns a copy of the last spin, or an idle placeholder.
func (e *Engine) RouletteState(userID string) *RouletteResult {
	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	e.mu.Lock()
	result, ok := e.roulette[userID]
	e.mu.Unlock()

	if ok {
		return result.snapshot()
	}
	return &RouletteResult{Stage: models.StageIdle, Message: "Pick a color and spin the wheel."}
}

// RouletteSpin debits the stake, spins the wheel, and settles the color bet.
func (e *Engine) RouletteSpin(ctx context.Context, userID string, stake int64, color games.RouletteColor) (*RouletteResult, error) {
	if color != games.RouletteRed && color != games.RouletteBlack {
		return nil, ErrInvalidColor
	}

	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	roundID := models.GenerateRoundID()
	if _, err := e.ledger.Debit(ctx, userID, stake, "Roulette bet", roundID); err != nil {
		return nil, err
	}
	e.rememberStake(userID, models.GameTypeRoulette, stake)

	src := e.newSource()
	rotation := games.SpinWheel(src)
	section := games.SectionForAngle(rotation)
	resultColor := games.ColorForSection(section)
	won := games.ResolveRoulette(color, section)
	payout := games.RoulettePayout(won, stake)

	outcome := "loss"
	note := fmt.Sprintf("%s. Better luck next time.", resultColor)
	if won {
		outcome = "win"
		note = fmt.Sprintf("%s! You won %d tokens!", resultColor, payout)
	}

	result := &RouletteResult{
		ID:            roundID,
		Stage:         models.StageRoundOver,
		Stake:         stake,
		SelectedColor: color,
		Rotation:      rotation,
		Section:       section,
		ResultColor:   resultColor,
		Won:           won,
		Payout:        payout,
		Outcome:       outcome,
		Message:       note,
		seed:          src.SeedString(),
	}

	details := map[string]any{
		"selected_color": string(color),
		"result_color":   string(resultColor),
		"section":        section,
		"rotation":       rotation,
	}

	result.LedgerNote = e.settle(ctx, userID, models.GameTypeRoulette, roundID,
		stake, payout, outcome, "Roulette win", note, details, result.seed)

	e.mu.Lock()
	e.roulette[userID] = result
	e.mu.Unlock()

	return result.snapshot(), nil
}
