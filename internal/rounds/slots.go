package rounds

import (
	"context"
	"fmt"

	"casino401k-backend/internal/games"
	"casino401k-backend/internal/models"
)

// SlotsResult is the settled state of one spin. Slots rounds have no
// intermediate stage: a spin debits, resolves, and settles in one call.
type SlotsResult struct {
	ID          string          `json:"id"`
	Stage       models.Stage    `json:"stage"`
	Stake       int64           `json:"stake"`
	Grid        games.Grid      `json:"grid"`
	LineWins    []games.LineWin `json:"line_wins"`
	TotalPayout int64           `json:"total_payout"`
	Jackpot     bool            `json:"jackpot"`
	Outcome     string          `json:"outcome"`
	Message     string          `json:"message"`
	LedgerNote  string          `json:"ledger_note,omitempty"`

	seed string
}

// snapshot copies the result for callers outside the user lock.
func (r *SlotsResult) snapshot() *SlotsResult {
	clone := *r
	clone.LineWins = append([]games.LineWin(nil), r.LineWins...)
	return &clone
}

// SlotsState returns a copy of the last spin, or an idle grid of blanks.
func (e *Engine) SlotsState(userID string) *SlotsResult {
	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	e.mu.Lock()
	result, ok := e.slots[userID]
	e.mu.Unlock()

	if ok {
		return result.snapshot()
	}

	var idle games.Grid
	for reel := 0; reel < games.SlotReels; reel++ {
		for row := 0; row < games.SlotRows; row++ {
			idle[reel][row] = games.BlankSymbol
		}
	}
	return &SlotsResult{Stage: models.StageIdle, Grid: idle, Message: "Pick a bet and spin."}
}

// SlotsSpin debits a fixed chip size, samples the grid, and settles every
// winning payline in one credit.
func (e *Engine) SlotsSpin(ctx context.Context, userID string, stake int64) (*SlotsResult, error) {
	if !validSlotsStake(stake) {
		return nil, ErrInvalidStake
	}

	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	roundID := models.GenerateRoundID()
	if _, err := e.ledger.Debit(ctx, userID, stake, "Slots Mini wager", roundID); err != nil {
		return nil, err
	}
	e.rememberStake(userID, models.GameTypeSlots, stake)

	src := e.newSource()
	grid := games.SpinReels(src)
	spin := games.EvaluateSpin(grid, stake)

	outcome := "loss"
	note := "No paylines hit. Tokens stay with the house."
	creditDesc := "Slots Mini win"
	switch {
	case spin.Jackpot:
		outcome = "jackpot"
		creditDesc = "Slots Mini jackpot"
		note = fmt.Sprintf("JACKPOT! %d tokens across %d line(s)!", spin.TotalPayout, len(spin.LineWins))
	case spin.TotalPayout > 0:
		outcome = "win"
		note = fmt.Sprintf("Paid %d tokens across %d line(s).", spin.TotalPayout, len(spin.LineWins))
	}

	result := &SlotsResult{
		ID:          roundID,
		Stage:       models.StageRoundOver,
		Stake:       stake,
		Grid:        grid,
		LineWins:    spin.LineWins,
		TotalPayout: spin.TotalPayout,
		Jackpot:     spin.Jackpot,
		Outcome:     outcome,
		Message:     note,
		seed:        src.SeedString(),
	}

	details := map[string]any{
		"grid":    gridIDs(grid),
		"lines":   lineIDs(spin.LineWins),
		"jackpot": spin.Jackpot,
	}

	result.LedgerNote = e.settle(ctx, userID, models.GameTypeSlots, roundID,
		stake, spin.TotalPayout, outcome, creditDesc, note, details, result.seed)

	e.mu.Lock()
	e.slots[userID] = result
	e.mu.Unlock()

	return result.snapshot(), nil
}

func validSlotsStake(stake int64) bool {
	for _, option := range models.SlotsBetOptions {
		if stake == option {
			return true
		}
	}
	return false
}

func gridIDs(g games.Grid) [][]string {
	ids := make([][]string, games.SlotReels)
	for reel := 0; reel < games.SlotReels; reel++ {
		ids[reel] = make([]string, games.SlotRows)
		for row := 0; row < games.SlotRows; row++ {
			ids[reel][row] = g[reel][row].ID
		}
	}
	return ids
}

func lineIDs(wins []games.LineWin) []string {
	ids := make([]string, len(wins))
	for i, w := range wins {
		ids[i] = w.LineID
	}
	return ids
}
