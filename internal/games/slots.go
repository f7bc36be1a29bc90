package games

import "casino401k-backend/internal/rng"

// Symbol is a slot reel symbol. Weight is its relative frequency in the
// sampling bag; rarer symbols carry the higher multipliers.
type Symbol struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	DisplayName string `json:"display_name"`
	Weight      int    `json:"weight"`
	Multiplier  int64  `json:"multiplier"`
}

var SlotSymbols = []Symbol{
	{ID: "seven", Label: "7", DisplayName: "Lucky Seven", Weight: 1, Multiplier: 25},
	{ID: "bar", Label: "BAR", DisplayName: "Bar", Weight: 2, Multiplier: 12},
	{ID: "bell", Label: "BELL", DisplayName: "Bell", Weight: 3, Multiplier: 8},
	{ID: "cherry", Label: "CH", DisplayName: "Cherry", Weight: 4, Multiplier: 5},
	{ID: "lemon", Label: "LE", DisplayName: "Lemon", Weight: 5, Multiplier: 3},
}

// BlankSymbol fills the idle grid and never pays.
var BlankSymbol = Symbol{ID: "blank", Label: "--", DisplayName: "Idle", Weight: 0, Multiplier: 0}

// JackpotMultiplier is the line multiplier threshold that flags a jackpot.
const JackpotMultiplier int64 = 20

const (
	SlotReels = 3
	SlotRows  = 3
)

// Payline names the row picked from each of the three reels.
type Payline struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Rows  [3]int `json:"rows"`
}

var Paylines = []Payline{
	{ID: "line-1", Label: "Top line", Rows: [3]int{0, 0, 0}},
	{ID: "line-2", Label: "Center line", Rows: [3]int{1, 1, 1}},
	{ID: "line-3", Label: "Bottom line", Rows: [3]int{2, 2, 2}},
	{ID: "line-4", Label: "Forward diagonal", Rows: [3]int{0, 1, 2}},
	{ID: "line-5", Label: "Reverse diagonal", Rows: [3]int{2, 1, 0}},
}

// symbolBag is the flattened weighted alphabet sampled per cell.
var symbolBag = func() []Symbol {
	var bag []Symbol
	for _, s := range SlotSymbols {
		for i := 0; i < s.Weight; i++ {
			bag = append(bag, s)
		}
	}
	return bag
}()

// Grid is indexed [reel][row].
type Grid [SlotReels][SlotRows]Symbol

// SpinReels samples every cell independently from the weighted bag. Spins
// carry no memory between one another.
func SpinReels(src *rng.Source) Grid {
	var g Grid
	for reel := 0; reel < SlotReels; reel++ {
		for row := 0; row < SlotRows; row++ {
			g[reel][row] = symbolBag[src.Intn(len(symbolBag))]
		}
	}
	return g
}

type LineWin struct {
	LineID string `json:"line_id"`
	Label  string `json:"label"`
	Symbol Symbol `json:"symbol"`
	Payout int64  `json:"payout"`
}

type SpinResult struct {
	LineWins    []LineWin `json:"line_wins"`
	TotalPayout int64     `json:"total_payout"`
	Jackpot     bool      `json:"jackpot"`
}

// EvaluateSpin checks every payline. A line pays when all three of its
// symbols match and are not blank; payouts sum across winning lines.
func EvaluateSpin(g Grid, stake int64) SpinResult {
	result := SpinResult{}

	for _, line := range Paylines {
		first := g[0][line.Rows[0]]
		if first.ID == BlankSymbol.ID {
			continue
		}
		if g[1][line.Rows[1]].ID != first.ID || g[2][line.Rows[2]].ID != first.ID {
			continue
		}

		payout := stake * first.Multiplier
		result.TotalPayout += payout
		result.LineWins = append(result.LineWins, LineWin{
			LineID: line.ID,
			Label:  line.Label,
			Symbol: first,
			Payout: payout,
		})

		if first.Multiplier >= JackpotMultiplier {
			result.Jackpot = true
		}
	}

	return result
}
