package games

import "casino401k-backend/internal/deck"

type Direction string

const (
	DirectionHigher Direction = "higher"
	DirectionLower  Direction = "lower"
)

type HighLowOutcome string

const (
	HighLowWin  HighLowOutcome = "win"
	HighLowLose HighLowOutcome = "lose"
	HighLowPush HighLowOutcome = "push"
)

// HighLowMultiplier is applied to the stake on a correct guess, paid in
// whole tokens (rounded half up).
const highLowNumerator, highLowDenominator = 19, 10

// ResolveHighLow compares the second card against the reference card under
// the sequential value convention. Equal values push regardless of guess.
func ResolveHighLow(first, second deck.Card, guess Direction) HighLowOutcome {
	if second.Value == first.Value {
		return HighLowPush
	}
	higher := second.Value > first.Value
	if (guess == DirectionHigher) == higher {
		return HighLowWin
	}
	return HighLowLose
}

// HighLowPayout pays 1.9x the stake on a win, rounded to whole tokens, and
// refunds the stake on a push.
func HighLowPayout(outcome HighLowOutcome, stake int64) int64 {
	switch outcome {
	case HighLowWin:
		return (stake*highLowNumerator + highLowDenominator/2) / highLowDenominator
	case HighLowPush:
		return stake
	default:
		return 0
	}
}
