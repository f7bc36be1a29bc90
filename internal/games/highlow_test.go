package games_test

import (
	"testing"

	"casino401k-backend/internal/deck"
	"casino401k-backend/internal/games"
)

func TestResolveHighLow(t *testing.T) {
	seven := deck.Card{Rank: "7", Value: 7, Suit: "♠"}
	sevenHearts := deck.Card{Rank: "7", Value: 7, Suit: "♥"}
	king := deck.Card{Rank: "K", Value: 13, Suit: "♦"}
	two := deck.Card{Rank: "2", Value: 2, Suit: "♣"}

	tests := []struct {
		name   string
		first  deck.Card
		second deck.Card
		guess  games.Direction
		want   games.HighLowOutcome
	}{
		{"equal values push on higher", seven, sevenHearts, games.DirectionHigher, games.HighLowPush},
		{"equal values push on lower", seven, sevenHearts, games.DirectionLower, games.HighLowPush},
		{"correct higher", seven, king, games.DirectionHigher, games.HighLowWin},
		{"incorrect higher", seven, two, games.DirectionHigher, games.HighLowLose},
		{"correct lower", seven, two, games.DirectionLower, games.HighLowWin},
		{"incorrect lower", seven, king, games.DirectionLower, games.HighLowLose},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := games.ResolveHighLow(tt.first, tt.second, tt.guess); got != tt.want {
				t.Errorf("ResolveHighLow = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestHighLowPayout(t *testing.T) {
	tests := []struct {
		outcome games.HighLowOutcome
		stake   int64
		want    int64
	}{
		{games.HighLowWin, 100, 190},
		{games.HighLowWin, 250, 475},
		{games.HighLowWin, 1, 2}, // 1.9 rounds half up to whole tokens
		{games.HighLowPush, 100, 100},
		{games.HighLowLose, 100, 0},
	}

	for _, tt := range tests {
		if got := games.HighLowPayout(tt.outcome, tt.stake); got != tt.want {
			t.Errorf("HighLowPayout(%s, %d) = %d, want %d", tt.outcome, tt.stake, got, tt.want)
		}
	}
}
