package games_test

import (
	"testing"

	"casino401k-backend/internal/deck"
	"casino401k-backend/internal/games"
	"casino401k-backend/internal/rng"
)

func card(rank string, value int) deck.Card {
	return deck.Card{Rank: rank, Value: value, Suit: "♠", Code: rank + "♠"}
}

func TestHandValue(t *testing.T) {
	tests := []struct {
		name string
		hand []deck.Card
		want int
	}{
		{"ten plus ace is 21", []deck.Card{card("10", 10), card("A", 11)}, 21},
		{"no aces to convert", []deck.Card{card("10", 10), card("9", 9), card("5", 5)}, 24},
		{"single ace downgrades", []deck.Card{card("A", 11), card("9", 9), card("5", 5)}, 15},
		{"two aces, one downgrades", []deck.Card{card("A", 11), card("A", 11), card("9", 9)}, 21},
		{"two aces, both downgrade", []deck.Card{card("A", 11), card("A", 11), card("K", 10), card("9", 9)}, 21},
		{"soft seventeen", []deck.Card{card("A", 11), card("6", 6)}, 17},
		{"empty hand", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := games.HandValue(tt.hand); got != tt.want {
				t.Errorf("HandValue = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIsNatural(t *testing.T) {
	if !games.IsNatural([]deck.Card{card("10", 10), card("A", 11)}) {
		t.Error("two-card 21 should be a natural")
	}
	if games.IsNatural([]deck.Card{card("7", 7), card("7", 7), card("7", 7)}) {
		t.Error("three-card 21 is not a natural")
	}
	if games.IsNatural([]deck.Card{card("10", 10), card("9", 9)}) {
		t.Error("two-card 19 is not a natural")
	}
}

func TestPlayDealerStandsOnSeventeen(t *testing.T) {
	d := deck.NewBlackjack()
	d.Shuffle(rng.New(42))

	dealer := games.PlayDealer(&d, []deck.Card{d.Draw(), d.Draw()})
	total := games.HandValue(dealer)

	if total < games.DealerStandTotal {
		t.Errorf("dealer stopped at %d, must reach at least 17", total)
	}

	// The dealer must not have drawn past the first total >= 17: dropping
	// the final card always leaves a total below the stand threshold.
	if len(dealer) > 2 {
		withoutLast := dealer[:len(dealer)-1]
		if games.HandValue(withoutLast) >= games.DealerStandTotal {
			t.Errorf("dealer drew on %d, should have stood", games.HandValue(withoutLast))
		}
	}
}

func TestPlayDealerStandsOnSoftSeventeen(t *testing.T) {
	d := deck.Deck{card("5", 5)}
	dealer := games.PlayDealer(&d, []deck.Card{card("A", 11), card("6", 6)})

	if len(dealer) != 2 {
		t.Errorf("dealer drew on soft 17, hand grew to %d cards", len(dealer))
	}
}

func TestSettleBlackjack(t *testing.T) {
	tests := []struct {
		name   string
		player []deck.Card
		dealer []deck.Card
		want   games.BlackjackOutcome
	}{
		{
			"dealer busts",
			[]deck.Card{card("10", 10), card("8", 8)},
			[]deck.Card{card("10", 10), card("6", 6), card("9", 9)},
			games.BlackjackWin,
		},
		{
			"player outscores dealer",
			[]deck.Card{card("10", 10), card("K", 10)},
			[]deck.Card{card("10", 10), card("7", 7)},
			games.BlackjackWin,
		},
		{
			"dealer outscores player",
			[]deck.Card{card("10", 10), card("7", 7)},
			[]deck.Card{card("10", 10), card("9", 9)},
			games.BlackjackDealer,
		},
		{
			"equal totals push",
			[]deck.Card{card("10", 10), card("8", 8)},
			[]deck.Card{card("9", 9), card("9", 9)},
			games.BlackjackPush,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := games.SettleBlackjack(tt.player, tt.dealer); got != tt.want {
				t.Errorf("SettleBlackjack = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestBlackjackPayout(t *testing.T) {
	tests := []struct {
		outcome games.BlackjackOutcome
		stake   int64
		want    int64
	}{
		{games.BlackjackWin, 100, 200},
		{games.BlackjackNatural, 250, 500},
		{games.BlackjackPush, 100, 100},
		{games.BlackjackDealer, 100, 0},
	}

	for _, tt := range tests {
		if got := games.BlackjackPayout(tt.outcome, tt.stake); got != tt.want {
			t.Errorf("BlackjackPayout(%s, %d) = %d, want %d", tt.outcome, tt.stake, got, tt.want)
		}
	}
}
