// Package games holds the pure round resolvers. A resolver maps dealt
// state and a stake to an outcome and payout; it never touches the ledger.
package games

import "casino401k-backend/internal/deck"

type BlackjackOutcome string

const (
	BlackjackWin     BlackjackOutcome = "win"
	BlackjackNatural BlackjackOutcome = "blackjack"
	BlackjackPush    BlackjackOutcome = "push"
	BlackjackDealer  BlackjackOutcome = "dealer"
)

// DealerStandTotal is the total the dealer stands on, soft hands included.
const DealerStandTotal = 17

// HandValue sums card values, downgrading aces from 11 to 1 one at a time
// while the total exceeds 21 and an unconverted ace remains.
func HandValue(hand []deck.Card) int {
	total := 0
	aces := 0
	for _, c := range hand {
		total += c.Value
		if c.Rank == "A" {
			aces++
		}
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total
}

// IsNatural reports a two-card 21, checked immediately after the deal.
func IsNatural(hand []deck.Card) bool {
	return len(hand) == 2 && HandValue(hand) == 21
}

// PlayDealer draws into the dealer hand until it reaches the stand total.
func PlayDealer(d *deck.Deck, dealer []deck.Card) []deck.Card {
	hand := append([]deck.Card(nil), dealer...)
	for HandValue(hand) < DealerStandTotal {
		hand = append(hand, d.Draw())
	}
	return hand
}

// SettleBlackjack compares finished hands. The caller handles the player
// bust case before the dealer ever draws.
func SettleBlackjack(player, dealer []deck.Card) BlackjackOutcome {
	playerScore := HandValue(player)
	dealerScore := HandValue(dealer)

	switch {
	case dealerScore > 21:
		return BlackjackWin
	case playerScore > dealerScore:
		return BlackjackWin
	case playerScore < dealerScore:
		return BlackjackDealer
	default:
		return BlackjackPush
	}
}

// BlackjackPayout returns the credit owed for an outcome: wins and naturals
// pay double the stake, a push refunds it, a dealer win pays nothing.
func BlackjackPayout(outcome BlackjackOutcome, stake int64) int64 {
	switch outcome {
	case BlackjackWin, BlackjackNatural:
		return stake * 2
	case BlackjackPush:
		return stake
	default:
		return 0
	}
}
