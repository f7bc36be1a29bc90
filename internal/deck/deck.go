// Package deck builds and shuffles standard 52-card decks.
//
// Two value conventions exist and are never blended: the sequential deck
// (ace low, A=1 through K=13) drives High-Low comparisons, while the
// blackjack deck scores face cards as 10 and aces as 11 (downgraded to 1
// during hand valuation).
package deck

import (
	"fmt"

	"casino401k-backend/internal/rng"
)

type SuitColor string

const (
	SuitColorDark   SuitColor = "dark"
	SuitColorBright SuitColor = "bright"
)

type Card struct {
	Rank      string    `json:"rank"`
	Value     int       `json:"value"`
	Suit      string    `json:"suit"`
	SuitColor SuitColor `json:"suit_color"`
	Code      string    `json:"code"`
}

type Deck []Card

var ranks = []string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}

var suits = []struct {
	symbol string
	color  SuitColor
}{
	{"♠", SuitColorDark},
	{"♥", SuitColorBright},
	{"♦", SuitColorBright},
	{"♣", SuitColorDark},
}

// New returns the 52-card sequential deck: A=1 up through K=13.
func New() Deck {
	return build(func(i int, rank string) int {
		return i + 1
	})
}

// NewBlackjack returns the 52-card blackjack deck: J/Q/K count 10 and the
// ace counts 11 until hand valuation downgrades it.
func NewBlackjack() Deck {
	return build(func(i int, rank string) int {
		switch rank {
		case "A":
			return 11
		case "J", "Q", "K":
			return 10
		default:
			return i + 1
		}
	})
}

func build(value func(i int, rank string) int) Deck {
	deck := make(Deck, 0, 52)
	for _, suit := range suits {
		for i, rank := range ranks {
			deck = append(deck, Card{
				Rank:      rank,
				Value:     value(i, rank),
				Suit:      suit.symbol,
				SuitColor: suit.color,
				Code:      fmt.Sprintf("%s%s", rank, suit.symbol),
			})
		}
	}
	return deck
}

// Shuffle permutes the deck in place with Fisher-Yates backed by the given
// source. Every permutation is equally likely.
func (d Deck) Shuffle(src *rng.Source) {
	src.Shuffle(len(d), func(i, j int) {
		d[i], d[j] = d[j], d[i]
	})
}

// Draw removes and returns the top card. It panics on an empty deck; a
// single 52-card deck always covers a full round of any game here.
func (d *Deck) Draw() Card {
	deck := *d
	card := deck[len(deck)-1]
	*d = deck[:len(deck)-1]
	return card
}
