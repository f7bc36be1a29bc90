package models

import "fmt"

// MinBet is the table minimum for the card and wheel games.
const MinBet int64 = 100

// SlotsBetOptions are the only chip sizes the slot machine accepts.
var SlotsBetOptions = []int64{100, 250, 500, 1000}

type BetRequest struct {
	Amount int64 `json:"amount" binding:"required"`
}

func (r *BetRequest) Validate() error {
	if r.Amount <= 0 {
		return fmt.Errorf("bet amount must be greater than zero")
	}
	if r.Amount < MinBet {
		return fmt.Errorf("minimum bet is %d tokens", MinBet)
	}
	return nil
}

type HighLowChoiceRequest struct {
	Direction string `json:"direction" binding:"required,oneof=higher lower"`
}

type SlotsSpinRequest struct {
	Amount int64 `json:"amount" binding:"required"`
}

func (r *SlotsSpinRequest) Validate() error {
	for _, opt := range SlotsBetOptions {
		if r.Amount == opt {
			return nil
		}
	}
	return fmt.Errorf("bet must be one of the fixed chip sizes: %v", SlotsBetOptions)
}

type RouletteSpinRequest struct {
	Amount int64  `json:"amount" binding:"required"`
	Color  string `json:"color" binding:"required,oneof=red black"`
}

func (r *RouletteSpinRequest) Validate() error {
	if r.Amount < MinBet {
		return fmt.Errorf("minimum bet is %d tokens", MinBet)
	}
	return nil
}
