package models

import "time"

type GameType string

const (
	GameTypeBlackjack GameType = "blackjack"
	GameTypeHighLow   GameType = "high-low"
	GameTypeSlots     GameType = "slots-mini"
	GameTypeRoulette  GameType = "roulette"
)

// Stage is a round-controller state. Not every game visits every stage.
type Stage string

const (
	StageIdle          Stage = "idle"
	StagePlayerTurn    Stage = "player-turn"
	StageDealerTurn    Stage = "dealer-turn"
	StageWaitingChoice Stage = "waiting-choice"
	StageSpinning      Stage = "spinning"
	StageRoundOver     Stage = "round-over"
)

// MaxHistoryEntries bounds the per-game round history shown to the UI.
const MaxHistoryEntries = 12

// HistoryEntry summarizes a completed round.
type HistoryEntry struct {
	ID        string    `json:"id"`
	Outcome   string    `json:"outcome"`
	Stake     int64     `json:"stake"`
	Note      string    `json:"note"`
	Timestamp time.Time `json:"timestamp"`
}

// GameSession is the write-once audit record for a settled round. The
// recorded RNG seed makes the round independently replayable.
type GameSession struct {
	ID           string         `json:"id"`
	UserID       string         `json:"user_id"`
	GameType     GameType       `json:"game_type"`
	BetAmount    int64          `json:"bet_amount"`
	PayoutAmount int64          `json:"payout_amount"`
	Result       string         `json:"result"`
	Details      map[string]any `json:"details"`
	RNGSeed      string         `json:"rng_seed,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// PendingPayout is an owed credit that could not be applied when its round
// settled. It is keyed by round ID and retried until durably applied.
type PendingPayout struct {
	RoundID     string    `json:"round_id"`
	UserID      string    `json:"user_id"`
	Amount      int64     `json:"amount"`
	Description string    `json:"description"`
	Attempts    int       `json:"attempts"`
	CreatedAt   time.Time `json:"created_at"`
}
