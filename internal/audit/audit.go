// Package audit persists one write-once GameSession row per settled round.
// Rows carry the RNG seed, so any recorded round can be replayed through
// the resolvers and its payout re-derived.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"casino401k-backend/internal/models"
)

type Log struct {
	db *sql.DB
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS game_sessions (
		id            TEXT PRIMARY KEY,
		user_id       TEXT NOT NULL,
		game_type     TEXT NOT NULL,
		bet_amount    INTEGER NOT NULL,
		payout_amount INTEGER NOT NULL,
		result        TEXT NOT NULL,
		details       TEXT NOT NULL DEFAULT '{}',
		rng_seed      TEXT,
		created_at    TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_game_sessions_user ON game_sessions(user_id, created_at)`,
}

// Open opens (or creates) the audit database at path. Use ":memory:" for
// an ephemeral log.
func Open(path string) (*Log, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit db: %v", err)
	}

	for _, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("audit migration failed: %v", err)
		}
	}

	return &Log{db: db}, nil
}

func (l *Log) Close() error {
	return l.db.Close()
}

// Append records a settled round. Sessions are never updated or deleted.
func (l *Log) Append(ctx context.Context, session *models.GameSession) error {
	details, err := json.Marshal(session.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal session details: %v", err)
	}

	createdAt := session.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = l.db.ExecContext(ctx,
		`INSERT INTO game_sessions
			(id, user_id, game_type, bet_amount, payout_amount, result, details, rng_seed, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID, session.UserID, string(session.GameType),
		session.BetAmount, session.PayoutAmount, session.Result,
		string(details), session.RNGSeed, createdAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to append game session: %v", err)
	}
	return nil
}

// RecentSessions returns up to limit sessions for a user, newest first.
func (l *Log) RecentSessions(ctx context.Context, userID string, limit int) ([]*models.GameSession, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	rows, err := l.db.QueryContext(ctx,
		`SELECT id, user_id, game_type, bet_amount, payout_amount, result, details, rng_seed, created_at
		 FROM game_sessions WHERE user_id = ?
		 ORDER BY created_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query game sessions: %v", err)
	}
	defer rows.Close()

	var sessions []*models.GameSession
	for rows.Next() {
		var (
			session   models.GameSession
			gameType  string
			details   string
			createdAt string
		)
		if err := rows.Scan(&session.ID, &session.UserID, &gameType,
			&session.BetAmount, &session.PayoutAmount, &session.Result,
			&details, &session.RNGSeed, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan game session: %v", err)
		}

		session.GameType = models.GameType(gameType)
		if err := json.Unmarshal([]byte(details), &session.Details); err != nil {
			session.Details = map[string]any{}
		}
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			session.CreatedAt = ts
		}

		sessions = append(sessions, &session)
	}
	return sessions, rows.Err()
}
