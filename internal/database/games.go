package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tahcohcat/memorymatch-web/internal/models"
)

const sessionColumns = `id, session_id, user_id, difficulty, grid_size, started_at, finished_at, completed, score, moves, matches, time_ms`

// CreateGameSession records the start of a new game and fills in its ID.
func (db *DB) CreateGameSession(ctx context.Context, session *models.GameSession) error {
	query := `
		INSERT INTO game_sessions (session_id, user_id, difficulty, grid_size, started_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`
	err := db.get(ctx, &session.ID, query,
		session.SessionID, session.UserID, session.Difficulty, session.GridSize, session.StartedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("game session %s: %w", session.SessionID, ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to create game session: %w", err)
	}
	return nil
}

func (db *DB) GetGameSession(ctx context.Context, sessionID string) (*models.GameSession, error) {
	var session models.GameSession
	err := db.get(ctx, &session, `SELECT `+sessionColumns+` FROM game_sessions WHERE session_id = ?`, sessionID)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("game session: %w", ErrNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("failed to get game session: %w", err)
	}
	return &session, nil
}

// RecordMove counts one pair flip on an unfinished game.
func (db *DB) RecordMove(ctx context.Context, sessionID string, matched bool) error {
	matchedInc := 0
	if matched {
		matchedInc = 1
	}

	res, err := db.exec(ctx, `
		UPDATE game_sessions
		SET moves = moves + 1, matches = matches + ?
		WHERE session_id = ? AND completed = FALSE
	`, matchedInc, sessionID)
	if err != nil {
		return fmt.Errorf("failed to record move: %w", err)
	}
	return requireRow(res, "open game session")
}

// CompleteGameSession stores the final score. Already completed sessions are
// left untouched and reported as ErrNotFound.
func (db *DB) CompleteGameSession(ctx context.Context, sessionID string, score int, timeMs int64, at time.Time) error {
	res, err := db.exec(ctx, `
		UPDATE game_sessions
		SET finished_at = ?, completed = TRUE, score = ?, time_ms = ?
		WHERE session_id = ? AND completed = FALSE
	`, at, score, timeMs, sessionID)
	if err != nil {
		return fmt.Errorf("failed to complete game session: %w", err)
	}
	return requireRow(res, "open game session")
}

// ListUserGames returns the most recent games of a user, newest first.
func (db *DB) ListUserGames(ctx context.Context, userID, limit int) ([]models.GameSession, error) {
	if limit <= 0 {
		limit = 20
	}

	games := []models.GameSession{}
	query := `SELECT ` + sessionColumns + ` FROM game_sessions WHERE user_id = ? ORDER BY started_at DESC, id DESC LIMIT ?`
	if err := db.sel(ctx, &games, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	return games, nil
}

func requireRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}
