package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tahcohcat/memorymatch-web/internal/models"
)

// rankedPlayers ranks every active player with a completed game: best score
// first, then fastest time (players without a time last), then lowest user id.
// Disabled accounts hold no rank. The optional difficulty filter is bound twice.
const rankedPlayers = `
	WITH best AS (
		SELECT
			g.user_id,
			MAX(g.score) AS best_score,
			MIN(g.time_ms) AS best_time,
			COUNT(*) AS games_played
		FROM game_sessions g
		INNER JOIN users pu ON pu.id = g.user_id
		WHERE g.completed = TRUE AND pu.is_active = TRUE AND (? = '' OR g.difficulty = ?)
		GROUP BY g.user_id
	),
	ranked AS (
		SELECT
			b.user_id,
			b.best_score,
			b.best_time,
			b.games_played,
			ROW_NUMBER() OVER (
				ORDER BY b.best_score DESC,
					CASE WHEN b.best_time IS NULL THEN 1 ELSE 0 END,
					b.best_time ASC,
					b.user_id ASC
			) AS rank
		FROM best b
	)
`

// GetUserStatistics aggregates a user's completed games. Rank is nil when the
// user has not completed a game yet.
func (db *DB) GetUserStatistics(ctx context.Context, userID int) (*models.UserStatistics, error) {
	stats := models.UserStatistics{UserID: userID}

	query := `
		SELECT
			COUNT(*) AS total_games,
			COALESCE(MAX(score), 0) AS best_score,
			MIN(time_ms) AS best_time
		FROM game_sessions
		WHERE user_id = ? AND completed = TRUE
	`
	if err := db.get(ctx, &stats, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get user statistics: %w", err)
	}

	if stats.TotalGames == 0 {
		return &stats, nil
	}

	var lastPlayed time.Time
	err := db.get(ctx, &lastPlayed, `
		SELECT finished_at FROM game_sessions
		WHERE user_id = ? AND completed = TRUE
		ORDER BY finished_at DESC
		LIMIT 1
	`, userID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to get last played: %w", err)
	}
	if err == nil {
		stats.LastPlayed = &lastPlayed
	}

	rank, err := db.GetUserRank(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats.Rank = rank

	return &stats, nil
}

// GetUserRank returns the overall leaderboard position of a user, or nil when unranked.
func (db *DB) GetUserRank(ctx context.Context, userID int) (*int, error) {
	var rank int
	err := db.get(ctx, &rank, rankedPlayers+`SELECT rank FROM ranked WHERE user_id = ?`, "", "", userID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user rank: %w", err)
	}
	return &rank, nil
}

// GetLeaderboard returns the top players, optionally for a single difficulty.
func (db *DB) GetLeaderboard(ctx context.Context, difficulty string, limit int) ([]models.LeaderboardEntry, error) {
	query := rankedPlayers + `
		SELECT
			r.rank,
			r.user_id,
			u.username,
			u.display_name,
			r.best_score,
			r.best_time,
			r.games_played
		FROM ranked r
		INNER JOIN users u ON u.id = r.user_id
		ORDER BY r.rank
		LIMIT ?
	`

	entries := []models.LeaderboardEntry{}
	if err := db.sel(ctx, &entries, query, difficulty, difficulty, limit); err != nil {
		return nil, fmt.Errorf("could not query leaderboard: %w", err)
	}
	return entries, nil
}
