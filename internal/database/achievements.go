package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tahcohcat/memorymatch-web/internal/models"
)

// UnlockAchievements persists the given badges for a user and returns the IDs
// that were not unlocked before. Existing unlocks keep their original time.
func (db *DB) UnlockAchievements(ctx context.Context, userID int, achievements []models.Achievement, at time.Time) ([]string, error) {
	if len(achievements) == 0 {
		return nil, nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := tx.Rebind(`
		INSERT INTO user_achievements (user_id, achievement_id, unlocked_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id, achievement_id) DO NOTHING
	`)

	var unlocked []string
	for _, achievement := range achievements {
		res, err := tx.ExecContext(ctx, query, userID, achievement.ID, at)
		if err != nil {
			return nil, fmt.Errorf("failed to unlock achievement %s: %w", achievement.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		if n > 0 {
			unlocked = append(unlocked, achievement.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit achievements: %w", err)
	}
	return unlocked, nil
}

func (db *DB) ListUnlockedAchievements(ctx context.Context, userID int) ([]models.UnlockedAchievement, error) {
	unlocked := []models.UnlockedAchievement{}
	query := `
		SELECT user_id, achievement_id, unlocked_at
		FROM user_achievements
		WHERE user_id = ?
		ORDER BY unlocked_at, achievement_id
	`
	if err := db.sel(ctx, &unlocked, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	return unlocked, nil
}

// RecordActivity adds a new activity entry for the user
func (db *DB) RecordActivity(ctx context.Context, activity *models.GameActivity) error {
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO game_activities (user_id, type, title, details, icon, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`
	err := db.get(ctx, &activity.ID, query,
		activity.UserID, activity.Type, activity.Title, activity.Details, activity.Icon, activity.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}
	return nil
}

// GetRecentActivities returns recent user activities
func (db *DB) GetRecentActivities(ctx context.Context, userID, limit int) ([]models.GameActivity, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT id, user_id, type, title, details, icon, created_at
		FROM game_activities
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`

	activities := []models.GameActivity{}
	if err := db.sel(ctx, &activities, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to get activities: %w", err)
	}
	return activities, nil
}
