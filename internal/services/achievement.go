package services

import (
	"context"
	"fmt"
	"time"

	"github.com/tahcohcat/memorymatch-web/internal/database"
	"github.com/tahcohcat/memorymatch-web/internal/logger"
	"github.com/tahcohcat/memorymatch-web/internal/models"
	"github.com/tahcohcat/memorymatch-web/internal/progression"
)

type AchievementService struct {
	store    database.Store
	notifier Notifier
}

func NewAchievementService(store database.Store, notifier Notifier) *AchievementService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &AchievementService{store: store, notifier: notifier}
}

// GetProfileProgress evaluates a player's current badges, level progress and
// message from fresh statistics.
func (s *AchievementService) GetProfileProgress(ctx context.Context, userID int) (*models.ProfileProgress, error) {
	stats, err := s.store.GetUserStatistics(ctx, userID)
	if err != nil {
		return nil, err
	}

	achievements := progression.EvaluateAchievements(*stats)

	// Rank badges can be earned while someone else plays, so persist here too.
	if _, err := s.persist(ctx, userID, achievements); err != nil {
		logger.New().WithError(err).Warn(fmt.Sprintf("failed to sync achievements for user %d", userID))
	}

	return &models.ProfileProgress{
		Statistics:   *stats,
		Achievements: achievements,
		Progress:     progression.ComputeProgress(stats.BestScore),
		Message:      progression.SelectMotivationalMessage(*stats),
	}, nil
}

// SyncAchievements evaluates stats, stores any badge not seen before and
// returns only the newly unlocked ones.
func (s *AchievementService) SyncAchievements(ctx context.Context, userID int, stats models.UserStatistics) ([]models.Achievement, error) {
	return s.persist(ctx, userID, progression.EvaluateAchievements(stats))
}

func (s *AchievementService) persist(ctx context.Context, userID int, achievements []models.Achievement) ([]models.Achievement, error) {
	newIDs, err := s.store.UnlockAchievements(ctx, userID, achievements, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	isNew := make(map[string]bool, len(newIDs))
	for _, id := range newIDs {
		isNew[id] = true
	}

	unlocked := []models.Achievement{}
	for _, achievement := range achievements {
		if !isNew[achievement.ID] {
			continue
		}
		unlocked = append(unlocked, achievement)

		// Record activity for the feed; a failure here must not lose the badge.
		activity := &models.GameActivity{
			UserID: userID,
			Type:   "badge_earned",
			Title:  fmt.Sprintf("Earned \"%s\" badge", achievement.Title),
			Icon:   achievement.Icon,
		}
		if err := s.store.RecordActivity(ctx, activity); err != nil {
			logger.New().WithError(err).Warn("failed to record badge activity")
		}

		s.notifier.Publish(EventAchievementUnlocked, map[string]interface{}{
			"user_id":     userID,
			"achievement": achievement,
		})
	}

	return unlocked, nil
}

// GetAchievements returns the whole badge catalog in catalog order. Earned
// badges carry the time they were first stored; locked ones have no UnlockedAt.
func (s *AchievementService) GetAchievements(ctx context.Context, userID int) ([]models.Achievement, error) {
	unlocked, err := s.store.ListUnlockedAchievements(ctx, userID)
	if err != nil {
		return nil, err
	}

	unlockedAt := make(map[string]time.Time, len(unlocked))
	for _, u := range unlocked {
		unlockedAt[u.AchievementID] = u.UnlockedAt
	}

	achievements := progression.Catalog()
	for i := range achievements {
		if at, ok := unlockedAt[achievements[i].ID]; ok {
			achievements[i].UnlockedAt = &at
		}
	}
	return achievements, nil
}

// GetRecentActivities returns recent user activities
func (s *AchievementService) GetRecentActivities(ctx context.Context, userID, limit int) ([]models.GameActivity, error) {
	return s.store.GetRecentActivities(ctx, userID, limit)
}

// RecordActivity adds a new activity entry for the user
func (s *AchievementService) RecordActivity(ctx context.Context, userID int, activityType, title, details, icon string) error {
	return s.store.RecordActivity(ctx, &models.GameActivity{
		UserID:  userID,
		Type:    activityType,
		Title:   title,
		Details: details,
		Icon:    icon,
	})
}
