package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tahcohcat/memorymatch-web/internal/database"
	"github.com/tahcohcat/memorymatch-web/internal/logger"
	"github.com/tahcohcat/memorymatch-web/internal/models"
	"github.com/tahcohcat/memorymatch-web/internal/progression"
)

const (
	minGridSize = 2
	maxGridSize = 12
)

type GameService struct {
	store        database.Store
	achievements *AchievementService
	leaderboard  *LeaderboardService
	notifier     Notifier
}

func NewGameService(store database.Store, achievements *AchievementService, leaderboard *LeaderboardService, notifier Notifier) *GameService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &GameService{
		store:        store,
		achievements: achievements,
		leaderboard:  leaderboard,
		notifier:     notifier,
	}
}

// StartGame records a new game. Unknown difficulties play as easy and a zero
// grid size uses the difficulty's default board.
func (s *GameService) StartGame(ctx context.Context, userID int, difficulty string, gridSize int) (*models.GameSession, error) {
	d := models.ParseDifficulty(difficulty)
	if gridSize == 0 {
		gridSize = d.GridSize()
	}
	if gridSize < minGridSize || gridSize > maxGridSize || gridSize%2 != 0 {
		return nil, fmt.Errorf("%w: grid size must be an even number between %d and %d", ErrValidation, minGridSize, maxGridSize)
	}

	session := &models.GameSession{
		SessionID:  uuid.NewString(),
		UserID:     userID,
		Difficulty: d,
		GridSize:   gridSize,
		StartedAt:  time.Now().UTC(),
	}
	if err := s.store.CreateGameSession(ctx, session); err != nil {
		return nil, err
	}

	logger.New().Debug(fmt.Sprintf("User %d started %s game %s", userID, d, session.SessionID))
	return session, nil
}

// RecordMove counts a pair flip on one of the user's open games.
func (s *GameService) RecordMove(ctx context.Context, userID int, sessionID string, matched bool) (*models.GameSession, error) {
	session, err := s.openSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if matched && session.Matches >= session.Pairs() {
		return nil, fmt.Errorf("%w: all %d pairs are already matched", ErrValidation, session.Pairs())
	}

	if err := s.store.RecordMove(ctx, sessionID, matched); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrSessionFinished
		}
		return nil, err
	}

	session.Moves++
	if matched {
		session.Matches++
	}
	return session, nil
}

// CompleteGame stores the final score, refreshes the player's statistics and
// returns the rating, badges earned by this game, level progress and a message.
func (s *GameService) CompleteGame(ctx context.Context, userID int, sessionID string, score int, timeMs int64) (*models.GameResult, error) {
	if score < 0 || timeMs < 0 {
		return nil, fmt.Errorf("%w: score and time must not be negative", ErrValidation)
	}

	session, err := s.openSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	finishedAt := time.Now().UTC()
	if err := s.store.CompleteGameSession(ctx, sessionID, score, timeMs, finishedAt); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrSessionFinished
		}
		return nil, err
	}
	session.Completed = true
	session.Score = score
	session.TimeMs = &timeMs
	session.FinishedAt = &finishedAt

	s.leaderboard.Invalidate(session.Difficulty)

	stats, err := s.store.GetUserStatistics(ctx, userID)
	if err != nil {
		return nil, err
	}

	rating := progression.RatePerformance(score, string(session.Difficulty))

	if err := s.achievements.RecordActivity(ctx, userID, "game_completed",
		fmt.Sprintf("Finished a %s game with %d points", session.Difficulty, score),
		rating.Rating, rating.Emoji); err != nil {
		logger.New().WithError(err).Warn("failed to record game activity")
	}

	newAchievements, err := s.achievements.SyncAchievements(ctx, userID, *stats)
	if err != nil {
		// The game itself is stored; badges are re-synced on the next profile view.
		logger.New().WithError(err).Warn(fmt.Sprintf("failed to sync achievements for user %d", userID))
		newAchievements = []models.Achievement{}
	}

	s.notifier.Publish(EventLeaderboardUpdated, map[string]interface{}{
		"user_id":    userID,
		"difficulty": session.Difficulty,
		"score":      score,
		"rank":       stats.Rank,
	})

	logger.New().Info(fmt.Sprintf("User %d finished game %s: %d points in %dms (%s)",
		userID, sessionID, score, timeMs, rating.Rating))

	return &models.GameResult{
		Session:         session,
		Rating:          rating,
		NewAchievements: newAchievements,
		Progress:        progression.ComputeProgress(stats.BestScore),
		Message:         progression.SelectMotivationalMessage(*stats),
	}, nil
}

// GetGame returns one of the user's games.
func (s *GameService) GetGame(ctx context.Context, userID int, sessionID string) (*models.GameSession, error) {
	session, err := s.store.GetGameSession(ctx, sessionID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrSessionNotFound
	} else if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, ErrForbidden
	}
	return session, nil
}

// ListGames returns the user's most recent games.
func (s *GameService) ListGames(ctx context.Context, userID, limit int) ([]models.GameSession, error) {
	return s.store.ListUserGames(ctx, userID, limit)
}

func (s *GameService) openSession(ctx context.Context, userID int, sessionID string) (*models.GameSession, error) {
	session, err := s.GetGame(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Completed {
		return nil, ErrSessionFinished
	}
	return session, nil
}
