package database

import (
	"context"
	"time"

	"github.com/tahcohcat/memorymatch-web/internal/models"
)

// Store is everything the services need from persistence.
type Store interface {
	// users
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateLastLogin(ctx context.Context, userID int, at time.Time) error
	UpdateProfile(ctx context.Context, userID int, displayName, email string) error
	UpdatePassword(ctx context.Context, userID int, passwordHash string) error
	ListUsernames(ctx context.Context) ([]string, error)

	// games
	CreateGameSession(ctx context.Context, session *models.GameSession) error
	GetGameSession(ctx context.Context, sessionID string) (*models.GameSession, error)
	RecordMove(ctx context.Context, sessionID string, matched bool) error
	CompleteGameSession(ctx context.Context, sessionID string, score int, timeMs int64, at time.Time) error
	ListUserGames(ctx context.Context, userID, limit int) ([]models.GameSession, error)

	// statistics and ranking
	GetUserStatistics(ctx context.Context, userID int) (*models.UserStatistics, error)
	GetUserRank(ctx context.Context, userID int) (*int, error)
	GetLeaderboard(ctx context.Context, difficulty string, limit int) ([]models.LeaderboardEntry, error)

	// achievements and activity
	UnlockAchievements(ctx context.Context, userID int, achievements []models.Achievement, at time.Time) ([]string, error)
	ListUnlockedAchievements(ctx context.Context, userID int) ([]models.UnlockedAchievement, error)
	RecordActivity(ctx context.Context, activity *models.GameActivity) error
	GetRecentActivities(ctx context.Context, userID, limit int) ([]models.GameActivity, error)
}

var _ Store = (*DB)(nil)
