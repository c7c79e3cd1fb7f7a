package models

import (
	"time"
)

type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// UserStatistics is the aggregate a player's badges and level are computed from.
// Optional fields are nil when the player has no data for them.
type UserStatistics struct {
	UserID     int        `json:"user_id" db:"user_id"`
	TotalGames int        `json:"total_games" db:"total_games"`
	BestScore  int        `json:"best_score" db:"best_score"`
	BestTime   *int64     `json:"best_time" db:"best_time"` // milliseconds
	Rank       *int       `json:"rank" db:"rank"`
	LastPlayed *time.Time `json:"last_played" db:"last_played"`
}

type Achievement struct {
	ID          string     `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	Icon        string     `json:"icon" db:"icon"`
	Rarity      Rarity     `json:"rarity" db:"rarity"`
	UnlockedAt  *time.Time `json:"unlocked_at" db:"unlocked_at"`
}

// UnlockedAchievement is a badge persisted the first time it was earned.
type UnlockedAchievement struct {
	UserID        int       `json:"user_id" db:"user_id"`
	AchievementID string    `json:"achievement_id" db:"achievement_id"`
	UnlockedAt    time.Time `json:"unlocked_at" db:"unlocked_at"`
}

type PerformanceRating struct {
	Rating string `json:"rating"`
	Emoji  string `json:"emoji"`
	Color  string `json:"color"`
}

// LevelProgress describes how far a best score is from the next level.
// When MaxLevel is set the remaining fields are zero.
type LevelProgress struct {
	MaxLevel     bool    `json:"max_level"`
	CurrentLevel int     `json:"current_level"`
	NextLevel    int     `json:"next_level"`
	Progress     float64 `json:"progress"`
	PointsNeeded int     `json:"points_needed"`
}

type GameActivity struct {
	ID        int       `json:"id" db:"id"`
	UserID    int       `json:"user_id" db:"user_id"`
	Type      string    `json:"type" db:"type"` // game_completed, badge_earned
	Title     string    `json:"title" db:"title"`
	Details   string    `json:"details" db:"details"`
	Icon      string    `json:"icon" db:"icon"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
