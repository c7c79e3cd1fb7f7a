package models

import (
	"time"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	DifficultyExpert Difficulty = "expert"
)

// ParseDifficulty normalizes a client supplied difficulty. Unknown values
// fall back to easy.
func ParseDifficulty(s string) Difficulty {
	switch Difficulty(s) {
	case DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyExpert:
		return Difficulty(s)
	}
	return DifficultyEasy
}

// GridSize is the default board edge length for a difficulty.
func (d Difficulty) GridSize() int {
	switch d {
	case DifficultyMedium:
		return 6
	case DifficultyHard:
		return 8
	case DifficultyExpert:
		return 10
	}
	return 4
}

// GameSession represents one memory-matching game from start to completion
type GameSession struct {
	ID         int        `json:"id" db:"id"`
	SessionID  string     `json:"session_id" db:"session_id"`
	UserID     int        `json:"user_id" db:"user_id"`
	Difficulty Difficulty `json:"difficulty" db:"difficulty"`
	GridSize   int        `json:"grid_size" db:"grid_size"`
	StartedAt  time.Time  `json:"started_at" db:"started_at"`
	FinishedAt *time.Time `json:"finished_at" db:"finished_at"`
	Completed  bool       `json:"completed" db:"completed"`
	Score      int        `json:"score" db:"score"`
	Moves      int        `json:"moves" db:"moves"`
	Matches    int        `json:"matches" db:"matches"`
	TimeMs     *int64     `json:"time_ms" db:"time_ms"`
}

// Pairs is the number of card pairs on the board.
func (g *GameSession) Pairs() int {
	return g.GridSize * g.GridSize / 2
}

type StartGameRequest struct {
	Difficulty string `json:"difficulty"`
	GridSize   int    `json:"grid_size"`
}

type MoveRequest struct {
	Matched bool `json:"matched"`
}

type CompleteGameRequest struct {
	Score  int   `json:"score"`
	TimeMs int64 `json:"time_ms"`
}

// GameResult is returned to the player when a game is completed.
type GameResult struct {
	Session         *GameSession      `json:"session"`
	Rating          PerformanceRating `json:"rating"`
	NewAchievements []Achievement     `json:"new_achievements"`
	Progress        LevelProgress     `json:"progress"`
	Message         string            `json:"message"`
}

// ProfileProgress bundles everything the profile page shows about progression.
type ProfileProgress struct {
	Statistics   UserStatistics `json:"statistics"`
	Achievements []Achievement  `json:"achievements"`
	Progress     LevelProgress  `json:"progress"`
	Message      string         `json:"message"`
}
