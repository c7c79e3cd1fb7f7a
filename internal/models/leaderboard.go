package models

type LeaderboardEntry struct {
	Rank        int    `json:"rank" db:"rank"`
	UserID      int    `json:"user_id" db:"user_id"`
	Username    string `json:"username" db:"username"`
	DisplayName string `json:"display_name" db:"display_name"`
	BestScore   int    `json:"best_score" db:"best_score"`
	BestTime    *int64 `json:"best_time" db:"best_time"` // milliseconds
	GamesPlayed int    `json:"games_played" db:"games_played"`
}
