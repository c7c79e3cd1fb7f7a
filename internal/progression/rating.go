package progression

import (
	"github.com/tahcohcat/memorymatch-web/internal/models"
)

type ratingThresholds struct {
	excellent, good, average int
}

var difficultyThresholds = map[models.Difficulty]ratingThresholds{
	models.DifficultyEasy:   {excellent: 180, good: 140, average: 100},
	models.DifficultyMedium: {excellent: 220, good: 180, average: 140},
	models.DifficultyHard:   {excellent: 280, good: 220, average: 180},
	models.DifficultyExpert: {excellent: 350, good: 280, average: 220},
}

var (
	RatingExcellent  = models.PerformanceRating{Rating: "Excellent", Emoji: "🏆", Color: "#22c55e"}
	RatingGood       = models.PerformanceRating{Rating: "Good", Emoji: "👍", Color: "#3b82f6"}
	RatingAverage    = models.PerformanceRating{Rating: "Average", Emoji: "👌", Color: "#f59e0b"}
	RatingKeepTrying = models.PerformanceRating{Rating: "Keep Trying", Emoji: "💪", Color: "#ef4444"}
)

// RatePerformance rates a single finished game. Unknown difficulties are
// rated against the easy thresholds.
func RatePerformance(score int, difficulty string) models.PerformanceRating {
	t, ok := difficultyThresholds[models.Difficulty(difficulty)]
	if !ok {
		t = difficultyThresholds[models.DifficultyEasy]
	}

	switch {
	case score >= t.excellent:
		return RatingExcellent
	case score >= t.good:
		return RatingGood
	case score >= t.average:
		return RatingAverage
	default:
		return RatingKeepTrying
	}
}
