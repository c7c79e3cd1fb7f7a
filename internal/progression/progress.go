package progression

import (
	"math"

	"github.com/tahcohcat/memorymatch-web/internal/models"
)

var levels = []int{100, 150, 200, 250, 300}

// ComputeProgress reports the level band bestScore sits in and how close it
// is to the next one.
func ComputeProgress(bestScore int) models.LevelProgress {
	for i, next := range levels {
		if next <= bestScore {
			continue
		}

		previous := 0
		if i > 0 {
			previous = levels[i-1]
		}

		progress := float64(bestScore-previous) / float64(next-previous) * 100
		progress = math.Max(0, math.Min(100, progress))

		return models.LevelProgress{
			CurrentLevel: previous,
			NextLevel:    next,
			Progress:     progress,
			PointsNeeded: next - bestScore,
		}
	}

	return models.LevelProgress{MaxLevel: true}
}
