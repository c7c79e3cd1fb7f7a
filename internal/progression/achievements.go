// Package progression turns a player's aggregate statistics into badges,
// ratings, level progress and encouragement. Everything here is pure: no I/O,
// no shared state, safe to call from any number of request goroutines.
package progression

import (
	"github.com/tahcohcat/memorymatch-web/internal/models"
)

type achievementRule struct {
	id          string
	title       string
	description string
	icon        string
	rarity      models.Rarity
	unlocked    func(stats models.UserStatistics) bool
}

// Rules are checked in this order and the result keeps it. Tiers are
// cumulative: a higher tier never hides the lower ones.
var achievementRules = []achievementRule{
	{
		id: "ten_games", title: "Getting Started", description: "Complete 10 games",
		icon: "🎮", rarity: models.RarityCommon,
		unlocked: func(s models.UserStatistics) bool { return s.TotalGames >= 10 },
	},
	{
		id: "fifty_games", title: "Dedicated Player", description: "Complete 50 games",
		icon: "🎯", rarity: models.RarityUncommon,
		unlocked: func(s models.UserStatistics) bool { return s.TotalGames >= 50 },
	},
	{
		id: "hundred_games", title: "Memory Veteran", description: "Complete 100 games",
		icon: "🏅", rarity: models.RarityRare,
		unlocked: func(s models.UserStatistics) bool { return s.TotalGames >= 100 },
	},
	{
		id: "score_100", title: "Century", description: "Score 100 points in a single game",
		icon: "💯", rarity: models.RarityCommon,
		unlocked: func(s models.UserStatistics) bool { return s.BestScore >= 100 },
	},
	{
		id: "score_200", title: "Sharp Mind", description: "Score 200 points in a single game",
		icon: "🧠", rarity: models.RarityUncommon,
		unlocked: func(s models.UserStatistics) bool { return s.BestScore >= 200 },
	},
	{
		id: "score_300", title: "Photographic Memory", description: "Score 300 points in a single game",
		icon: "📸", rarity: models.RarityLegendary,
		unlocked: func(s models.UserStatistics) bool { return s.BestScore >= 300 },
	},
	{
		id: "speed_demon", title: "Speed Demon", description: "Finish a game in under a minute",
		icon: "⚡", rarity: models.RarityRare,
		unlocked: func(s models.UserStatistics) bool { return s.BestTime != nil && *s.BestTime <= 60000 },
	},
	{
		id: "lightning_fast", title: "Lightning Fast", description: "Finish a game in under 30 seconds",
		icon: "🌩️", rarity: models.RarityLegendary,
		unlocked: func(s models.UserStatistics) bool { return s.BestTime != nil && *s.BestTime <= 30000 },
	},
	{
		id: "top_ten", title: "Top Ten", description: "Reach the top 10 of the leaderboard",
		icon: "🔟", rarity: models.RarityEpic,
		unlocked: func(s models.UserStatistics) bool { return s.Rank != nil && *s.Rank <= 10 },
	},
	{
		id: "podium", title: "On the Podium", description: "Reach the top 3 of the leaderboard",
		icon: "🥉", rarity: models.RarityLegendary,
		unlocked: func(s models.UserStatistics) bool { return s.Rank != nil && *s.Rank <= 3 },
	},
	{
		id: "champion", title: "Champion", description: "Reach first place on the leaderboard",
		icon: "👑", rarity: models.RarityLegendary,
		unlocked: func(s models.UserStatistics) bool { return s.Rank != nil && *s.Rank == 1 },
	},
}

// EvaluateAchievements returns every badge the statistics qualify for, in
// catalog order. UnlockedAt is copied from stats.LastPlayed.
func EvaluateAchievements(stats models.UserStatistics) []models.Achievement {
	achievements := []models.Achievement{}
	for _, rule := range achievementRules {
		if !rule.unlocked(stats) {
			continue
		}
		achievements = append(achievements, models.Achievement{
			ID:          rule.id,
			Title:       rule.title,
			Description: rule.description,
			Icon:        rule.icon,
			Rarity:      rule.rarity,
			UnlockedAt:  stats.LastPlayed,
		})
	}
	return achievements
}

// Catalog lists every badge that can be earned, locked or not.
func Catalog() []models.Achievement {
	catalog := make([]models.Achievement, 0, len(achievementRules))
	for _, rule := range achievementRules {
		catalog = append(catalog, models.Achievement{
			ID:          rule.id,
			Title:       rule.title,
			Description: rule.description,
			Icon:        rule.icon,
			Rarity:      rule.rarity,
		})
	}
	return catalog
}
