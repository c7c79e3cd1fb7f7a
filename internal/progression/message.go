package progression

import (
	"math"
	"math/rand"

	"github.com/tahcohcat/memorymatch-web/internal/models"
)

// Message tiers use their own boundaries, independent of the level table.
var messageTiers = []struct {
	below    int
	messages []string
}{
	{below: 100, messages: []string{
		"Every master was once a beginner. Keep flipping!",
		"Great start! Each game sharpens your memory.",
		"Practice makes perfect. Try another round!",
	}},
	{below: 150, messages: []string{
		"You're getting the hang of it!",
		"Nice progress! Your memory is warming up.",
		"Keep going, the next level is within reach!",
	}},
	{below: 200, messages: []string{
		"Solid play! You're remembering more every game.",
		"Impressive focus! Push for 200.",
		"You're becoming a real memory matcher!",
	}},
	{below: 300, messages: []string{
		"Outstanding! Few players get this far.",
		"Your memory is razor sharp!",
		"Advanced play! The leaderboard is noticing you.",
	}},
	{below: math.MaxInt, messages: []string{
		"Legendary memory! You're among the very best.",
		"Unstoppable! Can anyone beat you?",
		"Expert level reached. Defend your title!",
	}},
}

// SelectMotivationalMessage picks a random message for the player's skill tier.
func SelectMotivationalMessage(stats models.UserStatistics) string {
	pool := TierMessages(stats.BestScore)
	return pool[rand.Intn(len(pool))]
}

// MessageFor picks a message for the tier of stats.BestScore using r.
func MessageFor(stats models.UserStatistics, r *rand.Rand) string {
	pool := TierMessages(stats.BestScore)
	return pool[r.Intn(len(pool))]
}

// TierMessages returns the message pool for a best score.
func TierMessages(bestScore int) []string {
	for _, tier := range messageTiers {
		if bestScore < tier.below {
			return tier.messages
		}
	}
	return messageTiers[len(messageTiers)-1].messages
}
