package services

import (
	"context"

	"github.com/tahcohcat/memorymatch-web/internal/cache"
	"github.com/tahcohcat/memorymatch-web/internal/database"
	"github.com/tahcohcat/memorymatch-web/internal/models"
)

type LeaderboardService struct {
	store        database.Store
	cache        *cache.LeaderboardCache
	defaultLimit int
	maxLimit     int
}

func NewLeaderboardService(store database.Store, c *cache.LeaderboardCache, defaultLimit, maxLimit int) *LeaderboardService {
	if defaultLimit <= 0 {
		defaultLimit = 50
	}
	if maxLimit < defaultLimit {
		maxLimit = defaultLimit
	}
	if c == nil {
		c = cache.NewLeaderboardCache(cache.DefaultTTL)
	}
	return &LeaderboardService{store: store, cache: c, defaultLimit: defaultLimit, maxLimit: maxLimit}
}

// GetLeaderboard returns the ranking for a difficulty ("" for all), served
// from cache while the snapshot is fresh.
func (s *LeaderboardService) GetLeaderboard(ctx context.Context, difficulty string, limit int) ([]models.LeaderboardEntry, error) {
	if difficulty != "" {
		difficulty = string(models.ParseDifficulty(difficulty))
	}
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}

	key := cache.Key(difficulty, limit)
	if entries, ok := s.cache.Get(key); ok {
		return entries, nil
	}

	generation := s.cache.Generation()
	entries, err := s.store.GetLeaderboard(ctx, difficulty, limit)
	if err != nil {
		return nil, err
	}
	s.cache.SetIfCurrent(key, entries, generation)
	return entries, nil
}

// GetUserRank returns the overall position of a user, nil when unranked.
func (s *LeaderboardService) GetUserRank(ctx context.Context, userID int) (*int, error) {
	return s.store.GetUserRank(ctx, userID)
}

// Invalidate drops the cached boards a finished game on difficulty can change.
func (s *LeaderboardService) Invalidate(difficulty models.Difficulty) {
	s.cache.Invalidate(string(difficulty))
}
