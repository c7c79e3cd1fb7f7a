// Package cache keeps short-lived leaderboard snapshots so the ranking query
// does not run on every page view.
package cache

import (
	"fmt"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/tahcohcat/memorymatch-web/internal/models"
)

const DefaultTTL = 30 * time.Second

const allDifficulties = "all"

type LeaderboardCache struct {
	store *gocache.Cache

	mu         sync.Mutex
	generation uint64
}

// NewLeaderboardCache creates a cache whose entries expire after ttl.
// A non-positive ttl uses DefaultTTL.
func NewLeaderboardCache(ttl time.Duration) *LeaderboardCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &LeaderboardCache{store: gocache.New(ttl, 2*ttl)}
}

// Key builds the cache key for a leaderboard query.
func Key(difficulty string, limit int) string {
	return fmt.Sprintf("%s%d", prefix(difficulty), limit)
}

func prefix(difficulty string) string {
	if difficulty == "" {
		difficulty = allDifficulties
	}
	return "leaderboard:" + difficulty + ":"
}

func (c *LeaderboardCache) Get(key string) ([]models.LeaderboardEntry, bool) {
	v, ok := c.store.Get(key)
	if !ok {
		return nil, false
	}
	entries, ok := v.([]models.LeaderboardEntry)
	return entries, ok
}

// Generation identifies the current cache contents. Read it before querying
// the database and hand it to SetIfCurrent.
func (c *LeaderboardCache) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// SetIfCurrent stores a snapshot unless the cache was invalidated after
// generation was read, in which case the snapshot may predate a finished game.
func (c *LeaderboardCache) SetIfCurrent(key string, entries []models.LeaderboardEntry, generation uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != c.generation {
		return false
	}
	c.store.Set(key, entries, gocache.DefaultExpiration)
	return true
}

// Invalidate drops every snapshot of the difficulty's board and of the
// overall board, whatever their limit.
func (c *LeaderboardCache) Invalidate(difficulty string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++

	prefixes := []string{prefix("")}
	if difficulty != "" && difficulty != allDifficulties {
		prefixes = append(prefixes, prefix(difficulty))
	}
	for key := range c.store.Items() {
		for _, p := range prefixes {
			if strings.HasPrefix(key, p) {
				c.store.Delete(key)
				break
			}
		}
	}
}
