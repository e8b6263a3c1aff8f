package memory

import (
	"math/rand"
	"strconv"
	"sync"
	"time"

	"contest-round-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// LeaderboardSource compiles a leaderboard on demand.
type LeaderboardSource interface {
	GetQuestionLeaderboard(questionID int) domain.Leaderboard
}

// LeaderboardCache memoizes compiled leaderboards for a short TTL so
// read-heavy display paths don't recompile the ranking per request.
type LeaderboardCache struct {
	source LeaderboardSource
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[int]cachedBoard
}

type cachedBoard struct {
	board     domain.Leaderboard
	expiresAt time.Time
}

func NewLeaderboardCache(source LeaderboardSource, ttl time.Duration) *LeaderboardCache {
	return &LeaderboardCache{
		source: source,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[int]cachedBoard),
	}
}

func (c *LeaderboardCache) Get(questionID int) domain.Leaderboard {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[questionID]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.board
	}
	c.mu.RUnlock()

	result, _, _ := c.sf.Do(strconv.Itoa(questionID), func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[questionID]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.board, nil
		}
		c.mu.RUnlock()

		board := c.source.GetQuestionLeaderboard(questionID)

		c.mu.Lock()
		c.cache[questionID] = cachedBoard{
			board:     board,
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return board, nil
	})
	return result.(domain.Leaderboard)
}

func (c *LeaderboardCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
