package redis

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"contest-round-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// LeaderboardMirror publishes leaderboard snapshots to Redis for external
// display services. It is write-only and best-effort: the in-memory ledger
// stays authoritative, and keys expire on their own once a round goes quiet.
type LeaderboardMirror struct {
	client *redis.Client
	ttl    time.Duration
}

func NewLeaderboardMirror(client *redis.Client, ttl time.Duration) *LeaderboardMirror {
	return &LeaderboardMirror{client: client, ttl: ttl}
}

func (m *LeaderboardMirror) Publish(ctx context.Context, lb domain.Leaderboard) error {
	data, err := json.Marshal(lb)
	if err != nil {
		return err
	}
	return m.client.Set(ctx, m.key(lb.QuestionID), data, m.ttl).Err()
}

func (m *LeaderboardMirror) key(questionID int) string {
	return "round:leaderboard:" + strconv.Itoa(questionID)
}
