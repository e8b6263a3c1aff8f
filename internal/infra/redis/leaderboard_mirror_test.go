package redis

import (
	"context"
	"strings"
	"testing"
	"time"

	"contest-round-service/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestLeaderboardMirrorPublishes(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mirror := NewLeaderboardMirror(client, time.Minute)

	lb := domain.Leaderboard{
		QuestionID: 3,
		Entries: []domain.LeaderboardEntry{
			{TeamID: "team-a", TeamName: "Alpha", Score: 92.5, TimeTaken: 41.2, Rank: 1},
		},
		UpdatedAt: time.Now(),
	}
	if err := mirror.Publish(context.Background(), lb); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	raw, err := mr.Get("round:leaderboard:3")
	if err != nil {
		t.Fatalf("expected snapshot key set: %v", err)
	}
	if !strings.Contains(raw, `"teamId":"team-a"`) || !strings.Contains(raw, `"score":92.5`) {
		t.Fatalf("unexpected snapshot payload: %s", raw)
	}
	if mr.TTL("round:leaderboard:3") <= 0 {
		t.Fatalf("expected snapshot key to carry a TTL")
	}
}

func TestLeaderboardMirrorOverwritesPerRound(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mirror := NewLeaderboardMirror(client, time.Minute)

	ctx := context.Background()
	_ = mirror.Publish(ctx, domain.Leaderboard{QuestionID: 1, Entries: []domain.LeaderboardEntry{{TeamID: "old"}}})
	_ = mirror.Publish(ctx, domain.Leaderboard{QuestionID: 1, Entries: []domain.LeaderboardEntry{{TeamID: "new"}}})

	raw, _ := mr.Get("round:leaderboard:1")
	if !strings.Contains(raw, `"teamId":"new"`) || strings.Contains(raw, `"teamId":"old"`) {
		t.Fatalf("expected latest snapshot only, got %s", raw)
	}
}
