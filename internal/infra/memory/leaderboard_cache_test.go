package memory

import (
	"testing"
	"time"

	"contest-round-service/internal/domain"
)

type countingSource struct {
	calls int
}

func (s *countingSource) GetQuestionLeaderboard(questionID int) domain.Leaderboard {
	s.calls++
	return domain.Leaderboard{
		QuestionID: questionID,
		Entries:    []domain.LeaderboardEntry{{TeamID: "team-a", Score: 90, Rank: 1}},
		UpdatedAt:  time.Now(),
	}
}

func TestLeaderboardCacheMemoizes(t *testing.T) {
	source := &countingSource{}
	cache := NewLeaderboardCache(source, 100*time.Millisecond)

	first := cache.Get(1)
	if len(first.Entries) != 1 || source.calls != 1 {
		t.Fatalf("expected one compile, got %d", source.calls)
	}

	// Within the TTL the compiled board is reused.
	_ = cache.Get(1)
	if source.calls != 1 {
		t.Fatalf("expected cache hit, got %d compiles", source.calls)
	}

	// A different question compiles independently.
	_ = cache.Get(2)
	if source.calls != 2 {
		t.Fatalf("expected separate compile per question, got %d", source.calls)
	}
}

func TestLeaderboardCacheExpires(t *testing.T) {
	source := &countingSource{}
	cache := NewLeaderboardCache(source, 10*time.Millisecond)

	_ = cache.Get(1)
	time.Sleep(20 * time.Millisecond) // past TTL plus jitter
	_ = cache.Get(1)

	if source.calls != 2 {
		t.Fatalf("expected recompile after expiry, got %d compiles", source.calls)
	}
}
