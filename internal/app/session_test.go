package app_test

import (
	"testing"
	"time"

	"contest-round-service/internal/sim"
)

func TestFakeTeamRoutedToFakeLedger(t *testing.T) {
	service, clock := newTestService(36)
	service.StartQuestion(1, 300*time.Second, 10*time.Second)

	clock.Advance(time.Second)
	_, err := service.RecordSubmission(1, sim.SentinelTeam, false, 0, sim.SentinelTeam, "")
	if err != nil {
		t.Fatalf("record failed: %v", err)
	}

	sub, ok := service.GetTeamSubmission(1, sim.SentinelTeam)
	if !ok || sub.WrongCount != 1 {
		t.Fatalf("expected fake team's record mutated in place, got %+v (%v)", sub, ok)
	}

	// The submission must not have leaked into the real-team ledger.
	status := service.GetAllSessionsStatus()[0]
	if status.RealTeams != 0 {
		t.Fatalf("expected no real teams, got %d", status.RealTeams)
	}
	if status.FakeTeams != 36 {
		t.Fatalf("expected 36 fake placeholders, got %d", status.FakeTeams)
	}
}

func TestRealTeamUpsertBackfillsIdentity(t *testing.T) {
	service, _ := newTestService(0)
	service.StartQuestion(1, 300*time.Second, 10*time.Second)

	// First sight with no name: the id stands in.
	_, _ = service.RecordSubmission(1, "team-a", false, 0, "", "")
	sub, _ := service.GetTeamSubmission(1, "team-a")
	if sub.TeamName != "team-a" || sub.TeamSessionID != "" {
		t.Fatalf("expected placeholder identity, got %+v", sub)
	}

	// A later submission backfills the empty fields.
	_, _ = service.RecordSubmission(1, "team-a", false, 0, "Alpha", "sess-1")
	sub, _ = service.GetTeamSubmission(1, "team-a")
	if sub.TeamSessionID != "sess-1" {
		t.Fatalf("expected session id backfilled, got %+v", sub)
	}

	// Non-empty values are never overwritten.
	_, _ = service.RecordSubmission(1, "team-a", false, 0, "Impostor", "sess-2")
	sub, _ = service.GetTeamSubmission(1, "team-a")
	if sub.TeamSessionID != "sess-1" {
		t.Fatalf("expected existing session id kept, got %+v", sub)
	}
	if sub.WrongCount != 3 {
		t.Fatalf("expected 3 wrong attempts, got %d", sub.WrongCount)
	}
}

func TestSubscribeReceivesLeaderboardUpdates(t *testing.T) {
	service, clock := newTestService(0)
	service.StartQuestion(1, 300*time.Second, 10*time.Second)

	ch, cancel, err := service.Subscribe(1)
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	defer cancel()

	initial := <-ch
	if len(initial.Entries) != 0 {
		t.Fatalf("expected empty initial snapshot, got %+v", initial.Entries)
	}

	clock.Advance(3 * time.Second)
	_, _ = service.RecordSubmission(1, "team-a", true, 88, "Alpha", "")

	update := <-ch
	if len(update.Entries) != 1 || update.Entries[0].Score != 88 {
		t.Fatalf("expected update with score 88, got %+v", update.Entries)
	}
	if update.Entries[0].TimeTaken != 3 {
		t.Fatalf("expected time taken 3s, got %v", update.Entries[0].TimeTaken)
	}
}

func TestSubscribeUnknownQuestion(t *testing.T) {
	service, _ := newTestService(0)
	if _, _, err := service.Subscribe(9); err == nil {
		t.Fatalf("expected error for unknown question")
	}
}
