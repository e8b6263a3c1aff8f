package memory

import (
	"testing"
	"time"

	"contest-round-service/internal/app"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore()
	service := app.NewRoundService(store, NewTeamRegistry(), app.Options{})

	service.StartQuestion(1, time.Minute, time.Second)
	service.StartQuestion(2, time.Minute, time.Second)

	if _, ok := store.Get(1); !ok {
		t.Fatalf("expected session 1 present")
	}
	if len(store.All()) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(store.All()))
	}

	if count := store.Reset(); count != 2 {
		t.Fatalf("expected 2 sessions cleared, got %d", count)
	}
	if _, ok := store.Get(1); ok {
		t.Fatalf("expected store empty after reset")
	}
}

func TestSessionStorePutOverwrites(t *testing.T) {
	store := NewSessionStore()
	service := app.NewRoundService(store, NewTeamRegistry(), app.Options{})

	first := service.StartQuestion(1, time.Minute, time.Second)
	second := service.StartQuestion(1, time.Minute, time.Second)

	got, _ := store.Get(1)
	if got == first || got != second {
		t.Fatalf("expected restart to replace the stored session")
	}
	if len(store.All()) != 1 {
		t.Fatalf("expected a single session after overwrite")
	}
}
