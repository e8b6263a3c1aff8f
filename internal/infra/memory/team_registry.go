package memory

import (
	"sync"

	"contest-round-service/internal/domain"
)

// TeamRegistry is an in-memory implementation of app.TeamRegistry, keyed by
// team id. Registration is an upsert: a reconnecting team refreshes its name
// and session id without losing its slot.
type TeamRegistry struct {
	mu    sync.RWMutex
	teams map[string]domain.RegisteredTeam
}

func NewTeamRegistry() *TeamRegistry {
	return &TeamRegistry{
		teams: make(map[string]domain.RegisteredTeam),
	}
}

func (r *TeamRegistry) Register(team domain.RegisteredTeam) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.teams[team.TeamID] = team
}

func (r *TeamRegistry) All() []domain.RegisteredTeam {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.RegisteredTeam, 0, len(r.teams))
	for _, team := range r.teams {
		out = append(out, team)
	}
	return out
}
