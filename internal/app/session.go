package app

import (
	"math"
	"sort"
	"sync"
	"time"

	"contest-round-service/internal/domain"
	"github.com/jonboulle/clockwork"
)

// Session is the in-memory state of one timed question round. It owns two
// ledgers: real teams keyed by team id, and fake (simulated) teams keyed by
// name. A submission is admitted iff the session is active and the elapsed
// time is within timeLimit+bufferTime; the buffer is a server-side grace
// period never disclosed as remaining time.
type Session struct {
	questionID int
	startTime  time.Time
	timeLimit  time.Duration
	bufferTime time.Duration
	clock      clockwork.Clock

	mu          sync.RWMutex
	isActive    bool
	teams       map[string]*domain.TeamSubmission
	fakeTeams   map[string]*domain.TeamSubmission
	subscribers map[chan domain.Leaderboard]struct{}
}

func newSession(questionID int, timeLimit, bufferTime time.Duration, fakeNames []string, clock clockwork.Clock) *Session {
	s := &Session{
		questionID:  questionID,
		startTime:   clock.Now(),
		timeLimit:   timeLimit,
		bufferTime:  bufferTime,
		clock:       clock,
		isActive:    true,
		teams:       make(map[string]*domain.TeamSubmission),
		fakeTeams:   make(map[string]*domain.TeamSubmission, len(fakeNames)),
		subscribers: make(map[chan domain.Leaderboard]struct{}),
	}
	// Placeholders only; submissions arrive later from the scheduler tasks.
	for _, name := range fakeNames {
		s.fakeTeams[name] = &domain.TeamSubmission{
			TeamID:      name,
			TeamName:    name,
			QuestionID:  questionID,
			SubmitTimes: []time.Time{},
		}
	}
	return s
}

// QuestionID returns the round's question id.
func (s *Session) QuestionID() int { return s.questionID }

// StartTime returns the server clock reading at round open.
func (s *Session) StartTime() time.Time { return s.startTime }

// TimeLimit returns the disclosed round duration.
func (s *Session) TimeLimit() time.Duration { return s.timeLimit }

// Accepting reports whether the round currently admits submissions.
func (s *Session) Accepting() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.acceptingLocked()
}

func (s *Session) acceptingLocked() bool {
	if !s.isActive {
		return false
	}
	return s.clock.Now().Sub(s.startTime) <= s.timeLimit+s.bufferTime
}

// Elapsed returns time since the round opened.
func (s *Session) Elapsed() time.Duration {
	return s.clock.Now().Sub(s.startTime)
}

// Remaining returns the disclosed time left, excluding the buffer, floored at zero.
func (s *Session) Remaining() time.Duration {
	remaining := s.timeLimit - s.Elapsed()
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (s *Session) deactivate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isActive = false
}

// record applies one submission to the ledger. Fake teams are matched by
// membership in the fake map and mutated in place; real teams are upserted,
// backfilling name and session id only when previously empty. The first
// correct submission wins: it alone sets completion, final score and first
// correct time. Counters and the submit-time audit trail always accumulate.
func (s *Session) record(teamID string, isCorrect bool, score float64, teamName, teamSessionID string) domain.TeamSubmission {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, isFake := s.fakeTeams[teamID]
	if !isFake {
		sub = s.teams[teamID]
		if sub == nil {
			name := teamName
			if name == "" {
				name = teamID
			}
			sub = &domain.TeamSubmission{
				TeamID:        teamID,
				TeamName:      name,
				TeamSessionID: teamSessionID,
				QuestionID:    s.questionID,
				SubmitTimes:   []time.Time{},
			}
			s.teams[teamID] = sub
		}
		if teamName != "" && sub.TeamName == "" {
			sub.TeamName = teamName
		}
		if teamSessionID != "" && sub.TeamSessionID == "" {
			sub.TeamSessionID = teamSessionID
		}
	}

	now := s.clock.Now()
	sub.SubmitTimes = append(sub.SubmitTimes, now)

	if !isCorrect {
		sub.WrongCount++
	} else {
		sub.CorrectCount++
		if !sub.IsCompleted {
			sub.IsCompleted = true
			sub.FirstCorrectTime = now
			sub.FinalScore = score
		}
	}

	out := cloneSubmission(sub)
	s.broadcastLocked()
	return out
}

// addTeam seeds a zero-state ledger entry for a real team, if absent.
func (s *Session) addTeam(team domain.RegisteredTeam) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.teams[team.TeamID]; ok {
		return
	}
	s.teams[team.TeamID] = &domain.TeamSubmission{
		TeamID:        team.TeamID,
		TeamName:      team.TeamName,
		TeamSessionID: team.TeamSessionID,
		QuestionID:    s.questionID,
		SubmitTimes:   []time.Time{},
	}
}

// TeamSubmission returns a copy of the team's ledger entry, real or fake.
func (s *Session) TeamSubmission(teamID string) (domain.TeamSubmission, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sub, ok := s.teams[teamID]; ok {
		return cloneSubmission(sub), true
	}
	if sub, ok := s.fakeTeams[teamID]; ok {
		return cloneSubmission(sub), true
	}
	return domain.TeamSubmission{}, false
}

// Leaderboard compiles the current ranking from both ledgers.
func (s *Session) Leaderboard() domain.Leaderboard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.leaderboardLocked()
}

// leaderboardLocked filters to completed teams, orders by score descending
// with time taken ascending as tie-break, and assigns dense 1-based ranks.
func (s *Session) leaderboardLocked() domain.Leaderboard {
	entries := make([]domain.LeaderboardEntry, 0, len(s.teams)+len(s.fakeTeams))
	collect := func(ledger map[string]*domain.TeamSubmission) {
		for _, sub := range ledger {
			if !sub.IsCompleted {
				continue
			}
			entries = append(entries, domain.LeaderboardEntry{
				TeamID:      sub.TeamID,
				TeamName:    sub.TeamName,
				Score:       sub.FinalScore,
				TimeTaken:   round2(sub.FirstCorrectTime.Sub(s.startTime).Seconds()),
				SubmitCount: len(sub.SubmitTimes),
				WrongCount:  sub.WrongCount,
			})
		}
	}
	collect(s.teams)
	collect(s.fakeTeams)

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].TimeTaken < entries[j].TimeTaken
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}

	return domain.Leaderboard{
		QuestionID: s.questionID,
		Entries:    entries,
		UpdatedAt:  s.clock.Now(),
	}
}

// Status produces the monitoring snapshot for this round.
func (s *Session) Status() domain.SessionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	completed := 0
	count := func(ledger map[string]*domain.TeamSubmission) {
		for _, sub := range ledger {
			total += len(sub.SubmitTimes)
			if sub.IsCompleted {
				completed++
			}
		}
	}
	count(s.teams)
	count(s.fakeTeams)

	elapsed := s.clock.Now().Sub(s.startTime)
	remaining := s.timeLimit - elapsed
	if remaining < 0 {
		remaining = 0
	}

	return domain.SessionStatus{
		QuestionID:       s.questionID,
		IsActive:         s.acceptingLocked(),
		ElapsedSeconds:   round2(elapsed.Seconds()),
		RemainingSeconds: round2(remaining.Seconds()),
		TimeLimitSeconds: s.timeLimit.Seconds(),
		BufferSeconds:    s.bufferTime.Seconds(),
		RealTeams:        len(s.teams),
		FakeTeams:        len(s.fakeTeams),
		TotalSubmissions: total,
		CompletedTeams:   completed,
	}
}

func (s *Session) fakeTeamNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.fakeTeams))
	for name := range s.fakeTeams {
		names = append(names, name)
	}
	return names
}

func (s *Session) subscribe() (<-chan domain.Leaderboard, func()) {
	ch := make(chan domain.Leaderboard, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	initial := s.leaderboardLocked()
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcastLocked() {
	lb := s.leaderboardLocked()
	for ch := range s.subscribers {
		select {
		case ch <- lb:
		default:
			// Drop the stale update so a slow subscriber never blocks recording.
			select {
			case <-ch:
			default:
			}
			ch <- lb
		}
	}
}

func cloneSubmission(sub *domain.TeamSubmission) domain.TeamSubmission {
	out := *sub
	out.SubmitTimes = append([]time.Time(nil), sub.SubmitTimes...)
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
