package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"contest-round-service/internal/domain"
	"contest-round-service/internal/sim"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// SessionRepository abstracts how question sessions are stored.
type SessionRepository interface {
	Put(questionID int, session *Session)
	Get(questionID int) (*Session, bool)
	All() map[int]*Session
	Reset() int
}

// TeamRegistry tracks real teams known to the registration flow, so new
// rounds can snapshot them as zero-state ledger entries.
type TeamRegistry interface {
	Register(team domain.RegisteredTeam)
	All() []domain.RegisteredTeam
}

// LeaderboardSink receives leaderboard updates for external display layers.
// Publishing is best-effort; the in-memory ledger stays authoritative.
type LeaderboardSink interface {
	Publish(ctx context.Context, lb domain.Leaderboard) error
}

// Options configures a RoundService. Zero values fall back to production
// defaults; tests inject a fake clock and a seeded generator.
type Options struct {
	Clock         clockwork.Clock
	Generator     *sim.Generator
	FakeTeamCount int
	Scheduler     SchedulerConfig
	Sink          LeaderboardSink
}

// RoundService contains the round lifecycle and submission use cases.
type RoundService struct {
	sessions SessionRepository
	registry TeamRegistry
	clock    clockwork.Clock
	gen      *sim.Generator
	sched    SchedulerConfig
	sink     LeaderboardSink

	fakeTeamCount int

	// Cached pointer to the most recently started round that is still
	// accepting submissions, revalidated lazily on read.
	activeMu  sync.Mutex
	activeID  int
	hasActive bool
}

func NewRoundService(sessions SessionRepository, registry TeamRegistry, opts Options) *RoundService {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Generator == nil {
		opts.Generator = sim.NewGenerator(time.Now().UnixNano())
	}
	opts.Scheduler.applyDefaults()

	return &RoundService{
		sessions:      sessions,
		registry:      registry,
		clock:         opts.Clock,
		gen:           opts.Generator,
		sched:         opts.Scheduler,
		sink:          opts.Sink,
		fakeTeamCount: opts.FakeTeamCount,
	}
}

// StartQuestion opens a round (overwriting any previous round with the same
// id), snapshots registered real teams into the ledger, seeds fake-team
// placeholders, marks the question current, and schedules the simulated
// submissions.
func (rs *RoundService) StartQuestion(questionID int, timeLimit, bufferTime time.Duration) *Session {
	fakeNames := rs.gen.TeamNames(rs.fakeTeamCount)
	session := newSession(questionID, timeLimit, bufferTime, fakeNames, rs.clock)

	for _, team := range rs.registry.All() {
		session.addTeam(team)
	}

	rs.sessions.Put(questionID, session)

	rs.activeMu.Lock()
	rs.activeID = questionID
	rs.hasActive = true
	rs.activeMu.Unlock()

	log.Info().
		Int("question_id", questionID).
		Dur("time_limit", timeLimit).
		Dur("buffer_time", bufferTime).
		Int("fake_teams", len(fakeNames)).
		Msg("question started")

	rs.scheduleFakeTeams(session)
	return session
}

// StopQuestion closes a round immediately, regardless of elapsed time.
func (rs *RoundService) StopQuestion(questionID int) {
	session, ok := rs.sessions.Get(questionID)
	if !ok {
		return
	}
	session.deactivate()
	log.Info().Int("question_id", questionID).Msg("question stopped")

	rs.activeMu.Lock()
	if rs.hasActive && rs.activeID == questionID {
		rs.refreshActiveLocked()
	}
	rs.activeMu.Unlock()
}

// IsQuestionActive is the single admission-control predicate: the round
// exists, is active, and is within timeLimit+bufferTime of its start.
func (rs *RoundService) IsQuestionActive(questionID int) bool {
	session, ok := rs.sessions.Get(questionID)
	return ok && session.Accepting()
}

// GetQuestionSession returns the round's session, if it exists.
func (rs *RoundService) GetQuestionSession(questionID int) (*Session, bool) {
	return rs.sessions.Get(questionID)
}

// GetCurrentActiveQuestionID returns the cached active question pointer,
// lazily revalidated against actual activity.
func (rs *RoundService) GetCurrentActiveQuestionID() (int, bool) {
	rs.activeMu.Lock()
	defer rs.activeMu.Unlock()
	return rs.refreshActiveLocked()
}

// refreshActiveLocked re-points the cache at the most recently started round
// still accepting submissions. Sessions expire purely by clock, so a scan is
// needed whenever the cached round has lapsed.
func (rs *RoundService) refreshActiveLocked() (int, bool) {
	if rs.hasActive {
		if session, ok := rs.sessions.Get(rs.activeID); ok && session.Accepting() {
			return rs.activeID, true
		}
	}

	var best *Session
	for _, session := range rs.sessions.All() {
		if !session.Accepting() {
			continue
		}
		if best == nil || session.StartTime().After(best.StartTime()) {
			best = session
		}
	}
	if best == nil {
		rs.hasActive = false
		rs.activeID = 0
		return 0, false
	}
	rs.activeID = best.QuestionID()
	rs.hasActive = true
	return rs.activeID, true
}

// GetElapsedTime returns time since the round opened, or zero for unknown ids.
func (rs *RoundService) GetElapsedTime(questionID int) time.Duration {
	session, ok := rs.sessions.Get(questionID)
	if !ok {
		return 0
	}
	return session.Elapsed()
}

// GetRemainingTime returns the disclosed time left (buffer excluded, floored
// at zero), or zero for unknown ids.
func (rs *RoundService) GetRemainingTime(questionID int) time.Duration {
	session, ok := rs.sessions.Get(questionID)
	if !ok {
		return 0
	}
	return session.Remaining()
}

// RecordSubmission is the single ingress point for submissions, real or
// simulated. It does not gate on the admission window itself — live callers
// check IsQuestionActive first, which keeps explicit after-the-fact audit
// recording possible — but an unknown question id is an explicit error.
func (rs *RoundService) RecordSubmission(questionID int, teamID string, isCorrect bool, score float64, teamName, teamSessionID string) (domain.TeamSubmission, error) {
	session, ok := rs.sessions.Get(questionID)
	if !ok {
		return domain.TeamSubmission{}, domain.ErrSessionNotFound
	}

	if !session.Accepting() {
		log.Debug().
			Int("question_id", questionID).
			Str("team_id", teamID).
			Msg("submission recorded outside admission window")
	}

	sub := session.record(teamID, isCorrect, score, teamName, teamSessionID)

	if rs.sink != nil {
		lb := session.Leaderboard()
		go func() {
			if err := rs.sink.Publish(context.Background(), lb); err != nil {
				log.Debug().Err(err).Int("question_id", questionID).Msg("leaderboard publish failed")
			}
		}()
	}
	return sub, nil
}

// GetTeamSubmission returns a team's ledger entry for a round.
func (rs *RoundService) GetTeamSubmission(questionID int, teamID string) (domain.TeamSubmission, bool) {
	session, ok := rs.sessions.Get(questionID)
	if !ok {
		return domain.TeamSubmission{}, false
	}
	return session.TeamSubmission(teamID)
}

// AddTeamToActiveSessions registers a real team and backfills a zero-state
// ledger entry into every tracked round that doesn't already know it, so
// late-joining teams appear in all rounds' ledgers.
func (rs *RoundService) AddTeamToActiveSessions(teamID, teamName, teamSessionID string) {
	team := domain.RegisteredTeam{TeamID: teamID, TeamName: teamName, TeamSessionID: teamSessionID}
	rs.registry.Register(team)
	for _, session := range rs.sessions.All() {
		session.addTeam(team)
	}
}

// GetQuestionLeaderboard compiles the ranking for a round. Unknown ids yield
// an empty leaderboard, not an error.
func (rs *RoundService) GetQuestionLeaderboard(questionID int) domain.Leaderboard {
	session, ok := rs.sessions.Get(questionID)
	if !ok {
		return domain.Leaderboard{QuestionID: questionID, Entries: []domain.LeaderboardEntry{}, UpdatedAt: rs.clock.Now()}
	}
	return session.Leaderboard()
}

// GetAllSessionsStatus snapshots every tracked round, ordered by question id.
func (rs *RoundService) GetAllSessionsStatus() []domain.SessionStatus {
	sessions := rs.sessions.All()
	ids := make([]int, 0, len(sessions))
	for id := range sessions {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	statuses := make([]domain.SessionStatus, 0, len(ids))
	for _, id := range ids {
		statuses = append(statuses, sessions[id].Status())
	}
	return statuses
}

// ResetAllQuestions clears every round and the active pointer, returning the
// number of sessions dropped. In-flight simulated tasks are not awaited; they
// notice the missing session on their next eligibility check and exit.
func (rs *RoundService) ResetAllQuestions() int {
	count := rs.sessions.Reset()

	rs.activeMu.Lock()
	rs.hasActive = false
	rs.activeID = 0
	rs.activeMu.Unlock()

	log.Info().Int("cleared", count).Msg("all questions reset")
	return count
}

// Subscribe returns a channel receiving leaderboard updates for a round.
// The caller must invoke the returned cancel function to avoid leaks.
func (rs *RoundService) Subscribe(questionID int) (<-chan domain.Leaderboard, func(), error) {
	session, ok := rs.sessions.Get(questionID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.subscribe()
	return ch, cancel, nil
}
