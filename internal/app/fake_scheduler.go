package app

import (
	"time"

	"contest-round-service/internal/sim"
	"github.com/rs/zerolog/log"
)

// SchedulerConfig bounds the sleeps of simulated team tasks. Production
// defaults mirror live pacing; tests shrink them to milliseconds.
type SchedulerConfig struct {
	SentinelDelay time.Duration // fixed initial delay for the sentinel team
	PauseMin      time.Duration // gap between consecutive attempts
	PauseMax      time.Duration
}

func (c *SchedulerConfig) applyDefaults() {
	if c.SentinelDelay == 0 {
		c.SentinelDelay = 5 * time.Second
	}
	if c.PauseMin == 0 {
		c.PauseMin = time.Second
	}
	if c.PauseMax == 0 {
		c.PauseMax = 5 * time.Second
	}
}

// teamPlan is one fake team's behavior for a round, drawn once at start time.
type teamPlan struct {
	name         string
	delay        time.Duration
	wrongCount   int
	correctCount int
	score        float64
}

// scheduleFakeTeams decides, per fake team, whether and how it submits, then
// runs each decision as an independent goroutine. Teams drawing (0,0) simply
// never submit; the sentinel team is forced to at least one correct answer so
// the leaderboard is never empty.
func (rs *RoundService) scheduleFakeTeams(session *Session) {
	scheduled := 0
	for _, name := range session.fakeTeamNames() {
		sentinel := name == sim.SentinelTeam

		wrong, correct := rs.gen.Attempts()
		if wrong == 0 && correct == 0 {
			if !sentinel {
				continue
			}
			correct = 1
		}

		var score float64
		if correct > 0 {
			if sentinel {
				score = rs.gen.SentinelScore()
			} else {
				score = rs.gen.WeightedScore()
			}
		}

		delay := rs.sched.SentinelDelay
		if !sentinel {
			delay = rs.gen.SubmitDelay(session.TimeLimit())
		}

		go rs.runTeamPlan(session.QuestionID(), teamPlan{
			name:         name,
			delay:        delay,
			wrongCount:   wrong,
			correctCount: correct,
			score:        score,
		})
		scheduled++
	}

	log.Info().
		Int("question_id", session.QuestionID()).
		Int("scheduled", scheduled).
		Dur("time_limit", session.TimeLimit()).
		Msg("fake team submissions scheduled")
}

// runTeamPlan sleeps out the initial delay, then plays the plan's attempts
// against the ledger exactly as a real team's submissions would arrive.
// Eligibility is re-checked before every single submission; a closed, reset,
// or expired round silently ends the task mid-sequence. There is no forced
// cancellation — the checks are the only exit.
func (rs *RoundService) runTeamPlan(questionID int, plan teamPlan) {
	<-rs.clock.After(plan.delay)

	// The session may be gone (reset) or replaced by the time we wake up.
	if !rs.IsQuestionActive(questionID) {
		return
	}

	for i := 0; i < plan.wrongCount; i++ {
		if !rs.IsQuestionActive(questionID) {
			return
		}
		if _, err := rs.RecordSubmission(questionID, plan.name, false, 0, plan.name, ""); err != nil {
			return
		}
		<-rs.clock.After(rs.gen.Pause(rs.sched.PauseMin, rs.sched.PauseMax))
	}

	if plan.correctCount == 0 || !rs.IsQuestionActive(questionID) {
		return
	}
	if _, err := rs.RecordSubmission(questionID, plan.name, true, plan.score, plan.name, ""); err != nil {
		return
	}
	log.Info().
		Int("question_id", questionID).
		Str("team", plan.name).
		Float64("score", plan.score).
		Msg("fake team completed question")
}
