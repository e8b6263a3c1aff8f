package domain

import "time"

// TeamSubmission tracks one team's submission history for a single question.
// Counters and SubmitTimes keep accumulating after completion for audit;
// FinalScore and FirstCorrectTime are set by the first correct submission
// and never change afterwards.
type TeamSubmission struct {
	TeamID           string      `json:"teamId"`
	TeamName         string      `json:"teamName"`
	TeamSessionID    string      `json:"teamSessionId,omitempty"`
	QuestionID       int         `json:"questionId"`
	SubmitTimes      []time.Time `json:"submitTimes"`
	WrongCount       int         `json:"wrongCount"`
	CorrectCount     int         `json:"correctCount"`
	IsCompleted      bool        `json:"isCompleted"`
	FinalScore       float64     `json:"finalScore"`
	FirstCorrectTime time.Time   `json:"firstCorrectTime,omitempty"`
}

// LeaderboardEntry is one ranked row of a question leaderboard.
type LeaderboardEntry struct {
	TeamID      string  `json:"teamId"`
	TeamName    string  `json:"teamName"`
	Score       float64 `json:"score"`
	TimeTaken   float64 `json:"timeTaken"` // seconds from question start to first correct
	SubmitCount int     `json:"submitCount"`
	WrongCount  int     `json:"wrongCount"`
	Rank        int     `json:"rank"`
}

// Leaderboard captures the ordered scoreboard for a question round.
type Leaderboard struct {
	QuestionID int                `json:"questionId"`
	Entries    []LeaderboardEntry `json:"entries"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}

// SessionStatus is a monitoring snapshot of one round, not authoritative state.
type SessionStatus struct {
	QuestionID       int     `json:"questionId"`
	IsActive         bool    `json:"isActive"`
	ElapsedSeconds   float64 `json:"elapsedSeconds"`
	RemainingSeconds float64 `json:"remainingSeconds"`
	TimeLimitSeconds float64 `json:"timeLimitSeconds"`
	BufferSeconds    float64 `json:"bufferSeconds"`
	RealTeams        int     `json:"realTeams"`
	FakeTeams        int     `json:"fakeTeams"`
	TotalSubmissions int     `json:"totalSubmissions"`
	CompletedTeams   int     `json:"completedTeams"`
}

// RegisteredTeam identifies a real team known to the registration flow.
type RegisteredTeam struct {
	TeamID        string `json:"teamId"`
	TeamName      string `json:"teamName"`
	TeamSessionID string `json:"teamSessionId"`
}
