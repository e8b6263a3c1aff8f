package cli

import (
	"encoding/json"
	"os"
	"time"

	"contest-round-service/internal/app"
	"contest-round-service/internal/config"
	"contest-round-service/internal/infra/memory"
	"contest-round-service/internal/sim"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// NewSimulateCmd runs one headless round against the simulated teams and
// prints the final leaderboard. Useful for tuning the behavior distributions
// without standing up the server.
func NewSimulateCmd(configPath *string) *cobra.Command {
	var (
		questionID       int
		timeLimitSeconds int
		bufferSeconds    int
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run one simulated round and print the leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				// The simulation only needs defaults; a missing config is fine.
				cfg = config.Config{}
			}

			timeLimit := cfg.TimeLimit()
			if timeLimitSeconds > 0 {
				timeLimit = time.Duration(timeLimitSeconds) * time.Second
			}
			buffer := cfg.BufferTime()
			if bufferSeconds > 0 {
				buffer = time.Duration(bufferSeconds) * time.Second
			}

			opts := app.Options{FakeTeamCount: cfg.FakeTeamCount()}
			if cfg.Simulation.Seed != 0 {
				opts.Generator = sim.NewGenerator(cfg.Simulation.Seed)
			}
			service := app.NewRoundService(memory.NewSessionStore(), memory.NewTeamRegistry(), opts)

			service.StartQuestion(questionID, timeLimit, buffer)
			log.Info().
				Int("question_id", questionID).
				Dur("time_limit", timeLimit).
				Msg("simulated round started, waiting for the window to close")

			ticker := time.NewTicker(10 * time.Second)
			defer ticker.Stop()
			deadline := time.After(timeLimit + buffer)

		wait:
			for {
				select {
				case <-ticker.C:
					for _, status := range service.GetAllSessionsStatus() {
						log.Info().
							Int("question_id", status.QuestionID).
							Float64("remaining_s", status.RemainingSeconds).
							Int("submissions", status.TotalSubmissions).
							Int("completed", status.CompletedTeams).
							Msg("round progress")
					}
				case <-deadline:
					break wait
				case <-cmd.Context().Done():
					break wait
				}
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(service.GetQuestionLeaderboard(questionID))
		},
	}

	cmd.Flags().IntVar(&questionID, "question", 1, "question id for the simulated round")
	cmd.Flags().IntVar(&timeLimitSeconds, "time-limit", 0, "round length in seconds (default from config)")
	cmd.Flags().IntVar(&bufferSeconds, "buffer", 0, "grace period in seconds (default from config)")
	return cmd
}
