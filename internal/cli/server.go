package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"contest-round-service/internal/app"
	"contest-round-service/internal/config"
	"contest-round-service/internal/infra/memory"
	redismirror "contest-round-service/internal/infra/redis"
	"contest-round-service/internal/sim"
	transport "contest-round-service/internal/transport/http"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// NewServerCmd builds the CLI subcommand to start the server.
func NewServerCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Start the round server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var sink app.LeaderboardSink
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		sink = redismirror.NewLeaderboardMirror(client, config.TTLDuration(cfg.Redis.TTL, 10*time.Minute))
	}

	opts := app.Options{
		FakeTeamCount: cfg.FakeTeamCount(),
		Sink:          sink,
	}
	if cfg.Simulation.Seed != 0 {
		opts.Generator = sim.NewGenerator(cfg.Simulation.Seed)
	}
	service := app.NewRoundService(memory.NewSessionStore(), memory.NewTeamRegistry(), opts)

	wsHandler := transport.NewWSHandler(service)
	leaderboards := memory.NewLeaderboardCache(service, time.Second)
	adminHandler := transport.NewAdminHandler(service, leaderboards, cfg.TimeLimit(), cfg.BufferTime())

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	adminHandler.Register(mux)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("port", finalPort).Msg("starting round service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info().Msg("shutting down server")
	case <-ctx.Done():
		log.Info().Msg("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
