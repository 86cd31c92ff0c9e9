package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/config"
	transport "trivia-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, logger, err := loadConfig(configPath, os.Stdout)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	d, err := openDeps(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer d.Close()

	questions, err := d.questionSource()
	if err != nil {
		return err
	}
	board, err := d.scoreBoard()
	if err != nil {
		return err
	}
	service := app.NewQuizService(d.sessionStore(), questions, board,
		app.WithTimeLimit(d.timeLimit()),
		app.WithTickInterval(config.TTLDuration(cfg.Quiz.Tick, time.Second)),
		app.WithLogger(logger),
	)
	defer service.Close()

	api := transport.NewAPIHandler(service, d.defaultRequest(), logger)
	ws := transport.NewWSHandler(service, logger)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(api, ws),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	sessionTTL := config.TTLDuration(cfg.Quiz.SessionTTL, 2*time.Hour)
	if sessionTTL <= 0 {
		sessionTTL = 2 * time.Hour
	}
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go func() {
		ticker := time.NewTicker(sweepInterval(sessionTTL))
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				if n := service.Sweep(sessionTTL); n > 0 {
					logger.Info("expired idle sessions", "count", n)
				}
			}
		}
	}()

	go func() {
		logger.Info("starting quiz service", "port", finalPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to start server", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down server")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sweepInterval checks four times per TTL, but never more than once a second.
func sweepInterval(ttl time.Duration) time.Duration {
	if interval := ttl / 4; interval >= time.Second {
		return interval
	}
	return time.Second
}
