package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/mutker/homedash/internal/actuator"
	"codeberg.org/mutker/homedash/internal/api"
	"codeberg.org/mutker/homedash/internal/bus"
	"codeberg.org/mutker/homedash/internal/config"
	"codeberg.org/mutker/homedash/internal/dashboard"
	"codeberg.org/mutker/homedash/internal/errors"
	"codeberg.org/mutker/homedash/internal/journal"
	"codeberg.org/mutker/homedash/internal/logger"
	"codeberg.org/mutker/homedash/internal/pid"
	"codeberg.org/mutker/homedash/internal/poller"
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 5 * time.Second
	idleTimeout       = 60 * time.Second
)

var cfg *config.Config

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.LogLevel, logger.IsService())
	logger.Debug().Msg("Config loaded")
}

func main() {
	lock := pid.New("", pid.FileName)
	if err := lock.Acquire(); err != nil {
		logger.Fatal().Err(err).Str("pid_file", lock.Path()).Msg("failed to start")
	}

	ctx, cancel := context.WithCancel(context.Background())
	go handleSignals(cancel)

	err := run(ctx)
	cancel()
	if err != nil {
		logger.Error().Err(err).Msg("error in main loop")
	}

	if err := lock.Release(); err != nil {
		logger.Error().Err(err).Msg("failed to remove PID file")
	}
	logger.Info().Msg("Exiting...")

	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	errFactory := errors.New()
	log := logger.Default()

	rec, err := journal.NewService(journal.Config{
		DBPath:       cfg.JournalDB,
		Enabled:      cfg.Journal,
		BatchSize:    cfg.JournalBatchSize,
		BatchTimeout: cfg.JournalBatchTimeout,
	}, log)
	if err != nil {
		return errFactory.Wrap(errors.ErrInitApp, err)
	}
	defer func() {
		if err := rec.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close command journal")
		}
	}()

	client, err := bus.New(bus.Config{
		Broker:         cfg.Broker,
		ClientID:       cfg.ClientID,
		Username:       cfg.Username,
		Password:       cfg.Password,
		PublishTimeout: time.Duration(cfg.PublishTimeout) * time.Second,
	}, log)
	if err != nil {
		return errFactory.Wrap(errors.ErrInitApp, err)
	}
	defer client.Close()

	state := dashboard.New(dashboard.WithPollAppend(cfg.PollAppend))
	if err := client.Subscribe(cfg.SensorTopic, state.HandleMessage); err != nil {
		return errFactory.Wrap(errors.ErrInitApp, err)
	}
	if err := client.Connect(ctx); err != nil {
		// the client keeps retrying in the background
		logger.Warn().Err(err).Str("broker", cfg.Broker).Msg("Broker not reachable yet")
	}

	dispatcher := actuator.NewDispatcher(client, actuatorTopics(cfg.Topics),
		actuator.WithJournal(rec),
		actuator.WithLogger(log),
	)

	hub := api.NewHub(log)
	go hub.Run(ctx)

	handler := api.NewHandler(state, dispatcher, hub,
		api.WithJournal(rec),
		api.WithHealthChecker(client),
		api.WithLogger(log),
	)
	server := &http.Server{
		Addr:              cfg.Listen,
		Handler:           api.NewRouter(handler),
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}

	errs := make(chan error, 2)
	go func() {
		logger.Info().Str("listen", cfg.Listen).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errs <- errFactory.Wrap(errors.ErrServeHTTP, err)
		}
	}()

	refresh := poller.New(state, hub, time.Duration(cfg.Interval)*time.Second, log)
	go func() {
		if err := refresh.Run(ctx); err != nil {
			errs <- errFactory.Wrap(errors.ErrMainLoop, err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errs:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(errFactory.Wrap(errors.ErrShutdownFailed, err)).Msg("HTTP server forced to shutdown")
	}

	return runErr
}

func actuatorTopics(t config.Topics) actuator.Topics {
	return actuator.Topics{
		Light1: t.Light1,
		Light2: t.Light2,
		Door1:  t.Door1,
		Door2:  t.Door2,
		Fan1:   t.Fan1,
		Fan2:   t.Fan2,
	}
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}
