package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"toxbridge/repositories"
	"toxbridge/runtime"
	"toxbridge/runtime/workers"
	"toxbridge/sink"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components and centralizes error reporting, so
// deferred cleanup (badger, engine handle) executes before the process
// exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := validator.New().Struct(config); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	log := newLogger(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Profile wiring
	engine := newDemoEngine()
	notifier := sink.NewConsole(os.Stdout)
	store := repositories.NewLedgerRepository(db, log)
	opts := runtime.Options{
		ShortIDLength:     config.ShortIDLength,
		MaxFriendRequests: config.MaxFriendRequests,
		MaxGroupInvites:   config.MaxGroupInvites,
		QueueLimit:        config.QueueLimit,
	}
	profile := runtime.NewProfile(log, engine, notifier, store, opts)
	profile.Load()

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Pump under supervision. Run blocks until the context is
	// canceled; the profile is closed only after the pump has stopped so
	// no event can fire into a torn-down session.
	sup := workers.NewSupervisor(log)
	sup.Add(workers.NewPump(log, profile))
	sup.Run(ctx)

	log.Info("Pump stopped, closing profile")
	return profile.Close()
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}
