// Package cli implements the wallet command line: record CRUD, summaries,
// seeding, subscription processing, the HTTP API and the change feed.
package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"wallet/internal/config"
	"wallet/internal/log"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig reads the environment, applies the flag overrides
// in opts and validates the result.
func LoadAndValidateConfig(opts *RootOptions) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load configuration", err)
	}
	if opts.DBPath != "" {
		cfg.DBPath = opts.DBPath
	}
	if opts.Backend != "" {
		cfg.Backend = opts.Backend
	}
	if err := cfg.Validate(); err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	return cfg, nil
}

// SetupLogger builds the process logger from cfg and makes it the slog
// default. Short-lived commands stay at warn unless verbose so that log
// lines do not drown their output.
func SetupLogger(cfg *config.Config, out io.Writer, verbose, longRunning bool) *log.Logger {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	if verbose && level > slog.LevelDebug {
		level = slog.LevelDebug
	} else if !verbose && !longRunning && level < slog.LevelWarn {
		level = slog.LevelWarn
	}
	logger := log.New(log.Config{Level: level, Component: log.ComponentCLI, Output: out})
	log.SetDefault(logger)
	return logger
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM. The
// returned cancel func releases the signal handler.
func GracefulShutdown(parent context.Context, logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String(), log.FieldOperation, log.OpShutdown)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
