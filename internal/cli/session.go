package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"wallet/internal/amqp"
	"wallet/internal/backend"
	"wallet/internal/config"
	"wallet/internal/dto"
	"wallet/internal/log"
	"wallet/internal/services"
)

const bridgeBuffer = 256

// session is what a command needs once configuration is loaded and the
// store is open.
type session struct {
	cfg    *config.Config
	logger *log.Logger
	store  *services.RecordStore
	result *backend.Result
	bridge *amqp.Bridge
	out    *OutputFormatter
	fmt    dto.Formatter
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// openSession loads configuration and opens the backend. longRunning
// commands log at the configured level; the rest stay quiet.
func openSession(ctx context.Context, opts *RootOptions, cmd *cobra.Command, longRunning bool) (*session, error) {
	out := newFormatter(opts, cmd)

	cfg, err := LoadAndValidateConfig(opts)
	if err != nil {
		_ = out.Error(ErrCodeConfig, err.Error())
		return nil, err
	}
	logger := SetupLogger(cfg, cmd.ErrOrStderr(), opts.Verbose, longRunning)

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		_ = out.Error(ErrCodeConfig, err.Error())
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	result, err := backend.NewFactory(logger).Create(ctx, bcfg)
	if err != nil {
		_ = out.Error(ErrCodeInternal, err.Error())
		return nil, WrapExitError(ExitCommandError, "open store", err)
	}

	store := services.NewRecordStore(result.Repository,
		services.WithLogger(logger),
		services.WithCache(cfg.CacheSize, cfg.CacheTTL),
	)
	out.VerboseLog("Using %s backend", cfg.Backend)

	s := &session{
		cfg:    cfg,
		logger: logger,
		store:  store,
		result: result,
		out:    out,
		fmt:    dto.NewFormatter(opts.Lang),
	}
	if result.Feed != nil {
		s.bridge = amqp.NewBridge(result.Feed, bridgeBuffer, logger)
		s.bridge.Attach(store.Notifier())
		out.VerboseLog("Publishing changes to exchange %s", cfg.AMQPExchange)
	}
	return s, nil
}

// Close drains pending change events into the feed before closing the
// feed and then the store.
func (s *session) Close() error {
	s.store.Notifier().Close()
	if s.bridge != nil {
		s.bridge.Close()
	}
	return errors.Join(s.result.Close(), s.store.Close())
}

// runWithSession opens a session, runs fn and maps its error to an exit
// code after reporting it.
func runWithSession(opts *RootOptions, cmd *cobra.Command, fn func(ctx context.Context, s *session) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := openSession(ctx, opts, cmd, false)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := fn(ctx, s); err != nil {
		return s.out.Fail(err)
	}
	return nil
}
