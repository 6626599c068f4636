package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"wallet/internal/cache"
	apphttp "wallet/internal/http"
	"wallet/internal/log"
	"wallet/internal/services"
)

type serveOptions struct {
	addr            string
	processInterval time.Duration
	shutdownTimeout time.Duration
	seed            bool
}

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API and process due subscriptions periodically",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(rootOpts, opts, cmd)
		},
	}
	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default :WALLET_PORT)")
	cmd.Flags().DurationVar(&opts.processInterval, "process-interval", time.Hour, "how often due subscriptions are charged; 0 disables")
	cmd.Flags().DurationVar(&opts.shutdownTimeout, "shutdown-timeout", 30*time.Second, "grace period for in-flight requests")
	cmd.Flags().BoolVar(&opts.seed, "seed", false, "insert sample data into an empty store (also WALLET_SEED_ON_START)")
	return cmd
}

func runServe(rootOpts *RootOptions, opts *serveOptions, cmd *cobra.Command) error {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}

	s, err := openSession(parent, rootOpts, cmd, true)
	if err != nil {
		return err
	}
	defer s.Close()
	logger := s.logger.WithComponent(log.ComponentApp)

	ctx, stop := GracefulShutdown(parent, logger)
	defer stop()

	if opts.seed || s.cfg.SeedOnStart {
		if _, err := services.NewSeeder(s.store, s.logger).Seed(ctx); err != nil {
			return s.out.Fail(err)
		}
	}

	caches := cache.NewManager(s.logger.WithComponent(log.ComponentCache).Logger)
	s.store.RegisterCaches(caches)
	caches.StartCleanup(time.Minute)
	defer caches.Stop()

	addr := opts.addr
	if addr == "" {
		addr = ":" + s.cfg.Port
	}
	srv := apphttp.NewServer(addr, s.store,
		apphttp.WithLogger(s.logger),
		apphttp.WithRateLimit(s.cfg.RateLimit))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx, opts.shutdownTimeout)
	})

	if opts.processInterval > 0 {
		processor := services.NewSubscriptionProcessor(s.store, nil, s.logger)
		scheduler := services.NewScheduler(processor, services.SchedulerConfig{Interval: opts.processInterval}, s.logger)
		if err := scheduler.Start(gctx); err != nil {
			return s.out.Fail(err)
		}
		g.Go(func() error {
			<-gctx.Done()
			stopCtx, cancel := context.WithTimeout(context.Background(), opts.shutdownTimeout)
			defer cancel()
			return scheduler.Stop(stopCtx)
		})
	}

	logger.InfoContext(ctx, "Wallet started",
		log.FieldOperation, log.OpStartup,
		"addr", addr,
		"backend", s.cfg.Backend,
		"change_feed", s.bridge != nil)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return s.out.Fail(err)
	}
	logger.Info("Wallet stopped", log.FieldOperation, log.OpShutdown)
	return nil
}
