// Package http serves the record store and its aggregates as a small local
// JSON API.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"wallet/internal/log"
	"wallet/internal/middleware/ratelimit"
	"wallet/internal/middleware/security"
	"wallet/internal/middleware/trace"
	"wallet/internal/services"
	"wallet/internal/storage"
	"wallet/internal/viewmodel"
)

type Server struct {
	http.Server

	store     *services.RecordStore
	processor *services.SubscriptionProcessor
	logger    *log.Logger
	now       func() time.Time
	started   time.Time

	home          *viewmodel.HomeViewModel
	accounts      *viewmodel.AccountViewModel
	subscriptions *viewmodel.SubscriptionViewModel
	transactions  *viewmodel.TransactionViewModel

	tracer   *trace.Middleware
	detector *security.Detector
	limiter  *ratelimit.Limiter
}

type options struct {
	logger    *log.Logger
	now       func() time.Time
	rateLimit int
}

type Option func(*options)

func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithRateLimit caps requests per minute per client; 0 disables it.
func WithRateLimit(perMinute int) Option {
	return func(o *options) { o.rateLimit = perMinute }
}

// NewServer wires the routes over store. The view-models it builds stay
// subscribed to the store until Shutdown. API dates are UTC, so the default
// clock is too and month grouping matches the ?month= filter.
func NewServer(addr string, store *services.RecordStore, opts ...Option) *Server {
	o := options{now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.New(log.DefaultConfig())
	}
	logger := o.logger.WithComponent(log.ComponentHTTP)
	vmOpts := []viewmodel.Option{viewmodel.WithLogger(o.logger), viewmodel.WithClock(o.now)}

	s := &Server{
		store:         store,
		processor:     services.NewSubscriptionProcessor(store, nil, o.logger),
		logger:        logger,
		now:           o.now,
		started:       o.now(),
		home:          viewmodel.NewHomeViewModel(store, vmOpts...),
		accounts:      viewmodel.NewAccountViewModel(store, storage.AccountsByCreated, vmOpts...),
		subscriptions: viewmodel.NewSubscriptionViewModel(store, vmOpts...),
		transactions:  viewmodel.NewTransactionViewModel(store, vmOpts...),
		detector:      security.NewDetector(),
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP)
	if o.rateLimit > 0 {
		s.limiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: o.rateLimit})
	}

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(log.Middleware(s.logger))
	r.Use(s.tracer.Middleware)
	r.Use(log.RequestIDMiddleware(func(r *http.Request) string {
		return trace.GetRequestID(r.Context())
	}))
	r.Use(security.Headers)
	r.Use(s.detector.Middleware)
	if s.limiter != nil {
		r.Use(s.limiter.Middleware(s.detector.ExtractClientIP, nil))
	}

	r.Get("/healthz", s.handleHealth)
	r.Get("/summary", s.handleSummary)
	r.Get("/activity", s.handleActivity)

	r.Route("/accounts", func(r chi.Router) {
		r.Get("/", s.handleListAccounts)
		r.Post("/", s.handleCreateAccount)
		r.Get("/{id}", s.handleGetAccount)
		r.Patch("/{id}", s.handleUpdateAccount)
		r.Delete("/{id}", s.handleDeleteAccount)
	})
	r.Route("/transactions", func(r chi.Router) {
		r.Get("/", s.handleListTransactions)
		r.Post("/", s.handleCreateTransaction)
		r.Get("/{id}", s.handleGetTransaction)
		r.Patch("/{id}", s.handleUpdateTransaction)
		r.Delete("/{id}", s.handleDeleteTransaction)
	})
	r.Route("/subscriptions", func(r chi.Router) {
		r.Get("/", s.handleListSubscriptions)
		r.Post("/", s.handleCreateSubscription)
		r.Post("/process-due", s.handleProcessDue)
		r.Get("/{id}", s.handleGetSubscription)
		r.Patch("/{id}", s.handleUpdateSubscription)
		r.Delete("/{id}", s.handleDeleteSubscription)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "not_found", "no such route")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", r.Method+" not allowed here")
	})
	return r
}

// Run serves until ctx is done, then shuts down within timeout.
func (s *Server) Run(ctx context.Context, timeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.InfoContext(ctx, "HTTP server listening", "addr", s.Addr)
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.closeViews()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown stops accepting requests, waits for in-flight ones and detaches
// the view-models from the store.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.InfoContext(ctx, "Shutting down HTTP server", log.FieldOperation, log.OpShutdown)
	err := s.Server.Shutdown(ctx)
	s.closeViews()
	return err
}

func (s *Server) closeViews() {
	s.home.Close()
	s.accounts.Close()
	s.subscriptions.Close()
	s.transactions.Close()
	if s.limiter != nil {
		s.limiter.Stop()
	}
}
