// Package viewmodel turns record store snapshots into display-ready
// aggregates. Each view-model subscribes to the store's notifier when it is
// built, recomputes everything from a fresh fetch on every change, and
// unsubscribes on Close.
package viewmodel

import (
	"context"
	"sync"
	"time"

	"wallet/internal/log"
	"wallet/internal/notify"
	"wallet/internal/services"
)

// Status is the fetch state of a view-model.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusFetching Status = "fetching"
)

type snapshot[S any] interface {
	clone() S
}

type options struct {
	logger  *log.Logger
	now     func() time.Time
	timeout time.Duration
}

type Option func(*options)

func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithClock sets the clock used for "this month" comparisons.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithRefreshTimeout bounds refreshes triggered by change notifications.
func WithRefreshTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, timeout: 30 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.New(log.DefaultConfig())
	}
	o.logger = o.logger.WithComponent(log.ComponentViewModel)
	return o
}

type base[S snapshot[S]] struct {
	name    string
	store   *services.RecordStore
	load    func(ctx context.Context) (S, error)
	logger  *log.Logger
	timeout time.Duration

	refreshMu sync.Mutex

	mu       sync.Mutex
	state    S
	status   Status
	errMsg   string
	onChange func()
	token    notify.Token
	closed   bool
}

func newBase[S snapshot[S]](name string, store *services.RecordStore, o options, load func(ctx context.Context) (S, error)) *base[S] {
	b := &base[S]{
		name:    name,
		store:   store,
		load:    load,
		logger:  o.logger.With("view_model", name),
		timeout: o.timeout,
		status:  StatusIdle,
	}
	return b
}

// start subscribes to store changes. Constructors call it once the
// embedding view-model is fully built.
func (b *base[S]) start() {
	b.token = b.store.Notifier().Subscribe(b.storeChanged)
}

func (b *base[S]) storeChanged(notify.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()
	_ = b.Refresh(ctx)
}

// Refresh fetches a new snapshot and recomputes every aggregate. On
// failure the previous snapshot is kept and ErrorMessage is set; there is
// no retry.
func (b *base[S]) Refresh(ctx context.Context) error {
	b.refreshMu.Lock()
	defer b.refreshMu.Unlock()

	b.mu.Lock()
	b.status = StatusFetching
	b.mu.Unlock()

	next, err := b.load(ctx)

	b.mu.Lock()
	b.status = StatusIdle
	if err != nil {
		b.errMsg = err.Error()
	} else {
		b.state = next
		b.errMsg = ""
	}
	fn := b.onChange
	b.mu.Unlock()

	if err != nil {
		b.logger.WarnContext(ctx, "Refresh failed", log.FieldError, err)
	}
	if fn != nil {
		fn()
	}
	return err
}

func (b *base[S]) snapshot() S {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state.clone()
}

func (b *base[S]) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

// ErrorMessage is the message of the last failed fetch, empty once a fetch
// succeeds.
func (b *base[S]) ErrorMessage() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.errMsg
}

// OnChange registers fn to run after every refresh, failed or not. It
// replaces any earlier callback.
func (b *base[S]) OnChange(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onChange = fn
}

// Close stops listening to the store. Safe to call more than once.
func (b *base[S]) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()
	b.store.Notifier().Unsubscribe(b.token)
}
