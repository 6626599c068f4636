// Package services holds the record store and the workflows built on it.
package services

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"wallet/internal/cache"
	"wallet/internal/core"
	"wallet/internal/log"
	"wallet/internal/notify"
	"wallet/internal/storage"
)

const (
	DefaultCacheSize = 64
	DefaultCacheTTL  = 5 * time.Minute
)

// RecordStore is the single owner of persisted records. Every successful
// write is durable before the matching change event is queued on its
// notifier, and list snapshots are cached until the next write.
type RecordStore struct {
	repo     storage.Repository
	notifier *notify.Notifier
	logger   *log.Logger
	now      func() time.Time
	newID    func() string

	cacheSize  int
	cacheTTL   time.Duration
	queueSize  int
	mu         sync.Mutex
	generation uint64
	accounts   *cache.LRUCache[[]core.Account]
	txs        *cache.LRUCache[[]core.Transaction]
	subs       *cache.LRUCache[[]core.Subscription]
}

type Option func(*RecordStore)

// WithClock overrides the time source used for CreatedAt and default dates.
func WithClock(now func() time.Time) Option {
	return func(s *RecordStore) { s.now = now }
}

// WithIDGenerator overrides uuid generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *RecordStore) { s.newID = gen }
}

func WithLogger(l *log.Logger) Option {
	return func(s *RecordStore) { s.logger = l }
}

func WithCache(size int, ttl time.Duration) Option {
	return func(s *RecordStore) {
		s.cacheSize = size
		s.cacheTTL = ttl
	}
}

// WithNotifyQueue sets the notifier's pending-event bound.
func WithNotifyQueue(size int) Option {
	return func(s *RecordStore) { s.queueSize = size }
}

// NewRecordStore wraps repo. The store takes ownership of repo and closes it
// in Close.
func NewRecordStore(repo storage.Repository, opts ...Option) *RecordStore {
	s := &RecordStore{
		repo:      repo,
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
		cacheSize: DefaultCacheSize,
		cacheTTL:  DefaultCacheTTL,
		queueSize: notify.DefaultQueueSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.New(log.DefaultConfig())
	}
	s.logger = s.logger.WithComponent(log.ComponentStore)
	s.notifier = notify.New(s.queueSize)
	s.accounts = cache.NewLRUCache[[]core.Account](s.cacheSize, s.cacheTTL)
	s.txs = cache.NewLRUCache[[]core.Transaction](s.cacheSize, s.cacheTTL)
	s.subs = cache.NewLRUCache[[]core.Subscription](s.cacheSize, s.cacheTTL)
	return s
}

// Notifier returns the change notifier owned by the store.
func (s *RecordStore) Notifier() *notify.Notifier { return s.notifier }

// RegisterCaches hands the snapshot caches to m for periodic expiry.
func (s *RecordStore) RegisterCaches(m *cache.Manager) {
	m.Register(s.accounts)
	m.Register(s.txs)
	m.Register(s.subs)
}

// Close drains pending notifications and closes the repository. Like
// notify.Notifier.Close it blocks on the dispatcher, so change handlers must
// call it from a new goroutine.
func (s *RecordStore) Close() error {
	s.notifier.Close()
	if err := s.repo.Close(); err != nil {
		return fmt.Errorf("close repository: %w", err)
	}
	return nil
}

// changed invalidates every snapshot and queues the event. It must only be
// called after the write returned successfully.
func (s *RecordStore) changed(ctx context.Context, kind core.Kind, op notify.Op, id string) {
	s.mu.Lock()
	s.generation++
	s.accounts.Purge()
	s.txs.Purge()
	s.subs.Purge()
	s.mu.Unlock()

	s.notifier.Publish(notify.Event{Kind: kind, Op: op, ID: id, At: s.now()})
	s.logger.DebugContext(ctx, "Store changed", log.FieldKind, kind, log.FieldOperation, op, log.FieldRecordID, id)
}

func (s *RecordStore) writeFailed(ctx context.Context, kind core.Kind, op string, id string, err error) {
	fields := log.NewFields().WithRecord(string(kind), id).WithOperation(op).WithError(err)
	s.logger.ErrorContext(ctx, "Store write failed", fields.ToSlice()...)
}

// cached serves key from c, loading and storing it on a miss. A load that
// raced with a write is returned but not cached.
func cached[T any](s *RecordStore, c *cache.LRUCache[[]T], key string, load func() ([]T, error)) ([]T, error) {
	if v, ok := c.Get(key); ok {
		return slices.Clone(v), nil
	}

	s.mu.Lock()
	gen := s.generation
	s.mu.Unlock()

	v, err := load()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if gen == s.generation {
		c.Set(key, slices.Clone(v))
	}
	s.mu.Unlock()
	return v, nil
}

// Count returns the number of stored records of kind.
func (s *RecordStore) Count(ctx context.Context, kind core.Kind) (int64, error) {
	switch kind {
	case core.KindAccount:
		return s.repo.CountAccounts(ctx)
	case core.KindTransaction:
		return s.repo.CountTransactions(ctx)
	case core.KindSubscription:
		return s.repo.CountSubscriptions(ctx)
	}
	return 0, fmt.Errorf("count: unknown kind %q", kind)
}

func (s *RecordStore) IsEmpty(ctx context.Context, kind core.Kind) (bool, error) {
	n, err := s.Count(ctx, kind)
	return n == 0, err
}

// Accounts

func (s *RecordStore) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	if err := a.Validate(); err != nil {
		return core.Account{}, core.NewValidationError(core.KindAccount, err)
	}
	a.ID = s.newID()
	a.CreatedAt = s.now()
	if err := s.repo.InsertAccount(ctx, a); err != nil {
		s.writeFailed(ctx, core.KindAccount, log.OpCreate, a.ID, err)
		return core.Account{}, err
	}
	s.changed(ctx, core.KindAccount, notify.OpCreated, a.ID)
	return a, nil
}

func (s *RecordStore) GetAccount(ctx context.Context, id string) (core.Account, error) {
	return s.repo.GetAccount(ctx, id)
}

func (s *RecordStore) ListAccounts(ctx context.Context, order storage.AccountOrder) ([]core.Account, error) {
	return cached(s, s.accounts, fmt.Sprintf("order=%d", order), func() ([]core.Account, error) {
		return s.repo.ListAccounts(ctx, order)
	})
}

func (s *RecordStore) UpdateAccount(ctx context.Context, id string, p core.AccountPatch) (core.Account, error) {
	cur, err := s.repo.GetAccount(ctx, id)
	if err != nil {
		return core.Account{}, err
	}
	next := cur.Apply(p)
	if err := next.Validate(); err != nil {
		return core.Account{}, core.NewValidationError(core.KindAccount, err)
	}
	if err := s.repo.UpdateAccount(ctx, next); err != nil {
		s.writeFailed(ctx, core.KindAccount, log.OpUpdate, id, err)
		return core.Account{}, err
	}
	s.changed(ctx, core.KindAccount, notify.OpUpdated, id)
	return next, nil
}

// DeleteAccount removes the account. Transactions naming it are kept.
// Deleting an unknown id does nothing.
func (s *RecordStore) DeleteAccount(ctx context.Context, id string) error {
	removed, err := s.repo.DeleteAccount(ctx, id)
	if err != nil {
		s.writeFailed(ctx, core.KindAccount, log.OpDelete, id, err)
		return err
	}
	if removed {
		s.changed(ctx, core.KindAccount, notify.OpDeleted, id)
	}
	return nil
}

// Transactions

// CreateTransaction stores t. A zero Date defaults to the current time.
func (s *RecordStore) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	now := s.now()
	if t.Date.IsZero() {
		t.Date = now
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, core.NewValidationError(core.KindTransaction, err)
	}
	t.ID = s.newID()
	t.CreatedAt = now
	if err := s.repo.InsertTransaction(ctx, t); err != nil {
		s.writeFailed(ctx, core.KindTransaction, log.OpCreate, t.ID, err)
		return core.Transaction{}, err
	}
	s.changed(ctx, core.KindTransaction, notify.OpCreated, t.ID)
	return t, nil
}

func (s *RecordStore) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	return s.repo.GetTransaction(ctx, id)
}

func (s *RecordStore) ListTransactions(ctx context.Context, f storage.TransactionFilter) ([]core.Transaction, error) {
	key := fmt.Sprintf("account=%s|from=%d|to=%d", f.AccountName, unixOrZero(f.From), unixOrZero(f.To))
	return cached(s, s.txs, key, func() ([]core.Transaction, error) {
		return s.repo.ListTransactions(ctx, f)
	})
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func (s *RecordStore) UpdateTransaction(ctx context.Context, id string, p core.TransactionPatch) (core.Transaction, error) {
	cur, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}
	next := cur.Apply(p)
	if err := next.Validate(); err != nil {
		return core.Transaction{}, core.NewValidationError(core.KindTransaction, err)
	}
	if err := s.repo.UpdateTransaction(ctx, next); err != nil {
		s.writeFailed(ctx, core.KindTransaction, log.OpUpdate, id, err)
		return core.Transaction{}, err
	}
	s.changed(ctx, core.KindTransaction, notify.OpUpdated, id)
	return next, nil
}

func (s *RecordStore) DeleteTransaction(ctx context.Context, id string) error {
	removed, err := s.repo.DeleteTransaction(ctx, id)
	if err != nil {
		s.writeFailed(ctx, core.KindTransaction, log.OpDelete, id, err)
		return err
	}
	if removed {
		s.changed(ctx, core.KindTransaction, notify.OpDeleted, id)
	}
	return nil
}

// Subscriptions

func (s *RecordStore) CreateSubscription(ctx context.Context, sub core.Subscription) (core.Subscription, error) {
	if err := sub.Validate(); err != nil {
		return core.Subscription{}, core.NewValidationError(core.KindSubscription, err)
	}
	sub.ID = s.newID()
	sub.CreatedAt = s.now()
	if err := s.repo.InsertSubscription(ctx, sub); err != nil {
		s.writeFailed(ctx, core.KindSubscription, log.OpCreate, sub.ID, err)
		return core.Subscription{}, err
	}
	s.changed(ctx, core.KindSubscription, notify.OpCreated, sub.ID)
	return sub, nil
}

func (s *RecordStore) GetSubscription(ctx context.Context, id string) (core.Subscription, error) {
	return s.repo.GetSubscription(ctx, id)
}

func (s *RecordStore) ListSubscriptions(ctx context.Context, f storage.SubscriptionFilter) ([]core.Subscription, error) {
	return cached(s, s.subs, fmt.Sprintf("inactive=%t", f.IncludeInactive), func() ([]core.Subscription, error) {
		return s.repo.ListSubscriptions(ctx, f)
	})
}

func (s *RecordStore) UpdateSubscription(ctx context.Context, id string, p core.SubscriptionPatch) (core.Subscription, error) {
	cur, err := s.repo.GetSubscription(ctx, id)
	if err != nil {
		return core.Subscription{}, err
	}
	next := cur.Apply(p)
	if err := next.Validate(); err != nil {
		return core.Subscription{}, core.NewValidationError(core.KindSubscription, err)
	}
	if err := s.repo.UpdateSubscription(ctx, next); err != nil {
		s.writeFailed(ctx, core.KindSubscription, log.OpUpdate, id, err)
		return core.Subscription{}, err
	}
	s.changed(ctx, core.KindSubscription, notify.OpUpdated, id)
	return next, nil
}

func (s *RecordStore) DeleteSubscription(ctx context.Context, id string) error {
	removed, err := s.repo.DeleteSubscription(ctx, id)
	if err != nil {
		s.writeFailed(ctx, core.KindSubscription, log.OpDelete, id, err)
		return err
	}
	if removed {
		s.changed(ctx, core.KindSubscription, notify.OpDeleted, id)
	}
	return nil
}
