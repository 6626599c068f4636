// Package memory is an in-process storage.Repository. Nothing survives a
// restart; it backs tests and the "memory" backend.
package memory

import (
	"context"
	"sort"
	"sync"

	"wallet/internal/core"
	"wallet/internal/storage"
)

type entry[T any] struct {
	seq int64
	rec T
}

type Store struct {
	mu       sync.Mutex
	seq      int64
	accounts map[string]entry[core.Account]
	txs      map[string]entry[core.Transaction]
	subs     map[string]entry[core.Subscription]
}

var _ storage.Repository = (*Store)(nil)

func New() *Store {
	return &Store{
		accounts: make(map[string]entry[core.Account]),
		txs:      make(map[string]entry[core.Transaction]),
		subs:     make(map[string]entry[core.Subscription]),
	}
}

func (s *Store) Close() error { return nil }

func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}

// sortedValues returns the records ordered by less, ties by insertion.
func sortedValues[T any](m map[string]entry[T], less func(a, b T) bool) []T {
	entries := make([]entry[T], 0, len(m))
	for _, e := range m {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if less(a.rec, b.rec) {
			return true
		}
		if less(b.rec, a.rec) {
			return false
		}
		return a.seq < b.seq
	})
	out := make([]T, len(entries))
	for i, e := range entries {
		out[i] = e.rec
	}
	return out
}

func (s *Store) InsertAccount(_ context.Context, a core.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.ID] = entry[core.Account]{seq: s.nextSeq(), rec: a}
	return nil
}

func (s *Store) GetAccount(_ context.Context, id string) (core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.accounts[id]
	if !ok {
		return core.Account{}, core.NewNotFoundError(core.KindAccount, id)
	}
	return e.rec, nil
}

func (s *Store) ListAccounts(_ context.Context, order storage.AccountOrder) ([]core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	less := func(a, b core.Account) bool { return a.CreatedAt.Before(b.CreatedAt) }
	if order == storage.AccountsByBalance {
		less = func(a, b core.Account) bool { return a.Balance.Cents > b.Balance.Cents }
	}
	return sortedValues(s.accounts, less), nil
}

func (s *Store) UpdateAccount(_ context.Context, a core.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.accounts[a.ID]
	if !ok {
		return core.NewNotFoundError(core.KindAccount, a.ID)
	}
	a.CreatedAt = e.rec.CreatedAt
	e.rec = a
	s.accounts[a.ID] = e
	return nil
}

func (s *Store) DeleteAccount(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.accounts[id]
	delete(s.accounts, id)
	return ok, nil
}

func (s *Store) CountAccounts(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.accounts)), nil
}

func (s *Store) InsertTransaction(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs[t.ID] = entry[core.Transaction]{seq: s.nextSeq(), rec: t}
	return nil
}

func (s *Store) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.txs[id]
	if !ok {
		return core.Transaction{}, core.NewNotFoundError(core.KindTransaction, id)
	}
	return e.rec, nil
}

func (s *Store) ListTransactions(_ context.Context, f storage.TransactionFilter) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := sortedValues(s.txs, func(a, b core.Transaction) bool { return a.Date.After(b.Date) })
	out := all[:0]
	for _, t := range all {
		if f.AccountName != "" && t.AccountName != f.AccountName {
			continue
		}
		if !f.From.IsZero() && t.Date.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && !t.Date.Before(f.To) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *Store) UpdateTransaction(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.txs[t.ID]
	if !ok {
		return core.NewNotFoundError(core.KindTransaction, t.ID)
	}
	t.CreatedAt = e.rec.CreatedAt
	e.rec = t
	s.txs[t.ID] = e
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.txs[id]
	delete(s.txs, id)
	return ok, nil
}

func (s *Store) CountTransactions(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.txs)), nil
}

func (s *Store) InsertSubscription(_ context.Context, sub core.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs[sub.ID] = entry[core.Subscription]{seq: s.nextSeq(), rec: sub}
	return nil
}

func (s *Store) GetSubscription(_ context.Context, id string) (core.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.subs[id]
	if !ok {
		return core.Subscription{}, core.NewNotFoundError(core.KindSubscription, id)
	}
	return e.rec, nil
}

func (s *Store) ListSubscriptions(_ context.Context, f storage.SubscriptionFilter) ([]core.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := sortedValues(s.subs, func(a, b core.Subscription) bool { return a.NextPaymentDate.Before(b.NextPaymentDate) })
	out := all[:0]
	for _, sub := range all {
		if sub.IsActive || f.IncludeInactive {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (s *Store) UpdateSubscription(_ context.Context, sub core.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.subs[sub.ID]
	if !ok {
		return core.NewNotFoundError(core.KindSubscription, sub.ID)
	}
	sub.CreatedAt = e.rec.CreatedAt
	e.rec = sub
	s.subs[sub.ID] = e
	return nil
}

func (s *Store) DeleteSubscription(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.subs[id]
	delete(s.subs, id)
	return ok, nil
}

func (s *Store) CountSubscriptions(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.subs)), nil
}
