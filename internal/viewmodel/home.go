package viewmodel

import (
	"context"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"wallet/internal/core"
	"wallet/internal/services"
	"wallet/internal/storage"
)

// RecentLimit caps HomeState.Recent.
const RecentLimit = 5

type HomeState struct {
	TotalBalance          core.Money
	AccountCount          int
	TransactionsThisMonth int
	Recent                []core.Transaction
	AsOf                  time.Time
}

func (s HomeState) clone() HomeState {
	s.Recent = slices.Clone(s.Recent)
	return s
}

type HomeViewModel struct {
	*base[HomeState]
	now func() time.Time
}

func NewHomeViewModel(store *services.RecordStore, opts ...Option) *HomeViewModel {
	o := buildOptions(opts)
	vm := &HomeViewModel{now: o.now}
	vm.base = newBase("home", store, o, vm.load)
	vm.start()
	return vm
}

func (vm *HomeViewModel) load(ctx context.Context) (HomeState, error) {
	var (
		accounts []core.Account
		txs      []core.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		accounts, err = vm.store.ListAccounts(gctx, storage.AccountsByCreated)
		return err
	})
	g.Go(func() error {
		var err error
		txs, err = vm.store.ListTransactions(gctx, storage.TransactionFilter{})
		return err
	})
	if err := g.Wait(); err != nil {
		return HomeState{}, err
	}

	now := vm.now()
	recent := txs
	if len(recent) > RecentLimit {
		recent = recent[:RecentLimit]
	}
	return HomeState{
		TotalBalance:          core.TotalBalance(accounts),
		AccountCount:          len(accounts),
		TransactionsThisMonth: core.CountInMonth(txs, now),
		Recent:                slices.Clone(recent),
		AsOf:                  now,
	}, nil
}

func (vm *HomeViewModel) State() HomeState {
	return vm.snapshot()
}
