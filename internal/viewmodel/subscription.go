package viewmodel

import (
	"context"
	"slices"

	"wallet/internal/core"
	"wallet/internal/services"
	"wallet/internal/storage"
)

type SubscriptionState struct {
	// Subscriptions holds the active subscriptions, next payment first.
	Subscriptions []core.Subscription
	MonthlyTotal  core.Money
	YearlyTotal   core.Money
}

func (s SubscriptionState) clone() SubscriptionState {
	s.Subscriptions = slices.Clone(s.Subscriptions)
	return s
}

type SubscriptionViewModel struct {
	*base[SubscriptionState]
}

func NewSubscriptionViewModel(store *services.RecordStore, opts ...Option) *SubscriptionViewModel {
	vm := &SubscriptionViewModel{}
	vm.base = newBase("subscriptions", store, buildOptions(opts), vm.load)
	vm.start()
	return vm
}

func (vm *SubscriptionViewModel) load(ctx context.Context) (SubscriptionState, error) {
	subs, err := vm.store.ListSubscriptions(ctx, storage.SubscriptionFilter{})
	if err != nil {
		return SubscriptionState{}, err
	}
	monthly, yearly := core.SubscriptionTotals(subs)
	return SubscriptionState{Subscriptions: subs, MonthlyTotal: monthly, YearlyTotal: yearly}, nil
}

func (vm *SubscriptionViewModel) State() SubscriptionState {
	return vm.snapshot()
}
