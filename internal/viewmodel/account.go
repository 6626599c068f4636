package viewmodel

import (
	"context"
	"slices"
	"sync"

	"wallet/internal/core"
	"wallet/internal/services"
	"wallet/internal/storage"
)

// AccountState is a point-in-time copy of the account aggregates.
type AccountState struct {
	Accounts      []core.Account
	TotalBalance  core.Money
	BalanceByType []core.TypeBalance
	Order         storage.AccountOrder
}

func (s AccountState) clone() AccountState {
	s.Accounts = slices.Clone(s.Accounts)
	s.BalanceByType = slices.Clone(s.BalanceByType)
	return s
}

type AccountViewModel struct {
	*base[AccountState]

	orderMu sync.Mutex
	order   storage.AccountOrder
}

func NewAccountViewModel(store *services.RecordStore, order storage.AccountOrder, opts ...Option) *AccountViewModel {
	vm := &AccountViewModel{order: order}
	vm.base = newBase("accounts", store, buildOptions(opts), vm.load)
	vm.start()
	return vm
}

func (vm *AccountViewModel) load(ctx context.Context) (AccountState, error) {
	vm.orderMu.Lock()
	order := vm.order
	vm.orderMu.Unlock()

	accounts, err := vm.store.ListAccounts(ctx, order)
	if err != nil {
		return AccountState{}, err
	}
	return AccountState{
		Accounts:      accounts,
		TotalBalance:  core.TotalBalance(accounts),
		BalanceByType: core.BalanceByType(accounts),
		Order:         order,
	}, nil
}

// SetOrder switches the sort mode and refetches.
func (vm *AccountViewModel) SetOrder(ctx context.Context, order storage.AccountOrder) error {
	vm.orderMu.Lock()
	vm.order = order
	vm.orderMu.Unlock()
	return vm.Refresh(ctx)
}

func (vm *AccountViewModel) State() AccountState {
	return vm.snapshot()
}
