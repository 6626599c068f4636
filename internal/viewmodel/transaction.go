package viewmodel

import (
	"context"
	"slices"
	"sync"
	"time"

	"wallet/internal/core"
	"wallet/internal/services"
	"wallet/internal/storage"
)

type TransactionState struct {
	// AccountFilter is the account name the list is restricted to, empty
	// for all accounts.
	AccountFilter string
	Transactions  []core.Transaction
	Months        []core.MonthGroup
	Count         int
	Income        core.Money
	Expenses      core.Money
}

func (s TransactionState) clone() TransactionState {
	s.Transactions = slices.Clone(s.Transactions)
	months := make([]core.MonthGroup, len(s.Months))
	for i, m := range s.Months {
		m.Transactions = slices.Clone(m.Transactions)
		months[i] = m
	}
	s.Months = months
	return s
}

// AccountActivity is the transaction list of one account with its totals.
// Location is the calendar its months are grouped in.
type AccountActivity struct {
	AccountName  string
	Location     *time.Location
	Transactions []core.Transaction
	Income       core.Money
	Expenses     core.Money
}

type TransactionViewModel struct {
	*base[TransactionState]

	now func() time.Time

	filterMu sync.Mutex
	filter   string
}

func NewTransactionViewModel(store *services.RecordStore, opts ...Option) *TransactionViewModel {
	o := buildOptions(opts)
	vm := &TransactionViewModel{now: o.now}
	vm.base = newBase("transactions", store, o, vm.load)
	vm.start()
	return vm
}

func (vm *TransactionViewModel) load(ctx context.Context) (TransactionState, error) {
	vm.filterMu.Lock()
	filter := vm.filter
	vm.filterMu.Unlock()

	txs, err := vm.store.ListTransactions(ctx, storage.TransactionFilter{AccountName: filter})
	if err != nil {
		return TransactionState{}, err
	}
	income, expenses := core.IncomeAndExpenses(txs)
	return TransactionState{
		AccountFilter: filter,
		Transactions:  txs,
		Months:        core.GroupByMonth(txs, vm.now().Location()),
		Count:         len(txs),
		Income:        income,
		Expenses:      expenses,
	}, nil
}

// FilterByAccount restricts the list to one account name and refetches.
// The empty name clears the filter.
func (vm *TransactionViewModel) FilterByAccount(ctx context.Context, name string) error {
	vm.filterMu.Lock()
	vm.filter = name
	vm.filterMu.Unlock()
	return vm.Refresh(ctx)
}

// ForAccount derives one account's activity from the current snapshot
// without fetching.
func (vm *TransactionViewModel) ForAccount(name string) AccountActivity {
	st := vm.snapshot()
	txs := core.FilterByAccount(st.Transactions, name)
	income, expenses := core.IncomeAndExpenses(txs)
	return AccountActivity{
		AccountName:  name,
		Location:     vm.now().Location(),
		Transactions: txs,
		Income:       income,
		Expenses:     expenses,
	}
}

func (vm *TransactionViewModel) State() TransactionState {
	return vm.snapshot()
}
