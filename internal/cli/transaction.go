package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"wallet/internal/core"
	"wallet/internal/dto"
	"wallet/internal/storage"
)

func NewTransactionCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transaction", "transactions"},
		Short:   "Manage income and expense transactions",
	}
	cmd.AddCommand(newTransactionAddCommand(rootOpts))
	cmd.AddCommand(newTransactionListCommand(rootOpts))
	cmd.AddCommand(newTransactionUpdateCommand(rootOpts))
	cmd.AddCommand(newTransactionDeleteCommand(rootOpts))
	return cmd
}

func newTransactionAddCommand(rootOpts *RootOptions) *cobra.Command {
	var req dto.CreateTransactionRequest
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithSession(rootOpts, cmd, func(ctx context.Context, s *session) error {
				t, err := req.ToTransaction()
				if err != nil {
					return err
				}
				created, err := s.store.CreateTransaction(ctx, t)
				if err != nil {
					return err
				}
				return s.out.Success(dto.FromTransaction(created), func(w io.Writer) {
					fmt.Fprintf(w, "Recorded %s %s on %s (%s)\n",
						kindLabel(created.IsIncome), s.fmt.Money(created.Amount), created.Date.Format(dto.DateLayout), created.ID)
				})
			})
		},
	}
	cmd.Flags().StringVar(&req.Title, "title", "", "what the money was for")
	cmd.Flags().StringVar(&req.Amount, "amount", "", "positive amount, e.g. 12.50")
	cmd.Flags().BoolVar(&req.IsIncome, "income", false, "record as income instead of expense")
	cmd.Flags().StringVar(&req.AccountName, "account", "", "account name")
	cmd.Flags().StringVar(&req.Category, "category", "", "category")
	cmd.Flags().StringVar(&req.Date, "date", "", "date as YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&req.Notes, "notes", "", "free-form notes")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func kindLabel(income bool) string {
	if income {
		return "income"
	}
	return "expense"
}

func newTransactionListCommand(rootOpts *RootOptions) *cobra.Command {
	var account, month string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first, grouped by month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithSession(rootOpts, cmd, func(ctx context.Context, s *session) error {
				var filter storage.TransactionFilter
				if month != "" {
					m, err := dto.ParseMonth(month)
					if err != nil {
						return core.NewValidationError(core.KindTransaction, err)
					}
					filter = storage.MonthFilter(m)
				}
				filter.AccountName = strings.TrimSpace(account)

				txs, err := s.store.ListTransactions(ctx, filter)
				if err != nil {
					return err
				}
				return s.out.Success(dto.NewTransactionList(filter.AccountName, txs, time.UTC), func(w io.Writer) {
					renderTransactions(w, s, txs)
				})
			})
		},
	}
	cmd.Flags().StringVar(&account, "account", "", "only this account")
	cmd.Flags().StringVar(&month, "month", "", "only this month, YYYY-MM")
	return cmd
}

func renderTransactions(w io.Writer, s *session, txs []core.Transaction) {
	if len(txs) == 0 {
		fmt.Fprintln(w, "No transactions")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, g := range core.GroupByMonth(txs, time.UTC) {
		fmt.Fprintf(tw, "%s\n", g.Label)
		for _, t := range g.Transactions {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n",
				t.Date.Format(dto.DateLayout), t.Title, s.fmt.Money(t.Signed()), t.AccountName, t.ID)
		}
	}
	tw.Flush()
	income, expenses := core.IncomeAndExpenses(txs)
	fmt.Fprintf(w, "\n%s transactions, income %s, expenses %s\n",
		s.fmt.Count(len(txs)), s.fmt.Money(income), s.fmt.Money(expenses))
}

func newTransactionUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	var title, amount, account, category, date, notes string
	var income bool
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithSession(rootOpts, cmd, func(ctx context.Context, s *session) error {
				req := dto.UpdateTransactionRequest{
					Title:       changed(cmd, "title", title),
					Amount:      changed(cmd, "amount", amount),
					AccountName: changed(cmd, "account", account),
					Category:    changed(cmd, "category", category),
					Date:        changed(cmd, "date", date),
					Notes:       changed(cmd, "notes", notes),
				}
				if cmd.Flags().Changed("income") {
					req.IsIncome = &income
				}
				patch, err := req.ToPatch()
				if err != nil {
					return err
				}
				updated, err := s.store.UpdateTransaction(ctx, args[0], patch)
				if err != nil {
					return err
				}
				return s.out.Success(dto.FromTransaction(updated), func(w io.Writer) {
					fmt.Fprintf(w, "Updated transaction %s: %s %s\n", updated.ID, updated.Title, s.fmt.Money(updated.Signed()))
				})
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&amount, "amount", "", "new amount")
	cmd.Flags().BoolVar(&income, "income", false, "mark as income (--income=false for expense)")
	cmd.Flags().StringVar(&account, "account", "", "new account name")
	cmd.Flags().StringVar(&category, "category", "", "new category")
	cmd.Flags().StringVar(&date, "date", "", "new date, YYYY-MM-DD")
	cmd.Flags().StringVar(&notes, "notes", "", "new notes")
	return cmd
}

func newTransactionDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithSession(rootOpts, cmd, func(ctx context.Context, s *session) error {
				return deleteRecord(ctx, s, core.KindTransaction, args[0], s.store.DeleteTransaction)
			})
		},
	}
}
