package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"wallet/internal/core"
	"wallet/internal/dto"
	"wallet/internal/storage"
)

func NewAccountCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "account",
		Aliases: []string{"accounts", "acc"},
		Short:   "Manage accounts",
	}
	cmd.AddCommand(newAccountAddCommand(rootOpts))
	cmd.AddCommand(newAccountListCommand(rootOpts))
	cmd.AddCommand(newAccountUpdateCommand(rootOpts))
	cmd.AddCommand(newAccountDeleteCommand(rootOpts))
	return cmd
}

func newAccountAddCommand(rootOpts *RootOptions) *cobra.Command {
	var req dto.CreateAccountRequest
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithSession(rootOpts, cmd, func(ctx context.Context, s *session) error {
				a, err := req.ToAccount()
				if err != nil {
					return err
				}
				created, err := s.store.CreateAccount(ctx, a)
				if err != nil {
					return err
				}
				return s.out.Success(dto.FromAccount(created), func(w io.Writer) {
					fmt.Fprintf(w, "Created account %s (%s) with balance %s\n", created.Name, created.ID, s.fmt.Money(created.Balance))
				})
			})
		},
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "account name")
	cmd.Flags().StringVar(&req.Type, "type", "", "account type, e.g. Bank, Credit, Cash")
	cmd.Flags().StringVar(&req.Balance, "balance", "", "opening balance, may be negative")
	cmd.Flags().StringVar(&req.Color, "color", "", "display color tag")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newAccountListCommand(rootOpts *RootOptions) *cobra.Command {
	var order string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts with their total balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithSession(rootOpts, cmd, func(ctx context.Context, s *session) error {
				o, err := parseOrder(order)
				if err != nil {
					return err
				}
				accounts, err := s.store.ListAccounts(ctx, o)
				if err != nil {
					return err
				}
				return s.out.Success(dto.NewAccountList(accounts), func(w io.Writer) {
					tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
					fmt.Fprintln(tw, "NAME\tTYPE\tBALANCE\tID")
					for _, a := range accounts {
						fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", a.Name, a.Type, s.fmt.Money(a.Balance), a.ID)
					}
					tw.Flush()
					fmt.Fprintf(w, "\nTotal balance: %s\n", s.fmt.Money(core.TotalBalance(accounts)))
				})
			})
		},
	}
	cmd.Flags().StringVar(&order, "order", "created", "sort order (created|balance)")
	return cmd
}

func parseOrder(s string) (storage.AccountOrder, error) {
	switch s {
	case "", "created":
		return storage.AccountsByCreated, nil
	case "balance":
		return storage.AccountsByBalance, nil
	}
	return 0, core.NewValidationError(core.KindAccount, fmt.Errorf("unknown order %q: want created or balance", s))
}

func newAccountUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	var name, typ, balance, color string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithSession(rootOpts, cmd, func(ctx context.Context, s *session) error {
				req := dto.UpdateAccountRequest{
					Name:    changed(cmd, "name", name),
					Type:    changed(cmd, "type", typ),
					Balance: changed(cmd, "balance", balance),
					Color:   changed(cmd, "color", color),
				}
				patch, err := req.ToPatch()
				if err != nil {
					return err
				}
				updated, err := s.store.UpdateAccount(ctx, args[0], patch)
				if err != nil {
					return err
				}
				return s.out.Success(dto.FromAccount(updated), func(w io.Writer) {
					fmt.Fprintf(w, "Updated account %s: balance %s\n", updated.Name, s.fmt.Money(updated.Balance))
				})
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&typ, "type", "", "new type")
	cmd.Flags().StringVar(&balance, "balance", "", "new balance")
	cmd.Flags().StringVar(&color, "color", "", "new color tag")
	return cmd
}

func newAccountDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an account; its transactions are kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithSession(rootOpts, cmd, func(ctx context.Context, s *session) error {
				return deleteRecord(ctx, s, core.KindAccount, args[0], s.store.DeleteAccount)
			})
		},
	}
}

// changed returns &value when the flag was set on the command line, so
// an explicit empty string still clears a field.
func changed(cmd *cobra.Command, flag, value string) *string {
	if !cmd.Flags().Changed(flag) {
		return nil
	}
	return &value
}

func deleteRecord(ctx context.Context, s *session, kind core.Kind, id string, del func(context.Context, string) error) error {
	if err := del(ctx, id); err != nil {
		return err
	}
	return s.out.Success(map[string]string{"kind": string(kind), "id": id, "status": "deleted"}, func(w io.Writer) {
		fmt.Fprintf(w, "Deleted %s %s\n", kind, id)
	})
}
