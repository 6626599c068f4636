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

func NewSubscriptionCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sub",
		Aliases: []string{"subscription", "subscriptions"},
		Short:   "Manage recurring subscriptions",
	}
	cmd.AddCommand(newSubscriptionAddCommand(rootOpts))
	cmd.AddCommand(newSubscriptionListCommand(rootOpts))
	cmd.AddCommand(newSubscriptionUpdateCommand(rootOpts))
	cmd.AddCommand(newSubscriptionDeleteCommand(rootOpts))
	return cmd
}

func newSubscriptionAddCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		req      dto.CreateSubscriptionRequest
		inactive bool
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a subscription",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithSession(rootOpts, cmd, func(ctx context.Context, s *session) error {
				active := !inactive
				req.IsActive = &active
				sub, err := req.ToSubscription()
				if err != nil {
					return err
				}
				created, err := s.store.CreateSubscription(ctx, sub)
				if err != nil {
					return err
				}
				return s.out.Success(dto.FromSubscription(created), func(w io.Writer) {
					fmt.Fprintf(w, "Added %s subscription %s at %s, %s per month (%s)\n",
						created.BillingCycle, created.Name, s.fmt.Money(created.Amount),
						s.fmt.Money(created.MonthlyEquivalent()), created.ID)
				})
			})
		},
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "subscription name")
	cmd.Flags().StringVar(&req.Amount, "amount", "", "amount per billing cycle")
	cmd.Flags().StringVar(&req.BillingCycle, "cycle", "monthly", "billing cycle (weekly|monthly|annual)")
	cmd.Flags().StringVar(&req.NextPaymentDate, "next", "", "next payment date, YYYY-MM-DD")
	cmd.Flags().BoolVar(&inactive, "inactive", false, "add as paused")
	cmd.Flags().StringVar(&req.Category, "category", "", "category")
	cmd.Flags().StringVar(&req.AccountName, "account", "", "account charged when the payment is processed")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("next")
	return cmd
}

func newSubscriptionListCommand(rootOpts *RootOptions) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List subscriptions by next payment date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithSession(rootOpts, cmd, func(ctx context.Context, s *session) error {
				subs, err := s.store.ListSubscriptions(ctx, storage.SubscriptionFilter{IncludeInactive: all})
				if err != nil {
					return err
				}
				return s.out.Success(dto.NewSubscriptionList(subs), func(w io.Writer) {
					tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
					fmt.Fprintln(tw, "NAME\tAMOUNT\tCYCLE\tNEXT\tACTIVE\tID")
					for _, sub := range subs {
						fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t%s\n",
							sub.Name, s.fmt.Money(sub.Amount), sub.BillingCycle,
							sub.NextPaymentDate.Format(dto.DateLayout), sub.IsActive, sub.ID)
					}
					tw.Flush()
					monthly, yearly := core.SubscriptionTotals(subs)
					fmt.Fprintf(w, "\nMonthly %s, yearly %s\n", s.fmt.Money(monthly), s.fmt.Money(yearly))
				})
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include paused subscriptions")
	return cmd
}

func newSubscriptionUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	var name, amount, cycle, next, category, account string
	var active bool
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a subscription",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithSession(rootOpts, cmd, func(ctx context.Context, s *session) error {
				req := dto.UpdateSubscriptionRequest{
					Name:            changed(cmd, "name", name),
					Amount:          changed(cmd, "amount", amount),
					BillingCycle:    changed(cmd, "cycle", cycle),
					NextPaymentDate: changed(cmd, "next", next),
					Category:        changed(cmd, "category", category),
					AccountName:     changed(cmd, "account", account),
				}
				if cmd.Flags().Changed("active") {
					req.IsActive = &active
				}
				patch, err := req.ToPatch()
				if err != nil {
					return err
				}
				updated, err := s.store.UpdateSubscription(ctx, args[0], patch)
				if err != nil {
					return err
				}
				return s.out.Success(dto.FromSubscription(updated), func(w io.Writer) {
					fmt.Fprintf(w, "Updated subscription %s: %s %s, next %s\n", updated.Name,
						s.fmt.Money(updated.Amount), updated.BillingCycle, updated.NextPaymentDate.Format(dto.DateLayout))
				})
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&amount, "amount", "", "new amount per cycle")
	cmd.Flags().StringVar(&cycle, "cycle", "", "new billing cycle")
	cmd.Flags().StringVar(&next, "next", "", "new next payment date, YYYY-MM-DD")
	cmd.Flags().BoolVar(&active, "active", true, "resume (--active) or pause (--active=false)")
	cmd.Flags().StringVar(&category, "category", "", "new category")
	cmd.Flags().StringVar(&account, "account", "", "new account name")
	return cmd
}

func newSubscriptionDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a subscription",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithSession(rootOpts, cmd, func(ctx context.Context, s *session) error {
				return deleteRecord(ctx, s, core.KindSubscription, args[0], s.store.DeleteSubscription)
			})
		},
	}
}
