package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"wallet/internal/dto"
	"wallet/internal/storage"
	"wallet/internal/viewmodel"
)

func NewSummaryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show balances, this month's activity and subscription costs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithSession(rootOpts, cmd, runSummary)
		},
	}
}

func runSummary(ctx context.Context, s *session) error {
	utcNow := func() time.Time { return time.Now().UTC() }
	vmOpts := []viewmodel.Option{viewmodel.WithLogger(s.logger), viewmodel.WithClock(utcNow)}
	home := viewmodel.NewHomeViewModel(s.store, vmOpts...)
	defer home.Close()
	accounts := viewmodel.NewAccountViewModel(s.store, storage.AccountsByBalance, vmOpts...)
	defer accounts.Close()
	subs := viewmodel.NewSubscriptionViewModel(s.store, vmOpts...)
	defer subs.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return home.Refresh(gctx) })
	g.Go(func() error { return accounts.Refresh(gctx) })
	g.Go(func() error { return subs.Refresh(gctx) })
	if err := g.Wait(); err != nil {
		return err
	}

	hs, as, ss := home.State(), accounts.State(), subs.State()
	return s.out.Success(dto.NewSummary(hs, as, ss), func(w io.Writer) {
		fmt.Fprintf(w, "Total balance:  %s across %s accounts\n", s.fmt.Money(hs.TotalBalance), s.fmt.Count(hs.AccountCount))
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, tb := range as.BalanceByType {
			fmt.Fprintf(tw, "  %s\t%s\n", tb.Type, s.fmt.Money(tb.Balance))
		}
		tw.Flush()
		fmt.Fprintf(w, "This month:     %s transactions\n", s.fmt.Count(hs.TransactionsThisMonth))
		fmt.Fprintf(w, "Subscriptions:  %s monthly, %s yearly\n", s.fmt.Money(ss.MonthlyTotal), s.fmt.Money(ss.YearlyTotal))
		if len(hs.Recent) > 0 {
			fmt.Fprintln(w, "\nRecent:")
			tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			for _, t := range hs.Recent {
				fmt.Fprintf(tw, "  %s\t%s\t%s\n", t.Date.Format(dto.DateLayout), t.Title, s.fmt.Money(t.Signed()))
			}
			tw.Flush()
		}
	})
}
