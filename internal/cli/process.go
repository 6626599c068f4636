package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"wallet/internal/core"
	"wallet/internal/dto"
	"wallet/internal/services"
)

type chargeOutput struct {
	SubscriptionID string `json:"subscription_id"`
	Name           string `json:"name"`
	Charges        int    `json:"charges"`
	NextPayment    string `json:"next_payment_date"`
}

func NewProcessDueCommand(rootOpts *RootOptions) *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "process-due",
		Short: "Charge due subscriptions as expense transactions",
		Long: `Charge every active subscription whose next payment date has arrived.
Each missed cycle becomes one expense dated on its payment date, and the
next payment date moves past today.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithSession(rootOpts, cmd, func(ctx context.Context, s *session) error {
				now := time.Now()
				if at != "" {
					d, err := dto.ParseDate(at)
					if err != nil {
						return core.NewValidationError(core.KindSubscription, err)
					}
					now = d
				}
				results, err := services.NewSubscriptionProcessor(s.store, nil, s.logger).ProcessDue(ctx, now)
				if err != nil {
					return err
				}

				out := make([]chargeOutput, len(results))
				for i, r := range results {
					out[i] = chargeOutput{r.SubscriptionID, r.Name, r.Charges, r.NextPayment.Format(dto.DateLayout)}
				}
				return s.out.Success(out, func(w io.Writer) {
					if len(out) == 0 {
						fmt.Fprintln(w, "Nothing due")
						return
					}
					for _, c := range out {
						fmt.Fprintf(w, "%s: %d charge(s), next payment %s\n", c.Name, c.Charges, c.NextPayment)
					}
				})
			})
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "process as of this date, YYYY-MM-DD (default now)")
	return cmd
}
