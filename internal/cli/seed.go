package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"wallet/internal/services"
)

func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert sample accounts and transactions into an empty store",
		Long: `Insert the sample accounts and transactions when the store has no
accounts and no transactions. Running it again is a no-op.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithSession(rootOpts, cmd, func(ctx context.Context, s *session) error {
				seeded, err := services.NewSeeder(s.store, s.logger).Seed(ctx)
				if err != nil {
					return err
				}
				return s.out.Success(map[string]bool{"seeded": seeded}, func(w io.Writer) {
					if seeded {
						fmt.Fprintln(w, "Inserted sample data")
						return
					}
					fmt.Fprintln(w, "Store already has data, nothing inserted")
				})
			})
		},
	}
}
