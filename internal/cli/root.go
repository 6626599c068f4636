package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"wallet/internal/backend"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	DBPath  string
	Backend string
	Lang    string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the wallet CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "wallet",
		Short: "Personal finance tracker",
		Long: `Track accounts, income and expense transactions, and recurring
subscriptions in a local SQLite database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "database path (overrides WALLET_DB_PATH)")
	cmd.PersistentFlags().StringVar(&opts.Backend, "backend", "", "storage backend: "+strings.Join(backend.TypeStrings(), "|")+" (overrides WALLET_BACKEND)")
	cmd.PersistentFlags().StringVar(&opts.Lang, "lang", "en", "language tag for number formatting")

	cmd.AddCommand(NewAccountCommand(opts))
	cmd.AddCommand(NewTransactionCommand(opts))
	cmd.AddCommand(NewSubscriptionCommand(opts))
	cmd.AddCommand(NewSummaryCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewProcessDueCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))

	return cmd
}
