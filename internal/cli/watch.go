package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"wallet/internal/amqp"
)

func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print store changes published to the AMQP change feed",
		Long: `Consume the change feed configured by WALLET_AMQP_URL and print one
line per change until interrupted. Requires a reachable broker.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(rootOpts, cmd)
		},
	}
}

func runWatch(rootOpts *RootOptions, cmd *cobra.Command) error {
	out := newFormatter(rootOpts, cmd)
	cfg, err := LoadAndValidateConfig(rootOpts)
	if err != nil {
		_ = out.Error(ErrCodeConfig, err.Error())
		return err
	}
	if !cfg.AMQPEnabled() {
		return out.Fail(NewExitError(ExitCommandError, "change feed disabled: set WALLET_AMQP_URL"))
	}
	logger := SetupLogger(cfg, cmd.ErrOrStderr(), rootOpts.Verbose, true)

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return out.Fail(WrapExitError(ExitCommandError, "connect to broker", err))
	}
	defer client.Close()

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := GracefulShutdown(parent, logger)
	defer stop()

	out.VerboseLog("Watching queue %s on exchange %s", cfg.AMQPQueue, cfg.AMQPExchange)
	err = client.ConsumeStoreChanged(ctx, func(msg *amqp.StoreChangedMessage) error {
		return printChange(out, msg)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return out.Fail(WrapExitError(ExitCommandError, "consume change feed", err))
	}
	return nil
}

// printChange writes one message per line; JSON mode emits the raw message
// so the output can be piped.
func printChange(out *OutputFormatter, msg *amqp.StoreChangedMessage) error {
	if out.Format == "json" {
		return json.NewEncoder(out.Writer).Encode(msg)
	}
	_, err := fmt.Fprintf(out.Writer, "%s  %-12s %-8s %s\n",
		msg.Timestamp.Local().Format("2006-01-02 15:04:05"), msg.Kind, msg.Op, msg.ID)
	return err
}
