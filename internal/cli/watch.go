package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/spendly/internal/events"
	"github.com/MrJamesThe3rd/spendly/internal/ledger"
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringSlice("type", nil, "Event types to follow, e.g. ledger.updated (default all)")
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print ledger events published to AMQP_URL as JSON lines",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if cfg.AMQP.URL == "" {
			return errors.New("AMQP_URL is not set")
		}

		names, _ := cmd.Flags().GetStringSlice("type")

		types := make([]ledger.EventType, 0, len(names))
		for _, n := range names {
			types = append(types, ledger.EventType(n))
		}

		enc := json.NewEncoder(cmd.OutOrStdout())

		err := events.Subscribe(cmd.Context(), cfg.AMQP.URL, cfg.AMQP.Exchange, types, func(e ledger.Event) error {
			if err := enc.Encode(e); err != nil {
				return fmt.Errorf("write event: %w", err)
			}

			return nil
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}

		return err
	},
}
