package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/spendly/internal/app"
	"github.com/MrJamesThe3rd/spendly/internal/ledger"
)

func init() {
	rootCmd.AddCommand(showCmd)
	addMonthFlags(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the items of one month",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		key, err := monthKey(cmd)
		if err != nil {
			return err
		}

		return withApp(cmd, func(a *app.App) error {
			l, err := a.Ledgers.Get(cmd.Context(), key)
			if err != nil {
				return err
			}

			return printLedger(cmd.OutOrStdout(), l)
		})
	},
}

func addMonthFlags(cmd *cobra.Command) {
	now := time.Now()

	cmd.Flags().Int("year", now.Year(), "Year of the ledger")
	cmd.Flags().Int("month", int(now.Month()), "Month of the ledger (1-12)")
	cmd.Flags().String("tab", ledger.TabMain, "Tab key")
}

func monthKey(cmd *cobra.Command) (ledger.Key, error) {
	year, _ := cmd.Flags().GetInt("year")
	month, _ := cmd.Flags().GetInt("month")
	tab, _ := cmd.Flags().GetString("tab")

	key := ledger.Key{UserID: userFlag(cmd), Year: year, Month: month, Tab: tab}.WithDefaultTab()
	if err := key.Validate(); err != nil {
		return ledger.Key{}, err
	}

	return key, nil
}

func printLedger(w io.Writer, l *ledger.Ledger) error {
	fmt.Fprintf(w, "%s (%s) %s\n\n", l.Key.DocumentID(), l.Key.Tab, l.Status)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tAMOUNT\tPAID\tREMAINING\tNOTE")

	for _, it := range l.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			it.Name,
			it.Amount.StringFixed(2),
			it.AmountPaid.StringFixed(2),
			it.Remaining().StringFixed(2),
			it.Note,
		)
	}

	fmt.Fprintf(tw, "TOTAL\t%s\t%s\t%s\t\n",
		l.Total.StringFixed(2), l.PaidTotal.StringFixed(2), l.Outstanding().StringFixed(2))

	return tw.Flush()
}
