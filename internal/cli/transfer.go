package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/spendly/internal/app"
	"github.com/MrJamesThe3rd/spendly/internal/export"
	"github.com/MrJamesThe3rd/spendly/internal/importer"
)

func init() {
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)

	addMonthFlags(importCmd)
	importCmd.Flags().Bool("dry-run", false, "Parse and print the items without saving them")

	exportCmd.Flags().Int("year", time.Now().Year(), "Year to export")
	exportCmd.Flags().String("tab", "", "Tab key; empty exports every tab")
	exportCmd.Flags().StringP("output", "o", ".", "Output directory")
}

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Add the items of a CSV or XLSX file to a month",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := monthKey(cmd)
		if err != nil {
			return err
		}

		dryRun, _ := cmd.Flags().GetBool("dry-run")

		format, err := importer.FormatFromFilename(args[0])
		if err != nil {
			return err
		}

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open %s: %w", args[0], err)
		}
		defer f.Close()

		return withApp(cmd, func(a *app.App) error {
			items, err := a.Importer.Import(format, f)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if dryRun {
				for _, it := range items {
					fmt.Fprintf(out, "%s\t%s\t%s\n", it.Name, it.Amount.StringFixed(2), it.Note)
				}

				fmt.Fprintf(out, "%d items parsed, nothing saved.\n", len(items))

				return nil
			}

			l, err := a.Ledgers.ImportItems(cmd.Context(), key, items)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Imported %d items into %s (%s).\n\n", len(items), key.DocumentID(), key.Tab)

			return printLedger(out, l)
		})
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a yearly XLSX workbook",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		year, _ := cmd.Flags().GetInt("year")
		tab, _ := cmd.Flags().GetString("tab")
		dir, _ := cmd.Flags().GetString("output")

		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}

		path := filepath.Join(dir, export.Filename(year, tab))

		return withApp(cmd, func(a *app.App) error {
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("create %s: %w", path, err)
			}
			defer f.Close()

			if err := a.Exporter.Write(cmd.Context(), f, userFlag(cmd), year, tab); err != nil {
				_ = os.Remove(path)
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)

			return nil
		})
	},
}
