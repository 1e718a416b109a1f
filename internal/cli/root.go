// Package cli implements spendctl, the command line for operating a
// Spendly deployment: schema migrations, tokens, imports and exports.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/spendly/internal/app"
	"github.com/MrJamesThe3rd/spendly/internal/config"
)

// cfg is loaded once before any subcommand runs.
var cfg *config.Config

// openApp is replaced in tests to run commands against an in-memory store.
var openApp = app.Open

var rootCmd = &cobra.Command{
	Use:           "spendctl",
	Short:         "Operate a Spendly installation",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		_ = godotenv.Load()

		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		cfg = loaded
		slog.SetDefault(cfg.Logger(cmd.ErrOrStderr()))

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("user", "", "User to act as (defaults to AUTH_LOCAL_USER)")
}

// Execute runs the command tree with the process arguments.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// run executes args against the command tree, writing output to out.
func run(ctx context.Context, out io.Writer, args ...string) error {
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetArgs(args)

	return rootCmd.ExecuteContext(ctx)
}

func userFlag(cmd *cobra.Command) string {
	user, _ := cmd.Flags().GetString("user")
	if user == "" {
		return cfg.Auth.LocalUser
	}

	return user
}

// withApp opens the configured backends for the duration of fn.
func withApp(cmd *cobra.Command, fn func(a *app.App) error) error {
	a, err := openApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(a)
}
