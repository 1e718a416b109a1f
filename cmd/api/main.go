package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/spendly/internal/app"
	"github.com/MrJamesThe3rd/spendly/internal/auth"
	"github.com/MrJamesThe3rd/spendly/internal/config"
	spendlyHttp "github.com/MrJamesThe3rd/spendly/internal/http"
	calendarHandler "github.com/MrJamesThe3rd/spendly/internal/http/calendar"
	exportHandler "github.com/MrJamesThe3rd/spendly/internal/http/export"
	ledgerHandler "github.com/MrJamesThe3rd/spendly/internal/http/ledger"
	tabHandler "github.com/MrJamesThe3rd/spendly/internal/http/tab"
)

func main() {
	if err := run(); err != nil {
		slog.Error("api stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	slog.SetDefault(cfg.Logger(os.Stdout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	issuer, err := auth.NewIssuer(cfg.Auth.Secret, cfg.Auth.TTL)
	if err != nil {
		return fmt.Errorf("create token issuer: %w", err)
	}

	a, err := app.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	var (
		ledgerH   = ledgerHandler.NewHandler(a.Ledgers, a.Importer, cfg.Server.MaxUploadBytes)
		tabH      = tabHandler.NewHandler(a.Ledgers)
		calendarH = calendarHandler.NewHandler(a.Calendar)
		exportH   = exportHandler.NewHandler(a.Exporter)
	)

	router := spendlyHttp.New(spendlyHttp.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Timeout:        cfg.Server.Timeout,
		Verifier:       issuer,
	}, ledgerH, tabH, calendarH, exportH)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.Timeout,
	}

	errCh := make(chan error, 1)

	go func() {
		slog.Info("starting server", "addr", srv.Addr, "store", cfg.Ledger.Store)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}

		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}
