// Package app wires the configured store, event publisher and services that
// every binary shares.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MrJamesThe3rd/spendly/internal/calendar"
	"github.com/MrJamesThe3rd/spendly/internal/config"
	"github.com/MrJamesThe3rd/spendly/internal/database"
	"github.com/MrJamesThe3rd/spendly/internal/events"
	"github.com/MrJamesThe3rd/spendly/internal/export"
	"github.com/MrJamesThe3rd/spendly/internal/importer"
	"github.com/MrJamesThe3rd/spendly/internal/ledger"
	"github.com/MrJamesThe3rd/spendly/internal/ledger/store"
	"github.com/MrJamesThe3rd/spendly/internal/ledger/store/memory"
)

type App struct {
	Ledgers  *ledger.Service
	Calendar *calendar.Service
	Importer *importer.Service
	Exporter *export.Service

	// DB is nil when ledgers are kept in memory.
	DB *sql.DB

	closers []func() error
}

// Open connects the backends named by cfg and builds the services on top.
func Open(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{}

	repo, err := a.openStore(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	publisher, err := a.openPublisher(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Ledgers = ledger.NewService(repo,
		ledger.WithPublisher(publisher),
		ledger.WithConflictRetries(cfg.Ledger.MaxConflictRetries),
	)
	a.Calendar = calendar.NewService(repo)
	a.Importer = importer.NewService()
	a.Exporter = export.NewService(a.Calendar, repo)

	return a, nil
}

func (a *App) openStore(ctx context.Context, cfg *config.Config) (ledger.Repository, error) {
	if cfg.Ledger.Store == config.StoreMemory {
		slog.Warn("using in-memory ledger store, data is lost on exit")
		return memory.New(), nil
	}

	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	a.DB = db
	a.closers = append(a.closers, db.Close)

	if cfg.DB.Migrate {
		if err := database.Migrate(db); err != nil {
			return nil, fmt.Errorf("migrate database: %w", err)
		}
	}

	return store.New(db), nil
}

func (a *App) openPublisher(cfg *config.Config) (ledger.Publisher, error) {
	if cfg.AMQP.URL == "" {
		return ledger.NopPublisher{}, nil
	}

	p, err := events.Dial(cfg.AMQP.URL, cfg.AMQP.Exchange)
	if err != nil {
		return nil, err
	}

	a.closers = append(a.closers, p.Close)
	slog.Info("publishing ledger events", "exchange", cfg.AMQP.Exchange)

	return p, nil
}

// Close releases the backends in reverse order of opening.
func (a *App) Close() error {
	var errs []error

	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}

	a.closers = nil

	return errors.Join(errs...)
}
