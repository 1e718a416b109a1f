// Package calendar summarises a user's year month by month.
package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/spendly/internal/ledger"
)

//go:generate mockgen -source=calendar.go -destination=source_mock.go -package=calendar
type Source interface {
	ListLedgers(ctx context.Context, userID string, year int, tab string) ([]*ledger.Ledger, error)
	ListTabs(ctx context.Context, userID string) ([]ledger.Tab, error)
}

type MonthSummary struct {
	Month       int
	Exists      bool
	Status      ledger.Status
	Total       decimal.Decimal
	PaidTotal   decimal.Decimal
	Outstanding decimal.Decimal
	Items       int
}

type Year struct {
	Year int
	// Tab is empty when the summary covers every tab.
	Tab         string
	Months      [12]MonthSummary
	Total       decimal.Decimal
	PaidTotal   decimal.Decimal
	Outstanding decimal.Decimal
}

type Service struct {
	source Source
}

func NewService(source Source) *Service {
	return &Service{source: source}
}

// Year builds the twelve month summaries of year. With an empty tab the
// months of every tab are merged and their status derived from all items.
func (s *Service) Year(ctx context.Context, userID string, year int, tab string) (*Year, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: empty user id", ledger.ErrInvalidInput)
	}

	if err := (ledger.Key{UserID: userID, Year: year, Month: 1}).Validate(); err != nil {
		return nil, err
	}

	var (
		ledgers []*ledger.Ledger
		err     error
	)

	if tab != "" {
		ledgers, err = s.source.ListLedgers(ctx, userID, year, tab)
	} else {
		ledgers, err = s.allTabs(ctx, userID, year)
	}

	if err != nil {
		return nil, err
	}

	return summarise(userID, year, tab, ledgers), nil
}

func (s *Service) allTabs(ctx context.Context, userID string, year int) ([]*ledger.Ledger, error) {
	tabs, err := s.source.ListTabs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing tabs: %w", err)
	}

	keys := []string{ledger.TabMain}
	for _, t := range tabs {
		if t.Key != ledger.TabMain {
			keys = append(keys, t.Key)
		}
	}

	results := make([][]*ledger.Ledger, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for i, key := range keys {
		g.Go(func() error {
			ls, err := s.source.ListLedgers(gctx, userID, year, key)
			if err != nil {
				return fmt.Errorf("listing ledgers of tab %q: %w", key, err)
			}

			results[i] = ls

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []*ledger.Ledger
	for _, ls := range results {
		all = append(all, ls...)
	}

	return all, nil
}

func summarise(userID string, year int, tab string, ledgers []*ledger.Ledger) *Year {
	var byMonth [12][]ledger.Item

	var exists [12]bool

	for _, l := range ledgers {
		if l == nil || l.Key.Year != year || l.Key.Month < 1 || l.Key.Month > 12 {
			continue
		}

		idx := l.Key.Month - 1
		exists[idx] = true
		byMonth[idx] = append(byMonth[idx], l.Items...)
	}

	out := &Year{
		Year:        year,
		Tab:         tab,
		Total:       decimal.Zero,
		PaidTotal:   decimal.Zero,
		Outstanding: decimal.Zero,
	}

	for i := range out.Months {
		merged := ledger.New(ledger.Key{UserID: userID, Year: year, Month: i + 1, Tab: tab})
		merged.Items = byMonth[i]
		merged = ledger.Normalize(merged)

		m := MonthSummary{
			Month:       i + 1,
			Exists:      exists[i],
			Status:      merged.Status,
			Total:       merged.Total,
			PaidTotal:   merged.PaidTotal,
			Outstanding: merged.Outstanding(),
			Items:       len(merged.Items),
		}

		out.Months[i] = m
		out.Total = out.Total.Add(m.Total)
		out.PaidTotal = out.PaidTotal.Add(m.PaidTotal)
		out.Outstanding = out.Outstanding.Add(m.Outstanding)
	}

	return out
}

// YearOptions lists the years offered by year pickers: five back, two ahead.
func YearOptions(now time.Time) []int {
	current := now.Year()

	years := make([]int, 0, 8)
	for y := current - 5; y <= current+2; y++ {
		years = append(years, y)
	}

	return years
}
