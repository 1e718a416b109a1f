package view

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/spendly/internal/ledger"
)

const dbTimeout = 5 * time.Second

var (
	colorPaid    = lipgloss.Color("46")
	colorPartial = lipgloss.Color("214")
	colorUnpaid  = lipgloss.Color("196")
	colorEmpty   = lipgloss.Color("240")
)

// FormatAmount renders a money amount with two decimals.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatMonth renders e.g. "March 2025".
func FormatMonth(year, month int) string {
	return fmt.Sprintf("%s %d", time.Month(month), year)
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}

func statusColor(s ledger.Status) lipgloss.Color {
	switch s {
	case ledger.StatusPaid:
		return colorPaid
	case ledger.StatusPartial:
		return colorPartial
	default:
		return colorUnpaid
	}
}

func statusStyle(s ledger.Status) string {
	return lipgloss.NewStyle().Foreground(statusColor(s)).Render(string(s))
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

func errorStyle(s string) string {
	return lipgloss.NewStyle().Foreground(colorUnpaid).Render(s)
}

// describeError turns service errors into text fit for a status line.
func describeError(err error) string {
	var amountErr *ledger.AmountError
	if errors.As(err, &amountErr) {
		return fmt.Sprintf("Amount must be more than 0 and at most %s", FormatAmount(amountErr.Ceiling))
	}

	return fmt.Sprintf("Error: %v", err)
}

// validateAmount is used by form inputs that take money.
func validateAmount(s string) error {
	_, err := ledger.ParseAmount(s)
	return err
}

func tabLabel(tabs []ledger.Tab, key string) string {
	for _, t := range tabs {
		if t.Key == key {
			return t.Label
		}
	}

	return key
}
