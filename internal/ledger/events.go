package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type EventType string

const (
	EventLedgerUpdated EventType = "ledger.updated"
	EventItemChanged   EventType = "ledger.item_changed"
	EventTabSaved      EventType = "tab.saved"
	EventTabDeleted    EventType = "tab.deleted"
)

// Event notifies other systems that a user's data changed.
type Event struct {
	Type       EventType       `json:"type"`
	UserID     string          `json:"user_id"`
	Year       int             `json:"year,omitempty"`
	Month      int             `json:"month,omitempty"`
	Tab        string          `json:"tab"`
	ItemID     string          `json:"item_id,omitempty"`
	Version    int64           `json:"version,omitempty"`
	Status     Status          `json:"status,omitempty"`
	Total      decimal.Decimal `json:"total"`
	PaidTotal  decimal.Decimal `json:"paid_total"`
	OccurredAt time.Time       `json:"occurred_at"`
}

//go:generate mockgen -source=events.go -destination=publisher_mock.go -package=ledger
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

func ledgerEvent(t EventType, l Ledger, itemID string, at time.Time) Event {
	return Event{
		Type:       t,
		UserID:     l.Key.UserID,
		Year:       l.Key.Year,
		Month:      l.Key.Month,
		Tab:        l.Key.Tab,
		ItemID:     itemID,
		Version:    l.Version,
		Status:     l.Status,
		Total:      l.Total,
		PaidTotal:  l.PaidTotal,
		OccurredAt: at.UTC(),
	}
}
