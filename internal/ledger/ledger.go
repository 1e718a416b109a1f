package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Status summarises how much of a ledger has been paid.
type Status string

const (
	StatusUnpaid  Status = "unpaid"
	StatusPartial Status = "partial"
	StatusPaid    Status = "paid"
)

// TabMain is the key of the default tab every user has.
const TabMain = "main"

// Key identifies one ledger document.
type Key struct {
	UserID string
	Year   int
	Month  int
	Tab    string
}

// DocumentID returns the year-month part of the key, e.g. "2025-03".
func (k Key) DocumentID() string {
	return fmt.Sprintf("%04d-%02d", k.Year, k.Month)
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s", k.UserID, k.tab(), k.DocumentID())
}

// Validate checks that the key addresses a real calendar month.
func (k Key) Validate() error {
	if k.UserID == "" {
		return fmt.Errorf("%w: empty user id", ErrInvalidInput)
	}

	if k.Year < 1970 || k.Year > 9999 {
		return fmt.Errorf("%w: year %d out of range", ErrInvalidInput, k.Year)
	}

	if k.Month < 1 || k.Month > 12 {
		return fmt.Errorf("%w: month %d out of range", ErrInvalidInput, k.Month)
	}

	return nil
}

// WithDefaultTab returns the key with an empty tab replaced by TabMain.
func (k Key) WithDefaultTab() Key {
	k.Tab = k.tab()
	return k
}

func (k Key) tab() string {
	if k.Tab == "" {
		return TabMain
	}

	return k.Tab
}

// Item is a single expense line of a ledger.
type Item struct {
	ID         string
	Name       string
	Amount     decimal.Decimal
	AmountPaid decimal.Decimal
	Paid       bool
	Note       string
}

// FullyPaid reports whether nothing is left to pay on the item.
// Zero-amount items have no payment to derive from, so their flag decides.
func (i Item) FullyPaid() bool {
	if !i.Amount.IsPositive() {
		return i.Paid
	}

	return i.AmountPaid.GreaterThanOrEqual(i.Amount)
}

// Remaining is the amount still due, never negative.
func (i Item) Remaining() decimal.Decimal {
	left := i.Amount.Sub(i.AmountPaid)
	if left.IsNegative() {
		return decimal.Zero
	}

	return left
}

// Overpaid reports an item whose amount was edited below what was already paid.
func (i Item) Overpaid() bool {
	return i.AmountPaid.GreaterThan(i.Amount)
}

// Ledger is the spending list of one user for one month and tab.
type Ledger struct {
	Key       Key
	Items     []Item
	Total     decimal.Decimal
	PaidTotal decimal.Decimal
	Status    Status

	// Version is the stored revision the ledger was read at; 0 means never stored.
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// New returns an empty ledger for key.
func New(key Key) Ledger {
	return Ledger{
		Key:       key.WithDefaultTab(),
		Items:     []Item{},
		Total:     decimal.Zero,
		PaidTotal: decimal.Zero,
		Status:    StatusUnpaid,
	}
}

// Stored reports whether the ledger has been persisted at least once.
func (l Ledger) Stored() bool {
	return l.Version > 0
}

// Item returns the item with the given id.
func (l Ledger) Item(id string) (Item, bool) {
	idx := l.indexOf(id)
	if idx < 0 {
		return Item{}, false
	}

	return l.Items[idx], true
}

// Outstanding is what is left to pay across all items.
func (l Ledger) Outstanding() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range l.Items {
		sum = sum.Add(it.Remaining())
	}

	return sum
}

// UnpaidTotal is the sum still due over items not flagged paid.
func (l Ledger) UnpaidTotal() decimal.Decimal {
	sum := decimal.Zero

	for _, it := range l.Items {
		if it.Paid {
			continue
		}

		sum = sum.Add(it.Amount.Sub(it.AmountPaid))
	}

	return sum
}

func (l Ledger) indexOf(id string) int {
	for i, it := range l.Items {
		if it.ID == id {
			return i
		}
	}

	return -1
}

// clone copies the ledger so callers never share the item slice.
func (l Ledger) clone() Ledger {
	items := make([]Item, len(l.Items))
	copy(items, l.Items)
	l.Items = items

	return l
}

// Tab is a named partition of a user's ledgers.
type Tab struct {
	Key      string
	Label    string
	Position int
}

// NewItem is the input for adding an item, e.g. from an import.
type NewItem struct {
	Name   string
	Amount decimal.Decimal
	Note   string
}
