package ledger

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	maxNameLength = 200
	maxNoteLength = 2000
)

// Engine applies spending actions to ledger snapshots. It performs no I/O:
// every method returns a new ledger and leaves its input untouched.
type Engine struct {
	NewID func() string
	Now   func() time.Time
}

func NewEngine() *Engine {
	return &Engine{
		NewID: uuid.NewString,
		Now:   time.Now,
	}
}

// AddItem appends a new unpaid item.
func (e *Engine) AddItem(l Ledger, name string, amount decimal.Decimal) (Ledger, error) {
	name, err := validateItem(name, amount)
	if err != nil {
		return l, err
	}

	next := l.clone()
	next.Items = append(next.Items, Item{
		ID:         e.NewID(),
		Name:       name,
		Amount:     amount,
		AmountPaid: decimal.Zero,
	})

	return e.finish(next), nil
}

// EditItem renames and re-prices an item. The amount already paid is kept
// as is, even when it now exceeds the new amount.
func (e *Engine) EditItem(l Ledger, id, name string, amount decimal.Decimal) (Ledger, error) {
	name, err := validateItem(name, amount)
	if err != nil {
		return l, err
	}

	idx := l.indexOf(id)
	if idx < 0 {
		return l, itemNotFound(id)
	}

	next := l.clone()
	next.Items[idx].Name = name
	next.Items[idx].Amount = amount

	return e.finish(next), nil
}

// DeleteItem removes an item. Deleting an unknown id is not an error.
func (e *Engine) DeleteItem(l Ledger, id string) Ledger {
	idx := l.indexOf(id)
	if idx < 0 {
		return l
	}

	next := l.clone()
	next.Items = append(next.Items[:idx], next.Items[idx+1:]...)

	return e.finish(next)
}

func (e *Engine) MarkFullyPaid(l Ledger, id string) (Ledger, error) {
	idx := l.indexOf(id)
	if idx < 0 {
		return l, itemNotFound(id)
	}

	next := l.clone()
	next.Items[idx].AmountPaid = next.Items[idx].Amount
	next.Items[idx].Paid = true

	return e.finish(next), nil
}

// UndoPaid resets an item to unpaid, dropping any partial payment as well.
func (e *Engine) UndoPaid(l Ledger, id string) (Ledger, error) {
	idx := l.indexOf(id)
	if idx < 0 {
		return l, itemNotFound(id)
	}

	next := l.clone()
	next.Items[idx].AmountPaid = decimal.Zero
	next.Items[idx].Paid = false

	return e.finish(next), nil
}

// AllocateToItem records a payment against a single item.
func (e *Engine) AllocateToItem(l Ledger, id string, amount decimal.Decimal) (Ledger, error) {
	idx := l.indexOf(id)
	if idx < 0 {
		return l, itemNotFound(id)
	}

	item := l.Items[idx]
	remaining := item.Remaining()

	if !amount.IsPositive() || amount.GreaterThan(remaining) {
		return l, &AmountError{Requested: amount, Ceiling: remaining}
	}

	next := l.clone()
	next.Items[idx].AmountPaid = item.AmountPaid.Add(amount)

	next = e.finish(next)
	forcePartial(&next)

	return next, nil
}

// AllocateAcrossUnpaid spreads a lump payment over the unpaid items in
// ledger order: each item is settled in turn until the budget runs out,
// and the item where it runs out receives the rest as a partial payment.
func (e *Engine) AllocateAcrossUnpaid(l Ledger, amount decimal.Decimal) (Ledger, error) {
	unpaid := l.UnpaidTotal()

	if !amount.IsPositive() || amount.GreaterThan(unpaid) {
		return l, &AmountError{Requested: amount, Ceiling: unpaid}
	}

	next := l.clone()
	budget := amount

	for i := range next.Items {
		it := &next.Items[i]
		if it.Paid {
			continue
		}

		due := it.Amount.Sub(it.AmountPaid)

		switch {
		case !due.IsPositive():
			it.AmountPaid = it.Amount
			it.Paid = true
		case budget.GreaterThanOrEqual(due):
			it.AmountPaid = it.Amount
			it.Paid = true
			budget = budget.Sub(due)
		case budget.IsPositive():
			it.AmountPaid = it.AmountPaid.Add(budget)
			budget = decimal.Zero
		}
	}

	next = e.finish(next)
	forcePartial(&next)

	return next, nil
}

// MarkAllFullyPaid settles every item. The ledger is reported paid even when
// it has no items.
func (e *Engine) MarkAllFullyPaid(l Ledger) Ledger {
	next := l.clone()

	for i := range next.Items {
		next.Items[i].AmountPaid = next.Items[i].Amount
		next.Items[i].Paid = true
	}

	next = e.finish(next)
	next.Status = StatusPaid

	return next
}

// SetNote replaces the note of an item; an empty text clears it.
func (e *Engine) SetNote(l Ledger, id, text string) (Ledger, error) {
	if utf8.RuneCountInString(text) > maxNoteLength {
		return l, fmt.Errorf("%w: note longer than %d characters", ErrInvalidInput, maxNoteLength)
	}

	idx := l.indexOf(id)
	if idx < 0 {
		return l, itemNotFound(id)
	}

	next := l.clone()
	next.Items[idx].Note = text

	return e.finish(next), nil
}

// AddItems appends several items at once; nothing is added if any is invalid.
func (e *Engine) AddItems(l Ledger, items []NewItem) (Ledger, error) {
	next := l

	for i, ni := range items {
		var err error

		next, err = e.AddItem(next, ni.Name, ni.Amount)
		if err != nil {
			return l, fmt.Errorf("item %d: %w", i+1, err)
		}

		if ni.Note == "" {
			continue
		}

		id := next.Items[len(next.Items)-1].ID
		if next, err = e.SetNote(next, id, ni.Note); err != nil {
			return l, fmt.Errorf("item %d: %w", i+1, err)
		}
	}

	return next, nil
}

func (e *Engine) finish(l Ledger) Ledger {
	l.Key = l.Key.WithDefaultTab()
	recompute(&l)
	l.UpdatedAt = e.Now().UTC()

	return l
}

// forcePartial marks a ledger that just received a payment as partial unless
// the payment settled it.
func forcePartial(l *Ledger) {
	if l.Status != StatusPaid {
		l.Status = StatusPartial
	}
}

func validateItem(name string, amount decimal.Decimal) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	if utf8.RuneCountInString(name) > maxNameLength {
		return "", fmt.Errorf("%w: name longer than %d characters", ErrInvalidInput, maxNameLength)
	}

	if amount.IsNegative() {
		return "", fmt.Errorf("%w: amount must not be negative", ErrInvalidInput)
	}

	return name, nil
}
