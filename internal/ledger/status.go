package ledger

import "github.com/shopspring/decimal"

// DeriveStatus computes the payment status of a list of items.
//
// An item that has received some payment without being settled makes the
// list partial. Otherwise a non-empty list whose items are all settled is
// paid, and anything else is unpaid.
func DeriveStatus(items []Item) Status {
	for _, it := range items {
		if it.AmountPaid.IsPositive() && !it.FullyPaid() {
			return StatusPartial
		}
	}

	if len(items) == 0 {
		return StatusUnpaid
	}

	for _, it := range items {
		if !it.FullyPaid() {
			return StatusUnpaid
		}
	}

	return StatusPaid
}

// recompute re-derives item flags and ledger aggregates in place.
func recompute(l *Ledger) {
	total := decimal.Zero
	paidTotal := decimal.Zero

	for i := range l.Items {
		it := &l.Items[i]
		it.Paid = it.FullyPaid()

		total = total.Add(it.Amount)
		if it.Paid {
			paidTotal = paidTotal.Add(it.Amount)
		}
	}

	l.Total = total
	l.PaidTotal = paidTotal
	l.Status = DeriveStatus(l.Items)

	// Settled items next to untouched ones still count as a partly paid month.
	if l.Status == StatusUnpaid && paidTotal.IsPositive() && paidTotal.LessThan(total) {
		l.Status = StatusPartial
	}
}

// Normalize re-derives everything that is computed from the items. Stored
// snapshots go through it so a persisted status never overrides the items.
func Normalize(l Ledger) Ledger {
	l = l.clone()
	l.Key = l.Key.WithDefaultTab()

	recompute(&l)

	return l
}
