package ledger

import "github.com/shopspring/decimal"

// ItemPatch describes a change to a single item. Nil fields are left alone;
// Delete removes the item and ignores every other field.
type ItemPatch struct {
	Name   *string
	Amount *decimal.Decimal
	Paid   *bool
	Note   *string
	Delete bool
}

// IsEmpty reports whether the patch would change nothing.
func (p ItemPatch) IsEmpty() bool {
	return !p.Delete && p.Name == nil && p.Amount == nil && p.Paid == nil && p.Note == nil
}

// ApplyPatch applies p to the item with the given id using the regular
// engine operations, so a patch is validated exactly like the action it
// stands for.
func (e *Engine) ApplyPatch(l Ledger, id string, p ItemPatch) (Ledger, error) {
	if p.Delete {
		return e.DeleteItem(l, id), nil
	}

	item, ok := l.Item(id)
	if !ok {
		return l, itemNotFound(id)
	}

	next := l

	var err error

	if p.Name != nil || p.Amount != nil {
		name, amount := item.Name, item.Amount
		if p.Name != nil {
			name = *p.Name
		}

		if p.Amount != nil {
			amount = *p.Amount
		}

		if next, err = e.EditItem(next, id, name, amount); err != nil {
			return l, err
		}
	}

	if p.Paid != nil {
		if *p.Paid {
			next, err = e.MarkFullyPaid(next, id)
		} else {
			next, err = e.UndoPaid(next, id)
		}

		if err != nil {
			return l, err
		}
	}

	if p.Note != nil {
		if next, err = e.SetNote(next, id, *p.Note); err != nil {
			return l, err
		}
	}

	return next, nil
}
