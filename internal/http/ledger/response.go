package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/spendly/internal/ledger"
)

type itemResponse struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Amount     decimal.Decimal `json:"amount"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
	Remaining  decimal.Decimal `json:"remaining"`
	Paid       bool            `json:"paid"`
	Overpaid   bool            `json:"overpaid,omitempty"`
	Note       string          `json:"note,omitempty"`
}

type ledgerResponse struct {
	Year        int             `json:"year"`
	Month       int             `json:"month"`
	Tab         string          `json:"tab"`
	Items       []itemResponse  `json:"items"`
	Total       decimal.Decimal `json:"total"`
	PaidTotal   decimal.Decimal `json:"paid_total"`
	Outstanding decimal.Decimal `json:"outstanding"`
	Status      ledger.Status   `json:"status"`
	Exists      bool            `json:"exists"`
	Version     int64           `json:"version"`
	UpdatedAt   *time.Time      `json:"updated_at,omitempty"`
}

func toResponse(l *ledger.Ledger) ledgerResponse {
	resp := ledgerResponse{
		Year:        l.Key.Year,
		Month:       l.Key.Month,
		Tab:         l.Key.Tab,
		Items:       make([]itemResponse, len(l.Items)),
		Total:       l.Total,
		PaidTotal:   l.PaidTotal,
		Outstanding: l.Outstanding(),
		Status:      l.Status,
		Exists:      l.Stored(),
		Version:     l.Version,
	}

	for i, it := range l.Items {
		resp.Items[i] = itemResponse{
			ID:         it.ID,
			Name:       it.Name,
			Amount:     it.Amount,
			AmountPaid: it.AmountPaid,
			Remaining:  it.Remaining(),
			Paid:       it.Paid,
			Overpaid:   it.Overpaid(),
			Note:       it.Note,
		}
	}

	if !l.UpdatedAt.IsZero() {
		resp.UpdatedAt = new(l.UpdatedAt)
	}

	return resp
}
