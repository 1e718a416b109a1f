package calendar

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/spendly/internal/calendar"
	"github.com/MrJamesThe3rd/spendly/internal/http/render"
	"github.com/MrJamesThe3rd/spendly/internal/ledger"
)

type Handler struct {
	svc *calendar.Service
	now func() time.Time
}

func NewHandler(svc *calendar.Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/years", h.years)
	r.Get("/{year}", h.year)
}

type monthResponse struct {
	Month       int             `json:"month"`
	Exists      bool            `json:"exists"`
	Status      ledger.Status   `json:"status"`
	Total       decimal.Decimal `json:"total"`
	PaidTotal   decimal.Decimal `json:"paid_total"`
	Outstanding decimal.Decimal `json:"outstanding"`
	Items       int             `json:"items"`
}

type yearResponse struct {
	Year        int             `json:"year"`
	Tab         string          `json:"tab,omitempty"`
	Months      []monthResponse `json:"months"`
	Total       decimal.Decimal `json:"total"`
	PaidTotal   decimal.Decimal `json:"paid_total"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

func (h *Handler) year(w http.ResponseWriter, r *http.Request) {
	userID, ok := render.UserID(w, r)
	if !ok {
		return
	}

	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		render.BadRequest(w, "invalid year")
		return
	}

	y, err := h.svc.Year(r.Context(), userID, year, r.URL.Query().Get("tab"))
	if err != nil {
		render.Error(w, r, err)
		return
	}

	resp := yearResponse{
		Year:        y.Year,
		Tab:         y.Tab,
		Months:      make([]monthResponse, 0, len(y.Months)),
		Total:       y.Total,
		PaidTotal:   y.PaidTotal,
		Outstanding: y.Outstanding,
	}

	for _, m := range y.Months {
		resp.Months = append(resp.Months, monthResponse(m))
	}

	render.JSON(w, http.StatusOK, resp)
}

// years lists the selectable years around the current one.
func (h *Handler) years(w http.ResponseWriter, _ *http.Request) {
	render.JSON(w, http.StatusOK, calendar.YearOptions(h.now()))
}
