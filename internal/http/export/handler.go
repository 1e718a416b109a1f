package export

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/spendly/internal/export"
	"github.com/MrJamesThe3rd/spendly/internal/http/render"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	svc *export.Service
}

func NewHandler(svc *export.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/{year}.xlsx", h.download)
}

// download builds the whole workbook before writing so that failures still
// get a JSON error instead of a truncated file.
func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	userID, ok := render.UserID(w, r)
	if !ok {
		return
	}

	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		render.BadRequest(w, "invalid year")
		return
	}

	tab := r.URL.Query().Get("tab")

	f, err := h.svc.Workbook(r.Context(), userID, year, tab)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(year, tab)))

	if _, err := f.WriteTo(w); err != nil {
		slog.ErrorContext(r.Context(), "failed to write workbook", "year", year, "tab", tab, "error", err)
	}
}
