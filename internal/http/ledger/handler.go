package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/spendly/internal/http/render"
	"github.com/MrJamesThe3rd/spendly/internal/importer"
	"github.com/MrJamesThe3rd/spendly/internal/ledger"
)

const defaultMaxUploadBytes = 5 << 20

type Handler struct {
	svc            *ledger.Service
	importSvc      *importer.Service
	maxUploadBytes int64
}

func NewHandler(svc *ledger.Service, importSvc *importer.Service, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}

	return &Handler{svc: svc, importSvc: importSvc, maxUploadBytes: maxUploadBytes}
}

func (h *Handler) Routes(r chi.Router) {
	r.Route("/{year}/{month}", func(r chi.Router) {
		r.Get("/", h.get)
		r.Post("/payments", h.allocateAcrossUnpaid)
		r.Post("/paid", h.markAllPaid)
		r.Post("/import", h.importItems)

		r.Post("/items", h.addItem)
		r.Route("/items/{id}", func(r chi.Router) {
			r.Patch("/", h.editItem)
			r.Delete("/", h.deleteItem)
			r.Post("/paid", h.markPaid)
			r.Delete("/paid", h.undoPaid)
			r.Post("/payments", h.allocateToItem)
			r.Put("/note", h.setNote)
		})
	})
}

// ledgerKey reads the ledger address from the path, the tab query parameter
// and the authenticated user.
func ledgerKey(w http.ResponseWriter, r *http.Request) (ledger.Key, bool) {
	userID, ok := render.UserID(w, r)
	if !ok {
		return ledger.Key{}, false
	}

	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		render.BadRequest(w, "invalid year")
		return ledger.Key{}, false
	}

	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil {
		render.BadRequest(w, "invalid month")
		return ledger.Key{}, false
	}

	return ledger.Key{
		UserID: userID,
		Year:   year,
		Month:  month,
		Tab:    r.URL.Query().Get("tab"),
	}, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		render.BadRequest(w, fmt.Sprintf("invalid request body: %v", err))
		return false
	}

	return true
}

func respond(w http.ResponseWriter, r *http.Request, status int, l *ledger.Ledger, err error) {
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, status, toResponse(l))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	key, ok := ledgerKey(w, r)
	if !ok {
		return
	}

	l, err := h.svc.Get(r.Context(), key)
	respond(w, r, http.StatusOK, l, err)
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	key, ok := ledgerKey(w, r)
	if !ok {
		return
	}

	var req addItemRequest
	if !decode(w, r, &req) {
		return
	}

	if err := req.validate(); err != nil {
		render.Error(w, r, err)
		return
	}

	l, err := h.svc.AddItem(r.Context(), key, req.Name, req.Amount.Decimal)
	respond(w, r, http.StatusCreated, l, err)
}

// editItem changes the name, the amount or both; omitted fields keep their value.
func (h *Handler) editItem(w http.ResponseWriter, r *http.Request) {
	key, ok := ledgerKey(w, r)
	if !ok {
		return
	}

	var req editItemRequest
	if !decode(w, r, &req) {
		return
	}

	if req.Name == nil && req.Amount == nil {
		render.BadRequest(w, "name or amount is required")
		return
	}

	var value *decimal.Decimal
	if req.Amount != nil {
		value = &req.Amount.Decimal
	}

	l, err := h.svc.EditItem(r.Context(), key, chi.URLParam(r, "id"), req.Name, value)
	respond(w, r, http.StatusOK, l, err)
}

func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	key, ok := ledgerKey(w, r)
	if !ok {
		return
	}

	l, err := h.svc.DeleteItem(r.Context(), key, chi.URLParam(r, "id"))
	respond(w, r, http.StatusOK, l, err)
}

func (h *Handler) markPaid(w http.ResponseWriter, r *http.Request) {
	key, ok := ledgerKey(w, r)
	if !ok {
		return
	}

	l, err := h.svc.MarkFullyPaid(r.Context(), key, chi.URLParam(r, "id"))
	respond(w, r, http.StatusOK, l, err)
}

func (h *Handler) undoPaid(w http.ResponseWriter, r *http.Request) {
	key, ok := ledgerKey(w, r)
	if !ok {
		return
	}

	l, err := h.svc.UndoPaid(r.Context(), key, chi.URLParam(r, "id"))
	respond(w, r, http.StatusOK, l, err)
}

func (h *Handler) allocateToItem(w http.ResponseWriter, r *http.Request) {
	key, ok := ledgerKey(w, r)
	if !ok {
		return
	}

	var req paymentRequest
	if !decode(w, r, &req) {
		return
	}

	if err := req.validate(); err != nil {
		render.Error(w, r, err)
		return
	}

	l, err := h.svc.AllocateToItem(r.Context(), key, chi.URLParam(r, "id"), req.Amount.Decimal)
	respond(w, r, http.StatusOK, l, err)
}

func (h *Handler) setNote(w http.ResponseWriter, r *http.Request) {
	key, ok := ledgerKey(w, r)
	if !ok {
		return
	}

	var req noteRequest
	if !decode(w, r, &req) {
		return
	}

	l, err := h.svc.SetNote(r.Context(), key, chi.URLParam(r, "id"), req.Note)
	respond(w, r, http.StatusOK, l, err)
}

func (h *Handler) allocateAcrossUnpaid(w http.ResponseWriter, r *http.Request) {
	key, ok := ledgerKey(w, r)
	if !ok {
		return
	}

	var req paymentRequest
	if !decode(w, r, &req) {
		return
	}

	if err := req.validate(); err != nil {
		render.Error(w, r, err)
		return
	}

	l, err := h.svc.AllocateAcrossUnpaid(r.Context(), key, req.Amount.Decimal)
	respond(w, r, http.StatusOK, l, err)
}

func (h *Handler) markAllPaid(w http.ResponseWriter, r *http.Request) {
	key, ok := ledgerKey(w, r)
	if !ok {
		return
	}

	l, err := h.svc.MarkAllFullyPaid(r.Context(), key)
	respond(w, r, http.StatusOK, l, err)
}

type importResponse struct {
	Imported int            `json:"imported"`
	Ledger   ledgerResponse `json:"ledger"`
}

// importItems adds every row of an uploaded CSV or XLSX file in one write.
func (h *Handler) importItems(w http.ResponseWriter, r *http.Request) {
	key, ok := ledgerKey(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		render.BadRequest(w, "failed to parse form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		render.BadRequest(w, "file is required")
		return
	}
	defer file.Close()

	format, err := importer.FormatFromFilename(header.Filename)
	if err != nil {
		render.BadRequest(w, err.Error())
		return
	}

	items, err := h.importSvc.Import(format, file)
	if err != nil {
		if errors.Is(err, importer.ErrUnsupportedFormat) {
			render.BadRequest(w, err.Error())
			return
		}

		render.Error(w, r, err)

		return
	}

	l, err := h.svc.ImportItems(r.Context(), key, items)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "imported items", "ledger", l.Key.String(), "file", header.Filename, "count", len(items))

	render.JSON(w, http.StatusCreated, importResponse{Imported: len(items), Ledger: toResponse(l)})
}
