package tab

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/spendly/internal/http/render"
	"github.com/MrJamesThe3rd/spendly/internal/ledger"
)

type Handler struct {
	svc *ledger.Service
}

func NewHandler(svc *ledger.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Patch("/{tab}", h.rename)
	r.Delete("/{tab}", h.delete)
}

type tabResponse struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Position int    `json:"position"`
}

type labelRequest struct {
	Label string `json:"label"`
}

func toResponse(t ledger.Tab) tabResponse {
	return tabResponse{Key: t.Key, Label: t.Label, Position: t.Position}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	userID, ok := render.UserID(w, r)
	if !ok {
		return
	}

	tabs, err := h.svc.ListTabs(r.Context(), userID)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	resp := make([]tabResponse, len(tabs))
	for i, t := range tabs {
		resp[i] = toResponse(t)
	}

	render.JSON(w, http.StatusOK, resp)
}

// create accepts an empty body; the tab then gets a generated label.
func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	userID, ok := render.UserID(w, r)
	if !ok {
		return
	}

	var req labelRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			render.BadRequest(w, "invalid request body")
			return
		}
	}

	t, err := h.svc.CreateTab(r.Context(), userID, req.Label)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusCreated, toResponse(*t))
}

func (h *Handler) rename(w http.ResponseWriter, r *http.Request) {
	userID, ok := render.UserID(w, r)
	if !ok {
		return
	}

	var req labelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.BadRequest(w, "invalid request body")
		return
	}

	t, err := h.svc.RenameTab(r.Context(), userID, chi.URLParam(r, "tab"), req.Label)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toResponse(*t))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := render.UserID(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteTab(r.Context(), userID, chi.URLParam(r, "tab")); err != nil {
		render.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
