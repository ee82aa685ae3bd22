package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/angeljunes/vg-ms-attorney/internal/attorney/models"
	dErrors "github.com/angeljunes/vg-ms-attorney/pkg/domain-errors"
	"github.com/angeljunes/vg-ms-attorney/pkg/requestcontext"
)

func (h *Handler) handleListActive(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListActive(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, list)
}

func (h *Handler) handleListInactive(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListInactive(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, list)
}

func (h *Handler) handleFindByID(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r)(h.svc.FindByID(r.Context(), chi.URLParam(r, "id")))
}

func (h *Handler) handleFindByDocument(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r)(h.svc.FindByDocumentNumber(r.Context(), chi.URLParam(r, "dni")))
}

func (h *Handler) handleFindByEmail(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r)(h.svc.FindByEmail(r.Context(), chi.URLParam(r, "email")))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeAttorney(w, r)
	if !ok {
		return
	}
	h.respond(w, r)(h.svc.Create(r.Context(), req))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeAttorney(w, r)
	if !ok {
		return
	}
	h.respond(w, r)(h.svc.Update(r.Context(), chi.URLParam(r, "id"), req))
}

// handleUpdatePassword accepts {"password": "..."} or the raw password text.
func (h *Handler) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	req := models.ParseUpdatePasswordRequest(body)
	h.respond(w, r)(h.svc.UpdatePassword(r.Context(), chi.URLParam(r, "id"), req))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r)(h.svc.Delete(r.Context(), chi.URLParam(r, "id")))
}

func (h *Handler) handleReactivate(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r)(h.svc.Reactivate(r.Context(), chi.URLParam(r, "id")))
}

// respond renders a single record as 200 or maps the error.
func (h *Handler) respond(w http.ResponseWriter, r *http.Request) func(*models.Attorney, error) {
	return func(a *models.Attorney, err error) {
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		render.JSON(w, r, a)
	}
}

func (h *Handler) decodeAttorney(w http.ResponseWriter, r *http.Request) (*models.AttorneyRequest, bool) {
	body, err := readBody(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return nil, false
	}
	var req models.AttorneyRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.logger.WarnContext(r.Context(), "invalid attorney request",
			"error", err.Error(),
			"request_id", requestcontext.RequestID(r.Context()),
		)
		h.writeError(w, r, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return nil, false
	}
	return &req, true
}
