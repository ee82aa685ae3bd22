package handler

import (
	"net/http"

	"github.com/go-chi/render"

	dErrors "github.com/angeljunes/vg-ms-attorney/pkg/domain-errors"
	"github.com/angeljunes/vg-ms-attorney/pkg/requestcontext"
)

func (h *Handler) handleWelcome(w http.ResponseWriter, r *http.Request) {
	render.PlainText(w, r, h.svc.WelcomeMessage())
}

func (h *Handler) handleTest(w http.ResponseWriter, r *http.Request) {
	render.PlainText(w, r, "Test successful")
}

// handleValidateURL exercises the outbound URL gate. Every failure, blocked or
// upstream, is a 400 carrying the error message.
func (h *Handler) handleValidateURL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, err := h.svc.SafeExternalRequest(ctx, r.URL.Query().Get("url"))
	if err != nil {
		h.logger.WarnContext(ctx, "url validation failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		render.Status(r, http.StatusBadRequest)
		render.PlainText(w, r, "Error: "+dErrors.MessageOf(err))
		return
	}
	render.PlainText(w, r, "URL válida: "+body)
}
