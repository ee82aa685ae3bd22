package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/angeljunes/vg-ms-attorney/internal/attorney/models"
	"github.com/angeljunes/vg-ms-attorney/internal/platform/metrics"
	"github.com/angeljunes/vg-ms-attorney/internal/platform/middleware"
	dErrors "github.com/angeljunes/vg-ms-attorney/pkg/domain-errors"
	"github.com/angeljunes/vg-ms-attorney/pkg/requestcontext"
)

// Roles allowed through the admin and user routers.
var (
	AdminRoles = []string{"DEVELOP", "SUBDIRECTOR", "SUPERIOR", "DIRECTOR", "ADMIN"}
	UserRoles  = []string{"DEVELOP", models.RoleAttorney}
)

const maxBodyBytes = 1 << 20

// Service defines the attorney operations the routers expose.
type Service interface {
	ListActive(ctx context.Context) ([]*models.Attorney, error)
	ListInactive(ctx context.Context) ([]*models.Attorney, error)
	FindByID(ctx context.Context, id string) (*models.Attorney, error)
	FindByDocumentNumber(ctx context.Context, documentNumber string) (*models.Attorney, error)
	FindByEmail(ctx context.Context, email string) (*models.Attorney, error)
	Create(ctx context.Context, req *models.AttorneyRequest) (*models.Attorney, error)
	Update(ctx context.Context, id string, req *models.AttorneyRequest) (*models.Attorney, error)
	UpdatePassword(ctx context.Context, id string, req *models.UpdatePasswordRequest) (*models.Attorney, error)
	Delete(ctx context.Context, id string) (*models.Attorney, error)
	Reactivate(ctx context.Context, id string) (*models.Attorney, error)
	CheckAccess(ctx context.Context, token string, allowedRoles []string) (string, bool, error)
	SafeExternalRequest(ctx context.Context, rawURL string) (string, error)
	WelcomeMessage() string
}

// Handler serves the public, admin and user attorney routers.
type Handler struct {
	logger  *slog.Logger
	svc     Service
	metrics *metrics.Metrics
}

func New(svc Service, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{logger: logger, svc: svc, metrics: m}
}

// RegisterPublic mounts the unauthenticated router at base. The entity
// surface is only mounted when fullSurface is true; the greeting, smoke-test
// and URL-gate endpoints are always present.
func (h *Handler) RegisterPublic(r chi.Router, base string, fullSurface bool) {
	r.Route(base, func(r chi.Router) {
		r.Use(middleware.Latency(h.metrics, "public"))
		r.Get("/welcome", h.handleWelcome)
		r.Get("/test", h.handleTest)
		r.Get("/validate-url", h.handleValidateURL)
		r.Get("/validateUrl", h.handleValidateURL)
		if fullSurface {
			h.registerFull(r)
		}
	})
}

// RegisterAdmin mounts the staff router at base behind the admin role set.
func (h *Handler) RegisterAdmin(r chi.Router, base string) {
	r.Route(base, func(r chi.Router) {
		r.Use(middleware.Latency(h.metrics, "admin"))
		r.Use(middleware.RequireRoles(h.svc, AdminRoles, h.logger))
		h.registerFull(r)
	})
}

// RegisterUser mounts the attorney-facing router at base: read access plus
// password change.
func (h *Handler) RegisterUser(r chi.Router, base string) {
	r.Route(base, func(r chi.Router) {
		r.Use(middleware.Latency(h.metrics, "user"))
		r.Use(middleware.RequireRoles(h.svc, UserRoles, h.logger))
		r.Get("/actives", h.handleListActive)
		r.Get("/document/{dni}", h.handleFindByDocument)
		r.Get("/{id}", h.handleFindByID)
		r.Patch("/updatePassword/{id}", h.handleUpdatePassword)
	})
}

func (h *Handler) registerFull(r chi.Router) {
	r.Get("/actives", h.handleListActive)
	r.Get("/inactive", h.handleListInactive)
	r.Get("/document/{dni}", h.handleFindByDocument)
	r.Get("/email/{email}", h.handleFindByEmail)
	r.Get("/{id}", h.handleFindByID)
	r.Post("/create", h.handleCreate)
	r.Delete("/delete/{id}", h.handleDelete)
	r.Put("/reactivate/{id}", h.handleReactivate)
	r.Put("/update/{id}", h.handleUpdate)
	r.Patch("/updatePassword/{id}", h.handleUpdatePassword)
}

// writeError maps a domain error to its status. Not-found is an empty 404;
// everything else gets the JSON error envelope.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	code := dErrors.CodeOf(err)
	status := dErrors.ToHTTPStatus(code)

	switch {
	case status >= http.StatusInternalServerError:
		h.logger.ErrorContext(ctx, "attorney request failed",
			"error", err,
			"code", string(code),
			"request_id", requestcontext.RequestID(ctx),
		)
	case code != dErrors.CodeNotFound:
		h.logger.WarnContext(ctx, "attorney request rejected",
			"error", err,
			"code", string(code),
			"request_id", requestcontext.RequestID(ctx),
		)
	}

	if code == dErrors.CodeNotFound {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	desc := dErrors.MessageOf(err)
	if code == dErrors.CodeInternal {
		desc = "internal server error"
	}
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: string(code), ErrorDescription: desc})
}

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "invalid request body")
	}
	return body, nil
}
