package certificates

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-edu/meridian-edu/internal/identity"
	"github.com/meridian-edu/meridian-edu/internal/platform/httpx"
)

// Handler manages certificate endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	actors  identity.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, actors identity.Middleware) *Handler {
	return &Handler{logger: logger, service: service, actors: actors}
}

// MountRoutes registers certificate routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.actors.RequireActor)
	r.Get("/", h.list)
	r.Post("/", h.issue)
	r.Get("/{id}/pdf", h.pdf)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor, _ := identity.ActorFromContext(r.Context())
	certs, err := h.service.List(r.Context(), actor)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"certificates": certs})
}

func (h *Handler) issue(w http.ResponseWriter, r *http.Request) {
	actor, _ := identity.ActorFromContext(r.Context())

	var input IssueInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	cert, err := h.service.Issue(r.Context(), actor, input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, cert)
}

func (h *Handler) pdf(w http.ResponseWriter, r *http.Request) {
	actor, _ := identity.ActorFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid certificate id")
		return
	}

	pdf, err := h.service.RenderPDF(r.Context(), actor, id)
	if err != nil {
		h.logger.Error("certificate pdf", slog.Int64("id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=certificate-"+strconv.FormatInt(id, 10)+".pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
