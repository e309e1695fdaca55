package announcements

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-edu/meridian-edu/internal/identity"
	"github.com/meridian-edu/meridian-edu/internal/platform/httpx"
)

// Handler manages announcement endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	actors  identity.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, actors identity.Middleware) *Handler {
	return &Handler{logger: logger, service: service, actors: actors}
}

// MountRoutes registers announcement routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.actors.RequireActor)
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Delete("/{id}", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor, _ := identity.ActorFromContext(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	items, err := h.service.List(r.Context(), actor, limit, offset)
	if err != nil {
		h.logger.Error("list announcements", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"announcements": items})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	actor, _ := identity.ActorFromContext(r.Context())

	var input CreateInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}

	created, err := h.service.Create(r.Context(), actor, input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	actor, _ := identity.ActorFromContext(r.Context())
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid announcement id")
		return
	}
	if err := h.service.Delete(r.Context(), actor, id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
