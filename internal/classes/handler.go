package classes

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-edu/meridian-edu/internal/identity"
	"github.com/meridian-edu/meridian-edu/internal/platform/httpx"
)

// Handler manages class endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	actors  identity.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, actors identity.Middleware) *Handler {
	return &Handler{logger: logger, service: service, actors: actors}
}

// MountRoutes registers class routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.actors.RequireActor)
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}/roster", h.roster)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor, _ := identity.ActorFromContext(r.Context())
	items, err := h.service.List(r.Context(), actor)
	if err != nil {
		h.logger.Error("list classes", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"classes": items})
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

func (h *Handler) roster(w http.ResponseWriter, r *http.Request) {
	actor, _ := identity.ActorFromContext(r.Context())
	classID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid class id")
		return
	}
	students, err := h.service.Roster(r.Context(), actor, classID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"students": students})
}
