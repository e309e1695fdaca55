package attendance

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-edu/meridian-edu/internal/identity"
	"github.com/meridian-edu/meridian-edu/internal/platform/httpx"
)

// Handler manages attendance endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	actors  identity.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, actors identity.Middleware) *Handler {
	return &Handler{logger: logger, service: service, actors: actors}
}

// MountRoutes registers attendance routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.actors.RequireActor)
	r.Get("/sheet", h.sheet)
	r.Get("/history", h.history)
	r.Post("/", h.save)
}

func (h *Handler) sheet(w http.ResponseWriter, r *http.Request) {
	actor, _ := identity.ActorFromContext(r.Context())
	classID, err := strconv.ParseInt(r.URL.Query().Get("class_id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid class_id")
		return
	}
	date := r.URL.Query().Get("date")

	records, err := h.service.Sheet(r.Context(), actor, classID, date)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"records": records,
		"summary": Rate(records),
	})
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	actor, _ := identity.ActorFromContext(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	records, err := h.service.History(r.Context(), actor, limit)
	if err != nil {
		h.logger.Error("attendance history", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"records": records,
		"summary": Rate(records),
	})
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request) {
	actor, _ := identity.ActorFromContext(r.Context())

	var input SaveInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.service.Save(r.Context(), actor, input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "saved"})
}
