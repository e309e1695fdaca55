package provisioning

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-edu/meridian-edu/internal/identity"
	"github.com/meridian-edu/meridian-edu/internal/platform/httpx"
)

// Handler manages the provisioning endpoint. Callers authenticate either
// with an admin session or with a Bearer service token.
type Handler struct {
	logger  *slog.Logger
	service *Service
	actors  identity.Middleware
	tokens  *TokenIssuer
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, actors identity.Middleware, tokens *TokenIssuer) *Handler {
	return &Handler{logger: logger, service: service, actors: actors, tokens: tokens}
}

// MountRoutes registers provisioning routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.sessionUnlessToken)
	r.Post("/", h.provision)
}

// sessionUnlessToken resolves the session actor for cookie callers and lets
// Bearer token callers through to token verification.
func (h *Handler) sessionUnlessToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			next.ServeHTTP(w, r)
			return
		}
		h.actors.RequireActor(next).ServeHTTP(w, r)
	})
}

func (h *Handler) provision(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	var input Input
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.JSON(w, http.StatusBadRequest, Result{Success: false, Error: "invalid JSON body"})
		return
	}

	userID, err := h.service.Provision(r.Context(), input)
	if err != nil {
		if errors.Is(err, httpx.ErrValidation) || errors.Is(err, httpx.ErrDuplicate) {
			httpx.JSON(w, http.StatusBadRequest, Result{Success: false, Error: err.Error()})
			return
		}
		h.logger.Error("provision user", slog.String("caller", caller), slog.Any("error", err))
		httpx.JSON(w, http.StatusInternalServerError, Result{Success: false, Error: "account creation failed"})
		return
	}

	h.logger.Info("user provisioned",
		slog.String("caller", caller), slog.Int64("user_id", userID))
	httpx.JSON(w, http.StatusOK, Result{
		Success: true,
		Message: "user created",
		UserID:  userID,
	})
}

// authenticate accepts a Bearer service token or an admin session. It
// writes the failure response itself and reports the caller identity for
// logging.
func (h *Handler) authenticate(w http.ResponseWriter, r *http.Request) (string, bool) {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		subject, err := h.tokens.Verify(strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid service token")
			return "", false
		}
		return "token:" + subject, true
	}

	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return "", false
	}
	if !actor.HasRole(identity.RoleAdmin) {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "provisioning is admin only")
		return "", false
	}
	return "admin:" + strconv.FormatInt(actor.ID, 10), true
}
