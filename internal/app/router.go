package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/meridian-edu/meridian-edu/internal/announcements"
	"github.com/meridian-edu/meridian-edu/internal/attendance"
	"github.com/meridian-edu/meridian-edu/internal/auth"
	"github.com/meridian-edu/meridian-edu/internal/certificates"
	"github.com/meridian-edu/meridian-edu/internal/classes"
	"github.com/meridian-edu/meridian-edu/internal/facilities"
	"github.com/meridian-edu/meridian-edu/internal/gallery"
	"github.com/meridian-edu/meridian-edu/internal/observability"
	"github.com/meridian-edu/meridian-edu/internal/payments"
	"github.com/meridian-edu/meridian-edu/internal/payroll"
	"github.com/meridian-edu/meridian-edu/internal/provisioning"
	"github.com/meridian-edu/meridian-edu/internal/shared"
	"github.com/meridian-edu/meridian-edu/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager

	AuthHandler          *auth.Handler
	AnnouncementsHandler *announcements.Handler
	ClassesHandler       *classes.Handler
	AttendanceHandler    *attendance.Handler
	PayrollHandler       *payroll.Handler
	PaymentsHandler      *payments.Handler
	GalleryHandler       *gallery.Handler
	FacilitiesHandler    *facilities.Handler
	CertificatesHandler  *certificates.Handler
	ProvisioningHandler  *provisioning.Handler
	JobHandler           *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with Meridian defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)
	r.Route("/announcements", params.AnnouncementsHandler.MountRoutes)
	r.Route("/classes", params.ClassesHandler.MountRoutes)
	r.Route("/attendance", params.AttendanceHandler.MountRoutes)
	r.Route("/payroll", params.PayrollHandler.MountRoutes)
	r.Route("/payments", params.PaymentsHandler.MountRoutes)
	r.Route("/gallery", params.GalleryHandler.MountRoutes)
	r.Route("/facilities", params.FacilitiesHandler.MountRoutes)
	r.Route("/certificates", params.CertificatesHandler.MountRoutes)
	r.Route("/admin/provision", params.ProvisioningHandler.MountRoutes)
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	if params.Config != nil && params.Config.MediaDir != "" {
		fileServer := http.StripPrefix(params.Config.MediaURLBase+"/",
			http.FileServer(http.Dir(params.Config.MediaDir)))
		r.Handle(params.Config.MediaURLBase+"/*", mediaCacheHandler(fileServer))
	}

	return r
}

// mediaCacheHandler wraps the media file server with Cache-Control headers.
func mediaCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
