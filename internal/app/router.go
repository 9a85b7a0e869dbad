package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	analytichttp "github.com/stockdesk/stockdesk/internal/analytics/http"
	"github.com/stockdesk/stockdesk/internal/auth"
	"github.com/stockdesk/stockdesk/internal/dashboard"
	"github.com/stockdesk/stockdesk/internal/masterdata/products"
	"github.com/stockdesk/stockdesk/internal/masterdata/suppliers"
	"github.com/stockdesk/stockdesk/internal/observability"
	"github.com/stockdesk/stockdesk/internal/platform/httpx"
	"github.com/stockdesk/stockdesk/internal/rbac"
	"github.com/stockdesk/stockdesk/internal/sales"
	"github.com/stockdesk/stockdesk/internal/shared"
	"github.com/stockdesk/stockdesk/internal/users"
	"github.com/stockdesk/stockdesk/jobs"
	"github.com/stockdesk/stockdesk/web"
)

// RouterParams groups dependencies for building the HTTP router. Nil
// handlers leave their routes unmounted.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	SessionManager   *shared.SessionManager
	CSRFManager      *shared.CSRFManager
	RBACMiddleware   rbac.Middleware
	AuthHandler      *auth.Handler
	DashboardHandler *dashboard.Handler
	ProductHandler   *products.Handler
	SupplierHandler  *suppliers.Handler
	SalesHandler     *sales.Handler
	UsersHandler     *users.Handler
	AnalyticsHandler *analytichttp.Handler
	JobHandler       *jobs.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with stockdesk defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	// Static assets and probes skip sessions, CSRF and rate limiting.
	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		for _, mw := range MiddlewareStack(MiddlewareConfig{
			Logger:         params.Logger,
			Config:         params.Config,
			SessionManager: params.SessionManager,
			CSRFManager:    params.CSRFManager,
			RBAC:           params.RBACMiddleware,
			Metrics:        params.Metrics,
		}) {
			r.Use(mw)
		}
		r.Use(chimw.Logger)

		if params.DashboardHandler != nil {
			params.DashboardHandler.MountRoutes(r)
		}
		if params.AuthHandler != nil {
			r.Route("/auth", params.AuthHandler.MountRoutes)
		}
		if params.ProductHandler != nil {
			r.Route("/products", params.ProductHandler.MountRoutes)
		}
		if params.SupplierHandler != nil {
			r.Route("/suppliers", params.SupplierHandler.MountRoutes)
		}
		if params.SalesHandler != nil {
			r.Route("/sales", params.SalesHandler.MountRoutes)
			r.Route("/api/sales", params.SalesHandler.MountAPIRoutes)
		}
		if params.UsersHandler != nil {
			r.Route("/users", params.UsersHandler.MountRoutes)
		}
		if params.AnalyticsHandler != nil {
			r.Route("/charts", params.AnalyticsHandler.MountRoutes)
		}
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	return r
}

// staticCacheHandler lets browsers cache static assets for an hour.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
