package handler

import (
	"net/http"
	"time"

	"github.com/verona-marmoleria/backoffice-bff-go/internal/infra/observability"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Deps are the collaborators of the screens. Only Metrics and Logger are
// needed for the operational endpoints.
type Deps struct {
	Sessions   SessionStore
	Views      *Views
	Auth       *service.AuthService
	Sales      *service.SalesService
	Blueprints *service.BlueprintService
	Users      *service.UserAdminService
	Dashboard  *service.DashboardService
	Receipts   *service.ReceiptService
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// screens bundles what every screen handler closes over.
type screens struct {
	Deps
	views *Views
	rd    *renderer
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Metrics == nil {
		d.Metrics = observability.NewMetrics()
	}
	views := d.Views
	if views == nil {
		views = NewViews(8 * time.Hour)
	}
	s := &screens{Deps: d, views: views, rd: newRenderer(d.Logger)}
	logger := d.Logger

	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler())
	r.Get("/readyz", readyzHandler(d.Metrics))
	r.Handle("/metrics", promhttp.HandlerFor(d.Metrics.Registry, promhttp.HandlerOpts{}))

	if d.Sessions == nil {
		return r
	}

	// --- Public screens ---
	r.Get("/login", s.loginPage)
	r.Post("/login", s.login)
	r.Post("/logout", s.logout)

	// --- Protected screens ---
	r.Group(func(r chi.Router) {
		r.Use(RequireSession(d.Sessions, logger))

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		})
		r.Get("/dashboard", s.dashboard)

		r.Get("/sales", s.salesPage)
		r.Post("/sales", s.createSale)
		r.Post("/sales/{id}", s.updateSale)
		r.Post("/sales/{id}/delete", s.deleteSale)
		r.Get("/sales/{id}/receipt.pdf", s.saleReceipt)

		r.Get("/blueprints", s.blueprintsPage)
		r.Post("/blueprints", s.createBlueprint)
		r.Post("/blueprints/photos", s.addBlueprintPhoto)
		r.Post("/blueprints/{id}", s.updateBlueprint)
		r.Post("/blueprints/{id}/delete", s.deleteBlueprint)

		r.Get("/profile", s.profilePage)
		r.Post("/profile/name", s.changeName)
		r.Post("/profile/password", s.changePassword)

		// --- Admin screens ---
		r.Group(func(r chi.Router) {
			r.Use(RequireAdmin(logger))

			r.Get("/users", s.usersPage)
			r.Post("/users", s.createUser)
			r.Post("/users/{id}/delete", s.deleteUser)
		})
	})

	return r
}

func healthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

type readyResponse struct {
	Status string                 `json:"status"`
	Stats  observability.Snapshot `json:"stats"`
}

func readyzHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, readyResponse{Status: "ready", Stats: metrics.Snapshot()})
	}
}
