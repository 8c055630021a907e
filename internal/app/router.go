package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	analytichttp "github.com/gestfac/gestfac/internal/analytics/http"
	"github.com/gestfac/gestfac/internal/contracts"
	"github.com/gestfac/gestfac/internal/finance"
	"github.com/gestfac/gestfac/internal/observability"
	"github.com/gestfac/gestfac/internal/receivables"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	ContractsHandler   *contracts.Handler
	FinanceHandler     *finance.Handler
	ReceivablesHandler *receivables.Handler
	AnalyticsHandler   *analytichttp.Handler
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with Gestfac defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.ContractsHandler != nil {
		r.Route("/api/contracts", params.ContractsHandler.MountRoutes)
	}
	if params.FinanceHandler != nil {
		r.Route("/api/financial-entries", params.FinanceHandler.MountEntryRoutes)
		r.Route("/api/indirect-costs", params.FinanceHandler.MountIndirectCostRoutes)
	}
	if params.ReceivablesHandler != nil {
		r.Route("/api/receivables", params.ReceivablesHandler.MountRoutes)
	}
	if params.AnalyticsHandler != nil {
		params.AnalyticsHandler.MountRoutes(r)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
