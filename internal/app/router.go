package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dentex-erp/dentex-erp/internal/accounting/accounts"
	"github.com/dentex-erp/dentex-erp/internal/accounting/journal"
	"github.com/dentex-erp/dentex-erp/internal/accounting/rules"
	"github.com/dentex-erp/dentex-erp/internal/expenses"
	"github.com/dentex-erp/dentex-erp/internal/masterdata/companies"
	"github.com/dentex-erp/dentex-erp/internal/observability"
	"github.com/dentex-erp/dentex-erp/internal/purchasing"
	"github.com/dentex-erp/dentex-erp/internal/sales"
	"github.com/dentex-erp/dentex-erp/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	Pool              *pgxpool.Pool
	CompaniesHandler  *companies.Handler
	AccountsHandler   *accounts.Handler
	RulesHandler      *rules.Handler
	JournalHandler    *journal.Handler
	SalesHandler      *sales.Handler
	PurchasingHandler *purchasing.Handler
	ExpensesHandler   *expenses.Handler
	JobHandler        *jobs.Handler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with Dentex defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if params.Pool != nil {
			if err := params.Pool.Ping(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"degraded"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		params.CompaniesHandler.MountRoutes(r)
		params.AccountsHandler.MountRoutes(r)
		params.RulesHandler.MountRoutes(r)
		params.JournalHandler.MountRoutes(r)
		params.SalesHandler.MountRoutes(r)
		params.PurchasingHandler.MountRoutes(r)
		params.ExpensesHandler.MountRoutes(r)
	})

	if params.JobHandler != nil {
		r.Route("/jobs", func(r chi.Router) {
			params.JobHandler.MountRoutes(r)
		})
	}

	return r
}
