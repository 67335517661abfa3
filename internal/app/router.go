package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/strata-books/strata-books/internal/accounts"
	"github.com/strata-books/strata-books/internal/auth"
	"github.com/strata-books/strata-books/internal/history"
	"github.com/strata-books/strata-books/internal/ledger"
	"github.com/strata-books/strata-books/internal/observability"
	"github.com/strata-books/strata-books/internal/reports"
	"github.com/strata-books/strata-books/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Config  *Config
	Metrics *observability.Metrics

	AuthHandler     *auth.Handler
	AuthMiddleware  func(http.Handler) http.Handler
	AccountsHandler *accounts.Handler
	LedgerHandler   *ledger.Handler
	ReportsHandler  *reports.Handler
	HistoryHandler  *history.Handler
	JobHandler      *jobs.Handler
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
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

	if params.Metrics != nil {
		r.Handle("/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		api.Group(func(public chi.Router) {
			if params.Config != nil && params.Config.LoginRateLimit > 0 {
				public.Use(httprate.LimitByIP(params.Config.LoginRateLimit, params.Config.LoginRateWindow))
			}
			params.AuthHandler.MountLogin(public)
			params.AuthHandler.MountRegister(public)
		})

		api.Group(func(private chi.Router) {
			if params.AuthMiddleware != nil {
				private.Use(params.AuthMiddleware)
			}
			private.Route("/accounts", func(rt chi.Router) {
				params.AccountsHandler.MountRoutes(rt)
				params.HistoryHandler.MountRoutes(rt)
			})
			private.Route("/transactions", func(rt chi.Router) {
				params.LedgerHandler.MountRoutes(rt)
			})
			private.Route("/reports", func(rt chi.Router) {
				params.ReportsHandler.MountRoutes(rt)
			})
			if params.JobHandler != nil {
				private.Route("/jobs", func(rt chi.Router) {
					params.JobHandler.MountRoutes(rt)
				})
			}
		})
	})

	return r
}
