package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/ecolefin/internal/http/category"
	"github.com/MrJamesThe3rd/ecolefin/internal/http/dashboard"
	"github.com/MrJamesThe3rd/ecolefin/internal/http/export"
	"github.com/MrJamesThe3rd/ecolefin/internal/http/importcsv"
	"github.com/MrJamesThe3rd/ecolefin/internal/http/matching"
	"github.com/MrJamesThe3rd/ecolefin/internal/http/report"
	"github.com/MrJamesThe3rd/ecolefin/internal/http/transaction"
)

type Handlers struct {
	Transactions *transaction.Handler
	Categories   *category.Handler
	Reports      *report.Handler
	Export       *export.Handler
	Dashboard    *dashboard.Handler
	Import       *importcsv.Handler
	Matching     *matching.Handler
	Metrics      http.Handler
}

type Options struct {
	CORSOrigins []string
	Timeout     time.Duration
}

func New(h Handlers, opts Options) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	if opts.Timeout > 0 {
		router.Use(middleware.Timeout(opts.Timeout))
	}

	if h.Metrics != nil {
		router.Handle("/metrics", h.Metrics)
	}

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/transactions", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Transactions.Routes(r)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Categories.Routes(r)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Route("/export", h.Export.Routes)
			h.Reports.Routes(r)
		})

		r.Route("/dashboard", h.Dashboard.Routes)
		r.Route("/import", h.Import.Routes)

		r.Route("/matching", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Matching.Routes(r)
		})
	})

	return router
}
