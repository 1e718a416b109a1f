package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrJamesThe3rd/spendly/internal/auth"
	"github.com/MrJamesThe3rd/spendly/internal/http/calendar"
	"github.com/MrJamesThe3rd/spendly/internal/http/export"
	"github.com/MrJamesThe3rd/spendly/internal/http/ledger"
	"github.com/MrJamesThe3rd/spendly/internal/http/tab"
	"github.com/MrJamesThe3rd/spendly/internal/metrics"
)

type Options struct {
	AllowedOrigins []string
	Timeout        time.Duration
	Verifier       auth.Verifier
}

func New(
	opts Options,
	ledgersV1 *ledger.Handler,
	tabsV1 *tab.Handler,
	calendarV1 *calendar.Handler,
	exportV1 *export.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(metrics.Middleware)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if opts.Timeout > 0 {
		router.Use(middleware.Timeout(opts.Timeout))
	}

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware(opts.Verifier))

		r.Route("/tabs", tabsV1.Routes)
		r.Route("/ledgers", ledgersV1.Routes)
		r.Route("/calendar", calendarV1.Routes)
		r.Route("/export", exportV1.Routes)
	})

	return router
}
