package api

import (
	"net/http"

	"github.com/dmitrijs2005/aitooling/internal/httpx"
	"github.com/dmitrijs2005/aitooling/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterDeps collects what NewRouter wires together.
type RouterDeps struct {
	Handler  *Handler
	Health   *httpx.HealthHandler
	Tokens   httpx.TokenParser
	Metrics  *httpx.Metrics
	Gatherer prometheus.Gatherer
	Logger   logging.Logger
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpx.RequestLogger(d.Logger))
	r.Use(middleware.Recoverer)
	r.Use(d.Metrics.Middleware)

	r.Get("/health/live", d.Health.Live)
	r.Get("/health/ready", d.Health.Ready)
	r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/data", func(r chi.Router) {
		r.Use(httpx.Authenticator(d.Tokens))
		r.Post("/upload", d.Handler.Upload)
		r.Get("/", d.Handler.List)
		r.Get("/{id}", d.Handler.Get)
	})

	return r
}
