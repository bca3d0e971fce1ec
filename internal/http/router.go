package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/holocommerce/storefront/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"
)

type RouterConfig struct {
	Catalog        Catalog
	Carts          Carts
	Store          StoreInspector
	Env            EnvStatus
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	Limiter        *RateLimiter
	AllowedOrigins []string
	RequestTimeout time.Duration
	Logger         *log.Entry
	// TracerProvider defaults to the global provider.
	TracerProvider trace.TracerProvider
}

// NewRouter wires handlers and middleware into the service's HTTP handler.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	productHandler := NewProductHandler(cfg.Catalog, cfg.RequestTimeout)
	cartHandler := NewCartHandler(cfg.Carts, cfg.RequestTimeout)
	systemHandler := NewSystemHandler(cfg.Store, cfg.Env, cfg.RequestTimeout)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger.WithField("component", "http")))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/", systemHandler.Root)
	r.Get("/test", systemHandler.Diagnostics)
	r.Get("/health", systemHandler.Health)
	r.Get("/ready", systemHandler.Ready)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Use(cfg.Limiter.Limit)

		r.Get("/hello", systemHandler.Hello)
		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.List)
			r.Get("/{id}", productHandler.Get)
		})
		r.Get("/categories", productHandler.Categories)
		r.Route("/cart", func(r chi.Router) {
			r.Post("/", cartHandler.UpsertCart)
			r.Get("/{session_id}", cartHandler.GetCart)
		})
	})

	handler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(r)

	var otelOpts []otelhttp.Option
	if cfg.TracerProvider != nil {
		otelOpts = append(otelOpts, otelhttp.WithTracerProvider(cfg.TracerProvider))
	}
	return otelhttp.NewHandler(handler, "storefront", otelOpts...)
}
