package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"fraudscope/internal/config"
	apperrors "fraudscope/internal/errors"
	"fraudscope/internal/infrastructure"
	"fraudscope/internal/middleware"
)

// RouterOptions carries everything NewRouter wires together
type RouterOptions struct {
	Dataset DatasetServiceInterface
	Health  HealthServiceInterface
	// OTel is optional; without it requests are not instrumented and
	// /metrics is not served
	OTel           *infrastructure.OTelProviders
	Logger         *slog.Logger
	HeadRows       int
	RequestTimeout time.Duration
	RateLimit      config.RateLimitConfig
	IncludeStack   bool
}

// NewRouter builds the API router. Middleware order: RequestID, RealIP,
// OTel, logging and panic recovery, security headers, rate limit.
func NewRouter(opts RouterOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	errorHandler := apperrors.NewErrorHandler(logger, opts.IncludeStack)

	r := chi.NewRouter()
	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)

	if opts.OTel != nil {
		otelMiddleware, err := middleware.NewOTelMiddleware(opts.OTel)
		if err != nil {
			logger.Error("failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
		} else {
			r.Use(otelMiddleware.Handler)
		}
		if opts.OTel.MetricsHandler != nil {
			r.Handle("/metrics", opts.OTel.MetricsHandler)
		}
	}

	r.Group(func(r chi.Router) {
		r.Use(apperrors.NewErrorMiddleware(errorHandler, logger).Handler)
		r.Use(middleware.SecurityHeaders)
		if opts.RateLimit.Enabled {
			r.Use(middleware.NewRateLimiter(opts.RateLimit.RPS, opts.RateLimit.Burst, logger, errorHandler).Handler)
		}

		r.Route("/api", func(r chi.Router) {
			r.Use(render.SetContentType(render.ContentTypeJSON))
			r.Use(middleware.Timeout(opts.RequestTimeout))

			healthHandler := NewHealthHandler(opts.Health, logger, errorHandler)
			r.Get("/health", healthHandler.HealthCheck)
			r.Get("/health/ready", healthHandler.ReadinessCheck)

			datasetHandler := NewDatasetHandler(opts.Dataset, opts.HeadRows, logger, errorHandler)
			r.Mount("/dataset", datasetHandler.Routes())
			r.Get("/group-rates", datasetHandler.GetGroupRates)
		})
	})

	return r
}
