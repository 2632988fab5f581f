// Package http serves the configuration document over HTTP.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/artpar/agencms/adapters/auth"
	"github.com/artpar/agencms/adapters/metrics"
	"github.com/artpar/agencms/core/registry"
	"github.com/artpar/agencms/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// ConfigPath is where the configuration document is served.
const ConfigPath = "/agencms/config"

// VersionResponse represents the version endpoint response.
type VersionResponse struct {
	Version string `json:"version"`
	Service string `json:"service"`
}

// ConfigBuilder builds the configuration document for an actor.
type ConfigBuilder interface {
	Build(ctx context.Context, actor ports.Actor) (registry.Snapshot, error)
}

// TokenValidator validates bearer tokens.
type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

// ConfigHandler serves the configuration document of the authenticated actor.
type ConfigHandler struct {
	builder ConfigBuilder
	logger  zerolog.Logger
}

// NewConfigHandler creates a new config handler.
func NewConfigHandler(builder ConfigBuilder, logger zerolog.Logger) *ConfigHandler {
	return &ConfigHandler{builder: builder, logger: logger}
}

// ServeHTTP writes the document built for the actor in the request context.
func (h *ConfigHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	actor, ok := ports.ActorFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "Authentication required")
		return
	}

	doc, err := h.builder.Build(r.Context(), actor)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			writeError(w, http.StatusServiceUnavailable, "canceled", "Request canceled")
			return
		}
		h.logger.Error().Err(err).Str("actor", actor.ID).Msg("build config")
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to build configuration")
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

// RequireActor authenticates the bearer token of every request and stores
// the actor in the request context. The collector may be nil.
func RequireActor(tokens TokenValidator, m *metrics.Collector, logger zerolog.Logger) func(next http.Handler) http.Handler {
	fail := func(w http.ResponseWriter, r *http.Request, reason string) {
		if m != nil {
			m.AuthFailures.WithLabelValues(reason).Inc()
		}
		logger.Debug().
			Str("reason", reason).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("authentication failed")
		w.Header().Set("WWW-Authenticate", `Bearer realm="agencms"`)
		writeError(w, http.StatusUnauthorized, reason, "Authentication required")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				fail(w, r, "missing_token")
				return
			}

			claims, err := tokens.ValidateToken(token)
			if err != nil {
				fail(w, r, "invalid_token")
				return
			}

			ctx := ports.WithActor(r.Context(), claims.Actor())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// Health returns a simple liveness check.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// VersionHandler returns a handler reporting version.
func VersionHandler(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, VersionResponse{
			Version: version,
			Service: "agencms",
		})
	}
}

// RouterConfig holds the dependencies of the router.
type RouterConfig struct {
	Config  ConfigBuilder
	Tokens  TokenValidator
	Version string

	// Metrics enables the metrics middleware and the exporter endpoint.
	Metrics     *metrics.Collector
	Gatherer    prometheus.Gatherer // defaults to prometheus.DefaultGatherer
	MetricsPath string              // defaults to /metrics
}

// NewRouter creates the main HTTP router.
func NewRouter(cfg RouterConfig, logger zerolog.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggingMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	metricsPath := cfg.MetricsPath
	if metricsPath == "" {
		metricsPath = "/metrics"
	}

	if cfg.Metrics != nil {
		r.Use(NewMetricsMiddleware(cfg.Metrics, metricsPath))

		gatherer := cfg.Gatherer
		if gatherer == nil {
			gatherer = prometheus.DefaultGatherer
		}
		r.Handle(metricsPath, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Get("/health", Health)
	r.Get("/version", VersionHandler(cfg.Version))

	r.Group(func(r chi.Router) {
		r.Use(RequireActor(cfg.Tokens, cfg.Metrics, logger))
		r.Method(http.MethodGet, ConfigPath, NewConfigHandler(cfg.Config, logger))
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
	})

	return r
}

// NewMetricsMiddleware creates middleware that records request metrics.
// Requests are labelled by route pattern so path parameters do not explode
// label cardinality.
func NewMetricsMiddleware(m *metrics.Collector, metricsPath string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" || r.URL.Path == metricsPath {
				next.ServeHTTP(w, r)
				return
			}

			m.RequestsInFlight.Inc()
			defer m.RequestsInFlight.Dec()

			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}

			m.RequestDuration.
				WithLabelValues(r.Method, route, metrics.StatusClass(ww.Status())).
				Observe(time.Since(start).Seconds())
		})
	}
}

// NewLoggingMiddleware creates a new logging middleware.
func NewLoggingMiddleware(logger zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			if r.URL.Path == "/health" {
				return
			}

			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("http request")
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
