package handler

import (
	"net/http"
	"time"

	"github.com/zentrium/assistant-engine-go/internal/engine"
	"github.com/zentrium/assistant-engine-go/internal/infra/observability"
	"github.com/zentrium/assistant-engine-go/internal/relay"
	"github.com/zentrium/assistant-engine-go/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
// Routes follow the API contract of the Zentrium assistant widget.
func NewRouter(
	eng *engine.Engine,
	mgr *session.Manager,
	relaySvc *relay.Service,
	metrics *observability.Metrics,
	logger *zap.Logger,
) http.Handler {
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
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// Sessions
		// =============================================
		r.Post("/sessions", createSessionHandler(eng, mgr, logger))
		r.Get("/sessions/{sessionId}", getSessionHandler(mgr, logger))
		r.Post("/sessions/{sessionId}/open", setActiveHandler(eng, mgr, true, logger))
		r.Post("/sessions/{sessionId}/close", setActiveHandler(eng, mgr, false, logger))

		// =============================================
		// Chat
		// =============================================
		r.Post("/chat/{sessionId}", chatHandler(eng, mgr, logger))

		// =============================================
		// Contact relay
		// =============================================
		r.Post("/contact", contactHandler(relaySvc, logger))

		// =============================================
		// Metrics snapshot
		// =============================================
		r.Get("/metrics/engine", engineMetricsHandler(metrics))
	})

	return r
}

func healthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":    "healthy",
			"service":   "assistant-engine",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func engineMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetEngineSnapshot())
	}
}
