package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	leadsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leads_created_total",
			Help: "Partial leads written after the WhatsApp step",
		},
	)

	leadCreateFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leads_create_failures_total",
			Help: "Failed partial lead writes",
		},
	)

	leadsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_completed_total",
			Help: "Completed leads by funnel branch",
		},
		[]string{"branch"},
	)

	leadCompletionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_completion_failures_total",
			Help: "Completion writes that failed or were skipped",
		},
		[]string{"reason"},
	)

	leadsAbandoned = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "leads_abandoned",
			Help: "Partial leads never completed within the abandonment window",
		},
	)

	streamSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "leads_stream_subscribers",
			Help: "Open dashboard streams",
		},
	)

	integrationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "integration_errors_total",
			Help: "Total number of integration errors",
		},
		[]string{"service"},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush mantém o SSE funcionando atrás do wrapper de métricas.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)
		path := routePattern(r)

		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// routePattern evita um label por id de sessão.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

// Funnel registra os contadores do funil.
type Funnel struct{}

func (Funnel) LeadCreated() {
	leadsCreated.Inc()
}

func (Funnel) LeadCreateFailed() {
	leadCreateFailures.Inc()
}

func (Funnel) LeadCompleted(branch string) {
	leadsCompleted.WithLabelValues(branch).Inc()
}

func (Funnel) LeadCompletionFailed(reason string) {
	leadCompletionFailures.WithLabelValues(reason).Inc()
}

func (Funnel) IntegrationError(service string) {
	integrationErrors.WithLabelValues(service).Inc()
}

func (Funnel) StreamOpened() {
	streamSubscribers.Inc()
}

func (Funnel) StreamClosed() {
	streamSubscribers.Dec()
}

func SetAbandonedLeads(n int) {
	leadsAbandoned.Set(float64(n))
}
