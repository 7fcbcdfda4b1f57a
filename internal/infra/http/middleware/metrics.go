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

	duplicateChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duplicate_checks_total",
			Help: "Total number of duplicate checks by result",
		},
		[]string{"result"},
	)

	duplicateLookupErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duplicate_lookup_errors_total",
			Help: "Total number of failed duplicate lookups by field",
		},
		[]string{"field"},
	)

	mergesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "student_merges_total",
			Help: "Total number of student merges by status",
		},
		[]string{"status"},
	)

	funnelTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "funnel_transitions_total",
			Help: "Total number of funnel stage transitions",
		},
		[]string{"from", "to"},
	)

	trashPurged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trash_purged_total",
			Help: "Total number of students permanently deleted from the trash",
		},
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

// Metrics usa o padrão da rota do chi como label para não explodir a cardinalidade com ids.
// O /ws/duplicates fica de fora porque o upgrade precisa do http.Hijacker original.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Upgrade") == "websocket" {
			next.ServeHTTP(w, r)
			return
		}

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

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

// PrometheusRecorder expõe os contadores de domínio para os casos de uso.
type PrometheusRecorder struct{}

func (PrometheusRecorder) DuplicateCheck(result string) {
	duplicateChecks.WithLabelValues(result).Inc()
}

func (PrometheusRecorder) DuplicateLookupError(field string) {
	duplicateLookupErrors.WithLabelValues(field).Inc()
}

func (PrometheusRecorder) Merge(status string) {
	mergesTotal.WithLabelValues(status).Inc()
}

func (PrometheusRecorder) FunnelTransition(from, to string) {
	funnelTransitions.WithLabelValues(from, to).Inc()
}

func (PrometheusRecorder) TrashPurged(count int) {
	trashPurged.Add(float64(count))
}
