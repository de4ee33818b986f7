package middleware

import (
	"net/http"
	"strconv"
	"time"

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

	syncLeadsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crm_sync_leads_created_total",
			Help: "Leads created by the order sync",
		},
	)

	syncLeadsUpdated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crm_sync_leads_updated_total",
			Help: "Lead stages updated by the order sync",
		},
	)

	stageUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_stage_updates_total",
			Help: "Manual stage updates from the board",
		},
		[]string{"stage"},
	)

	recoveryMessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_recovery_messages_sent_total",
			Help: "Cart recovery messages sent",
		},
		[]string{"message"},
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

		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
	})
}

func RecordSyncRun(created, updated int) {
	syncLeadsCreated.Add(float64(created))
	syncLeadsUpdated.Add(float64(updated))
}

func RecordStageUpdate(stage string) {
	stageUpdates.WithLabelValues(stage).Inc()
}

func RecordRecoveryMessage(messageNumber int) {
	recoveryMessagesSent.WithLabelValues(strconv.Itoa(messageNumber)).Inc()
}

func RecordIntegrationError(service string) {
	integrationErrors.WithLabelValues(service).Inc()
}
