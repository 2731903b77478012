package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the service.
type Metrics struct {
	Registry *prometheus.Registry

	requests       *prometheus.CounterVec
	latency        *prometheus.HistogramVec
	errors         *prometheus.CounterVec
	usersCreated   prometheus.Counter
	loginFailures  prometheus.Counter
	userOperations *prometheus.CounterVec
}

// NewMetrics registers all collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "user_service_http_requests_total",
			Help: "Total HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "user_service_http_request_duration_seconds",
			Help:    "Latency of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "user_service_http_errors_total",
			Help: "Total error responses by route, method and error code",
		}, []string{"route", "method", "code"}),
		usersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "user_service_users_created_total",
			Help: "Total number of users created",
		}),
		loginFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "user_service_login_failures_total",
			Help: "Total number of rejected logins",
		}),
		userOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "user_service_user_operations_total",
			Help: "Successful user directory mutations by operation",
		}, []string{"operation"}),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(route, method, code).Inc()
}

// UserCreated counts a registration.
func (m *Metrics) UserCreated() {
	if m == nil {
		return
	}
	m.usersCreated.Inc()
}

// LoginFailed counts a rejected login.
func (m *Metrics) LoginFailed() {
	if m == nil {
		return
	}
	m.loginFailures.Inc()
}

// UserOperation counts a successful mutation such as "update" or "delete".
func (m *Metrics) UserOperation(op string) {
	if m == nil {
		return
	}
	m.userOperations.WithLabelValues(op).Inc()
}
