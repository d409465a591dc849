package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/leaguedesk/roster-service/internal/domain"
)

// Metrics holds the service's prometheus collectors.
type Metrics struct {
	Proposals       *prometheus.CounterVec
	Resolutions     *prometheus.CounterVec
	PendingRequests prometheus.Gauge
	Requests        *prometheus.CounterVec
	RequestLatency  *prometheus.HistogramVec
	Errors          *prometheus.CounterVec
}

// NewMetrics registers all collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Proposals: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_tag_proposals_total",
			Help: "Tag change proposals by actor role and outcome",
		}, []string{"role", "outcome"}), // outcome: "applied", "queued"

		Resolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_tag_resolutions_total",
			Help: "Resolved tag change requests by final status",
		}, []string{"status"}),

		PendingRequests: factory.NewGauge(prometheus.GaugeOpts{
			Name: "roster_pending_requests",
			Help: "Tag change requests awaiting league review",
		}),

		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "path", "status"}),

		RequestLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "roster_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"method", "path"}),

		Errors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_http_errors_total",
			Help: "HTTP error responses by error code",
		}, []string{"code"}),
	}
}

// ObserveProposal counts a tag change proposal.
func (m *Metrics) ObserveProposal(role domain.ActorRole, outcome string) {
	if m != nil {
		m.Proposals.WithLabelValues(string(role), outcome).Inc()
	}
}

// ObserveResolution counts an approved or rejected request.
func (m *Metrics) ObserveResolution(status domain.RequestStatus) {
	if m != nil {
		m.Resolutions.WithLabelValues(string(status)).Inc()
	}
}

// SetPendingRequests sets the approval queue depth.
func (m *Metrics) SetPendingRequests(count int) {
	if m != nil {
		m.PendingRequests.Set(float64(count))
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.RequestLatency.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(code string) {
	if m != nil {
		m.Errors.WithLabelValues(code).Inc()
	}
}
