package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the portfolio backend.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Terminal metrics
	TerminalSessions prometheus.Gauge
	TerminalCommands *prometheus.CounterVec
	WSMessages       *prometheus.CounterVec

	// Contact metrics
	ContactSubmissions *prometheus.CounterVec
	EmailsSent         *prometheus.CounterVec

	// Rate limiting
	RateLimited *prometheus.CounterVec

	Uptime prometheus.GaugeFunc

	startTime time.Time

	mu       sync.Mutex
	snapshot Snapshot
}

// Snapshot is a cheap summary for the admin dashboard.
type Snapshot struct {
	TotalRequests  int64   `json:"total_requests"`
	TotalErrors    int64   `json:"total_errors"`
	AvgDurationMS  float64 `json:"avg_duration_ms"`
	ActiveSessions int64   `json:"active_sessions"`
	TotalCommands  int64   `json:"total_commands"`
	UptimeSeconds  float64 `json:"uptime_seconds"`

	totalDuration float64
}

// NewMetrics creates the collectors on a private registry, so several
// servers (and tests) can coexist in one process.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portfolio_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "portfolio_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		ResponseSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "portfolio_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "path"},
		),
		TerminalCommands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portfolio_terminal_commands_total",
				Help: "Terminal commands executed, by command name",
			},
			[]string{"command"},
		),
		WSMessages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portfolio_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),
		ContactSubmissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portfolio_contact_submissions_total",
				Help: "Contact form submissions by outcome",
			},
			[]string{"outcome"},
		),
		EmailsSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portfolio_emails_total",
				Help: "Notification emails by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		RateLimited: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portfolio_rate_limited_total",
				Help: "Requests rejected by the rate limiter",
			},
			[]string{"rule"},
		),
	}

	m.TerminalSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "portfolio_terminal_sessions_active",
		Help: "Number of connected terminal sessions",
	})
	m.Uptime = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "portfolio_uptime_seconds",
			Help: "Backend uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	reg.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.ResponseSize,
		m.TerminalSessions,
		m.TerminalCommands,
		m.WSMessages,
		m.ContactSubmissions,
		m.EmailsSent,
		m.RateLimited,
		m.Uptime,
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the Prometheus exposition format for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.totalDuration += duration.Seconds()
	if status != "" && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordCommand counts one executed terminal command. Callers fold unknown
// names into "unknown" to keep cardinality bounded.
func (m *Metrics) RecordCommand(name string) {
	m.TerminalCommands.WithLabelValues(name).Inc()
	m.mu.Lock()
	m.snapshot.TotalCommands++
	m.mu.Unlock()
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncSessions marks a terminal session as connected.
func (m *Metrics) IncSessions() {
	m.TerminalSessions.Inc()
	m.mu.Lock()
	m.snapshot.ActiveSessions++
	m.mu.Unlock()
}

// DecSessions marks a terminal session as disconnected.
func (m *Metrics) DecSessions() {
	m.TerminalSessions.Dec()
	m.mu.Lock()
	m.snapshot.ActiveSessions--
	m.mu.Unlock()
}

// RecordContact counts a contact submission ("accepted", "invalid", "failed").
func (m *Metrics) RecordContact(outcome string) {
	m.ContactSubmissions.WithLabelValues(outcome).Inc()
}

// RecordEmail counts a notification delivery attempt.
func (m *Metrics) RecordEmail(kind string, err error) {
	outcome := "sent"
	if err != nil {
		outcome = "failed"
	}
	m.EmailsSent.WithLabelValues(kind, outcome).Inc()
}

// RecordRateLimited counts a rejected request.
func (m *Metrics) RecordRateLimited(rule string) {
	m.RateLimited.WithLabelValues(rule).Inc()
}

// Snapshot returns a copy of the summary counters.
func (m *Metrics) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.snapshot
	if s.TotalRequests > 0 {
		s.AvgDurationMS = s.totalDuration / float64(s.TotalRequests) * 1000
	}
	s.UptimeSeconds = time.Since(m.startTime).Seconds()
	return s
}
