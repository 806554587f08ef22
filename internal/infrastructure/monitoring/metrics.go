package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for browser sessions. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec
	TransportErrors *prometheus.CounterVec

	// Cookie metrics
	CookiesStored  prometheus.Counter
	CookiesDeleted prometheus.Counter

	// Session metrics
	SessionsActive prometheus.Gauge
	SessionsTotal  prometheus.Counter

	// Transport breaker state: 0 closed, 1 half-open, 2 open
	BreakerState *prometheus.GaugeVec

	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds running totals for quick summaries without scraping
type Snapshot struct {
	TotalRequests   int64
	TotalErrors     int64
	TransportErrors int64
	ActiveSessions  int64
	TotalDuration   float64 // sum of request durations in seconds
}

// AverageDuration returns the mean request duration
func (s Snapshot) AverageDuration() time.Duration {
	if s.TotalRequests == 0 {
		return 0
	}
	return time.Duration(s.TotalDuration / float64(s.TotalRequests) * float64(time.Second))
}

// NewMetrics registers the collectors on reg. Pass prometheus.DefaultRegisterer
// in a long running process, or a fresh registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "websession_requests_total",
				Help: "Total number of parsed responses by method and status code",
			},
			[]string{"method", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "websession_request_duration_seconds",
				Help:    "Round trip duration of session requests in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"method"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "websession_response_size_bytes",
				Help:    "Size of raw responses in bytes",
				Buckets: prometheus.ExponentialBuckets(256, 4, 8),
			},
			[]string{"method"},
		),
		TransportErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "websession_transport_errors_total",
				Help: "Requests that produced no response bytes",
			},
			[]string{"method", "reason"},
		),
		CookiesStored: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "websession_cookies_stored_total",
				Help: "Cookies stored from Set-Cookie headers",
			},
		),
		CookiesDeleted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "websession_cookies_deleted_total",
				Help: "Cookies deleted by expired Set-Cookie headers",
			},
		),
		SessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "websession_sessions_active",
				Help: "Number of open sessions",
			},
		),
		SessionsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "websession_sessions_total",
				Help: "Total number of sessions created",
			},
		),
		BreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "websession_breaker_state",
				Help: "Transport circuit breaker state (0 closed, 1 half-open, 2 open)",
			},
			[]string{"name"},
		),
	}
}

// RecordRequest records a request whose response was parsed
func (m *Metrics) RecordRequest(method string, status int, duration time.Duration, size int) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(duration.Seconds())
	m.ResponseSize.WithLabelValues(method).Observe(float64(size))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.TotalDuration += duration.Seconds()
	if status >= 400 || status == 0 {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordTransportError records a request that returned no bytes
func (m *Metrics) RecordTransportError(method, reason string) {
	if m == nil {
		return
	}
	m.TransportErrors.WithLabelValues(method, reason).Inc()

	m.mu.Lock()
	m.snapshot.TransportErrors++
	m.mu.Unlock()
}

// RecordCookies records cookies stored and deleted by one response
func (m *Metrics) RecordCookies(stored, deleted int) {
	if m == nil {
		return
	}
	m.CookiesStored.Add(float64(stored))
	m.CookiesDeleted.Add(float64(deleted))
}

// SessionOpened tracks a newly created session
func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.SessionsTotal.Inc()
	m.SessionsActive.Inc()

	m.mu.Lock()
	m.snapshot.ActiveSessions++
	m.mu.Unlock()
}

// SessionClosed tracks a closed session
func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.SessionsActive.Dec()

	m.mu.Lock()
	m.snapshot.ActiveSessions--
	m.mu.Unlock()
}

// SetBreakerState exports the numeric state of a named breaker
func (m *Metrics) SetBreakerState(name string, state int) {
	if m == nil {
		return
	}
	m.BreakerState.WithLabelValues(name).Set(float64(state))
}

// Snapshot returns a copy of the running totals
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}
