package monitoring

import "time"

// Timer measures one request
type Timer struct {
	start   time.Time
	metrics *Metrics
	method  string
}

// NewTimer starts timing a request
func NewTimer(metrics *Metrics, method string) *Timer {
	return &Timer{
		start:   time.Now(),
		metrics: metrics,
		method:  method,
	}
}

// Elapsed returns the time since the timer started
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}

// Done records a parsed response
func (t *Timer) Done(status, size int) {
	t.metrics.RecordRequest(t.method, status, t.Elapsed(), size)
}

// Failed records a request that produced no response
func (t *Timer) Failed(reason string) {
	t.metrics.RecordTransportError(t.method, reason)
}
