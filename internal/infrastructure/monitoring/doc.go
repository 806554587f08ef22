/*
Package monitoring provides Prometheus metrics for browser sessions.

Collectors are registered on a caller supplied prometheus.Registerer so
several Metrics values can coexist in tests.

# Usage

	metrics := monitoring.NewMetrics(prometheus.DefaultRegisterer)

	timer := monitoring.NewTimer(metrics, "GET")
	raw, err := transport.Do(ctx, req)
	if err != nil {
		timer.Failed("transport")
		return err
	}
	timer.Done(resp.StatusCode, len(raw))

# Metrics

  - websession_requests_total{method,status}
  - websession_request_duration_seconds{method}
  - websession_response_size_bytes{method}
  - websession_transport_errors_total{method,reason}
  - websession_cookies_stored_total, websession_cookies_deleted_total
  - websession_sessions_active, websession_sessions_total
  - websession_breaker_state{name}

A nil *Metrics records nothing, so callers never need to check.
*/
package monitoring
