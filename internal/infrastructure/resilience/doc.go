/*
Package resilience provides the circuit breaker used by the HTTP transport.

# States

  - Closed: requests pass through, counts reset every Interval
  - Open: requests fail with ErrCircuitOpen until Timeout elapses
  - Half-Open: up to MaxRequests probes; enough successes close the
    breaker, any failure opens it again

	Closed --[ReadyToTrip]-> Open --[Timeout]-> Half-Open --[successes]-> Closed
	                                               |
	                                           [failure]
	                                               v
	                                             Open

# Usage

	breaker := resilience.New("transport", resilience.Settings{
		MaxRequests: 3,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c resilience.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
	})

	err := breaker.Execute(func() error {
		return doRequest()
	})

IsFailure decides which errors count; Now can be replaced for tests.
*/
package resilience
