package resilience

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFailed = errors.New("failed")

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *clock {
	return &clock{t: time.Unix(1_700_000_000, 0)}
}

func succeed() error { return nil }

func fail() error { return errFailed }

func tripAfter(n uint32) func(Counts) bool {
	return func(c Counts) bool { return c.ConsecutiveFailures >= n }
}

func TestBreakerStateTransitions(t *testing.T) {
	tests := []struct {
		name          string
		settings      Settings
		requests      []bool // true = success, false = failure
		expectedState State
	}{
		{
			name:          "stays closed on successes",
			settings:      Settings{MaxRequests: 1, Interval: time.Minute, Timeout: time.Minute},
			requests:      []bool{true, true, true},
			expectedState: StateClosed,
		},
		{
			name:          "opens after consecutive failures",
			settings:      Settings{ReadyToTrip: tripAfter(3)},
			requests:      []bool{false, false, false},
			expectedState: StateOpen,
		},
		{
			name:          "success resets the failure streak",
			settings:      Settings{ReadyToTrip: tripAfter(3)},
			requests:      []bool{false, false, true, false, false},
			expectedState: StateClosed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			breaker := New("test", tt.settings)

			for _, success := range tt.requests {
				if success {
					_ = breaker.Execute(succeed)
				} else {
					_ = breaker.Execute(fail)
				}
			}

			assert.Equal(t, tt.expectedState, breaker.State())
		})
	}
}

func TestBreakerCounts(t *testing.T) {
	breaker := New("test", Settings{})

	require.NoError(t, breaker.Execute(succeed))

	counts := breaker.Counts()
	assert.Equal(t, uint32(1), counts.Requests)
	assert.Equal(t, uint32(1), counts.TotalSuccesses)
	assert.Equal(t, uint32(1), counts.ConsecutiveSuccesses)
	assert.Equal(t, uint32(0), counts.TotalFailures)

	assert.ErrorIs(t, breaker.Execute(fail), errFailed)

	counts = breaker.Counts()
	assert.Equal(t, uint32(2), counts.Requests)
	assert.Equal(t, uint32(1), counts.TotalFailures)
	assert.Equal(t, uint32(1), counts.ConsecutiveFailures)
	assert.Equal(t, uint32(0), counts.ConsecutiveSuccesses)
	assert.InDelta(t, 0.5, counts.FailureRatio(), 1e-9)
}

func TestBreakerIntervalClearsCounts(t *testing.T) {
	clk := newClock()
	breaker := New("test", Settings{Interval: time.Minute, Now: clk.Now})

	_ = breaker.Execute(fail)
	assert.Equal(t, uint32(1), breaker.Counts().TotalFailures)

	clk.Advance(time.Minute + time.Second)
	assert.Equal(t, StateClosed, breaker.State())
	assert.Equal(t, Counts{}, breaker.Counts())
}

func TestBreakerOpenState(t *testing.T) {
	breaker := New("test", Settings{ReadyToTrip: tripAfter(2)})

	for i := 0; i < 2; i++ {
		_ = breaker.Execute(fail)
	}
	assert.Equal(t, StateOpen, breaker.State())

	called := false
	err := breaker.Execute(func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestBreakerHalfOpenState(t *testing.T) {
	clk := newClock()
	breaker := New("test", Settings{
		MaxRequests: 2,
		Timeout:     30 * time.Second,
		ReadyToTrip: tripAfter(2),
		Now:         clk.Now,
	})

	for i := 0; i < 2; i++ {
		_ = breaker.Execute(fail)
	}
	assert.Equal(t, StateOpen, breaker.State())

	clk.Advance(31 * time.Second)
	assert.Equal(t, StateHalfOpen, breaker.State())

	for i := 0; i < 2; i++ {
		require.NoError(t, breaker.Execute(succeed))
	}
	assert.Equal(t, StateClosed, breaker.State())
}

func TestBreakerHalfOpenLimitsProbes(t *testing.T) {
	clk := newClock()
	breaker := New("test", Settings{
		MaxRequests: 1,
		Timeout:     time.Second,
		ReadyToTrip: tripAfter(1),
		Now:         clk.Now,
	})

	_ = breaker.Execute(fail)
	clk.Advance(2 * time.Second)

	err := breaker.Execute(func() error {
		// a second caller arrives while the probe is in flight
		assert.ErrorIs(t, breaker.Execute(succeed), ErrTooManyRequests)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, StateClosed, breaker.State())
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	clk := newClock()
	breaker := New("test", Settings{
		Timeout:     time.Second,
		ReadyToTrip: tripAfter(1),
		Now:         clk.Now,
	})

	_ = breaker.Execute(fail)
	clk.Advance(2 * time.Second)
	require.Equal(t, StateHalfOpen, breaker.State())

	_ = breaker.Execute(fail)
	assert.Equal(t, StateOpen, breaker.State())
}

func TestBreakerIsFailure(t *testing.T) {
	ignored := errors.New("not found")
	breaker := New("test", Settings{
		ReadyToTrip: tripAfter(1),
		IsFailure: func(err error) bool {
			return err != nil && !errors.Is(err, ignored)
		},
	})

	assert.ErrorIs(t, breaker.Execute(func() error { return ignored }), ignored)
	assert.Equal(t, StateClosed, breaker.State())
	assert.Equal(t, uint32(1), breaker.Counts().TotalSuccesses)
}

func TestBreakerCallbacks(t *testing.T) {
	clk := newClock()
	var transitions []string

	breaker := New("test", Settings{
		Timeout:     10 * time.Second,
		ReadyToTrip: tripAfter(2),
		Now:         clk.Now,
		OnStateChange: func(name string, from State, to State) {
			assert.Equal(t, "test", name)
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})

	for i := 0; i < 2; i++ {
		_ = breaker.Execute(fail)
	}
	clk.Advance(11 * time.Second)
	require.NoError(t, breaker.Execute(succeed))

	assert.Equal(t, []string{"closed->open", "open->half-open", "half-open->closed"}, transitions)
}

func TestBreakerPanicCountsAsFailure(t *testing.T) {
	breaker := New("test", Settings{ReadyToTrip: tripAfter(1)})

	assert.Panics(t, func() {
		_ = breaker.Execute(func() error { panic("boom") })
	})
	assert.Equal(t, StateOpen, breaker.State())
}
