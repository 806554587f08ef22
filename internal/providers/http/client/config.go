package client

import "time"

// Config configures a Client
type Config struct {
	// Timeout bounds a single attempt
	Timeout time.Duration
	// MaxRetries is the number of retries after a failed attempt. Connection
	// errors, 429 and most 5xx replies are retried.
	MaxRetries   int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	// RateLimit is requests per second; zero or less is unlimited
	RateLimit float64
	// FollowRedirects makes the client chase Location headers itself.
	// Off by default so the session sees every hop.
	FollowRedirects bool
	MaxRedirects    int
	// Proxy is an optional http(s) or socks5 proxy URL
	Proxy              string
	InsecureSkipVerify bool
	// BreakerFailures consecutive transport failures open the breaker
	BreakerFailures uint32
	// BreakerTimeout is how long the breaker stays open
	BreakerTimeout time.Duration
}

// DefaultConfig returns a conservative client configuration
func DefaultConfig() Config {
	return Config{
		Timeout:         30 * time.Second,
		MaxRetries:      2,
		RetryWaitMin:    500 * time.Millisecond,
		RetryWaitMax:    5 * time.Second,
		MaxRedirects:    10,
		BreakerFailures: 10,
		BreakerTimeout:  30 * time.Second,
	}
}
