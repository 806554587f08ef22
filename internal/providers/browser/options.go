package browser

import (
	"time"

	"github.com/GriffinCanCode/websession/internal/infrastructure/logging"
	"github.com/GriffinCanCode/websession/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/websession/internal/providers/browser/cookie"
)

// Option configures a Session
type Option func(*Session)

// WithScheme sets the scheme used to resolve relative links. Empty means http.
func WithScheme(scheme string) Option {
	return func(s *Session) {
		if scheme != "" {
			s.scheme = scheme
		}
	}
}

// WithTransport sets the factory called on the first request
func WithTransport(factory TransportFactory) Option {
	return func(s *Session) {
		s.newTransport = factory
	}
}

// WithJar uses an existing jar instead of creating one for the host
func WithJar(jar *cookie.Jar) Option {
	return func(s *Session) {
		s.jar = jar
	}
}

// WithCookieConfig configures the jar the session creates for its host.
// Ignored when WithJar is given.
func WithCookieConfig(cfg cookie.Config, opts ...cookie.Option) Option {
	return func(s *Session) {
		s.cookieCfg = cfg
		s.cookieOpts = append(s.cookieOpts, opts...)
	}
}

// WithCookies turns the cookie header and Set-Cookie handling on or off
func WithCookies(enabled bool) Option {
	return func(s *Session) {
		s.cookieEnabled = enabled
	}
}

// WithHeaders merges headers into the session's header set
func WithHeaders(headers map[string]string) Option {
	return func(s *Session) {
		s.headers.Merge(headers)
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) Option {
	return func(s *Session) {
		s.headers.Set("User-Agent", ua)
	}
}

func WithLogger(logger *logging.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(metrics *monitoring.Metrics) Option {
	return func(s *Session) {
		s.metrics = metrics
	}
}

// WithClock replaces the clock used for cookie expiry
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.parser.Now = now
		s.cookieOpts = append(s.cookieOpts, cookie.WithClock(now))
	}
}
