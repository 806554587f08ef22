package client

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/websession/internal/infrastructure/logging"
	"github.com/GriffinCanCode/websession/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/websession/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/websession/internal/providers/browser"
)

// Client is the network transport of a browser session: resty on top of a
// retrying round tripper, guarded by a rate limiter and a circuit breaker.
// It never stores cookies; the session owns them.
type Client struct {
	resty   *resty.Client
	retry   *retryablehttp.Client
	limiter *rate.Limiter
	breaker *resilience.Breaker
	logger  *logging.Logger
	metrics *monitoring.Metrics
}

var _ browser.Transport = (*Client)(nil)

// New creates a client from cfg
func New(cfg Config, logger *logging.Logger, metrics *monitoring.Metrics) (*Client, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.Named("transport")

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.Logger = leveledLogger{logger.Sugar()}
	// 4xx/5xx pages are answers, not failures
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.CheckRetry = checkRetry
	retryClient.HTTPClient.Timeout = cfg.Timeout
	retryClient.HTTPClient.CheckRedirect = redirectPolicy(cfg)

	if err := configureTransport(retryClient.HTTPClient, cfg); err != nil {
		return nil, err
	}

	restyClient := resty.NewWithClient(&http.Client{
		Transport: &retryablehttp.RoundTripper{Client: retryClient},
	})
	restyClient.
		SetCookieJar(nil).
		SetRetryCount(0).
		SetRedirectPolicy(resty.RedirectPolicyFunc(redirectPolicy(cfg)))

	c := &Client{
		resty:   restyClient,
		retry:   retryClient,
		limiter: newLimiter(cfg.RateLimit),
		logger:  logger,
		metrics: metrics,
	}

	threshold := cfg.BreakerFailures
	if threshold == 0 {
		threshold = 10
	}
	c.breaker = resilience.New("transport", resilience.Settings{
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsFailure: func(err error) bool {
			return err != nil && !errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to),
			)
			metrics.SetBreakerState(name, int(to))
		},
	})

	return c, nil
}

// Factory returns a browser.TransportFactory building clients from cfg
func Factory(cfg Config, logger *logging.Logger, metrics *monitoring.Metrics) browser.TransportFactory {
	return func() (browser.Transport, error) {
		return New(cfg, logger, metrics)
	}
}

type noRetryKey struct{}

// idempotent reports whether method may be replayed after a failure.
// A browser never resubmits a POST on its own.
func idempotent(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace,
		http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if noRetry, _ := ctx.Value(noRetryKey{}).(bool); noRetry {
		return false, ctx.Err()
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

func redirectPolicy(cfg Config) func(*http.Request, []*http.Request) error {
	if !cfg.FollowRedirects {
		return func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	limit := cfg.MaxRedirects
	if limit <= 0 {
		limit = 10
	}
	return func(_ *http.Request, via []*http.Request) error {
		if len(via) >= limit {
			return fmt.Errorf("stopped after %d redirects", limit)
		}
		return nil
	}
}

// configureTransport applies proxy and TLS settings to the pooled transport
// that performs the actual dialing.
func configureTransport(hc *http.Client, cfg Config) error {
	transport, ok := hc.Transport.(*http.Transport)
	if !ok {
		return fmt.Errorf("unexpected transport type %T", hc.Transport)
	}

	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return fmt.Errorf("invalid proxy URL: %w", err)
		}
		switch proxyURL.Scheme {
		case "http", "https", "socks5":
		default:
			return fmt.Errorf("unsupported proxy scheme %q", proxyURL.Scheme)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in
	}
	return nil
}

// Do executes req and returns the raw response
func (c *Client) Do(ctx context.Context, req *browser.Request) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit error: %w", err)
	}

	var raw []byte
	err := c.breaker.Execute(func() error {
		var err error
		raw, err = c.roundTrip(ctx, req)
		return err
	})
	if errors.Is(err, resilience.ErrCircuitOpen) || errors.Is(err, resilience.ErrTooManyRequests) {
		return nil, fmt.Errorf("transport unavailable: %w", err)
	}
	return raw, err
}

func (c *Client) roundTrip(ctx context.Context, req *browser.Request) ([]byte, error) {
	if !idempotent(req.Method) {
		ctx = context.WithValue(ctx, noRetryKey{}, true)
	}
	r := c.resty.R().
		SetContext(ctx).
		SetDoNotParseResponse(true)

	for _, line := range req.Headers {
		name, value, ok := strings.Cut(line, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			continue
		}
		r.Header.Add(name, strings.TrimSpace(value))
	}
	if req.Referer != "" {
		r.SetHeader("Referer", req.Referer)
	}
	if len(req.Body) > 0 {
		r.SetBody(req.Body)
		if req.ContentType != "" {
			r.SetHeader("Content-Type", req.ContentType)
		}
	}

	resp, err := r.Execute(req.Method, req.URL)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	raw := resp.RawResponse
	if raw == nil {
		return nil, errors.New("request failed: no response")
	}
	body := resp.RawBody()
	defer body.Close()

	decoded, err := decodeBody(raw.Header, body, maxBodySize)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Transport round trip",
		zap.String("method", req.Method),
		zap.String("url", req.URL),
		zap.Int("status", raw.StatusCode),
		zap.Int("bytes", len(decoded)),
	)

	return dumpResponse(raw, decoded), nil
}

// BreakerState returns the current circuit breaker state
func (c *Client) BreakerState() resilience.State {
	return c.breaker.State()
}

// BreakerCounts returns circuit breaker statistics
func (c *Client) BreakerCounts() resilience.Counts {
	return c.breaker.Counts()
}

// Close drops idle connections. The client stays usable.
func (c *Client) Close() error {
	c.resty.GetClient().CloseIdleConnections()
	c.retry.HTTPClient.CloseIdleConnections()
	return nil
}

// leveledLogger adapts zap to retryablehttp.LeveledLogger. Per-attempt
// chatter goes to debug.
type leveledLogger struct {
	l *zap.SugaredLogger
}

func (l leveledLogger) Error(msg string, kv ...interface{}) { l.l.Errorw(msg, kv...) }
func (l leveledLogger) Warn(msg string, kv ...interface{})  { l.l.Warnw(msg, kv...) }
func (l leveledLogger) Info(msg string, kv ...interface{})  { l.l.Debugw(msg, kv...) }
func (l leveledLogger) Debug(msg string, kv ...interface{}) { l.l.Debugw(msg, kv...) }
