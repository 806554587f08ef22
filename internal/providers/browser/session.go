package browser

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/websession/internal/infrastructure/logging"
	"github.com/GriffinCanCode/websession/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/websession/internal/providers/browser/cookie"
	"github.com/GriffinCanCode/websession/internal/providers/browser/response"
	"github.com/GriffinCanCode/websession/internal/shared/id"
)

// User agents of a desktop and a mobile browser
const (
	UserAgentDesktop = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/86.0.4240.183 Safari/537.36"
	UserAgentMobile  = "Mozilla/5.0 (iPhone; CPU iPhone OS 13_2_3 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/13.0.3 Mobile/15E148 Safari/604.1"
)

// Encoding selects how Post encodes its data
type Encoding int

const (
	// EncodingForm sends application/x-www-form-urlencoded fields
	EncodingForm Encoding = iota + 1
	// EncodingPayload sends a single JSON document
	EncodingPayload
)

func (e Encoding) String() string {
	switch e {
	case EncodingForm:
		return "form"
	case EncodingPayload:
		return "payload"
	default:
		return "unknown"
	}
}

// Request is what the session hands to its transport
type Request struct {
	Method string
	// URL is already resolved
	URL string
	// Headers are "Name: value" lines, including the cookie line
	Headers []string
	// Referer is empty on the first request
	Referer     string
	Body        []byte
	ContentType string
}

// Transport executes one request and returns the raw response: status
// line, header lines, a blank line and the body.
type Transport interface {
	Do(ctx context.Context, req *Request) ([]byte, error)
	Close() error
}

// TransportFactory creates the session's transport on first use
type TransportFactory func() (Transport, error)

// Session is a browser bound to one host. It carries headers, cookies and
// the referer chain across requests. Requests on one session are
// serialized.
type Session struct {
	id     id.SessionID
	host   string
	scheme string

	mu            sync.Mutex
	lastPage      string
	lastURL       string
	history       []string
	cookieEnabled bool
	headers       *Headers
	jar           *cookie.Jar
	newTransport  TransportFactory
	transport     Transport
	closed        bool

	cookieCfg  cookie.Config
	cookieOpts []cookie.Option
	parser     response.Parser
	logger     *logging.Logger
	metrics    *monitoring.Metrics
}

// New creates a session bound to host
func New(host string, opts ...Option) *Session {
	s := &Session{
		id:            id.NewSessionID(),
		host:          host,
		scheme:        "http",
		cookieEnabled: true,
		headers:       NewHeaders(),
		cookieCfg:     cookie.DefaultConfig(),
		logger:        logging.NewNop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.logger = s.logger.ForSession(s.id.String(), host)
	if s.jar == nil {
		jarOpts := append([]cookie.Option{cookie.WithLogger(s.logger)}, s.cookieOpts...)
		s.jar = cookie.NewJar(host, s.cookieCfg, jarOpts...)
	}
	s.metrics.SessionOpened()

	return s
}

// Get requests url
func (s *Session) Get(ctx context.Context, rawURL string) (*response.Response, error) {
	return s.execute(ctx, rawURL, nil, EncodingForm)
}

// Post sends data to url. Empty data makes it a GET.
func (s *Session) Post(ctx context.Context, rawURL string, data map[string]any, enc Encoding) (*response.Response, error) {
	return s.execute(ctx, rawURL, data, enc)
}

// Submit sends a form the way a browser would: its default values,
// overridden by data, to the form action. An empty action targets the
// current page. GET forms carry the values in the query string.
func (s *Session) Submit(ctx context.Context, form response.Form, data map[string]any) (*response.Response, error) {
	target := form.Action
	if target == "" {
		target = s.LastURL()
	}

	values := form.Values()
	for name, value := range data {
		values[name] = value
	}

	if form.Method == http.MethodPost {
		enc := EncodingForm
		if strings.Contains(form.Enctype, "json") {
			enc = EncodingPayload
		}
		return s.Post(ctx, target, values, enc)
	}

	if query := formValues(values).Encode(); query != "" {
		target, _, _ = strings.Cut(target, "?")
		target += "?" + query
	}
	return s.Get(ctx, target)
}

// execute runs one request cycle. History and the referer chain only move
// when the transport returned bytes; the HTTP status does not matter.
func (s *Session) execute(ctx context.Context, rawURL string, data map[string]any, enc Encoding) (*response.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSessionClosed
	}

	req, err := s.buildRequest(rawURL, data, enc)
	if err != nil {
		return nil, err
	}

	transport, err := s.transportLocked()
	if err != nil {
		return nil, err
	}

	log := s.logger.With(
		zap.String("request_id", id.NewRequestID().String()),
		zap.String("method", req.Method),
		zap.String("url", req.URL),
	)
	log.Debug("Sending request")
	timer := monitoring.NewTimer(s.metrics, req.Method)

	raw, err := transport.Do(ctx, req)
	if err != nil {
		timer.Failed("transport")
		log.Debug("Request failed", zap.Error(err))
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL, err)
	}
	if len(raw) == 0 {
		timer.Failed("empty")
		log.Debug("Request returned no bytes")
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL, ErrEmptyResponse)
	}

	var jar response.CookieSetter
	if s.cookieEnabled {
		jar = s.jar
	}
	header, body := response.SplitRaw(raw)
	resp := s.parser.Parse(header, body, jar)

	s.history = append(s.history, rawURL)
	s.lastPage = rawURL
	s.lastURL = req.URL

	if s.cookieEnabled {
		s.metrics.RecordCookies(countCookies(resp.Cookies))
	}
	timer.Done(resp.StatusCode, len(raw))
	log.Debug("Request completed",
		zap.Int("status", resp.StatusCode),
		zap.Int("cookies", len(resp.Cookies)),
		zap.Duration("duration", timer.Elapsed()),
	)

	return resp, nil
}

func (s *Session) buildRequest(rawURL string, data map[string]any, enc Encoding) (*Request, error) {
	req := &Request{
		Method:  http.MethodGet,
		URL:     Resolve(rawURL, s.host, s.scheme, s.lastURL),
		Headers: s.headers.Lines(),
		Referer: s.lastURL,
	}

	if s.cookieEnabled {
		if line := s.jar.String(); line != "" {
			req.Headers = append(req.Headers, "cookie: "+line)
		}
	}

	if len(data) > 0 {
		body, contentType, err := encodeBody(data, enc)
		if err != nil {
			return nil, err
		}
		req.Method = http.MethodPost
		req.Body = body
		req.ContentType = contentType
	}

	return req, nil
}

func encodeBody(data map[string]any, enc Encoding) ([]byte, string, error) {
	if enc == EncodingPayload {
		body, err := sonic.Marshal(data)
		if err != nil {
			return nil, "", fmt.Errorf("failed to encode payload: %w", err)
		}
		return body, "application/json", nil
	}

	return []byte(formValues(data).Encode()), "application/x-www-form-urlencoded", nil
}

// formValues flattens data into form fields. Slices become repeated
// fields and nil an empty one.
func formValues(data map[string]any) url.Values {
	form := url.Values{}
	for name, value := range data {
		switch v := value.(type) {
		case []string:
			for _, item := range v {
				form.Add(name, item)
			}
		case []any:
			for _, item := range v {
				form.Add(name, fmt.Sprint(item))
			}
		case nil:
			form.Add(name, "")
		default:
			form.Add(name, fmt.Sprint(v))
		}
	}
	return form
}

func (s *Session) transportLocked() (Transport, error) {
	if s.transport != nil {
		return s.transport, nil
	}
	if s.newTransport == nil {
		return nil, ErrNoTransport
	}

	t, err := s.newTransport()
	if err != nil {
		return nil, fmt.Errorf("failed to create transport: %w", err)
	}
	s.transport = t
	return t, nil
}

func countCookies(cookies []response.Cookie) (stored, deleted int) {
	for _, c := range cookies {
		if c.TTL < 0 {
			deleted++
		} else {
			stored++
		}
	}
	return stored, deleted
}

// Close releases the transport. It is safe to call more than once; later
// requests fail with ErrSessionClosed.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.metrics.SessionClosed()

	if s.transport == nil {
		return nil
	}
	err := s.transport.Close()
	s.transport = nil
	s.logger.Debug("Session closed", zap.Int("requests", len(s.history)), zap.Error(err))
	if err != nil {
		return fmt.Errorf("failed to close transport: %w", err)
	}
	return nil
}

func (s *Session) ID() id.SessionID {
	return s.id
}

func (s *Session) Host() string {
	return s.host
}

func (s *Session) Scheme() string {
	return s.scheme
}

// LastPage returns the URL the caller passed for the last request
func (s *Session) LastPage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPage
}

// LastURL returns the resolved form of LastPage, used as referer
func (s *Session) LastURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastURL
}

// History returns a copy of the requested URLs, oldest first
func (s *Session) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.history))
	copy(out, s.history)
	return out
}

// Headers returns the live header set. Do not modify it while a request
// is in flight; use SetHeader for that.
func (s *Session) Headers() *Headers {
	return s.headers
}

// SetHeader sets or, with an empty value, removes a header
func (s *Session) SetHeader(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.headers.Set(name, value)
}

func (s *Session) Jar() *cookie.Jar {
	return s.jar
}

func (s *Session) SetCookieEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cookieEnabled = enabled
}

func (s *Session) CookieEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cookieEnabled
}

// Closed reports whether Close has been called
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
