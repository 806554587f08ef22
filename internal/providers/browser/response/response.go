package response

import (
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Response is one parsed HTTP response. Fields are plain data so callers
// can read and adjust them freely.
type Response struct {
	// Protocol is the status line protocol, e.g. "HTTP/1.1"
	Protocol string
	// StatusCode is zero when the status line could not be parsed
	StatusCode int
	StatusText string
	// Headers holds every non Set-Cookie header under its lower-cased name
	Headers map[string]string
	// Cookies lists the Set-Cookie entries seen, in order
	Cookies []Cookie
	// Body is the raw response body
	Body string
	// Data is the decoded body for application/json responses, nil otherwise
	Data any

	docOnce sync.Once
	doc     *goquery.Document
	docErr  error
}

// Cookie is a Set-Cookie entry as understood by the parser.
type Cookie struct {
	Name  string
	Value string
	// TTL is the relative expiry handed to the jar: zero for session
	// cookies, negative for cookies that are already expired
	TTL time.Duration
}

// Header returns a header value by name, case-insensitively.
func (r *Response) Header(name string) string {
	return r.Headers[strings.ToLower(name)]
}

// OK reports a 2xx status
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsRedirect reports a 3xx status
func (r *Response) IsRedirect() bool {
	return r.StatusCode >= 300 && r.StatusCode < 400
}

// IsClientError reports a 4xx status
func (r *Response) IsClientError() bool {
	return r.StatusCode >= 400 && r.StatusCode < 500
}

// IsServerError reports a 5xx status
func (r *Response) IsServerError() bool {
	return r.StatusCode >= 500 && r.StatusCode < 600
}

// Location returns the redirect target, if any
func (r *Response) Location() string {
	return r.Headers["location"]
}
