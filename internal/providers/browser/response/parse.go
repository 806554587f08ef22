package response

import (
	"bytes"
	"mime"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

// CookieSetter receives the cookies found in Set-Cookie headers.
// *cookie.Jar satisfies it.
type CookieSetter interface {
	SetExpiry(name, value string, ttl time.Duration)
}

// Parser turns raw header blocks into Responses. The zero value uses the
// wall clock; Now is only replaced in tests.
type Parser struct {
	Now func() time.Time
}

// Parse parses with the default Parser.
func Parse(header, body string, jar CookieSetter) *Response {
	return Parser{}.Parse(header, body, jar)
}

// ParseRaw splits a raw response and parses it with the default Parser.
func ParseRaw(raw []byte, jar CookieSetter) *Response {
	header, body := SplitRaw(raw)
	return Parser{}.Parse(header, body, jar)
}

// SplitRaw cuts raw response bytes at the first blank line. Without a
// blank line the whole input is treated as the header block.
func SplitRaw(raw []byte) (header, body string) {
	if i := bytes.Index(raw, []byte("\r\n\r\n")); i >= 0 {
		return string(raw[:i]), string(raw[i+4:])
	}
	if i := bytes.Index(raw, []byte("\n\n")); i >= 0 {
		return string(raw[:i]), string(raw[i+2:])
	}
	return string(raw), ""
}

// Parse builds a Response from a header block and a body. Set-Cookie
// lines go to jar, when given, and never into Headers. Malformed lines are
// skipped; an unparsable status line leaves the status fields zero.
func (p Parser) Parse(header, body string, jar CookieSetter) *Response {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}

	r := &Response{
		Headers: make(map[string]string),
		Body:    body,
	}

	lines := strings.Split(strings.ReplaceAll(header, "\r\n", "\n"), "\n")
	if len(lines) > 0 {
		r.Protocol, r.StatusCode, r.StatusText = parseStatusLine(lines[0])
		lines = lines[1:]
	}

	for _, line := range lines {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		value = strings.TrimSpace(value)
		if name == "" {
			continue
		}

		if name == "set-cookie" {
			c, ok := parseSetCookie(value, now())
			if !ok {
				continue
			}
			r.Cookies = append(r.Cookies, c)
			if jar != nil {
				jar.SetExpiry(c.Name, c.Value, c.TTL)
			}
			continue
		}

		r.Headers[name] = value
	}

	r.decodeBody()
	return r
}

// parseStatusLine splits "HTTP/1.1 404 Not Found". Anything that does not
// look like a status line yields zero values.
func parseStatusLine(line string) (proto string, code int, text string) {
	parts := strings.SplitN(strings.TrimSpace(line), " ", 3)
	if len(parts) < 2 || !strings.HasPrefix(strings.ToUpper(parts[0]), "HTTP/") {
		return "", 0, ""
	}

	code, err := strconv.Atoi(parts[1])
	if err != nil || code < 100 || code > 999 {
		return "", 0, ""
	}

	if len(parts) == 3 {
		text = strings.TrimSpace(parts[2])
	}
	return parts[0], code, text
}

// decodeBody fills Data for JSON responses. Malformed JSON leaves Data nil.
func (r *Response) decodeBody() {
	if !strings.EqualFold(r.MediaType(), "application/json") {
		return
	}

	var data any
	if err := sonic.UnmarshalString(r.Body, &data); err != nil {
		return
	}
	r.Data = data
}

// MediaType returns the declared content type without parameters,
// lower-cased, or "" when the response has none.
func (r *Response) MediaType() string {
	ct := r.Headers["content-type"]
	if ct == "" {
		return ""
	}
	if mt, _, err := mime.ParseMediaType(ct); err == nil {
		return mt
	}
	mt, _, _ := strings.Cut(ct, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}
