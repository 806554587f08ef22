package response

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type setCall struct {
	name  string
	value string
	ttl   time.Duration
}

type recordingJar struct {
	calls []setCall
}

func (j *recordingJar) SetExpiry(name, value string, ttl time.Duration) {
	j.calls = append(j.calls, setCall{name, value, ttl})
}

var fixedNow = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func testParser() Parser {
	return Parser{Now: func() time.Time { return fixedNow }}
}

func TestParseJSONWithCookie(t *testing.T) {
	header := "HTTP/1.1 200 OK\r\n" +
		"Content-Type: application/json\r\n" +
		"Set-Cookie: sid=abc123; expires=Thu, 01 Jan 2026 13:00:00 GMT; path=/"
	jar := &recordingJar{}

	resp := testParser().Parse(header, `{"ok":true}`, jar)

	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "OK", resp.StatusText)
	assert.Equal(t, "HTTP/1.1", resp.Protocol)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok, "data should decode to an object")
	assert.Equal(t, true, data["ok"])

	require.Len(t, jar.calls, 1)
	assert.Equal(t, setCall{"sid", "abc123", time.Hour}, jar.calls[0])

	assert.NotContains(t, resp.Headers, "set-cookie")
	assert.Equal(t, "application/json", resp.Headers["content-type"])
}

func TestParseStatusLine(t *testing.T) {
	tests := []struct {
		line     string
		proto    string
		code     int
		text     string
	}{
		{"HTTP/1.1 200 OK", "HTTP/1.1", 200, "OK"},
		{"HTTP/1.1 404 Not Found", "HTTP/1.1", 404, "Not Found"},
		{"HTTP/2 204", "HTTP/2", 204, ""},
		{"HTTP/1.0 500 Internal Server Error ", "HTTP/1.0", 500, "Internal Server Error"},
		{"garbage", "", 0, ""},
		{"HTTP/1.1 abc OK", "", 0, ""},
		{"HTTP/1.1 42 Too Small", "", 0, ""},
		{"", "", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			resp := Parse(tt.line, "", nil)
			assert.Equal(t, tt.proto, resp.Protocol)
			assert.Equal(t, tt.code, resp.StatusCode)
			assert.Equal(t, tt.text, resp.StatusText)
		})
	}
}

func TestParseHeaders(t *testing.T) {
	header := "HTTP/1.1 200 OK\r\n" +
		"Content-Type:  text/HTML; charset=UTF-8 \r\n" +
		"X-Custom: Keep-Case\r\n" +
		"this line has no colon\r\n" +
		": empty name\r\n" +
		"Location: http://example.com:8080/next\r\n" +
		"X-Dup: first\r\n" +
		"x-dup: second"

	resp := Parse(header, "", nil)

	assert.Equal(t, "text/HTML; charset=UTF-8", resp.Headers["content-type"])
	assert.Equal(t, "Keep-Case", resp.Headers["x-custom"])
	assert.Equal(t, "http://example.com:8080/next", resp.Location())
	assert.Equal(t, "second", resp.Header("X-Dup"))
	assert.Len(t, resp.Headers, 4)
}

func TestParseToleratesBareLF(t *testing.T) {
	resp := Parse("HTTP/1.1 301 Moved Permanently\nLocation: /new", "", nil)
	assert.Equal(t, 301, resp.StatusCode)
	assert.Equal(t, "/new", resp.Location())
	assert.True(t, resp.IsRedirect())
}

func TestParseMultipleSetCookies(t *testing.T) {
	header := "HTTP/1.1 302 Found\r\n" +
		"Set-Cookie: a=1\r\n" +
		"Set-Cookie: b=2; Max-Age=60\r\n" +
		"Set-Cookie: c=3; Expires=Wed, 31 Dec 2025 00:00:00 GMT\r\n" +
		"Set-Cookie: =nameless\r\n" +
		"Set-Cookie: novalue\r\n" +
		"SET-COOKIE: d=\"quoted\"; Max-Age=0"
	jar := &recordingJar{}

	resp := testParser().Parse(header, "", jar)

	assert.Equal(t, []setCall{
		{"a", "1", 0},
		{"b", "2", time.Minute},
		{"c", "3", -time.Second},
		{"d", "quoted", -time.Second},
	}, jar.calls)
	assert.Len(t, resp.Cookies, 4)
	assert.Empty(t, resp.Headers)
}

func TestSetCookieMaxAgeWinsOverExpires(t *testing.T) {
	now := fixedNow
	tests := []struct {
		name string
		line string
		want time.Duration
	}{
		{"expires then max-age", "s=1; Expires=Thu, 01 Jan 2026 13:00:00 GMT; Max-Age=10", 10 * time.Second},
		{"max-age then expires", "s=1; Max-Age=10; Expires=Thu, 01 Jan 2026 13:00:00 GMT", 10 * time.Second},
		{"bad max-age ignored", "s=1; Max-Age=soon; Expires=Thu, 01 Jan 2026 13:00:00 GMT", time.Hour},
		{"netscape dashed date", "s=1; expires=Thu, 01-Jan-2026 12:30:00 GMT", 30 * time.Minute},
		{"unparsable expires is session", "s=1; expires=tomorrow", 0},
		{"no attributes is session", "s=1", 0},
		{"huge max-age is kept", "s=1; Max-Age=9223372037", time.Duration(math.MaxInt64)},
		{"max-age beyond int64 is kept", "s=1; Max-Age=99999999999999999999", time.Duration(math.MaxInt64)},
		{"largest exact max-age", "s=1; Max-Age=9223372036", 9223372036 * time.Second},
		{"negative max-age beyond int64 deletes", "s=1; Max-Age=-99999999999999999999", -time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := parseSetCookie(tt.line, now)
			require.True(t, ok)
			assert.Equal(t, tt.want, c.TTL)
		})
	}
}

func TestParseWithoutJar(t *testing.T) {
	resp := Parse("HTTP/1.1 200 OK\r\nSet-Cookie: sid=abc", "", nil)
	require.Len(t, resp.Cookies, 1)
	assert.Equal(t, "sid", resp.Cookies[0].Name)
	assert.Empty(t, resp.Headers)
}

func TestJSONDecoding(t *testing.T) {
	t.Run("content type parameters are ignored", func(t *testing.T) {
		resp := Parse("HTTP/1.1 200 OK\r\nContent-Type: Application/JSON; charset=utf-8", `[1,2]`, nil)
		assert.Equal(t, []any{float64(1), float64(2)}, resp.Data)
	})

	t.Run("malformed JSON leaves data nil", func(t *testing.T) {
		resp := Parse("HTTP/1.1 200 OK\r\nContent-Type: application/json", `{"ok":`, nil)
		assert.Nil(t, resp.Data)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, `{"ok":`, resp.Body)
	})

	t.Run("other content types are not decoded", func(t *testing.T) {
		resp := Parse("HTTP/1.1 200 OK\r\nContent-Type: text/plain", `{"ok":true}`, nil)
		assert.Nil(t, resp.Data)
	})

	t.Run("missing content type is not decoded", func(t *testing.T) {
		resp := Parse("HTTP/1.1 200 OK", `{"ok":true}`, nil)
		assert.Nil(t, resp.Data)
	})
}

func TestSplitRaw(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		header string
		body   string
	}{
		{"crlf", "HTTP/1.1 200 OK\r\nA: b\r\n\r\nbody\r\n\r\nmore", "HTTP/1.1 200 OK\r\nA: b", "body\r\n\r\nmore"},
		{"lf", "HTTP/1.1 200 OK\nA: b\n\nbody", "HTTP/1.1 200 OK\nA: b", "body"},
		{"no body", "HTTP/1.1 204 No Content\r\n", "HTTP/1.1 204 No Content\r\n", ""},
		{"empty body", "HTTP/1.1 204 No Content\r\n\r\n", "HTTP/1.1 204 No Content", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header, body := SplitRaw([]byte(tt.raw))
			assert.Equal(t, tt.header, header)
			assert.Equal(t, tt.body, body)
		})
	}
}

func TestParseRaw(t *testing.T) {
	raw := []byte("HTTP/1.1 201 Created\r\nContent-Type: application/json\r\n\r\n{\"id\":7}")

	resp := ParseRaw(raw, nil)

	assert.Equal(t, 201, resp.StatusCode)
	assert.True(t, resp.OK())
	assert.Equal(t, map[string]any{"id": float64(7)}, resp.Data)
}

func TestStatusClasses(t *testing.T) {
	assert.True(t, (&Response{StatusCode: 204}).OK())
	assert.True(t, (&Response{StatusCode: 302}).IsRedirect())
	assert.True(t, (&Response{StatusCode: 404}).IsClientError())
	assert.True(t, (&Response{StatusCode: 503}).IsServerError())

	zero := &Response{}
	assert.False(t, zero.OK())
	assert.False(t, zero.IsRedirect())
	assert.False(t, zero.IsClientError())
	assert.False(t, zero.IsServerError())
}
