package browser

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/websession/internal/providers/browser/cookie"
	"github.com/GriffinCanCode/websession/internal/shared/types"
)

type providerFixture struct {
	provider  *Provider
	transport *fakeTransport
	fs        afero.Fs
}

func newProviderFixture(t *testing.T) *providerFixture {
	t.Helper()

	ft := &fakeTransport{}
	fs := afero.NewMemMapFs()
	cfg := cookie.DefaultConfig()
	cfg.AutoSave = false
	cfg.CacheDir = "/cookies"

	p := NewProvider(nil,
		WithTransport(func() (Transport, error) { return ft, nil }),
		WithCookieConfig(cfg, cookie.WithFs(fs)),
		WithClock(func() time.Time { return testNow }),
	)
	t.Cleanup(func() { _ = p.Close() })

	return &providerFixture{provider: p, transport: ft, fs: fs}
}

func (f *providerFixture) exec(t *testing.T, tool string, params map[string]any) *types.Result {
	t.Helper()
	result, err := f.provider.Execute(context.Background(), tool, params, &types.Context{})
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func (f *providerFixture) open(t *testing.T, params map[string]any) string {
	t.Helper()
	result := f.exec(t, "browser.open", params)
	require.True(t, result.Success, errorOf(result))
	return result.Data["session_id"].(string)
}

func errorOf(r *types.Result) string {
	if r.Error == nil {
		return ""
	}
	return *r.Error
}

func TestProviderDefinition(t *testing.T) {
	f := newProviderFixture(t)
	def := f.provider.Definition()

	assert.Equal(t, "browser", def.ID)
	assert.Equal(t, types.CategoryBrowser, def.Category)

	for _, id := range []string{
		"browser.open", "browser.get", "browser.post", "browser.submit", "browser.set_header",
		"browser.get_cookies", "browser.set_cookie", "browser.save_cookies",
		"browser.load_cookies", "browser.history", "browser.close",
	} {
		_, ok := def.Tool(id)
		assert.True(t, ok, id)
	}
}

func TestProviderUnknownTool(t *testing.T) {
	f := newProviderFixture(t)

	result := f.exec(t, "browser.teleport", nil)
	assert.False(t, result.Success)
	assert.Contains(t, errorOf(result), "unknown tool")
}

func TestProviderOpenValidation(t *testing.T) {
	f := newProviderFixture(t)

	tests := []map[string]any{
		{},
		{"host": ""},
		{"host": "bad host"},
		{"host": "example.com", "scheme": "ftp"},
		{"host": "example.com", "headers": map[string]any{"Bad Name": "x"}},
	}
	for _, params := range tests {
		result := f.exec(t, "browser.open", params)
		assert.False(t, result.Success, params)
	}
	assert.Equal(t, 0, f.provider.Sessions().Len())
}

func TestProviderBrowseFlow(t *testing.T) {
	f := newProviderFixture(t)
	sid := f.open(t, map[string]any{
		"host":       "example.com",
		"scheme":     "https",
		"user_agent": "mobile",
		"headers":    map[string]any{"Accept-Language": "en"},
	})

	f.transport.queue(reply{raw: "HTTP/1.1 200 OK\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"Set-Cookie: sid=abc; Max-Age=3600\r\n\r\n" +
		"<html><head><title>Home</title></head></html>"})

	result := f.exec(t, "browser.get", map[string]any{"session_id": sid, "url": "/home/index.html"})
	require.True(t, result.Success, errorOf(result))
	assert.Equal(t, 200, result.Data["status"])
	assert.Equal(t, "Home", result.Data["title"])
	assert.Equal(t, "https://example.com/home/index.html", result.Data["url"])
	assert.Equal(t, []string{"sid"}, result.Data["set_cookies"])

	req := f.transport.last()
	assert.True(t, hasHeader(req.Headers, "User-Agent: "+UserAgentMobile), req.Headers)
	assert.True(t, hasHeader(req.Headers, "Accept-Language: en"), req.Headers)

	result = f.exec(t, "browser.post", map[string]any{
		"session_id": sid,
		"url":        "login",
		"data":       map[string]any{"user": "ann"},
		"encoding":   "payload",
	})
	require.True(t, result.Success, errorOf(result))

	req = f.transport.last()
	assert.Equal(t, "https://example.com/home/login", req.URL)
	assert.Equal(t, "application/json", req.ContentType)
	assert.True(t, hasHeader(req.Headers, "cookie: sid=abc"), req.Headers)

	result = f.exec(t, "browser.history", map[string]any{"session_id": sid})
	require.True(t, result.Success)
	assert.Equal(t, []string{"/home/index.html", "login"}, result.Data["history"])
	assert.Equal(t, "login", result.Data["last_page"])
}

func TestProviderPostBadEncoding(t *testing.T) {
	f := newProviderFixture(t)
	sid := f.open(t, map[string]any{"host": "example.com"})

	result := f.exec(t, "browser.post", map[string]any{
		"session_id": sid,
		"url":        "/",
		"data":       map[string]any{"a": 1},
		"encoding":   "xml",
	})
	assert.False(t, result.Success)
	assert.Empty(t, f.transport.requests)
}

func TestProviderHeadersAndCookies(t *testing.T) {
	f := newProviderFixture(t)
	sid := f.open(t, map[string]any{"host": "example.com"})

	result := f.exec(t, "browser.set_header", map[string]any{"session_id": sid, "name": "X-Token", "value": "t"})
	require.True(t, result.Success, errorOf(result))

	result = f.exec(t, "browser.set_header", map[string]any{"session_id": sid, "name": "bad name", "value": "t"})
	assert.False(t, result.Success)

	result = f.exec(t, "browser.set_cookie", map[string]any{"session_id": sid, "name": "a", "value": "1"})
	require.True(t, result.Success, errorOf(result))
	assert.Equal(t, true, result.Data["live"])

	result = f.exec(t, "browser.set_cookie", map[string]any{"session_id": sid, "name": "s", "value": "x", "ttl": 0})
	require.True(t, result.Success)
	assert.Equal(t, false, result.Data["live"])

	result = f.exec(t, "browser.set_cookie", map[string]any{"session_id": sid, "name": "a", "value": "", "ttl": -1})
	require.True(t, result.Success)
	assert.Equal(t, false, result.Data["live"])

	f.exec(t, "browser.set_cookie", map[string]any{"session_id": sid, "name": "b", "value": "2", "ttl": 60.0})
	result = f.exec(t, "browser.get_cookies", map[string]any{"session_id": sid})
	require.True(t, result.Success)
	assert.Equal(t, map[string]string{"b": "2"}, result.Data["cookies"])
	assert.Equal(t, "b=2", result.Data["header"])

	result = f.exec(t, "browser.get", map[string]any{"session_id": sid, "url": "/"})
	require.True(t, result.Success)
	assert.True(t, hasHeader(f.transport.last().Headers, "X-Token: t"))
	assert.True(t, hasHeader(f.transport.last().Headers, "cookie: b=2"))
}

func TestProviderCookiePersistence(t *testing.T) {
	f := newProviderFixture(t)
	first := f.open(t, map[string]any{"host": "example.com"})

	f.exec(t, "browser.set_cookie", map[string]any{"session_id": first, "name": "sid", "value": "abc"})
	result := f.exec(t, "browser.save_cookies", map[string]any{"session_id": first})
	require.True(t, result.Success, errorOf(result))
	assert.Equal(t, "/cookies/example.com.cookie", result.Data["path"])

	exists, err := afero.Exists(f.fs, "/cookies/example.com.cookie")
	require.NoError(t, err)
	assert.True(t, exists)

	second := f.open(t, map[string]any{"host": "example.com"})
	result = f.exec(t, "browser.load_cookies", map[string]any{"session_id": second})
	require.True(t, result.Success, errorOf(result))
	assert.Equal(t, map[string]string{"sid": "abc"}, result.Data["cookies"])

	result = f.exec(t, "browser.save_cookies", map[string]any{"session_id": second, "path": "/elsewhere/jar.json"})
	require.True(t, result.Success, errorOf(result))
	assert.Equal(t, "/elsewhere/jar.json", result.Data["path"])
}

func TestProviderLoadMissingFile(t *testing.T) {
	f := newProviderFixture(t)
	sid := f.open(t, map[string]any{"host": "nowhere.test"})

	result := f.exec(t, "browser.load_cookies", map[string]any{"session_id": sid})
	assert.False(t, result.Success)
}

func TestProviderRequestFailure(t *testing.T) {
	f := newProviderFixture(t)
	sid := f.open(t, map[string]any{"host": "example.com"})
	f.transport.queue(reply{raw: ""})

	result := f.exec(t, "browser.get", map[string]any{"session_id": sid, "url": "/"})
	assert.False(t, result.Success)
	assert.Contains(t, errorOf(result), ErrEmptyResponse.Error())
}

func TestProviderCloseSession(t *testing.T) {
	f := newProviderFixture(t)
	sid := f.open(t, map[string]any{"host": "example.com"})
	f.exec(t, "browser.get", map[string]any{"session_id": sid, "url": "/"})

	result := f.exec(t, "browser.close", map[string]any{"session_id": sid})
	require.True(t, result.Success, errorOf(result))
	assert.Equal(t, 1, f.transport.closed)
	assert.Equal(t, 0, f.provider.Sessions().Len())

	result = f.exec(t, "browser.get", map[string]any{"session_id": sid, "url": "/"})
	assert.False(t, result.Success)
	assert.Contains(t, errorOf(result), "unknown session")

	result = f.exec(t, "browser.close", map[string]any{"session_id": sid})
	assert.False(t, result.Success)
}

func TestProviderCloseAll(t *testing.T) {
	f := newProviderFixture(t)
	a := f.open(t, map[string]any{"host": "a.test"})
	b := f.open(t, map[string]any{"host": "b.test"})
	f.exec(t, "browser.get", map[string]any{"session_id": a, "url": "/"})
	f.exec(t, "browser.get", map[string]any{"session_id": b, "url": "/"})

	assert.Len(t, f.provider.Sessions().IDs(), 2)
	require.NoError(t, f.provider.Close())
	assert.Equal(t, 0, f.provider.Sessions().Len())
	assert.Equal(t, 2, f.transport.closed)
}

func TestProviderSubmit(t *testing.T) {
	f := newProviderFixture(t)
	sid := f.open(t, map[string]any{"host": "example.com", "scheme": "https"})

	f.transport.queue(
		reply{raw: "HTTP/1.1 200 OK\r\nContent-Type: text/html\r\n\r\n" +
			`<form id="login" action="session" method="post">` +
			`<input type="hidden" name="csrf" value="t0k">` +
			`<input name="user"><input type="password" name="pass">` +
			`<button type="submit" name="go">Sign in</button></form>`},
		reply{raw: "HTTP/1.1 302 Found\r\nLocation: /home\r\n\r\n"},
	)

	result := f.exec(t, "browser.submit", map[string]any{
		"session_id": sid,
		"url":        "/account/login",
		"selector":   "#login",
		"data":       map[string]any{"user": "bob", "pass": "pw"},
	})
	require.True(t, result.Success, errorOf(result))
	assert.Equal(t, 302, result.Data["status"])
	assert.Equal(t, "/home", result.Data["location"])
	assert.Equal(t, "POST", result.Data["form"].(map[string]any)["method"])

	req := f.transport.last()
	assert.Equal(t, "POST", req.Method)
	assert.Equal(t, "https://example.com/account/session", req.URL)
	assert.Equal(t, "https://example.com/account/login", req.Referer)
	assert.Equal(t, "csrf=t0k&pass=pw&user=bob", string(req.Body))
}

func TestProviderSubmitWithoutForm(t *testing.T) {
	f := newProviderFixture(t)
	sid := f.open(t, map[string]any{"host": "example.com"})

	f.transport.queue(reply{raw: "HTTP/1.1 200 OK\r\nContent-Type: text/html\r\n\r\n<p>nothing</p>"})

	result := f.exec(t, "browser.submit", map[string]any{"session_id": sid, "url": "/"})
	assert.False(t, result.Success)
	assert.Contains(t, errorOf(result), "form not found")
}
