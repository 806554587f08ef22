/*
Package browser simulates a stateful browser bound to one host.

# Overview

A Session resolves links against its host and the last page it visited,
sends its header set and live cookies with every request, presents the
previous page as referer and parses whatever comes back:

	s := browser.New("example.com",
		browser.WithScheme("https"),
		browser.WithUserAgent(browser.UserAgentDesktop),
		browser.WithTransport(func() (browser.Transport, error) {
			return client.New(client.DefaultConfig(), logger, nil)
		}),
	)
	defer s.Close()

	resp, err := s.Get(ctx, "/login")
	resp, err = s.Post(ctx, "session", map[string]any{"user": "ann"}, browser.EncodingForm)

# Request cycle

 1. Resolve the link (see Resolve)
 2. Collect header lines plus a cookie line from the jar
 3. Set the referer to the previous resolved URL
 4. Encode data as form fields or a JSON payload; no data means GET
 5. Hand the request to the transport, created on first use
 6. Parse the raw bytes, feeding Set-Cookie into the jar
 7. Append the caller's URL to history

A transport error or an empty reply leaves history and the referer chain
untouched. Any parsed reply moves them, whatever its status code.

Submit posts an HTML form found with response.Form, keeping hidden fields
such as CSRF tokens and overriding the rest:

	page, _ := s.Get(ctx, "/login")
	form, ok := page.Form("#login")
	resp, err = s.Submit(ctx, form, map[string]any{"user": "ann", "pass": "pw"})

# Cookies

The jar lives in the cookie subpackage. Cookies without an expiry are
session cookies and only count as live while never-expire is on.

# Tools

Provider exposes sessions as tools (browser.open, browser.get,
browser.post, browser.submit, browser.set_header, browser.get_cookies, browser.set_cookie,
browser.save_cookies, browser.load_cookies, browser.history,
browser.close) for scripted use.
*/
package browser
