// Command websession drives browser sessions from the shell.
//
// A session is bound to one host. Relative URLs resolve against it,
// every request carries the previous page as Referer, and cookies set by
// the server are replayed on later requests.
//
// Usage:
//
//	# single request, headers included
//	websession --host example.com get -i /
//
//	# form login with cookies kept between invocations
//	websession --host example.com --cookie-dir ~/.cache/websession/cookies \
//	    post -D user=bob -D pass=secret /login
//
//	# JSON payload
//	websession --host api.example.com post -e payload -D q=go /search
//
//	# scripted session; steps after browser.open reuse its session_id
//	websession --host example.com run steps.json
//
// A script is a JSON array of tool calls:
//
//	[
//	  {"tool_id": "browser.open", "params": {"scheme": "https"}},
//	  {"tool_id": "browser.get", "params": {"url": "/login"}},
//	  {"tool_id": "browser.post", "params": {"url": "login", "data": {"user": "bob"}}},
//	  {"tool_id": "browser.get_cookies"}
//	]
//
// Configuration comes from the environment and an optional .env file
// (see internal/infrastructure/config); flags override both.
package main
