// Package client is the network transport behind browser sessions.
//
// A Client sends one browser.Request and hands back the raw response
// bytes (status line, headers, blank line, body) for the session to parse.
// The stack, outermost first:
//   - rate limiter (golang.org/x/time/rate)
//   - circuit breaker (resilience.Breaker) counting transport failures
//   - resty for request building
//   - retryablehttp round tripper retrying connection errors, 429 and 5xx
//     for idempotent methods only; a POST is sent once
//
// The client keeps no cookies and by default does not follow redirects;
// both belong to the session. Compressed bodies (gzip, deflate, zstd) are
// decoded with klauspost/compress before the raw response is rebuilt.
//
// Example:
//
//	factory := client.Factory(client.DefaultConfig(), logger, metrics)
//	sess := browser.New("example.com", browser.WithTransport(factory))
package client
