package client

import (
	"bytes"
	"net/http"
	"sort"
	"strconv"
	"strings"
)

// dumpResponse rebuilds the raw HTTP/1.x form of resp around body: the
// status line, one "Name: value" line per header value, a blank line and
// the body. Header names are sorted for stable output.
func dumpResponse(resp *http.Response, body []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(len(body) + 512)

	proto := resp.Proto
	if proto == "" {
		proto = "HTTP/1.1"
	}
	code := strconv.Itoa(resp.StatusCode)
	status := resp.Status
	if !strings.HasPrefix(status, code) {
		status = strings.TrimSpace(code + " " + http.StatusText(resp.StatusCode))
	}
	buf.WriteString(proto)
	buf.WriteByte(' ')
	buf.WriteString(status)
	buf.WriteString("\r\n")

	names := make([]string, 0, len(resp.Header))
	for name := range resp.Header {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for _, value := range resp.Header[name] {
			buf.WriteString(name)
			buf.WriteString(": ")
			buf.WriteString(value)
			buf.WriteString("\r\n")
		}
	}
	buf.WriteString("\r\n")
	buf.Write(body)
	return buf.Bytes()
}
