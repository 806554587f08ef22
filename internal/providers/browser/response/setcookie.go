package response

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// cookieTimeLayouts are tried after http.ParseTime; servers still send the
// dashed Netscape form.
var cookieTimeLayouts = []string{
	"Mon, 02-Jan-2006 15:04:05 MST",
	"Mon, 02-Jan-06 15:04:05 MST",
	"Mon, 02 Jan 2006 15:04:05 -0700",
}

// maxAgeLimit is the largest Max-Age, in seconds, a time.Duration holds
const maxAgeLimit = math.MaxInt64 / int64(time.Second)

// parseSetCookie reads "name=value; Expires=...; Max-Age=...; Path=/".
// Max-Age wins over Expires. A cookie without either is a session cookie
// (TTL 0); one whose expiry already passed gets a negative TTL.
func parseSetCookie(line string, now time.Time) (Cookie, bool) {
	parts := strings.Split(line, ";")

	name, value, ok := strings.Cut(parts[0], "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return Cookie{}, false
	}

	c := Cookie{Name: name, Value: unquote(strings.TrimSpace(value))}

	hasMaxAge := false
	for _, attr := range parts[1:] {
		key, val, _ := strings.Cut(attr, "=")
		val = strings.TrimSpace(val)

		switch strings.ToLower(strings.TrimSpace(key)) {
		case "max-age":
			secs, err := strconv.ParseInt(val, 10, 64)
			if err != nil && !errors.Is(err, strconv.ErrRange) {
				continue
			}
			hasMaxAge = true
			switch {
			case secs <= 0:
				c.TTL = -time.Second
			case secs > maxAgeLimit:
				c.TTL = time.Duration(math.MaxInt64)
			default:
				c.TTL = time.Duration(secs) * time.Second
			}
		case "expires":
			if hasMaxAge {
				continue
			}
			at, ok := parseCookieTime(val)
			if !ok {
				continue
			}
			c.TTL = at.Sub(now)
			if c.TTL <= 0 {
				c.TTL = -time.Second
			}
		}
	}

	return c, true
}

func parseCookieTime(s string) (time.Time, bool) {
	if t, err := http.ParseTime(s); err == nil {
		return t, true
	}
	for _, layout := range cookieTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func unquote(v string) string {
	if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
		return v[1 : len(v)-1]
	}
	return v
}
