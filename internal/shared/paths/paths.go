package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CookieExt is the file extension of persisted cookie jars
const CookieExt = ".cookie"

// AppName names the per-user cache subdirectory
const AppName = "websession"

// DefaultCacheDir returns the per-user cookie cache directory,
// e.g. ~/.cache/websession/cookies on Linux.
func DefaultCacheDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user cache dir: %w", err)
	}
	return filepath.Join(base, AppName, "cookies"), nil
}

// SanitizeDomain turns a domain (optionally with port) into a safe file name.
// Anything outside [A-Za-z0-9.-_] becomes '_' and leading dots are dropped,
// so "example.com:8080" maps to "example.com_8080".
func SanitizeDomain(domain string) string {
	domain = strings.ToLower(strings.TrimSpace(domain))

	var b strings.Builder
	b.Grow(len(domain))
	for _, r := range domain {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	name := strings.TrimLeft(b.String(), ".")
	if name == "" {
		return "_"
	}
	return name
}

// CookieFile returns the jar file for domain inside dir.
// An empty dir yields an empty path.
func CookieFile(dir, domain string) string {
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, SanitizeDomain(domain)+CookieExt)
}
