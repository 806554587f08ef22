package utils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/bytedance/sonic"
)

// Size limits (in bytes)
const (
	MaxScriptSize = 1 * 1024 * 1024 // tool scripts read by the CLI
	MaxJSONDepth  = 32
)

// String length limits
const (
	MaxIDLength         = 128
	MaxHostLength       = 255
	MaxHeaderNameLength = 256
)

var (
	// ToolIDPattern allows alphanumeric, hyphens, underscores, and dots (service.tool)
	ToolIDPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)
	// HostPattern is a host name or address with an optional port
	HostPattern = regexp.MustCompile(`^[a-zA-Z0-9._\-\[\]:]+$`)
	// HeaderNamePattern is an RFC 7230 token
	HeaderNamePattern = regexp.MustCompile("^[!#$%&'*+.^_`|~0-9a-zA-Z-]+$")
)

// JSONSizeValidator validates JSON size and structure
type JSONSizeValidator struct {
	maxSize int
}

// NewJSONSizeValidator creates a validator with the given max size
func NewJSONSizeValidator(maxSize int) *JSONSizeValidator {
	return &JSONSizeValidator{maxSize: maxSize}
}

// DefaultJSONValidator returns a validator for tool scripts
func DefaultJSONValidator() *JSONSizeValidator {
	return NewJSONSizeValidator(MaxScriptSize)
}

// ValidateSize checks if the data size is within limits
func (v *JSONSizeValidator) ValidateSize(data []byte) error {
	if size := len(data); size > v.maxSize {
		return fmt.Errorf("JSON size %d bytes exceeds maximum %d bytes", size, v.maxSize)
	}
	return nil
}

// ValidateJSON validates size, syntax and nesting depth
func (v *JSONSizeValidator) ValidateJSON(data []byte) error {
	// Check size first (faster than parsing)
	if err := v.ValidateSize(data); err != nil {
		return err
	}

	var js any
	if err := sonic.Unmarshal(data, &js); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return ValidateJSONDepth(js, MaxJSONDepth)
}

// ValidateJSONDepth checks that decoded JSON is not nested too deeply
func ValidateJSONDepth(data any, maxDepth int) error {
	return checkDepth(data, 0, maxDepth)
}

func checkDepth(data any, currentDepth int, maxDepth int) error {
	if currentDepth > maxDepth {
		return fmt.Errorf("JSON nesting depth %d exceeds maximum %d", currentDepth, maxDepth)
	}

	switch v := data.(type) {
	case map[string]any:
		for _, value := range v {
			if err := checkDepth(value, currentDepth+1, maxDepth); err != nil {
				return err
			}
		}
	case []any:
		for _, value := range v {
			if err := checkDepth(value, currentDepth+1, maxDepth); err != nil {
				return err
			}
		}
	}
	return nil
}

// ValidateString validates a string field with length and content checks
func ValidateString(value, fieldName string, minLen, maxLen int, required bool) error {
	if required && value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	if value == "" {
		return nil
	}

	length := utf8.RuneCountInString(value)
	if length < minLen {
		return fmt.Errorf("%s must be at least %d characters", fieldName, minLen)
	}
	if length > maxLen {
		return fmt.Errorf("%s must not exceed %d characters", fieldName, maxLen)
	}

	if strings.ContainsAny(value, "\x00\r\n") {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}
	return nil
}

// ValidateToolID validates a tool ID (allows dots for service.tool format)
func ValidateToolID(id, fieldName string, required bool) error {
	if err := ValidateString(id, fieldName, 1, MaxIDLength, required); err != nil {
		return err
	}
	if id != "" && !ToolIDPattern.MatchString(id) {
		return fmt.Errorf("%s contains invalid characters (only alphanumeric, dots, hyphens, and underscores allowed)", fieldName)
	}
	return nil
}

// ValidateHost validates a host a session can be bound to
func ValidateHost(host string) error {
	if err := ValidateString(host, "host", 1, MaxHostLength, true); err != nil {
		return err
	}
	if !HostPattern.MatchString(host) {
		return fmt.Errorf("host %q contains invalid characters", host)
	}
	return nil
}

// ValidateScheme accepts http and https
func ValidateScheme(scheme string) error {
	switch scheme {
	case "", "http", "https":
		return nil
	}
	return fmt.Errorf("unsupported scheme %q (use http or https)", scheme)
}

// ValidateHeaderName rejects names a server would refuse. Session headers
// themselves are passed through unchecked; this guards user input only.
func ValidateHeaderName(name string) error {
	if err := ValidateString(name, "header name", 1, MaxHeaderNameLength, true); err != nil {
		return err
	}
	if !HeaderNamePattern.MatchString(name) {
		return fmt.Errorf("invalid header name %q", name)
	}
	return nil
}
