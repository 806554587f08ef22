package types

import "fmt"

// Success creates successful result
func Success(data map[string]any) (*Result, error) {
	return &Result{Success: true, Data: data}, nil
}

// Failure creates failed result
func Failure(message string) (*Result, error) {
	msg := message
	return &Result{Success: false, Error: &msg}, nil
}

// GetString extracts string parameter
func GetString(params map[string]any, key string, required bool) (string, error) {
	val, ok := params[key]
	if !ok || val == nil {
		if required {
			return "", fmt.Errorf("%s parameter required", key)
		}
		return "", nil
	}

	str, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("%s must be string", key)
	}

	if required && str == "" {
		return "", fmt.Errorf("%s cannot be empty", key)
	}

	return str, nil
}

// GetBool extracts bool parameter
func GetBool(params map[string]any, key string, defaultVal bool) bool {
	b, ok := params[key].(bool)
	if !ok {
		return defaultVal
	}
	return b
}

// GetNumber extracts numeric parameter
func GetNumber(params map[string]any, key string, required bool) (float64, error) {
	val, ok := params[key]
	if !ok || val == nil {
		if required {
			return 0, fmt.Errorf("%s parameter required", key)
		}
		return 0, nil
	}

	switch v := val.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case float32:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("%s must be number", key)
	}
}

// GetMap extracts map parameter
func GetMap(params map[string]any, key string) map[string]any {
	m, _ := params[key].(map[string]any)
	return m
}
