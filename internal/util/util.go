package util

import (
	"fmt"
	"time"
)

// GetString reads an optional string option. A missing key yields "".
func GetString(config map[string]any, key string) (string, error) {
	raw, exists := config[key]
	if !exists || raw == nil {
		return "", nil
	}
	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("cant convert %s parameter of type %T to string", key, raw)
	}
	return value, nil
}

// GetBool reads an optional boolean option. A missing key yields def.
func GetBool(config map[string]any, key string, def bool) (bool, error) {
	raw, exists := config[key]
	if !exists || raw == nil {
		return def, nil
	}
	value, ok := raw.(bool)
	if !ok {
		return def, fmt.Errorf("cant convert %s parameter to bool", key)
	}
	return value, nil
}

// GetDuration reads an optional duration option given either as a
// duration string ("30s") or as whole seconds.
func GetDuration(config map[string]any, key string, def time.Duration) (time.Duration, error) {
	raw, exists := config[key]
	if !exists || raw == nil {
		return def, nil
	}
	switch value := raw.(type) {
	case string:
		d, err := time.ParseDuration(value)
		if err != nil {
			return def, fmt.Errorf("cant parse %s parameter: %w", key, err)
		}
		if d < 0 {
			return def, fmt.Errorf("%s must not be negative", key)
		}
		return d, nil
	case int:
		if value < 0 {
			return def, fmt.Errorf("%s must not be negative", key)
		}
		return time.Duration(value) * time.Second, nil
	case time.Duration:
		return value, nil
	default:
		return def, fmt.Errorf("cant convert %s parameter to duration", key)
	}
}
