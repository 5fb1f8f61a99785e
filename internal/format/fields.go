package format

import "encoding/json"

// String returns m[key] when it is a string, "" otherwise.
func String(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// Int returns m[key] as an integer, 0 when absent or not numeric.
func Int(m map[string]any, key string) int64 {
	n, _ := toInt(m[key])
	return n
}

// Bool returns m[key] when it is a bool, false otherwise.
func Bool(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}

// Slice returns m[key] when it is a JSON array, nil otherwise.
func Slice(m map[string]any, key string) []any {
	s, _ := m[key].([]any)
	return s
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
