package core

import (
	"encoding/json"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Raw webhook values arrive as JSON strings, numbers, booleans or null
// depending on which automation produced the record. The helpers below
// decode them leniently.

// asString renders a raw value as trimmed text.
func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	default:
		return ""
	}
}

// asInt reads a count. Fractions are truncated; garbage reads as 0.
func asInt(v any) int {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0
		}
		return int(t)
	case int:
		return t
	case json.Number:
		return asInt(t.String())
	case string:
		s := strings.TrimSpace(t)
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return asInt(f)
		}
		return 0
	case bool:
		if t {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// asBool reads a flag. Strings "true", "1", "yes" and "da" are true.
func asBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case int:
		return t != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "1", "yes", "da":
			return true
		}
		return false
	default:
		return false
	}
}

// field returns the first present, non-null value among keys.
func field(rec map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := rec[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func fieldString(rec map[string]any, keys ...string) string {
	v, _ := field(rec, keys...)
	return asString(v)
}

func fieldInt(rec map[string]any, keys ...string) int {
	v, _ := field(rec, keys...)
	return asInt(v)
}

// optionalBool distinguishes an absent flag (nil) from an explicit false.
func optionalBool(rec map[string]any, keys ...string) *bool {
	v, ok := field(rec, keys...)
	if !ok {
		return nil
	}
	b := asBool(v)
	return &b
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
