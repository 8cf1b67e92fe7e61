// Package coerce converts the loosely typed values found in request input
// and database rows into the Go types the field engines work with
package coerce

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Int64 converts integer and integral floating point values to int64.
// Strings are not converted
func Int64(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case float32:
		return floatToInt(float64(v))
	case float64:
		return floatToInt(v)
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	default:
		return 0, false
	}
}

func floatToInt(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

// Float64 converts numeric values to float64. Strings are not converted
func Float64(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// String converts a scalar to its string form. Slices, maps and other
// composite values are not scalars
func String(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", true
	case string:
		return v, true
	case []byte:
		return string(v), true
	case bool:
		if v {
			return "1", true
		}
		return "0", true
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case json.Number:
		return v.String(), true
	case fmt.Stringer:
		return v.String(), true
	}
	if n, ok := Int64(value); ok {
		return strconv.FormatInt(n, 10), true
	}
	return "", false
}

// IsEmpty reports whether value carries no input: nil, a blank string or
// an empty list or map
func IsEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []byte:
		return strings.TrimSpace(string(v)) == ""
	case []string:
		return len(v) == 0
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	case map[string]string:
		return len(v) == 0
	case map[string]bool:
		return len(v) == 0
	default:
		return false
	}
}

// Truthy reports whether value counts as true: non-zero numbers, true and
// strings other than "", "0" and "false"
func Truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		s := strings.ToLower(strings.TrimSpace(v))
		return s != "" && s != "0" && s != "false"
	}
	if f, ok := Float64(value); ok {
		return f != 0
	}
	return true
}

// Members splits a set value into its members. It accepts a comma
// separated string, a list of scalars, or a map of member to truthy flag as
// posted by a group of checkboxes, whose members come back sorted. The
// second result is false for values that cannot hold members
func Members(value any) ([]string, bool) {
	var members []string
	switch v := value.(type) {
	case nil:
		return nil, true
	case string:
		members = strings.Split(v, ",")
	case []string:
		members = append(members, v...)
	case []any:
		for _, item := range v {
			s, ok := String(item)
			if !ok {
				return nil, false
			}
			members = append(members, s)
		}
	case map[string]any:
		for key, flag := range v {
			if Truthy(flag) {
				members = append(members, key)
			}
		}
		sort.Strings(members)
	case map[string]string:
		for key, flag := range v {
			if Truthy(flag) {
				members = append(members, key)
			}
		}
		sort.Strings(members)
	case map[string]bool:
		for key, flag := range v {
			if flag {
				members = append(members, key)
			}
		}
		sort.Strings(members)
	default:
		s, ok := String(value)
		if !ok {
			return nil, false
		}
		members = strings.Split(s, ",")
	}

	out := members[:0]
	for _, m := range members {
		if m = strings.TrimSpace(m); m != "" {
			out = append(out, m)
		}
	}
	return out, true
}
