package expression

import (
	"encoding/json"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Builtins returns the closed set of pure helper functions exposed to
// expressions under the utils namespace. Date, number, string, array, JSON
// and random helpers; nothing here touches process state.
func Builtins() map[string]any {
	return map[string]any{
		// Date
		"now": func() string {
			return time.Now().Format(time.RFC3339)
		},
		"timestamp": func() int64 {
			return time.Now().UnixMilli()
		},
		"formatDate": formatDate,

		// Number
		"round": math.Round,
		"floor": math.Floor,
		"ceil":  math.Ceil,
		"abs":   math.Abs,
		"min":   math.Min,
		"max":   math.Max,

		// String
		"upper":   strings.ToUpper,
		"lower":   strings.ToLower,
		"trim":    strings.TrimSpace,
		"split":   strings.Split,
		"replace": strings.ReplaceAll,
		"join": func(parts []any, sep string) string {
			strs := make([]string, len(parts))
			for i, p := range parts {
				strs[i] = stringify(p)
			}
			return strings.Join(strs, sep)
		},

		// Array
		"first": func(arr []any) any {
			if len(arr) == 0 {
				return nil
			}
			return arr[0]
		},
		"last": func(arr []any) any {
			if len(arr) == 0 {
				return nil
			}
			return arr[len(arr)-1]
		},
		"sum": func(arr []any) float64 {
			var total float64
			for _, v := range arr {
				total += toFloat(v)
			}
			return total
		},
		"unique": func(arr []any) []any {
			seen := make(map[string]bool, len(arr))
			out := make([]any, 0, len(arr))
			for _, v := range arr {
				key := stringify(v)
				if seen[key] {
					continue
				}
				seen[key] = true
				out = append(out, v)
			}
			return out
		},

		// JSON
		"jsonParse": func(s string) any {
			var v any
			if err := json.Unmarshal([]byte(s), &v); err != nil {
				return nil
			}
			return v
		},
		"jsonStringify": func(v any) string {
			data, err := json.Marshal(v)
			if err != nil {
				return ""
			}
			return string(data)
		},

		// Random
		"random": rand.Float64,
		"randomInt": func(max int) int {
			if max <= 0 {
				return 0
			}
			return rand.Intn(max)
		},
		"uuid": uuid.NewString,
	}
}

// formatDate formats either an RFC3339 string or an epoch-millisecond number
// using a Go layout. Unparseable inputs render as "".
func formatDate(value any, layout string) string {
	switch v := value.(type) {
	case string:
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return ""
		}
		return t.Format(layout)
	case int:
		return time.UnixMilli(int64(v)).Format(layout)
	case int64:
		return time.UnixMilli(v).Format(layout)
	case float64:
		return time.UnixMilli(int64(v)).Format(layout)
	}
	return ""
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case float64:
		return n
	}
	return 0
}
