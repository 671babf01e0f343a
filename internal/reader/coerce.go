package reader

import (
	"math"
	"strconv"
)

// Coercion helpers for permissive schema decoding. Each returns nil when
// the value is absent, JSON null, or not coercible to the target type.

func asString(v interface{}) *string {
	switch t := v.(type) {
	case string:
		return &t
	case float64:
		s := strconv.FormatFloat(t, 'f', -1, 64)
		return &s
	default:
		return nil
	}
}

func asFloat(v interface{}) *float64 {
	switch t := v.(type) {
	case float64:
		return &t
	case string:
		if f, err := strconv.ParseFloat(t, 64); err == nil {
			return &f
		}
		return nil
	default:
		return nil
	}
}

func asInt(v interface{}) *int64 {
	switch t := v.(type) {
	case float64:
		if t == math.Trunc(t) && !math.IsInf(t, 0) {
			i := int64(t)
			return &i
		}
		return nil
	case string:
		if i, err := strconv.ParseInt(t, 10, 64); err == nil {
			return &i
		}
		return nil
	default:
		return nil
	}
}
