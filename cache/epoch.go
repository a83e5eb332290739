package cache

import (
	"math"
	"strconv"
	"time"
)

const (
	// DefaultExpirationDelta is applied when an operation that accepts an
	// expiration gets none: records expire 90 days from now.
	DefaultExpirationDelta = 90 * 24 * time.Hour

	// Coerced values below this (seven days in seconds, exclusive) are read
	// as durations relative to now instead of absolute epoch instants. A
	// caller who wants "seven days and one second from now" as an absolute
	// instant must pass a real epoch timestamp; the ambiguity is part of the
	// contract and deliberately kept.
	relativeCutoff = 604801
)

// finalizeEpochSeconds turns a loosely-typed expiration into an absolute
// epoch-seconds instant. nil or anything that cannot be coerced to an integer
// falls back to now + defaultDelta. Numeric inputs below the seven-day cutoff
// are relative to now; everything else is taken as-is.
func finalizeEpochSeconds(expiration any, now time.Time, defaultDelta time.Duration) int64 {
	sec, ok := coerceEpochSeconds(expiration, now)
	if !ok {
		sec = now.Unix() + int64(defaultDelta/time.Second)
	}
	if sec < relativeCutoff {
		sec = now.Unix() + sec
	}
	return sec
}

// coerceEpochSeconds narrows an arbitrary expiration value to integer
// seconds: strings parse as floats, floats truncate to ints. time.Time and
// time.Duration are resolved immediately and skip the relative-vs-absolute
// heuristic (the resulting instant is always absolute and, for any sane
// clock, above the cutoff).
func coerceEpochSeconds(v any, now time.Time) (int64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case time.Time:
		if t.IsZero() {
			return 0, false
		}
		return t.Unix(), true
	case time.Duration:
		return now.Add(t).Unix(), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, false
		}
		return floatToSeconds(f)
	case float64:
		return floatToSeconds(t)
	case float32:
		return floatToSeconds(float64(t))
	case int:
		return int64(t), true
	case int32:
		return int64(t), true
	case int64:
		return t, true
	case uint:
		return int64(t), true
	case uint32:
		return int64(t), true
	case uint64:
		return int64(t), true
	default:
		return 0, false
	}
}

func floatToSeconds(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int64(f), true
}
