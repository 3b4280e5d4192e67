package jwtdebug

import (
	"encoding/json"
	"math"
	"time"
)

// Clock returns the current time.
type Clock func() time.Time

// Bounds of the instants, in milliseconds, that time.UnixMilli can represent.
const (
	maxExpiryMillis = float64(math.MaxInt64)
	minExpiryMillis = float64(math.MinInt64)
)

// expiryMillis returns exp*1000 when payload carries a finite numeric exp claim.
func expiryMillis(payload map[string]any) (float64, bool) {
	raw, exists := payload["exp"]
	if !exists {
		return 0, false
	}

	var exp float64
	switch v := raw.(type) {
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		exp = f
	case float64:
		exp = v
	case float32:
		exp = float64(v)
	case int:
		exp = float64(v)
	case int64:
		exp = float64(v)
	default:
		return 0, false
	}

	if math.IsNaN(exp) || math.IsInf(exp, 0) {
		return 0, false
	}
	return exp * 1000, true
}

// expiryTime converts milliseconds since the epoch into a UTC time, or nil when the
// instant does not fit an int64 millisecond count.
func expiryTime(ms float64) *time.Time {
	ms = math.Floor(ms)
	if math.IsNaN(ms) || ms >= maxExpiryMillis || ms < minExpiryMillis {
		return nil
	}
	t := time.UnixMilli(int64(ms)).UTC()
	return &t
}

// isExpiredAt reports nowMs >= expMs with the current time truncated to milliseconds.
func isExpiredAt(now time.Time, expMs float64) bool {
	return float64(now.UnixMilli()) >= expMs
}
