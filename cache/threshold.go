package cache

import (
	"context"
	"time"
)

const (
	// DefaultThreshold is the count at which EvaluateThreshold fires.
	DefaultThreshold = 10
	// DefaultThresholdWindow is the detection window in seconds.
	DefaultThresholdWindow = 3600
)

// EvaluateThreshold increments the counter at key and reports whether the
// count reached threshold inside the current window. The first increment of
// a window starts it by setting the key to expire expirySeconds from now; on
// firing, the counter resets to 0 so the next occurrence starts fresh.
// Non-positive threshold/expirySeconds fall back to the defaults.
//
// The increment and the follow-up write are two separate store calls, so
// concurrent evaluators on one key can set the window start late or race a
// reset against another increment. Callers needing exact counts must
// serialize per key.
func (c *Client) EvaluateThreshold(ctx context.Context, key string, threshold int64, expirySeconds int64) (fired bool, err error) {
	defer c.observe("evaluate_threshold", time.Now(), &err)

	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if expirySeconds <= 0 {
		expirySeconds = DefaultThresholdWindow
	}

	count, err := c.IncrementCounter(ctx, key, 1, nil)
	if err != nil {
		return false, err
	}
	if count == 1 {
		// First occurrence: start the window.
		if err := c.SetKeyExpiration(ctx, key, c.now().Unix()+expirySeconds); err != nil {
			return false, err
		}
	} else if count >= threshold {
		if err := c.ResetCounter(ctx, key); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// CheckAccountAge reports whether anything was ever recorded under key:
// true when key is a non-empty string whose string set is non-empty. Any
// other key shape returns false without touching the store.
func (c *Client) CheckAccountAge(ctx context.Context, key any) (seen bool, err error) {
	defer c.observe("check_account_age", time.Now(), &err)

	s, ok := key.(string)
	if !ok || s == "" {
		return false, nil
	}
	set, err := c.GetStringSet(ctx, s, false)
	if err != nil {
		return false, err
	}
	return len(set) > 0, nil
}
