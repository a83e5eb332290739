package cache

import (
	"context"
	"time"

	"github.com/codetesla51/kvstate/store"
)

// GetStringSet returns the set's current members, defaulting to empty when
// the key was never written. With forceTTLCheck, a lapsed-but-unreclaimed
// record also reads as empty.
func (c *Client) GetStringSet(ctx context.Context, key string, forceTTLCheck bool) (set []string, err error) {
	defer c.observe("get_string_set", time.Now(), &err)

	rec, ok, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok || (forceTTLCheck && c.TTLExpired(rec)) {
		return []string{}, nil
	}
	if rec.StringSet == nil {
		return []string{}, nil
	}
	return rec.StringSet, nil
}

// PutStringSet overwrites the set (and the key's TTL) with the deduplicated
// contents of values. An empty values slice cannot be stored natively, so it
// delegates to ResetStringSet.
func (c *Client) PutStringSet(ctx context.Context, key string, values []string, expiration any) (err error) {
	defer c.observe("put_string_set", time.Now(), &err)

	if len(values) == 0 {
		// Can't put an empty string set - remove it instead
		return c.store.RemoveStringSet(ctx, key)
	}
	return c.store.Put(ctx, key, store.Record{
		Key:       key,
		StringSet: dedupe(values),
		ExpiresAt: c.finalize(expiration),
	})
}

// AddToStringSet atomically unions values into the set, refreshes the TTL,
// and returns the new set. With no values it is a read: the current set comes
// back unchanged.
func (c *Client) AddToStringSet(ctx context.Context, key string, expiration any, values ...string) (set []string, err error) {
	defer c.observe("add_to_string_set", time.Now(), &err)

	if len(values) == 0 {
		// We can't add an empty set, just return the existing value instead
		return c.readStringSet(ctx, key)
	}

	set, echoed, err := c.store.AddStrings(ctx, key, dedupe(values), c.finalize(expiration))
	if err != nil {
		return nil, err
	}
	if !echoed {
		// Backend didn't return the new set inline; one extra read.
		return c.readStringSet(ctx, key)
	}
	return set, nil
}

// RemoveFromStringSet atomically subtracts values from the set, refreshes the
// TTL, and returns the new set. With no values it is a read, like add.
func (c *Client) RemoveFromStringSet(ctx context.Context, key string, expiration any, values ...string) (set []string, err error) {
	defer c.observe("remove_from_string_set", time.Now(), &err)

	if len(values) == 0 {
		return c.readStringSet(ctx, key)
	}
	return c.store.RemoveStrings(ctx, key, dedupe(values), c.finalize(expiration))
}

// ResetStringSet deletes the string-set field, leaving the key's other
// fields intact.
func (c *Client) ResetStringSet(ctx context.Context, key string) (err error) {
	defer c.observe("reset_string_set", time.Now(), &err)

	return c.store.RemoveStringSet(ctx, key)
}

// readStringSet is the uninstrumented read used inside other set operations.
func (c *Client) readStringSet(ctx context.Context, key string) ([]string, error) {
	rec, ok, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok || rec.StringSet == nil {
		return []string{}, nil
	}
	return rec.StringSet, nil
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}
