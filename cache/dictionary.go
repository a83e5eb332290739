package cache

import (
	"context"
	"encoding/json"
	"reflect"
	"time"

	"github.com/codetesla51/kvstate/store"
)

// PutDictionary overwrites the dictionary stored under key with the JSON
// encoding of value. value must be a map with string keys and JSON-encodable
// values; anything else is rejected before the store is touched. This is a
// full-record put: a counter or string set previously stored at the same key
// is replaced.
func (c *Client) PutDictionary(ctx context.Context, key string, value any, expiration any) (err error) {
	defer c.observe("put_dictionary", time.Now(), &err)

	const op = "put_dictionary"

	rv := reflect.ValueOf(value)
	if value == nil || rv.Kind() != reflect.Map {
		return newError(op, KindInvalidType, "value is not a map", nil)
	}

	// Normalize to map[string]any so the key check is explicit rather than
	// left to whatever encoding/json happens to accept.
	normalized := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k := iter.Key()
		if k.Kind() == reflect.Interface {
			k = k.Elem()
		}
		if k.Kind() != reflect.String {
			return newError(op, KindEncode, "map keys must be strings", nil)
		}
		normalized[k.String()] = iter.Value().Interface()
	}

	data, err := json.Marshal(normalized)
	if err != nil {
		return newError(op, KindEncode, "value is a map, but it is not JSON-encodable", err)
	}

	return c.store.Put(ctx, key, store.Record{
		Key:        key,
		Dictionary: string(data),
		ExpiresAt:  c.finalize(expiration),
	})
}

// GetDictionary returns the dictionary stored under key, defaulting to an
// empty map when the key was never written (or, with forceTTLCheck, when the
// TTL has lapsed). A stored payload that fails to decode is a hard error,
// not an empty result.
func (c *Client) GetDictionary(ctx context.Context, key string, forceTTLCheck bool) (value map[string]any, err error) {
	defer c.observe("get_dictionary", time.Now(), &err)

	rec, ok, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok || rec.Dictionary == "" || (forceTTLCheck && c.TTLExpired(rec)) {
		return map[string]any{}, nil
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(rec.Dictionary), &out); err != nil {
		return nil, newError("get_dictionary", KindDecode, "stored data could not be decoded as JSON", err)
	}
	return out, nil
}
