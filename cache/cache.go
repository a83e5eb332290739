// Package cache gives detection rules simple stateful primitives - counters,
// string sets and JSON dictionaries - backed by a single key-value table with
// optional TTL expiry. Keys are caller-chosen and unpartitioned: prefix them
// if several rules share a backend.
package cache

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/codetesla51/kvstate/monitor"
	"github.com/codetesla51/kvstate/store"
)

// Client is the façade over one store handle. It holds no per-key state and
// is safe for concurrent use; all atomicity comes from the store's own
// per-key primitives. Construct one per process and share it.
type Client struct {
	store        store.Store
	log          *zap.Logger
	observer     monitor.Observer
	defaultDelta time.Duration
	now          func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger (zap.NewNop by default).
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithObserver sets the instrumentation observer (monitor.Nop by default).
func WithObserver(o monitor.Observer) Option {
	return func(c *Client) { c.observer = o }
}

// WithDefaultExpirationDelta overrides the 90-day default TTL delta.
func WithDefaultExpirationDelta(d time.Duration) Option {
	return func(c *Client) { c.defaultDelta = d }
}

// WithClock sets the time source (for tests).
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New builds a Client over the given store.
func New(s store.Store, opts ...Option) *Client {
	c := &Client{
		store:        s,
		log:          zap.NewNop(),
		observer:     monitor.Nop{},
		defaultDelta: DefaultExpirationDelta,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTLExpired reports whether the record's TTL instant has already passed.
// Useful when the store's own reclamation is too slow for exact timing.
func (c *Client) TTLExpired(rec store.Record) bool {
	return rec.Expired(c.now().Unix())
}

// GetCounter returns the counter's current value, defaulting to 0 when the
// key was never written. With forceTTLCheck, a record whose TTL has lapsed
// but not yet been reclaimed also reads as 0.
func (c *Client) GetCounter(ctx context.Context, key string, forceTTLCheck bool) (count int64, err error) {
	defer c.observe("get_counter", time.Now(), &err)

	rec, ok, err := c.store.Get(ctx, key)
	if err != nil || !ok {
		return 0, err
	}
	if forceTTLCheck && c.TTLExpired(rec) {
		return 0, nil
	}
	return rec.Count, nil
}

// IncrementCounter atomically adds delta to the counter (creating it if
// absent) and resets the key's expiration per the normalization rule.
// Returns the new value.
func (c *Client) IncrementCounter(ctx context.Context, key string, delta int64, expiration any) (count int64, err error) {
	defer c.observe("increment_counter", time.Now(), &err)

	return c.store.AddCount(ctx, key, delta, c.finalize(expiration))
}

// ResetCounter overwrites the counter to 0. Only the counter field is
// touched; the string set, dictionary and TTL on the same key survive.
func (c *Client) ResetCounter(ctx context.Context, key string) (err error) {
	defer c.observe("reset_counter", time.Now(), &err)

	return c.store.SetCount(ctx, key, 0)
}

// SetKeyExpiration writes the key's expiresAt field. The value goes through
// the usual normalization, except that a coerced 0 is written verbatim and
// clears the TTL. The backing table reclaims expired records lazily (up to
// ~48h late), so use forced TTL checks when the timing must be exact.
func (c *Client) SetKeyExpiration(ctx context.Context, key string, expiration any) (err error) {
	defer c.observe("set_key_expiration", time.Now(), &err)

	exp := c.finalize(expiration)
	if sec, ok := coerceEpochSeconds(expiration, c.now()); ok && sec == 0 {
		exp = 0
	}
	return c.store.SetExpiresAt(ctx, key, exp)
}

func (c *Client) finalize(expiration any) int64 {
	return finalizeEpochSeconds(expiration, c.now(), c.defaultDelta)
}

// observe reports one completed operation to the observer and debug log.
// The error pointer is read at return time so deferred calls see the final
// value; the error itself is never altered.
func (c *Client) observe(op string, start time.Time, err *error) {
	took := time.Since(start)
	c.observer.Observe(op, took, *err)
	c.log.Debug("kv op", zap.String("op", op), zap.Duration("took", took), zap.Error(*err))
}
