package store

import "context"

// Record is the sparse multi-field value stored under one key.
// Zero values mean "field absent": a missing counter reads as 0, a missing
// string set as empty, a missing dictionary as "". ExpiresAt is an epoch-
// seconds reclamation hint; 0 means the record never expires.
type Record struct {
	Key        string
	Count      int64
	StringSet  []string
	Dictionary string
	ExpiresAt  int64
}

// Expired reports whether the record's TTL has lapsed at the given epoch
// second. Records without a TTL never expire.
func (r Record) Expired(now int64) bool {
	return r.ExpiresAt > 0 && r.ExpiresAt <= now
}

// Store is the contract every backend implements. Per-key atomicity (counter
// add, set union/subtract) is provided by the backend itself; callers never
// do read-modify-write. Backends reclaim expired records asynchronously, so
// Get may still return a record whose TTL has already lapsed.
type Store interface {
	// Get retrieves the full record for a key
	Get(ctx context.Context, key string) (Record, bool, error)

	// Put replaces the entire record at key
	Put(ctx context.Context, key string, rec Record) error

	// SetCount overwrites only the counter field, leaving other fields intact
	SetCount(ctx context.Context, key string, value int64) error

	// AddCount atomically adds delta to the counter (creating the record if
	// absent) and unconditionally sets expiresAt. Returns the new value.
	AddCount(ctx context.Context, key string, delta int64, expiresAt int64) (int64, error)

	// AddStrings atomically unions values into the string set and sets
	// expiresAt. echoed reports whether the returned slice is the new set;
	// when false the caller must re-read to observe it.
	AddStrings(ctx context.Context, key string, values []string, expiresAt int64) (set []string, echoed bool, err error)

	// RemoveStrings atomically subtracts values from the string set, sets
	// expiresAt, and returns the new set.
	RemoveStrings(ctx context.Context, key string, values []string, expiresAt int64) ([]string, error)

	// SetExpiresAt overwrites only the expiresAt field (0 clears the TTL)
	SetExpiresAt(ctx context.Context, key string, expiresAt int64) error

	// RemoveStringSet deletes only the string-set field, leaving other
	// fields (and the record itself) intact
	RemoveStringSet(ctx context.Context, key string) error
}
