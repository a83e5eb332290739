package store

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps records in a plain map. It is meant for tests and
// single-process use. Like the hosted table, it does not hide a record the
// moment its TTL lapses: a background janitor reclaims expired records on an
// interval, so reads in between still see stale data (callers who care use a
// forced TTL check).
type MemoryStore struct {
	data map[string]*Record
	mu   sync.Mutex
	stop chan struct{}
}

func NewMemoryStore() *MemoryStore {
	ms := &MemoryStore{
		data: make(map[string]*Record),
		stop: make(chan struct{}),
	}

	// Background reclamation of expired records
	go ms.reapExpired()

	return ms
}

func (ms *MemoryStore) Get(ctx context.Context, key string) (Record, bool, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	rec, ok := ms.data[key]
	if !ok {
		return Record{}, false, nil
	}
	return cloneRecord(rec), true, nil
}

func (ms *MemoryStore) Put(ctx context.Context, key string, rec Record) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	rec.Key = key
	clone := cloneRecord(&rec)
	ms.data[key] = &clone
	return nil
}

func (ms *MemoryStore) SetCount(ctx context.Context, key string, value int64) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.ensure(key).Count = value
	return nil
}

func (ms *MemoryStore) AddCount(ctx context.Context, key string, delta int64, expiresAt int64) (int64, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	rec := ms.ensure(key)
	rec.Count += delta
	rec.ExpiresAt = expiresAt
	return rec.Count, nil
}

func (ms *MemoryStore) AddStrings(ctx context.Context, key string, values []string, expiresAt int64) ([]string, bool, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	rec := ms.ensure(key)
	rec.ExpiresAt = expiresAt

	present := make(map[string]struct{}, len(rec.StringSet))
	for _, s := range rec.StringSet {
		present[s] = struct{}{}
	}
	for _, v := range values {
		if _, ok := present[v]; !ok {
			present[v] = struct{}{}
			rec.StringSet = append(rec.StringSet, v)
		}
	}

	out := make([]string, len(rec.StringSet))
	copy(out, rec.StringSet)
	return out, true, nil
}

func (ms *MemoryStore) RemoveStrings(ctx context.Context, key string, values []string, expiresAt int64) ([]string, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	rec := ms.ensure(key)
	rec.ExpiresAt = expiresAt

	drop := make(map[string]struct{}, len(values))
	for _, v := range values {
		drop[v] = struct{}{}
	}
	kept := rec.StringSet[:0]
	for _, s := range rec.StringSet {
		if _, ok := drop[s]; !ok {
			kept = append(kept, s)
		}
	}
	rec.StringSet = kept

	out := make([]string, len(rec.StringSet))
	copy(out, rec.StringSet)
	return out, nil
}

func (ms *MemoryStore) SetExpiresAt(ctx context.Context, key string, expiresAt int64) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.ensure(key).ExpiresAt = expiresAt
	return nil
}

func (ms *MemoryStore) RemoveStringSet(ctx context.Context, key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if rec, ok := ms.data[key]; ok {
		rec.StringSet = nil
	}
	return nil
}

// Close stops the background janitor.
func (ms *MemoryStore) Close() error {
	close(ms.stop)
	return nil
}

// ensure returns the record for key, creating it if absent.
// Callers must hold ms.mu.
func (ms *MemoryStore) ensure(key string) *Record {
	rec, ok := ms.data[key]
	if !ok {
		rec = &Record{Key: key}
		ms.data[key] = rec
	}
	return rec
}

func cloneRecord(rec *Record) Record {
	out := *rec
	if rec.StringSet != nil {
		out.StringSet = make([]string, len(rec.StringSet))
		copy(out.StringSet, rec.StringSet)
	}
	return out
}

// Background reclamation of expired records (runs every 5 minutes)
func (ms *MemoryStore) reapExpired() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ms.stop:
			return
		case <-ticker.C:
			ms.mu.Lock()
			now := time.Now().Unix()
			for key, rec := range ms.data {
				if rec.Expired(now) {
					delete(ms.data, key)
				}
			}
			ms.mu.Unlock()
		}
	}
}
