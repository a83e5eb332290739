package store

import (
	"context"
	"fmt"
	"testing"
	"time"
)

// RedisStore tests - require Redis running on localhost:6379, skipped otherwise
func newTestRedis(t *testing.T) *RedisStore {
	t.Helper()

	rs, err := NewRedisStore("localhost:6379", "", 0)
	if err != nil {
		t.Skipf("redis not available: %v", err)
	}
	t.Cleanup(func() { rs.Close() })
	return rs
}

func testKey(t *testing.T) string {
	return fmt.Sprintf("kvstate-test:%s:%d", t.Name(), time.Now().UnixNano())
}

func TestRedisAddCount(t *testing.T) {
	rs := newTestRedis(t)
	ctx := context.Background()
	key := testKey(t)

	got, err := rs.AddCount(ctx, key, 2, 1800000000)
	if err != nil {
		t.Fatalf("AddCount failed: %v", err)
	}
	if got != 2 {
		t.Errorf("got %d, want 2", got)
	}

	got, err = rs.AddCount(ctx, key, 3, 1800000000)
	if err != nil {
		t.Fatalf("AddCount failed: %v", err)
	}
	if got != 5 {
		t.Errorf("got %d, want 5", got)
	}

	rec, ok, err := rs.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatal("expected record after AddCount")
	}
	if rec.Count != 5 || rec.ExpiresAt != 1800000000 {
		t.Errorf("got count=%d expiresAt=%d", rec.Count, rec.ExpiresAt)
	}
}

func TestRedisStringSetOps(t *testing.T) {
	rs := newTestRedis(t)
	ctx := context.Background()
	key := testKey(t)

	set, echoed, err := rs.AddStrings(ctx, key, []string{"a", "b"}, 1800000000)
	if err != nil {
		t.Fatalf("AddStrings failed: %v", err)
	}
	if !echoed {
		t.Error("redis backend should echo the new set")
	}
	if len(set) != 2 {
		t.Errorf("got %v, want 2 members", set)
	}

	set, err = rs.RemoveStrings(ctx, key, []string{"a"}, 1800000000)
	if err != nil {
		t.Fatalf("RemoveStrings failed: %v", err)
	}
	if len(set) != 1 || set[0] != "b" {
		t.Errorf("got %v, want [b]", set)
	}

	if err := rs.RemoveStringSet(ctx, key); err != nil {
		t.Fatalf("RemoveStringSet failed: %v", err)
	}
	rec, _, err := rs.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(rec.StringSet) != 0 {
		t.Errorf("set should be gone, got %v", rec.StringSet)
	}
}

func TestRedisPutGetRoundTrip(t *testing.T) {
	rs := newTestRedis(t)
	ctx := context.Background()
	key := testKey(t)

	want := Record{
		Count:      7,
		StringSet:  []string{"x"},
		Dictionary: `{"a":1}`,
		ExpiresAt:  1800000000,
	}
	if err := rs.Put(ctx, key, want); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	rec, ok, err := rs.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatal("expected record after Put")
	}
	if rec.Count != want.Count || rec.Dictionary != want.Dictionary || rec.ExpiresAt != want.ExpiresAt {
		t.Errorf("got %+v, want %+v", rec, want)
	}
	if len(rec.StringSet) != 1 || rec.StringSet[0] != "x" {
		t.Errorf("got set %v, want [x]", rec.StringSet)
	}
}

func TestRedisGetMissing(t *testing.T) {
	rs := newTestRedis(t)

	_, ok, err := rs.Get(context.Background(), testKey(t))
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("missing key should not be found")
	}
}

func TestRedisSetExpiresAt(t *testing.T) {
	rs := newTestRedis(t)
	ctx := context.Background()
	key := testKey(t)

	if _, err := rs.AddCount(ctx, key, 1, 0); err != nil {
		t.Fatalf("AddCount failed: %v", err)
	}
	if err := rs.SetExpiresAt(ctx, key, 1800000000); err != nil {
		t.Fatalf("SetExpiresAt failed: %v", err)
	}

	rec, _, err := rs.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if rec.ExpiresAt != 1800000000 {
		t.Errorf("got expiresAt=%d, want 1800000000", rec.ExpiresAt)
	}
	if rec.Count != 1 {
		t.Errorf("SetExpiresAt must not touch the counter, got %d", rec.Count)
	}
}
