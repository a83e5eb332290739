package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateThresholdSequence(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	want := []bool{false, false, true, false}
	for i, expected := range want {
		fired, err := client.EvaluateThreshold(ctx, "errors", 3, 3600)
		require.NoError(t, err)
		assert.Equal(t, expected, fired, "call %d", i+1)
	}
}

func TestEvaluateThresholdStartsWindowOnFirstHit(t *testing.T) {
	now := time.Unix(1700000000, 0)
	client, ms := newTestClient(t, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	fired, err := client.EvaluateThreshold(ctx, "errors", 3, 600)
	require.NoError(t, err)
	assert.False(t, fired)

	rec, ok, err := ms.Get(ctx, "errors")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, now.Unix()+600, rec.ExpiresAt)
}

func TestEvaluateThresholdResetRestartsCount(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := client.EvaluateThreshold(ctx, "errors", 3, 3600)
		require.NoError(t, err)
	}

	count, err := client.GetCounter(ctx, "errors", false)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestEvaluateThresholdDefaults(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	// Zero threshold falls back to the default of 10.
	for i := 0; i < 9; i++ {
		fired, err := client.EvaluateThreshold(ctx, "errors", 0, 0)
		require.NoError(t, err)
		assert.False(t, fired, "call %d", i+1)
	}
	fired, err := client.EvaluateThreshold(ctx, "errors", 0, 0)
	require.NoError(t, err)
	assert.True(t, fired)
}

func TestCheckAccountAgeSkipsStoreForBadKeys(t *testing.T) {
	// nil store: any store access would panic.
	client := New(nil)
	ctx := context.Background()

	seen, err := client.CheckAccountAge(ctx, "")
	require.NoError(t, err)
	assert.False(t, seen)

	seen, err = client.CheckAccountAge(ctx, 123)
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestCheckAccountAge(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	seen, err := client.CheckAccountAge(ctx, "acct")
	require.NoError(t, err)
	assert.False(t, seen, "empty set means never recorded")

	_, err = client.AddToStringSet(ctx, "acct", nil, "id-1")
	require.NoError(t, err)

	seen, err = client.CheckAccountAge(ctx, "acct")
	require.NoError(t, err)
	assert.True(t, seen)
}
