package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringSetCodecRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		set  []string
	}{
		{"nil", nil},
		{"empty", []string{}},
		{"single", []string{"a"}},
		{"several", []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := encodeStringSet(tt.set)
			require.NoError(t, err)

			decoded, err := decodeStringSet(encoded)
			require.NoError(t, err)

			if len(tt.set) == 0 {
				assert.Empty(t, decoded)
			} else {
				assert.Equal(t, tt.set, decoded)
			}
		})
	}
}

func TestDecodeStringSetMalformed(t *testing.T) {
	_, err := decodeStringSet("{not an array")
	assert.Error(t, err)
}

func TestKVEntryRecord(t *testing.T) {
	entry := KVEntry{
		Key:        "k",
		Count:      4,
		StringSet:  `["a","b"]`,
		Dictionary: `{"x":1}`,
		ExpiresAt:  1800000000,
	}

	rec, err := entry.record()
	require.NoError(t, err)
	assert.Equal(t, "k", rec.Key)
	assert.Equal(t, int64(4), rec.Count)
	assert.Equal(t, []string{"a", "b"}, rec.StringSet)
	assert.Equal(t, `{"x":1}`, rec.Dictionary)
	assert.Equal(t, int64(1800000000), rec.ExpiresAt)
}

func TestKVEntryRecordMalformedSet(t *testing.T) {
	entry := KVEntry{Key: "k", StringSet: "{corrupt"}

	_, err := entry.record()
	assert.Error(t, err)
}
