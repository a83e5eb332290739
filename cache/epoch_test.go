package cache

import (
	"testing"
	"time"
)

func TestFinalizeEpochSeconds(t *testing.T) {
	now := time.Unix(1700000000, 0)

	tests := []struct {
		name       string
		expiration any
		want       int64
	}{
		{
			name:       "absent defaults to now plus ninety days",
			expiration: nil,
			want:       now.Unix() + 90*24*60*60,
		},
		{
			name:       "small int is relative to now",
			expiration: 86400,
			want:       now.Unix() + 86400,
		},
		{
			name:       "numeric string coerces then goes relative",
			expiration: "86400",
			want:       now.Unix() + 86400,
		},
		{
			name:       "float truncates then goes relative",
			expiration: 86400.9,
			want:       now.Unix() + 86400,
		},
		{
			name:       "large value is an absolute instant, unchanged",
			expiration: 1675238400,
			want:       1675238400,
		},
		{
			name:       "large numeric string is absolute",
			expiration: "1675238400.5",
			want:       1675238400,
		},
		{
			name:       "unparseable string falls back to default",
			expiration: "soon",
			want:       now.Unix() + 90*24*60*60,
		},
		{
			name:       "unsupported type falls back to default",
			expiration: []int{1},
			want:       now.Unix() + 90*24*60*60,
		},
		{
			name:       "exactly the cutoff is absolute",
			expiration: 604801,
			want:       604801,
		},
		{
			name:       "one below the cutoff is relative",
			expiration: 604800,
			want:       now.Unix() + 604800,
		},
		{
			name:       "duration resolves against now",
			expiration: 48 * time.Hour,
			want:       now.Unix() + 48*60*60,
		},
		{
			name:       "time resolves to its own instant",
			expiration: time.Unix(1800000000, 0),
			want:       1800000000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := finalizeEpochSeconds(tt.expiration, now, DefaultExpirationDelta)
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFinalizeEpochSecondsCustomDefault(t *testing.T) {
	now := time.Unix(1700000000, 0)
	got := finalizeEpochSeconds(nil, now, time.Hour)
	want := now.Unix() + 3600
	if got != want {
		t.Errorf("got %d, want %d", got, want)
	}
}
