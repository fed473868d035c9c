package objectstorage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeExpiry(t *testing.T) {
	valid := map[string]string{
		"never": "1y",
		"1y":    "1y",
		"30s":   "30s",
		"15m":   "15m",
		"1h":    "1h",
		"7d":    "7d",
		"6M":    "6M",
		" 2h ":  "2h",
	}
	for in, want := range valid {
		got, err := NormalizeExpiry(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "0h", "h", "1w", "1.5h", "-1d", "01d", "1 d", "Never", "forever"} {
		_, err := NormalizeExpiry(in)
		assert.ErrorIs(t, err, ErrInvalidArgument, in)
	}
}

func TestFormatExpiry(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{time.Second, "1s"},
		{90 * time.Second, "90s"},
		{2 * time.Minute, "2m"},
		{time.Hour, "1h"},
		{36 * time.Hour, "36h"},
		{48 * time.Hour, "2d"},
	}
	for _, tt := range tests {
		got, err := FormatExpiry(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)

		_, err = NormalizeExpiry(got)
		assert.NoError(t, err)
	}

	for _, bad := range []time.Duration{0, -time.Hour, 500 * time.Millisecond, 1500 * time.Millisecond} {
		_, err := FormatExpiry(bad)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	}
}

func TestParseExpiry(t *testing.T) {
	tests := map[string]time.Duration{
		"30s":   30 * time.Second,
		"15m":   15 * time.Minute,
		"1h":    time.Hour,
		"7d":    7 * 24 * time.Hour,
		"2M":    60 * 24 * time.Hour,
		"1y":    365 * 24 * time.Hour,
		"never": 365 * 24 * time.Hour,
	}
	for in, want := range tests {
		got, err := ParseExpiry(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseExpiry("99999y")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = ParseExpiry("1w")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
