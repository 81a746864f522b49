package tools

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeframeToDuration(t *testing.T) {
	tests := map[string]time.Duration{
		"1m":  time.Minute,
		"15m": 15 * time.Minute,
		"1h":  time.Hour,
		"60m": time.Hour,
		"4h":  4 * time.Hour,
		"1d":  24 * time.Hour,
	}
	for tf, want := range tests {
		got, err := ParseTimeframeToDuration(tf)
		require.NoError(t, err, tf)
		assert.Equal(t, want, got, tf)
	}

	_, err := ParseTimeframeToDuration("7x")
	assert.Error(t, err)
}

func TestMapPeriodToCandleEndpoint(t *testing.T) {
	got, err := MapPeriodToCandleEndpoint("4h")
	require.NoError(t, err)
	assert.Equal(t, "minutes/240", got)

	_, err = MapPeriodToCandleEndpoint("2h")
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	d, err = ParseDate("2024-03-01 09:30:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC), d)

	_, err = ParseDate("03/01/2024")
	assert.Error(t, err)
}
