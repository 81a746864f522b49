package exchange

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `time,open,high,low,close,volume
2024-01-01T02:00:00Z,102,103,101,102.5,7
2024-01-01T00:00:00Z,100,101,99,100.5,5
1704070800,101,102,100,101.5,6
`

func TestReadCSVCandles(t *testing.T) {
	src, err := ReadCSVCandles("KRW-BTC", strings.NewReader(sampleCSV))
	require.NoError(t, err)

	candles := src.Candles()
	require.Len(t, candles, 3)
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range candles {
		assert.Equal(t, t0.Add(time.Duration(i)*time.Hour), c.Time, "sorted ascending")
		assert.Equal(t, "KRW-BTC", c.Pair)
	}
	assert.Equal(t, 101.5, candles[1].Close)
	assert.Equal(t, 6.0, candles[1].Volume)

	window, err := src.CandlesByPeriod(context.Background(), "KRW-BTC", "1h", t0.Add(time.Hour), time.Time{})
	require.NoError(t, err)
	assert.Len(t, window, 2)

	_, err = src.CandlesByPeriod(context.Background(), "KRW-ETH", "1h", time.Time{}, time.Time{})
	assert.Error(t, err)
}

func TestReadCSVCandles_Invalid(t *testing.T) {
	_, err := ReadCSVCandles("KRW-BTC", strings.NewReader("2024-01-01,1,2\n"))
	assert.ErrorIs(t, err, ErrCSVFormat)

	_, err = ReadCSVCandles("KRW-BTC", strings.NewReader("time,open,high,low,close\nyesterday,1,2,3,4\n"))
	assert.ErrorIs(t, err, ErrCSVFormat)
}

func TestNewCSVCandleSource_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candles.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	src, err := NewCSVCandleSource("KRW-BTC", path)
	require.NoError(t, err)
	assert.Len(t, src.Candles(), 3)

	_, err = NewCSVCandleSource("KRW-BTC", filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
