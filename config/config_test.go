package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"lotbot/backtest"
	"lotbot/mocks"
	"lotbot/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
backtest:
  pair: KRW-ETH
  initial_balance: 5000
  fees:
    entry_fee_rate: 0.0005
    exit_fee_rate: 0.0005
  policy: fifo
  max_lots: 3
  take_profit_pct: 0.04
strategy:
  name: " Turtle "
  params:
    entry: 30
data:
  source: csv
  csv_path: testdata/candles.csv
  start: 2024-01-01
  end: 2024-02-01T00:00:00Z
optimize:
  workers: 4
  grid:
    entry: [20, 30, 40]
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "KRW-ETH", cfg.Backtest.Pair)
	assert.Equal(t, 5000.0, cfg.Backtest.InitialBalance)
	assert.Equal(t, 0.0005, cfg.Backtest.Fees.EntryRate)
	assert.Equal(t, "fifo", cfg.Backtest.Policy)
	assert.Equal(t, 3, cfg.Backtest.MaxLots)
	assert.Equal(t, backtest.AccountingSpot, cfg.Backtest.Accounting)
	assert.Equal(t, "turtle", cfg.Strategy.Name)
	assert.Equal(t, 30.0, cfg.Strategy.Params["entry"])
	assert.Equal(t, []float64{20, 30, 40}, cfg.Optimize.Grid["entry"])
	assert.Equal(t, "reports", cfg.Report.Dir)
	assert.Equal(t, "8080", cfg.Server.Port)

	start, end, err := cfg.Data.Range()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestParse_EnvOverride(t *testing.T) {
	t.Setenv("LOTBOT_PAIR", "KRW-XRP")
	t.Setenv("LOTBOT_INITIAL_BALANCE", "777")
	t.Setenv("LOTBOT_WORKERS", "2")
	t.Setenv("LOTBOT_SERVE", "true")
	t.Setenv("LOTBOT_LOG_LEVEL", " ")
	t.Setenv("UPBIT_ACCESS_KEY", "access")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")

	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)
	assert.Equal(t, "KRW-XRP", cfg.Backtest.Pair)
	assert.Equal(t, 777.0, cfg.Backtest.InitialBalance)
	assert.Equal(t, 2, cfg.Optimize.Workers)
	assert.True(t, cfg.Server.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "access", cfg.Secrets.UpbitAccessKey)
	assert.False(t, cfg.Secrets.TelegramEnabled())

	t.Setenv("LOTBOT_WORKERS", "many")
	_, err = Parse([]byte(sample))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]string{
		"unknown strategy": "strategy: {name: nope}\ndata: {csv_path: a.csv}",
		"missing csv":      "data: {source: csv}",
		"upbit no range":   "data: {source: upbit}",
		"bad source":       "data: {source: ftp}",
		"reversed range":   "data: {csv_path: a.csv, start: 2024-02-01, end: 2024-01-01}",
		"bad date":         "data: {csv_path: a.csv, start: yesterday}",
		"empty grid":       "data: {csv_path: a.csv}\noptimize: {grid: {fast: []}}",
		"broken yaml":      "data: [",
	}
	for name, body := range cases {
		_, err := Parse([]byte(body))
		assert.ErrorIs(t, err, ErrInvalidConfig, name)
	}

	_, err := Parse([]byte("data: {csv_path: a.csv}\nbacktest: {max_lots: -1}"))
	assert.ErrorIs(t, err, backtest.ErrInvalidConfig)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lotbot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("TELEGRAM_CHAT_ID=42\nTELEGRAM_BOT_TOKEN=abc\n"), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("TELEGRAM_CHAT_ID")
		os.Unsetenv("TELEGRAM_BOT_TOKEN")
	})

	cfg, err := Load(path, envPath)
	require.NoError(t, err)
	assert.Equal(t, "42", cfg.Secrets.TelegramChatID)
	assert.True(t, cfg.Secrets.TelegramEnabled())

	_, err = Load(filepath.Join(dir, "missing.yaml"), filepath.Join(dir, "missing.env"))
	assert.Error(t, err)
}

func TestLoadCandles_CSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "candles.csv")
	body := "time,open,high,low,close,volume\n" +
		"2024-01-01T00:00:00Z,100,101,99,100,1\n" +
		"2024-01-01T01:00:00Z,100,102,99,101,1\n" +
		"2024-01-02T00:00:00Z,101,103,100,102,1\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Parse([]byte("backtest: {pair: KRW-BTC, timeframe: 1h}\ndata: {csv_path: " + path + ", end: 2024-01-02}"))
	require.NoError(t, err)

	strat, err := cfg.NewStrategy()
	require.NoError(t, err)
	src, err := cfg.CandleSource()
	require.NoError(t, err)

	candles, err := cfg.LoadCandles(context.Background(), src, strat)
	require.NoError(t, err)
	require.Len(t, candles, 2)
	assert.Equal(t, "KRW-BTC", candles[0].Pair)
	assert.Equal(t, 101.0, candles[1].Close)
}

func TestLoadCandles_SourceError(t *testing.T) {
	cfg, err := Parse([]byte("data: {source: upbit, start: 2024-01-01, end: 2024-01-02}"))
	require.NoError(t, err)
	strat, err := cfg.NewStrategy()
	require.NoError(t, err)

	boom := errors.New("boom")
	src := &mocks.MockCandleSource{Err: boom}
	_, err = cfg.LoadCandles(context.Background(), src, strat)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, src.Calls)

	src = &mocks.MockCandleSource{Candles: []model.Candle{
		{Time: time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), Close: 1},
		{Time: time.Date(2024, 1, 1, 4, 0, 0, 0, time.UTC), Close: 2},
	}}
	candles, err := cfg.LoadCandles(context.Background(), src, strat)
	require.NoError(t, err)
	require.Len(t, candles, 1)
	assert.Equal(t, "KRW-BTC", candles[0].Pair)
}
