package optimizer

import (
	"context"
	"errors"
	"testing"
	"time"

	"lotbot/backtest"
	"lotbot/indicator"
	"lotbot/interfaces"
	"lotbot/model"
	"lotbot/strategy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buyOnce : 첫 봉에서 qty 만큼 매수 후 보유
type buyOnce struct {
	qty float64
}

func (b *buyOnce) GetName() string   { return "buy_once" }
func (b *buyOnce) Timeframe() string { return "1h" }
func (b *buyOnce) WarmupPeriod() int { return 0 }
func (b *buyOnce) Indicators(_ *model.Dataframe) []indicator.ChartIndicator {
	return nil
}

func (b *buyOnce) OnCandle(df *model.Dataframe, position interfaces.Position) (model.Decision, error) {
	if position.CountBySide(model.SideLong) == 0 && df.Len() == 1 {
		return model.Decision{Action: model.ActionBuy, Quantity: b.qty}, nil
	}
	return model.Hold(), nil
}

func rising(n int) []model.Candle {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]model.Candle, n)
	for i := range out {
		p := 100 + float64(i) + float64(i%3)
		out[i] = model.Candle{Time: t0.Add(time.Duration(i) * time.Hour), Open: p, High: p, Low: p, Close: p}
	}
	return out
}

func factory(p ParamSet) (interfaces.Strategy, error) {
	if p["qty"] < 0 {
		return nil, errors.New("negative qty")
	}
	return &buyOnce{qty: p["qty"]}, nil
}

func TestExpand(t *testing.T) {
	combos, err := Expand(Grid{"slow": {21, 30}, "fast": {8, 8, 10}})
	require.NoError(t, err)
	require.Len(t, combos, 4)
	assert.Equal(t, "fast=8,slow=21", combos[0].Key())
	assert.Equal(t, "fast=8,slow=30", combos[1].Key())
	assert.Equal(t, "fast=10,slow=21", combos[2].Key())

	combos, err = Expand(Grid{"fast": {5, 5, 5}})
	require.NoError(t, err)
	require.Len(t, combos, 1)
	assert.Equal(t, "fast=5", combos[0].Key())

	combos, err = Expand(nil)
	require.NoError(t, err)
	assert.Len(t, combos, 1)

	_, err = Expand(Grid{"fast": {}})
	assert.ErrorIs(t, err, ErrEmptyGrid)
}

func TestOptimizer_SortedAndDeterministic(t *testing.T) {
	cfg := backtest.Config{InitialBalance: 10_000}
	o, err := New(cfg, factory, WithWorkers(3))
	require.NoError(t, err)

	candles := rising(20)
	grid := Grid{"qty": {1, 5, 10, -1}}

	first, err := o.Run(context.Background(), candles, grid)
	require.NoError(t, err)
	require.Len(t, first, 4)

	for i := 0; i < 2; i++ {
		assert.GreaterOrEqual(t, first[i].sharpe(), first[i+1].sharpe())
	}
	assert.Error(t, first[3].Err, "failed combination sorts last")
	assert.Equal(t, -1.0, first[3].Params["qty"])

	again, err := o.Run(context.Background(), candles, grid)
	require.NoError(t, err)
	for i := range first {
		assert.Equal(t, first[i].Params.Key(), again[i].Params.Key())
	}

	best, ok := Best(first)
	require.True(t, ok)
	assert.Equal(t, best.Result.Params["qty"], best.Params["qty"])
	assert.Equal(t, 20, len(candles), "input untouched")
}

func TestOptimizer_CancelledContext(t *testing.T) {
	o, err := New(backtest.Config{}, factory)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out, err := o.Run(ctx, rising(5), Grid{"qty": {1, 2, 3}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out)
}

func TestOptimizer_WithRegisteredStrategy(t *testing.T) {
	o, err := New(backtest.Config{}, func(p ParamSet) (interfaces.Strategy, error) {
		return strategy.FromConfig("cross_ema", strategy.Params(p))
	}, WithWorkers(2))
	require.NoError(t, err)

	out, err := o.Run(context.Background(), rising(60), Grid{"fast": {3, 5}, "slow": {10}})
	require.NoError(t, err)
	require.Len(t, out, 2)
	for _, r := range out {
		require.NoError(t, r.Err)
		assert.Len(t, r.Result.Equity, 60)
	}
}

func TestNew_Validation(t *testing.T) {
	_, err := New(backtest.Config{}, nil)
	assert.ErrorIs(t, err, ErrNoFactory)

	_, err = New(backtest.Config{InitialBalance: -1}, factory)
	assert.ErrorIs(t, err, backtest.ErrInvalidConfig)
}
