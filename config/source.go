package config

import (
	"context"
	"fmt"

	"lotbot/exchange"
	"lotbot/interfaces"
	"lotbot/model"
	"lotbot/strategy"
	"lotbot/utils/log"
)

// NewStrategy : strategy.name / strategy.params 로 전략 생성
func (c *Config) NewStrategy() (interfaces.Strategy, error) {
	return strategy.FromConfig(c.Strategy.Name, c.Strategy.Params)
}

// CandleSource : data.source 에 맞는 캔들 공급자
func (c *Config) CandleSource() (interfaces.CandleSource, error) {
	switch c.Data.Source {
	case SourceCSV:
		return exchange.NewCSVCandleSource(c.Backtest.Pair, c.Data.CSVPath)
	case SourceUpbit:
		return exchange.NewUpbit(c.Secrets.UpbitAccessKey, c.Secrets.UpbitSecretKey), nil
	}
	return nil, fmt.Errorf("%w: data.source %q", ErrInvalidConfig, c.Data.Source)
}

// LoadCandles : timeframe 이 비어 있으면 전략의 timeframe 사용
func (c *Config) LoadCandles(ctx context.Context, src interfaces.CandleSource, strat interfaces.Strategy) ([]model.Candle, error) {
	timeframe := c.Backtest.Timeframe
	if timeframe == "" {
		timeframe = strat.Timeframe()
	}
	start, end, err := c.Data.Range()
	if err != nil {
		return nil, err
	}

	candles, err := src.CandlesByPeriod(ctx, c.Backtest.Pair, timeframe, start, end)
	if err != nil {
		return nil, fmt.Errorf("load candles %s %s: %w", c.Backtest.Pair, timeframe, err)
	}
	log.Infof("[DATA] loaded %d candles for %s (%s, %s)", len(candles), c.Backtest.Pair, timeframe, c.Data.Source)
	return candles, nil
}
