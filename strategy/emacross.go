package strategy

import (
	"lotbot/indicator"
	"lotbot/interfaces"
	"lotbot/model"
)

// CrossEMA : EMA(fast) 가 SMA(slow) 를 상향 돌파하면 매수, 하향 돌파하면 전량 매도
type CrossEMA struct {
	Fast int
	Slow int
}

func NewCrossEMA(fast, slow int) *CrossEMA {
	if fast <= 0 {
		fast = 8
	}
	if slow <= fast {
		slow = 21
	}
	return &CrossEMA{Fast: fast, Slow: slow}
}

func (e CrossEMA) GetName() string {
	return "cross_ema"
}

func (e CrossEMA) Timeframe() string {
	return "4h"
}

func (e CrossEMA) WarmupPeriod() int {
	return e.Slow + 1
}

func (e CrossEMA) Indicators(df *model.Dataframe) []indicator.ChartIndicator {
	df.Metadata["ema_fast"] = indicator.EMA(df.Close, e.Fast)
	df.Metadata["sma_slow"] = indicator.SMA(df.Close, e.Slow)

	return []indicator.ChartIndicator{
		{
			Overlay:   true,
			GroupName: "MA's",
			Time:      df.Time,
			Metrics: []indicator.IndicatorMetric{
				{
					Values: df.Metadata["ema_fast"],
					Name:   "EMA",
					Color:  "red",
					Style:  indicator.StyleLine,
				},
				{
					Values: df.Metadata["sma_slow"],
					Name:   "SMA",
					Color:  "blue",
					Style:  indicator.StyleLine,
				},
			},
			Warmup: e.WarmupPeriod(),
		},
	}
}

func (e *CrossEMA) OnCandle(df *model.Dataframe, position interfaces.Position) (model.Decision, error) {
	series, err := lookup(df, "ema_fast", "sma_slow")
	if err != nil {
		return model.Hold(), err
	}
	fast, slow := series[0], series[1]

	holding := position.CountBySide(model.SideLong) > 0

	// trade signal (EMA > SMA)
	if !holding && fast.Crossover(slow) {
		return model.Decision{Action: model.ActionBuy, Confidence: 1, Tag: "ema_cross"}, nil
	}

	// trade signal (EMA < SMA)
	if holding && fast.Crossunder(slow) {
		return model.Decision{Action: model.ActionSell, Confidence: 1, Reduce: true}, nil
	}
	return model.Hold(), nil
}
