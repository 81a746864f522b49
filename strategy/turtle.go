package strategy

import (
	"lotbot/indicator"
	"lotbot/interfaces"
	"lotbot/model"
)

// https://www.investopedia.com/articles/trading/08/turtle-trading.asp
type Turtle struct {
	Entry int
	Exit  int
}

func NewTurtle(entry, exit int) *Turtle {
	if entry <= 0 {
		entry = 40
	}
	if exit <= 0 {
		exit = 20
	}
	return &Turtle{Entry: entry, Exit: exit}
}

func (e Turtle) GetName() string {
	return "turtle"
}

func (e Turtle) Timeframe() string {
	return "4h"
}

func (e Turtle) WarmupPeriod() int {
	return max(e.Entry, e.Exit)
}

func (e Turtle) Indicators(df *model.Dataframe) []indicator.ChartIndicator {
	df.Metadata["max_entry"] = indicator.Max(df.Close, e.Entry)
	df.Metadata["min_exit"] = indicator.Min(df.Close, e.Exit)

	return nil
}

func (e *Turtle) OnCandle(df *model.Dataframe, position interfaces.Position) (model.Decision, error) {
	series, err := lookup(df, "max_entry", "min_exit")
	if err != nil {
		return model.Hold(), err
	}
	highs, lows := series[0], series[1]
	closePrice := df.Close.Last(0)
	highest := highs.Last(0)
	lowest := lows.Last(0)

	// If position already open wait till it will be closed
	holding := position.CountBySide(model.SideLong) > 0
	if !holding && highest > 0 && closePrice >= highest {
		return model.Decision{Action: model.ActionBuy, Confidence: 1, Tag: "breakout"}, nil
	}

	if holding && closePrice <= lowest {
		return model.Decision{Action: model.ActionSell, Confidence: 1, Reduce: true}, nil
	}
	return model.Hold(), nil
}
