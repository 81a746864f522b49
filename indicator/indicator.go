package indicator

import (
	"time"

	"lotbot/model"

	"github.com/markcheno/go-talib"
)

type MetricStyle string

const (
	StyleBar       = "bar"
	StyleScatter   = "scatter"
	StyleLine      = "line"
	StyleHistogram = "histogram"
)

type IndicatorMetric struct {
	Name   string
	Color  string
	Style  MetricStyle // default: line
	Values model.Series[float64]
}

type ChartIndicator struct {
	Time      []time.Time
	Metrics   []IndicatorMetric
	Overlay   bool
	GroupName string
	Warmup    int
}

// talib 은 입력 길이가 lookback 보다 짧으면 index 범위를 벗어나므로
// 데이터가 부족하면 같은 길이의 0 시리즈를 돌려준다
func enough(input []float64, need int) bool {
	return need > 0 && len(input) >= need
}

func zeros(n int) model.Series[float64] {
	return make(model.Series[float64], n)
}

func SMA(input model.Series[float64], period int) model.Series[float64] {
	if !enough(input, period) {
		return zeros(len(input))
	}
	return talib.Sma(input, period)
}

func EMA(input model.Series[float64], period int) model.Series[float64] {
	if !enough(input, period) {
		return zeros(len(input))
	}
	return talib.Ema(input, period)
}

func RSI(input model.Series[float64], period int) model.Series[float64] {
	if !enough(input, period+1) {
		return zeros(len(input))
	}
	return talib.Rsi(input, period)
}

// MACD : macd, signal, hist
func MACD(input model.Series[float64], fast, slow, signal int) (model.Series[float64], model.Series[float64], model.Series[float64]) {
	if fast <= 0 || signal <= 0 || !enough(input, slow+signal) {
		return zeros(len(input)), zeros(len(input)), zeros(len(input))
	}
	macd, sig, hist := talib.Macd(input, fast, slow, signal)
	return macd, sig, hist
}

// BB : upper, middle, lower (SMA 기반)
func BB(input model.Series[float64], period int, deviation float64) (model.Series[float64], model.Series[float64], model.Series[float64]) {
	if !enough(input, period) {
		return zeros(len(input)), zeros(len(input)), zeros(len(input))
	}
	upper, middle, lower := talib.BBands(input, period, deviation, deviation, talib.SMA)
	return upper, middle, lower
}

func ATR(high, low, closePrices model.Series[float64], period int) model.Series[float64] {
	if !enough(closePrices, period+1) || len(high) != len(closePrices) || len(low) != len(closePrices) {
		return zeros(len(closePrices))
	}
	return talib.Atr(high, low, closePrices, period)
}

func Max(input model.Series[float64], period int) model.Series[float64] {
	if !enough(input, period) {
		return zeros(len(input))
	}
	return talib.Max(input, period)
}

func Min(input model.Series[float64], period int) model.Series[float64] {
	if !enough(input, period) {
		return zeros(len(input))
	}
	return talib.Min(input, period)
}
