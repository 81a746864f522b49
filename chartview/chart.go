package chartview

import (
	"errors"
	"fmt"
	"io"
	"time"

	"lotbot/backtest"
	"lotbot/indicator"
	"lotbot/model"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

var ErrEmptyResult = errors.New("chartview: result has no equity points")

const timeLayout = "01/02 15:04"

// RenderResult : 가격(봉+지표+청산), 자산곡선, drawdown 을 한 페이지로 출력
func RenderResult(w io.Writer, res *backtest.Result, indicators []indicator.ChartIndicator) error {
	if res == nil || len(res.Equity) == 0 {
		return ErrEmptyResult
	}

	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("%s %s %s", res.Strategy, res.Pair, res.Timeframe)

	if len(res.Candles) > 0 {
		page.AddCharts(buildCandleChart(res, indicators))
		for _, ind := range indicators {
			if !ind.Overlay {
				page.AddCharts(buildIndicatorChart(ind))
			}
		}
	}
	page.AddCharts(buildEquityChart(res.Equity), buildDrawdownChart(res.Equity))
	return page.Render(w)
}

func timeAxis(times []time.Time) []string {
	out := make([]string, len(times))
	for i, t := range times {
		out[i] = t.Format(timeLayout)
	}
	return out
}

func candleTimes(candles []model.Candle) []time.Time {
	out := make([]time.Time, len(candles))
	for i, c := range candles {
		out[i] = c.Time
	}
	return out
}

func globalOpts(title string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: title, Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	}
}

// buildCandleChart : 봉차트 + overlay 지표 + 청산 지점
func buildCandleChart(res *backtest.Result, indicators []indicator.ChartIndicator) *charts.Kline {
	candles := res.Candles
	xVals := timeAxis(candleTimes(candles))

	// go-echarts Kline 은 [open, close, low, high] 순서
	kValues := make([]opts.KlineData, len(candles))
	for i, c := range candles {
		kValues[i] = opts.KlineData{Value: [4]float64{c.Open, c.Close, c.Low, c.High}}
	}

	kline := charts.NewKLine()
	kline.SetGlobalOptions(globalOpts("Price")...)
	kline.SetXAxis(xVals).
		AddSeries("KLine", kValues).
		SetSeriesOptions(charts.WithItemStyleOpts(opts.ItemStyle{
			Color:        "#ec0000",
			Color0:       "#00da3c",
			BorderColor:  "#8A0000",
			BorderColor0: "#008F28",
		}))

	for _, ind := range indicators {
		if ind.Overlay {
			kline.Overlap(metricLines(xVals, ind))
		}
	}
	if len(res.Trades) > 0 {
		kline.Overlap(exitScatter(xVals, candles, res.Trades))
	}
	return kline
}

func metricLines(xVals []string, ind indicator.ChartIndicator) *charts.Line {
	line := charts.NewLine()
	line.SetXAxis(xVals)
	for _, metric := range ind.Metrics {
		line.AddSeries(metric.Name, lineData(metric.Values, ind.Warmup),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: metric.Color}))
	}
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
	return line
}

// lineData : warmup 구간은 비워서 0 으로 그려지지 않게 함
func lineData(values []float64, warmup int) []opts.LineData {
	out := make([]opts.LineData, len(values))
	for i, v := range values {
		if i < warmup {
			out[i] = opts.LineData{Value: "-"}
			continue
		}
		out[i] = opts.LineData{Value: v}
	}
	return out
}

// exitScatter : 청산 체결가를 해당 봉 위치에 표시
func exitScatter(xVals []string, candles []model.Candle, trades []model.TradeRecord) *charts.Scatter {
	index := make(map[int64]int, len(candles))
	for i, c := range candles {
		index[c.Time.Unix()] = i
	}
	long := make([]opts.ScatterData, len(xVals))
	short := make([]opts.ScatterData, len(xVals))
	for i := range xVals {
		long[i] = opts.ScatterData{Value: "-"}
		short[i] = opts.ScatterData{Value: "-"}
	}
	for _, t := range trades {
		i, ok := index[t.ExitTime.Unix()]
		if !ok {
			continue
		}
		point := opts.ScatterData{Value: t.ExitPrice, Symbol: "pin", SymbolSize: 14}
		if t.Side == model.SideShort {
			short[i] = point
		} else {
			long[i] = point
		}
	}

	scatter := charts.NewScatter()
	scatter.SetXAxis(xVals).
		AddSeries("Exit LONG", long, charts.WithItemStyleOpts(opts.ItemStyle{Color: "#1f77b4"})).
		AddSeries("Exit SHORT", short, charts.WithItemStyleOpts(opts.ItemStyle{Color: "#ff7f0e"}))
	return scatter
}

// buildIndicatorChart : overlay 가 아닌 지표 (RSI, MACD 등) 는 별도 차트
func buildIndicatorChart(ind indicator.ChartIndicator) *charts.Line {
	xVals := timeAxis(ind.Time)
	line := charts.NewLine()
	line.SetGlobalOptions(globalOpts(ind.GroupName)...)
	line.SetXAxis(xVals)
	for _, metric := range ind.Metrics {
		line.AddSeries(metric.Name, lineData(metric.Values, ind.Warmup),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: metric.Color}))
	}
	return line
}

func buildEquityChart(equity []model.EquityPoint) *charts.Line {
	times := make([]time.Time, len(equity))
	values := make([]float64, len(equity))
	for i, p := range equity {
		times[i] = p.Time
		values[i] = p.Equity
	}

	line := charts.NewLine()
	line.SetGlobalOptions(globalOpts("Equity")...)
	line.SetXAxis(timeAxis(times)).
		AddSeries("Equity", lineData(values, 0)).
		SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
	return line
}

func buildDrawdownChart(equity []model.EquityPoint) *charts.Line {
	times := make([]time.Time, len(equity))
	for i, p := range equity {
		times[i] = p.Time
	}

	line := charts.NewLine()
	line.SetGlobalOptions(globalOpts("Drawdown")...)
	line.SetXAxis(timeAxis(times)).
		AddSeries("Drawdown", lineData(Drawdowns(equity), 0),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: "#8A0000"}))
	return line
}

// Drawdowns : 각 시점의 직전 최고점 대비 하락률 (0 ~ 1)
func Drawdowns(equity []model.EquityPoint) []float64 {
	out := make([]float64, len(equity))
	peak := 0.0
	for i, p := range equity {
		if p.Equity > peak {
			peak = p.Equity
		}
		if peak > 0 {
			out[i] = (peak - p.Equity) / peak
		}
	}
	return out
}
