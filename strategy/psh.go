package strategy

import (
	"math"

	"lotbot/indicator"
	"lotbot/interfaces"
	"lotbot/model"
	"lotbot/utils/log"
	"lotbot/utils/pointer"
)

const (
	defaultStopLossPercent   = 0.08
	defaultTakeProfitPercent = 0.4

	rsiOverboughtThreshold = 70.0
	rsiOversoldThreshold   = 30.0

	// trendLookback : 장기 MA 기울기를 볼 봉 수
	trendLookback = 5
)

type TrendType int

const (
	Bullish TrendType = iota
	Bearish
	Sideways
)

// PSHStrategy : 추세 구분(상승/하락/박스) 후 MA, RSI, MACD, 볼린저 조합으로 매매.
// 진입 시 익절/손절 가격을 Decision 에 실어 보냄
type PSHStrategy struct {
	StopLossPercent   float64
	TakeProfitPercent float64
}

func NewPSHStrategy(stopLoss, takeProfit float64) *PSHStrategy {
	if stopLoss <= 0 {
		stopLoss = defaultStopLossPercent
	}
	if takeProfit <= 0 {
		takeProfit = defaultTakeProfitPercent
	}
	return &PSHStrategy{StopLossPercent: stopLoss, TakeProfitPercent: takeProfit}
}

func (s *PSHStrategy) GetName() string {
	return "psh"
}

func (s *PSHStrategy) Timeframe() string {
	return "1h"
}

// WarmupPeriod : MACD(26+9), 장기 MA 기울기 계산에 필요한 최소 봉 수
func (s *PSHStrategy) WarmupPeriod() int {
	return 60
}

func (s *PSHStrategy) Indicators(df *model.Dataframe) []indicator.ChartIndicator {
	if df.Len() == 0 {
		return nil
	}

	df.Metadata["shortMA"] = indicator.EMA(df.Close, 10)
	df.Metadata["longMA"] = indicator.EMA(df.Close, 30)
	df.Metadata["rsi"] = indicator.RSI(df.Close, 14)
	df.Metadata["bb_up"], df.Metadata["bb_mid"], df.Metadata["bb_low"] = indicator.BB(df.Close, 20, 2.0)
	df.Metadata["macd"], df.Metadata["macdSignal"], df.Metadata["macdHist"] = indicator.MACD(df.Close, 12, 26, 9)

	return []indicator.ChartIndicator{
		{
			Time: df.Time,
			Metrics: []indicator.IndicatorMetric{
				{Name: "EMA Short", Color: "red", Style: indicator.StyleLine, Values: df.Metadata["shortMA"]},
				{Name: "EMA Long", Color: "blue", Style: indicator.StyleLine, Values: df.Metadata["longMA"]},
			},
			Overlay:   true,
			GroupName: "EMA",
			Warmup:    s.WarmupPeriod(),
		},
		{
			Time: df.Time,
			Metrics: []indicator.IndicatorMetric{
				{Name: "MACD", Color: "blue", Style: indicator.StyleLine, Values: df.Metadata["macd"]},
				{Name: "MACD Signal", Color: "red", Style: indicator.StyleLine, Values: df.Metadata["macdSignal"]},
				{Name: "MACD Hist", Color: "green", Style: indicator.StyleHistogram, Values: df.Metadata["macdHist"]},
			},
			Overlay:   false, // MACD 보통 하단 분리차트 (false)
			GroupName: "MACD",
			Warmup:    s.WarmupPeriod(),
		},
		{
			Time: df.Time,
			Metrics: []indicator.IndicatorMetric{
				{Name: "BB Upper", Color: "gray", Style: indicator.StyleLine, Values: df.Metadata["bb_up"]},
				{Name: "BB Mid", Color: "gray", Style: indicator.StyleLine, Values: df.Metadata["bb_mid"]},
				{Name: "BB Lower", Color: "gray", Style: indicator.StyleLine, Values: df.Metadata["bb_low"]},
			},
			Overlay:   true,
			GroupName: "Bollinger",
			Warmup:    s.WarmupPeriod(),
		},
		{
			Time: df.Time,
			Metrics: []indicator.IndicatorMetric{
				{Name: "RSI", Color: "purple", Style: indicator.StyleLine, Values: df.Metadata["rsi"]},
			},
			Overlay:   false,
			GroupName: "RSI",
			Warmup:    s.WarmupPeriod(),
		},
	}
}

// DetectTrend : 단기/장기 MA 위치와 장기 MA 기울기로 현재 추세 판정
func DetectTrend(shortMA, longMA model.Series[float64]) TrendType {
	if len(longMA) <= trendLookback || len(shortMA) == 0 {
		return Sideways
	}
	slope := longMA.Last(0) - longMA.Last(trendLookback)
	switch {
	case shortMA.Last(0) > longMA.Last(0) && slope > 0:
		return Bullish
	case shortMA.Last(0) < longMA.Last(0) && slope < 0:
		return Bearish
	default:
		return Sideways
	}
}

func (s *PSHStrategy) OnCandle(df *model.Dataframe, position interfaces.Position) (model.Decision, error) {
	series, err := lookup(df, "shortMA", "longMA", "rsi", "bb_up", "bb_mid", "bb_low", "macd", "macdSignal")
	if err != nil {
		return model.Hold(), err
	}
	shortMA, longMA, rsi := series[0], series[1], series[2]
	upperBand, middleBand, lowerBand := series[3], series[4], series[5]
	macd, macdSig := series[6], series[7]

	i := df.Len() - 1
	if i < 2 {
		return model.Hold(), nil
	}

	rsiVal := rsi[i]
	closePrice := df.Close[i]
	openPrice := df.Open[i]
	volume := df.Volume[i]

	for _, v := range []float64{rsiVal, shortMA[i], longMA[i], middleBand[i], upperBand[i], lowerBand[i], macd[i], macdSig[i]} {
		if math.IsNaN(v) {
			return model.Hold(), nil
		}
	}

	shouldBuy := false
	shouldSell := false

	isLowIncreasing := (df.Low[i-2] < df.Low[i-1]) && (df.Low[i-1] < df.Low[i])
	isHighDecreasing := (df.High[i-2] > df.High[i-1]) && (df.High[i-1] > df.High[i])

	switch DetectTrend(shortMA, longMA) {
	case Bullish:
		// 상승장: 골든크로스 + 과매수 아님 + 양봉 거래량 증가, 또는 저점 상승 양봉
		if shortMA.Crossover(longMA) && rsiVal < rsiOverboughtThreshold &&
			closePrice > openPrice && volume > df.Volume[i-1] {
			shouldBuy = true
		}
		if isLowIncreasing && closePrice > openPrice && rsiVal < rsiOverboughtThreshold {
			shouldBuy = true
		}

		if shortMA.Crossunder(longMA) || rsiVal > rsiOverboughtThreshold {
			shouldSell = true
		}
		if isHighDecreasing && closePrice < openPrice && rsiVal > rsiOversoldThreshold {
			shouldSell = true
		}

	case Bearish:
		// 하락장: 매도 조건을 넓게, 매수는 하단 밴드 + MACD 상향 돌파가 겹칠 때만
		if shortMA.Crossunder(longMA) || rsiVal > rsiOverboughtThreshold ||
			closePrice >= upperBand[i] || macd[i] < macdSig[i] {
			shouldSell = true
		}
		if closePrice <= lowerBand[i] && macd.Crossover(macdSig) && rsiVal < rsiOverboughtThreshold {
			shouldBuy = true
		}

	case Sideways:
		// 박스권: 밴드 하단 절반 + 과매도면 매수, 상단 절반 + 과매수면 매도
		half := (upperBand[i] - lowerBand[i]) / 2
		if rsiVal < rsiOversoldThreshold && closePrice <= lowerBand[i]+half {
			shouldBuy = true
		}
		if rsiVal > rsiOverboughtThreshold && closePrice >= upperBand[i]-half {
			shouldSell = true
		}
	}

	holding := position.CountBySide(model.SideLong) > 0
	if shouldSell && holding {
		log.Debugf("[PSHStrategy] 매도신호 %s close=%.2f rsi=%.2f", df.Time[i].Format("2006-01-02 15:04"), closePrice, rsiVal)
		return model.Decision{Action: model.ActionSell, Confidence: 1, Reduce: true}, nil
	}
	if shouldBuy && !holding {
		log.Debugf("[PSHStrategy] 매수신호 %s close=%.2f rsi=%.2f", df.Time[i].Format("2006-01-02 15:04"), closePrice, rsiVal)
		return model.Decision{
			Action:      model.ActionBuy,
			Confidence:  1,
			TargetPrice: pointer.Create(closePrice * (1 + s.TakeProfitPercent)),
			StopLoss:    pointer.Create(closePrice * (1 - s.StopLossPercent)),
			Tag:         "psh",
		}, nil
	}
	return model.Hold(), nil
}
