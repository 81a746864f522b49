// Package stats 는 완료된 백테스트(거래 기록 + 자산 곡선)에서 성과 지표를 계산한다.
// 모든 나눗셈은 0 분모를 검사하고 NaN 대신 0 또는 +Inf 를 돌려준다.
package stats

import (
	"math"
	"time"

	"lotbot/model"
	"lotbot/utils/tools"

	"github.com/samber/lo"
)

const (
	// zeroTolerance : 이보다 작은 분모는 0 으로 취급
	zeroTolerance = 1e-12

	// DefaultAnnualization : 주식 거래일 기준
	DefaultAnnualization = 252.0
)

// Compute : StatsReport 생성. 거래가 없어도 에러 없이 0/센티넬 값으로 채움
func Compute(initialBalance, finalBalance float64, trades []model.TradeRecord, equity []model.EquityPoint, annualization float64) model.StatsReport {
	wins := lo.Filter(trades, func(t model.TradeRecord, _ int) bool { return t.IsWin() })
	losses := lo.Filter(trades, func(t model.TradeRecord, _ int) bool { return t.IsLoss() })

	report := model.StatsReport{
		InitialBalance: initialBalance,
		FinalBalance:   finalBalance,
		TradeCount:     len(trades),
		WinCount:       len(wins),
		LossCount:      len(losses),
		TotalReturn:    TotalReturn(initialBalance, finalBalance),
		WinRate:        ratio(float64(len(wins)), float64(len(trades))),
		AvgWin:         meanNet(wins),
		AvgLoss:        meanNet(losses),
	}
	report.ProfitFactor = ProfitFactor(report.AvgWin, report.AvgLoss)

	curve := lo.Map(equity, func(p model.EquityPoint, _ int) float64 { return p.Equity })
	report.MaxDrawdown = MaxDrawdown(curve)

	returns := PeriodReturns(curve)
	report.SharpeRatio = Sharpe(returns, annualization)
	report.SortinoRatio = Sortino(returns, annualization)
	report.CalmarRatio = Calmar(report.TotalReturn, report.MaxDrawdown)
	return report
}

func TotalReturn(initialBalance, finalBalance float64) float64 {
	if initialBalance <= zeroTolerance {
		return 0
	}
	return (finalBalance - initialBalance) / initialBalance
}

// ProfitFactor : |avgWin| / |avgLoss|, 손실이 없으면 +Inf
func ProfitFactor(avgWin, avgLoss float64) float64 {
	if math.Abs(avgLoss) <= zeroTolerance {
		return math.Inf(1)
	}
	return math.Abs(avgWin) / math.Abs(avgLoss)
}

// MaxDrawdown : 누적 고점 대비 최대 하락 비율. 고점이 0 이하인 구간은 건너뜀
func MaxDrawdown(equity []float64) float64 {
	if len(equity) == 0 {
		return 0
	}
	peak := equity[0]
	maxDD := 0.0
	for _, e := range equity {
		if e > peak {
			peak = e
		}
		if peak <= zeroTolerance {
			continue
		}
		if dd := (peak - e) / peak; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// PeriodReturns : 연속 자산 샘플의 단순 수익률. 직전 자산이 0 이하이면 제외
func PeriodReturns(equity []float64) []float64 {
	if len(equity) < 2 {
		return nil
	}
	out := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		prev := equity[i-1]
		if prev <= zeroTolerance {
			continue
		}
		out = append(out, equity[i]/prev-1)
	}
	return out
}

func Sharpe(returns []float64, annualization float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	m := mean(returns)
	sd := stddev(returns, m)
	if sd <= zeroTolerance {
		return 0
	}
	return m / sd * math.Sqrt(annualizationOrDefault(annualization))
}

// Sortino : 분모로 음수 수익률만의 표준편차 사용. 음수 구간이 2개 미만이면 0
func Sortino(returns []float64, annualization float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	negatives := lo.Filter(returns, func(r float64, _ int) bool { return r < 0 })
	if len(negatives) < 2 {
		return 0
	}
	sd := stddev(negatives, mean(negatives))
	if sd <= zeroTolerance {
		return 0
	}
	return mean(returns) / sd * math.Sqrt(annualizationOrDefault(annualization))
}

func Calmar(totalReturn, maxDrawdown float64) float64 {
	if maxDrawdown <= zeroTolerance {
		return 0
	}
	return totalReturn / maxDrawdown
}

// AnnualizationFor : 타임프레임 기준 연간 기간 수 (코인 365일, 24시간)
func AnnualizationFor(timeframe string) float64 {
	d, err := tools.ParseTimeframeToDuration(timeframe)
	if err != nil || d <= 0 {
		return DefaultAnnualization
	}
	return float64(365*24*time.Hour) / float64(d)
}

func annualizationOrDefault(a float64) float64 {
	if a <= 0 {
		return DefaultAnnualization
	}
	return a
}

func meanNet(trades []model.TradeRecord) float64 {
	if len(trades) == 0 {
		return 0
	}
	return lo.SumBy(trades, func(t model.TradeRecord) float64 { return t.NetPnl }) / float64(len(trades))
}

func ratio(num, den float64) float64 {
	if den <= zeroTolerance {
		return 0
	}
	return num / den
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return lo.Sum(values) / float64(len(values))
}

// stddev : 표본 표준편차 (n-1)
func stddev(values []float64, m float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(n-1))
}
