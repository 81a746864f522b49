package strategy

import (
	"fmt"

	"lotbot/indicator"
	"lotbot/interfaces"
	"lotbot/model"
)

// MagicSplit : 퍼센트 사다리 분할매수.
// 첫 lot 이후 가장 최근 lot 진입가보다 SplitGap 만큼 빠질 때마다 한 lot 씩 추가하고,
// 가장 최근 lot 이 TargetGain 만큼 오르면 그 lot 만 판다 (LIFO 청산과 짝)
type MagicSplit struct {
	Splits     int
	SplitGap   float64 // 0.03 = 3%
	TargetGain float64
	// LotBudget : lot 하나에 쓰는 금액. 0 이면 드라이버의 PositionFraction 사용
	LotBudget float64
}

func NewMagicSplit(splits int, gap, target, budget float64) *MagicSplit {
	if splits <= 0 {
		splits = 5
	}
	if gap <= 0 {
		gap = 0.03
	}
	if target <= 0 {
		target = 0.03
	}
	return &MagicSplit{Splits: splits, SplitGap: gap, TargetGain: target, LotBudget: budget}
}

func (m *MagicSplit) GetName() string {
	return "magic_split"
}

func (m *MagicSplit) Timeframe() string {
	return "1h"
}

func (m *MagicSplit) WarmupPeriod() int {
	return 1
}

func (m *MagicSplit) Indicators(_ *model.Dataframe) []indicator.ChartIndicator {
	return nil
}

func (m *MagicSplit) OnCandle(df *model.Dataframe, position interfaces.Position) (model.Decision, error) {
	closePrice := df.Close.Last(0)
	count := position.CountBySide(model.SideLong)

	newest, ok := newestLot(position, model.SideLong)
	if !ok {
		return m.buy(closePrice, 1), nil
	}

	if closePrice >= newest.EntryPrice*(1+m.TargetGain) {
		return model.Decision{
			Action:     model.ActionSell,
			Confidence: 1,
			Quantity:   newest.Quantity,
			Reduce:     true,
			Tag:        newest.Tag,
		}, nil
	}

	if count < m.Splits && closePrice <= newest.EntryPrice*(1-m.SplitGap) {
		return m.buy(closePrice, count+1), nil
	}
	return model.Hold(), nil
}

func (m *MagicSplit) buy(price float64, step int) model.Decision {
	d := model.Decision{
		Action:     model.ActionBuy,
		Confidence: 1,
		Tag:        fmt.Sprintf("split-%d", step),
	}
	if m.LotBudget > 0 && price > 0 {
		d.Quantity = m.LotBudget / price
	}
	return d
}
