package strategy

import (
	"lotbot/indicator"
	"lotbot/interfaces"
	"lotbot/model"
)

// reverseMultiple : 가장 좋은 lot 수익률이 -reverseMultiple*target 이하이면 반대 방향 진입
const reverseMultiple = 3.0

// Martingale : 양방향 물타기. 헤지 모드 + 재분배와 함께 쓴다.
// 어떤 lot 이든 목표 수익률에 닿으면 그 방향을 한 lot 만큼 정리하고,
// 전체 lot 이 목표의 -3배 아래로 밀리면 마지막 lot 반대 방향으로 Multiplier 배 수량 진입
type Martingale struct {
	TargetPercent float64 // 1.0 = 1%
	BaseQuantity  float64
	Multiplier    float64
}

func NewMartingale(targetPercent, baseQuantity, multiplier float64) *Martingale {
	if targetPercent <= 0 {
		targetPercent = 1
	}
	if multiplier <= 0 {
		multiplier = 2
	}
	return &Martingale{TargetPercent: targetPercent, BaseQuantity: baseQuantity, Multiplier: multiplier}
}

func (m *Martingale) GetName() string {
	return "martingale"
}

func (m *Martingale) Timeframe() string {
	return "15m"
}

func (m *Martingale) WarmupPeriod() int {
	return 1
}

func (m *Martingale) Indicators(_ *model.Dataframe) []indicator.ChartIndicator {
	return nil
}

func (m *Martingale) OnCandle(df *model.Dataframe, position interfaces.Position) (model.Decision, error) {
	closePrice := df.Close.Last(0)

	best, ok := position.MostProfitableLot(closePrice)
	if !ok {
		return model.Decision{Action: model.ActionBuy, Confidence: 1, Quantity: m.BaseQuantity, Tag: "base"}, nil
	}

	if best.RatePercent >= m.TargetPercent {
		action := model.ActionSell
		if best.Side == model.SideShort {
			action = model.ActionBuy
		}
		return model.Decision{Action: action, Confidence: 1, Quantity: best.Quantity, Reduce: true}, nil
	}

	if best.RatePercent <= -reverseMultiple*m.TargetPercent {
		lots := position.Lots()
		last := lots[len(lots)-1]
		action := model.ActionSell
		if last.Side == model.SideShort {
			action = model.ActionBuy
		}
		return model.Decision{
			Action:     action,
			Confidence: 1,
			Quantity:   last.Quantity * m.Multiplier,
			Tag:        "reverse",
		}, nil
	}
	return model.Hold(), nil
}
