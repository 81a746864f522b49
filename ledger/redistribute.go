package ledger

import (
	"math"

	"lotbot/model"
)

// RedistributionShare : lot 이 두 개 이상 열려 있을 때 수익 중 원가 조정으로 돌리는 비율
const RedistributionShare = 0.5

// MinEntryPriceRatio : LONG lot 진입가는 조정 전 진입가의 이 비율 아래로 내려가지 않음
const MinEntryPriceRatio = 0.01

// RedistributeProfit : profit 을 targetSide lot 들에 똑같이 나눠 진입가를 조정한다.
// LONG 은 진입가를 낮추고 SHORT 는 높인다. 현금과 수량은 건드리지 않음.
// 조정한 lot 수와 실제로 원가에 반영한 금액을 돌려준다. LONG lot 의 몫이 진입가 하한에
// 걸리면 남는 부분은 반영하지 않는다 (호출자가 현금으로 처리)
func (l *Ledger) RedistributeProfit(profit float64, targetSide model.PositionSide) (int, float64) {
	if profit <= 0 || !targetSide.Valid() {
		return 0, 0
	}
	indices := l.sideIndices(targetSide)
	if len(indices) == 0 {
		return 0, 0
	}
	perLot := profit / float64(len(indices))
	var applied float64
	for _, idx := range indices {
		lot := &l.lots[idx]
		if targetSide == model.SideShort {
			lot.EntryPrice = (lot.EntryPrice*lot.Quantity + perLot) / lot.Quantity
			applied += perLot
			continue
		}
		floor := lot.EntryPrice * MinEntryPriceRatio
		cut := math.Min(perLot, (lot.EntryPrice-floor)*lot.Quantity)
		lot.EntryPrice = (lot.EntryPrice*lot.Quantity - cut) / lot.Quantity
		applied += cut
	}
	return len(indices), applied
}

// SplitRealizedProfit : 청산 직전 열린 lot 이 2개 이상이고 이익이면 절반을 재분배 몫으로 뗀다
func SplitRealizedProfit(net float64, openLotsBefore int) (retained, redistributable float64) {
	if net <= 0 || openLotsBefore <= 1 {
		return net, 0
	}
	redistributable = net * RedistributionShare
	return net - redistributable, redistributable
}
