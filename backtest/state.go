package backtest

import (
	"fmt"
	"time"

	"lotbot/ledger"
	"lotbot/model"

	"github.com/samber/lo"
)

// RunState : 백테스트 한 번의 누적 상태. 드라이버 하나가 단독 소유
type RunState struct {
	Cash        float64
	Ledger      *ledger.Ledger
	EquityCurve []model.EquityPoint
	TradeLog    []model.TradeRecord

	accounting Accounting
}

func NewRunState(initialBalance float64, accounting Accounting, policy ledger.ConsumptionPolicy) *RunState {
	return &RunState{
		Cash:       initialBalance,
		Ledger:     ledger.New(ledger.WithPolicy(policy)),
		accounting: accounting,
	}
}

// Equity : spot 은 묶인 자본까지, futures 는 지갑 + 미실현
func (s *RunState) Equity(price float64) float64 {
	equity := s.Cash
	for _, lot := range s.Ledger.Lots() {
		equity += lot.Pnl(price)
		if s.accounting == AccountingSpot {
			equity += lot.Margin
		}
	}
	return equity
}

// OpenCost : 진입에 필요한 현금 (spot: notional+fee, futures: fee)
func (s *RunState) OpenCost(notional, fee float64) float64 {
	if s.accounting == AccountingFutures {
		return fee
	}
	return notional + fee
}

// ApplyOpen : 체결 결과를 원장과 현금에 반영. 시뮬 체결이든 실체결이든 같은 경로
func (s *RunState) ApplyOpen(side model.PositionSide, fill model.Fill, tag string) (int64, error) {
	margin := 0.0
	if s.accounting == AccountingSpot {
		margin = fill.Notional()
	}
	cost := s.OpenCost(fill.Notional(), fill.Fee)
	if cost > s.Cash+ledger.Epsilon {
		return 0, fmt.Errorf("%w: need %.4f, have %.4f", ErrInsufficientFunds, cost, s.Cash)
	}
	id, err := s.Ledger.OpenLotAt(side, fill.Price, fill.Quantity, tag, fill.Time, margin)
	if err != nil {
		return 0, err
	}
	s.Cash -= cost
	return id, nil
}

// CloseOutcome : ApplyClose 결과
type CloseOutcome struct {
	ledger.Realization
	Redistributed float64
	Credited      float64
}

// ApplyClose : 청산 체결 반영. redistribute 이고 청산 직전 양쪽 합쳐 lot 이 2개 이상이면
// 이익의 절반을 반대편 lot 원가로 옮기고 반영된 만큼은 현금으로 넣지 않는다
// (반대편이 비어 있으면 전액 현금)
func (s *RunState) ApplyClose(pair string, side model.PositionSide, fill model.Fill, reason model.ExitReason, redistribute bool) (CloseOutcome, error) {
	openBefore := s.Ledger.Len()
	r, err := s.Ledger.CloseQuantity(ledger.CloseRequest{
		Pair:        pair,
		Side:        side,
		Quantity:    fill.Quantity,
		Price:       fill.Price,
		ExitFeeRate: fill.FeeRate(),
		Reason:      reason,
		Time:        fill.Time,
	})
	if err != nil || !r.Filled {
		return CloseOutcome{Realization: r}, err
	}

	out := CloseOutcome{Realization: r}
	out.Credited = r.Trade.NetPnl
	if s.accounting == AccountingSpot {
		out.Credited += r.ReleasedMargin
	}
	if redistribute {
		if _, share := ledger.SplitRealizedProfit(r.Trade.NetPnl, openBefore); share > 0 {
			if _, applied := s.Ledger.RedistributeProfit(share, side.Opposite()); applied > 0 {
				out.Redistributed = applied
				out.Credited -= applied
			}
		}
	}
	s.Cash += out.Credited
	s.TradeLog = append(s.TradeLog, r.Trade)
	return out, nil
}

func (s *RunState) Record(t time.Time, price float64) {
	s.EquityCurve = append(s.EquityCurve, model.EquityPoint{Time: t, Equity: s.Equity(price)})
}

// OpenSides : lot 이 남아 있는 방향 (LONG 먼저)
func (s *RunState) OpenSides() []model.PositionSide {
	return lo.Filter([]model.PositionSide{model.SideLong, model.SideShort}, func(side model.PositionSide, _ int) bool {
		return s.Ledger.CountBySide(side) > 0
	})
}
