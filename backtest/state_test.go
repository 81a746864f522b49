package backtest

import (
	"testing"

	"lotbot/ledger"
	"lotbot/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openFill(price, qty float64) model.Fill {
	return model.Fill{Pair: "KRW-BTC", Price: price, Quantity: qty, Time: t0}
}

func newHedgedState(t *testing.T, longPrice, longQty float64) *RunState {
	t.Helper()
	s := NewRunState(1000, AccountingSpot, ledger.LIFO)
	_, err := s.ApplyOpen(model.SideLong, openFill(longPrice, longQty), "")
	require.NoError(t, err)
	_, err = s.ApplyOpen(model.SideShort, openFill(100, 1), "")
	require.NoError(t, err)
	return s
}

// 트리거는 양쪽 합친 lot 수: 숏 1개 + 롱 1개여도 재분배
func TestRunState_RedistributesWhenTwoLotsOpenOverall(t *testing.T) {
	s := newHedgedState(t, 100, 1)
	before := s.Equity(90)

	out, err := s.ApplyClose("KRW-BTC", model.SideShort, openFill(90, 1), model.ReasonTakeProfit, true)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, out.Trade.NetPnl, 1e-9)
	assert.InDelta(t, 5.0, out.Redistributed, 1e-9)
	assert.InDelta(t, 105.0, out.Credited, 1e-9)
	assert.InDelta(t, 95.0, s.Ledger.LotsBySide(model.SideLong)[0].EntryPrice, 1e-9)
	assert.InDelta(t, before, s.Equity(90), 1e-9)
}

func TestRunState_SingleLotKeepsFullProfit(t *testing.T) {
	s := NewRunState(1000, AccountingSpot, ledger.LIFO)
	_, err := s.ApplyOpen(model.SideShort, openFill(100, 1), "")
	require.NoError(t, err)

	out, err := s.ApplyClose("KRW-BTC", model.SideShort, openFill(90, 1), model.ReasonTakeProfit, true)
	require.NoError(t, err)
	assert.Zero(t, out.Redistributed)
	assert.InDelta(t, 1010.0, s.Cash, 1e-9)
}

// 롱 진입가 하한에 걸린 나머지는 현금으로 남고 자산은 보존
func TestRunState_CappedRedistributionCreditsRemainder(t *testing.T) {
	s := newHedgedState(t, 10, 0.5)
	before := s.Equity(40)

	out, err := s.ApplyClose("KRW-BTC", model.SideShort, openFill(40, 1), model.ReasonTakeProfit, true)
	require.NoError(t, err)
	assert.InDelta(t, 60.0, out.Trade.NetPnl, 1e-9)
	assert.InDelta(t, 4.95, out.Redistributed, 1e-9)
	assert.InDelta(t, 160-4.95, out.Credited, 1e-9)

	long := s.Ledger.LotsBySide(model.SideLong)[0]
	assert.InDelta(t, 0.1, long.EntryPrice, 1e-9)
	assert.InDelta(t, before, s.Equity(40), 1e-9)
}
