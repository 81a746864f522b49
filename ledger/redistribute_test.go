package ledger

import (
	"testing"

	"lotbot/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedistributeProfit_SingleShortLot(t *testing.T) {
	l := New()
	_, _ = l.OpenLot(model.SideShort, 50, 10, "")

	n, applied := l.RedistributeProfit(20, model.SideShort)
	require.Equal(t, 1, n)
	assert.InDelta(t, 20.0, applied, 1e-12)
	// (50*10 + 20) / 10
	assert.InDelta(t, 52.0, l.Lots()[0].EntryPrice, 1e-9)
}

func TestRedistributeProfit_LongLotsLowerBasis(t *testing.T) {
	l := New()
	_, _ = l.OpenLot(model.SideLong, 100, 2, "")
	_, _ = l.OpenLot(model.SideLong, 80, 4, "")
	_, _ = l.OpenLot(model.SideShort, 90, 1, "")

	n, applied := l.RedistributeProfit(10, model.SideLong)
	require.Equal(t, 2, n)
	assert.InDelta(t, 10.0, applied, 1e-12)

	lots := l.LotsBySide(model.SideLong)
	assert.InDelta(t, (100*2-5)/2.0, lots[0].EntryPrice, 1e-9)
	assert.InDelta(t, (80*4-5)/4.0, lots[1].EntryPrice, 1e-9)
	assert.InDelta(t, 90.0, l.LotsBySide(model.SideShort)[0].EntryPrice, 1e-9, "other side untouched")
}

func TestRedistributeProfit_NoTargetLots(t *testing.T) {
	l := New()
	_, _ = l.OpenLot(model.SideLong, 100, 1, "")

	for _, tc := range []struct {
		profit float64
		side   model.PositionSide
	}{{10, model.SideShort}, {0, model.SideLong}, {-3, model.SideLong}} {
		n, applied := l.RedistributeProfit(tc.profit, tc.side)
		assert.Equal(t, 0, n)
		assert.Zero(t, applied)
	}
	assert.InDelta(t, 100.0, l.Lots()[0].EntryPrice, 1e-9)
}

// 원가 총합이 정확히 profit 만큼 이동하고 수량은 그대로
func TestRedistributeProfit_ConservesCostBasis(t *testing.T) {
	for _, side := range []model.PositionSide{model.SideLong, model.SideShort} {
		l := New()
		_, _ = l.OpenLot(side, 101.5, 0.7, "")
		_, _ = l.OpenLot(side, 99.25, 3.1, "")
		_, _ = l.OpenLot(side, 97, 1.2, "")

		cost := func() (float64, float64) {
			var c, q float64
			for _, lot := range l.LotsBySide(side) {
				c += lot.EntryPrice * lot.Quantity
				q += lot.Quantity
			}
			return c, q
		}
		beforeCost, beforeQty := cost()
		l.RedistributeProfit(13.7, side)
		afterCost, afterQty := cost()

		assert.InDelta(t, beforeQty, afterQty, 1e-12)
		if side == model.SideLong {
			assert.InDelta(t, 13.7, beforeCost-afterCost, 1e-9)
		} else {
			assert.InDelta(t, -13.7, beforeCost-afterCost, 1e-9)
		}
	}
}

func TestRedistributeProfit_LongBasisStaysPositive(t *testing.T) {
	l := New()
	_, _ = l.OpenLot(model.SideLong, 10, 0.5, "")
	_, _ = l.OpenLot(model.SideLong, 100, 1, "")

	n, applied := l.RedistributeProfit(20, model.SideLong)
	require.Equal(t, 2, n)

	lots := l.LotsBySide(model.SideLong)
	// 첫 lot 은 하한(10 * 0.01)에 걸려 (10-0.1)*0.5 만 반영
	assert.InDelta(t, 0.1, lots[0].EntryPrice, 1e-9)
	assert.InDelta(t, 90.0, lots[1].EntryPrice, 1e-9)
	assert.InDelta(t, 4.95+10, applied, 1e-9)
	for _, lot := range lots {
		assert.Greater(t, lot.EntryPrice, 0.0)
		assert.Greater(t, lot.RevenueRate(10), 0.0)
	}
}

func TestSplitRealizedProfit(t *testing.T) {
	tests := []struct {
		name       string
		net        float64
		open       int
		retained   float64
		redistribe float64
	}{
		{"single lot keeps all", 10, 1, 10, 0},
		{"loss keeps all", -10, 3, -10, 0},
		{"multi lot splits half", 10, 2, 5, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, d := SplitRealizedProfit(tt.net, tt.open)
			assert.InDelta(t, tt.retained, r, 1e-12)
			assert.InDelta(t, tt.redistribe, d, 1e-12)
		})
	}
}
