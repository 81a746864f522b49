package ledger

import (
	"fmt"
	"time"

	"lotbot/model"

	"github.com/samber/lo"
)

// Epsilon : 이 이하로 남은 수량은 0 으로 보고 lot 을 지움
const Epsilon = 1e-6

// Ledger : 한 종목의 오픈 lot 목록 (삽입 순서 유지)
type Ledger struct {
	lots   []model.Lot
	nextID int64
	policy ConsumptionPolicy
}

type Option func(*Ledger)

func WithPolicy(policy ConsumptionPolicy) Option {
	return func(l *Ledger) {
		if policy != nil {
			l.policy = policy
		}
	}
}

func New(opts ...Option) *Ledger {
	l := &Ledger{policy: LIFO}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Ledger) Policy() ConsumptionPolicy {
	return l.policy
}

// OpenLot : 새 lot 추가. 수수료는 호출자가 따로 계산해서 현금에서 뺀다
func (l *Ledger) OpenLot(side model.PositionSide, price, quantity float64, tag string) (int64, error) {
	return l.OpenLotAt(side, price, quantity, tag, time.Time{}, 0)
}

// OpenLotAt : 진입 시각과 묶인 자본(margin)까지 기록
func (l *Ledger) OpenLotAt(side model.PositionSide, price, quantity float64, tag string, openedAt time.Time, margin float64) (int64, error) {
	if !side.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSide, side)
	}
	if quantity <= 0 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidQuantity, quantity)
	}
	if price <= 0 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPrice, price)
	}
	l.nextID++
	l.lots = append(l.lots, model.Lot{
		ID:         l.nextID,
		Side:       side,
		EntryPrice: price,
		Quantity:   quantity,
		Tag:        tag,
		OpenedAt:   openedAt,
		Margin:     margin,
	})
	return l.nextID, nil
}

// Lots : 전체 lot 복사본 (삽입 순서)
func (l *Ledger) Lots() []model.Lot {
	return append([]model.Lot(nil), l.lots...)
}

func (l *Ledger) LotsBySide(side model.PositionSide) []model.Lot {
	return lo.Filter(l.lots, func(lot model.Lot, _ int) bool {
		return lot.Side == side
	})
}

func (l *Ledger) Len() int {
	return len(l.lots)
}

func (l *Ledger) IsEmpty() bool {
	return len(l.lots) == 0
}

func (l *Ledger) CountBySide(side model.PositionSide) int {
	return lo.CountBy(l.lots, func(lot model.Lot) bool {
		return lot.Side == side
	})
}

func (l *Ledger) TotalQuantity(side model.PositionSide) float64 {
	return lo.SumBy(l.LotsBySide(side), func(lot model.Lot) float64 {
		return lot.Quantity
	})
}

// WeightedAveragePrice : Σ(entry*qty)/Σqty, 해당 방향 lot 이 없으면 0
func (l *Ledger) WeightedAveragePrice(side model.PositionSide) float64 {
	lots := l.LotsBySide(side)
	qty := lo.SumBy(lots, func(lot model.Lot) float64 { return lot.Quantity })
	if qty <= 0 {
		return 0
	}
	cost := lo.SumBy(lots, func(lot model.Lot) float64 { return lot.EntryPrice * lot.Quantity })
	return cost / qty
}

func (l *Ledger) UnrealizedPnl(side model.PositionSide, currentPrice float64) float64 {
	return lo.SumBy(l.LotsBySide(side), func(lot model.Lot) float64 {
		return lot.Pnl(currentPrice)
	})
}

// Margin : 해당 방향에 묶여 있는 자본 합
func (l *Ledger) Margin(side model.PositionSide) float64 {
	return lo.SumBy(l.LotsBySide(side), func(lot model.Lot) float64 {
		return lot.Margin
	})
}

// LotReturn : MostProfitableLot 결과
type LotReturn struct {
	LotID       int64
	Side        model.PositionSide
	Quantity    float64
	RatePercent float64
}

// MostProfitableLot : 양방향 전체에서 currentPrice 기준 수익률 최대 lot.
// 뒤에서부터 훑고 더 큰 값만 갱신하므로 동률이면 가장 최근 lot 이 이긴다
func (l *Ledger) MostProfitableLot(currentPrice float64) (LotReturn, bool) {
	var (
		best  LotReturn
		found bool
	)
	for i := len(l.lots) - 1; i >= 0; i-- {
		lot := l.lots[i]
		rate := lot.RevenueRate(currentPrice)
		if !found || rate > best.RatePercent {
			best = LotReturn{LotID: lot.ID, Side: lot.Side, Quantity: lot.Quantity, RatePercent: rate}
			found = true
		}
	}
	return best, found
}

// Lot : id 로 조회
func (l *Ledger) Lot(id int64) (model.Lot, bool) {
	return lo.Find(l.lots, func(lot model.Lot) bool {
		return lot.ID == id
	})
}

func (l *Ledger) sideIndices(side model.PositionSide) []int {
	var out []int
	for i, lot := range l.lots {
		if lot.Side == side {
			out = append(out, i)
		}
	}
	return out
}
