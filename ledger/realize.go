package ledger

import (
	"fmt"
	"math"
	"time"

	"lotbot/model"

	"github.com/samber/lo"
)

type CloseRequest struct {
	Pair        string
	Side        model.PositionSide
	Quantity    float64
	Price       float64
	ExitFeeRate float64
	Reason      model.ExitReason
	Time        time.Time
}

// Realization : CloseQuantity 한 번의 결과
type Realization struct {
	Trade model.TradeRecord
	// Filled : false 면 해당 방향 lot 이 없어 아무것도 청산하지 않음
	Filled bool
	// Clamped : 요청 수량이 보유 수량보다 커서 잘렸음
	Clamped bool
	// ReleasedMargin : 청산된 수량만큼 풀려난 진입 자본
	ReleasedMargin float64
}

// CloseQuantity : 정책 순서(LIFO 기본)로 lot 을 소모하며 청산, 거래 기록 1건을 만든다.
// 보유보다 큰 요청은 에러 없이 보유 수량으로 잘린다
func (l *Ledger) CloseQuantity(req CloseRequest) (Realization, error) {
	if !req.Side.Valid() {
		return Realization{}, fmt.Errorf("%w: %q", ErrInvalidSide, req.Side)
	}
	if req.Quantity <= 0 || math.IsNaN(req.Quantity) {
		return Realization{}, fmt.Errorf("%w: %v", ErrInvalidQuantity, req.Quantity)
	}
	if req.Price <= 0 || math.IsNaN(req.Price) {
		return Realization{}, fmt.Errorf("%w: %v", ErrInvalidPrice, req.Price)
	}
	if err := validateRate(req.ExitFeeRate); err != nil {
		return Realization{}, err
	}

	order := l.policy.Order(l.sideIndices(req.Side))
	if len(order) == 0 {
		return Realization{}, nil
	}

	var (
		result    Realization
		trade     = model.TradeRecord{Pair: req.Pair, Side: req.Side, ExitPrice: req.Price, Reason: req.Reason, ExitTime: req.Time}
		remaining = req.Quantity
		costSum   float64
		removed   = make(map[int]bool)
	)

	for _, idx := range order {
		if remaining <= Epsilon {
			break
		}
		lot := &l.lots[idx]
		consumed := math.Min(remaining, lot.Quantity)
		full := lot.Quantity-consumed <= Epsilon
		if full {
			consumed = lot.Quantity
		}

		gross := (req.Price - lot.EntryPrice) * consumed
		if lot.Side == model.SideShort {
			gross = (lot.EntryPrice - req.Price) * consumed
		}
		fee := consumed * req.Price * req.ExitFeeRate

		trade.GrossPnl += gross
		trade.Fees += fee
		trade.NetPnl += gross - fee
		trade.Quantity += consumed
		trade.LotCount++
		costSum += lot.EntryPrice * consumed
		if trade.LotCount == 1 {
			trade.Tag = lot.Tag
		}
		if !lot.OpenedAt.IsZero() && (trade.EntryTime.IsZero() || lot.OpenedAt.Before(trade.EntryTime)) {
			trade.EntryTime = lot.OpenedAt
		}

		if full {
			result.ReleasedMargin += lot.Margin
			removed[idx] = true
		} else {
			released := lot.Margin * consumed / lot.Quantity
			result.ReleasedMargin += released
			lot.Margin -= released
			lot.Quantity -= consumed
		}
		remaining -= consumed
	}

	if len(removed) > 0 {
		l.lots = lo.Filter(l.lots, func(_ model.Lot, i int) bool {
			return !removed[i]
		})
	}

	if trade.Quantity > 0 {
		trade.EntryPrice = costSum / trade.Quantity
	}
	result.Trade = trade
	result.Filled = trade.Quantity > 0
	result.Clamped = remaining > Epsilon
	return result, nil
}

// CloseAll : 해당 방향 전량 청산
func (l *Ledger) CloseAll(req CloseRequest) (Realization, error) {
	qty := l.TotalQuantity(req.Side)
	if qty <= 0 {
		return Realization{}, nil
	}
	req.Quantity = qty
	return l.CloseQuantity(req)
}
