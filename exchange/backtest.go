package exchange

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"

	"lotbot/ledger"
	"lotbot/model"
)

// SimulatedExecutor : 백테스트용 체결기. 요청 가격에 슬리피지를 얹어 즉시 전량 체결
type SimulatedExecutor struct {
	Fees     ledger.FeeModel
	Slippage float64 // 0.001 = 0.1%

	seq atomic.Int64
}

type SimulatedOption func(*SimulatedExecutor)

func WithSlippage(rate float64) SimulatedOption {
	return func(s *SimulatedExecutor) {
		s.Slippage = rate
	}
}

func NewSimulatedExecutor(fees ledger.FeeModel, opts ...SimulatedOption) *SimulatedExecutor {
	s := &SimulatedExecutor{Fees: fees}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SimulatedExecutor) Execute(_ context.Context, order model.Order) (model.Fill, error) {
	if order.Quantity <= 0 {
		return model.Fill{}, fmt.Errorf("%w: %v", ledger.ErrInvalidQuantity, order.Quantity)
	}
	if order.Price <= 0 {
		return model.Fill{}, fmt.Errorf("%w: %v", ledger.ErrInvalidPrice, order.Price)
	}

	price := order.Price
	switch order.Side {
	case model.SideTypeBuy:
		price *= 1 + s.Slippage
	case model.SideTypeSell:
		price *= 1 - s.Slippage
	}

	rate := s.Fees.EntryRate
	if order.ReduceOnly {
		rate = s.Fees.ExitRate
	}

	return model.Fill{
		OrderID:  "sim-" + strconv.FormatInt(s.seq.Add(1), 10),
		Pair:     order.Pair,
		Side:     order.Side,
		Price:    price,
		Quantity: order.Quantity,
		Fee:      ledger.Fee(price*order.Quantity, rate),
		Time:     order.CreatedAt,
	}, nil
}
