package mocks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"lotbot/model"
)

var ErrMockRejected = errors.New("mock order rejected")

// MockExecutor : interfaces.OrderExecutor 가짜 구현.
// - 요청 가격 그대로 전량 체결, 수수료는 FeeRate
// - RejectAfter 번째 주문부터 거부 (0 이면 거부 안 함)
// - 테스트 관찰용으로 받은 주문을 전부 기록
type MockExecutor struct {
	mu          sync.Mutex
	FeeRate     float64
	RejectAfter int

	Orders []model.Order
}

func (m *MockExecutor) Execute(_ context.Context, order model.Order) (model.Fill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Orders = append(m.Orders, order)
	if m.RejectAfter > 0 && len(m.Orders) >= m.RejectAfter {
		return model.Fill{}, fmt.Errorf("%w: #%d", ErrMockRejected, len(m.Orders))
	}
	return model.Fill{
		OrderID:  fmt.Sprintf("mock-%d", len(m.Orders)),
		Pair:     order.Pair,
		Side:     order.Side,
		Price:    order.Price,
		Quantity: order.Quantity,
		Fee:      order.Price * order.Quantity * m.FeeRate,
		Time:     order.CreatedAt,
	}, nil
}

// OrderCount : 지금까지 받은 주문 수
func (m *MockExecutor) OrderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Orders)
}

// MockCandleSource : 고정 캔들 목록에서 [start, end) 구간을 잘라 줌
type MockCandleSource struct {
	Candles []model.Candle
	Err     error

	Calls int
}

func (m *MockCandleSource) CandlesByPeriod(_ context.Context, pair, _ string, start, end time.Time) ([]model.Candle, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	var out []model.Candle
	for _, c := range m.Candles {
		if c.Time.Before(start) || !c.Time.Before(end) {
			continue
		}
		c.Pair = pair
		out = append(out, c)
	}
	return out, nil
}
