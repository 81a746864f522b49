package model

import "time"

type SideType string
type OrderType string

// side (주문 종류)
const (
	SideTypeBuy  SideType = "bid" // 매수
	SideTypeSell SideType = "ask" // 매도
)

// ord_type (주문 타입)
const (
	OrderTypeLimit  OrderType = "limit"  // 지정가
	OrderTypePrice  OrderType = "price"  // 시장가 매수
	OrderTypeMarket OrderType = "market" // 시장가 매도
)

// Order : 체결 요청. Price 는 시장가일 때 참고 가격(백테스트에선 봉 종가/트리거 가격)
type Order struct {
	ExchangeID string    `json:"exchange_id"`
	Pair       string    `json:"pair"`
	Side       SideType  `json:"side"`
	Type       OrderType `json:"type"`
	Price      float64   `json:"price"`
	Quantity   float64   `json:"quantity"`

	// ReduceOnly : 기존 포지션 청산 주문 (청산 수수료율 적용)
	ReduceOnly bool `json:"reduce_only"`

	CreatedAt time.Time `json:"created_at"`
}

// Fill : 체결 결과. 백테스트든 실거래든 원장에는 이 값만 들어감
type Fill struct {
	OrderID  string    `json:"order_id,omitempty"`
	Pair     string    `json:"pair"`
	Side     SideType  `json:"side"`
	Price    float64   `json:"price"`
	Quantity float64   `json:"quantity"`
	Fee      float64   `json:"fee"`
	Time     time.Time `json:"time"`
}

func (f Fill) Notional() float64 {
	return f.Price * f.Quantity
}

// FeeRate : 체결 금액 대비 수수료율. 수량 0 이면 0
func (f Fill) FeeRate() float64 {
	n := f.Notional()
	if n <= 0 {
		return 0
	}
	return f.Fee / n
}

// OrderSideFor : 포지션 진입/청산에 필요한 주문 방향
func OrderSideFor(side PositionSide, opening bool) SideType {
	if (side == SideLong) == opening {
		return SideTypeBuy
	}
	return SideTypeSell
}
