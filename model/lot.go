package model

import "time"

type PositionSide string

const (
	SideLong  PositionSide = "LONG"
	SideShort PositionSide = "SHORT"
)

func (s PositionSide) Opposite() PositionSide {
	if s == SideLong {
		return SideShort
	}
	return SideLong
}

func (s PositionSide) Valid() bool {
	return s == SideLong || s == SideShort
}

// Lot : 하나의 오픈 포지션 묶음(분할 진입 1회분)
type Lot struct {
	ID         int64        `json:"id"`
	Side       PositionSide `json:"side"`
	EntryPrice float64      `json:"entry_price"`
	Quantity   float64      `json:"quantity"`
	Tag        string       `json:"tag,omitempty"`
	OpenedAt   time.Time    `json:"opened_at"`

	// Margin : 진입 시 묶인 자본 (spot 회계). 부분 청산 시 수량 비율로 줄어듦
	Margin float64 `json:"margin"`
}

// Pnl : currentPrice 기준 미실현 손익
func (l Lot) Pnl(currentPrice float64) float64 {
	if l.Side == SideShort {
		return (l.EntryPrice - currentPrice) * l.Quantity
	}
	return (currentPrice - l.EntryPrice) * l.Quantity
}

// RevenueRate : 진입가 대비 수익률(%)
func (l Lot) RevenueRate(currentPrice float64) float64 {
	if l.EntryPrice <= 0 {
		return 0
	}
	if l.Side == SideShort {
		return (l.EntryPrice - currentPrice) / l.EntryPrice * 100
	}
	return (currentPrice - l.EntryPrice) / l.EntryPrice * 100
}
