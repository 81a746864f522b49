package model

import "time"

type ExitReason string

const (
	ReasonTakeProfit        ExitReason = "TAKE_PROFIT"
	ReasonStopLoss          ExitReason = "STOP_LOSS"
	ReasonTrailingStop      ExitReason = "TRAILING_STOP"
	ReasonSignalReversal    ExitReason = "SIGNAL_REVERSAL"
	ReasonForcedLiquidation ExitReason = "FORCED_LIQUIDATION"
)

// TradeRecord : 청산 1회(부분/전체)의 결과. 생성 후 변경하지 않음
type TradeRecord struct {
	Pair       string       `json:"pair,omitempty"`
	Side       PositionSide `json:"side"`
	EntryPrice float64      `json:"entry_price"`
	ExitPrice  float64      `json:"exit_price"`
	Quantity   float64      `json:"quantity"`
	GrossPnl   float64      `json:"gross_pnl"`
	Fees       float64      `json:"fees"`
	NetPnl     float64      `json:"net_pnl"`
	Reason     ExitReason   `json:"reason"`
	EntryTime  time.Time    `json:"entry_time"`
	ExitTime   time.Time    `json:"exit_time"`
	Tag        string       `json:"tag,omitempty"`
	LotCount   int          `json:"lot_count"`
}

func (t TradeRecord) IsWin() bool  { return t.NetPnl > 0 }
func (t TradeRecord) IsLoss() bool { return t.NetPnl < 0 }

type EquityPoint struct {
	Time   time.Time `json:"time"`
	Equity float64   `json:"equity"`
}

// StatsReport : 한 번의 백테스트 결과 요약
type StatsReport struct {
	InitialBalance float64 `json:"initial_balance"`
	FinalBalance   float64 `json:"final_balance"`
	TradeCount     int     `json:"trade_count"`
	WinCount       int     `json:"win_count"`
	LossCount      int     `json:"loss_count"`

	TotalReturn  float64 `json:"total_return"`
	WinRate      float64 `json:"win_rate"`
	AvgWin       float64 `json:"avg_win"`
	AvgLoss      float64 `json:"avg_loss"`
	ProfitFactor float64 `json:"profit_factor"` // +Inf : 손실 거래 없음
	MaxDrawdown  float64 `json:"max_drawdown"`
	SharpeRatio  float64 `json:"sharpe_ratio"`
	SortinoRatio float64 `json:"sortino_ratio"`
	CalmarRatio  float64 `json:"calmar_ratio"`
}
