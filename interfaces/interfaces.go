package interfaces

import (
	"context"
	"time"

	"lotbot/indicator"
	"lotbot/ledger"
	"lotbot/model"
)

// Position : 전략에게 넘기는 읽기 전용 원장 뷰
type Position interface {
	Lots() []model.Lot
	CountBySide(side model.PositionSide) int
	TotalQuantity(side model.PositionSide) float64
	WeightedAveragePrice(side model.PositionSide) float64
	UnrealizedPnl(side model.PositionSide, currentPrice float64) float64
	MostProfitableLot(currentPrice float64) (ledger.LotReturn, bool)
}

type Strategy interface {
	GetName() string
	// Timeframe is the time interval in which the strategy will be executed. eg: 1h, 1d, 1w
	Timeframe() string
	// WarmupPeriod is the necessary time to wait before executing the strategy, to load data for indicators.
	// This time is measured in the period specified in the `Timeframe` function.
	WarmupPeriod() int
	// Indicators will be executed for each new candle, in order to fill indicators before `OnCandle` function is called.
	Indicators(df *model.Dataframe) []indicator.ChartIndicator
	// OnCandle will be executed for each new candle, after indicators are filled, here you can do your trading logic.
	// The dataframe only holds the current and past candles.
	OnCandle(df *model.Dataframe, position Position) (model.Decision, error)
}

// OrderExecutor : 주문 → 체결. 백테스트(SimulatedExecutor)와 실거래(Upbit)가 같은 계약
type OrderExecutor interface {
	Execute(ctx context.Context, order model.Order) (model.Fill, error)
}

type CandleSource interface {
	CandlesByPeriod(ctx context.Context, pair, period string, start, end time.Time) ([]model.Candle, error)
}

type Notifier interface {
	SendNotification(message string) error
	TradeNotifier(trade model.TradeRecord)
}
