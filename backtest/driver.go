package backtest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"lotbot/exchange"
	"lotbot/interfaces"
	"lotbot/ledger"
	"lotbot/model"
	"lotbot/stats"
	"lotbot/utils/log"
	"lotbot/utils/pointer"

	"github.com/google/uuid"
)

type State string

const (
	StateNotStarted State = "NOT_STARTED"
	StateRunning    State = "RUNNING"
	StateFinished   State = "FINISHED"
)

// Result : 한 번의 실행 결과. 실행이 끝난 뒤에는 읽기 전용
type Result struct {
	RunID     string              `json:"run_id"`
	Pair      string              `json:"pair"`
	Strategy  string              `json:"strategy"`
	Timeframe string              `json:"timeframe"`
	Params    map[string]float64  `json:"params,omitempty"`
	State     State               `json:"state"`
	Stats     model.StatsReport   `json:"stats"`
	Trades    []model.TradeRecord `json:"trades"`
	Equity    []model.EquityPoint `json:"equity"`
	Candles   []model.Candle      `json:"-"`
	Skipped   int                 `json:"skipped"`
	StartedAt time.Time           `json:"started_at"`
	Duration  time.Duration       `json:"duration"`
}

type TradeObserver func(trade model.TradeRecord)

// Driver : 캔들 시리즈를 한 번 순회하는 백테스트 실행기
type Driver struct {
	cfg       Config
	strategy  interfaces.Strategy
	executor  interfaces.OrderExecutor
	observers []TradeObserver
	runID     string

	state   State
	run     *RunState
	df      *model.Dataframe
	exits   map[model.PositionSide]*exitState
	skipped int
}

type Option func(*Driver)

// WithExecutor : 체결기 교체 (기본은 SimulatedExecutor)
func WithExecutor(executor interfaces.OrderExecutor) Option {
	return func(d *Driver) {
		d.executor = executor
	}
}

func WithTradeObserver(observer TradeObserver) Option {
	return func(d *Driver) {
		d.observers = append(d.observers, observer)
	}
}

func WithRunID(id string) Option {
	return func(d *Driver) {
		d.runID = id
	}
}

func NewDriver(cfg Config, strategy interfaces.Strategy, opts ...Option) (*Driver, error) {
	if strategy == nil {
		return nil, fmt.Errorf("%w: strategy is nil", ErrInvalidConfig)
	}
	cfg, err := cfg.Normalize()
	if err != nil {
		return nil, err
	}
	if cfg.Timeframe == "" {
		cfg.Timeframe = strategy.Timeframe()
	}
	policy, _ := ledger.PolicyByName(cfg.Policy)

	d := &Driver{
		cfg:      cfg,
		strategy: strategy,
		state:    StateNotStarted,
		run:      NewRunState(cfg.InitialBalance, cfg.Accounting, policy),
		df:       model.NewDataframe(cfg.Pair),
		exits:    make(map[model.PositionSide]*exitState),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.executor == nil {
		d.executor = exchange.NewSimulatedExecutor(cfg.Fees, exchange.WithSlippage(cfg.Slippage))
	}
	if d.runID == "" {
		d.runID = uuid.NewString()
	}
	d.resetExit(model.SideLong)
	d.resetExit(model.SideShort)
	return d, nil
}

func (d *Driver) State() State {
	return d.state
}

// RunState : 실행 중/후 상태 조회 (실행 중에는 드라이버만 수정)
func (d *Driver) RunState() *RunState {
	return d.run
}

func (d *Driver) Config() Config {
	return d.cfg
}

// Run : 캔들을 시간 순으로 한 번 순회. 마지막 봉에서 남은 lot 은 강제 청산
func (d *Driver) Run(candles []model.Candle) (*Result, error) {
	if d.state != StateNotStarted {
		return nil, ErrAlreadyRan
	}
	accepted := acceptedIndices(candles)
	if len(accepted) == 0 {
		return nil, ErrNoCandles
	}

	started := time.Now()
	d.state = StateRunning
	log.Infof("[BACKTEST] %s %s start: %d candles, balance %.2f", d.strategy.GetName(), d.cfg.Pair, len(candles), d.cfg.InitialBalance)

	next := 0
	for i, candle := range candles {
		if next >= len(accepted) || accepted[next] != i {
			log.Errorf("[BACKTEST] late candle received: %s", candle.Time.Format(time.RFC3339))
			d.skipped++
			continue
		}
		next++
		d.step(candle, next == len(accepted))
	}

	d.state = StateFinished
	result := d.result(candles, started)
	log.WithFields(map[string]interface{}{
		"run":    d.runID,
		"trades": result.Stats.TradeCount,
		"return": result.Stats.TotalReturn,
		"mdd":    result.Stats.MaxDrawdown,
	}).Infof("[BACKTEST] %s finished", d.strategy.GetName())
	return result, nil
}

// acceptedIndices : 직전 채택 봉보다 시각이 뒤인 봉만 채택
func acceptedIndices(candles []model.Candle) []int {
	var (
		out  []int
		last time.Time
	)
	for i, c := range candles {
		if len(out) > 0 && !c.Time.After(last) {
			continue
		}
		out = append(out, i)
		last = c.Time
	}
	return out
}

func (d *Driver) step(candle model.Candle, final bool) {
	d.df.Append(candle)

	// 1) 청산 조건
	for _, side := range d.run.OpenSides() {
		avg := d.run.Ledger.WeightedAveragePrice(side)
		if sig, ok := d.checkExit(side, avg, candle); ok {
			d.closeSide(side, 0, sig.price, sig.reason, candle.Time)
			continue
		}
		d.updateTrailing(side, avg, candle)
	}

	// 2) 전략 판단 (현재 봉까지만 보임)
	if d.df.Len() >= d.strategy.WarmupPeriod() {
		decision, err := d.decide()
		if err != nil {
			log.Warnf("[BACKTEST] strategy %s failed at %s, hold: %v", d.strategy.GetName(), candle.Time.Format(time.RFC3339), err)
			d.skipped++
		} else {
			d.apply(decision, candle)
		}
	}

	// 3) 마지막 봉: 강제 청산
	if final {
		for _, side := range d.run.OpenSides() {
			d.closeSide(side, 0, candle.Close, model.ReasonForcedLiquidation, candle.Time)
		}
	}

	// 4) 자산 기록
	d.run.Record(candle.Time, candle.Close)
}

var errStrategyPanic = errors.New("strategy panic")

func (d *Driver) decide() (decision model.Decision, err error) {
	defer func() {
		if r := recover(); r != nil {
			decision = model.Hold()
			err = fmt.Errorf("%w: %v", errStrategyPanic, r)
		}
	}()
	sample := d.df.Sample(d.strategy.WarmupPeriod())
	d.strategy.Indicators(&sample)
	return d.strategy.OnCandle(&sample, d.run.Ledger)
}

func (d *Driver) apply(decision model.Decision, candle model.Candle) {
	if decision.Action != model.ActionBuy && decision.Action != model.ActionSell {
		return
	}
	openSide := decision.SideToOpen()
	closeSide := decision.SideToClose()

	if decision.Reduce {
		d.closeSide(closeSide, decision.Quantity, candle.Close, model.ReasonSignalReversal, candle.Time)
		return
	}

	if !d.cfg.Hedge && d.run.Ledger.CountBySide(closeSide) > 0 {
		qty := 0.0
		if closeSide == model.SideLong && !d.cfg.AllowShort {
			qty = decision.Quantity
		}
		d.closeSide(closeSide, qty, candle.Close, model.ReasonSignalReversal, candle.Time)
		if d.run.Ledger.CountBySide(closeSide) > 0 {
			return
		}
	}

	if openSide == model.SideShort && !d.cfg.AllowShort {
		return
	}
	if d.run.Ledger.CountBySide(openSide) >= d.cfg.MaxLots {
		return
	}
	if err := d.openSide(openSide, decision, candle); err != nil {
		log.Warnf("[BACKTEST] skip %s entry at %s: %v", openSide, candle.Time.Format(time.RFC3339), err)
	}
}

func (d *Driver) openSide(side model.PositionSide, decision model.Decision, candle model.Candle) error {
	price := candle.Close
	if price <= 0 {
		return fmt.Errorf("%w: %v", ledger.ErrInvalidPrice, price)
	}
	qty := decision.Quantity
	if qty <= 0 {
		budget := d.run.Cash * d.cfg.PositionFraction
		qty = budget / (price * (1 + d.cfg.Fees.EntryRate) * (1 + d.cfg.Slippage))
	}
	if qty <= 0 || math.IsNaN(qty) || math.IsInf(qty, 0) {
		return fmt.Errorf("%w: %v", ledger.ErrInvalidQuantity, qty)
	}
	notional := qty * price * (1 + d.cfg.Slippage)
	if cost := d.run.OpenCost(notional, d.cfg.Fees.EntryFee(notional)); cost > d.run.Cash+ledger.Epsilon {
		return fmt.Errorf("%w: need %.4f, have %.4f", ErrInsufficientFunds, cost, d.run.Cash)
	}

	fill, err := d.executor.Execute(context.Background(), model.Order{
		Pair:      d.cfg.Pair,
		Side:      model.OrderSideFor(side, true),
		Type:      model.OrderTypeMarket,
		Price:     price,
		Quantity:  qty,
		CreatedAt: candle.Time,
	})
	if err != nil {
		return err
	}
	if fill.Time.IsZero() {
		fill.Time = candle.Time
	}
	if _, err := d.run.ApplyOpen(side, fill, decision.Tag); err != nil {
		return err
	}

	st := d.exits[side]
	st.target = decision.TargetPrice
	st.stop = decision.StopLoss
	log.Debugf("[BACKTEST] open %s %.8f @ %.4f (%s) tp=%.4f sl=%.4f", side, fill.Quantity, fill.Price, decision.Tag,
		pointer.NotNull(decision.TargetPrice, 0), pointer.NotNull(decision.StopLoss, 0))
	return nil
}

// closeSide : quantity 0 이면 전량. 보유보다 크면 보유량으로 잘림
func (d *Driver) closeSide(side model.PositionSide, quantity, price float64, reason model.ExitReason, at time.Time) {
	available := d.run.Ledger.TotalQuantity(side)
	if available <= 0 {
		return
	}
	if quantity <= 0 || quantity > available {
		quantity = available
	}

	fill, err := d.executor.Execute(context.Background(), model.Order{
		Pair:       d.cfg.Pair,
		Side:       model.OrderSideFor(side, false),
		Type:       model.OrderTypeMarket,
		Price:      price,
		Quantity:   quantity,
		ReduceOnly: true,
		CreatedAt:  at,
	})
	if err != nil {
		log.Warnf("[BACKTEST] close %s failed at %s: %v", side, at.Format(time.RFC3339), err)
		return
	}
	if fill.Time.IsZero() {
		fill.Time = at
	}

	out, err := d.run.ApplyClose(d.cfg.Pair, side, fill, reason, d.cfg.Redistribute)
	if err != nil {
		log.Warnf("[BACKTEST] close %s rejected at %s: %v", side, at.Format(time.RFC3339), err)
		return
	}
	if !out.Filled {
		return
	}
	if out.Redistributed > 0 {
		log.Debugf("[BACKTEST] redistributed %.4f into %s lots", out.Redistributed, side.Opposite())
	}
	if d.run.Ledger.CountBySide(side) == 0 {
		d.resetExit(side)
	}
	for _, observer := range d.observers {
		observer(out.Trade)
	}
}

func (d *Driver) result(candles []model.Candle, started time.Time) *Result {
	annualization := d.cfg.Annualization
	if annualization <= 0 {
		annualization = stats.AnnualizationFor(d.cfg.Timeframe)
	}
	// 강제 청산이 체결되지 못했으면 현금 대신 마지막 자산 평가액
	final := d.run.Cash
	if !d.run.Ledger.IsEmpty() && len(d.run.EquityCurve) > 0 {
		final = d.run.EquityCurve[len(d.run.EquityCurve)-1].Equity
	}
	report := stats.Compute(d.cfg.InitialBalance, final, d.run.TradeLog, d.run.EquityCurve, annualization)
	return &Result{
		RunID:     d.runID,
		Pair:      d.cfg.Pair,
		Strategy:  d.strategy.GetName(),
		Timeframe: d.cfg.Timeframe,
		State:     d.state,
		Stats:     report,
		Trades:    append([]model.TradeRecord(nil), d.run.TradeLog...),
		Equity:    append([]model.EquityPoint(nil), d.run.EquityCurve...),
		Candles:   candles,
		Skipped:   d.skipped,
		StartedAt: started,
		Duration:  time.Since(started),
	}
}
