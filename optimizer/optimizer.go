package optimizer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync"
	"time"

	"lotbot/backtest"
	"lotbot/interfaces"
	"lotbot/model"
	"lotbot/utils/log"
)

var (
	ErrEmptyGrid = errors.New("empty parameter grid")
	ErrNoFactory = errors.New("strategy factory is nil")
)

// StrategyFactory : 조합마다 새 전략 인스턴스. 워커끼리 상태를 공유하지 않게
type StrategyFactory func(params ParamSet) (interfaces.Strategy, error)

// Outcome : 조합 하나의 실행 결과. 전략 생성/실행 실패면 Err
type Outcome struct {
	Params ParamSet
	Result *backtest.Result
	Err    error
}

func (o Outcome) sharpe() float64 {
	if o.Result == nil || math.IsNaN(o.Result.Stats.SharpeRatio) {
		return math.Inf(-1)
	}
	return o.Result.Stats.SharpeRatio
}

func (o Outcome) totalReturn() float64 {
	if o.Result == nil {
		return math.Inf(-1)
	}
	return o.Result.Stats.TotalReturn
}

type Optimizer struct {
	cfg     backtest.Config
	factory StrategyFactory
	workers int
}

type Option func(*Optimizer)

// WithWorkers : 동시 실행 수 (기본 GOMAXPROCS)
func WithWorkers(n int) Option {
	return func(o *Optimizer) {
		if n > 0 {
			o.workers = n
		}
	}
}

func New(cfg backtest.Config, factory StrategyFactory, opts ...Option) (*Optimizer, error) {
	if factory == nil {
		return nil, ErrNoFactory
	}
	if _, err := cfg.Normalize(); err != nil {
		return nil, err
	}
	o := &Optimizer{cfg: cfg, factory: factory, workers: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Run : 그리드 전체 실행. ctx 가 취소되면 아직 배정되지 않은 조합은 버리고
// 끝난 것만 정렬해서 ctx.Err() 와 함께 돌려준다.
// 정렬: Sharpe 내림차순 → 총수익률 내림차순 → 파라미터 키 오름차순
func (o *Optimizer) Run(ctx context.Context, candles []model.Candle, grid Grid) ([]Outcome, error) {
	combos, err := Expand(grid)
	if err != nil {
		return nil, err
	}
	started := time.Now()
	log.Infof("[SWEEP] %d combinations, %d workers", len(combos), o.workers)

	jobs := make(chan ParamSet)
	results := make(chan Outcome, len(combos))

	var wg sync.WaitGroup
	for w := 0; w < min(o.workers, len(combos)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for params := range jobs {
				results <- o.runOne(candles, params)
			}
		}()
	}

	dispatched := 0
dispatch:
	for _, params := range combos {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- params:
			dispatched++
		}
	}
	close(jobs)
	wg.Wait()
	close(results)

	outcomes := make([]Outcome, 0, dispatched)
	for r := range results {
		outcomes = append(outcomes, r)
	}
	Sort(outcomes)

	log.Infof("[SWEEP] done %d/%d in %s", len(outcomes), len(combos), time.Since(started).Round(time.Millisecond))
	if ctx.Err() != nil {
		return outcomes, ctx.Err()
	}
	return outcomes, nil
}

// runOne : 워커 전용 캔들 복사본과 드라이버로 한 조합 실행
func (o *Optimizer) runOne(candles []model.Candle, params ParamSet) Outcome {
	out := Outcome{Params: params}
	strategy, err := o.factory(params)
	if err != nil {
		out.Err = fmt.Errorf("build strategy %s: %w", params, err)
		return out
	}
	driver, err := backtest.NewDriver(o.cfg, strategy)
	if err != nil {
		out.Err = err
		return out
	}
	result, err := driver.Run(model.CopyCandles(candles))
	if err != nil {
		out.Err = fmt.Errorf("run %s: %w", params, err)
		return out
	}
	result.Params = params
	out.Result = result
	return out
}

// Sort : 실패한 조합은 뒤로
func Sort(outcomes []Outcome) {
	sort.SliceStable(outcomes, func(i, j int) bool {
		a, b := outcomes[i], outcomes[j]
		if (a.Err == nil) != (b.Err == nil) {
			return a.Err == nil
		}
		if a.sharpe() != b.sharpe() {
			return a.sharpe() > b.sharpe()
		}
		if a.totalReturn() != b.totalReturn() {
			return a.totalReturn() > b.totalReturn()
		}
		return a.Params.Key() < b.Params.Key()
	})
}

// Best : 첫 번째 성공 결과
func Best(outcomes []Outcome) (Outcome, bool) {
	for _, o := range outcomes {
		if o.Err == nil && o.Result != nil {
			return o, true
		}
	}
	return Outcome{}, false
}
