package strategy

import (
	"lotbot/indicator"
	"lotbot/interfaces"
	"lotbot/model"

	"github.com/samber/lo"
)

// OrderCondition : 조건이 처음 참이 되는 봉에서 한 번만 발동
type OrderCondition struct {
	Condition func(df *model.Dataframe) bool
	Size      float64
	Action    model.Action
	Reduce    bool
}

// Scheduler : 미리 등록한 일회성 조건 주문을 순서대로 내보내는 전략.
// 한 봉에 하나만 발동하고 나머지는 다음 봉에서 다시 검사
type Scheduler struct {
	timeframe       string
	orderConditions []OrderCondition
}

func NewScheduler(timeframe string) *Scheduler {
	if timeframe == "" {
		timeframe = "1h"
	}
	return &Scheduler{timeframe: timeframe}
}

func (s *Scheduler) SellWhen(size float64, condition func(df *model.Dataframe) bool) {
	s.orderConditions = append(
		s.orderConditions,
		OrderCondition{Condition: condition, Size: size, Action: model.ActionSell, Reduce: true},
	)
}

func (s *Scheduler) BuyWhen(size float64, condition func(df *model.Dataframe) bool) {
	s.orderConditions = append(
		s.orderConditions,
		OrderCondition{Condition: condition, Size: size, Action: model.ActionBuy},
	)
}

// ShortWhen : 숏 진입 (AllowShort 필요)
func (s *Scheduler) ShortWhen(size float64, condition func(df *model.Dataframe) bool) {
	s.orderConditions = append(
		s.orderConditions,
		OrderCondition{Condition: condition, Size: size, Action: model.ActionSell},
	)
}

// Pending : 아직 발동하지 않은 조건 수
func (s *Scheduler) Pending() int {
	return len(s.orderConditions)
}

func (s *Scheduler) GetName() string {
	return "scheduler"
}

func (s *Scheduler) Timeframe() string {
	return s.timeframe
}

func (s *Scheduler) WarmupPeriod() int {
	return 1
}

func (s *Scheduler) Indicators(_ *model.Dataframe) []indicator.ChartIndicator {
	return nil
}

func (s *Scheduler) OnCandle(df *model.Dataframe, _ interfaces.Position) (model.Decision, error) {
	decision := model.Hold()
	fired := false
	s.orderConditions = lo.Filter(s.orderConditions, func(oc OrderCondition, _ int) bool {
		if fired || !oc.Condition(df) {
			return true
		}
		fired = true
		decision = model.Decision{Action: oc.Action, Confidence: 1, Quantity: oc.Size, Reduce: oc.Reduce, Tag: "scheduled"}
		return false
	})
	return decision, nil
}
