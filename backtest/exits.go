package backtest

import (
	"math"

	"lotbot/model"
)

// exitState : 방향별 청산 조건 상태. 해당 방향 lot 이 모두 사라지면 초기화
type exitState struct {
	// 트레일링: LONG 은 최고가, SHORT 는 최저가
	extreme float64
	armed   bool

	// 전략이 넘긴 목표가/손절가 (마지막 진입 기준)
	target *float64
	stop   *float64
}

type exitSignal struct {
	price  float64
	reason model.ExitReason
}

// checkExit : 한 봉에서 발동하는 청산 하나. 손절 > 트레일링 > 익절 순.
// 봉 범위(High/Low)로 판정하고 트리거 가격에 체결, 갭이면 시가
func (d *Driver) checkExit(side model.PositionSide, avg float64, c model.Candle) (exitSignal, bool) {
	st := d.exits[side]
	long := side == model.SideLong

	stop := 0.0
	if st.stop != nil {
		stop = *st.stop
	} else if d.cfg.StopLossPct > 0 {
		stop = avg * (1 - d.cfg.StopLossPct)
		if !long {
			stop = avg * (1 + d.cfg.StopLossPct)
		}
	}
	target := 0.0
	if st.target != nil {
		target = *st.target
	} else if d.cfg.TakeProfitPct > 0 {
		target = avg * (1 + d.cfg.TakeProfitPct)
		if !long {
			target = avg * (1 - d.cfg.TakeProfitPct)
		}
	}

	if stop > 0 {
		if long && c.Low <= stop {
			return exitSignal{price: math.Min(stop, c.Open), reason: model.ReasonStopLoss}, true
		}
		if !long && c.High >= stop {
			return exitSignal{price: math.Max(stop, c.Open), reason: model.ReasonStopLoss}, true
		}
	}

	if st.armed && d.cfg.TrailingCallbackPct > 0 {
		if long {
			if trail := st.extreme * (1 - d.cfg.TrailingCallbackPct); c.Low <= trail {
				return exitSignal{price: math.Min(trail, c.Open), reason: model.ReasonTrailingStop}, true
			}
		} else {
			if trail := st.extreme * (1 + d.cfg.TrailingCallbackPct); c.High >= trail {
				return exitSignal{price: math.Max(trail, c.Open), reason: model.ReasonTrailingStop}, true
			}
		}
	}

	if target > 0 {
		if long && c.High >= target {
			return exitSignal{price: math.Max(target, c.Open), reason: model.ReasonTakeProfit}, true
		}
		if !long && c.Low <= target {
			return exitSignal{price: math.Min(target, c.Open), reason: model.ReasonTakeProfit}, true
		}
	}
	return exitSignal{}, false
}

// updateTrailing : 이번 봉의 고가/저가로 극값 갱신, 활성화 조건 검사.
// 청산 판정 뒤에 호출해서 같은 봉의 고가로 세운 스탑에 같은 봉이 걸리지 않게 함
func (d *Driver) updateTrailing(side model.PositionSide, avg float64, c model.Candle) {
	if d.cfg.TrailingActivationPct <= 0 {
		return
	}
	st := d.exits[side]
	if side == model.SideLong {
		if st.extreme == 0 || c.High > st.extreme {
			st.extreme = c.High
		}
		if st.extreme >= avg*(1+d.cfg.TrailingActivationPct) {
			st.armed = true
		}
		return
	}
	if st.extreme == 0 || c.Low < st.extreme {
		st.extreme = c.Low
	}
	if st.extreme <= avg*(1-d.cfg.TrailingActivationPct) {
		st.armed = true
	}
}

func (d *Driver) resetExit(side model.PositionSide) {
	d.exits[side] = &exitState{}
}
