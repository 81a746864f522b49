package strategy

import (
	"fmt"
	"sort"
	"strings"

	"lotbot/interfaces"

	"github.com/samber/lo"
)

// Params : 숫자 파라미터. 없는 키는 각 전략 기본값
type Params map[string]float64

func (p Params) get(key string, fallback float64) float64 {
	if v, ok := p[key]; ok {
		return v
	}
	return fallback
}

type builder func(Params) interfaces.Strategy

var registry = map[string]builder{
	"cross_ema": func(p Params) interfaces.Strategy {
		return NewCrossEMA(int(p.get("fast", 8)), int(p.get("slow", 21)))
	},
	"turtle": func(p Params) interfaces.Strategy {
		return NewTurtle(int(p.get("entry", 40)), int(p.get("exit", 20)))
	},
	"psh": func(p Params) interfaces.Strategy {
		return NewPSHStrategy(p.get("stop_loss", defaultStopLossPercent), p.get("take_profit", defaultTakeProfitPercent))
	},
	"magic_split": func(p Params) interfaces.Strategy {
		return NewMagicSplit(int(p.get("splits", 5)), p.get("gap", 0.03), p.get("target", 0.03), p.get("budget", 0))
	},
	"martingale": func(p Params) interfaces.Strategy {
		return NewMartingale(p.get("target", 1), p.get("base_qty", 0), p.get("multiplier", 2))
	},
}

// FromConfig : 이름과 파라미터로 새 전략 인스턴스 생성. 스윕 워커마다 따로 호출
func FromConfig(name string, params Params) (interfaces.Strategy, error) {
	build, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownStrategy, name, strings.Join(Names(), ", "))
	}
	return build(params), nil
}

func Names() []string {
	names := lo.Keys(registry)
	sort.Strings(names)
	return names
}
