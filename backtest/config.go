package backtest

import (
	"errors"
	"fmt"

	"lotbot/ledger"
)

var (
	ErrInvalidConfig     = errors.New("invalid backtest config")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAlreadyRan        = errors.New("driver already ran")
	ErrNoCandles         = errors.New("no candles")
)

type Accounting string

const (
	// AccountingSpot : 진입 시 notional+수수료 차감, 자산 = 현금 + Σ(margin + 미실현)
	AccountingSpot Accounting = "spot"
	// AccountingFutures : 진입 시 수수료만 차감, 자산 = 지갑 + Σ 미실현
	AccountingFutures Accounting = "futures"
)

type Config struct {
	Pair      string `yaml:"pair" json:"pair"`
	Timeframe string `yaml:"timeframe" json:"timeframe"`

	InitialBalance float64         `yaml:"initial_balance" json:"initial_balance"`
	Fees           ledger.FeeModel `yaml:"fees" json:"fees"`
	Slippage       float64         `yaml:"slippage" json:"slippage"`
	Policy         string          `yaml:"policy" json:"policy"`
	Accounting     Accounting      `yaml:"accounting" json:"accounting"`

	// PositionFraction : Decision.Quantity 가 0 일 때 현금 중 진입에 쓰는 비율
	PositionFraction float64 `yaml:"position_fraction" json:"position_fraction"`
	// MaxLots : 방향별 최대 동시 lot 수 (1 = 단일 포지션)
	MaxLots int `yaml:"max_lots" json:"max_lots"`
	// AllowShort : SELL 신호로 숏 진입 허용
	AllowShort bool `yaml:"allow_short" json:"allow_short"`
	// Hedge : 롱/숏 동시 보유. 반대 신호가 와도 자동 청산하지 않음
	Hedge bool `yaml:"hedge" json:"hedge"`
	// Redistribute : 이익 청산 시 절반을 반대편 lot 원가 조정에 사용
	Redistribute bool `yaml:"redistribute" json:"redistribute"`

	TakeProfitPct         float64 `yaml:"take_profit_pct" json:"take_profit_pct"`
	StopLossPct           float64 `yaml:"stop_loss_pct" json:"stop_loss_pct"`
	TrailingActivationPct float64 `yaml:"trailing_activation_pct" json:"trailing_activation_pct"`
	TrailingCallbackPct   float64 `yaml:"trailing_callback_pct" json:"trailing_callback_pct"`

	// Annualization : Sharpe/Sortino 연율화 기간 수. 0 이면 타임프레임으로 계산
	Annualization float64 `yaml:"annualization" json:"annualization"`
}

func (c Config) withDefaults() Config {
	if c.Pair == "" {
		c.Pair = "KRW-BTC"
	}
	if c.InitialBalance == 0 {
		c.InitialBalance = 1_000_000
	}
	if c.Accounting == "" {
		c.Accounting = AccountingSpot
	}
	if c.PositionFraction == 0 {
		c.PositionFraction = 1
	}
	if c.MaxLots == 0 {
		c.MaxLots = 1
	}
	if c.Hedge {
		c.AllowShort = true
	}
	return c
}

func (c Config) Validate() error {
	if c.InitialBalance <= 0 {
		return fmt.Errorf("%w: initial_balance must be positive", ErrInvalidConfig)
	}
	if err := c.Fees.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := ledger.PolicyByName(c.Policy); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Accounting != AccountingSpot && c.Accounting != AccountingFutures {
		return fmt.Errorf("%w: accounting %q", ErrInvalidConfig, c.Accounting)
	}
	if c.PositionFraction < 0 || c.PositionFraction > 1 {
		return fmt.Errorf("%w: position_fraction %v", ErrInvalidConfig, c.PositionFraction)
	}
	if c.MaxLots < 1 {
		return fmt.Errorf("%w: max_lots %d", ErrInvalidConfig, c.MaxLots)
	}
	for name, v := range map[string]float64{
		"slippage":                c.Slippage,
		"take_profit_pct":         c.TakeProfitPct,
		"stop_loss_pct":           c.StopLossPct,
		"trailing_activation_pct": c.TrailingActivationPct,
		"trailing_callback_pct":   c.TrailingCallbackPct,
	} {
		if v < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidConfig, name)
		}
	}
	if c.StopLossPct >= 1 || c.TrailingCallbackPct >= 1 {
		return fmt.Errorf("%w: stop percentages must be below 1", ErrInvalidConfig)
	}
	return nil
}

// Normalize : 기본값 채우고 검증한 설정
func (c Config) Normalize() (Config, error) {
	c = c.withDefaults()
	return c, c.Validate()
}
