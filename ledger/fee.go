package ledger

import "fmt"

// Fee : notional * rate. 음수 입력은 0
func Fee(notional, rate float64) float64 {
	if notional <= 0 || rate <= 0 {
		return 0
	}
	return notional * rate
}

// FeeModel : 진입/청산 수수료율을 따로 둔다 (거래소마다 0.0004 ~ 0.0025)
type FeeModel struct {
	EntryRate float64 `yaml:"entry_fee_rate" json:"entry_fee_rate"`
	ExitRate  float64 `yaml:"exit_fee_rate" json:"exit_fee_rate"`
}

// RoundTrip : 왕복 수수료율 하나를 진입/청산에 반씩 나눔
func RoundTrip(rate float64) FeeModel {
	return FeeModel{EntryRate: rate / 2, ExitRate: rate / 2}
}

func (m FeeModel) EntryFee(notional float64) float64 {
	return Fee(notional, m.EntryRate)
}

func (m FeeModel) ExitFee(notional float64) float64 {
	return Fee(notional, m.ExitRate)
}

func (m FeeModel) Validate() error {
	if err := validateRate(m.EntryRate); err != nil {
		return fmt.Errorf("entry: %w", err)
	}
	if err := validateRate(m.ExitRate); err != nil {
		return fmt.Errorf("exit: %w", err)
	}
	return nil
}

func validateRate(rate float64) error {
	if rate < 0 || rate >= 1 {
		return fmt.Errorf("%w: %v", ErrInvalidFeeRate, rate)
	}
	return nil
}
