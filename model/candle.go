package model

import (
	"errors"
	"fmt"
	"time"
)

var ErrCandleOrder = errors.New("candles must be strictly increasing in time")

type Candle struct {
	Pair     string    `json:"pair,omitempty"`
	Time     time.Time `json:"time"`
	Open     float64   `json:"open"`
	Close    float64   `json:"close"`
	Low      float64   `json:"low"`
	High     float64   `json:"high"`
	Volume   float64   `json:"volume"`
	Complete bool      `json:"complete"`

	// Aditional collums from CSV inputs
	Metadata map[string]float64 `json:"metadata,omitempty"`
}

// Copy : Metadata 맵까지 복사 (sweep 워커별 독립 사본용)
func (c Candle) Copy() Candle {
	out := c
	if c.Metadata != nil {
		out.Metadata = make(map[string]float64, len(c.Metadata))
		for k, v := range c.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

// CopyCandles : 캔들 시리즈 deep copy
func CopyCandles(candles []Candle) []Candle {
	out := make([]Candle, len(candles))
	for i, c := range candles {
		out[i] = c.Copy()
	}
	return out
}

// ValidateSeries : 시간 오름차순 + 중복 없음 확인. 첫 위반 위치를 에러로 돌려줌
func ValidateSeries(candles []Candle) error {
	for i := 1; i < len(candles); i++ {
		if !candles[i].Time.After(candles[i-1].Time) {
			return fmt.Errorf("%w: index %d (%s <= %s)", ErrCandleOrder, i,
				candles[i].Time.Format(time.RFC3339), candles[i-1].Time.Format(time.RFC3339))
		}
	}
	return nil
}
