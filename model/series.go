package model

import (
	"time"

	"golang.org/x/exp/constraints"
)

// Series : 오래된 값 -> 최신 값 순서의 시계열
type Series[T constraints.Ordered] []T

// Length : 값 개수
func (s Series[T]) Length() int { return len(s) }

// Last : position 봉 전 값. Last(0) 이 최신
func (s Series[T]) Last(position int) T {
	return s[len(s)-1-position]
}

// LastValues : 뒤에서 size 개. 길이가 모자라면 전체
func (s Series[T]) LastValues(size int) []T {
	if size < 0 || size >= len(s) {
		return s
	}
	return s[len(s)-size:]
}

// Crossover : 직전 봉에서 ref 이하였다가 이번 봉에서 ref 위로 올라옴
func (s Series[T]) Crossover(ref Series[T]) bool {
	if !crossable(s, ref) {
		return false
	}
	return s.Last(1) <= ref.Last(1) && s.Last(0) > ref.Last(0)
}

// Crossunder : 직전 봉에서 ref 위였다가 이번 봉에서 ref 이하로 내려옴
func (s Series[T]) Crossunder(ref Series[T]) bool {
	if !crossable(s, ref) {
		return false
	}
	return s.Last(1) > ref.Last(1) && s.Last(0) <= ref.Last(0)
}

func crossable[T constraints.Ordered](a, b Series[T]) bool {
	return len(a) >= 2 && len(b) >= 2
}

type Dataframe struct {
	Pair string

	Close  Series[float64]
	Open   Series[float64]
	High   Series[float64]
	Low    Series[float64]
	Volume Series[float64]

	Time       []time.Time
	LastUpdate time.Time

	// 전략이 붙이는 보조 시리즈 (지표 등)
	Metadata map[string]Series[float64]
}

func NewDataframe(pair string) *Dataframe {
	return &Dataframe{
		Pair:     pair,
		Metadata: make(map[string]Series[float64]),
	}
}

// Len : 현재까지 보이는 봉 개수
func (df *Dataframe) Len() int {
	return len(df.Time)
}

// Append : 완성봉 하나를 뒤에 붙임. 같은 시각이면 마지막 봉을 교체
func (df *Dataframe) Append(candle Candle) {
	if len(df.Time) > 0 && candle.Time.Equal(df.Time[len(df.Time)-1]) {
		last := len(df.Time) - 1
		df.Close[last] = candle.Close
		df.Open[last] = candle.Open
		df.High[last] = candle.High
		df.Low[last] = candle.Low
		df.Volume[last] = candle.Volume
		for k, v := range candle.Metadata {
			if s, ok := df.Metadata[k]; ok && len(s) > last {
				s[last] = v
			}
		}
		return
	}
	df.Close = append(df.Close, candle.Close)
	df.Open = append(df.Open, candle.Open)
	df.High = append(df.High, candle.High)
	df.Low = append(df.Low, candle.Low)
	df.Volume = append(df.Volume, candle.Volume)
	df.Time = append(df.Time, candle.Time)
	df.LastUpdate = candle.Time
	for k, v := range candle.Metadata {
		df.Metadata[k] = append(df.Metadata[k], v)
	}
}

// Sample : 마지막 positions 개만 잘라낸 복사본. 지표 계산용 Metadata 는 새 맵
func (df Dataframe) Sample(positions int) Dataframe {
	size := len(df.Time)
	start := size - positions
	if start < 0 || positions <= 0 {
		start = 0
	}

	sample := Dataframe{
		Pair:       df.Pair,
		Close:      cloneSeries(df.Close[start:]),
		Open:       cloneSeries(df.Open[start:]),
		High:       cloneSeries(df.High[start:]),
		Low:        cloneSeries(df.Low[start:]),
		Volume:     cloneSeries(df.Volume[start:]),
		Time:       append([]time.Time(nil), df.Time[start:]...),
		LastUpdate: df.LastUpdate,
		Metadata:   make(map[string]Series[float64]),
	}

	for key, values := range df.Metadata {
		sample.Metadata[key] = cloneSeries(values.LastValues(size - start))
	}

	return sample
}

func cloneSeries(s Series[float64]) Series[float64] {
	return append(Series[float64](nil), s...)
}
