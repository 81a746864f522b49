package tools

import (
	"fmt"
	"time"
)

const day = 24 * time.Hour

// timeframe : 타임프레임 하나에 대한 캔들 길이와 업비트 캔들 API 경로
type timeframe struct {
	duration time.Duration
	endpoint string
}

var timeframes = map[string]timeframe{
	"1s":   {time.Second, "seconds"},
	"1m":   {time.Minute, "minutes/1"},
	"3m":   {3 * time.Minute, "minutes/3"},
	"5m":   {5 * time.Minute, "minutes/5"},
	"10m":  {10 * time.Minute, "minutes/10"},
	"15m":  {15 * time.Minute, "minutes/15"},
	"30m":  {30 * time.Minute, "minutes/30"},
	"60m":  {time.Hour, "minutes/60"},
	"1h":   {time.Hour, "minutes/60"},
	"240m": {4 * time.Hour, "minutes/240"},
	"4h":   {4 * time.Hour, "minutes/240"},
	"1d":   {day, "days"},
	"1w":   {7 * day, "weeks"},
	"1M":   {30 * day, "months"},
	"1y":   {365 * day, "years"},
}

func lookup(tf string) (timeframe, bool) {
	t, ok := timeframes[tf]
	return t, ok
}

// MapPeriodToCandleEndpoint : "4h" -> "minutes/240"
func MapPeriodToCandleEndpoint(period string) (string, error) {
	t, ok := lookup(period)
	if !ok {
		return "", fmt.Errorf("unsupported upbit period: %s", period)
	}
	return t.endpoint, nil
}

// ParseTimeframeToDuration : 1M 은 30일, 1y 는 365일로 근사
func ParseTimeframeToDuration(tf string) (time.Duration, error) {
	t, ok := lookup(tf)
	if !ok {
		return 0, fmt.Errorf("unsupported timeframe: %s", tf)
	}
	return t.duration, nil
}

var dateLayouts = []string{time.RFC3339, time.DateTime, time.DateOnly}

// ParseDate : RFC3339, "2006-01-02 15:04:05", "2006-01-02". 빈 문자열은 zero time
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", value)
}
