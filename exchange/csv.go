package exchange

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"lotbot/model"
	"lotbot/utils/log"
)

var ErrCSVFormat = errors.New("invalid candle csv")

// CSVCandleSource : time,open,high,low,close,volume 형식 CSV 를 메모리에 올려 두고
// CandlesByPeriod 로 구간 조회. 첫 줄이 숫자가 아니면 헤더로 보고 건너뜀
type CSVCandleSource struct {
	pair    string
	candles []model.Candle
}

func NewCSVCandleSource(pair, path string) (*CSVCandleSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSVCandles(pair, f)
}

func ReadCSVCandles(pair string, r io.Reader) (*CSVCandleSource, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	src := &CSVCandleSource{pair: pair}
	line := 0
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCSVFormat, err)
		}
		line++
		if len(rec) < 5 {
			return nil, fmt.Errorf("%w: line %d has %d fields", ErrCSVFormat, line, len(rec))
		}
		if line == 1 && isHeader(rec) {
			continue
		}
		c, err := parseCSVCandle(pair, rec)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrCSVFormat, line, err)
		}
		src.candles = append(src.candles, c)
	}

	sort.SliceStable(src.candles, func(i, j int) bool {
		return src.candles[i].Time.Before(src.candles[j].Time)
	})
	log.Infof("[CSV] loaded %d candles for %s", len(src.candles), pair)
	return src, nil
}

// Candles : 전체 복사본
func (s *CSVCandleSource) Candles() []model.Candle {
	return model.CopyCandles(s.candles)
}

// CandlesByPeriod : [start, end) 구간. zero time 은 열린 구간. period 는 파일 단위를 그대로 씀
func (s *CSVCandleSource) CandlesByPeriod(_ context.Context, pair, _ string, start, end time.Time) ([]model.Candle, error) {
	if pair != "" && s.pair != "" && !strings.EqualFold(pair, s.pair) {
		return nil, fmt.Errorf("csv source holds %s, requested %s", s.pair, pair)
	}
	var out []model.Candle
	for _, c := range s.candles {
		if !start.IsZero() && c.Time.Before(start) {
			continue
		}
		if !end.IsZero() && !c.Time.Before(end) {
			continue
		}
		out = append(out, c.Copy())
	}
	return out, nil
}

func isHeader(rec []string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
	return err != nil
}

func parseCSVCandle(pair string, rec []string) (model.Candle, error) {
	t, err := parseCSVTime(strings.TrimSpace(rec[0]))
	if err != nil {
		return model.Candle{}, err
	}
	values := make([]float64, 5)
	for i := 1; i < len(rec) && i <= 5; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[i]), 64)
		if err != nil {
			return model.Candle{}, fmt.Errorf("column %d: %w", i, err)
		}
		values[i-1] = v
	}
	return model.Candle{
		Pair:     pair,
		Time:     t,
		Open:     values[0],
		High:     values[1],
		Low:      values[2],
		Close:    values[3],
		Volume:   values[4],
		Complete: true,
	}, nil
}

// parseCSVTime : unix 초/밀리초, RFC3339, "2006-01-02 15:04:05"
func parseCSVTime(raw string) (time.Time, error) {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unknown time format %q", raw)
}
