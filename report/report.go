package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"lotbot/backtest"
	"lotbot/model"
	"lotbot/utils/collection"
	ujson "lotbot/utils/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Places : JSON 출력 소수점 자리수
const Places = 8

// Number : 반올림해서 숫자로 출력. ±Inf 는 "inf"/"-inf", NaN 은 null
type Number float64

func (n Number) MarshalJSON() ([]byte, error) {
	v := float64(n)
	switch {
	case math.IsNaN(v):
		return []byte("null"), nil
	case math.IsInf(v, 1):
		return []byte(`"inf"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-inf"`), nil
	}
	return []byte(decimal.NewFromFloat(v).Round(Places).String()), nil
}

func (n *Number) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case "null":
		*n = Number(math.NaN())
		return nil
	case `"inf"`:
		*n = Number(math.Inf(1))
		return nil
	case `"-inf"`:
		*n = Number(math.Inf(-1))
		return nil
	}
	d, err := decimal.NewFromString(string(bytes.Trim(data, `"`)))
	if err != nil {
		return err
	}
	*n = Number(d.InexactFloat64())
	return nil
}

type Stats struct {
	InitialBalance Number `json:"initial_balance"`
	FinalBalance   Number `json:"final_balance"`
	TradeCount     int    `json:"trade_count"`
	WinCount       int    `json:"win_count"`
	LossCount      int    `json:"loss_count"`
	TotalReturn    Number `json:"total_return"`
	WinRate        Number `json:"win_rate"`
	AvgWin         Number `json:"avg_win"`
	AvgLoss        Number `json:"avg_loss"`
	ProfitFactor   Number `json:"profit_factor"`
	MaxDrawdown    Number `json:"max_drawdown"`
	SharpeRatio    Number `json:"sharpe_ratio"`
	SortinoRatio   Number `json:"sortino_ratio"`
	CalmarRatio    Number `json:"calmar_ratio"`
}

// Breakdown : 청산 사유 / 방향별 집계
type Breakdown struct {
	Key    string `json:"key"`
	Count  int    `json:"count"`
	NetPnl Number `json:"net_pnl"`
}

type Report struct {
	RunID       string             `json:"run_id"`
	Strategy    string             `json:"strategy"`
	Pair        string             `json:"pair"`
	Timeframe   string             `json:"timeframe"`
	Params      map[string]float64 `json:"params,omitempty"`
	GeneratedAt time.Time          `json:"generated_at"`
	Candles     int                `json:"candles"`
	Skipped     int                `json:"skipped"`
	Stats       Stats              `json:"stats"`
	ByReason    []Breakdown        `json:"by_reason"`
	BySide      []Breakdown        `json:"by_side"`
}

func FromResult(res *backtest.Result) Report {
	runID := res.RunID
	if _, err := uuid.Parse(runID); err != nil {
		runID = uuid.NewString()
	}
	s := res.Stats
	return Report{
		RunID:       runID,
		Strategy:    res.Strategy,
		Pair:        res.Pair,
		Timeframe:   res.Timeframe,
		Params:      res.Params,
		GeneratedAt: time.Now().UTC(),
		Candles:     len(res.Equity),
		Skipped:     res.Skipped,
		Stats: Stats{
			InitialBalance: Number(s.InitialBalance),
			FinalBalance:   Number(s.FinalBalance),
			TradeCount:     s.TradeCount,
			WinCount:       s.WinCount,
			LossCount:      s.LossCount,
			TotalReturn:    Number(s.TotalReturn),
			WinRate:        Number(s.WinRate),
			AvgWin:         Number(s.AvgWin),
			AvgLoss:        Number(s.AvgLoss),
			ProfitFactor:   Number(s.ProfitFactor),
			MaxDrawdown:    Number(s.MaxDrawdown),
			SharpeRatio:    Number(s.SharpeRatio),
			SortinoRatio:   Number(s.SortinoRatio),
			CalmarRatio:    Number(s.CalmarRatio),
		},
		ByReason: breakdown(res.Trades, func(t model.TradeRecord) string { return string(t.Reason) }),
		BySide:   breakdown(res.Trades, func(t model.TradeRecord) string { return string(t.Side) }),
	}
}

func breakdown(trades []model.TradeRecord, key func(model.TradeRecord) string) []Breakdown {
	groups := collection.GroupBy(trades, key)
	out := make([]Breakdown, 0, len(groups))
	for k, items := range groups {
		out = append(out, Breakdown{
			Key:    k,
			Count:  len(items),
			NetPnl: Number(collection.SumBy(items, func(t model.TradeRecord) float64 { return t.NetPnl })),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Encode : 한 줄 JSON
func Encode(rep Report) ([]byte, error) {
	return ujson.Encode(rep)
}

func Decode(data []byte) (Report, error) {
	return ujson.Decode[Report](data)
}

func WriteJSON(w io.Writer, rep Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

var tradeHeader = []string{
	"pair", "side", "entry_time", "exit_time", "entry", "exit", "qty",
	"gross_pnl", "fees", "net_pnl", "reason", "tag", "lots",
}

func WriteTradesCSV(w io.Writer, trades []model.TradeRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(tradeHeader); err != nil {
		return err
	}
	for _, t := range trades {
		if err := cw.Write([]string{
			t.Pair, string(t.Side), formatTime(t.EntryTime), formatTime(t.ExitTime),
			formatF(t.EntryPrice), formatF(t.ExitPrice), formatF(t.Quantity),
			formatF(t.GrossPnl), formatF(t.Fees), formatF(t.NetPnl),
			string(t.Reason), t.Tag, strconv.Itoa(t.LotCount),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Save : dir/<run_id>.json, dir/<run_id>_trades.csv
func Save(dir string, res *backtest.Result) (Report, error) {
	rep := FromResult(res)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return rep, err
	}

	jsonPath := filepath.Join(dir, rep.RunID+".json")
	if err := writeFile(jsonPath, func(w io.Writer) error { return WriteJSON(w, rep) }); err != nil {
		return rep, fmt.Errorf("write %s: %w", jsonPath, err)
	}
	csvPath := filepath.Join(dir, rep.RunID+"_trades.csv")
	if err := writeFile(csvPath, func(w io.Writer) error { return WriteTradesCSV(w, res.Trades) }); err != nil {
		return rep, fmt.Errorf("write %s: %w", csvPath, err)
	}
	return rep, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return write(f)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func formatF(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
