package webserver

import (
	"bytes"
	"context"

	"lotbot/chartview"
	"lotbot/model"
	"lotbot/report"
	fiberhelpers "lotbot/utils/fiberhelper"
	"lotbot/utils/fiberhelper/middleware"
	"lotbot/utils/fiberhelper/response"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

// WebServer : 저장된 백테스트 결과 조회용 fiber 앱
type WebServer struct {
	app   *fiber.App
	store *chartview.RunStore
}

// RunFilter : GET /runs 쿼리
type RunFilter struct {
	Strategy string `query:"strategy"`
	Pair     string `query:"pair"`
	Limit    int    `query:"limit"`
}

// RunSummary : 목록용 요약
type RunSummary struct {
	RunID        string        `json:"run_id"`
	Strategy     string        `json:"strategy"`
	Pair         string        `json:"pair"`
	Timeframe    string        `json:"timeframe"`
	TradeCount   int           `json:"trade_count"`
	TotalReturn  report.Number `json:"total_return"`
	SharpeRatio  report.Number `json:"sharpe_ratio"`
	MaxDrawdown  report.Number `json:"max_drawdown"`
	FinalBalance report.Number `json:"final_balance"`
}

func NewWebServer(store *chartview.RunStore) *WebServer {
	app := fiber.New(fiber.Config{
		AppName:               "lotbot",
		ErrorHandler:          fiberhelpers.DefaultErrorHandler,
		DisableStartupMessage: true,
	})
	app.Use(fiberhelpers.NewRecover())
	app.Use(middleware.LogMiddleware("/health"))

	ws := &WebServer{app: app, store: store}
	app.Get("/health", func(c *fiber.Ctx) error {
		return response.Ext{Ctx: c}.Ok(fiber.Map{"runs": store.Len()})
	})
	runs := app.Group("/runs")
	runs.Get("/", ws.listRuns)
	runs.Get("/:id", ws.getRun)
	runs.Get("/:id/trades", ws.getTrades)
	runs.Get("/:id/chart", ws.getChart)
	return ws
}

func (ws *WebServer) App() *fiber.App { return ws.app }

// Start : ctx 취소 또는 SIGINT/SIGTERM 까지 블록
func (ws *WebServer) Start(ctx context.Context, port string) error {
	return fiberhelpers.ListenWithGracefulShutdown(ctx, ws.app, port)
}

func (ws *WebServer) listRuns(c *fiber.Ctx) error {
	filter := fiberhelpers.QueryParse[RunFilter](c)
	if filter.Limit < 0 {
		return response.Ext{Ctx: c}.Error(fiberhelpers.NewBadRequest("limit must be >= 0"))
	}

	runs := lo.Filter(ws.store.List(), func(run *chartview.Run, _ int) bool {
		res := run.Result
		return (filter.Strategy == "" || res.Strategy == filter.Strategy) &&
			(filter.Pair == "" || res.Pair == filter.Pair)
	})
	if filter.Limit > 0 && len(runs) > filter.Limit {
		runs = runs[:filter.Limit]
	}

	summaries := lo.Map(runs, func(run *chartview.Run, _ int) RunSummary {
		res := run.Result
		return RunSummary{
			RunID:        res.RunID,
			Strategy:     res.Strategy,
			Pair:         res.Pair,
			Timeframe:    res.Timeframe,
			TradeCount:   res.Stats.TradeCount,
			TotalReturn:  report.Number(res.Stats.TotalReturn),
			SharpeRatio:  report.Number(res.Stats.SharpeRatio),
			MaxDrawdown:  report.Number(res.Stats.MaxDrawdown),
			FinalBalance: report.Number(res.Stats.FinalBalance),
		}
	})
	return response.Ext{Ctx: c}.Ok(summaries)
}

func (ws *WebServer) lookup(c *fiber.Ctx) (*chartview.Run, error) {
	id := c.Params("id")
	run, ok := ws.store.Get(id)
	if !ok {
		return nil, fiberhelpers.NewNotFound("run %s not found", id)
	}
	return run, nil
}

func (ws *WebServer) getRun(c *fiber.Ctx) error {
	run, err := ws.lookup(c)
	if err != nil {
		return err
	}
	rep := report.FromResult(run.Result)
	rep.RunID = run.Result.RunID
	return response.Ext{Ctx: c}.Ok(rep)
}

// getTrades : ?format=csv 면 CSV 첨부
func (ws *WebServer) getTrades(c *fiber.Ctx) error {
	run, err := ws.lookup(c)
	if err != nil {
		return err
	}
	trades := run.Result.Trades
	if trades == nil {
		trades = []model.TradeRecord{}
	}

	switch c.Query("format", "json") {
	case "json":
		return response.Ext{Ctx: c}.Ok(trades)
	case "csv":
		var buf bytes.Buffer
		if err := report.WriteTradesCSV(&buf, trades); err != nil {
			return err
		}
		return response.Ext{Ctx: c}.CSV(run.Result.RunID+"_trades.csv", buf.Bytes())
	default:
		return fiberhelpers.NewBadRequest("unknown format %q", c.Query("format"))
	}
}

func (ws *WebServer) getChart(c *fiber.Ctx) error {
	run, err := ws.lookup(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := chartview.RenderResult(&buf, run.Result, run.Indicators); err != nil {
		return fiberhelpers.NewBadRequest("%v", err)
	}
	return response.Ext{Ctx: c}.HTML(buf.Bytes())
}
