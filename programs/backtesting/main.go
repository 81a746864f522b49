package main

import (
	"context"
	"flag"
	"fmt"

	"lotbot/backtest"
	"lotbot/chartview"
	"lotbot/notification"
	"lotbot/programs/internal/cli"
	"lotbot/report"
	"lotbot/strategy"
	"lotbot/utils/log"
	"lotbot/webserver"
)

func main() {
	var (
		configPath string
		envFile    string
		strategyID string
		csvPath    string
		pair       string
		reportDir  string
		serve      bool
		port       string
	)
	flag.StringVar(&configPath, "config", "", "YAML config file")
	flag.StringVar(&envFile, "env", "", ".env file (default ./.env)")
	flag.StringVar(&strategyID, "strategy", "", fmt.Sprintf("strategy override: %v", strategy.Names()))
	flag.StringVar(&csvPath, "csv", "", "candle CSV (time,open,high,low,close,volume)")
	flag.StringVar(&pair, "pair", "", "market, eg: KRW-BTC")
	flag.StringVar(&reportDir, "out", "", "report directory")
	flag.BoolVar(&serve, "serve", false, "serve the result over HTTP after the run")
	flag.StringVar(&port, "port", "", "HTTP port for -serve")
	flag.Parse()

	overrides := map[string]string{
		"strategy":   strategyID,
		"csv_path":   csvPath,
		"pair":       pair,
		"report_dir": reportDir,
		"port":       port,
	}
	if serve {
		overrides["serve"] = "true"
	}
	cfg, err := cli.LoadConfig(configPath, envFile, overrides)
	if err != nil {
		log.Fatalf("[BACKTEST] config: %v", err)
	}

	strat, err := cfg.NewStrategy()
	if err != nil {
		log.Fatalf("[BACKTEST] strategy: %v", err)
	}
	src, err := cfg.CandleSource()
	if err != nil {
		log.Fatalf("[BACKTEST] source: %v", err)
	}
	candles, err := cfg.LoadCandles(context.Background(), src, strat)
	if err != nil {
		log.Fatalf("[BACKTEST] %v", err)
	}

	notifications := cli.NewNotifications(cfg)
	driver, err := backtest.NewDriver(cfg.Backtest, strat, notifications.DriverOptions()...)
	if err != nil {
		log.Fatalf("[BACKTEST] driver: %v", err)
	}
	res, err := driver.Run(candles)
	notifications.Finish(res)
	if err != nil {
		log.Fatalf("[BACKTEST] run: %v", err)
	}

	rep, err := report.Save(cfg.Report.Dir, res)
	if err != nil {
		log.Fatalf("[BACKTEST] report: %v", err)
	}
	fmt.Println(notification.FormatSummary(res.Strategy, res.Pair, res.Stats))
	log.Infof("[BACKTEST] report %s saved to %s (skipped %d candles)", rep.RunID, cfg.Report.Dir, res.Skipped)

	if cfg.Server.Enabled {
		store := chartview.NewRunStore()
		store.Put(res, strategy.ChartIndicators(strat, res.Candles))
		log.Infof("[BACKTEST] chart: http://localhost:%s/runs/%s/chart", cfg.Server.Port, res.RunID)
		if err := webserver.NewWebServer(store).Start(context.Background(), cfg.Server.Port); err != nil {
			log.Fatalf("[BACKTEST] server: %v", err)
		}
	}
}
