package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"lotbot/chartview"
	"lotbot/interfaces"
	"lotbot/optimizer"
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
		workers    string
		top        int
		serve      bool
	)
	flag.StringVar(&configPath, "config", "", "YAML config file with optimize.grid")
	flag.StringVar(&envFile, "env", "", ".env file (default ./.env)")
	flag.StringVar(&workers, "workers", "", "parallel runs (default GOMAXPROCS)")
	flag.IntVar(&top, "top", 10, "print the best N combinations")
	flag.BoolVar(&serve, "serve", false, "serve successful runs over HTTP after the sweep")
	flag.Parse()

	overrides := map[string]string{"workers": workers}
	if serve {
		overrides["serve"] = "true"
	}
	cfg, err := cli.LoadConfig(configPath, envFile, overrides)
	if err != nil {
		log.Fatalf("[SWEEP] config: %v", err)
	}
	if len(cfg.Optimize.Grid) == 0 {
		log.Fatalf("[SWEEP] optimize.grid is empty")
	}

	base := cfg.Strategy.Params
	factory := func(params optimizer.ParamSet) (interfaces.Strategy, error) {
		merged := strategy.Params{}
		for k, v := range base {
			merged[k] = v
		}
		for k, v := range params {
			merged[k] = v
		}
		return strategy.FromConfig(cfg.Strategy.Name, merged)
	}

	probe, err := factory(nil)
	if err != nil {
		log.Fatalf("[SWEEP] strategy: %v", err)
	}
	src, err := cfg.CandleSource()
	if err != nil {
		log.Fatalf("[SWEEP] source: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	candles, err := cfg.LoadCandles(ctx, src, probe)
	if err != nil {
		log.Fatalf("[SWEEP] %v", err)
	}

	opt, err := optimizer.New(cfg.Backtest, factory, optimizer.WithWorkers(cfg.Optimize.Workers))
	if err != nil {
		log.Fatalf("[SWEEP] optimizer: %v", err)
	}
	outcomes, err := opt.Run(ctx, candles, cfg.Optimize.Grid)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("[SWEEP] run: %v", err)
	}
	if err != nil {
		log.Warnf("[SWEEP] interrupted, %d combinations finished", len(outcomes))
	}

	printOutcomes(outcomes, top)

	best, ok := optimizer.Best(outcomes)
	if !ok {
		log.Fatalf("[SWEEP] no successful combination")
	}
	rep, err := report.Save(cfg.Report.Dir, best.Result)
	if err != nil {
		log.Fatalf("[SWEEP] report: %v", err)
	}
	log.Infof("[SWEEP] best %s saved as %s", best.Params, rep.RunID)

	if cfg.Server.Enabled {
		store := chartview.NewRunStore()
		for _, o := range outcomes {
			if o.Err == nil && o.Result != nil {
				store.Put(o.Result, nil)
			}
		}
		if err := webserver.NewWebServer(store).Start(context.Background(), cfg.Server.Port); err != nil {
			log.Fatalf("[SWEEP] server: %v", err)
		}
	}
}

func printOutcomes(outcomes []optimizer.Outcome, top int) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tparams\ttrades\treturn\tsharpe\tmdd\terror")
	for i, o := range outcomes {
		if top > 0 && i >= top {
			break
		}
		if o.Err != nil {
			fmt.Fprintf(w, "%d\t%s\t-\t-\t-\t-\t%v\n", i+1, o.Params, o.Err)
			continue
		}
		s := o.Result.Stats
		fmt.Fprintf(w, "%d\t%s\t%d\t%.2f%%\t%.3f\t%.2f%%\t\n",
			i+1, o.Params, s.TradeCount, s.TotalReturn*100, s.SharpeRatio, s.MaxDrawdown*100)
	}
	_ = w.Flush()
}
