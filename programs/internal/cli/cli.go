// Package cli : programs/* 가 같이 쓰는 설정 로딩과 알림 연결
package cli

import (
	"os"
	"strings"

	"lotbot/backtest"
	"lotbot/config"
	"lotbot/feed"
	"lotbot/model"
	"lotbot/notification"
	"lotbot/utils/log"
)

// LoadConfig : flag 값은 LOTBOT_* 환경변수로 넘겨서 YAML 값과 같은 검증을 거치게 함
func LoadConfig(path, envFile string, overrides map[string]string) (*config.Config, error) {
	for key, value := range overrides {
		if value == "" {
			continue
		}
		if err := os.Setenv("LOTBOT_"+strings.ToUpper(key), value); err != nil {
			return nil, err
		}
	}

	var envFiles []string
	if envFile != "" {
		envFiles = append(envFiles, envFile)
	}
	cfg, err := config.Load(path, envFiles...)
	if err != nil {
		return nil, err
	}

	log.SetLevel(cfg.Log.Level)
	if cfg.Log.JSON {
		log.SetJSON()
	}
	return cfg, nil
}

// Notifications : 텔레그램 설정이 있으면 청산마다 알림을 보내는 feed 와 observer
type Notifications struct {
	notifier *notification.TelegramNotifier
	feed     *feed.TradeFeedSubscription
}

func NewNotifications(cfg *config.Config) *Notifications {
	if !cfg.Secrets.TelegramEnabled() {
		return &Notifications{}
	}
	n := &Notifications{
		notifier: notification.NewTelegramNotifier(cfg.Secrets.TelegramBotToken, cfg.Secrets.TelegramChatID),
		feed:     feed.NewTradeFeed(),
	}
	n.feed.Subscribe(cfg.Backtest.Pair, n.notifier.TradeNotifier)
	n.feed.Start()
	return n
}

// DriverOptions : 알림이 꺼져 있으면 빈 슬라이스
func (n *Notifications) DriverOptions() []backtest.Option {
	if n.feed == nil {
		return nil
	}
	return []backtest.Option{backtest.WithTradeObserver(func(trade model.TradeRecord) {
		n.feed.Publish(trade)
	})}
}

// Finish : 남은 거래 알림을 모두 보낸 뒤 요약 전송
func (n *Notifications) Finish(res *backtest.Result) {
	if n.feed == nil {
		return
	}
	n.feed.Stop()
	if res != nil {
		n.notifier.SummaryNotifier(res.Strategy, res.Pair, res.Stats)
	}
}
