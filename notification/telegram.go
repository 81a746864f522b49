package notification

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"lotbot/model"
	"lotbot/utils/log"
	"lotbot/utils/resty"
)

const telegramBaseURL = "https://api.telegram.org"

var ErrTelegram = errors.New("telegram api error")

type TelegramNotifier struct {
	BotToken string
	ChatID   string

	client  resty.RestyClient
	baseURL string
}

type TelegramOption func(*TelegramNotifier)

func WithTelegramClient(client resty.RestyClient) TelegramOption {
	return func(t *TelegramNotifier) {
		t.client = client
	}
}

func NewTelegramNotifier(botToken, chatID string, opts ...TelegramOption) *TelegramNotifier {
	t := &TelegramNotifier{
		BotToken: botToken,
		ChatID:   chatID,
		baseURL:  telegramBaseURL,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.client == nil {
		t.client = resty.NewRestyClient(resty.WithTimeout(5 * time.Second))
	}
	return t
}

func (t *TelegramNotifier) endpoint() string {
	return fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.BotToken)
}

func (t *TelegramNotifier) SendNotification(message string) error {
	body := map[string]string{
		"chat_id": t.ChatID,
		"text":    message,
	}
	resp, err := t.client.MakeRequest(context.Background(), body, nil).Post(t.endpoint())
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("%w: %d, %s", ErrTelegram, resp.StatusCode(), resp.String())
	}
	return nil
}

// TradeNotifier : 청산 한 건 알림. 전송 실패는 로그만 남김
func (t *TelegramNotifier) TradeNotifier(trade model.TradeRecord) {
	if sendErr := t.SendNotification(FormatTrade(trade)); sendErr != nil {
		log.Warnf("텔레그램 알림 전송 실패: %v", sendErr)
	}
}

// SummaryNotifier : 실행 종료 요약
func (t *TelegramNotifier) SummaryNotifier(strategy, pair string, report model.StatsReport) {
	if sendErr := t.SendNotification(FormatSummary(strategy, pair, report)); sendErr != nil {
		log.Warnf("텔레그램 알림 전송 실패: %v", sendErr)
	}
}

func FormatTrade(trade model.TradeRecord) string {
	action := "롱 청산"
	if trade.Side == model.SideShort {
		action = "숏 청산"
	}
	return fmt.Sprintf("%s (%s)\n종목: %s\n진입가: %.2f\n청산가: %.2f\n수량: %.8f\n손익: %.2f (수수료 %.2f)",
		action, trade.Reason, trade.Pair, trade.EntryPrice, trade.ExitPrice, trade.Quantity, trade.NetPnl, trade.Fees)
}

func FormatSummary(strategy, pair string, r model.StatsReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "백테스트 완료: %s %s\n", strategy, pair)
	fmt.Fprintf(&b, "자산: %.2f → %.2f (%.2f%%)\n", r.InitialBalance, r.FinalBalance, r.TotalReturn*100)
	fmt.Fprintf(&b, "거래: %d (승 %d / 패 %d, 승률 %.1f%%)\n", r.TradeCount, r.WinCount, r.LossCount, r.WinRate*100)
	fmt.Fprintf(&b, "MDD: %.2f%%\n", r.MaxDrawdown*100)
	fmt.Fprintf(&b, "Sharpe: %.2f / Sortino: %.2f / Calmar: %.2f\n", r.SharpeRatio, r.SortinoRatio, r.CalmarRatio)
	pf := fmt.Sprintf("%.2f", r.ProfitFactor)
	if math.IsInf(r.ProfitFactor, 1) {
		pf = "inf"
	}
	fmt.Fprintf(&b, "Profit factor: %s", pf)
	return b.String()
}
