package feed

import (
	"context"
	"sync"

	"lotbot/model"
	"lotbot/utils/log"
)

type TradeFeed struct {
	Data chan model.TradeRecord
}

type TradeFeedConsumer func(trade model.TradeRecord)

// TradeFeedSubscription : pair 별 거래 기록 pub/sub.
// pair 마다 고루틴 하나가 순서대로 구독자에게 전달한다
type TradeFeedSubscription struct {
	TradeFeeds             map[string]*TradeFeed
	SubscriptionsByFeedKey map[string][]TradeFeedConsumer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.RWMutex
	started bool
	stopped bool
}

func NewTradeFeed() *TradeFeedSubscription {
	ctx, cancel := context.WithCancel(context.Background())
	return &TradeFeedSubscription{
		TradeFeeds:             make(map[string]*TradeFeed),
		SubscriptionsByFeedKey: make(map[string][]TradeFeedConsumer),
		ctx:                    ctx,
		cancel:                 cancel,
	}
}

// 전체적인 흐름 : New -> Subscribe -> Start -> Publish -> Stop

func (d *TradeFeedSubscription) Subscribe(pair string, consumer TradeFeedConsumer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started {
		log.Warnf("[FEED] subscribe after start ignored: %s", pair)
		return
	}
	if _, ok := d.TradeFeeds[pair]; !ok {
		d.TradeFeeds[pair] = &TradeFeed{
			Data: make(chan model.TradeRecord, 100), //버퍼링된 채널로 퍼블리시 블로킹 방지
		}
	}
	d.SubscriptionsByFeedKey[pair] = append(d.SubscriptionsByFeedKey[pair], consumer)
}

// Publish : 구독자가 없는 pair 는 버림. Stop 이후에도 버림
func (d *TradeFeedSubscription) Publish(trade model.TradeRecord) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		return
	}
	if feed, ok := d.TradeFeeds[trade.Pair]; ok {
		select {
		case feed.Data <- trade:
		case <-d.ctx.Done():
		}
	}
}

func (d *TradeFeedSubscription) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started {
		return
	}
	d.started = true
	for pair, feed := range d.TradeFeeds {
		consumers := append([]TradeFeedConsumer(nil), d.SubscriptionsByFeedKey[pair]...)
		d.wg.Add(1)
		go func(feed *TradeFeed, consumers []TradeFeedConsumer) {
			defer d.wg.Done()
			for trade := range feed.Data {
				for _, consumer := range consumers {
					deliver(consumer, trade)
				}
			}
		}(feed, consumers)
	}
}

// Stop : 더 이상 받지 않고, 이미 들어온 거래는 모두 전달한 뒤 반환
func (d *TradeFeedSubscription) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	for _, feed := range d.TradeFeeds {
		close(feed.Data)
	}
	started := d.started
	d.mu.Unlock()

	if started {
		d.wg.Wait()
	}
	d.cancel()
}

func deliver(consumer TradeFeedConsumer, trade model.TradeRecord) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("[FEED] consumer panic on %s trade: %v", trade.Pair, r)
		}
	}()
	consumer(trade)
}
