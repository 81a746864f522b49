package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"lotbot/model"
	"lotbot/utils/auth"
	"lotbot/utils/log"
	"lotbot/utils/resty"
	"lotbot/utils/tools"
)

const (
	upbitBaseREST = "https://api.upbit.com"

	// upbitCandlePage : 캔들 API 한 번에 최대 200개
	upbitCandlePage = 200
	upbitTimeLayout = "2006-01-02T15:04:05"
)

var (
	ErrUpbitResponse    = errors.New("upbit api error")
	ErrShortUnsupported = errors.New("upbit spot does not support short positions")
)

// Upbit : REST 캔들 조회(CandleSource) + 시장가 주문(OrderExecutor)
type Upbit struct {
	signer   auth.UpbitSigner
	resty    resty.RestyClient
	baseURL  string
	pageSize int
}

type UpbitOption func(*Upbit)

// WithRestyClient : 테스트용 mock 클라이언트 주입
func WithRestyClient(client resty.RestyClient) UpbitOption {
	return func(u *Upbit) {
		u.resty = client
	}
}

func WithBaseURL(url string) UpbitOption {
	return func(u *Upbit) {
		u.baseURL = strings.TrimRight(url, "/")
	}
}

func WithPageSize(size int) UpbitOption {
	return func(u *Upbit) {
		if size > 0 && size <= upbitCandlePage {
			u.pageSize = size
		}
	}
}

func NewUpbit(apiKey, secretKey string, opts ...UpbitOption) *Upbit {
	up := &Upbit{
		signer:   auth.NewUpbitSigner(apiKey, secretKey),
		baseURL:  upbitBaseREST,
		pageSize: upbitCandlePage,
	}
	for _, opt := range opts {
		opt(up)
	}
	if up.resty == nil {
		up.resty = resty.NewRestyClient(resty.WithRetry(3), resty.WithTimeout(10*time.Second))
	}
	log.Info("[SETUP] Using Upbit exchange")
	return up
}

// CandlesByPeriod : [start, end) 구간 완성봉을 시간 오름차순으로.
// Upbit 는 to 이전 최신순으로 최대 200개씩 주므로 to 를 뒤로 당기며 반복
func (u *Upbit) CandlesByPeriod(ctx context.Context, pair, period string, start, end time.Time) ([]model.Candle, error) {
	endpoint, err := tools.MapPeriodToCandleEndpoint(period)
	if err != nil {
		return nil, err
	}
	if !end.After(start) {
		return nil, fmt.Errorf("invalid range: %s ~ %s", start.Format(time.RFC3339), end.Format(time.RFC3339))
	}

	path := u.baseURL + "/v1/candles/" + endpoint
	byTime := make(map[int64]model.Candle)
	to := end.UTC()

	for page := 1; ; page++ {
		resp, err := u.resty.MakeRequest(ctx, nil, nil).Get(path,
			resty.QueryParam{Key: "market", Value: pair},
			resty.QueryParam{Key: "to", Value: to.Format(upbitTimeLayout) + "Z"},
			resty.QueryParam{Key: "count", Value: u.pageSize},
		)
		if err != nil {
			return nil, fmt.Errorf("candles %s page %d: %w", pair, page, err)
		}
		if !resp.IsSuccess() {
			return nil, fmt.Errorf("%w: %d, %s", ErrUpbitResponse, resp.StatusCode(), resp.String())
		}

		var rows []model.CandleResponse
		if err := json.Unmarshal(resp.Body(), &rows); err != nil {
			return nil, fmt.Errorf("candles parse: %w", err)
		}

		oldest := to
		for _, row := range rows {
			c, err := convertCandle(row)
			if err != nil {
				log.Warnf("[UPBIT] skip candle %q: %v", row.CandleDateTimeUtc, err)
				continue
			}
			if c.Time.Before(oldest) {
				oldest = c.Time
			}
			if c.Time.Before(start) || !c.Time.Before(end) {
				continue
			}
			byTime[c.Time.Unix()] = c
		}

		log.Debugf("[UPBIT] %s %s page %d: %d rows, oldest %s", pair, period, page, len(rows), oldest.Format(time.RFC3339))
		if len(rows) < u.pageSize || !oldest.After(start) || !oldest.Before(to) {
			break
		}
		to = oldest
	}

	candles := make([]model.Candle, 0, len(byTime))
	for _, c := range byTime {
		candles = append(candles, c)
	}
	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Time.Before(candles[j].Time)
	})
	return candles, nil
}

// Execute : 시장가 주문. 매수는 ord_type=price(금액), 매도는 ord_type=market(수량)
func (u *Upbit) Execute(ctx context.Context, order model.Order) (model.Fill, error) {
	if order.Quantity <= 0 {
		return model.Fill{}, fmt.Errorf("invalid quantity: %v", order.Quantity)
	}
	if order.Side == model.SideTypeSell && !order.ReduceOnly {
		return model.Fill{}, ErrShortUnsupported
	}

	params := map[string]string{
		"market": order.Pair,
		"side":   string(order.Side),
	}
	if order.Side == model.SideTypeBuy {
		if order.Price <= 0 {
			return model.Fill{}, fmt.Errorf("market buy needs a reference price")
		}
		params["ord_type"] = string(model.OrderTypePrice)
		params["price"] = floatToString(order.Price * order.Quantity)
	} else {
		params["ord_type"] = string(model.OrderTypeMarket)
		params["volume"] = floatToString(order.Quantity)
	}

	body, err := u.requestUpbitPOST(ctx, "/v1/orders", params)
	if err != nil {
		return model.Fill{}, err
	}
	var resp model.OrderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return model.Fill{}, fmt.Errorf("order parse: %w", err)
	}
	fill := convertOrderToFill(resp, order)
	log.Infof("[UPBIT] %s %s %.8f @ %.4f fee %.4f (%s)", order.Pair, order.Side, fill.Quantity, fill.Price, fill.Fee, fill.OrderID)
	return fill, nil
}

func convertCandle(row model.CandleResponse) (model.Candle, error) {
	t, err := time.Parse(upbitTimeLayout, row.CandleDateTimeUtc)
	if err != nil {
		return model.Candle{}, err
	}
	return model.Candle{
		Pair:     row.Market,
		Time:     t.UTC(),
		Open:     row.OpeningPrice,
		High:     row.HighPrice,
		Low:      row.LowPrice,
		Close:    row.TradePrice,
		Volume:   row.CandleAccTradeVolume,
		Complete: true,
		Metadata: map[string]float64{},
	}, nil
}

// convertOrderToFill : 체결 내역이 있으면 funds/volume 가중평균, 없으면 요청 가격
func convertOrderToFill(o model.OrderResponse, order model.Order) model.Fill {
	var funds, volume float64
	for _, t := range o.Trades {
		f, _ := strconv.ParseFloat(t.Funds, 64)
		v, _ := strconv.ParseFloat(t.Volume, 64)
		funds += f
		volume += v
	}

	price := order.Price
	if volume > 0 {
		price = funds / volume
	}
	qty, _ := strconv.ParseFloat(o.ExecutedVolume, 64)
	if qty <= 0 {
		qty = volume
	}
	if qty <= 0 {
		qty = order.Quantity
	}
	fee, _ := strconv.ParseFloat(o.PaidFee, 64)

	created, err := time.Parse(time.RFC3339, o.CreatedAt)
	if err != nil {
		created = order.CreatedAt
	}
	return model.Fill{
		OrderID:  o.UUID,
		Pair:     order.Pair,
		Side:     order.Side,
		Price:    price,
		Quantity: qty,
		Fee:      fee,
		Time:     created,
	}
}

// SplitAssetQuote : "KRW-BTC" → ("BTC", "KRW")
func SplitAssetQuote(pair string) (base, quote string) {
	parts := strings.Split(pair, "-")
	if len(parts) != 2 {
		return pair, ""
	}
	return parts[1], parts[0]
}

// requestUpbitPOST : Upbit JWT + POST
func (u *Upbit) requestUpbitPOST(ctx context.Context, path string, params map[string]string) ([]byte, error) {
	full := u.baseURL + path
	authorization, err := u.signer.Authorization(params)
	if err != nil {
		return nil, err
	}
	header := map[string]string{
		"Authorization": authorization,
		"Content-Type":  "application/json",
	}

	resp, err := u.resty.
		MakeRequest(ctx, params, header).
		Post(full)

	if err != nil {
		return nil, fmt.Errorf("API 호출 실패: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: %d, %s", ErrUpbitResponse, resp.StatusCode(), resp.String())
	}

	return resp.Body(), nil
}

func floatToString(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
