package exchange

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"lotbot/model"
	"lotbot/utils/auth"
	"lotbot/utils/resty"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var upbitT0 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func candleRows(times ...time.Time) []model.CandleResponse {
	rows := make([]model.CandleResponse, 0, len(times))
	for _, t := range times {
		p := 100 + float64(t.Sub(upbitT0)/time.Hour)
		rows = append(rows, model.CandleResponse{
			Market:               "KRW-BTC",
			CandleDateTimeUtc:    t.Format(upbitTimeLayout),
			OpeningPrice:         p,
			HighPrice:            p + 1,
			LowPrice:             p - 1,
			TradePrice:           p + 0.5,
			CandleAccTradeVolume: 10,
		})
	}
	return rows
}

func queryValue(params []resty.QueryParam, key string) any {
	for _, p := range params {
		if p.Key == key {
			return p.Value
		}
	}
	return nil
}

// 최신순으로 to 이전 count 개를 돌려주는 가짜 캔들 API
func candlesMock(t *testing.T, all []time.Time, calls *int) resty.MockFunc {
	return resty.MockFunc{
		Method: "GET",
		Path:   upbitBaseREST + "/v1/candles/minutes/60",
		ResultBody: func(header any, requestBody any, params ...resty.QueryParam) (resty.MockFuncResponse, error) {
			*calls++
			assert.Equal(t, "KRW-BTC", queryValue(params, "market"))
			to, err := time.Parse(time.RFC3339, queryValue(params, "to").(string))
			require.NoError(t, err)
			count := queryValue(params, "count").(int)

			var page []time.Time
			for i := len(all) - 1; i >= 0 && len(page) < count; i-- {
				if all[i].Before(to) {
					page = append(page, all[i])
				}
			}
			return resty.MockFuncResponse{
				RawResponse: &http.Response{StatusCode: http.StatusOK},
				Body:        candleRows(page...),
			}, nil
		},
	}
}

func TestUpbit_CandlesByPeriodPaginates(t *testing.T) {
	var all []time.Time
	for i := 0; i < 5; i++ {
		all = append(all, upbitT0.Add(time.Duration(i)*time.Hour))
	}
	calls := 0
	client := resty.NewMockRestyClient([]resty.MockFunc{candlesMock(t, all, &calls)})
	up := NewUpbit("", "", WithRestyClient(client), WithPageSize(2))

	candles, err := up.CandlesByPeriod(context.Background(), "KRW-BTC", "1h", upbitT0, upbitT0.Add(5*time.Hour))
	require.NoError(t, err)

	require.Len(t, candles, 5)
	assert.Equal(t, 3, calls)
	for i, c := range candles {
		assert.Equal(t, all[i], c.Time)
		assert.True(t, c.Complete)
	}
	assert.Equal(t, 100.5, candles[0].Close)
	assert.NoError(t, model.ValidateSeries(candles))
}

func TestUpbit_CandlesByPeriodClipsRange(t *testing.T) {
	var all []time.Time
	for i := 0; i < 6; i++ {
		all = append(all, upbitT0.Add(time.Duration(i)*time.Hour))
	}
	calls := 0
	client := resty.NewMockRestyClient([]resty.MockFunc{candlesMock(t, all, &calls)})
	up := NewUpbit("", "", WithRestyClient(client))

	candles, err := up.CandlesByPeriod(context.Background(), "KRW-BTC", "1h", upbitT0.Add(2*time.Hour), upbitT0.Add(4*time.Hour))
	require.NoError(t, err)
	require.Len(t, candles, 2)
	assert.Equal(t, upbitT0.Add(2*time.Hour), candles[0].Time)
	assert.Equal(t, 1, calls)
}

func TestUpbit_CandlesByPeriodErrors(t *testing.T) {
	client := resty.NewMockRestyClient([]resty.MockFunc{{
		Method: "GET",
		Path:   upbitBaseREST + "/v1/candles/days",
		ResultBody: func(header any, requestBody any, params ...resty.QueryParam) (resty.MockFuncResponse, error) {
			return resty.MockFuncResponse{
				RawResponse: &http.Response{StatusCode: http.StatusTooManyRequests},
				Body:        map[string]string{"error": "too many requests"},
			}, nil
		},
	}})
	up := NewUpbit("", "", WithRestyClient(client))

	_, err := up.CandlesByPeriod(context.Background(), "KRW-BTC", "1d", upbitT0, upbitT0.Add(48*time.Hour))
	assert.ErrorIs(t, err, ErrUpbitResponse)

	_, err = up.CandlesByPeriod(context.Background(), "KRW-BTC", "7h", upbitT0, upbitT0.Add(time.Hour))
	assert.Error(t, err)

	_, err = up.CandlesByPeriod(context.Background(), "KRW-BTC", "1d", upbitT0, upbitT0)
	assert.Error(t, err)
}

func TestUpbit_ExecuteMarketBuy(t *testing.T) {
	client := resty.NewMockRestyClient([]resty.MockFunc{{
		Method: "POST",
		Path:   upbitBaseREST + "/v1/orders",
		ResultBody: func(header any, requestBody any, params ...resty.QueryParam) (resty.MockFuncResponse, error) {
			h := header.(map[string]string)
			assert.True(t, strings.HasPrefix(h["Authorization"], "Bearer "))

			body := requestBody.(map[string]string)
			assert.Equal(t, "price", body["ord_type"])
			assert.Equal(t, "bid", body["side"])
			assert.Equal(t, "50000", body["price"])

			return resty.MockFuncResponse{
				RawResponse: &http.Response{StatusCode: http.StatusCreated},
				Body: model.OrderResponse{
					UUID:           "order-1",
					Side:           "bid",
					OrdType:        "price",
					State:          "done",
					Market:         "KRW-BTC",
					CreatedAt:      "2024-03-01T09:00:00+09:00",
					ExecutedVolume: "0.5",
					PaidFee:        "25",
					Trades: []model.Trade{
						{Market: "KRW-BTC", Price: "99000", Volume: "0.25", Funds: "24750"},
						{Market: "KRW-BTC", Price: "101000", Volume: "0.25", Funds: "25250"},
					},
				},
			}, nil
		},
	}})
	up := NewUpbit("access", "secret", WithRestyClient(client))

	fill, err := up.Execute(context.Background(), model.Order{
		Pair:     "KRW-BTC",
		Side:     model.SideTypeBuy,
		Type:     model.OrderTypeMarket,
		Price:    100000,
		Quantity: 0.5,
	})
	require.NoError(t, err)
	assert.Equal(t, "order-1", fill.OrderID)
	assert.InDelta(t, 100000.0, fill.Price, 1e-6)
	assert.InDelta(t, 0.5, fill.Quantity, 1e-12)
	assert.InDelta(t, 25.0, fill.Fee, 1e-12)
	assert.True(t, fill.Time.Equal(upbitT0))
}

func TestUpbit_ExecuteRejectsShortOpen(t *testing.T) {
	up := NewUpbit("", "", WithRestyClient(resty.NewMockRestyClient(nil)))
	_, err := up.Execute(context.Background(), model.Order{Pair: "KRW-BTC", Side: model.SideTypeSell, Price: 1, Quantity: 1})
	assert.ErrorIs(t, err, ErrShortUnsupported)
}

func TestSplitAssetQuote(t *testing.T) {
	base, quote := SplitAssetQuote("KRW-BTC")
	assert.Equal(t, "BTC", base)
	assert.Equal(t, "KRW", quote)
}

func TestUpbit_ExecuteNeedsKeys(t *testing.T) {
	up := NewUpbit("", "", WithRestyClient(resty.NewMockRestyClient(nil)))
	_, err := up.Execute(context.Background(), model.Order{Pair: "KRW-BTC", Side: model.SideTypeBuy, Price: 100, Quantity: 1})
	assert.ErrorIs(t, err, auth.ErrMissingKeys)
}
