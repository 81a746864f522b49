package resty

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
)

type RestyClient interface {
	MakeRequest(ctx context.Context, body any, header any, contentType ...string) ReadyRestyReq
}

// ReadyRestyReq : 거래소 캔들 조회(GET)와 주문/알림(POST)만 사용
type ReadyRestyReq interface {
	Get(url string, queryParams ...QueryParam) (*resty.Response, error)
	Post(url string, queryParams ...QueryParam) (*resty.Response, error)
}

type QueryParam struct {
	Key   string
	Value any
}

type clientConfig struct {
	trace        bool
	retry        int
	timeout      time.Duration
	retryWait    time.Duration
	retryMaxWait time.Duration
}

type ClientOption func(*clientConfig)

// WithRetry : GET 요청만 재시도. 주문 POST 가 두 번 나가지 않게
func WithRetry(count int) ClientOption {
	return func(c *clientConfig) {
		if count >= 0 {
			c.retry = count
		}
	}
}

func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *clientConfig) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

func WithTrace() ClientOption {
	return func(c *clientConfig) { c.trace = true }
}

func NewRestyClient(opts ...ClientOption) RestyClient {
	cfg := clientConfig{
		timeout:      10 * time.Second,
		retryWait:    time.Second,
		retryMaxWait: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return newDefaultRestyClient(cfg)
}

func NewMockRestyClient(mockFuncs []MockFunc) RestyClient {
	mocks := make(map[string]MockFunc, len(mockFuncs))
	for _, mockFunc := range mockFuncs {
		mocks[mockKey(mockFunc.Method, mockFunc.Path)] = mockFunc
	}
	return &mockRestyClient{mocks: mocks}
}
