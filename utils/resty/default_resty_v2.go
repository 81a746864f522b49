package resty

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/go-resty/resty/v2"
)

type defaultRestyClient struct {
	restyClient *resty.Client
}

func newDefaultRestyClient(cfg clientConfig) *defaultRestyClient {
	client := resty.New().
		SetRetryCount(cfg.retry).
		SetTimeout(cfg.timeout).
		SetRetryWaitTime(cfg.retryWait).
		SetRetryMaxWaitTime(cfg.retryMaxWait).
		AddRetryCondition(retryable)

	client.SetTransport(&http.Transport{
		DialContext:         (&net.Dialer{}).DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
	})
	if cfg.trace {
		client.EnableTrace()
	}
	return &defaultRestyClient{restyClient: client}
}

// retryable : GET 의 네트워크 오류, 5xx, 429(too_many_requests)
func retryable(response *resty.Response, err error) bool {
	if response == nil || response.Request == nil || response.Request.Method != http.MethodGet {
		return false
	}
	code := response.StatusCode()
	return err != nil || code >= 500 || code == http.StatusTooManyRequests
}

func (client *defaultRestyClient) MakeRequest(ctx context.Context, body any, header any, contentType ...string) ReadyRestyReq {
	request := client.restyClient.R().SetContext(ctx)
	if body != nil {
		request.SetBody(body)
	}

	mime := "application/json"
	if len(contentType) > 0 {
		mime = contentType[0]
	}
	request.SetHeader("Content-Type", mime)
	request.SetHeader("Accept", mime)

	if headers, ok := header.(map[string]string); ok {
		request.SetHeaders(headers)
	}
	return &defaultReadyRestyReq{request: request}
}

type defaultReadyRestyReq struct {
	request *resty.Request
}

func (req *defaultReadyRestyReq) withQuery(queryParams []QueryParam) *resty.Request {
	for _, query := range queryParams {
		req.request.SetQueryParam(query.Key, fmt.Sprintf("%v", query.Value))
	}
	return req.request
}

func (req *defaultReadyRestyReq) Get(url string, queryParams ...QueryParam) (*resty.Response, error) {
	return req.withQuery(queryParams).Get(url)
}

func (req *defaultReadyRestyReq) Post(url string, queryParams ...QueryParam) (*resty.Response, error) {
	return req.withQuery(queryParams).Post(url)
}
