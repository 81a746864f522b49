package resty

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockRestyClient(t *testing.T) {
	boom := errors.New("boom")
	client := NewMockRestyClient([]MockFunc{
		{
			Method: http.MethodGet,
			Path:   "https://api.test/v1/ping",
			ResultBody: func(header any, requestBody any, params ...QueryParam) (MockFuncResponse, error) {
				require.Len(t, params, 1)
				assert.Equal(t, "count", params[0].Key)
				return MockFuncResponse{Body: map[string]int{"pong": 1}}, nil
			},
		},
		{
			Method: http.MethodPost,
			Path:   "https://api.test/v1/orders",
			ResultBody: func(header any, requestBody any, params ...QueryParam) (MockFuncResponse, error) {
				assert.Equal(t, map[string]string{"Authorization": "Bearer x"}, header)
				return MockFuncResponse{RawResponse: &http.Response{StatusCode: http.StatusBadRequest}, Body: "bad"}, boom
			},
		},
	})

	resp, err := client.MakeRequest(context.Background(), nil, nil).Get("https://api.test/v1/ping", QueryParam{Key: "count", Value: 2})
	require.NoError(t, err)
	assert.True(t, resp.IsSuccess())
	assert.JSONEq(t, `{"pong":1}`, resp.String())

	resp, err = client.MakeRequest(context.Background(), nil, map[string]string{"Authorization": "Bearer x"}).Post("https://api.test/v1/orders")
	assert.ErrorIs(t, err, boom)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode())

	_, err = client.MakeRequest(context.Background(), nil, nil).Post("https://api.test/v1/ping")
	assert.Error(t, err)
}

func TestRetryable(t *testing.T) {
	get := &resty.Request{Method: http.MethodGet}
	post := &resty.Request{Method: http.MethodPost}
	withStatus := func(req *resty.Request, code int) *resty.Response {
		return &resty.Response{Request: req, RawResponse: &http.Response{StatusCode: code}}
	}

	assert.True(t, retryable(withStatus(get, http.StatusBadGateway), nil))
	assert.True(t, retryable(withStatus(get, http.StatusTooManyRequests), nil))
	assert.True(t, retryable(withStatus(get, http.StatusOK), errors.New("reset")))
	assert.False(t, retryable(withStatus(get, http.StatusNotFound), nil))
	assert.False(t, retryable(withStatus(post, http.StatusBadGateway), nil))
	assert.False(t, retryable(nil, errors.New("x")))
}

func TestDefaultClient_RetriesGetOnly(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := hits.Add(1)
		if r.Method == http.MethodGet && n == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		assert.Equal(t, "KRW-BTC", r.URL.Query().Get("market"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewRestyClient(WithRetry(2), WithTimeout(2*time.Second))
	impl := client.(*defaultRestyClient)
	impl.restyClient.SetRetryWaitTime(time.Millisecond).SetRetryMaxWaitTime(5 * time.Millisecond)

	resp, err := client.MakeRequest(context.Background(), nil, nil).Get(server.URL, QueryParam{Key: "market", Value: "KRW-BTC"})
	require.NoError(t, err)
	assert.True(t, resp.IsSuccess())
	assert.Equal(t, int32(2), hits.Load())

	hits.Store(0)
	resp, err = client.MakeRequest(context.Background(), map[string]string{"a": "b"}, nil).Post(server.URL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode())
	assert.Equal(t, int32(1), hits.Load())
}
