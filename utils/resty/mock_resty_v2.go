package resty

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-resty/resty/v2"
)

type MockFuncResponse struct {
	RawResponse *http.Response
	Body        any
}

// MockFunc : Method + Path(전체 URL, 쿼리 제외) 가 정확히 같을 때 호출됨
type MockFunc struct {
	Method     string
	Path       string
	ResultBody func(header any, requestBody any, param ...QueryParam) (MockFuncResponse, error)
}

type mockRestyClient struct {
	mocks map[string]MockFunc
}

type mockReadyRestyReq struct {
	mocks  map[string]MockFunc
	body   any
	header any
}

func mockKey(method, url string) string {
	return method + " " + url
}

func (client *mockRestyClient) MakeRequest(_ context.Context, body any, header any, _ ...string) ReadyRestyReq {
	return &mockReadyRestyReq{mocks: client.mocks, header: header, body: body}
}

func (m *mockReadyRestyReq) Get(url string, queryParams ...QueryParam) (*resty.Response, error) {
	return m.do(http.MethodGet, url, queryParams)
}

func (m *mockReadyRestyReq) Post(url string, queryParams ...QueryParam) (*resty.Response, error) {
	return m.do(http.MethodPost, url, queryParams)
}

func (m *mockReadyRestyReq) do(method, url string, queryParams []QueryParam) (*resty.Response, error) {
	mockFunc, ok := m.mocks[mockKey(method, url)]
	if !ok {
		return nil, fmt.Errorf("mock not found for %s %s", method, url)
	}
	resultBody, givenError := mockFunc.ResultBody(m.header, m.body, queryParams...)
	response, err := CreateMockResponse(method, resultBody)
	if err != nil {
		return nil, err
	}
	return response, givenError
}

// CreateMockResponse : Body 를 JSON 으로 직렬화한 resty 응답. RawResponse 가 없으면 200
func CreateMockResponse(method string, givenBody MockFuncResponse) (*resty.Response, error) {
	data, err := json.Marshal(givenBody.Body)
	if err != nil {
		return nil, err
	}

	statusCode := http.StatusOK
	var header http.Header
	if givenBody.RawResponse != nil {
		statusCode = givenBody.RawResponse.StatusCode
		header = givenBody.RawResponse.Header
	}

	response := &resty.Response{
		Request: &resty.Request{Method: method},
		RawResponse: &http.Response{
			Status:     http.StatusText(statusCode),
			StatusCode: statusCode,
			Body:       io.NopCloser(bytes.NewReader(data)),
			Header:     header,
		},
	}
	response.SetBody(data)
	return response, nil
}
