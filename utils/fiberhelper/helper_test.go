package fiberhelpers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListenAddress(t *testing.T) {
	assert.Equal(t, "0.0.0.0:8080", ListenAddress("8080"))
	assert.Equal(t, "0.0.0.0:8080", ListenAddress(":8080"))
	assert.Equal(t, "127.0.0.1:9000", ListenAddress("127.0.0.1:9000"))
}

type pageQuery struct {
	Limit int `query:"limit"`
}

func newApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: DefaultErrorHandler, DisableStartupMessage: true})
	app.Use(NewRecover())
	app.Get("/page", func(c *fiber.Ctx) error {
		return c.JSON(QueryParse[pageQuery](c))
	})
	app.Get("/missing", func(c *fiber.Ctx) error {
		return NewNotFound("run %s", "x")
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		panic("unexpected")
	})
	return app
}

func call(t *testing.T, app *fiber.App, target string) (int, ErrorResponse, string) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil), -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var errResp ErrorResponse
	_ = json.Unmarshal(body, &errResp)
	return resp.StatusCode, errResp, string(body)
}

func TestErrorHandling(t *testing.T) {
	app := newApp()

	status, _, body := call(t, app, "/page?limit=3")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"Limit":3}`, body)

	status, errResp, _ := call(t, app, "/page?limit=three")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "bad_request", errResp.Code)

	status, errResp, _ = call(t, app, "/missing")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "run x", errResp.Message)

	status, errResp, _ = call(t, app, "/boom")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal_error", errResp.Code)

	status, errResp, _ = call(t, app, "/nowhere")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "http_error", errResp.Code)
}

func TestListenWithGracefulShutdown_ContextCancel(t *testing.T) {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- ListenWithGracefulShutdown(ctx, app, "127.0.0.1:0") }()
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
