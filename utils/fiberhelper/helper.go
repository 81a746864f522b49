package fiberhelpers

import (
	"context"
	"os"
	"os/signal"
	"reflect"
	"strings"
	"syscall"
	"time"

	"lotbot/utils/log"

	"github.com/gofiber/fiber/v2"
)

const shutdownTimeout = 5 * time.Second

// QueryParse : 쿼리스트링을 T 로 파싱. 실패하면 400 으로 panic (NewRecover 가 받아서 처리)
func QueryParse[T any](context *fiber.Ctx) T {
	var destination T
	if err := context.QueryParser(&destination); err != nil {
		typeName := reflect.TypeOf(destination).Name()
		log.Warnf("[HTTP] query parse: %v", err)
		panic(NewRequestParserError(typeName))
	}
	return destination
}

// ListenAddress : "8080" -> "0.0.0.0:8080", ":8080" / "host:8080" 은 그대로
func ListenAddress(port string) string {
	if strings.HasPrefix(port, ":") {
		return "0.0.0.0" + port
	}
	if strings.Contains(port, ":") {
		return port
	}
	return "0.0.0.0:" + port
}

// ListenWithGracefulShutdown : ctx 취소 또는 SIGINT/SIGTERM 이 오면 종료. Listen 실패 시 에러 반환
func ListenWithGracefulShutdown(ctx context.Context, app *fiber.App, port string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	address := ListenAddress(port)
	listenErr := make(chan error, 1)
	go func() {
		log.Infof("Starting server on %s", address)
		listenErr <- app.Listen(address)
	}()

	select {
	case err := <-listenErr:
		if err != nil {
			log.Errorf("Server failed to start on %s: %v", address, err)
		}
		return err
	case <-ctx.Done():
	}

	log.Info("Gracefully shutting down...")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return err
	}
	return <-listenErr
}
