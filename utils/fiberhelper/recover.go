package fiberhelpers

import (
	"fmt"
	"runtime/debug"

	"lotbot/utils/log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func NewRecover() fiber.Handler {
	return recover.New(
		recover.Config{
			StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
				// 의도한 API 에러는 스택 없이 넘긴다
				if _, ok := e.(*APIError); ok {
					return
				}
				log.WithFields(map[string]interface{}{
					"path":        c.Path(),
					"stack_trace": string(debug.Stack()),
				}).Error(fmt.Sprintf("%v", e))
			},
			EnableStackTrace: true,
		},
	)
}
