package middleware

import (
	"lotbot/utils/log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/samber/lo"
)

const accessLogFormat = "[HTTP] ${status} ${method} ${path} ${latency} q=${queryParams}\n"

// LogMiddleware : 요청 한 줄 로그를 utils/log 출력으로 보냄. skipPath 는 정확히 일치할 때만 생략
func LogMiddleware(skipPath ...string) fiber.Handler {
	skip := lo.SliceToMap(skipPath, func(p string) (string, struct{}) { return p, struct{}{} })
	return logger.New(logger.Config{
		Format:     accessLogFormat,
		TimeFormat: "2006-01-02 15:04:05",
		Output:     log.Writer(),
		Next: func(c *fiber.Ctx) bool {
			_, ok := skip[c.Path()]
			return ok
		},
	})
}
