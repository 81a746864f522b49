package response

import (
	"errors"

	fiberhelpers "lotbot/utils/fiberhelper"

	"github.com/gofiber/fiber/v2"
)

type Ext struct {
	*fiber.Ctx
}

// Ok : 성공(200) 응답
func (ext Ext) Ok(data interface{}) error {
	return ext.Status(fiber.StatusOK).JSON(data)
}

// HTML : 차트 페이지 등
func (ext Ext) HTML(body []byte) error {
	ext.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return ext.Status(fiber.StatusOK).Send(body)
}

// CSV : 첨부 파일로 내려줌
func (ext Ext) CSV(filename string, body []byte) error {
	ext.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	ext.Attachment(filename)
	return ext.Status(fiber.StatusOK).Send(body)
}

// Error : APIError 면 그 상태코드, 아니면 400
func (ext Ext) Error(err error) error {
	var apiError *fiberhelpers.APIError
	if !errors.As(err, &apiError) {
		apiError = fiberhelpers.NewBadRequest("%s", err.Error())
	}
	return ext.Status(apiError.Status).JSON(apiError.Response())
}
