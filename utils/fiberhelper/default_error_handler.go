package fiberhelpers

import (
	"errors"

	"lotbot/utils/log"

	"github.com/gofiber/fiber/v2"
)

func DefaultErrorHandler(ctx *fiber.Ctx, err error) error {
	var apiError *APIError
	if errors.As(err, &apiError) {
		return ctx.Status(apiError.Status).JSON(apiError.Response())
	}

	var fiberError *fiber.Error
	if errors.As(err, &fiberError) {
		return ctx.Status(fiberError.Code).JSON(ErrorResponse{
			Code:    "http_error",
			Message: fiberError.Message,
		})
	}

	log.Errorf("[HTTP] %s %s: %v", ctx.Method(), ctx.Path(), err)
	return ctx.Status(fiber.StatusInternalServerError).JSON(NewInternalServerError())
}
