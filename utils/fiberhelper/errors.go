package fiberhelpers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// APIError : 핸들러에서 반환하거나 panic 으로 던지는 HTTP 에러
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Response() ErrorResponse {
	return ErrorResponse{Code: e.Code, Message: e.Message}
}

func NewNotFound(format string, args ...interface{}) *APIError {
	return &APIError{Status: fiber.StatusNotFound, Code: "not_found", Message: fmt.Sprintf(format, args...)}
}

func NewBadRequest(format string, args ...interface{}) *APIError {
	return &APIError{Status: fiber.StatusBadRequest, Code: "bad_request", Message: fmt.Sprintf(format, args...)}
}

func NewRequestParserError(typeName string) *APIError {
	return NewBadRequest("can not parse request into %s", typeName)
}

func NewInternalServerError() ErrorResponse {
	return ErrorResponse{Code: "internal_error", Message: "Internal Server Error"}
}
