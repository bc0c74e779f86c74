package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// Error codes understood by the error responder.
const (
	CodeBadRequest          = "BAD_REQUEST"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeNotFound            = "NOT_FOUND"
	CodeConflict            = "CONFLICT"
	CodeUnprocessableEntity = "UNPROCESSABLE_ENTITY"
	CodeInternal            = "INTERNAL_ERROR"
)

var codeStatus = map[string]int{
	CodeBadRequest:          fiber.StatusBadRequest,
	CodeUnauthorized:        fiber.StatusUnauthorized,
	CodeForbidden:           fiber.StatusForbidden,
	CodeNotFound:            fiber.StatusNotFound,
	CodeConflict:            fiber.StatusConflict,
	CodeUnprocessableEntity: fiber.StatusUnprocessableEntity,
	CodeInternal:            fiber.StatusInternalServerError,
}

var statusCode = map[int]string{
	fiber.StatusBadRequest:          CodeBadRequest,
	fiber.StatusUnauthorized:        CodeUnauthorized,
	fiber.StatusForbidden:           CodeForbidden,
	fiber.StatusNotFound:            CodeNotFound,
	fiber.StatusConflict:            CodeConflict,
	fiber.StatusUnprocessableEntity: CodeUnprocessableEntity,
	fiber.StatusInternalServerError: CodeInternal,
}

var defaultMessages = map[int]string{
	fiber.StatusBadRequest:          "400: Bad Request!",
	fiber.StatusUnauthorized:        "401: Unauthorized!",
	fiber.StatusForbidden:           "403: Forbidden!",
	fiber.StatusNotFound:            "404: Not Found!",
	fiber.StatusConflict:            "409: Conflict!",
	fiber.StatusUnprocessableEntity: "422: Unprocessable Entity!",
	fiber.StatusInternalServerError: "500: Internal Server Error!",
}

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = DefaultMessage(StatusFor(e.Code))
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Status returns the HTTP status the error maps to.
func (e *AppError) Status() int {
	return StatusFor(e.Code)
}

// StatusFor maps an error code to its HTTP status. Unknown codes are 500.
func StatusFor(code string) int {
	if status, ok := codeStatus[code]; ok {
		return status
	}
	return fiber.StatusInternalServerError
}

// CodeFor maps an HTTP status to an error code. Unknown statuses map to the
// closest class: 4xx to BAD_REQUEST, everything else to INTERNAL_ERROR.
func CodeFor(status int) string {
	if code, ok := statusCode[status]; ok {
		return code
	}
	if status >= 400 && status < 500 {
		return CodeBadRequest
	}
	return CodeInternal
}

// DefaultMessage returns the generic message used when an error carries none.
func DefaultMessage(status int) string {
	if msg, ok := defaultMessages[status]; ok {
		return msg
	}
	return fmt.Sprintf("%d: %s", status, utils.StatusMessage(status))
}

// Predefined error constructors
func NewBadRequestError(message string) *AppError {
	return &AppError{Code: CodeBadRequest, Message: message}
}

func NewValidationError(message string) *AppError {
	return &AppError{Code: CodeUnprocessableEntity, Message: message}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{Code: CodeUnauthorized, Message: message}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{Code: CodeForbidden, Message: message}
}

func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewConflictError(message string) *AppError {
	return &AppError{Code: CodeConflict, Message: message}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// HasCode reports whether err is an AppError carrying code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsNotFound reports whether err is a NOT_FOUND AppError.
func IsNotFound(err error) bool {
	return HasCode(err, CodeNotFound)
}

// Resolve turns any error into the status and body the API responds with.
// Internal error details are never exposed to clients.
func Resolve(err error) (int, ErrorResponse) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		status := appErr.Status()
		msg := appErr.Message
		if msg == "" || status == fiber.StatusInternalServerError {
			msg = DefaultMessage(status)
		}
		return status, ErrorResponse{Message: msg, Code: appErr.Code}
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		msg := fiberErr.Message
		if msg == "" || msg == utils.StatusMessage(fiberErr.Code) {
			msg = DefaultMessage(fiberErr.Code)
		}
		return fiberErr.Code, ErrorResponse{Message: msg, Code: CodeFor(fiberErr.Code)}
	}

	return fiber.StatusInternalServerError, ErrorResponse{
		Message: DefaultMessage(fiber.StatusInternalServerError),
		Code:    CodeInternal,
	}
}

// RespondWithError writes the standardized error response for err.
func RespondWithError(c *fiber.Ctx, err error) error {
	status, body := Resolve(err)
	return c.Status(status).JSON(body)
}
