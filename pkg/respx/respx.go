// Package respx renders the JSON envelope shared by every endpoint:
// {"status": bool, "message": string, "data": any}.
package respx

import (
	"errors"

	"github.com/Abraxas-365/quizcraft/pkg/errx"
	"github.com/Abraxas-365/quizcraft/pkg/logx"
	"github.com/gofiber/fiber/v2"
)

// Envelope is the success body.
type Envelope struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Failure is the error body.
type Failure struct {
	Status    bool           `json:"status"`
	Message   string         `json:"message"`
	Code      string         `json:"code"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

// OK writes a 200 envelope.
func OK(c *fiber.Ctx, message string, data any) error {
	return c.Status(fiber.StatusOK).JSON(Envelope{Status: true, Message: message, Data: data})
}

// Created writes a 201 envelope.
func Created(c *fiber.Ctx, message string, data any) error {
	return c.Status(fiber.StatusCreated).JSON(Envelope{Status: true, Message: message, Data: data})
}

// ErrorHandler is the fiber.Config ErrorHandler. Registered errors keep their
// status and message; anything else becomes an opaque 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	requestID := c.Get(fiber.HeaderXRequestID)

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(Failure{
			Message:   fe.Message,
			Code:      "HTTP_ERROR",
			RequestID: requestID,
		})
	}

	e := errx.From(err)

	entry := logx.WithFields(logx.Fields{
		"path":       c.Path(),
		"method":     c.Method(),
		"request_id": requestID,
		"code":       e.Code,
	})
	if e.HTTPStatus >= fiber.StatusInternalServerError {
		entry.WithError(err).Error("request failed")
	} else {
		entry.Debug(e.Message)
	}

	body := Failure{
		Message:   e.Message,
		Code:      e.Code,
		RequestID: requestID,
	}
	if len(e.Details) > 0 {
		body.Details = e.Details
	}
	if e.Type == errx.TypeInternal {
		body.Message = "An unexpected error occurred"
		body.Details = nil
	}

	return c.Status(e.HTTPStatus).JSON(body)
}

// NotFound is mounted last to answer unknown routes.
func NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(Failure{
		Message:   "The requested endpoint does not exist",
		Code:      "NOT_FOUND",
		RequestID: c.Get(fiber.HeaderXRequestID),
	})
}
