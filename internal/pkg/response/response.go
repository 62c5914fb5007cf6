package response

import (
	"errors"
	"log"

	"devicepay/internal/core/domain"

	"github.com/gofiber/fiber/v2"
)

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody carries a machine-readable error kind alongside the message.
// Params echoes the offending values so clients can render precise feedback.
type ErrorBody struct {
	Kind    string                 `json:"kind,omitempty"`
	Message string                 `json:"message"`
	Params  map[string]interface{} `json:"params,omitempty"`
}

// Success sends a success response
func Success(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Created sends a 201 created response
func Created(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error sends an error response
func Error(c *fiber.Ctx, statusCode int, message string) error {
	return c.Status(statusCode).JSON(Response{
		Success: false,
		Error:   &ErrorBody{Message: message},
	})
}

// BadRequest sends a 400 bad request response
func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message)
}

// Unauthorized sends a 401 unauthorized response
func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, message)
}

// Forbidden sends a 403 forbidden response
func Forbidden(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusForbidden, message)
}

// NotFound sends a 404 not found response
func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, message)
}

// Conflict sends a 409 conflict response
func Conflict(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusConflict, message)
}

// UnprocessableEntity sends a 422 unprocessable entity response
func UnprocessableEntity(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnprocessableEntity, message)
}

// InternalServerError sends a 500 internal server error response
func InternalServerError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, message)
}

// DomainError maps a domain error to its HTTP status and serializes
// the structured kind and params for the client.
func DomainError(c *fiber.Ctx, err error) error {
	var domainErr *domain.Error
	if !errors.As(err, &domainErr) {
		log.Printf("❌ Unexpected error: %v", err)
		return InternalServerError(c, "An unexpected error occurred")
	}

	status := fiber.StatusInternalServerError
	switch domainErr.Kind {
	case domain.KindNotFound:
		status = fiber.StatusNotFound
	case domain.KindConstraintViolation:
		status = fiber.StatusUnprocessableEntity
	case domain.KindScopeViolation, domain.KindOwnershipViolation:
		status = fiber.StatusForbidden
	case domain.KindDuplicateRequest:
		status = fiber.StatusConflict
	case domain.KindTransactionFailure:
		log.Printf("❌ Transaction failure: %v", domainErr)
		status = fiber.StatusInternalServerError
	}

	return c.Status(status).JSON(Response{
		Success: false,
		Error: &ErrorBody{
			Kind:    string(domainErr.Kind),
			Message: domainErr.Message,
			Params:  domainErr.Params,
		},
	})
}
