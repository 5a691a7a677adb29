package web

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/teslashibe/go-planar-arm/pkg/arm"
	"github.com/teslashibe/go-planar-arm/pkg/kinematics"
)

// Error texts returned to HTTP and WebSocket clients.
const (
	msgNotInitialized     = "Arm has not been initialized"
	msgAlreadyInitialized = "Arm already initialized"
	msgViolated           = "Violated joint constraints"
	msgNoTarget           = "No target provided"
)

// errorBody maps err to a status code and the JSON error text.
func errorBody(err error) (int, string) {
	var fe *fiber.Error
	var ve validator.ValidationErrors
	switch {
	case errors.Is(err, arm.ErrNotInitialized):
		return fiber.StatusBadRequest, msgNotInitialized
	case errors.Is(err, arm.ErrAlreadyInitialized):
		return fiber.StatusBadRequest, msgAlreadyInitialized
	case errors.Is(err, kinematics.ErrConstraintViolation):
		return fiber.StatusBadRequest, msgViolated
	case errors.Is(err, kinematics.ErrJointIndex),
		errors.Is(err, kinematics.ErrUnknownAlgorithm),
		errors.Is(err, kinematics.ErrInvalidTarget),
		errors.Is(err, kinematics.ErrConstruction):
		return fiber.StatusBadRequest, err.Error()
	case errors.As(err, &ve):
		return fiber.StatusBadRequest, ve.Error()
	case errors.As(err, &fe):
		return fe.Code, fe.Message
	default:
		return fiber.StatusInternalServerError, err.Error()
	}
}

// errorHandler renders every handler error as {"error": ...}.
func errorHandler(c *fiber.Ctx, err error) error {
	code, msg := errorBody(err)
	return c.Status(code).JSON(fiber.Map{"error": msg})
}
