package handlers

import (
	"errors"
	"strconv"
	"strings"

	"cinefund/internal/pkg/response"
	"cinefund/internal/sandbox"

	"github.com/gofiber/fiber/v2"
)

// storeError maps a sandbox store error to a response; notFound is the
// message for ErrNotFound
func storeError(c *fiber.Ctx, err error, notFound string) error {
	switch {
	case errors.Is(err, sandbox.ErrNotFound):
		return response.NotFound(c, notFound)
	case errors.Is(err, sandbox.ErrConflict):
		return response.Conflict(c, detail(err, sandbox.ErrConflict))
	case errors.Is(err, sandbox.ErrInvalidCredentials):
		return response.Unauthorized(c, "Invalid credentials")
	case errors.Is(err, sandbox.ErrInsufficientFunds):
		return response.BadRequest(c, "Insufficient wallet balance")
	case errors.Is(err, sandbox.ErrValidation):
		return response.BadRequest(c, detail(err, sandbox.ErrValidation))
	case errors.Is(err, sandbox.ErrInvalidState):
		return response.BadRequest(c, detail(err, sandbox.ErrInvalidState))
	default:
		return response.InternalServerError(c, "Internal server error")
	}
}

// detail strips the sentinel prefix and capitalizes the rest
func detail(err, sentinel error) string {
	msg := strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

func paramID(c *fiber.Ctx, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	return id, err == nil && id > 0
}

func queryFloat(c *fiber.Ctx, name string) (float64, bool) {
	v, err := strconv.ParseFloat(c.Query(name), 64)
	return v, err == nil
}

// currentUserID is set by middleware.AuthMiddleware
func currentUserID(c *fiber.Ctx) int64 {
	id, _ := c.Locals("userID").(int64)
	return id
}
