// utils/http.go - Fiber response helpers and service error mapping
package utils

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"lifetracker/services"
)

// JSONError sends {"success": false, "error": message}.
func JSONError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

// JSONSuccess merges data into {"success": true}.
func JSONSuccess(c *fiber.Ctx, status int, data fiber.Map) error {
	response := fiber.Map{"success": true}
	for k, v := range data {
		response[k] = v
	}
	return c.Status(status).JSON(response)
}

// ErrorStatus maps a service error to its HTTP status and a client-safe message.
func ErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrInvalidUser),
		errors.Is(err, services.ErrInvalidAction),
		errors.Is(err, services.ErrInvalidGame):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrInactiveGame):
		return fiber.StatusConflict, "gamification disabled"
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound, "not found"
	case errors.Is(err, services.ErrAlreadyExists):
		return fiber.StatusConflict, "already exists"
	case errors.Is(err, services.ErrConcurrentModification):
		return fiber.StatusConflict, "concurrent modification, retry"
	case errors.Is(err, services.ErrStoreUnavailable):
		return fiber.StatusServiceUnavailable, "store unavailable"
	default:
		return fiber.StatusInternalServerError, "internal error"
	}
}

// ServiceError writes the mapped error response for err.
func ServiceError(c *fiber.Ctx, err error) error {
	status, msg := ErrorStatus(err)
	return JSONError(c, status, msg)
}

func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
