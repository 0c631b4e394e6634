// handlers/counters.go - Counters reported by the habit tracker
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"lifetracker/middleware"
	"lifetracker/models"
	"lifetracker/services"
	"lifetracker/utils"
)

type CountersRequest struct {
	Streak       int `json:"streak"`
	HabitCount   int `json:"habitCount"`
	RoutineCount int `json:"routineCount"`
}

// PutCounters replaces the user's external counters. Only service and admin
// tokens may write them.
// PUT /api/gamification/counters/:userId
func PutCounters(c *fiber.Ctx) error {
	if !middleware.IsService(c) && !middleware.IsAdmin(c) {
		return utils.JSONError(c, fiber.StatusForbidden, "Service token required")
	}
	userID := c.Params("userId")
	if err := services.ValidateUserID(userID); err != nil {
		return utils.ServiceError(c, err)
	}
	var req CountersRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if req.Streak < 0 || req.HabitCount < 0 || req.RoutineCount < 0 {
		return utils.JSONError(c, fiber.StatusBadRequest, "Counters must be >= 0")
	}

	counters := models.UserCounters{
		UserID:       userID,
		Streak:       req.Streak,
		HabitCount:   req.HabitCount,
		RoutineCount: req.RoutineCount,
	}
	if err := counterStore.SetCounters(c.UserContext(), counters); err != nil {
		return utils.ServiceError(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"counters": services.CountersFrom(counters)})
}
