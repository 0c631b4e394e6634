// handlers/progress.go - Progress and transaction history reads
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"lifetracker/middleware"
	"lifetracker/services"
	"lifetracker/utils"
)

// GetProgress returns the user's progress with pointsToNextLevel.
// GET /api/gamification/progress/:userId
func GetProgress(c *fiber.Ctx) error {
	userID := c.Params("userId")
	if !middleware.CanActFor(c, userID) {
		return utils.JSONError(c, fiber.StatusForbidden, "Access denied")
	}
	view, err := progressEngine.ReadProgress(c.UserContext(), userID)
	if err != nil {
		return utils.ServiceError(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"progress": view})
}

// GetTransactions pages through the point transaction log, newest first.
// GET /api/gamification/progress/:userId/transactions?limit=50&offset=0
func GetTransactions(c *fiber.Ctx) error {
	userID := c.Params("userId")
	if err := services.ValidateUserID(userID); err != nil {
		return utils.ServiceError(c, err)
	}
	if !middleware.CanActFor(c, userID) {
		return utils.JSONError(c, fiber.StatusForbidden, "Access denied")
	}
	limit := utils.ClampInt(utils.ParseIntDefault(c.Query("limit"), 50), 1, 200)
	offset := max(utils.ParseIntDefault(c.Query("offset"), 0), 0)

	txs, err := historyStore.Transactions(c.UserContext(), userID, limit, offset)
	if err != nil {
		return utils.ServiceError(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{
		"transactions": txs,
		"limit":        limit,
		"offset":       offset,
	})
}
