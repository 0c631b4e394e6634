// handlers/leaderboard.go
package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"lifetracker/models"
	"lifetracker/services"
	"lifetracker/utils"
)

// GetLeaderboard returns the ranked leaderboard.
// GET /api/gamification/leaderboard?scope=TOTAL|WEEKLY&limit=20
func GetLeaderboard(c *fiber.Ctx) error {
	scope, ok := models.ParseScope(c.Query("scope"))
	if !ok {
		return utils.JSONError(c, fiber.StatusBadRequest, "scope must be TOTAL or WEEKLY")
	}
	limit := services.DefaultLeaderboardLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return utils.JSONError(c, fiber.StatusBadRequest, "limit must be a positive integer")
		}
		limit = n
	}

	entries, err := leaderboardService.Leaderboard(c.UserContext(), scope, limit)
	if err != nil {
		return utils.ServiceError(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{
		"scope":   scope,
		"entries": entries,
	})
}

// GetUserRank returns one user's position in the full ranking.
// GET /api/gamification/leaderboard/user/:userId?scope=TOTAL
func GetUserRank(c *fiber.Ctx) error {
	scope, ok := models.ParseScope(c.Query("scope"))
	if !ok {
		return utils.JSONError(c, fiber.StatusBadRequest, "scope must be TOTAL or WEEKLY")
	}
	entry, total, err := leaderboardService.UserRank(c.UserContext(), scope, c.Params("userId"))
	if err != nil {
		return utils.ServiceError(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{
		"scope": scope,
		"entry": entry,
		"total": total,
	})
}
