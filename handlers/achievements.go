// handlers/achievements.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"lifetracker/middleware"
	"lifetracker/utils"
)

// GetAchievements returns the published catalog.
// GET /api/gamification/achievements
func GetAchievements(c *fiber.Ctx) error {
	defs, err := achievementService.Catalog(c.UserContext())
	if err != nil {
		return utils.ServiceError(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"achievements": defs})
}

// GetUserAchievements returns every definition with the user's unlock state.
// GET /api/gamification/achievements/user/:userId
func GetUserAchievements(c *fiber.Ctx) error {
	userID := c.Params("userId")
	if !middleware.CanActFor(c, userID) {
		return utils.JSONError(c, fiber.StatusForbidden, "Access denied")
	}
	view, err := achievementService.UserAchievements(c.UserContext(), userID)
	if err != nil {
		return utils.ServiceError(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{
		"userId":        view.UserID,
		"achievements":  view.Achievements,
		"unlockedCount": view.UnlockedCount,
		"totalCount":    view.TotalCount,
	})
}
