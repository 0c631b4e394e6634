// handlers/game.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"lifetracker/utils"
)

// GetActiveGame returns the board and scoring table currently in effect.
// GET /api/gamification/game
func GetActiveGame(c *fiber.Ctx) error {
	g, err := gameService.Active(c.UserContext())
	if err != nil {
		return utils.ServiceError(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"game": g})
}
