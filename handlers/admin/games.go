// handlers/admin/games.go
package admin

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"lifetracker/models"
	"lifetracker/utils"
)

type CreateGameRequest struct {
	Version          int                  `json:"version"`
	Rows             int                  `json:"rows"`
	Cols             int                  `json:"cols"`
	Milestones       []models.Milestone   `json:"milestones"`
	ScoringRules     []models.ScoringRule `json:"scoringRules"`
	LevelThresholds  []int                `json:"levelThresholds"`
	WeeklyGoalPoints int                  `json:"weeklyGoalPoints"`
}

// CreateGame publishes a new, inactive game version.
// POST /api/admin/games
func CreateGame(c *fiber.Ctx) error {
	var req CreateGameRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	g := &models.Game{
		Version:          req.Version,
		Rows:             req.Rows,
		Cols:             req.Cols,
		Milestones:       req.Milestones,
		ScoringRules:     req.ScoringRules,
		LevelThresholds:  req.LevelThresholds,
		WeeklyGoalPoints: req.WeeklyGoalPoints,
	}
	if err := games.Publish(c.UserContext(), g); err != nil {
		return utils.ServiceError(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusCreated, fiber.Map{"game": g})
}

// ListGames returns every version, newest first.
// GET /api/admin/games
func ListGames(c *fiber.Ctx) error {
	list, err := games.List(c.UserContext())
	if err != nil {
		return utils.ServiceError(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"games": list})
}

// ActivateGame switches evaluation to the given version for subsequent actions.
// POST /api/admin/games/:id/activate
func ActivateGame(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "Invalid game id")
	}
	g, err := games.Activate(c.UserContext(), uint(id))
	if err != nil {
		return utils.ServiceError(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"game": g})
}
