package admin

import (
	"github.com/gofiber/fiber/v2"

	"lifetracker/models"
	"lifetracker/utils"
)

type CreateAchievementRequest struct {
	AchievementID string           `json:"achievementId"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Icon          string           `json:"icon"`
	Criterion     models.Criterion `json:"criterion"`
}

// CreateAchievement publishes a definition. There is no update endpoint.
// POST /api/admin/achievements
func CreateAchievement(c *fiber.Ctx) error {
	var req CreateAchievementRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	def := &models.Achievement{
		AchievementID: req.AchievementID,
		Name:          req.Name,
		Description:   req.Description,
		Icon:          req.Icon,
		Criterion:     req.Criterion,
	}
	if err := achievements.Publish(c.UserContext(), def); err != nil {
		return utils.ServiceError(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusCreated, fiber.Map{"achievement": def})
}

// InitializeAchievements seeds the default catalog.
// POST /api/admin/achievements/initialize
func InitializeAchievements(c *fiber.Ctx) error {
	created, err := achievements.InitializeDefaults(c.UserContext())
	if err != nil {
		return utils.ServiceError(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{
		"created": created,
		"count":   len(created),
	})
}
