// handlers/actions.go - Scored action intake
package handlers

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"

	"lifetracker/middleware"
	"lifetracker/models"
	"lifetracker/services"
	"lifetracker/utils"
)

// SubmitAction applies one scored action.
// POST /api/gamification/actions
func SubmitAction(c *fiber.Ctx) error {
	var ev models.ActionEvent
	if err := c.BodyParser(&ev); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := services.ValidateActionEvent(ev); err != nil {
		return utils.ServiceError(c, err)
	}
	if !middleware.CanActFor(c, ev.UserID) {
		return utils.JSONError(c, fiber.StatusForbidden, "Cannot submit actions for another user")
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}

	delta, err := progressEngine.ApplyAction(c.UserContext(), ev)
	if err != nil {
		return utils.ServiceError(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"delta": delta})
}

// ActionRateKey limits per target user, so a service token pushing the feed
// for many users is not throttled as one caller.
func ActionRateKey(c *fiber.Ctx) string {
	var body struct {
		UserID string `json:"userId"`
	}
	if err := json.Unmarshal(c.Body(), &body); err == nil && body.UserID != "" {
		return "user:" + body.UserID
	}
	return middleware.UserOrIPKey(c)
}
