package admin

import (
	"github.com/gofiber/fiber/v2"

	"lifetracker/utils"
)

// TriggerWeeklyReset runs the weekly reset job now; a week that is already
// claimed only retries its pending users. With force=true the week claim is
// skipped and weekly points are zeroed unconditionally.
// POST /api/admin/weekly-reset?force=true
func TriggerWeeklyReset(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if c.QueryBool("force") {
		n, err := engine.ResetWeekly(ctx)
		if err != nil {
			log.Error("forced weekly reset failed", "users_reset", n, "error", err)
			return utils.ServiceError(c, err)
		}
		return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"ran": true, "usersReset": n})
	}

	ran, n, err := weeklyJob.Run(ctx)
	if err != nil {
		log.Error("weekly reset failed", "users_reset", n, "error", err)
		return utils.ServiceError(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"ran": ran, "usersReset": n})
}
