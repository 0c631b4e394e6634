// handlers/routes.go - Route table
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"lifetracker/handlers/admin"
	"lifetracker/middleware"
)

// RegisterRoutes mounts the gamification API, the admin API and the live feed.
// Both Init functions must have run first.
func RegisterRoutes(app *fiber.App, jwtSecret string, actionLimiter *middleware.RateLimiter) {
	api := app.Group("/api")

	g := api.Group("/gamification")
	g.Use(middleware.AuthMiddleware(jwtSecret))
	if actionLimiter != nil {
		g.Post("/actions", middleware.FiberRateLimitMiddleware(actionLimiter, ActionRateKey), SubmitAction)
	} else {
		g.Post("/actions", SubmitAction)
	}
	g.Get("/progress/:userId", GetProgress)
	g.Get("/progress/:userId/transactions", GetTransactions)
	g.Get("/leaderboard", GetLeaderboard)
	g.Get("/leaderboard/user/:userId", GetUserRank)
	g.Get("/achievements", GetAchievements)
	g.Get("/achievements/user/:userId", GetUserAchievements)
	g.Get("/game", GetActiveGame)
	g.Put("/counters/:userId", PutCounters)

	adminGroup := api.Group("/admin")
	adminGroup.Use(middleware.AdminAuthMiddleware(jwtSecret))
	adminGroup.Post("/games", admin.CreateGame)
	adminGroup.Get("/games", admin.ListGames)
	adminGroup.Post("/games/:id/activate", admin.ActivateGame)
	adminGroup.Post("/achievements", admin.CreateAchievement)
	adminGroup.Post("/achievements/initialize", admin.InitializeAchievements)
	adminGroup.Post("/weekly-reset", admin.TriggerWeeklyReset)

	app.Get("/ws/progress", UpgradeProgressSocket, middleware.WebSocketAuthMiddleware(jwtSecret), ProgressSocket)
}
