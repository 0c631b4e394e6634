// handlers/admin/admin.go - Administrative handlers wiring
package admin

import (
	"lifetracker/logger"
	"lifetracker/services"
)

var (
	games        *services.GameService
	achievements *services.AchievementService
	engine       *services.ProgressEngine
	weeklyJob    *services.WeeklyResetJob
	log          *logger.Logger
)

type Deps struct {
	Games        *services.GameService
	Achievements *services.AchievementService
	Engine       *services.ProgressEngine
	WeeklyJob    *services.WeeklyResetJob
	Log          *logger.Logger
}

func InitAdminHandlers(d Deps) {
	if d.Games == nil || d.Achievements == nil || d.Engine == nil || d.WeeklyJob == nil {
		panic("admin services not initialized before InitAdminHandlers")
	}
	games = d.Games
	achievements = d.Achievements
	engine = d.Engine
	weeklyJob = d.WeeklyJob
	log = d.Log
	if log == nil {
		log = logger.Nop()
	}
}
