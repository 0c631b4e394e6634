// handlers/gamification.go - Gamification HTTP handlers wiring
package handlers

import (
	"lifetracker/logger"
	"lifetracker/realtime"
	"lifetracker/services"
)

var (
	progressEngine     *services.ProgressEngine
	leaderboardService *services.LeaderboardService
	achievementService *services.AchievementService
	gameService        *services.GameService
	historyStore       services.HistoryStore
	counterStore       services.CounterStore
	progressHub        *realtime.Hub
	log                *logger.Logger
)

// Deps are the services the gamification handlers call into.
type Deps struct {
	Engine       *services.ProgressEngine
	Leaderboard  *services.LeaderboardService
	Achievements *services.AchievementService
	Games        *services.GameService
	History      services.HistoryStore
	Counters     services.CounterStore
	Hub          *realtime.Hub
	Log          *logger.Logger
}

// InitGamificationHandlers must run before routes are served.
func InitGamificationHandlers(d Deps) {
	if d.Engine == nil || d.Leaderboard == nil || d.Achievements == nil || d.Games == nil {
		panic("gamification services not initialized before InitGamificationHandlers")
	}
	progressEngine = d.Engine
	leaderboardService = d.Leaderboard
	achievementService = d.Achievements
	gameService = d.Games
	historyStore = d.History
	counterStore = d.Counters
	progressHub = d.Hub
	log = d.Log
	if log == nil {
		log = logger.Nop()
	}
}
