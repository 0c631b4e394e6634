package services

import (
	"lifetracker/logger"
	"lifetracker/metrics"
)

// ScoringEngine maps actions to points using the active game's scoring table.
type ScoringEngine struct {
	log *logger.Logger
}

func NewScoringEngine(log *logger.Logger) *ScoringEngine {
	if log == nil {
		log = logger.Nop()
	}
	return &ScoringEngine{log: log.With("component", "scoring")}
}

// Score returns the points for action, or 0 when the game has no rule for it.
// Unmapped actions are valid zero-point actions; they are logged and counted.
func (s *ScoringEngine) Score(action string, cfg *GameConfig) int {
	points, ok := cfg.Points(action)
	if !ok {
		s.log.Info("unmapped action scored as zero", "action", action, "game_version", cfg.Version)
		metrics.RecordUnmappedAction()
		return 0
	}
	return points
}
