// services/game_config.go - Compiled, read-only game configuration
package services

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"lifetracker/models"
)

// GameConfig is the immutable view of one game version used during evaluation.
// Build it with CompileGame; it is safe for concurrent use.
type GameConfig struct {
	ID               uint
	Version          int
	Rows             int
	Cols             int
	WeeklyGoalPoints int
	IsActive         bool

	milestones []models.Milestone
	labels     map[int]string
	rules      map[string]int
	curve      LevelCurve
}

// CompileGame validates a persisted game and indexes it for lookups.
func CompileGame(g models.Game) (*GameConfig, error) {
	if g.Rows <= 0 || g.Cols <= 0 {
		return nil, fmt.Errorf("%w: board must be at least 1x1, got %dx%d", ErrInvalidGame, g.Rows, g.Cols)
	}
	if g.Rows > math.MaxInt/g.Cols {
		return nil, fmt.Errorf("%w: board %dx%d is too large", ErrInvalidGame, g.Rows, g.Cols)
	}
	if g.WeeklyGoalPoints < 0 {
		return nil, fmt.Errorf("%w: weekly goal must be >= 0", ErrInvalidGame)
	}
	size := g.Rows * g.Cols

	cfg := &GameConfig{
		ID:               g.ID,
		Version:          g.Version,
		Rows:             g.Rows,
		Cols:             g.Cols,
		WeeklyGoalPoints: g.WeeklyGoalPoints,
		IsActive:         g.IsActive,
		labels:           make(map[int]string, len(g.Milestones)),
		rules:            make(map[string]int, len(g.ScoringRules)),
		curve:            slices.Clone(LevelCurve(g.LevelThresholds)),
	}

	for _, m := range g.Milestones {
		if m.Tile < 0 || m.Tile >= size {
			return nil, fmt.Errorf("%w: milestone tile %d outside board of size %d", ErrInvalidGame, m.Tile, size)
		}
		if _, dup := cfg.labels[m.Tile]; dup {
			return nil, fmt.Errorf("%w: duplicate milestone tile %d", ErrInvalidGame, m.Tile)
		}
		cfg.labels[m.Tile] = m.Label
		cfg.milestones = append(cfg.milestones, m)
	}
	slices.SortFunc(cfg.milestones, func(a, b models.Milestone) int { return a.Tile - b.Tile })

	for _, r := range g.ScoringRules {
		action := strings.TrimSpace(r.Action)
		if action == "" {
			return nil, fmt.Errorf("%w: scoring rule with empty action", ErrInvalidGame)
		}
		if _, dup := cfg.rules[action]; dup {
			return nil, fmt.Errorf("%w: duplicate scoring rule for %q", ErrInvalidGame, action)
		}
		cfg.rules[action] = r.Points
	}

	if !cfg.curve.validate() {
		return nil, fmt.Errorf("%w: level thresholds must be positive and non-decreasing", ErrInvalidGame)
	}
	return cfg, nil
}

func (c *GameConfig) BoardSize() int {
	return c.Rows * c.Cols
}

// Points returns the points mapped to action and whether a rule exists.
func (c *GameConfig) Points(action string) (int, bool) {
	p, ok := c.rules[action]
	return p, ok
}

func (c *GameConfig) MilestoneAt(tile int) (models.Milestone, bool) {
	label, ok := c.labels[tile]
	return models.Milestone{Tile: tile, Label: label}, ok
}

// Milestones returns the milestones ordered by tile.
func (c *GameConfig) Milestones() []models.Milestone {
	return slices.Clone(c.milestones)
}

func (c *GameConfig) Curve() LevelCurve {
	return c.curve
}
