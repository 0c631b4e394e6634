// config/game.go - YAML game definition loader
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"lifetracker/models"
)

// GameFile is the on-disk shape of a game definition.
type GameFile struct {
	Version int `yaml:"version"`
	Board   struct {
		Rows       int                `yaml:"rows"`
		Cols       int                `yaml:"cols"`
		Milestones []models.Milestone `yaml:"milestones"`
	} `yaml:"board"`
	ScoringRules     []models.ScoringRule `yaml:"scoring_rules"`
	WeeklyGoalPoints int                  `yaml:"weekly_goal_points"`
	LevelThresholds  []int                `yaml:"level_thresholds"`
	Active           *bool                `yaml:"active"`
}

// LoadGameFile reads a game definition. Unknown keys are rejected so typos in
// rule names do not silently drop rules.
func LoadGameFile(path string) (*models.Game, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read game file: %w", err)
	}
	return ParseGame(raw)
}

func ParseGame(raw []byte) (*models.Game, error) {
	var f GameFile
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse game file: %w", err)
	}
	if f.Version <= 0 {
		return nil, fmt.Errorf("game file: version must be positive")
	}

	active := true
	if f.Active != nil {
		active = *f.Active
	}
	return &models.Game{
		Version:          f.Version,
		Rows:             f.Board.Rows,
		Cols:             f.Board.Cols,
		Milestones:       f.Board.Milestones,
		ScoringRules:     f.ScoringRules,
		LevelThresholds:  f.LevelThresholds,
		WeeklyGoalPoints: f.WeeklyGoalPoints,
		IsActive:         active,
	}, nil
}
