// models/game.go - Game configuration (board + scoring table)
package models

import "time"

// Milestone is a board tile that fires a one-time reward when first reached.
type Milestone struct {
	Tile  int    `json:"tile" yaml:"tile"`
	Label string `json:"label" yaml:"label"`
}

// ScoringRule maps an action name to the points it awards. Points may be negative.
type ScoringRule struct {
	Action string `json:"action" yaml:"action"`
	Points int    `json:"points" yaml:"points"`
	Desc   string `json:"desc,omitempty" yaml:"desc"`
}

// Game is one published version of the board and scoring table.
// A version is never edited once created; a new version is created instead.
type Game struct {
	ID               uint          `json:"id" gorm:"primaryKey"`
	Version          int           `json:"version" gorm:"not null;uniqueIndex"`
	Rows             int           `json:"rows" gorm:"not null"`
	Cols             int           `json:"cols" gorm:"not null"`
	Milestones       []Milestone   `json:"milestones" gorm:"serializer:json"`
	ScoringRules     []ScoringRule `json:"scoringRules" gorm:"serializer:json"`
	LevelThresholds  []int         `json:"levelThresholds,omitempty" gorm:"serializer:json"`
	WeeklyGoalPoints int           `json:"weeklyGoalPoints" gorm:"default:0"`
	IsActive         bool          `json:"isActive" gorm:"default:false;index"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

func (Game) TableName() string {
	return "games"
}
