package services

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifetracker/models"
)

var zeroTime time.Time

func TestCompileGame_Valid(t *testing.T) {
	cfg := compile(t, models.Game{
		ID:      3,
		Version: 2,
		Rows:    2,
		Cols:    3,
		Milestones: []models.Milestone{
			{Tile: 5, Label: "end"},
			{Tile: 1, Label: "start"},
		},
		ScoringRules: []models.ScoringRule{
			{Action: "habit_completed", Points: 10},
			{Action: "habit_missed", Points: -5},
		},
		WeeklyGoalPoints: 50,
		IsActive:         true,
	})

	assert.Equal(t, 6, cfg.BoardSize())
	assert.Equal(t, []models.Milestone{{Tile: 1, Label: "start"}, {Tile: 5, Label: "end"}}, cfg.Milestones())

	pts, ok := cfg.Points("habit_missed")
	assert.True(t, ok)
	assert.Equal(t, -5, pts)

	_, ok = cfg.Points("unknown")
	assert.False(t, ok)

	m, ok := cfg.MilestoneAt(5)
	assert.True(t, ok)
	assert.Equal(t, "end", m.Label)
}

func TestCompileGame_Rejects(t *testing.T) {
	cases := map[string]models.Game{
		"empty board":       {Version: 1, Rows: 0, Cols: 3},
		"tile out of range": {Version: 1, Rows: 2, Cols: 2, Milestones: []models.Milestone{{Tile: 4}}},
		"negative tile":     {Version: 1, Rows: 2, Cols: 2, Milestones: []models.Milestone{{Tile: -1}}},
		"duplicate tile":    {Version: 1, Rows: 2, Cols: 2, Milestones: []models.Milestone{{Tile: 1}, {Tile: 1}}},
		"duplicate rule": {Version: 1, Rows: 1, Cols: 1, ScoringRules: []models.ScoringRule{
			{Action: "a", Points: 1}, {Action: "a", Points: 2},
		}},
		"empty action":     {Version: 1, Rows: 1, Cols: 1, ScoringRules: []models.ScoringRule{{Action: " "}}},
		"negative goal":    {Version: 1, Rows: 1, Cols: 1, WeeklyGoalPoints: -1},
		"decreasing curve": {Version: 1, Rows: 1, Cols: 1, LevelThresholds: []int{200, 100}},
		"oversized board":  {Version: 1, Rows: math.MaxInt / 2, Cols: 3},
	}
	for name, g := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := CompileGame(g)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidGame)
		})
	}
}

func TestScoringEngine_UnmappedIsZero(t *testing.T) {
	cfg := compile(t, models.Game{
		Version:      1,
		Rows:         1,
		Cols:         1,
		ScoringRules: []models.ScoringRule{{Action: "run", Points: 7}},
	})
	s := NewScoringEngine(nil)

	assert.Equal(t, 7, s.Score("run", cfg))
	assert.Equal(t, 0, s.Score("swim", cfg))
}
