// services/defaults.go - Built-in achievement catalog and starter game
package services

import "lifetracker/models"

// DefaultAchievements is the catalog a fresh install is seeded with.
func DefaultAchievements() []models.Achievement {
	return []models.Achievement{
		{
			AchievementID: "first_habit",
			Name:          "First Habit",
			Description:   "Complete your first habit",
			Icon:          "star",
			Criterion:     models.Criterion{Kind: models.CriterionHabitCount, Threshold: 1},
		},
		{
			AchievementID: "streak_7",
			Name:          "7 Day Streak",
			Description:   "Complete a habit 7 days in a row",
			Icon:          "flame",
			Criterion:     models.Criterion{Kind: models.CriterionStreak, Threshold: 7},
		},
		{
			AchievementID: "points_1000",
			Name:          "A Thousand Points",
			Description:   "Earn 1000 points",
			Icon:          "trophy",
			Criterion:     models.Criterion{Kind: models.CriterionPoints, Threshold: 1000},
		},
		{
			AchievementID: "routine_master",
			Name:          "Routine Master",
			Description:   "Complete 10 routines",
			Icon:          "check-circle",
			Criterion:     models.Criterion{Kind: models.CriterionRoutineCount, Threshold: 10},
		},
		{
			AchievementID: "habit_master",
			Name:          "Habit Master",
			Description:   "Complete 50 habits",
			Icon:          "target",
			Criterion:     models.Criterion{Kind: models.CriterionHabitCount, Threshold: 50},
		},
		{
			AchievementID: "streak_30",
			Name:          "Consistency Master",
			Description:   "Complete a habit 30 days in a row",
			Icon:          "award",
			Criterion:     models.Criterion{Kind: models.CriterionStreak, Threshold: 30},
		},
		{
			AchievementID: "points_5000",
			Name:          "Points Legend",
			Description:   "Earn 5000 points",
			Icon:          "crown",
			Criterion:     models.Criterion{Kind: models.CriterionPoints, Threshold: 5000},
		},
	}
}

// DefaultGame is the starter board used when no game file is configured.
func DefaultGame() models.Game {
	return models.Game{
		Version: 1,
		Rows:    5,
		Cols:    5,
		Milestones: []models.Milestone{
			{Tile: 5, Label: "Warm Up"},
			{Tile: 12, Label: "Halfway"},
			{Tile: 24, Label: "Finish Line"},
		},
		ScoringRules: []models.ScoringRule{
			{Action: "habit_completed", Points: 10, Desc: "Completed a habit"},
			{Action: "routine_completed", Points: 25, Desc: "Completed a full routine"},
			{Action: "goal_reached", Points: 50, Desc: "Reached a personal goal"},
			{Action: "habit_missed", Points: -5, Desc: "Missed a scheduled habit"},
		},
		LevelThresholds:  []int{100, 250, 450, 700, 1000},
		WeeklyGoalPoints: 300,
		IsActive:         true,
	}
}
