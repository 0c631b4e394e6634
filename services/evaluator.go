// services/evaluator.go - Achievement criteria evaluation
package services

import (
	"cmp"
	"slices"
	"time"

	"github.com/google/uuid"

	"lifetracker/models"
)

// ExternalCounters are the counters this core does not compute itself.
type ExternalCounters struct {
	Streak       int `json:"streak"`
	HabitCount   int `json:"habitCount"`
	RoutineCount int `json:"routineCount"`
}

func CountersFrom(c models.UserCounters) ExternalCounters {
	return ExternalCounters{Streak: c.Streak, HabitCount: c.HabitCount, RoutineCount: c.RoutineCount}
}

// Satisfied reports whether criterion holds for the given progress and counters.
func Satisfied(c models.Criterion, p *models.UserProgress, counters ExternalCounters) bool {
	var value int
	switch c.Kind {
	case models.CriterionPoints:
		value = p.TotalPoints
	case models.CriterionStreak:
		value = counters.Streak
	case models.CriterionHabitCount:
		value = counters.HabitCount
	case models.CriterionRoutineCount:
		value = counters.RoutineCount
	default:
		return false
	}
	return value >= c.Threshold
}

// Evaluate returns the definitions that newly satisfy their criterion and are
// not already unlocked, ordered by ascending threshold then achievement id.
func Evaluate(p *models.UserProgress, catalog []models.Achievement, counters ExternalCounters) []models.Achievement {
	var unlocked []models.Achievement
	for _, def := range catalog {
		if p.HasAchievement(def.AchievementID) {
			continue
		}
		if Satisfied(def.Criterion, p, counters) {
			unlocked = append(unlocked, def)
		}
	}
	slices.SortFunc(unlocked, func(a, b models.Achievement) int {
		return cmp.Or(
			cmp.Compare(a.Criterion.Threshold, b.Criterion.Threshold),
			cmp.Compare(a.AchievementID, b.AchievementID),
		)
	})
	return unlocked
}

// UnlockRows builds the junction rows for newly unlocked definitions.
func UnlockRows(userID string, defs []models.Achievement, now time.Time) []models.UserAchievement {
	rows := make([]models.UserAchievement, 0, len(defs))
	for _, def := range defs {
		rows = append(rows, models.UserAchievement{
			ID:            uuid.NewString(),
			UserID:        userID,
			AchievementID: def.AchievementID,
			UnlockedAt:    now,
		})
	}
	return rows
}
