// models/achievement.go
package models

import (
	"fmt"
	"time"
)

// CriterionKind selects which counter an achievement compares against its threshold.
type CriterionKind string

const (
	CriterionStreak       CriterionKind = "STREAK"
	CriterionPoints       CriterionKind = "POINTS"
	CriterionHabitCount   CriterionKind = "HABIT_COUNT"
	CriterionRoutineCount CriterionKind = "ROUTINE_COUNT"
)

func (k CriterionKind) Valid() bool {
	switch k {
	case CriterionStreak, CriterionPoints, CriterionHabitCount, CriterionRoutineCount:
		return true
	}
	return false
}

// Criterion is the rule an achievement requires to unlock.
type Criterion struct {
	Kind      CriterionKind `json:"kind" gorm:"size:20;not null"`
	Threshold int           `json:"threshold" gorm:"not null"`
}

func (c Criterion) Validate() error {
	if !c.Kind.Valid() {
		return fmt.Errorf("unknown criterion kind %q", c.Kind)
	}
	if c.Threshold < 0 {
		return fmt.Errorf("criterion threshold must be >= 0, got %d", c.Threshold)
	}
	return nil
}

// Achievement is a published definition. Immutable once created.
type Achievement struct {
	ID            uint      `json:"-" gorm:"primaryKey"`
	AchievementID string    `json:"achievementId" gorm:"size:64;not null;uniqueIndex"`
	Name          string    `json:"name" gorm:"not null"`
	Description   string    `json:"description"`
	Icon          string    `json:"icon"`
	Criterion     Criterion `json:"criterion" gorm:"embedded;embeddedPrefix:criterion_"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (Achievement) TableName() string {
	return "achievements"
}

// UserAchievement records one unlock. (UserID, AchievementID) is unique.
type UserAchievement struct {
	ID            string    `json:"id" gorm:"primaryKey;size:36"`
	UserID        string    `json:"userId" gorm:"size:64;not null;uniqueIndex:idx_user_achievement"`
	AchievementID string    `json:"achievementId" gorm:"size:64;not null;uniqueIndex:idx_user_achievement"`
	UnlockedAt    time.Time `json:"unlockedAt"`
}

func (UserAchievement) TableName() string {
	return "user_achievements"
}
