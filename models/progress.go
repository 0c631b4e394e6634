// models/progress.go - Per-user progress aggregate
package models

import (
	"slices"
	"time"
)

// UserProgress is the single document holding every piece of gamification state
// for one user. It is always written as a whole.
type UserProgress struct {
	UserID               string    `json:"userId" gorm:"primaryKey;size:64"`
	TotalPoints          int       `json:"totalPoints" gorm:"not null;default:0;index"`
	WeeklyPoints         int       `json:"weeklyPoints" gorm:"not null;default:0;index"`
	CurrentPosition      int       `json:"currentPosition" gorm:"not null;default:0"`
	Level                int       `json:"level" gorm:"not null;default:1"`
	Experience           int       `json:"experience" gorm:"not null;default:0"`
	UnlockedAchievements []string  `json:"unlockedAchievements" gorm:"serializer:json"`
	CompletedMilestones  []int     `json:"completedMilestones" gorm:"serializer:json"`
	LastActivity         time.Time `json:"lastActivity"`
	Version              int64     `json:"-" gorm:"not null;default:0"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

func (UserProgress) TableName() string {
	return "user_progress"
}

// NewUserProgress returns the zero record created on a user's first scored action.
func NewUserProgress(userID string, now time.Time) *UserProgress {
	return &UserProgress{
		UserID:               userID,
		Level:                1,
		UnlockedAchievements: []string{},
		CompletedMilestones:  []int{},
		LastActivity:         now,
		CreatedAt:            now,
	}
}

func (p *UserProgress) HasAchievement(achievementID string) bool {
	return slices.Contains(p.UnlockedAchievements, achievementID)
}

func (p *UserProgress) HasMilestone(tile int) bool {
	return slices.Contains(p.CompletedMilestones, tile)
}

// Clone returns a deep copy so callers can mutate without touching shared snapshots.
func (p *UserProgress) Clone() *UserProgress {
	cp := *p
	cp.UnlockedAchievements = slices.Clone(p.UnlockedAchievements)
	cp.CompletedMilestones = slices.Clone(p.CompletedMilestones)
	if cp.UnlockedAchievements == nil {
		cp.UnlockedAchievements = []string{}
	}
	if cp.CompletedMilestones == nil {
		cp.CompletedMilestones = []int{}
	}
	return &cp
}
