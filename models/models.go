// models/models.go - Supporting records
package models

import (
	"time"

	"gorm.io/datatypes"
)

// PointTransaction is the append-only history of scored actions.
type PointTransaction struct {
	ID          string            `json:"id" gorm:"primaryKey;size:36"`
	UserID      string            `json:"userId" gorm:"size:64;not null;index:idx_tx_user_created"`
	Action      string            `json:"action" gorm:"size:100;not null"`
	Points      int               `json:"points" gorm:"not null"`
	GameVersion int               `json:"gameVersion"`
	Metadata    datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"createdAt" gorm:"index:idx_tx_user_created"`
}

func (PointTransaction) TableName() string {
	return "point_transactions"
}

// UserCounters are maintained by the habit-tracking collaborator and read
// during achievement evaluation.
type UserCounters struct {
	UserID       string    `json:"userId" gorm:"primaryKey;size:64"`
	Streak       int       `json:"streak" gorm:"default:0"`
	HabitCount   int       `json:"habitCount" gorm:"default:0"`
	RoutineCount int       `json:"routineCount" gorm:"default:0"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (UserCounters) TableName() string {
	return "user_counters"
}

// Weekly reset states. A partial week still owes PendingUsers their reset; a
// failed week never got as far as listing users and needs a full pass.
const (
	WeeklyResetRunning = "running"
	WeeklyResetPartial = "partial"
	WeeklyResetFailed  = "failed"
	WeeklyResetDone    = "done"
)

// WeeklyReset marks a week boundary as processed.
type WeeklyReset struct {
	ID           string                      `json:"id" gorm:"primaryKey;size:36"`
	WeekKey      string                      `json:"weekKey" gorm:"size:10;not null;uniqueIndex"`
	Status       string                      `json:"status" gorm:"size:16;not null;default:running"`
	UsersReset   int                         `json:"usersReset"`
	PendingUsers datatypes.JSONSlice[string] `json:"pendingUsers"`
	Attempts     int                         `json:"attempts" gorm:"not null;default:0"`
	StartedAt    time.Time                   `json:"startedAt"`
	CompletedAt  *time.Time                  `json:"completedAt"`
}

func (WeeklyReset) TableName() string {
	return "weekly_resets"
}

// Location is accepted on action events and forwarded, never interpreted.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type ActionMetadata struct {
	Location *Location `json:"location,omitempty"`
}

// ActionEvent is one entry of the scored-action feed.
type ActionEvent struct {
	UserID    string          `json:"userId"`
	Action    string          `json:"action"`
	Timestamp time.Time       `json:"timestamp"`
	Metadata  *ActionMetadata `json:"metadata,omitempty"`
}
