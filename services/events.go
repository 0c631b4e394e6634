package services

import (
	"context"
	"errors"
	"time"

	"lifetracker/models"
)

const (
	EventProgress    = "progress"
	EventAchievement = "achievement"
	EventMilestone   = "milestone"
	EventWeeklyReset = "weekly_reset"
)

// ProgressEvent is handed to emitters after a mutation has been committed.
type ProgressEvent struct {
	Type         string             `json:"type"`
	UserID       string             `json:"userId"`
	Action       string             `json:"action,omitempty"`
	Delta        *ProgressDelta     `json:"delta,omitempty"`
	Achievements []string           `json:"achievements,omitempty"`
	Milestones   []models.Milestone `json:"milestones,omitempty"`
	Location     *models.Location   `json:"location,omitempty"`
	OccurredAt   time.Time          `json:"occurredAt"`
}

// Emitter publishes committed progress changes to outside collaborators.
type Emitter interface {
	Emit(ctx context.Context, ev ProgressEvent) error
}

type NopEmitter struct{}

func (NopEmitter) Emit(context.Context, ProgressEvent) error { return nil }

// MultiEmitter fans an event out to every emitter and joins their errors.
type MultiEmitter []Emitter

func (m MultiEmitter) Emit(ctx context.Context, ev ProgressEvent) error {
	var errs []error
	for _, e := range m {
		if err := e.Emit(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// eventsFor expands a delta into the events subscribers care about.
func eventsFor(ev models.ActionEvent, delta *ProgressDelta, at time.Time) []ProgressEvent {
	var loc *models.Location
	if ev.Metadata != nil {
		loc = ev.Metadata.Location
	}
	out := []ProgressEvent{{
		Type:       EventProgress,
		UserID:     ev.UserID,
		Action:     ev.Action,
		Delta:      delta,
		Location:   loc,
		OccurredAt: at,
	}}
	if len(delta.CrossedMilestones) > 0 {
		out = append(out, ProgressEvent{
			Type:       EventMilestone,
			UserID:     ev.UserID,
			Milestones: delta.CrossedMilestones,
			OccurredAt: at,
		})
	}
	if len(delta.UnlockedAchievements) > 0 {
		out = append(out, ProgressEvent{
			Type:         EventAchievement,
			UserID:       ev.UserID,
			Achievements: delta.UnlockedAchievements,
			OccurredAt:   at,
		})
	}
	return out
}
