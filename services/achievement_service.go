// services/achievement_service.go - Achievement catalog and per-user unlock views
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lifetracker/logger"
	"lifetracker/models"
)

// AchievementStatus pairs a definition with the user's unlock state.
type AchievementStatus struct {
	models.Achievement
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlockedAt,omitempty"`
}

// UserAchievementsView lists every definition with unlock state for one user.
type UserAchievementsView struct {
	UserID        string              `json:"userId"`
	Achievements  []AchievementStatus `json:"achievements"`
	UnlockedCount int                 `json:"unlockedCount"`
	TotalCount    int                 `json:"totalCount"`
}

type AchievementStore interface {
	CatalogStore
	HistoryStore
	CreateAchievement(ctx context.Context, a *models.Achievement) error
}

type AchievementService struct {
	store AchievementStore
	log   *logger.Logger
}

func NewAchievementService(store AchievementStore, log *logger.Logger) *AchievementService {
	if log == nil {
		log = logger.Nop()
	}
	return &AchievementService{store: store, log: log.With("component", "achievements")}
}

func (s *AchievementService) Catalog(ctx context.Context) ([]models.Achievement, error) {
	return s.store.Achievements(ctx)
}

// Publish adds a new definition. Definitions are never edited in place.
func (s *AchievementService) Publish(ctx context.Context, a *models.Achievement) error {
	a.AchievementID = strings.TrimSpace(a.AchievementID)
	a.Name = strings.TrimSpace(a.Name)
	if err := ValidateUserID(a.AchievementID); err != nil {
		return fmt.Errorf("%w: achievementId must match [A-Za-z0-9_-]{1,64}", ErrInvalidAction)
	}
	if a.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidAction)
	}
	if err := a.Criterion.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAction, err)
	}
	if err := s.store.CreateAchievement(ctx, a); err != nil {
		return err
	}
	s.log.Info("achievement published", "achievement_id", a.AchievementID, "kind", a.Criterion.Kind, "threshold", a.Criterion.Threshold)
	return nil
}

// InitializeDefaults publishes every default definition not yet present and
// returns the ones it created. Safe to call repeatedly.
func (s *AchievementService) InitializeDefaults(ctx context.Context) ([]models.Achievement, error) {
	created := []models.Achievement{}
	for _, def := range DefaultAchievements() {
		err := s.store.CreateAchievement(ctx, &def)
		switch {
		case err == nil:
			created = append(created, def)
		case errors.Is(err, ErrAlreadyExists):
		default:
			return created, err
		}
	}
	s.log.Info("default achievements initialized", "created", len(created))
	return created, nil
}

func (s *AchievementService) UserAchievements(ctx context.Context, userID string) (*UserAchievementsView, error) {
	if err := ValidateUserID(userID); err != nil {
		return nil, err
	}
	catalog, err := s.store.Achievements(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.UserAchievements(ctx, userID)
	if err != nil {
		return nil, err
	}
	unlockedAt := make(map[string]time.Time, len(rows))
	for _, r := range rows {
		unlockedAt[r.AchievementID] = r.UnlockedAt
	}

	view := &UserAchievementsView{
		UserID:       userID,
		Achievements: make([]AchievementStatus, 0, len(catalog)),
		TotalCount:   len(catalog),
	}
	for _, def := range catalog {
		st := AchievementStatus{Achievement: def}
		if at, ok := unlockedAt[def.AchievementID]; ok {
			st.Unlocked = true
			st.UnlockedAt = &at
			view.UnlockedCount++
		}
		view.Achievements = append(view.Achievements, st)
	}
	return view, nil
}
