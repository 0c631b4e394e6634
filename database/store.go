// database/store.go - GORM-backed implementation of services.Store
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"lifetracker/models"
	"lifetracker/services"
)

// progressColumns are rewritten together on every commit.
var progressColumns = []string{
	"total_points", "weekly_points", "current_position", "level", "experience",
	"unlocked_achievements", "completed_milestones", "last_activity", "version", "updated_at",
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// mapErr converts driver errors into the service error taxonomy.
func mapErr(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", what, services.ErrNotFound)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return services.Unavailable(fmt.Errorf("%s: %w", what, err))
	}
}

func normalize(p *models.UserProgress) {
	if p.UnlockedAchievements == nil {
		p.UnlockedAchievements = []string{}
	}
	if p.CompletedMilestones == nil {
		p.CompletedMilestones = []int{}
	}
}

func (s *GormStore) GetProgress(ctx context.Context, userID string) (*models.UserProgress, error) {
	var p models.UserProgress
	if err := s.db.WithContext(ctx).First(&p, "user_id = ?", userID).Error; err != nil {
		return nil, mapErr(err, "get progress")
	}
	normalize(&p)
	return &p, nil
}

func (s *GormStore) ListProgress(ctx context.Context) ([]models.UserProgress, error) {
	var list []models.UserProgress
	if err := s.db.WithContext(ctx).Find(&list).Error; err != nil {
		return nil, mapErr(err, "list progress")
	}
	for i := range list {
		normalize(&list[i])
	}
	return list, nil
}

func (s *GormStore) ListUserIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&models.UserProgress{}).Order("user_id").Pluck("user_id", &ids).Error
	if err != nil {
		return nil, mapErr(err, "list user ids")
	}
	return ids, nil
}

// Commit writes progress, unlock rows and the transaction in one database
// transaction. The progress row is only updated while its version still
// equals ExpectedVersion.
func (s *GormStore) Commit(ctx context.Context, c services.Commit) error {
	if c.Progress == nil {
		return fmt.Errorf("commit without progress")
	}
	next := c.Progress.Clone()
	next.Version = c.ExpectedVersion + 1

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if c.ExpectedVersion == 0 {
			if err := tx.Create(next).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return services.ErrConcurrentModification
				}
				return err
			}
		} else {
			res := tx.Model(next).
				Where("version = ?", c.ExpectedVersion).
				Select(progressColumns).
				Updates(next)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return services.ErrConcurrentModification
			}
		}

		if len(c.Achievements) > 0 {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&c.Achievements).Error; err != nil {
				return err
			}
		}
		if c.Transaction != nil {
			if err := tx.Create(c.Transaction).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, services.ErrConcurrentModification) {
		return fmt.Errorf("progress for %s: %w", c.Progress.UserID, err)
	}
	if err != nil {
		return mapErr(err, "commit progress")
	}
	c.Progress.Version = next.Version
	return nil
}

func (s *GormStore) ActiveGame(ctx context.Context) (*models.Game, error) {
	var g models.Game
	err := s.db.WithContext(ctx).Where("is_active = ?", true).Order("version DESC").First(&g).Error
	if err != nil {
		return nil, mapErr(err, "active game")
	}
	return &g, nil
}

func (s *GormStore) Achievements(ctx context.Context) ([]models.Achievement, error) {
	var defs []models.Achievement
	if err := s.db.WithContext(ctx).Order("id").Find(&defs).Error; err != nil {
		return nil, mapErr(err, "list achievements")
	}
	return defs, nil
}

func (s *GormStore) Counters(ctx context.Context, userID string) (models.UserCounters, error) {
	var c models.UserCounters
	err := s.db.WithContext(ctx).First(&c, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.UserCounters{UserID: userID}, nil
	}
	if err != nil {
		return models.UserCounters{}, mapErr(err, "get counters")
	}
	return c, nil
}

func (s *GormStore) SetCounters(ctx context.Context, c models.UserCounters) error {
	c.UpdatedAt = time.Now().UTC()
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"streak", "habit_count", "routine_count", "updated_at"}),
	}).Create(&c).Error
	return mapErr(err, "set counters")
}

func (s *GormStore) UserAchievements(ctx context.Context, userID string) ([]models.UserAchievement, error) {
	var rows []models.UserAchievement
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("unlocked_at DESC, achievement_id").
		Find(&rows).Error
	if err != nil {
		return nil, mapErr(err, "list user achievements")
	}
	return rows, nil
}

func (s *GormStore) Transactions(ctx context.Context, userID string, limit, offset int) ([]models.PointTransaction, error) {
	var txs []models.PointTransaction
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&txs).Error
	if err != nil {
		return nil, mapErr(err, "list transactions")
	}
	return txs, nil
}

func (s *GormStore) TransactionStats(ctx context.Context, userID string, since time.Time) (int64, int, error) {
	var count int64
	db := s.db.WithContext(ctx)
	if err := db.Model(&models.PointTransaction{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, 0, mapErr(err, "count transactions")
	}
	var out struct{ Total int64 }
	err := db.Model(&models.PointTransaction{}).
		Select("COALESCE(SUM(points), 0) AS total").
		Where("user_id = ? AND created_at >= ?", userID, since).
		Scan(&out).Error
	if err != nil {
		return 0, 0, mapErr(err, "sum transactions")
	}
	return count, int(out.Total), nil
}

func (s *GormStore) CreateGame(ctx context.Context, g *models.Game) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if g.IsActive {
			if err := tx.Model(&models.Game{}).Where("is_active = ?", true).Update("is_active", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(g).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("game version %d: %w", g.Version, services.ErrAlreadyExists)
	}
	return mapErr(err, "create game")
}

func (s *GormStore) ListGames(ctx context.Context) ([]models.Game, error) {
	var games []models.Game
	if err := s.db.WithContext(ctx).Order("version DESC").Find(&games).Error; err != nil {
		return nil, mapErr(err, "list games")
	}
	return games, nil
}

func (s *GormStore) ActivateGame(ctx context.Context, id uint) (*models.Game, error) {
	var g models.Game
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&g, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Game{}).Where("id <> ?", id).Update("is_active", false).Error; err != nil {
			return err
		}
		if err := tx.Model(&g).Update("is_active", true).Error; err != nil {
			return err
		}
		g.IsActive = true
		return nil
	})
	if err != nil {
		return nil, mapErr(err, fmt.Sprintf("activate game %d", id))
	}
	return &g, nil
}

func (s *GormStore) CreateAchievement(ctx context.Context, a *models.Achievement) error {
	err := s.db.WithContext(ctx).Create(a).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("achievement %s: %w", a.AchievementID, services.ErrAlreadyExists)
	}
	return mapErr(err, "create achievement")
}

// ClaimWeeklyReset relies on the unique week_key index: the first claimant
// inserts the row, everyone else hits the duplicate key.
func (s *GormStore) ClaimWeeklyReset(ctx context.Context, weekKey string, at time.Time) (bool, error) {
	row := models.WeeklyReset{
		ID:           uuid.NewString(),
		WeekKey:      weekKey,
		Status:       models.WeeklyResetRunning,
		PendingUsers: datatypes.JSONSlice[string]{},
		StartedAt:    at,
	}
	err := s.db.WithContext(ctx).Create(&row).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return false, nil
	}
	if err != nil {
		return false, mapErr(err, "claim weekly reset")
	}
	return true, nil
}

func (s *GormStore) FinishWeeklyReset(ctx context.Context, weekKey string, out services.WeeklyResetOutcome, at time.Time) error {
	updates := map[string]interface{}{
		"users_reset":   gorm.Expr("users_reset + ?", out.UsersReset),
		"pending_users": append(datatypes.JSONSlice[string]{}, out.Pending...),
	}
	switch {
	case out.Failed:
		updates["status"] = models.WeeklyResetFailed
	case len(out.Pending) > 0:
		updates["status"] = models.WeeklyResetPartial
	default:
		updates["status"] = models.WeeklyResetDone
		updates["completed_at"] = at
	}
	res := s.db.WithContext(ctx).Model(&models.WeeklyReset{}).Where("week_key = ?", weekKey).Updates(updates)
	if res.Error != nil {
		return mapErr(res.Error, "finish weekly reset")
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("weekly reset %s: %w", weekKey, services.ErrNotFound)
	}
	return nil
}

// RetryWeeklyReset takes an open week by bumping its attempt counter; a
// concurrent caller that read the same attempt matches no row and backs off.
func (s *GormStore) RetryWeeklyReset(ctx context.Context, weekKey string, at time.Time) ([]string, bool, error) {
	var row models.WeeklyReset
	err := s.db.WithContext(ctx).Where("week_key = ?", weekKey).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, mapErr(err, "load weekly reset")
	}
	if row.Status != models.WeeklyResetPartial && row.Status != models.WeeklyResetFailed {
		return nil, false, nil
	}

	res := s.db.WithContext(ctx).Model(&models.WeeklyReset{}).
		Where("week_key = ? AND attempts = ?", weekKey, row.Attempts).
		Updates(map[string]interface{}{
			"status":     models.WeeklyResetRunning,
			"attempts":   row.Attempts + 1,
			"started_at": at,
		})
	if res.Error != nil {
		return nil, false, mapErr(res.Error, "retry weekly reset")
	}
	if res.RowsAffected == 0 {
		return nil, false, nil
	}
	if row.Status == models.WeeklyResetFailed {
		return nil, true, nil
	}
	return []string(row.PendingUsers), true, nil
}

var _ services.Store = (*GormStore)(nil)
