// database/migrate.go - Database migration runner
package database

import (
	"fmt"

	"gorm.io/gorm"

	"lifetracker/logger"
	"lifetracker/models"
)

// RunMigrations creates or updates every table the server uses.
func RunMigrations(db *gorm.DB, log *logger.Logger) error {
	log.Info("running database migrations")

	if err := db.AutoMigrate(
		&models.Game{},
		&models.Achievement{},
		&models.UserProgress{},
		&models.UserAchievement{},
		&models.PointTransaction{},
		&models.UserCounters{},
		&models.WeeklyReset{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return err
	}
	log.Info("migrations completed")
	return nil
}

func createIndexes(db *gorm.DB) error {
	stmts := []string{
		// Leaderboard ordering
		"CREATE INDEX IF NOT EXISTS idx_progress_rank_total ON user_progress(total_points DESC, level DESC, last_activity, user_id)",
		"CREATE INDEX IF NOT EXISTS idx_progress_rank_weekly ON user_progress(weekly_points DESC, level DESC, last_activity, user_id)",

		"CREATE INDEX IF NOT EXISTS idx_games_version ON games(version DESC)",
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}
