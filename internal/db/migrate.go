package db

import (
	"github.com/roleplayhq/roleplay-backend/internal/app/model"
	"github.com/roleplayhq/roleplay-backend/pkg/logger"
	"gorm.io/gorm"
)

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	if err := migrateModels(DB); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully")
	return nil
}

func migrateModels(db *gorm.DB) error {
	// Map the Players/Groups relations onto the explicit pivot model so the
	// join table gets its composite primary key.
	if err := db.SetupJoinTable(&model.Group{}, "Players", &model.GroupPlayer{}); err != nil {
		return err
	}
	if err := db.SetupJoinTable(&model.User{}, "Groups", &model.GroupPlayer{}); err != nil {
		return err
	}

	return db.AutoMigrate(
		&model.User{},
		&model.Group{},
		&model.GroupPlayer{},
		&model.GroupRequest{},
		&model.ResetToken{},
	)
}
