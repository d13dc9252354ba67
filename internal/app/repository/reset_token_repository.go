package repository

import (
	"time"

	"github.com/roleplayhq/roleplay-backend/internal/app/model"
	"github.com/roleplayhq/roleplay-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ResetTokenRepository interface {
	Upsert(token *model.ResetToken) error
	FindByToken(token string) (*model.ResetToken, error)
	Delete(id uint) error
	DeleteExpired(olderThan time.Time) (int64, error)
}

type resetTokenRepository struct {
	db *gorm.DB
}

func NewResetTokenRepository(db *gorm.DB) ResetTokenRepository {
	return &resetTokenRepository{db: db}
}

// Upsert writes the token row for a user, replacing any existing one. The
// unique index on user_id plus ON CONFLICT keeps at most one live token per
// user even when issuances race.
func (r *resetTokenRepository) Upsert(token *model.ResetToken) error {
	logger.Debug("Upserting reset token in database", map[string]interface{}{
		"user_id": token.UserID,
	})

	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "created_at"}),
	}).Create(token).Error
	if err != nil {
		logger.Error("Failed to upsert reset token in database", err, map[string]interface{}{
			"user_id": token.UserID,
		})
		return err
	}

	logger.Debug("Reset token upserted in database", map[string]interface{}{
		"user_id": token.UserID,
	})
	return nil
}

func (r *resetTokenRepository) FindByToken(token string) (*model.ResetToken, error) {
	var reset model.ResetToken
	if err := r.db.Where("token = ?", token).First(&reset).Error; err != nil {
		logger.Error("Failed to find reset token in database", err, nil)
		return nil, err
	}
	return &reset, nil
}

func (r *resetTokenRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.ResetToken{}, id).Error; err != nil {
		logger.Error("Failed to delete reset token from database", err, map[string]interface{}{
			"token_id": id,
		})
		return err
	}
	return nil
}

// DeleteExpired purges token rows created before olderThan and reports how
// many were removed.
func (r *resetTokenRepository) DeleteExpired(olderThan time.Time) (int64, error) {
	result := r.db.Where("created_at < ?", olderThan).Delete(&model.ResetToken{})
	if result.Error != nil {
		logger.Error("Failed to delete expired reset tokens from database", result.Error, nil)
		return 0, result.Error
	}

	logger.Debug("Expired reset tokens deleted from database", map[string]interface{}{
		"count": result.RowsAffected,
	})
	return result.RowsAffected, nil
}
