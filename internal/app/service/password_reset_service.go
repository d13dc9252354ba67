package service

import (
	"errors"
	"time"

	"github.com/roleplayhq/roleplay-backend/internal/app/model"
	"github.com/roleplayhq/roleplay-backend/internal/app/repository"
	"github.com/roleplayhq/roleplay-backend/pkg/logger"
	"github.com/roleplayhq/roleplay-backend/pkg/mailer"
	"github.com/roleplayhq/roleplay-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrInvalidResetToken = errors.New("invalid reset token")
	ErrResetTokenExpired = errors.New("reset token has expired")
)

const (
	// ResetTokenExpiry is how long a reset token stays valid. A token aged
	// exactly ResetTokenExpiry is still accepted; one second past it is not.
	ResetTokenExpiry = 2 * time.Hour
	// ResetTokenLength is the byte length of the random token
	ResetTokenLength = 32
)

type PasswordResetService interface {
	RequestReset(email string) error
	ResetPassword(token, newPassword string) error
}

type passwordResetService struct {
	tokenRepo repository.ResetTokenRepository
	userRepo  repository.UserRepository
	mailer    mailer.Mailer
	db        *gorm.DB
}

func NewPasswordResetService(
	tokenRepo repository.ResetTokenRepository,
	userRepo repository.UserRepository,
	m mailer.Mailer,
	db *gorm.DB,
) PasswordResetService {
	return &passwordResetService{
		tokenRepo: tokenRepo,
		userRepo:  userRepo,
		mailer:    m,
		db:        db,
	}
}

// RequestReset issues a fresh reset token for the user owning email and hands
// it to the mailer. Reissuing replaces the previous token; a user never has
// more than one live token.
func (s *passwordResetService) RequestReset(email string) error {
	logger.Info("Processing password reset request", map[string]interface{}{
		"email": email,
	})

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Password reset requested for unknown email", map[string]interface{}{
				"email": email,
			})
			return ErrUserNotFound
		}
		return err
	}

	token, err := util.GenerateSecureToken(ResetTokenLength)
	if err != nil {
		logger.Error("Failed to generate reset token", err, nil)
		return err
	}

	reset := &model.ResetToken{
		UserID: user.ID,
		Token:  token,
	}

	if err := s.tokenRepo.Upsert(reset); err != nil {
		logger.Error("Failed to store reset token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}

	// Delivery is fire-and-forget; a mail failure does not invalidate the
	// token that was already stored.
	if err := s.mailer.SendPasswordReset(user.Email, token); err != nil {
		logger.Error("Failed to deliver password reset mail", err, map[string]interface{}{
			"user_id": user.ID,
		})
	}

	logger.Info("Password reset token issued", map[string]interface{}{
		"user_id": user.ID,
	})
	return nil
}

// ResetPassword consumes a token: the password update and the token deletion
// commit together, so a token can never survive the password change it
// authorized.
func (s *passwordResetService) ResetPassword(token, newPassword string) error {
	logger.Info("Processing password reset with token")

	reset, err := s.tokenRepo.FindByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Invalid reset token provided", nil)
			return ErrInvalidResetToken
		}
		return err
	}

	if time.Since(reset.CreatedAt) > ResetTokenExpiry {
		logger.Warn("Reset token has expired", map[string]interface{}{
			"user_id":    reset.UserID,
			"created_at": reset.CreatedAt,
		})
		return ErrResetTokenExpired
	}

	hashedPassword, err := util.HashPassword(newPassword)
	if err != nil {
		logger.Error("Failed to hash new password", err, map[string]interface{}{
			"user_id": reset.UserID,
		})
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.User{}).
			Where("id = ?", reset.UserID).
			Update("password_hash", hashedPassword)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Delete(&model.ResetToken{}, reset.ID).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		logger.Error("Failed to consume reset token", err, map[string]interface{}{
			"user_id": reset.UserID,
		})
		return err
	}

	logger.Info("Password reset successful", map[string]interface{}{
		"user_id": reset.UserID,
	})
	return nil
}
