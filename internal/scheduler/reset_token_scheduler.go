package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/roleplayhq/roleplay-backend/internal/app/repository"
	"github.com/roleplayhq/roleplay-backend/internal/app/service"
	"github.com/roleplayhq/roleplay-backend/pkg/logger"
)

// ResetTokenScheduler purges expired password reset tokens on a schedule.
// Expired tokens are already rejected at use time, so this is purely a
// hygiene job that keeps the table small.
type ResetTokenScheduler struct {
	cron      *cron.Cron
	tokenRepo repository.ResetTokenRepository
}

func NewResetTokenScheduler(tokenRepo repository.ResetTokenRepository) *ResetTokenScheduler {
	return &ResetTokenScheduler{
		cron:      cron.New(),
		tokenRepo: tokenRepo,
	}
}

func (s *ResetTokenScheduler) Start() error {
	// Hourly at minute 0
	_, err := s.cron.AddFunc("0 * * * *", func() {
		logger.Info("Starting scheduled reset token cleanup", nil)

		cutoff := time.Now().Add(-service.ResetTokenExpiry)
		purged, err := s.tokenRepo.DeleteExpired(cutoff)
		if err != nil {
			logger.Error("Failed to purge expired reset tokens", err)
			return
		}

		logger.Info("Expired reset tokens purged", map[string]interface{}{
			"purged": purged,
		})
	})

	if err != nil {
		logger.Error("Failed to add cron job for reset token cleanup", err)
		return err
	}

	s.cron.Start()
	logger.Info("Reset token scheduler started successfully (hourly)", nil)

	return nil
}

func (s *ResetTokenScheduler) Stop() {
	logger.Info("Stopping reset token scheduler...", nil)
	s.cron.Stop()
	logger.Info("Reset token scheduler stopped", nil)
}
