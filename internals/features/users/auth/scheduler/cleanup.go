package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"admissions_backend/internals/features/users/auth/service"
	"admissions_backend/internals/logger"
)

// TokenCleanupJob returns the cron job that purges expired blacklist rows and
// refresh tokens that expired or were revoked.
func TokenCleanupJob(db *gorm.DB) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		blacklisted, refresh, err := service.PurgeTokens(ctx, db, time.Now().UTC())
		if err != nil {
			logger.Error("[CLEANUP] token cleanup failed", zap.Error(err))
			return
		}
		logger.Info("[CLEANUP] tokens purged",
			zap.Int64("blacklist", blacklisted),
			zap.Int64("refresh_tokens", refresh))
	}
}
