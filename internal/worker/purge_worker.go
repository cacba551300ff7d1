package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/wavemax/affiliate-program/internal/repository"
)

// StartPurgeWorker deletes revoked-token rows a fixed retention window after
// creation, regardless of the token's own expiry. Runs until ctx is done.
func StartPurgeWorker(ctx context.Context, repo repository.RevokedTokenRepository, retention, interval time.Duration, logger *zap.Logger) {
	if repo == nil {
		return
	}
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cutoff := time.Now().Add(-retention)
				deleted, err := repo.DeleteRevokedBefore(ctx, cutoff)
				if err != nil {
					logger.Error("revoked token purge failed", zap.Error(err))
					continue
				}
				if deleted > 0 {
					logger.Info("purged revoked tokens", zap.Int64("count", deleted))
				}
			}
		}
	}()
}
