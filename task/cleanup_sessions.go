package tasks

import (
	"context"
	"log"
	"time"

	"lottery/models"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

func CleanupExpiredSessions(ctx context.Context, db *gorm.DB) (int64, error) {
	result := db.WithContext(ctx).
		Where("expires_at <= ?", time.Now()).
		Delete(&models.Session{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "delete expired sessions")
	}
	return result.RowsAffected, nil
}

func StartSessionCleanup(ctx context.Context, db *gorm.DB, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := CleanupExpiredSessions(ctx, db)
				if err != nil {
					log.Println("❌ Failed to delete expired sessions:", err)
				} else {
					log.Printf("✅ Deleted %d expired sessions\n", n)
				}
			}
		}
	}()
}
