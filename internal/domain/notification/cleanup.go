package notification

import (
	"context"
	"log"
	"time"
)

// CleanupService removes read notifications past the retention window.
// Unread notifications survive regardless of age.
type CleanupService struct {
	repo *Repository
}

func NewCleanupService(repo *Repository) *CleanupService {
	return &CleanupService{repo: repo}
}

func (c *CleanupService) CleanupOldNotifications(ctx context.Context, daysToKeep int) error {
	start := time.Now()
	cutoff := time.Now().AddDate(0, 0, -daysToKeep)

	deleted, err := c.repo.DeleteReadOlderThan(ctx, cutoff)
	if err != nil {
		log.Printf("notification_cleanup_failed err=%v", err)
		return err
	}

	log.Printf("notification_cleanup deleted=%d days_kept=%d took=%s", deleted, daysToKeep, time.Since(start))
	return nil
}
