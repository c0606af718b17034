package main

import (
	"context"
	"log"
	"time"

	"billsplit/internal/config"
	"billsplit/internal/database"
	"billsplit/internal/domain/notification"
)

// Retention job, meant to run from cron. Deletes read notifications older
// than NOTIFICATION_RETENTION_DAYS.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cleanup := notification.NewCleanupService(notification.NewRepository(db))
	if err := cleanup.CleanupOldNotifications(ctx, cfg.RetentionDays); err != nil {
		log.Fatal(err)
	}
}
