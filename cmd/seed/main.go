package main

import (
	"context"
	"log"
	"time"

	"billsplit/internal/config"
	"billsplit/internal/database"
	"billsplit/internal/domain/activity"
	"billsplit/internal/domain/notification"
	jwtsvc "billsplit/internal/pkg/jwt"
	"billsplit/internal/realtime"
)

// Seeds a local database with demo notifications and activity events for
// users 1 and 2, and prints bearer tokens for poking the API.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := db.AutoMigrate(&notification.Notification{}, &activity.Activity{}); err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	// Seeding goes through the services so the data matches what the
	// triggers would produce; the hub has no connections, pushes go nowhere.
	hub := realtime.NewHub()
	notifService := notification.NewService(notification.NewRepository(db), hub)
	activityService := activity.NewService(activity.NewRepository(db), hub)

	if err := notifService.NotifyGroupInvite(ctx, 1, "Bob", "Ski trip", 10); err != nil {
		log.Fatal(err)
	}
	if err := notifService.NotifyExpenseAdded(ctx, 1, "Bob", "Lift tickets", 18000, 10, 100); err != nil {
		log.Fatal(err)
	}
	if err := notifService.NotifyPaymentReminder(ctx, 1, "Bob", 9000, 10, "reminder-10-1"); err != nil {
		log.Fatal(err)
	}
	if err := notifService.NotifySettlementRecorded(ctx, 1, 2, 9000, 10); err != nil {
		log.Fatal(err)
	}

	seedActivities := []struct {
		userID int64
		t      activity.Type
		meta   map[string]any
	}{
		{1, activity.TypeGroup, map[string]any{"group_id": 10, "name": "Ski trip"}},
		{1, activity.TypeExpense, map[string]any{"group_id": 10, "expense_id": 100, "amount_cents": 18000}},
		{1, activity.TypePayment, map[string]any{"group_id": 10, "amount_cents": 9000}},
		{2, activity.TypeMember, map[string]any{"group_id": 10, "user_id": 1}},
		{2, activity.TypeSettlement, map[string]any{"group_id": 10, "amount_cents": 9000}},
	}
	for _, s := range seedActivities {
		if _, err := activityService.Record(ctx, s.userID, s.t, s.meta, nil); err != nil {
			log.Fatal(err)
		}
	}

	j := jwtsvc.New(cfg.JWTSecret, 24*time.Hour)
	for _, userID := range []int64{1, 2} {
		token, err := j.GenerateToken(userID, "member")
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("Token for user %d: %s", userID, token)
	}

	log.Println("Seed complete")
}
