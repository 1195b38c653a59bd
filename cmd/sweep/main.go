package main

import (
	"context"
	"log"
	"os"
	"time"

	"bookxe/internal/config"
	"bookxe/internal/database"
	"bookxe/internal/modules/booking"
	"bookxe/internal/modules/notification"
	"bookxe/internal/repository"
)

// One-shot expiry sweep for cron-style scheduling.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	notifications := notification.NewService(repository.NewNotificationRepository(db))
	svc := booking.NewService(repository.NewBookingRepository(db), notifications)
	res := booking.NewSweeper(svc, cfg.SweepInterval).RunSweep(ctx)

	for _, err := range res.Errors {
		log.Printf("sweep error: %v", err)
	}
	log.Printf("expiry sweep completed: cancelled=%d skipped=%d errors=%d", res.CancelledCount, res.Skipped, len(res.Errors))
	if len(res.Errors) > 0 {
		os.Exit(1)
	}
}
