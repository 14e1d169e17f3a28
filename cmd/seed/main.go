package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/zhfeng1/OVH/internal/config"
	"github.com/zhfeng1/OVH/internal/domain"
	"github.com/zhfeng1/OVH/internal/module/account"
)

var seedRegions = []string{"eu-west", "eu-central", "ca-east"}

// Weighted so most events are deliveries.
var seedStatuses = []string{
	domain.EmailStatusSent,
	domain.EmailStatusSent,
	domain.EmailStatusSent,
	domain.EmailStatusDeferred,
	domain.EmailStatusBounced,
}

var seedSubjects = []string{
	"Welcome to your mailbox",
	"Your invoice is ready",
	"Password reset request",
	"Weekly digest",
}

// Populates the database with demo accounts, email events, and usage
// history. Reuses the application's repositories so seeded rows match
// what the API writes.
func main() {
	var (
		configPath = flag.String("config", "configs/config.yaml", "path to configuration file")
		accounts   = flag.Int("accounts", 5, "number of accounts to create")
		events     = flag.Int("events", 20, "email events per account")
		days       = flag.Int("days", 30, "days of usage history per account")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}

	appLogger, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		log.Fatal("failed to setup logger: ", err)
	}
	defer appLogger.Close()

	db, err := config.SetupDatabase(&cfg.Database, appLogger.Logger)
	if err != nil {
		log.Fatal("failed to setup database: ", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	if err := db.AutoMigrate(&domain.Account{}, &domain.EmailEvent{}, &domain.UsageRecord{}, &domain.User{}); err != nil {
		log.Fatal("auto migrate: ", err)
	}

	repo := account.NewAccountRepository(db)
	if err := seed(context.Background(), repo, *accounts, *events, *days); err != nil {
		log.Fatal("seeding failed: ", err)
	}

	fmt.Printf("seeded %d accounts with %d email events and %d days of usage each\n", *accounts, *events, *days)
}

func seed(ctx context.Context, repo domain.AccountRepository, accounts, events, days int) error {
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	for i := 1; i <= accounts; i++ {
		acct := &domain.Account{
			Name:      fmt.Sprintf("Mail Pro %02d", i),
			ServiceID: "mail-pro-" + uuid.NewString()[:8],
			Region:    seedRegions[(i-1)%len(seedRegions)],
			Email:     fmt.Sprintf("admin%02d@mail-pro.example.com", i),
			Status:    domain.AccountStatusActive,
		}
		if i%5 == 0 {
			acct.Status = domain.AccountStatusSuspended
		}
		if err := repo.Create(ctx, acct); err != nil {
			return fmt.Errorf("create account %s: %w", acct.ServiceID, err)
		}

		for j := 0; j < events; j++ {
			event := &domain.EmailEvent{
				AccountID:  acct.ID,
				MessageID:  uuid.NewString(),
				Sender:     "noreply@mail-pro.example.com",
				Recipient:  fmt.Sprintf("user%02d@example.com", j%25),
				Subject:    seedSubjects[j%len(seedSubjects)],
				Status:     seedStatuses[j%len(seedStatuses)],
				OccurredAt: now.Add(-time.Duration(j) * time.Hour),
			}
			if err := repo.CreateEmailEvent(ctx, event); err != nil {
				return fmt.Errorf("create email event for %s: %w", acct.ServiceID, err)
			}
		}

		for d := 0; d < days; d++ {
			record := &domain.UsageRecord{
				AccountID:    acct.ID,
				Day:          today.AddDate(0, 0, -d),
				StorageBytes: 2_000_000_000 + int64(i)*150_000_000 + int64(days-d)*50_000_000,
				TrafficBytes: 100_000_000 + int64((d*37)%200)*1_000_000,
				MessagesSent: 40 + int64((d*13)%60),
			}
			if err := repo.CreateUsageRecord(ctx, record); err != nil {
				return fmt.Errorf("create usage record for %s: %w", acct.ServiceID, err)
			}
		}

		fmt.Printf("seeded account %s (id=%d, region=%s)\n", acct.ServiceID, acct.ID, acct.Region)
	}

	return nil
}
