package account

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/zhfeng1/OVH/internal/domain"
)

// setupTestDB creates an in-memory SQLite database with the account tables.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&domain.Account{}, &domain.EmailEvent{}, &domain.UsageRecord{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedAccount(t *testing.T, repo domain.AccountRepository, serviceID string) *domain.Account {
	t.Helper()
	account := &domain.Account{
		Name:      "Mail Pro EU",
		ServiceID: serviceID,
		Region:    "eu-west",
		Email:     "admin@mail-pro.example.com",
		Status:    domain.AccountStatusActive,
	}
	if err := repo.Create(context.Background(), account); err != nil {
		t.Fatalf("seed account %s: %v", serviceID, err)
	}
	return account
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		t.Fatalf("parse day %s: %v", s, err)
	}
	return d
}

func TestAccountCreateAndGetByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	account := seedAccount(t, repo, "mail-pro-eu-1")
	if account.ID == 0 {
		t.Fatal("expected non-zero ID after Create")
	}

	got, err := repo.GetByID(ctx, account.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "Mail Pro EU" || got.ServiceID != "mail-pro-eu-1" {
		t.Errorf("got %+v; want Name=Mail Pro EU, ServiceID=mail-pro-eu-1", got)
	}
}

func TestAccountGetByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db)

	_, err := repo.GetByID(context.Background(), 999)
	if !domain.IsNotFound(err) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAccountGetByServiceID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	seedAccount(t, repo, "mail-pro-ca-7")

	got, err := repo.GetByServiceID(ctx, "mail-pro-ca-7")
	if err != nil {
		t.Fatalf("GetByServiceID: %v", err)
	}
	if got.ServiceID != "mail-pro-ca-7" {
		t.Errorf("ServiceID=%q; want mail-pro-ca-7", got.ServiceID)
	}

	_, err = repo.GetByServiceID(ctx, "no-such-service")
	if !domain.IsNotFound(err) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAccountCreate_DuplicateServiceID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	seedAccount(t, repo, "mail-pro-dup")

	dup := &domain.Account{
		Name:      "Second",
		ServiceID: "mail-pro-dup",
		Region:    "eu-west",
		Email:     "other@example.com",
		Status:    domain.AccountStatusActive,
	}
	err := repo.Create(ctx, dup)
	if !domain.IsAlreadyExists(err) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestAccountUpdate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	account := seedAccount(t, repo, "mail-pro-eu-2")

	account.Status = domain.AccountStatusSuspended
	if err := repo.Update(ctx, account); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, _ := repo.GetByID(ctx, account.ID)
	if got.Status != domain.AccountStatusSuspended {
		t.Errorf("Status=%q; want suspended", got.Status)
	}
}

func TestAccountDelete_CascadesHistory(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	account := seedAccount(t, repo, "mail-pro-eu-3")

	event := &domain.EmailEvent{
		AccountID:  account.ID,
		MessageID:  "msg-1",
		Sender:     "noreply@mail-pro.example.com",
		Recipient:  "user@example.com",
		Status:     domain.EmailStatusSent,
		OccurredAt: time.Now().UTC(),
	}
	if err := repo.CreateEmailEvent(ctx, event); err != nil {
		t.Fatalf("CreateEmailEvent: %v", err)
	}
	record := &domain.UsageRecord{
		AccountID:    account.ID,
		Day:          day(t, "2026-08-01"),
		StorageBytes: 1024,
	}
	if err := repo.CreateUsageRecord(ctx, record); err != nil {
		t.Fatalf("CreateUsageRecord: %v", err)
	}

	if err := repo.Delete(ctx, account.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := repo.GetByID(ctx, account.ID); !domain.IsNotFound(err) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	var events int64
	db.Model(&domain.EmailEvent{}).Where("account_id = ?", account.ID).Count(&events)
	if events != 0 {
		t.Errorf("email events left after delete: %d", events)
	}
	var usage int64
	db.Model(&domain.UsageRecord{}).Where("account_id = ?", account.ID).Count(&usage)
	if usage != 0 {
		t.Errorf("usage records left after delete: %d", usage)
	}
}

func TestAccountDelete_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db)

	err := repo.Delete(context.Background(), 999)
	if !domain.IsNotFound(err) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAccountList_Basic(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		seedAccount(t, repo, fmt.Sprintf("mail-pro-list-%d", i))
	}

	result, err := repo.List(ctx, domain.PageRequest{
		Page:     1,
		PageSize: 3,
		Sort:     "id:asc",
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	if result.Total != 5 {
		t.Errorf("Total=%d; want 5", result.Total)
	}
	if len(result.Items) != 3 {
		t.Errorf("Items count=%d; want 3", len(result.Items))
	}
	if result.TotalPages != 2 {
		t.Errorf("TotalPages=%d; want 2", result.TotalPages)
	}
}

func TestAccountList_FilterByRegionAndStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	accounts := []domain.Account{
		{Name: "EU One", ServiceID: "svc-eu-1", Region: "eu-west", Email: "a@example.com", Status: domain.AccountStatusActive},
		{Name: "EU Two", ServiceID: "svc-eu-2", Region: "eu-west", Email: "b@example.com", Status: domain.AccountStatusSuspended},
		{Name: "CA One", ServiceID: "svc-ca-1", Region: "ca-east", Email: "c@example.com", Status: domain.AccountStatusActive},
	}
	for i := range accounts {
		if err := repo.Create(ctx, &accounts[i]); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	result, err := repo.List(ctx, domain.PageRequest{
		Page:     1,
		PageSize: 20,
		Sort:     "id:asc",
		Filter:   map[string]string{"region": "eu-west", "status": "active"},
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if result.Total != 1 {
		t.Errorf("Total=%d; want 1", result.Total)
	}
	if len(result.Items) != 1 || result.Items[0].ServiceID != "svc-eu-1" {
		t.Errorf("expected svc-eu-1, got %+v", result.Items)
	}
}

func TestListEmailEvents_ScopedToAccount(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	first := seedAccount(t, repo, "mail-pro-ev-1")
	second := seedAccount(t, repo, "mail-pro-ev-2")

	for i, accountID := range []uint{first.ID, first.ID, second.ID} {
		event := &domain.EmailEvent{
			AccountID:  accountID,
			MessageID:  fmt.Sprintf("msg-%d", i),
			Sender:     "noreply@mail-pro.example.com",
			Recipient:  "user@example.com",
			Status:     domain.EmailStatusSent,
			OccurredAt: time.Now().UTC(),
		}
		if err := repo.CreateEmailEvent(ctx, event); err != nil {
			t.Fatalf("CreateEmailEvent: %v", err)
		}
	}

	result, err := repo.ListEmailEvents(ctx, first.ID, domain.PageRequest{
		Page:     1,
		PageSize: 20,
		Sort:     "id:asc",
	}, domain.TimeWindow{})
	if err != nil {
		t.Fatalf("ListEmailEvents: %v", err)
	}
	if result.Total != 2 {
		t.Errorf("Total=%d; want 2", result.Total)
	}
	for _, ev := range result.Items {
		if ev.AccountID != first.ID {
			t.Errorf("event %d belongs to account %d; want %d", ev.ID, ev.AccountID, first.ID)
		}
	}
}

func TestListEmailEvents_FilterByStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	account := seedAccount(t, repo, "mail-pro-ev-3")

	statuses := []string{domain.EmailStatusSent, domain.EmailStatusBounced, domain.EmailStatusSent}
	for i, status := range statuses {
		event := &domain.EmailEvent{
			AccountID:  account.ID,
			MessageID:  fmt.Sprintf("msg-f-%d", i),
			Sender:     "noreply@mail-pro.example.com",
			Recipient:  "user@example.com",
			Status:     status,
			OccurredAt: time.Now().UTC(),
		}
		if err := repo.CreateEmailEvent(ctx, event); err != nil {
			t.Fatalf("CreateEmailEvent: %v", err)
		}
	}

	result, err := repo.ListEmailEvents(ctx, account.ID, domain.PageRequest{
		Page:     1,
		PageSize: 20,
		Sort:     "id:asc",
		Filter:   map[string]string{"status": domain.EmailStatusBounced},
	}, domain.TimeWindow{})
	if err != nil {
		t.Fatalf("ListEmailEvents: %v", err)
	}
	if result.Total != 1 {
		t.Errorf("Total=%d; want 1", result.Total)
	}
}

func TestListEmailEvents_FilterByMultipleStatuses(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	account := seedAccount(t, repo, "mail-pro-ev-6")

	statuses := []string{domain.EmailStatusSent, domain.EmailStatusBounced, domain.EmailStatusDeferred}
	for i, status := range statuses {
		event := &domain.EmailEvent{
			AccountID:  account.ID,
			MessageID:  fmt.Sprintf("msg-m-%d", i),
			Sender:     "noreply@mail-pro.example.com",
			Recipient:  "user@example.com",
			Status:     status,
			OccurredAt: time.Now().UTC(),
		}
		if err := repo.CreateEmailEvent(ctx, event); err != nil {
			t.Fatalf("CreateEmailEvent: %v", err)
		}
	}

	// status__in narrows to the problem statuses in one query.
	result, err := repo.ListEmailEvents(ctx, account.ID, domain.PageRequest{
		Page:     1,
		PageSize: 20,
		Sort:     "id:asc",
		Filter:   map[string]string{"status__in": domain.EmailStatusBounced + "," + domain.EmailStatusDeferred},
	}, domain.TimeWindow{})
	if err != nil {
		t.Fatalf("ListEmailEvents: %v", err)
	}
	if result.Total != 2 {
		t.Errorf("Total=%d; want 2", result.Total)
	}
	for _, item := range result.Items {
		if item.Status == domain.EmailStatusSent {
			t.Errorf("status__in let a %q event through: %+v", domain.EmailStatusSent, item)
		}
	}
}

func TestListEmailEvents_Pagination(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	account := seedAccount(t, repo, "mail-pro-ev-4")

	for i := 1; i <= 25; i++ {
		event := &domain.EmailEvent{
			AccountID:  account.ID,
			MessageID:  fmt.Sprintf("msg-p-%02d", i),
			Sender:     "noreply@mail-pro.example.com",
			Recipient:  "user@example.com",
			Status:     domain.EmailStatusSent,
			OccurredAt: time.Now().UTC(),
		}
		if err := repo.CreateEmailEvent(ctx, event); err != nil {
			t.Fatalf("CreateEmailEvent %d: %v", i, err)
		}
	}

	result, err := repo.ListEmailEvents(ctx, account.ID, domain.PageRequest{
		Page:     2,
		PageSize: 10,
		Sort:     "id:asc",
	}, domain.TimeWindow{})
	if err != nil {
		t.Fatalf("ListEmailEvents: %v", err)
	}
	if result.Total != 25 {
		t.Errorf("Total=%d; want 25", result.Total)
	}
	if len(result.Items) != 10 {
		t.Errorf("Items count=%d; want 10", len(result.Items))
	}
	if result.TotalPages != 3 {
		t.Errorf("TotalPages=%d; want 3", result.TotalPages)
	}
	if result.Items[0].MessageID != "msg-p-11" {
		t.Errorf("first item MessageID=%q; want msg-p-11", result.Items[0].MessageID)
	}
}

func TestListEmailEvents_TimeWindow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	account := seedAccount(t, repo, "mail-pro-ev-5")

	occurred := []string{"2026-08-01", "2026-08-10", "2026-08-15", "2026-08-20"}
	for i, d := range occurred {
		event := &domain.EmailEvent{
			AccountID:  account.ID,
			MessageID:  fmt.Sprintf("msg-w-%d", i),
			Sender:     "noreply@mail-pro.example.com",
			Recipient:  "user@example.com",
			Status:     domain.EmailStatusSent,
			OccurredAt: day(t, d),
		}
		if err := repo.CreateEmailEvent(ctx, event); err != nil {
			t.Fatalf("CreateEmailEvent %s: %v", d, err)
		}
	}

	// Half-open window: Aug 10 is in, Aug 20 is out.
	window := domain.TimeWindow{From: day(t, "2026-08-10"), To: day(t, "2026-08-20")}
	result, err := repo.ListEmailEvents(ctx, account.ID, domain.PageRequest{
		Page:     1,
		PageSize: 20,
		Sort:     "occurred_at:asc",
	}, window)
	if err != nil {
		t.Fatalf("ListEmailEvents: %v", err)
	}
	if result.Total != 2 {
		t.Fatalf("Total=%d; want 2", result.Total)
	}
	if result.Items[0].MessageID != "msg-w-1" || result.Items[1].MessageID != "msg-w-2" {
		t.Errorf("expected [msg-w-1 msg-w-2], got %+v", result.Items)
	}
}

func TestCreateUsageRecord_DuplicateDay(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	account := seedAccount(t, repo, "mail-pro-us-1")

	first := &domain.UsageRecord{AccountID: account.ID, Day: day(t, "2026-08-10"), StorageBytes: 10}
	if err := repo.CreateUsageRecord(ctx, first); err != nil {
		t.Fatalf("first CreateUsageRecord: %v", err)
	}

	second := &domain.UsageRecord{AccountID: account.ID, Day: day(t, "2026-08-10"), StorageBytes: 20}
	err := repo.CreateUsageRecord(ctx, second)
	if !domain.IsAlreadyExists(err) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestSummarizeUsage_WindowBoundary(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	account := seedAccount(t, repo, "mail-pro-us-2")

	rows := []struct {
		day     string
		storage int64
		traffic int64
		sent    int64
	}{
		{"2026-08-01", 100, 10, 1}, // before the window
		{"2026-08-10", 200, 20, 2}, // window start, inclusive
		{"2026-08-15", 300, 30, 3},
	}
	for _, row := range rows {
		record := &domain.UsageRecord{
			AccountID:    account.ID,
			Day:          day(t, row.day),
			StorageBytes: row.storage,
			TrafficBytes: row.traffic,
			MessagesSent: row.sent,
		}
		if err := repo.CreateUsageRecord(ctx, record); err != nil {
			t.Fatalf("CreateUsageRecord %s: %v", row.day, err)
		}
	}

	summary, err := repo.SummarizeUsage(ctx, account.ID, day(t, "2026-08-10"))
	if err != nil {
		t.Fatalf("SummarizeUsage: %v", err)
	}
	if summary.StorageBytes != 500 {
		t.Errorf("StorageBytes=%d; want 500", summary.StorageBytes)
	}
	if summary.TrafficBytes != 50 {
		t.Errorf("TrafficBytes=%d; want 50", summary.TrafficBytes)
	}
	if summary.MessagesSent != 5 {
		t.Errorf("MessagesSent=%d; want 5", summary.MessagesSent)
	}
	if summary.AccountID != account.ID {
		t.Errorf("AccountID=%d; want %d", summary.AccountID, account.ID)
	}
}

func TestSummarizeUsage_NoRows(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	account := seedAccount(t, repo, "mail-pro-us-3")

	summary, err := repo.SummarizeUsage(ctx, account.ID, day(t, "2026-01-01"))
	if err != nil {
		t.Fatalf("SummarizeUsage: %v", err)
	}
	if summary.StorageBytes != 0 || summary.TrafficBytes != 0 || summary.MessagesSent != 0 {
		t.Errorf("expected zero counters, got %+v", summary)
	}
}

func TestSummarizeUsage_ScopedToAccount(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	first := seedAccount(t, repo, "mail-pro-us-4")
	second := seedAccount(t, repo, "mail-pro-us-5")

	for _, rec := range []domain.UsageRecord{
		{AccountID: first.ID, Day: day(t, "2026-08-10"), StorageBytes: 111},
		{AccountID: second.ID, Day: day(t, "2026-08-10"), StorageBytes: 999},
	} {
		rec := rec
		if err := repo.CreateUsageRecord(ctx, &rec); err != nil {
			t.Fatalf("CreateUsageRecord: %v", err)
		}
	}

	summary, err := repo.SummarizeUsage(ctx, first.ID, day(t, "2026-08-01"))
	if err != nil {
		t.Fatalf("SummarizeUsage: %v", err)
	}
	if summary.StorageBytes != 111 {
		t.Errorf("StorageBytes=%d; want 111 (other account's rows must not leak)", summary.StorageBytes)
	}
}
