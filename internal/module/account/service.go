package account

import (
	"context"
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/zhfeng1/OVH/internal/domain"
)

// Usage summary window bounds, in days.
const (
	minSummaryDays = 1
	maxSummaryDays = 365
)

// validServiceID matches provider-side service identifiers such as
// "mail-pro-eu-421": lowercase alphanumerics and dashes, 3 to 64 characters.
var validServiceID = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{2,63}$`)

// accountService implements domain.AccountService.
type accountService struct {
	repo domain.AccountRepository
}

// NewAccountService creates a new AccountService with the given repository.
func NewAccountService(repo domain.AccountRepository) domain.AccountService {
	return &accountService{repo: repo}
}

// CreateAccount validates input, builds an Account in the active status,
// and persists it via the repository.
func (s *accountService) CreateAccount(ctx context.Context, name, serviceID, region, email string) (*domain.Account, error) {
	name = strings.TrimSpace(name)
	serviceID = strings.TrimSpace(serviceID)
	region = strings.TrimSpace(region)
	email = strings.TrimSpace(email)

	if err := validateNameEmail(name, email); err != nil {
		return nil, err
	}
	if !validServiceID.MatchString(serviceID) {
		return nil, domain.NewAppError(domain.CodeValidation, "service_id must be 3-64 lowercase alphanumerics or dashes", nil)
	}
	if region == "" {
		return nil, domain.NewAppError(domain.CodeValidation, "region is required", nil)
	}
	if utf8.RuneCountInString(region) > 32 {
		return nil, domain.NewAppError(domain.CodeValidation, "region must be at most 32 characters", nil)
	}

	account := &domain.Account{
		Name:      name,
		ServiceID: serviceID,
		Region:    region,
		Email:     email,
		Status:    domain.AccountStatusActive,
	}

	if err := s.repo.Create(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// GetAccount retrieves an account by ID.
func (s *accountService) GetAccount(ctx context.Context, id uint) (*domain.Account, error) {
	return s.repo.GetByID(ctx, id)
}

// ListAccounts returns a paginated list of accounts.
func (s *accountService) ListAccounts(ctx context.Context, req domain.PageRequest) (*domain.PageResult[domain.Account], error) {
	return s.repo.List(ctx, req)
}

// UpdateAccount loads the existing account, applies changes, and persists them.
// The service ID never changes.
func (s *accountService) UpdateAccount(ctx context.Context, id uint, name, email, status string) (*domain.Account, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	status = strings.TrimSpace(status)

	if err := validateNameEmail(name, email); err != nil {
		return nil, err
	}
	if !domain.ValidAccountStatus(status) {
		return nil, domain.NewAppError(domain.CodeValidation, "status must be one of: active, suspended, closed", nil)
	}

	account, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	account.Name = name
	account.Email = email
	account.Status = status

	if err := s.repo.Update(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// DeleteAccount removes an account and its history by ID.
func (s *accountService) DeleteAccount(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

// RecordEmailEvent validates and stores one relay-reported delivery event
// for the given account. A zero OccurredAt is filled with the current time.
func (s *accountService) RecordEmailEvent(ctx context.Context, accountID uint, event *domain.EmailEvent) (*domain.EmailEvent, error) {
	if _, err := s.repo.GetByID(ctx, accountID); err != nil {
		return nil, err
	}

	event.MessageID = strings.TrimSpace(event.MessageID)
	event.Sender = strings.TrimSpace(event.Sender)
	event.Recipient = strings.TrimSpace(event.Recipient)

	if event.MessageID == "" {
		return nil, domain.NewAppError(domain.CodeValidation, "message_id is required", nil)
	}
	if utf8.RuneCountInString(event.MessageID) > 128 {
		return nil, domain.NewAppError(domain.CodeValidation, "message_id must be at most 128 characters", nil)
	}
	if _, err := mail.ParseAddress(event.Sender); err != nil {
		return nil, domain.NewAppError(domain.CodeValidation, "sender must be a valid email address", nil)
	}
	if _, err := mail.ParseAddress(event.Recipient); err != nil {
		return nil, domain.NewAppError(domain.CodeValidation, "recipient must be a valid email address", nil)
	}
	if !domain.ValidEmailStatus(event.Status) {
		return nil, domain.NewAppError(domain.CodeValidation, "status must be one of: sent, bounced, deferred", nil)
	}

	event.AccountID = accountID
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	if err := s.repo.CreateEmailEvent(ctx, event); err != nil {
		return nil, err
	}

	return event, nil
}

// ListEmailHistory returns a paginated list of delivery events for one
// account, optionally constrained to a time window on OccurredAt.
// Returns not-found when the account does not exist.
func (s *accountService) ListEmailHistory(ctx context.Context, accountID uint, req domain.PageRequest, window domain.TimeWindow) (*domain.PageResult[domain.EmailEvent], error) {
	if !window.Valid() {
		return nil, domain.NewAppError(domain.CodeValidation, "from must not be after to", nil)
	}
	if _, err := s.repo.GetByID(ctx, accountID); err != nil {
		return nil, err
	}
	return s.repo.ListEmailEvents(ctx, accountID, req, window)
}

// RecordUsage stores one day of usage counters for the given account.
// The day is normalized to midnight UTC; a second record for the same day
// is rejected as already existing.
func (s *accountService) RecordUsage(ctx context.Context, accountID uint, day time.Time, storageBytes, trafficBytes, messagesSent int64) (*domain.UsageRecord, error) {
	if _, err := s.repo.GetByID(ctx, accountID); err != nil {
		return nil, err
	}

	if day.IsZero() {
		return nil, domain.NewAppError(domain.CodeValidation, "day is required", nil)
	}
	if storageBytes < 0 || trafficBytes < 0 || messagesSent < 0 {
		return nil, domain.NewAppError(domain.CodeValidation, "usage counters must not be negative", nil)
	}

	record := &domain.UsageRecord{
		AccountID:    accountID,
		Day:          startOfDay(day),
		StorageBytes: storageBytes,
		TrafficBytes: trafficBytes,
		MessagesSent: messagesSent,
	}

	if err := s.repo.CreateUsageRecord(ctx, record); err != nil {
		return nil, err
	}

	return record, nil
}

// SummarizeUsage aggregates the last days of usage, today included,
// and fills in the human-readable storage and traffic sizes.
func (s *accountService) SummarizeUsage(ctx context.Context, accountID uint, days int) (*domain.UsageSummary, error) {
	if _, err := s.repo.GetByID(ctx, accountID); err != nil {
		return nil, err
	}

	if days < minSummaryDays || days > maxSummaryDays {
		return nil, domain.NewAppError(domain.CodeValidation, "days must be between 1 and 365", nil)
	}

	since := startOfDay(time.Now().UTC()).AddDate(0, 0, -(days - 1))

	summary, err := s.repo.SummarizeUsage(ctx, accountID, since)
	if err != nil {
		return nil, err
	}

	summary.Days = days
	summary.Humanize()
	return summary, nil
}

// startOfDay truncates t to midnight UTC.
func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// validateNameEmail checks the shared name and email constraints.
func validateNameEmail(name, email string) error {
	if name == "" {
		return domain.NewAppError(domain.CodeValidation, "name is required", nil)
	}
	if utf8.RuneCountInString(name) < 2 {
		return domain.NewAppError(domain.CodeValidation, "name must be at least 2 characters", nil)
	}
	if utf8.RuneCountInString(name) > 100 {
		return domain.NewAppError(domain.CodeValidation, "name must be at most 100 characters", nil)
	}

	if email == "" {
		return domain.NewAppError(domain.CodeValidation, "email is required", nil)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.NewAppError(domain.CodeValidation, "email must be a valid email address", nil)
	}
	return nil
}
