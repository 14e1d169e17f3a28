package domain

import (
	"context"
	"time"

	"github.com/docker/go-units"
)

// Account lifecycle statuses.
const (
	AccountStatusActive    = "active"
	AccountStatusSuspended = "suspended"
	AccountStatusClosed    = "closed"
)

// Email delivery statuses.
const (
	EmailStatusSent     = "sent"
	EmailStatusBounced  = "bounced"
	EmailStatusDeferred = "deferred"
)

// Account represents an OVH-hosted account tracked by the console.
// ServiceID is the provider-side service identifier and never changes
// after creation.
type Account struct {
	BaseModel
	Name      string `gorm:"size:100;not null" json:"name"`
	ServiceID string `gorm:"size:64;uniqueIndex;not null" json:"service_id"`
	Region    string `gorm:"size:32;not null" json:"region"`
	Email     string `gorm:"size:255;not null" json:"email"`
	Status    string `gorm:"size:16;not null;default:active" json:"status"`
}

// EmailEvent is one entry in an account's email delivery history,
// as reported by the relay.
type EmailEvent struct {
	BaseModel
	AccountID  uint      `gorm:"index;not null" json:"account_id"`
	MessageID  string    `gorm:"size:128;not null" json:"message_id"`
	Sender     string    `gorm:"size:255;not null" json:"sender"`
	Recipient  string    `gorm:"size:255;not null" json:"recipient"`
	Subject    string    `gorm:"size:255" json:"subject"`
	Status     string    `gorm:"size:16;not null" json:"status"`
	OccurredAt time.Time `gorm:"index;not null" json:"occurred_at"`
}

// UsageRecord is one day of resource consumption for an account.
// One row per account per day.
type UsageRecord struct {
	BaseModel
	AccountID    uint      `gorm:"not null;uniqueIndex:idx_usage_account_day" json:"account_id"`
	Day          time.Time `gorm:"not null;uniqueIndex:idx_usage_account_day" json:"day"`
	StorageBytes int64     `gorm:"not null" json:"storage_bytes"`
	TrafficBytes int64     `gorm:"not null" json:"traffic_bytes"`
	MessagesSent int64     `gorm:"not null" json:"messages_sent"`
}

// UsageSummary aggregates usage records over a reporting window.
// Storage and Traffic carry the human-readable forms of the byte counters.
type UsageSummary struct {
	AccountID    uint   `json:"account_id"`
	Days         int    `json:"days"`
	StorageBytes int64  `json:"storage_bytes"`
	TrafficBytes int64  `json:"traffic_bytes"`
	MessagesSent int64  `json:"messages_sent"`
	Storage      string `json:"storage"`
	Traffic      string `json:"traffic"`
}

// Humanize fills Storage and Traffic from the byte counters.
func (s *UsageSummary) Humanize() {
	s.Storage = units.HumanSize(float64(s.StorageBytes))
	s.Traffic = units.HumanSize(float64(s.TrafficBytes))
}

// ValidAccountStatus reports whether s is a known account status.
func ValidAccountStatus(s string) bool {
	switch s {
	case AccountStatusActive, AccountStatusSuspended, AccountStatusClosed:
		return true
	}
	return false
}

// ValidEmailStatus reports whether s is a known email delivery status.
func ValidEmailStatus(s string) bool {
	switch s {
	case EmailStatusSent, EmailStatusBounced, EmailStatusDeferred:
		return true
	}
	return false
}

// AccountRepository defines the data access interface for accounts and
// their email and usage history.
type AccountRepository interface {
	Create(ctx context.Context, account *Account) error
	GetByID(ctx context.Context, id uint) (*Account, error)
	GetByServiceID(ctx context.Context, serviceID string) (*Account, error)
	List(ctx context.Context, req PageRequest) (*PageResult[Account], error)
	Update(ctx context.Context, account *Account) error
	Delete(ctx context.Context, id uint) error

	CreateEmailEvent(ctx context.Context, event *EmailEvent) error
	ListEmailEvents(ctx context.Context, accountID uint, req PageRequest, window TimeWindow) (*PageResult[EmailEvent], error)

	CreateUsageRecord(ctx context.Context, record *UsageRecord) error
	SummarizeUsage(ctx context.Context, accountID uint, since time.Time) (*UsageSummary, error)
}

// AccountService defines the business logic interface for accounts.
type AccountService interface {
	CreateAccount(ctx context.Context, name, serviceID, region, email string) (*Account, error)
	GetAccount(ctx context.Context, id uint) (*Account, error)
	ListAccounts(ctx context.Context, req PageRequest) (*PageResult[Account], error)
	UpdateAccount(ctx context.Context, id uint, name, email, status string) (*Account, error)
	DeleteAccount(ctx context.Context, id uint) error

	RecordEmailEvent(ctx context.Context, accountID uint, event *EmailEvent) (*EmailEvent, error)
	ListEmailHistory(ctx context.Context, accountID uint, req PageRequest, window TimeWindow) (*PageResult[EmailEvent], error)

	RecordUsage(ctx context.Context, accountID uint, day time.Time, storageBytes, trafficBytes, messagesSent int64) (*UsageRecord, error)
	SummarizeUsage(ctx context.Context, accountID uint, days int) (*UsageSummary, error)
}
