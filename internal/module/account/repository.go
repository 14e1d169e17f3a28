package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/zhfeng1/OVH/internal/domain"
	"github.com/zhfeng1/OVH/internal/pkg"
)

// Allowed fields for sorting and filtering in List queries.
var (
	accountSortFields   = []string{"id", "name", "service_id", "region", "status", "created_at", "updated_at"}
	accountFilterFields = []string{"name", "service_id", "region", "email", "status"}

	eventSortFields   = []string{"id", "occurred_at", "status", "recipient"}
	eventFilterFields = []string{"status", "sender", "recipient", "message_id"}
)

// accountRepository implements domain.AccountRepository using GORM.
type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new AccountRepository backed by the given GORM database.
func NewAccountRepository(db *gorm.DB) domain.AccountRepository {
	return &accountRepository{db: db}
}

// Create inserts a new account into the database.
func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		return mapError(err)
	}
	return nil
}

// GetByID retrieves an account by its primary key.
func (r *accountRepository) GetByID(ctx context.Context, id uint) (*domain.Account, error) {
	var account domain.Account
	if err := r.db.WithContext(ctx).First(&account, id).Error; err != nil {
		return nil, mapError(err)
	}
	return &account, nil
}

// GetByServiceID retrieves an account by its provider-side service identifier.
func (r *accountRepository) GetByServiceID(ctx context.Context, serviceID string) (*domain.Account, error) {
	var account domain.Account
	if err := r.db.WithContext(ctx).Where("service_id = ?", serviceID).First(&account).Error; err != nil {
		return nil, mapError(err)
	}
	return &account, nil
}

// List returns a paginated, sorted, and filtered list of accounts.
func (r *accountRepository) List(ctx context.Context, req domain.PageRequest) (*domain.PageResult[domain.Account], error) {
	base := r.db.WithContext(ctx).Model(&domain.Account{}).
		Scopes(pkg.Filter(req, accountFilterFields))

	result, err := pkg.QueryPage[domain.Account](base, req, accountSortFields)
	if err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

// Update saves changes to an existing account.
func (r *accountRepository) Update(ctx context.Context, account *domain.Account) error {
	if err := r.db.WithContext(ctx).Save(account).Error; err != nil {
		return mapError(err)
	}
	return nil
}

// Delete removes an account together with its email and usage history.
// All rows go in one transaction so a failed delete leaves the history intact.
func (r *accountRepository) Delete(ctx context.Context, id uint) error {
	return pkg.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		result := tx.Delete(&domain.Account{}, id)
		if result.Error != nil {
			return mapError(result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		if err := tx.Where("account_id = ?", id).Delete(&domain.EmailEvent{}).Error; err != nil {
			return mapError(err)
		}
		if err := tx.Where("account_id = ?", id).Delete(&domain.UsageRecord{}).Error; err != nil {
			return mapError(err)
		}
		return nil
	})
}

// CreateEmailEvent inserts a new email delivery event.
func (r *accountRepository) CreateEmailEvent(ctx context.Context, event *domain.EmailEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return mapError(err)
	}
	return nil
}

// ListEmailEvents returns a paginated list of delivery events for one account,
// constrained to the given window on occurred_at.
func (r *accountRepository) ListEmailEvents(ctx context.Context, accountID uint, req domain.PageRequest, window domain.TimeWindow) (*domain.PageResult[domain.EmailEvent], error) {
	base := r.db.WithContext(ctx).Model(&domain.EmailEvent{}).
		Where("account_id = ?", accountID).
		Scopes(pkg.Filter(req, eventFilterFields), pkg.TimeRange("occurred_at", window))

	result, err := pkg.QueryPage[domain.EmailEvent](base, req, eventSortFields)
	if err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

// CreateUsageRecord inserts one day of usage. The unique index on
// (account_id, day) rejects a second row for the same day.
func (r *accountRepository) CreateUsageRecord(ctx context.Context, record *domain.UsageRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return mapError(err)
	}
	return nil
}

// SummarizeUsage sums the usage counters for one account over all days
// from since onward. Missing rows count as zero.
func (r *accountRepository) SummarizeUsage(ctx context.Context, accountID uint, since time.Time) (*domain.UsageSummary, error) {
	var row struct {
		StorageBytes int64
		TrafficBytes int64
		MessagesSent int64
	}
	err := r.db.WithContext(ctx).Model(&domain.UsageRecord{}).
		Select("COALESCE(SUM(storage_bytes), 0) AS storage_bytes, COALESCE(SUM(traffic_bytes), 0) AS traffic_bytes, COALESCE(SUM(messages_sent), 0) AS messages_sent").
		Where("account_id = ? AND day >= ?", accountID, since).
		Scan(&row).Error
	if err != nil {
		return nil, mapError(err)
	}

	return &domain.UsageSummary{
		AccountID:    accountID,
		StorageBytes: row.StorageBytes,
		TrafficBytes: row.TrafficBytes,
		MessagesSent: row.MessagesSent,
	}, nil
}

// mapError converts GORM errors to domain errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicateKeyError(err) {
		return domain.NewAppError(domain.CodeAlreadyExists, "already exists", err)
	}
	return domain.NewAppError(domain.CodeInternal, "database error", err)
}

// isDuplicateKeyError detects unique constraint violations by examining the
// error message. This is needed because not all GORM dialectors translate
// driver-level errors to gorm.ErrDuplicatedKey (e.g. the pure-Go SQLite driver).
func isDuplicateKeyError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}
