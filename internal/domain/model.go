package domain

import "time"

// BaseModel is the common base struct for all domain models.
// It replaces gorm.Model to avoid the implicit soft delete behavior of DeletedAt.
type BaseModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PageRequest holds pagination, sorting, and filtering parameters.
type PageRequest struct {
	Page     int
	PageSize int
	Sort     string
	Filter   map[string]string
}

// PageResult is one page of items together with paging metadata.
type PageResult[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// TimeWindow is a half-open interval [From, To). A zero bound leaves that
// side unconstrained.
type TimeWindow struct {
	From time.Time
	To   time.Time
}

// IsZero reports whether both bounds are unset.
func (w TimeWindow) IsZero() bool {
	return w.From.IsZero() && w.To.IsZero()
}

// Valid reports whether the bounds are ordered. Windows with an unset bound
// are always valid.
func (w TimeWindow) Valid() bool {
	if w.From.IsZero() || w.To.IsZero() {
		return true
	}
	return !w.From.After(w.To)
}
