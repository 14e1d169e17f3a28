package pkg

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/zhfeng1/OVH/internal/domain"
	"gorm.io/gorm"
)

const (
	defaultPage     = 1
	defaultPageSize = 20
	maxPageSize     = 100
	defaultSort     = "id:desc"
)

// reservedParams lists query parameter names with fixed meanings on listing
// endpoints. They never become filter conditions: page/page_size/sort drive
// the page shape, from/to drive the time window.
var reservedParams = map[string]bool{
	"page":      true,
	"page_size": true,
	"sort":      true,
	"from":      true,
	"to":        true,
}

// validFieldName matches only alphanumeric characters and underscores.
var validFieldName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ParsePageRequest extracts pagination, sorting, and filtering parameters from query params.
func ParsePageRequest(c *gin.Context) domain.PageRequest {
	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(defaultPage)))
	if page < 1 {
		page = defaultPage
	}

	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	sort := c.DefaultQuery("sort", defaultSort)

	filter := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if reservedParams[key] {
			continue
		}
		if len(values) > 0 && values[0] != "" {
			filter[key] = values[0]
		}
	}

	return domain.PageRequest{
		Page:     page,
		PageSize: pageSize,
		Sort:     sort,
		Filter:   filter,
	}
}

// Paginate returns a GORM scope that applies LIMIT and OFFSET based on the
// page request. Out-of-range values are clamped the same way
// ParsePageRequest clamps them; a hand-built request therefore cannot
// cancel the limit (GORM reads a negative limit as "no limit").
func Paginate(req domain.PageRequest) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		page := req.Page
		if page < 1 {
			page = defaultPage
		}
		size := req.PageSize
		if size < 1 {
			size = defaultPageSize
		}
		if size > maxPageSize {
			size = maxPageSize
		}
		return db.Offset((page - 1) * size).Limit(size)
	}
}

// Sort returns a GORM scope that applies ORDER BY based on the page request.
// The sort expression is a comma-separated list of field:direction keys, for
// example "region:asc,name:asc". Only field names present in the allowed list
// are accepted; invalid keys are silently ignored.
// Field names are validated against a strict pattern to prevent SQL injection.
func Sort(req domain.PageRequest, allowed []string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, key := range strings.Split(req.Sort, ",") {
			parts := strings.SplitN(key, ":", 2)
			if len(parts) != 2 {
				continue
			}

			field := strings.TrimSpace(parts[0])
			direction := strings.TrimSpace(strings.ToLower(parts[1]))

			if direction != "asc" && direction != "desc" {
				continue
			}

			if !validFieldName.MatchString(field) {
				continue
			}

			if !isAllowed(field, allowed) {
				continue
			}

			db = db.Order(field + " " + direction)
		}
		return db
	}
}

// Filter returns a GORM scope that applies WHERE conditions based on the
// page request filters. Only keys whose field is in the allowed list are
// applied; others are silently ignored. A key's suffix selects the operator:
//
//	name__like=mail          name LIKE '%mail%'
//	status__in=sent,bounced  status IN ('sent','bounced')
//	region=eu-west           region = 'eu-west'
//
// Field names are validated against a strict pattern to prevent SQL injection.
func Filter(req domain.PageRequest, allowed []string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for key, value := range req.Filter {
			field, op := splitFilterKey(key)
			if !validFieldName.MatchString(field) {
				continue
			}
			if !isAllowed(field, allowed) {
				continue
			}

			switch op {
			case "like":
				db = db.Where(field+" LIKE ?", "%"+value+"%")
			case "in":
				if values := splitFilterValues(value); len(values) > 0 {
					db = db.Where(field+" IN ?", values)
				}
			default:
				db = db.Where(field+" = ?", value)
			}
		}
		return db
	}
}

// splitFilterKey splits "status__in" into ("status", "in"). Keys without a
// recognized operator suffix mean exact match.
func splitFilterKey(key string) (field, op string) {
	for _, suffix := range []string{"__like", "__in"} {
		if strings.HasSuffix(key, suffix) {
			return strings.TrimSuffix(key, suffix), strings.TrimPrefix(suffix, "__")
		}
	}
	return key, ""
}

// splitFilterValues splits a comma-separated filter value, dropping blank
// entries so "sent,,bounced" and "sent,bounced" filter identically.
func splitFilterValues(value string) []string {
	var out []string
	for _, p := range strings.Split(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// TimeRange returns a GORM scope constraining column to the half-open
// window [From, To). Zero bounds are skipped, so callers can pass a window
// open on either side. The column name is validated against the same strict
// pattern as sort and filter fields; an invalid name leaves the query unchanged.
func TimeRange(column string, window domain.TimeWindow) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if window.IsZero() || !validFieldName.MatchString(column) {
			return db
		}
		if !window.From.IsZero() {
			db = db.Where(column+" >= ?", window.From)
		}
		if !window.To.IsZero() {
			db = db.Where(column+" < ?", window.To)
		}
		return db
	}
}

// QueryPage runs the count query and the page query for a listing and
// assembles the PageResult. base must already carry the model, context, and
// any filter conditions; sorting and paging come from the page request.
func QueryPage[T any](base *gorm.DB, req domain.PageRequest, sortAllowed []string) (*domain.PageResult[T], error) {
	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, err
	}

	var items []T
	if err := base.Scopes(Paginate(req), Sort(req, sortAllowed)).Find(&items).Error; err != nil {
		return nil, err
	}

	return NewPageResult(items, total, req), nil
}

// NewPageResult creates a PageResult with computed TotalPages.
func NewPageResult[T any](items []T, total int64, req domain.PageRequest) *domain.PageResult[T] {
	totalPages := 0
	if req.PageSize > 0 {
		// Integer ceiling; avoids the float round trip.
		totalPages = int((total + int64(req.PageSize) - 1) / int64(req.PageSize))
	}

	if items == nil {
		items = []T{}
	}

	return &domain.PageResult[T]{
		Items:      items,
		Total:      total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: totalPages,
	}
}

// isAllowed checks if a field name is in the allowed list.
func isAllowed(field string, allowed []string) bool {
	return slices.Contains(allowed, field)
}
