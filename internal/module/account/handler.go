package account

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zhfeng1/OVH/internal/domain"
	"github.com/zhfeng1/OVH/internal/pkg"
)

// AccountHandler handles REST API requests for the hosted account resource.
type AccountHandler struct {
	svc domain.AccountService
}

// NewAccountHandler creates a new AccountHandler with the given service.
func NewAccountHandler(svc domain.AccountService) *AccountHandler {
	return &AccountHandler{svc: svc}
}

// Create handles POST /api/ovh/account/.
func (h *AccountHandler) Create(c *gin.Context) {
	var req CreateAccountRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	account, err := h.svc.CreateAccount(c.Request.Context(), req.Name, req.ServiceID, req.Region, req.Email)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Created(c, account)
}

// Get handles GET /api/ovh/account/:id.
func (h *AccountHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), nil))
		return
	}

	account, err := h.svc.GetAccount(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, account)
}

// List handles GET /api/ovh/account/.
func (h *AccountHandler) List(c *gin.Context) {
	req := pkg.ParsePageRequest(c)

	result, err := h.svc.ListAccounts(c.Request.Context(), req)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.List(c, result)
}

// Update handles PUT /api/ovh/account/:id.
func (h *AccountHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), nil))
		return
	}

	var req UpdateAccountRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	account, err := h.svc.UpdateAccount(c.Request.Context(), id, req.Name, req.Email, req.Status)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, account)
}

// Delete handles DELETE /api/ovh/account/:id.
func (h *AccountHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), nil))
		return
	}

	if err := h.svc.DeleteAccount(c.Request.Context(), id); err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, nil)
}

// EmailHistory handles GET /api/ovh/account/:id/email-history. The optional
// from and to query parameters narrow the history to a time window.
func (h *AccountHandler) EmailHistory(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), nil))
		return
	}

	req := pkg.ParsePageRequest(c)

	window, err := parseTimeWindow(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), nil))
		return
	}

	result, err := h.svc.ListEmailHistory(c.Request.Context(), id, req, window)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.List(c, result)
}

// RecordEmail handles POST /api/ovh/account/:id/email-history.
func (h *AccountHandler) RecordEmail(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), nil))
		return
	}

	var req RecordEmailEventRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	event := &domain.EmailEvent{
		MessageID: req.MessageID,
		Sender:    req.Sender,
		Recipient: req.Recipient,
		Subject:   req.Subject,
		Status:    req.Status,
	}
	if req.OccurredAt != nil {
		event.OccurredAt = *req.OccurredAt
	}

	created, err := h.svc.RecordEmailEvent(c.Request.Context(), id, event)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Created(c, created)
}

// Usage handles GET /api/ovh/account/:id/usage. The optional days query
// parameter selects the reporting window and defaults to 30.
func (h *AccountHandler) Usage(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), nil))
		return
	}

	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, "days must be an integer", nil))
		return
	}

	summary, err := h.svc.SummarizeUsage(c.Request.Context(), id, days)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, summary)
}

// RecordUsage handles POST /api/ovh/account/:id/usage.
func (h *AccountHandler) RecordUsage(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), nil))
		return
	}

	var req RecordUsageRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	// The binding tag already guarantees the layout.
	day, err := time.ParseInLocation("2006-01-02", req.Day, time.UTC)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, "day must use the YYYY-MM-DD form", nil))
		return
	}

	record, err := h.svc.RecordUsage(c.Request.Context(), id, day, req.StorageBytes, req.TrafficBytes, req.MessagesSent)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Created(c, record)
}

// parseID extracts and validates the "id" URL parameter.
func parseID(c *gin.Context) (uint, error) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id: %s", idStr)
	}
	if id > uint64(^uint(0)) {
		return 0, fmt.Errorf("invalid id: %s", idStr)
	}
	return uint(id), nil
}

// Timestamp layouts accepted by the history window parameters.
var timeParamLayouts = []string{time.RFC3339, "2006-01-02"}

// parseTimeWindow reads the optional from and to query parameters.
func parseTimeWindow(c *gin.Context) (domain.TimeWindow, error) {
	from, err := parseTimeParam(c, "from")
	if err != nil {
		return domain.TimeWindow{}, err
	}
	to, err := parseTimeParam(c, "to")
	if err != nil {
		return domain.TimeWindow{}, err
	}
	return domain.TimeWindow{From: from, To: to}, nil
}

// parseTimeParam reads one query parameter as an RFC 3339 timestamp or a
// bare YYYY-MM-DD date. A missing parameter yields the zero time.
func parseTimeParam(c *gin.Context, name string) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, nil
	}
	for _, layout := range timeParamLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%s must be an RFC 3339 timestamp or a YYYY-MM-DD date", name)
}
