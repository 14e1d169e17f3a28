package account

import "time"

// CreateAccountRequest represents the input for registering a new hosted account.
type CreateAccountRequest struct {
	Name      string `json:"name" form:"name" binding:"required,min=2,max=100"`
	ServiceID string `json:"service_id" form:"service_id" binding:"required,min=3,max=64"`
	Region    string `json:"region" form:"region" binding:"required,min=2,max=32"`
	Email     string `json:"email" form:"email" binding:"required,email"`
}

// UpdateAccountRequest represents the input for updating an existing account.
// The service ID is immutable and therefore not part of this request.
type UpdateAccountRequest struct {
	Name   string `json:"name" form:"name" binding:"required,min=2,max=100"`
	Email  string `json:"email" form:"email" binding:"required,email"`
	Status string `json:"status" form:"status" binding:"required,oneof=active suspended closed"`
}

// RecordEmailEventRequest represents one relay-reported delivery event.
// OccurredAt defaults to the current time when omitted.
type RecordEmailEventRequest struct {
	MessageID  string     `json:"message_id" form:"message_id" binding:"required,max=128"`
	Sender     string     `json:"sender" form:"sender" binding:"required,email"`
	Recipient  string     `json:"recipient" form:"recipient" binding:"required,email"`
	Subject    string     `json:"subject" form:"subject" binding:"max=255"`
	Status     string     `json:"status" form:"status" binding:"required,oneof=sent bounced deferred"`
	OccurredAt *time.Time `json:"occurred_at" form:"occurred_at"`
}

// RecordUsageRequest represents one day of resource consumption.
// Day uses the YYYY-MM-DD form.
type RecordUsageRequest struct {
	Day          string `json:"day" form:"day" binding:"required,datetime=2006-01-02"`
	StorageBytes int64  `json:"storage_bytes" form:"storage_bytes" binding:"min=0"`
	TrafficBytes int64  `json:"traffic_bytes" form:"traffic_bytes" binding:"min=0"`
	MessagesSent int64  `json:"messages_sent" form:"messages_sent" binding:"min=0"`
}
