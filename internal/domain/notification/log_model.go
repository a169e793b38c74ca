package notification

import "time"

// DeliveryStatus represents the outcome recorded for a dispatched SMS.
type DeliveryStatus string

const (
	StatusSent   DeliveryStatus = "sent"
	StatusFailed DeliveryStatus = "failed"
)

// DeliveryLog represents a persisted dispatch record.
type DeliveryLog struct {
	ID           string            `json:"id"`
	Channel      string            `json:"channel"`
	Template     string            `json:"template"`
	Recipient    string            `json:"recipient"`
	Variables    map[string]string `json:"variables,omitempty"`
	ProviderID   string            `json:"provider_id,omitempty"`
	Status       DeliveryStatus    `json:"status"`
	ErrorMessage string            `json:"error_message,omitempty"`
	DurationMS   int64             `json:"duration_ms"`
	CreatedAt    time.Time         `json:"created_at"`
}

// ListFilter defines pagination and filtering options for listing delivery logs.
type ListFilter struct {
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
	Status    string `form:"status"`
	Recipient string `form:"recipient"`
	Channel   string `form:"channel"`
	Template  string `form:"template"`
}

// Normalize applies pagination defaults.
func (f *ListFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 100 {
		f.PageSize = 20
	}
}

// ListResponse wraps a paginated list of delivery logs.
type ListResponse struct {
	Deliveries []*DeliveryLog `json:"deliveries"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
}
