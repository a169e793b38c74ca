package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"smsnotify/internal/domain/notification"

	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"
	supa "github.com/supabase-community/supabase-go"
)

const deliveryTable = "sms_delivery_logs"

// NewClient creates a Supabase client shared by the stores in this package.
func NewClient(supabaseURL, serviceKey string) (*supa.Client, error) {
	client, err := supa.NewClient(supabaseURL, serviceKey, nil)
	if err != nil {
		return nil, fmt.Errorf("creating supabase client: %w", err)
	}
	return client, nil
}

var _ notification.DeliveryLogStore = (*SupabaseDeliveryStore)(nil)

// SupabaseDeliveryStore implements DeliveryLogStore using the Supabase Go SDK.
type SupabaseDeliveryStore struct {
	client *supa.Client
}

// NewSupabaseDeliveryStore creates a new Supabase-backed delivery log store.
func NewSupabaseDeliveryStore(client *supa.Client) *SupabaseDeliveryStore {
	return &SupabaseDeliveryStore{client: client}
}

// deliveryRow is the internal representation for Supabase PostgREST insert/select.
type deliveryRow struct {
	ID           string            `json:"id"`
	Channel      string            `json:"channel"`
	Template     string            `json:"template"`
	Recipient    string            `json:"recipient"`
	Variables    map[string]string `json:"variables,omitempty"`
	ProviderID   *string           `json:"provider_id,omitempty"`
	Status       string            `json:"status"`
	ErrorMessage *string           `json:"error_message,omitempty"`
	DurationMS   int64             `json:"duration_ms"`
	CreatedAt    string            `json:"created_at,omitempty"`
}

// Create inserts a new delivery log record and assigns its ID.
func (s *SupabaseDeliveryStore) Create(ctx context.Context, entry *notification.DeliveryLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	row := deliveryRow{
		ID:         entry.ID,
		Channel:    entry.Channel,
		Template:   entry.Template,
		Recipient:  entry.Recipient,
		Variables:  entry.Variables,
		Status:     string(entry.Status),
		DurationMS: entry.DurationMS,
		CreatedAt:  entry.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if entry.ProviderID != "" {
		row.ProviderID = &entry.ProviderID
	}
	if entry.ErrorMessage != "" {
		row.ErrorMessage = &entry.ErrorMessage
	}

	if _, _, err := s.client.From(deliveryTable).Insert(row, false, "", "minimal", "").Execute(); err != nil {
		return fmt.Errorf("inserting delivery log: %w", err)
	}
	return nil
}

// GetByID retrieves a delivery log by its ID. Returns nil, nil if no record is found.
func (s *SupabaseDeliveryStore) GetByID(ctx context.Context, id string) (*notification.DeliveryLog, error) {
	data, _, err := s.client.From(deliveryTable).Select("*", "", false).Eq("id", id).Execute()
	if err != nil {
		return nil, fmt.Errorf("fetching delivery log: %w", err)
	}

	var rows []deliveryRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parsing delivery log: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	return rowToLog(&rows[0]), nil
}

// List retrieves delivery logs with pagination and filtering.
func (s *SupabaseDeliveryStore) List(ctx context.Context, filter notification.ListFilter) ([]*notification.DeliveryLog, int, error) {
	filter.Normalize()
	offset := (filter.Page - 1) * filter.PageSize

	query := s.client.From(deliveryTable).Select("*", "exact", false)

	if filter.Status != "" {
		query = query.Eq("status", filter.Status)
	}
	if filter.Recipient != "" {
		query = query.Eq("recipient", filter.Recipient)
	}
	if filter.Channel != "" {
		query = query.Eq("channel", filter.Channel)
	}
	if filter.Template != "" {
		query = query.Eq("template", filter.Template)
	}

	query = query.Order("created_at", &postgrest.OrderOpts{Ascending: false})
	query = query.Range(offset, offset+filter.PageSize-1, "")

	data, count, err := query.Execute()
	if err != nil {
		return nil, 0, fmt.Errorf("listing delivery logs: %w", err)
	}

	var rows []deliveryRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, 0, fmt.Errorf("parsing delivery list: %w", err)
	}

	logs := make([]*notification.DeliveryLog, len(rows))
	for i := range rows {
		logs[i] = rowToLog(&rows[i])
	}

	return logs, int(count), nil
}

// rowToLog converts a deliveryRow to a DeliveryLog.
func rowToLog(row *deliveryRow) *notification.DeliveryLog {
	entry := &notification.DeliveryLog{
		ID:         row.ID,
		Channel:    row.Channel,
		Template:   row.Template,
		Recipient:  row.Recipient,
		Variables:  row.Variables,
		Status:     notification.DeliveryStatus(row.Status),
		DurationMS: row.DurationMS,
	}

	if row.ProviderID != nil {
		entry.ProviderID = *row.ProviderID
	}
	if row.ErrorMessage != nil {
		entry.ErrorMessage = *row.ErrorMessage
	}
	if row.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339Nano, row.CreatedAt); err == nil {
			entry.CreatedAt = t
		}
	}

	return entry
}
