package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"smsnotify/internal/domain/settings"

	"github.com/supabase-community/postgrest-go"
	supa "github.com/supabase-community/supabase-go"
)

const settingsTable = "sms_settings"

var _ settings.Store = (*SupabaseSettingsStore)(nil)

// SupabaseSettingsStore keeps the settings snapshot as key/value rows.
type SupabaseSettingsStore struct {
	client *supa.Client
	now    func() time.Time
}

// NewSupabaseSettingsStore creates a new Supabase-backed settings store.
func NewSupabaseSettingsStore(client *supa.Client) *SupabaseSettingsStore {
	return &SupabaseSettingsStore{client: client, now: time.Now}
}

type settingRow struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// Load reads every settings row.
func (s *SupabaseSettingsStore) Load(ctx context.Context) (settings.Snapshot, error) {
	data, _, err := s.client.From(settingsTable).Select("key,value", "", false).Execute()
	if err != nil {
		return nil, fmt.Errorf("fetching settings: %w", err)
	}

	var rows []settingRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parsing settings: %w", err)
	}

	return rowsToSnapshot(rows), nil
}

// Save upserts every key of snapshot.
func (s *SupabaseSettingsStore) Save(ctx context.Context, snapshot settings.Snapshot) error {
	if len(snapshot) == 0 {
		return nil
	}

	rows := snapshotToRows(snapshot, s.now())
	if _, _, err := s.client.From(settingsTable).Insert(rows, true, "key", "minimal", "").Execute(); err != nil {
		return fmt.Errorf("upserting settings: %w", err)
	}
	return nil
}

// Version combines the row count with the newest update time so both
// edits and deletions change it.
func (s *SupabaseSettingsStore) Version(ctx context.Context) (string, error) {
	data, count, err := s.client.From(settingsTable).
		Select("updated_at", "exact", false).
		Order("updated_at", &postgrest.OrderOpts{Ascending: false}).
		Limit(1, "").
		Execute()
	if err != nil {
		return "", fmt.Errorf("fetching settings version: %w", err)
	}

	var rows []settingRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return "", fmt.Errorf("parsing settings version: %w", err)
	}

	latest := ""
	if len(rows) > 0 {
		latest = rows[0].UpdatedAt
	}
	return fmt.Sprintf("%d@%s", count, latest), nil
}

func rowsToSnapshot(rows []settingRow) settings.Snapshot {
	snapshot := make(settings.Snapshot, len(rows))
	for _, row := range rows {
		snapshot[row.Key] = row.Value
	}
	return snapshot
}

func snapshotToRows(snapshot settings.Snapshot, at time.Time) []settingRow {
	stamp := at.UTC().Format(time.RFC3339Nano)
	rows := make([]settingRow, 0, len(snapshot))
	for k, v := range snapshot {
		rows = append(rows, settingRow{Key: k, Value: v, UpdatedAt: stamp})
	}
	return rows
}
