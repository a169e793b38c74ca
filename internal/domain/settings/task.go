package settings

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// TaskTypeSettingsChanged is the asynq task type signalling a settings change.
const TaskTypeSettingsChanged = "settings:changed"

// ChangedPayload is the serialized payload for a settings changed task.
type ChangedPayload struct {
	ChangedAt time.Time `json:"changed_at"`
}

// NewChangedTask creates a new asynq task announcing a settings change.
func NewChangedTask(at time.Time) (*asynq.Task, error) {
	payload, err := json.Marshal(ChangedPayload{ChangedAt: at.UTC()})
	if err != nil {
		return nil, fmt.Errorf("marshaling task payload: %w", err)
	}
	return asynq.NewTask(TaskTypeSettingsChanged, payload), nil
}

// ParseChangedPayload deserializes the task payload.
func ParseChangedPayload(data []byte) (*ChangedPayload, error) {
	var p ChangedPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("unmarshaling task payload: %w", err)
	}
	return &p, nil
}
