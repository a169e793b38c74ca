package automation

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// TaskTypeRun is the asynq task type for running an automation action.
const TaskTypeRun = "automation:run"

// RunPayload is the serialized payload for an automation run task.
// A nil Action selects the preset bound to the event.
type RunPayload struct {
	Event  EventPayload `json:"event" binding:"required"`
	Action *Action      `json:"action,omitempty"`
}

// NewRunTask creates a new asynq task for an automation run.
func NewRunTask(p *RunPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshaling task payload: %w", err)
	}
	return asynq.NewTask(TaskTypeRun, payload), nil
}

// ParseRunPayload deserializes the task payload.
func ParseRunPayload(data []byte) (*RunPayload, error) {
	var p RunPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("unmarshaling task payload: %w", err)
	}
	return &p, nil
}

// ResolveAction returns the explicit action or the event's preset.
func (p *RunPayload) ResolveAction() (Action, error) {
	if p.Action != nil {
		return *p.Action, nil
	}
	action, ok := PresetFor(p.Event.Event)
	if !ok {
		return Action{}, fmt.Errorf("no action given and no preset for event %q", p.Event.Event)
	}
	return action, nil
}
