package notification

import (
	"context"
	"log/slog"
)

// LogObserver writes every dispatch outcome to the structured log.
type LogObserver struct{}

// Delivered logs a successful send.
func (LogObserver) Delivered(_ context.Context, d *Delivery) {
	slog.Info("sms sent",
		"channel", d.Result.Channel,
		"template", d.Request.TemplateID,
		"to", d.Request.To,
		"provider_id", d.Result.MessageID,
		"duration", d.Duration,
	)
}

// Failed logs a provider failure.
func (LogObserver) Failed(_ context.Context, d *Delivery) {
	slog.Error("sms delivery failed",
		"channel", d.Result.Channel,
		"template", d.Request.TemplateID,
		"to", d.Request.To,
		"error", d.Err,
		"duration", d.Duration,
	)
}

// Recorder persists dispatch outcomes to a DeliveryLogStore.
type Recorder struct {
	store DeliveryLogStore
}

// NewRecorder creates a recorder writing to store.
func NewRecorder(store DeliveryLogStore) *Recorder {
	return &Recorder{store: store}
}

// Delivered records a successful send.
func (r *Recorder) Delivered(ctx context.Context, d *Delivery) {
	r.record(ctx, d, StatusSent)
}

// Failed records a provider failure.
func (r *Recorder) Failed(ctx context.Context, d *Delivery) {
	r.record(ctx, d, StatusFailed)
}

func (r *Recorder) record(ctx context.Context, d *Delivery, status DeliveryStatus) {
	entry := &DeliveryLog{
		Channel:      d.Result.Channel,
		Template:     d.Request.TemplateID,
		Recipient:    d.Request.To,
		Variables:    redact(d.Request.Variables),
		ProviderID:   d.Result.MessageID,
		Status:       status,
		ErrorMessage: d.Result.Error,
		DurationMS:   d.Duration.Milliseconds(),
		CreatedAt:    d.At,
	}

	// A broken log store must never turn a send into a failure.
	if err := r.store.Create(ctx, entry); err != nil {
		slog.Error("failed to record delivery",
			"channel", entry.Channel,
			"template", entry.Template,
			"status", status,
			"error", err,
		)
	}
}

// sensitiveVariables are never written to the delivery log.
var sensitiveVariables = map[string]bool{
	"code": true,
}

func redact(vars map[string]string) map[string]string {
	if len(vars) == 0 {
		return nil
	}
	out := make(map[string]string, len(vars))
	for k, v := range vars {
		if sensitiveVariables[k] {
			v = "******"
		}
		out[k] = v
	}
	return out
}
