package automation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
)

// Worker processes automation run tasks from the queue.
type Worker struct {
	bridge *Bridge
}

// NewWorker creates a new automation worker.
func NewWorker(bridge *Bridge) *Worker {
	return &Worker{bridge: bridge}
}

// ProcessTask runs one automation action. Nothing here is retried by the
// queue: data and configuration errors need a human, and a failed provider
// send is reported, not escalated.
func (w *Worker) ProcessTask(ctx context.Context, p *RunPayload) error {
	action, err := p.ResolveAction()
	if err != nil {
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}

	result, err := w.bridge.Run(ctx, &p.Event, action)
	if err != nil {
		slog.Error("automation run failed",
			"event", p.Event.Event,
			"template", action.TemplateID,
			"send_to", action.SendTo,
			"error", err,
		)
		return fmt.Errorf("running %s: %w: %w", p.Event.Event, err, asynq.SkipRetry)
	}

	if !result.Success {
		slog.Warn("automation sms not delivered",
			"event", p.Event.Event,
			"template", action.TemplateID,
			"channel", result.Channel,
			"error", result.Error,
		)
		return nil
	}

	slog.Info("automation sms sent",
		"event", p.Event.Event,
		"template", action.TemplateID,
		"channel", result.Channel,
		"provider_id", result.MessageID,
	)
	return nil
}

// HandleTask is the asynq handler for TaskTypeRun.
func (w *Worker) HandleTask(ctx context.Context, task *asynq.Task) error {
	p, err := ParseRunPayload(task.Payload())
	if err != nil {
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}
	return w.ProcessTask(ctx, p)
}
