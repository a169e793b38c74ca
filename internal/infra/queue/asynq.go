package queue

import (
	"context"
	"fmt"
	"time"

	"smsnotify/internal/domain/automation"
	"smsnotify/internal/domain/settings"

	"github.com/hibiken/asynq"
)

// QueueEvents carries host platform events.
const QueueEvents = "events"

// NewClient creates a new asynq client connected to Redis.
func NewClient(redisAddr, password string, db int) *asynq.Client {
	return asynq.NewClient(asynq.RedisClientOpt{
		Addr:     redisAddr,
		Password: password,
		DB:       db,
	})
}

// NewServer creates a new asynq server connected to Redis.
func NewServer(redisAddr, password string, db int, concurrency int) *asynq.Server {
	return asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     redisAddr,
			Password: password,
			DB:       db,
		},
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				QueueEvents: 10, // priority weight
				"default":   1,
			},
			RetryDelayFunc: retryDelay,
		},
	)
}

// retryDelay backs off exponentially: 30s, 60s, 120s, 240s, 480s.
// Only infrastructure failures get here; domain errors skip retry.
func retryDelay(n int, _ error, _ *asynq.Task) time.Duration {
	if n < 1 {
		n = 1
	}
	return time.Duration(30*(1<<uint(n-1))) * time.Second
}

// taskEnqueuer is the part of *asynq.Client the publisher uses.
type taskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

var (
	_ settings.Notifier   = (*Publisher)(nil)
	_ automation.Enqueuer = (*Publisher)(nil)
)

// Publisher enqueues domain tasks on the events queue.
type Publisher struct {
	client   taskEnqueuer
	maxRetry int
	now      func() time.Time
}

// NewPublisher creates a publisher backed by an asynq client.
func NewPublisher(client *asynq.Client, maxRetry int) *Publisher {
	return &Publisher{client: client, maxRetry: maxRetry, now: time.Now}
}

// NotifySettingsChanged enqueues a settings:changed task.
func (p *Publisher) NotifySettingsChanged(ctx context.Context) error {
	task, err := settings.NewChangedTask(p.now())
	if err != nil {
		return fmt.Errorf("creating task: %w", err)
	}
	return p.enqueue(ctx, task)
}

// EnqueueAutomationRun enqueues an automation:run task.
func (p *Publisher) EnqueueAutomationRun(ctx context.Context, payload *automation.RunPayload) error {
	task, err := automation.NewRunTask(payload)
	if err != nil {
		return fmt.Errorf("creating task: %w", err)
	}
	return p.enqueue(ctx, task)
}

func (p *Publisher) enqueue(ctx context.Context, task *asynq.Task) error {
	_, err := p.client.EnqueueContext(ctx, task,
		asynq.MaxRetry(p.maxRetry),
		asynq.Queue(QueueEvents),
	)
	if err != nil {
		return fmt.Errorf("enqueuing %s: %w", task.Type(), err)
	}
	return nil
}
