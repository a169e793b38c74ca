package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"smsnotify/internal/domain/automation"
	"smsnotify/internal/domain/settings"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedTask struct {
	task *asynq.Task
	opts []asynq.Option
}

type fakeEnqueuer struct {
	tasks []capturedTask
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, capturedTask{task: task, opts: opts})
	return &asynq.TaskInfo{Type: task.Type()}, nil
}

func optionValues(opts []asynq.Option) map[asynq.OptionType]any {
	out := make(map[asynq.OptionType]any, len(opts))
	for _, o := range opts {
		out[o.Type()] = o.Value()
	}
	return out
}

func TestPublisher_NotifySettingsChanged(t *testing.T) {
	fake := &fakeEnqueuer{}
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := &Publisher{client: fake, maxRetry: 5, now: func() time.Time { return at }}

	require.NoError(t, p.NotifySettingsChanged(context.Background()))
	require.Len(t, fake.tasks, 1)

	got := fake.tasks[0]
	assert.Equal(t, settings.TaskTypeSettingsChanged, got.task.Type())
	payload, err := settings.ParseChangedPayload(got.task.Payload())
	require.NoError(t, err)
	assert.True(t, at.Equal(payload.ChangedAt))

	opts := optionValues(got.opts)
	assert.Equal(t, QueueEvents, opts[asynq.QueueOpt])
	assert.Equal(t, 5, opts[asynq.MaxRetryOpt])
}

func TestPublisher_EnqueueAutomationRun(t *testing.T) {
	fake := &fakeEnqueuer{}
	p := &Publisher{client: fake, maxRetry: 3, now: time.Now}

	run := &automation.RunPayload{Event: automation.EventPayload{Event: automation.EventOrderStatusChanged}}
	require.NoError(t, p.EnqueueAutomationRun(context.Background(), run))

	require.Len(t, fake.tasks, 1)
	assert.Equal(t, automation.TaskTypeRun, fake.tasks[0].task.Type())
	parsed, err := automation.ParseRunPayload(fake.tasks[0].task.Payload())
	require.NoError(t, err)
	assert.Equal(t, automation.EventOrderStatusChanged, parsed.Event.Event)
}

func TestPublisher_EnqueueError(t *testing.T) {
	p := &Publisher{client: &fakeEnqueuer{err: errors.New("redis down")}, now: time.Now}
	err := p.NotifySettingsChanged(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), settings.TaskTypeSettingsChanged)
}

func TestRetryDelay(t *testing.T) {
	assert.Equal(t, 30*time.Second, retryDelay(1, nil, nil))
	assert.Equal(t, 60*time.Second, retryDelay(2, nil, nil))
	assert.Equal(t, 480*time.Second, retryDelay(5, nil, nil))
}
