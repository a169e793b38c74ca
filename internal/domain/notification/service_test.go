package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"smsnotify/internal/common"
	"smsnotify/internal/domain/channel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockDriver is a mock implementation of channel.Driver
type MockDriver struct {
	mock.Mock
	name string
}

func (m *MockDriver) Send(ctx context.Context, creds channel.Credentials, msg *channel.Message) (string, error) {
	args := m.Called(ctx, creds, msg)
	return args.String(0), args.Error(1)
}

func (m *MockDriver) Name() string { return m.name }

// stubRenderer renders "<id>|k=v" for a fixed set of known templates.
type stubRenderer struct {
	known map[string][]string
}

func (r stubRenderer) Render(id string, vars map[string]string) (string, error) {
	required, ok := r.known[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", common.ErrUnknownTemplate, id)
	}
	parts := []string{id}
	for _, name := range required {
		v, ok := vars[name]
		if !ok {
			return "", fmt.Errorf("%w: %s", common.ErrMissingVariable, name)
		}
		parts = append(parts, name+"="+v)
	}
	return strings.Join(parts, "|"), nil
}

// recordingObserver captures every event it receives.
type recordingObserver struct {
	mu        sync.Mutex
	delivered []*Delivery
	failed    []*Delivery
}

func (o *recordingObserver) Delivered(_ context.Context, d *Delivery) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.delivered = append(o.delivered, d)
}

func (o *recordingObserver) Failed(_ context.Context, d *Delivery) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failed = append(o.failed, d)
}

type fixture struct {
	registry *channel.Registry
	drivers  map[string]*MockDriver
	observer *recordingObserver
	d        *Dispatcher
}

func newFixture(t *testing.T, enabled map[string]bool, def string) *fixture {
	t.Helper()
	f := &fixture{
		registry: channel.NewRegistry(),
		drivers:  make(map[string]*MockDriver),
		observer: &recordingObserver{},
	}
	for _, id := range []string{"twilio", "nexmo", "plivo"} {
		drv := &MockDriver{name: id}
		f.drivers[id] = drv
		require.NoError(t, f.registry.Register(id, drv))
	}
	require.NoError(t, f.registry.Apply(channel.Configuration{
		Enabled: enabled,
		Credentials: map[string]channel.Credentials{
			"twilio": {"auth_token": "tw"},
			"nexmo":  {"api_key": "nx"},
		},
		Default: def,
	}))

	renderer := stubRenderer{known: map[string][]string{
		"smsnotify.order_status_changed": {"order_id"},
	}}
	f.d = NewDispatcher(f.registry, renderer, f.observer)
	return f
}

func (f *fixture) assertNoOtherDriverCalled(t *testing.T, except string) {
	t.Helper()
	for id, drv := range f.drivers {
		if id != except {
			drv.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
		}
	}
}

func TestDispatcher_OverrideInvokesExactlyThatDriver(t *testing.T) {
	for _, id := range []string{"twilio", "nexmo"} {
		t.Run(id, func(t *testing.T) {
			f := newFixture(t, map[string]bool{"twilio": true, "nexmo": true}, "twilio")
			f.drivers[id].On("Send", mock.Anything, mock.Anything, &channel.Message{
				To:   "+15550001",
				Body: "smsnotify.order_status_changed|order_id=7",
			}).Return("msg-1", nil).Once()

			result, err := f.d.Dispatch(context.Background(), &Request{
				TemplateID: "smsnotify.order_status_changed",
				To:         "+15550001",
				Variables:  map[string]string{"order_id": "7"},
				Channel:    id,
			})

			require.NoError(t, err)
			assert.True(t, result.Success)
			assert.Equal(t, id, result.Channel)
			assert.Equal(t, "msg-1", result.MessageID)
			f.drivers[id].AssertNumberOfCalls(t, "Send", 1)
			f.assertNoOtherDriverCalled(t, id)
			assert.Len(t, f.observer.delivered, 1)
			assert.Empty(t, f.observer.failed)
		})
	}
}

func TestDispatcher_PassesChannelCredentials(t *testing.T) {
	f := newFixture(t, map[string]bool{"nexmo": true}, "nexmo")
	f.drivers["nexmo"].On("Send", mock.Anything, channel.Credentials{"api_key": "nx"}, mock.Anything).
		Return("msg-2", nil).Once()

	result, err := f.d.Dispatch(context.Background(), &Request{
		TemplateID: "smsnotify.order_status_changed",
		To:         "+15550002",
		Variables:  map[string]string{"order_id": "8"},
	})

	require.NoError(t, err)
	assert.True(t, result.Success)
	f.drivers["nexmo"].AssertExpectations(t)
}

func TestDispatcher_DisabledOverrideFallsBackToDefault(t *testing.T) {
	f := newFixture(t, map[string]bool{"twilio": true}, "twilio")
	f.drivers["twilio"].On("Send", mock.Anything, mock.Anything, mock.Anything).Return("msg-3", nil).Once()

	result, err := f.d.Dispatch(context.Background(), &Request{
		TemplateID: "smsnotify.order_status_changed",
		To:         "+15550003",
		Variables:  map[string]string{"order_id": "9"},
		Channel:    "plivo",
	})

	require.NoError(t, err)
	assert.Equal(t, "twilio", result.Channel)
	f.drivers["plivo"].AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatcher_DisabledDefaultYieldsNoActiveChannel(t *testing.T) {
	f := newFixture(t, map[string]bool{"twilio": false, "nexmo": true}, "twilio")

	_, err := f.d.Dispatch(context.Background(), &Request{
		TemplateID: "smsnotify.order_status_changed",
		To:         "+15550004",
		Variables:  map[string]string{"order_id": "1"},
	})

	assert.ErrorIs(t, err, common.ErrNoActiveChannel)
	f.assertNoOtherDriverCalled(t, "")
	assert.Empty(t, f.observer.failed)
}

func TestDispatcher_RenderErrorsPropagate(t *testing.T) {
	f := newFixture(t, map[string]bool{"twilio": true}, "twilio")

	_, err := f.d.Dispatch(context.Background(), &Request{
		TemplateID: "smsnotify.missing",
		To:         "+15550005",
	})
	assert.ErrorIs(t, err, common.ErrUnknownTemplate)

	_, err = f.d.Dispatch(context.Background(), &Request{
		TemplateID: "smsnotify.order_status_changed",
		To:         "+15550005",
		Variables:  map[string]string{},
	})
	assert.ErrorIs(t, err, common.ErrMissingVariable)

	f.assertNoOtherDriverCalled(t, "")
}

func TestDispatcher_ProviderFailureIsAResult(t *testing.T) {
	f := newFixture(t, map[string]bool{"twilio": true, "nexmo": true}, "twilio")
	f.drivers["twilio"].On("Send", mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("21211 invalid 'To' number")).Once()

	result, err := f.d.Dispatch(context.Background(), &Request{
		TemplateID: "smsnotify.order_status_changed",
		To:         "+1bad",
		Variables:  map[string]string{"order_id": "2"},
	})

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "twilio", result.Channel)
	assert.Contains(t, result.Error, "invalid 'To' number")

	f.drivers["twilio"].AssertNumberOfCalls(t, "Send", 1)
	f.drivers["nexmo"].AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)

	require.Len(t, f.observer.failed, 1)
	assert.Empty(t, f.observer.delivered)
	var provider *common.ProviderError
	assert.ErrorAs(t, f.observer.failed[0].Err, &provider)
	assert.Equal(t, "twilio", provider.Provider)
}

func TestDispatcher_RequiresRecipient(t *testing.T) {
	f := newFixture(t, map[string]bool{"twilio": true}, "twilio")

	_, err := f.d.Dispatch(context.Background(), &Request{TemplateID: "smsnotify.order_status_changed", To: "  "})

	var validation *common.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestDispatcher_Channels(t *testing.T) {
	f := newFixture(t, map[string]bool{"nexmo": true, "plivo": true}, "nexmo")

	all := f.d.Channels()
	require.Len(t, all, 3)
	assert.Equal(t, ChannelView{ID: "twilio"}, all[0])
	assert.Equal(t, ChannelView{ID: "nexmo", Enabled: true, Default: true}, all[1])

	enabled := f.d.EnabledChannels()
	assert.Equal(t, []ChannelView{
		{ID: "nexmo", Enabled: true, Default: true},
		{ID: "plivo", Enabled: true},
	}, enabled)
}
