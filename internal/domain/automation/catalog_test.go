package automation

import (
	"context"
	"strings"
	"sync"
	"testing"

	"smsnotify/internal/domain/channel"
	"smsnotify/internal/domain/notification"
	"smsnotify/internal/infra/template"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingDriver keeps every message it is asked to send.
type recordingDriver struct {
	mu   sync.Mutex
	sent []channel.Message
}

func (d *recordingDriver) Name() string { return "twilio" }

func (d *recordingDriver) Send(_ context.Context, _ channel.Credentials, msg *channel.Message) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, *msg)
	return "SM1", nil
}

func (d *recordingDriver) messages() []channel.Message {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]channel.Message(nil), d.sent...)
}

func newCatalogDispatcher(t *testing.T) (*notification.Dispatcher, *template.Registry, *recordingDriver) {
	t.Helper()
	driver := &recordingDriver{}
	channels := channel.NewRegistry()
	require.NoError(t, channels.Register("twilio", driver))
	require.NoError(t, channels.Apply(channel.Configuration{Enabled: map[string]bool{"twilio": true}}))

	templates, err := template.NewCatalogRegistry(nil)
	require.NoError(t, err)
	return notification.NewDispatcher(channels, templates), templates, driver
}

func fullEvent() *EventPayload {
	customer := &Person{FirstName: "Ada", LastName: "Lovelace", Telephone: "+15550001"}
	staff := &Person{FirstName: "Sam", Telephone: "+15550002"}
	return &EventPayload{
		Event: EventOrderStatusChanged,
		Order: &Order{
			ID: 42, Status: "Preparation", Type: "Delivery", Total: "19.90",
			Date: "2026-03-01", Time: "18:30",
			Customer: customer, Assignee: staff,
			StatusComment: "Almost ready.",
		},
		Reservation: &Reservation{
			ID: 7, Status: "Confirmed", Guests: 4,
			Date: "2026-03-02", Time: "20:00",
			Customer: customer, Assignee: staff,
		},
		Location: &Location{Name: "Downtown", Telephone: "+15550003"},
	}
}

func TestCatalogTemplatesRenderFromEventPayload(t *testing.T) {
	dispatcher, templates, driver := newCatalogDispatcher(t)
	bridge := NewBridge(dispatcher)

	rendered := 0
	for _, view := range templates.Templates() {
		if view.ID == template.OTPCode {
			continue
		}
		t.Run(view.ID, func(t *testing.T) {
			result, err := bridge.Run(context.Background(), fullEvent(), Action{TemplateID: view.ID, SendTo: RoleCustomer})
			require.NoError(t, err)
			assert.True(t, result.Success)
		})
		rendered++
	}

	sent := driver.messages()
	require.Len(t, sent, rendered)
	for _, msg := range sent {
		assert.NotContains(t, msg.Body, "{")
	}
}

func TestNewReservationIncludesGuestCount(t *testing.T) {
	dispatcher, _, driver := newCatalogDispatcher(t)

	payload := &EventPayload{
		Event:       "reservation.created",
		Reservation: fullEvent().Reservation,
		Location:    &Location{Name: "Downtown"},
	}
	_, err := NewBridge(dispatcher).Run(context.Background(), payload, Action{TemplateID: template.NewReservation, SendTo: RoleCustomer})
	require.NoError(t, err)

	sent := driver.messages()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].Body, "table for 4")
}

func TestWorker_PresetSendsThroughCatalog(t *testing.T) {
	dispatcher, _, driver := newCatalogDispatcher(t)
	w := NewWorker(NewBridge(dispatcher))

	event := orderEvent()
	require.NoError(t, w.ProcessTask(context.Background(), &RunPayload{Event: *event}))

	sent := driver.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "+15550001", sent[0].To)
	assert.True(t, strings.HasPrefix(sent[0].Body, "Hi Ada Lovelace, your order #42 is now Preparation."))
}

func TestEventPayload_VariablesStatusComment(t *testing.T) {
	order := fullEvent()
	order.Reservation = nil
	assert.Equal(t, "Almost ready.", order.Variables()["status_comment"])

	reservation := &EventPayload{Reservation: &Reservation{ID: 7, Guests: 2, StatusComment: "See you soon."}}
	vars := reservation.Variables()
	assert.Equal(t, "See you soon.", vars["status_comment"])
	assert.Equal(t, "2", vars["reservation_guests"])

	bare := &EventPayload{Reservation: &Reservation{ID: 7}}
	v, ok := bare.Variables()["status_comment"]
	assert.True(t, ok)
	assert.Empty(t, v)

	both := fullEvent()
	assert.Equal(t, "Almost ready.", both.Variables()["status_comment"])
}
