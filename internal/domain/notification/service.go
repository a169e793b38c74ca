package notification

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"smsnotify/internal/common"
	"smsnotify/internal/domain/channel"
)

// Dispatcher resolves a channel, renders a template, and invokes exactly
// one driver per request. It never retries; provider failures are returned
// as an unsuccessful DeliveryResult, not as an error.
type Dispatcher struct {
	channels  *channel.Registry
	renderer  TemplateRenderer
	observers []Observer
	now       func() time.Time
}

// NewDispatcher creates a new notification dispatcher.
func NewDispatcher(channels *channel.Registry, renderer TemplateRenderer, observers ...Observer) *Dispatcher {
	return &Dispatcher{
		channels:  channels,
		renderer:  renderer,
		observers: observers,
		now:       time.Now,
	}
}

// Dispatch delivers req. Errors are limited to validation, channel
// resolution and rendering; a failed send yields Success=false.
func (d *Dispatcher) Dispatch(ctx context.Context, req *Request) (*DeliveryResult, error) {
	if strings.TrimSpace(req.To) == "" {
		return nil, common.NewValidationError("recipient is required")
	}

	// One snapshot for the whole call so a concurrent Apply cannot split it.
	state := d.channels.Snapshot()
	ch, err := state.Resolve(req.Channel)
	if err != nil {
		return nil, fmt.Errorf("resolving channel: %w", err)
	}
	if req.Channel != "" && ch.ID != req.Channel {
		slog.Warn("channel override unavailable, using default",
			"requested", req.Channel,
			"channel", ch.ID,
		)
	}

	body, err := d.renderer.Render(req.TemplateID, req.Variables)
	if err != nil {
		return nil, fmt.Errorf("rendering template %s: %w", req.TemplateID, err)
	}

	start := d.now()
	messageID, sendErr := ch.Driver.Send(ctx, ch.Credentials, &channel.Message{To: req.To, Body: body})

	delivery := &Delivery{
		Request:  req,
		Duration: d.now().Sub(start),
		At:       start,
	}

	if sendErr != nil {
		delivery.Err = common.NewProviderError(ch.ID, sendErr.Error())
		delivery.Result = DeliveryResult{Channel: ch.ID, Error: sendErr.Error()}
		for _, o := range d.observers {
			o.Failed(ctx, delivery)
		}
		return &delivery.Result, nil
	}

	delivery.Result = DeliveryResult{Success: true, Channel: ch.ID, MessageID: messageID}
	for _, o := range d.observers {
		o.Delivered(ctx, delivery)
	}
	return &delivery.Result, nil
}

// Channels lists every registered channel with its enabled/default flags.
func (d *Dispatcher) Channels() []ChannelView {
	state := d.channels.Snapshot()
	def := state.Default()
	all := state.All()
	views := make([]ChannelView, 0, len(all))
	for _, ch := range all {
		views = append(views, ChannelView{ID: ch.ID, Enabled: ch.Enabled, Default: ch.ID == def})
	}
	return views
}

// EnabledChannels lists channels currently available for dispatch.
func (d *Dispatcher) EnabledChannels() []ChannelView {
	def := d.channels.Snapshot().Default()
	var views []ChannelView
	for ch := range d.channels.ListEnabled() {
		views = append(views, ChannelView{ID: ch.ID, Enabled: true, Default: ch.ID == def})
	}
	return views
}
