package automation

import "slices"

// Event names emitted by the host platform.
const (
	EventOrderStatusChanged = "order.status_changed"
)

const orderStatusChangedTemplate = "smsnotify.order_status_changed"

// Preset is a ready-made rule offered to administrators.
type Preset struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Event  string `json:"event"`
	Action Action `json:"action"`
}

var presets = []Preset{
	{
		Code:  "smsnotify_new_order_status",
		Name:  "Send an SMS message when an order status is updated",
		Event: EventOrderStatusChanged,
		Action: Action{
			TemplateID: orderStatusChangedTemplate,
			SendTo:     RoleCustomer,
		},
	},
}

// Presets returns the built-in rule presets.
func Presets() []Preset {
	return slices.Clone(presets)
}

// PresetFor returns the preset action bound to event.
func PresetFor(event string) (Action, bool) {
	for _, p := range presets {
		if p.Event == event {
			return p.Action, true
		}
	}
	return Action{}, false
}
