package automation

import (
	"context"
	"fmt"
	"maps"

	"smsnotify/internal/common"
	"smsnotify/internal/domain/notification"
)

// Recipient roles understood by the bridge.
const (
	RoleCustomer = "customer"
	RoleStaff    = "staff"
	RoleAdmin    = "admin"
	RoleLocation = "location"
)

// Dispatcher sends a rendered notification. Satisfied by *notification.Dispatcher.
type Dispatcher interface {
	Dispatch(ctx context.Context, req *notification.Request) (*notification.DeliveryResult, error)
}

// Action is one configured "send SMS" step of an automation rule.
type Action struct {
	TemplateID string            `json:"template"`
	SendTo     string            `json:"send_to"`
	Channel    string            `json:"channel,omitempty"`
	Overrides  map[string]string `json:"overrides,omitempty"`
}

// Bridge turns lifecycle events into notification requests. It holds no
// state between calls.
type Bridge struct {
	dispatcher Dispatcher
}

// NewBridge creates a new automation bridge.
func NewBridge(dispatcher Dispatcher) *Bridge {
	return &Bridge{dispatcher: dispatcher}
}

// Run resolves the action's recipient from the payload, merges the payload
// variables with the action overrides and dispatches the result.
func (b *Bridge) Run(ctx context.Context, payload *EventPayload, action Action) (*notification.DeliveryResult, error) {
	if action.TemplateID == "" {
		return nil, common.NewValidationError("action template is required")
	}

	to, err := ResolveRecipient(payload, action.SendTo)
	if err != nil {
		return nil, err
	}

	vars := payload.Variables()
	maps.Copy(vars, action.Overrides)

	return b.dispatcher.Dispatch(ctx, &notification.Request{
		TemplateID: action.TemplateID,
		To:         to,
		Variables:  vars,
		Channel:    action.Channel,
	})
}

// ResolveRecipient maps role to a phone number found in payload.
func ResolveRecipient(payload *EventPayload, role string) (string, error) {
	var phone string

	switch role {
	case RoleCustomer:
		if payload.Order != nil {
			phone = payload.Order.Customer.phone()
		}
		if phone == "" && payload.Reservation != nil {
			phone = payload.Reservation.Customer.phone()
		}
	case RoleStaff, RoleAdmin:
		if payload.Order != nil {
			phone = payload.Order.Assignee.phone()
		}
		if phone == "" && payload.Reservation != nil {
			phone = payload.Reservation.Assignee.phone()
		}
	case RoleLocation:
		if payload.Location != nil {
			phone = payload.Location.Telephone
		}
	default:
		return "", fmt.Errorf("%w: unknown role %q", common.ErrUnresolvableRecipient, role)
	}

	if phone == "" {
		return "", fmt.Errorf("%w: no phone for role %q on %s", common.ErrUnresolvableRecipient, role, payload.Event)
	}
	return phone, nil
}
