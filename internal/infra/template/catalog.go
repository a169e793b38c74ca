package template

import "fmt"

// Built-in template identifiers.
const (
	NewOrder                 = "smsnotify.new_order"
	NewReservation           = "smsnotify.new_reservation"
	OrderAssigned            = "smsnotify.order_assigned"
	OrderConfirmed           = "smsnotify.order_confirmed"
	OrderStatusChanged       = "smsnotify.order_status_changed"
	ReservationAssigned      = "smsnotify.reservation_assigned"
	ReservationConfirmed     = "smsnotify.reservation_confirmed"
	ReservationStatusChanged = "smsnotify.reservation_status_changed"
	OTPCode                  = "smsnotify.otp_code"
)

type catalogEntry struct {
	Label   string
	Pattern string
}

// catalog holds the default bodies. Deployments localize them through config.
var catalog = map[string]catalogEntry{
	NewOrder: {
		Label:   "Order placed",
		Pattern: "Hi {customer_name}, your order #{order_id} at {location_name} has been received. {order_type} time: {order_date} {order_time}.",
	},
	NewReservation: {
		Label:   "New reservation",
		Pattern: "Hi {customer_name}, your table for {reservation_guests} at {location_name} on {reservation_date} {reservation_time} is booked. Ref #{reservation_id}.",
	},
	OrderAssigned: {
		Label:   "Order assigned",
		Pattern: "Order #{order_id} has been assigned to you by {location_name}.",
	},
	OrderConfirmed: {
		Label:   "Order confirmed",
		Pattern: "Hi {customer_name}, your order #{order_id} has been confirmed by {location_name}.",
	},
	OrderStatusChanged: {
		Label:   "Order status changed",
		Pattern: "Hi {customer_name}, your order #{order_id} is now {order_status}. {status_comment}",
	},
	ReservationAssigned: {
		Label:   "Reservation assigned",
		Pattern: "Reservation #{reservation_id} on {reservation_date} {reservation_time} has been assigned to you.",
	},
	ReservationConfirmed: {
		Label:   "Reservation confirmed",
		Pattern: "Hi {customer_name}, your reservation #{reservation_id} at {location_name} is confirmed.",
	},
	ReservationStatusChanged: {
		Label:   "Reservation status changed",
		Pattern: "Hi {customer_name}, your reservation #{reservation_id} is now {reservation_status}. {status_comment}",
	},
	OTPCode: {
		Label:   "Verification code",
		Pattern: "Your verification code is {code}. It expires in {expiry_minutes} minutes.",
	},
}

// NewCatalogRegistry creates a registry holding every built-in template.
// overrides replaces the body of a built-in id or adds a custom template.
func NewCatalogRegistry(overrides map[string]string) (*Registry, error) {
	r := NewRegistry()

	for id, entry := range catalog {
		pattern := entry.Pattern
		if custom, ok := overrides[id]; ok && custom != "" {
			pattern = custom
		}
		if err := r.RegisterWithLabel(id, pattern, entry.Label); err != nil {
			return nil, fmt.Errorf("registering template %s: %w", id, err)
		}
	}

	for id, pattern := range overrides {
		if _, builtin := catalog[id]; builtin {
			continue
		}
		if err := r.Register(id, pattern); err != nil {
			return nil, fmt.Errorf("registering template %s: %w", id, err)
		}
	}

	return r, nil
}
