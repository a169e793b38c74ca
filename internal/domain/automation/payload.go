package automation

import (
	"maps"
	"strconv"
	"strings"
)

// Person is a customer or staff member attached to an event.
type Person struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`
	Telephone string `json:"telephone,omitempty"`
}

// FullName joins the first and last name.
func (p *Person) FullName() string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

func (p *Person) phone() string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(p.Telephone)
}

// Order is the order entity carried by order lifecycle events.
type Order struct {
	ID       int64   `json:"id"`
	Status   string  `json:"status"`
	Type     string  `json:"type,omitempty"`
	Total    string  `json:"total,omitempty"`
	Date     string  `json:"date,omitempty"`
	Time     string  `json:"time,omitempty"`
	Customer *Person `json:"customer,omitempty"`
	Assignee *Person `json:"assignee,omitempty"`

	// StatusComment is the note left with the latest status change.
	StatusComment string `json:"status_comment,omitempty"`
}

// Reservation is the reservation entity carried by reservation events.
type Reservation struct {
	ID       int64   `json:"id"`
	Status   string  `json:"status"`
	Guests   int     `json:"guests,omitempty"`
	Date     string  `json:"date,omitempty"`
	Time     string  `json:"time,omitempty"`
	Customer *Person `json:"customer,omitempty"`
	Assignee *Person `json:"assignee,omitempty"`

	StatusComment string `json:"status_comment,omitempty"`
}

// Location is the restaurant the event belongs to.
type Location struct {
	Name      string `json:"name"`
	Telephone string `json:"telephone,omitempty"`
}

// EventPayload is a host platform lifecycle event.
type EventPayload struct {
	Event       string            `json:"event" binding:"required"`
	Order       *Order            `json:"order,omitempty"`
	Reservation *Reservation      `json:"reservation,omitempty"`
	Location    *Location         `json:"location,omitempty"`
	Extra       map[string]string `json:"extra,omitempty"`
}

// Variables flattens the payload into template placeholders. Absent
// entities contribute nothing.
func (p *EventPayload) Variables() map[string]string {
	vars := make(map[string]string)

	if o := p.Order; o != nil {
		vars["order_id"] = strconv.FormatInt(o.ID, 10)
		vars["order_status"] = o.Status
		vars["order_type"] = o.Type
		vars["order_total"] = o.Total
		vars["order_date"] = o.Date
		vars["order_time"] = o.Time
		vars["status_comment"] = o.StatusComment
		if o.Customer != nil {
			vars["customer_name"] = o.Customer.FullName()
			vars["first_name"] = o.Customer.FirstName
			vars["last_name"] = o.Customer.LastName
		}
		if o.Assignee != nil {
			vars["staff_name"] = o.Assignee.FullName()
		}
	}

	if r := p.Reservation; r != nil {
		vars["reservation_id"] = strconv.FormatInt(r.ID, 10)
		vars["reservation_status"] = r.Status
		vars["reservation_guests"] = strconv.Itoa(r.Guests)
		vars["reservation_date"] = r.Date
		vars["reservation_time"] = r.Time
		if r.StatusComment != "" || p.Order == nil {
			vars["status_comment"] = r.StatusComment
		}
		if r.Customer != nil {
			vars["customer_name"] = r.Customer.FullName()
			vars["first_name"] = r.Customer.FirstName
			vars["last_name"] = r.Customer.LastName
		}
		if r.Assignee != nil {
			vars["staff_name"] = r.Assignee.FullName()
		}
	}

	if l := p.Location; l != nil {
		vars["location_name"] = l.Name
		vars["location_telephone"] = l.Telephone
	}

	maps.Copy(vars, p.Extra)
	return vars
}
