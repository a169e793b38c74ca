package notification

import (
	"context"
	"time"
)

// TemplateRenderer defines the contract for rendering message templates.
// Implementations live in infra/template/.
type TemplateRenderer interface {
	// Render substitutes vars into the template identified by id.
	Render(id string, vars map[string]string) (string, error)
}

// TemplateCatalog lists registered templates for the API.
type TemplateCatalog interface {
	Templates() []TemplateView
}

// Delivery describes one dispatch outcome reported to observers.
type Delivery struct {
	Request  *Request
	Result   DeliveryResult
	Err      error
	Duration time.Duration
	At       time.Time
}

// Observer receives dispatch outcomes. Failed is invoked exactly once per
// failed send; implementations must not block for long.
type Observer interface {
	Delivered(ctx context.Context, d *Delivery)
	Failed(ctx context.Context, d *Delivery)
}
