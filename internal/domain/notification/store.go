package notification

import "context"

// DeliveryLogStore defines the contract for persisting dispatch outcomes.
// Implementations live in infra/store/ (e.g., Supabase).
type DeliveryLogStore interface {
	// Create inserts a new delivery log record and fills in its ID.
	Create(ctx context.Context, log *DeliveryLog) error

	// GetByID retrieves a delivery log by its ID. Returns nil, nil if absent.
	GetByID(ctx context.Context, id string) (*DeliveryLog, error)

	// List retrieves delivery logs with pagination and filtering.
	List(ctx context.Context, filter ListFilter) ([]*DeliveryLog, int, error)
}
