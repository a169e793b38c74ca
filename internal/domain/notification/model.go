package notification

// Request is a single SMS to render and deliver. It is built by a caller,
// dispatched once, and discarded.
type Request struct {
	TemplateID string            `json:"template" binding:"required"`
	To         string            `json:"to" binding:"required"`
	Variables  map[string]string `json:"variables"`

	// Channel optionally overrides the configured default channel.
	Channel string `json:"channel"`
}

// DeliveryResult is the outcome of one driver invocation.
type DeliveryResult struct {
	Success   bool   `json:"success"`
	Channel   string `json:"channel"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ChannelView is the API representation of a registered channel.
// Credentials are never exposed.
type ChannelView struct {
	ID      string `json:"id"`
	Enabled bool   `json:"enabled"`
	Default bool   `json:"default"`
}

// TemplateView is the API representation of a registered template.
type TemplateView struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Pattern string `json:"pattern"`
}
