package channel

import (
	"fmt"
	"iter"
	"sync"
	"sync/atomic"

	"smsnotify/internal/common"
)

// Channel is a registered SMS transport together with its current configuration.
type Channel struct {
	ID          string
	Driver      Driver
	Enabled     bool
	Credentials Credentials
}

// State is an immutable view of the channel set. A new State is published
// on every registration or configuration change; readers holding an old one
// are never affected.
type State struct {
	order     []string
	channels  map[string]*Channel
	defaultID string
}

// Default returns the id of the default channel.
func (s *State) Default() string {
	return s.defaultID
}

// Lookup returns the channel registered under id.
func (s *State) Lookup(id string) (Channel, error) {
	ch, ok := s.channels[id]
	if !ok {
		return Channel{}, fmt.Errorf("%w: %s", common.ErrUnknownChannel, id)
	}
	return ch.copy(), nil
}

// Resolve picks the channel for a send: the override when it is enabled,
// otherwise the default when it is enabled.
func (s *State) Resolve(override string) (Channel, error) {
	if override != "" {
		if ch, ok := s.channels[override]; ok && ch.Enabled {
			return ch.copy(), nil
		}
	}
	if ch, ok := s.channels[s.defaultID]; ok && ch.Enabled {
		return ch.copy(), nil
	}
	return Channel{}, common.ErrNoActiveChannel
}

// All returns every channel of the state in registration order.
func (s *State) All() []Channel {
	out := make([]Channel, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.channels[id].copy())
	}
	return out
}

// copy returns ch with its own credential map.
func (ch *Channel) copy() Channel {
	out := *ch
	out.Credentials = ch.Credentials.clone()
	return out
}

func (s *State) clone() *State {
	next := &State{
		order:     append([]string(nil), s.order...),
		channels:  make(map[string]*Channel, len(s.channels)),
		defaultID: s.defaultID,
	}
	for id, ch := range s.channels {
		cp := ch.copy()
		next.channels[id] = &cp
	}
	return next
}

// Configuration describes the mutable part of the channel set.
// Channels missing from Enabled or Credentials keep their current values;
// an empty Default keeps the current default.
type Configuration struct {
	Enabled     map[string]bool
	Credentials map[string]Credentials
	Default     string
}

// Registry owns the process-wide channel set. Reads are lock-free; writes
// are serialized and published atomically.
type Registry struct {
	mu    sync.Mutex
	state atomic.Pointer[State]
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	r := &Registry{}
	r.state.Store(&State{channels: make(map[string]*Channel)})
	return r
}

// Register adds a channel backed by driver. New channels start disabled;
// the first registered channel becomes the default.
func (r *Registry) Register(id string, driver Driver) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.state.Load()
	if _, exists := cur.channels[id]; exists {
		return fmt.Errorf("%w: %s", common.ErrDuplicateChannel, id)
	}

	next := cur.clone()
	next.order = append(next.order, id)
	next.channels[id] = &Channel{ID: id, Driver: driver, Credentials: Credentials{}}
	if next.defaultID == "" {
		next.defaultID = id
	}
	r.state.Store(next)
	return nil
}

// Lookup returns the channel registered under id.
func (r *Registry) Lookup(id string) (Channel, error) {
	return r.state.Load().Lookup(id)
}

// Snapshot returns the current state for a consistent multi-step read.
func (r *Registry) Snapshot() *State {
	return r.state.Load()
}

// ListEnabled yields enabled channels in registration order. Every range
// over the sequence reads the state current at that moment.
func (r *Registry) ListEnabled() iter.Seq[Channel] {
	return func(yield func(Channel) bool) {
		s := r.state.Load()
		for _, id := range s.order {
			ch := s.channels[id]
			if !ch.Enabled {
				continue
			}
			if !yield(ch.copy()) {
				return
			}
		}
	}
}

// All returns every registered channel in registration order.
func (r *Registry) All() []Channel {
	return r.state.Load().All()
}

// Validate reports whether cfg could be applied to the current state
// without publishing anything.
func (r *Registry) Validate(cfg Configuration) error {
	return r.state.Load().validate(cfg)
}

// Apply validates cfg against the registered channels and publishes the
// resulting state. On error the current state is left untouched.
func (r *Registry) Apply(cfg Configuration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.state.Load()
	if err := cur.validate(cfg); err != nil {
		return err
	}

	next := cur.clone()
	for id, enabled := range cfg.Enabled {
		next.channels[id].Enabled = enabled
	}
	for id, creds := range cfg.Credentials {
		next.channels[id].Credentials = creds.clone()
	}
	if cfg.Default != "" {
		next.defaultID = cfg.Default
	}
	r.state.Store(next)
	return nil
}

func (s *State) validate(cfg Configuration) error {
	if cfg.Default != "" {
		if _, ok := s.channels[cfg.Default]; !ok {
			return fmt.Errorf("%w: %s", common.ErrInvalidDefaultChannel, cfg.Default)
		}
	}
	for id := range cfg.Enabled {
		if _, ok := s.channels[id]; !ok {
			return fmt.Errorf("%w: %s", common.ErrUnknownChannel, id)
		}
	}
	for id := range cfg.Credentials {
		if _, ok := s.channels[id]; !ok {
			return fmt.Errorf("%w: %s", common.ErrUnknownChannel, id)
		}
	}
	return nil
}
