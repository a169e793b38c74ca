package settings

import (
	"context"
	"fmt"
	"log/slog"

	"smsnotify/internal/domain/channel"
)

// Notifier broadcasts that the stored settings changed so other processes
// can reload. Implementations live in infra/queue/.
type Notifier interface {
	NotifySettingsChanged(ctx context.Context) error
}

// Binder applies settings snapshots to the channel registry.
type Binder struct {
	registry *channel.Registry
	store    Store
}

// NewBinder creates a binder that reads from store and writes to registry.
func NewBinder(registry *channel.Registry, store Store) *Binder {
	return &Binder{registry: registry, store: store}
}

// Apply parses snapshot and updates the registry in a single step. Applying
// the same snapshot twice yields the same state. On error the registry is
// left as it was.
func (b *Binder) Apply(snapshot Snapshot) error {
	cfg, err := snapshot.Parse(b.registry.Snapshot())
	if err != nil {
		return err
	}
	if err := b.registry.Apply(cfg); err != nil {
		return fmt.Errorf("applying settings: %w", err)
	}
	return nil
}

// Reload reads the stored snapshot and applies it.
func (b *Binder) Reload(ctx context.Context) error {
	snapshot, err := b.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	if err := b.Apply(snapshot); err != nil {
		return err
	}

	slog.Info("settings applied",
		"default_channel", b.registry.Snapshot().Default(),
		"keys", len(snapshot),
	)
	return nil
}

// Boot seeds an empty store with seed and then applies the stored snapshot.
func (b *Binder) Boot(ctx context.Context, seed Snapshot) error {
	current, err := b.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	if len(current) == 0 && len(seed) > 0 {
		if err := b.store.Save(ctx, seed); err != nil {
			return fmt.Errorf("seeding settings: %w", err)
		}
		slog.Info("settings store seeded from config", "keys", len(seed))
	}
	return b.Reload(ctx)
}

// Update merges changes into the stored snapshot, persists them and then
// applies the result. The registry is only touched once the merged snapshot
// is valid and saved.
func (b *Binder) Update(ctx context.Context, changes Snapshot) (Snapshot, error) {
	current, err := b.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	merged := current.Merge(changes)
	cfg, err := merged.Parse(b.registry.Snapshot())
	if err != nil {
		return nil, err
	}
	if err := b.registry.Validate(cfg); err != nil {
		return nil, fmt.Errorf("applying settings: %w", err)
	}

	if err := b.store.Save(ctx, changes); err != nil {
		return nil, fmt.Errorf("saving settings: %w", err)
	}
	if err := b.registry.Apply(cfg); err != nil {
		return nil, fmt.Errorf("applying settings: %w", err)
	}
	return merged, nil
}

// Current returns the stored snapshot.
func (b *Binder) Current(ctx context.Context) (Snapshot, error) {
	snapshot, err := b.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	return snapshot, nil
}
