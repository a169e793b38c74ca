package settings

import (
	"context"
	"strconv"
	"sync"
)

// Store defines the contract for persisting the settings snapshot.
// Implementations live in infra/store/.
type Store interface {
	// Load returns the stored snapshot. An empty store yields an empty snapshot.
	Load(ctx context.Context) (Snapshot, error)

	// Save upserts every key of snapshot.
	Save(ctx context.Context, snapshot Snapshot) error

	// Version returns an opaque marker that changes whenever the snapshot does.
	Version(ctx context.Context) (string, error)
}

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps settings in process memory. Used when no Supabase
// project is configured and in tests.
type MemoryStore struct {
	mu       sync.RWMutex
	data     Snapshot
	revision int
}

// NewMemoryStore creates an empty in-memory settings store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: Snapshot{}}
}

// Load returns a copy of the stored snapshot.
func (m *MemoryStore) Load(_ context.Context) (Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data.Clone(), nil
}

// Save merges snapshot into the stored one.
func (m *MemoryStore) Save(_ context.Context, snapshot Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = m.data.Merge(snapshot)
	m.revision++
	return nil
}

// Version returns the save counter.
func (m *MemoryStore) Version(_ context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return strconv.Itoa(m.revision), nil
}
