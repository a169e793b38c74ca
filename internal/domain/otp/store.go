package otp

import (
	"context"
	"sync"
)

// UpdateFunc receives a copy of the subject's current challenge (nil when
// there is none) and returns the challenge to store. Returning nil removes
// the record; returning an error aborts without writing.
type UpdateFunc func(current *Challenge) (*Challenge, error)

// Store defines the contract for persisting challenges. Implementations
// live in infra/otpstore/.
type Store interface {
	// Update runs fn and persists its result. Updates for one subject are
	// serialized; fn may be invoked more than once if a concurrent writer
	// wins, so it must not have side effects beyond its return values.
	Update(ctx context.Context, subject string, fn UpdateFunc) error

	// Get returns the subject's challenge, or nil if none exists.
	Get(ctx context.Context, subject string) (*Challenge, error)
}

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps challenges in process memory with one lock per subject.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]Challenge
	locks   map[string]*subjectLock
}

type subjectLock struct {
	sync.Mutex
	refs int
}

// NewMemoryStore creates an empty in-memory challenge store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]Challenge),
		locks:   make(map[string]*subjectLock),
	}
}

// Update serializes fn against other updates of the same subject.
func (m *MemoryStore) Update(ctx context.Context, subject string, fn UpdateFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l := m.acquire(subject)
	defer m.release(subject, l)

	m.mu.Lock()
	var current *Challenge
	if rec, ok := m.records[subject]; ok {
		current = &rec
	}
	m.mu.Unlock()

	next, err := fn(current)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if next == nil {
		delete(m.records, subject)
		return nil
	}
	m.records[subject] = *next
	return nil
}

// Get returns a copy of the subject's challenge.
func (m *MemoryStore) Get(_ context.Context, subject string) (*Challenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[subject]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *MemoryStore) acquire(subject string) *subjectLock {
	m.mu.Lock()
	l, ok := m.locks[subject]
	if !ok {
		l = &subjectLock{}
		m.locks[subject] = l
	}
	l.refs++
	m.mu.Unlock()

	l.Lock()
	return l
}

func (m *MemoryStore) release(subject string, l *subjectLock) {
	l.Unlock()

	m.mu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(m.locks, subject)
	}
	m.mu.Unlock()
}
