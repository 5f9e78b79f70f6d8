// Package quota implements the per-owner validation allowance behind the
// core.QuotaStore port. Reservation is a single atomic check-and-increment
// per owner: two concurrent batches can never both see "quota available".
package quota

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/mailprobe/mailprobe/internal/core"
)

// AdmissionPolicy decides what happens when a batch asks for more than the
// owner's remaining allowance.
type AdmissionPolicy string

const (
	// PolicyReject refuses the whole batch.
	PolicyReject AdmissionPolicy = "reject"
	// PolicyPartial admits only the remaining allowance.
	PolicyPartial AdmissionPolicy = "partial"
)

// ownerCounter is one owner's lifetime counter.
type ownerCounter struct {
	used  int64
	limit int64
}

// MemoryStore is the in-process quota store, used for single-node
// deployments and tests.
type MemoryStore struct {
	mu           sync.Mutex
	owners       map[string]*ownerCounter
	defaultLimit int64
	policy       AdmissionPolicy
	logger       *zap.Logger
}

// NewMemoryStore creates an in-memory quota store. Owners start with
// defaultLimit lifetime validations.
func NewMemoryStore(defaultLimit int64, policy AdmissionPolicy, logger *zap.Logger) *MemoryStore {
	if policy != PolicyPartial {
		policy = PolicyReject
	}
	return &MemoryStore{
		owners:       make(map[string]*ownerCounter),
		defaultLimit: defaultLimit,
		policy:       policy,
		logger:       logger,
	}
}

// SetLimit sets an owner's lifetime limit, keeping any usage already
// recorded.
func (s *MemoryStore) SetLimit(owner string, limit int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counter(owner).limit = limit
}

// Reserve atomically checks and reserves up to n validations.
func (s *MemoryStore) Reserve(_ context.Context, owner string, n int) (core.Reservation, error) {
	if n <= 0 {
		return core.Reservation{Decision: core.QuotaFull, Approved: 0}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.counter(owner)
	remaining := c.limit - c.used
	switch {
	case remaining >= int64(n):
		c.used += int64(n)
		return core.Reservation{Decision: core.QuotaFull, Approved: n}, nil
	case remaining <= 0 || s.policy == PolicyReject:
		return core.Reservation{Decision: core.QuotaRejected}, nil
	default:
		c.used = c.limit
		return core.Reservation{Decision: core.QuotaPartial, Approved: int(remaining)}, nil
	}
}

// Release returns n unconsumed reservations to the owner.
func (s *MemoryStore) Release(_ context.Context, owner string, n int) error {
	if n <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.counter(owner)
	c.used -= int64(n)
	if c.used < 0 {
		c.used = 0
	}
	return nil
}

// Usage reports an owner's current used count and lifetime limit.
func (s *MemoryStore) Usage(_ context.Context, owner string) (int64, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.counter(owner)
	return c.used, c.limit, nil
}

// counter returns the owner's counter, creating it lazily. Callers hold
// the store lock.
func (s *MemoryStore) counter(owner string) *ownerCounter {
	c, ok := s.owners[owner]
	if !ok {
		c = &ownerCounter{limit: s.defaultLimit}
		s.owners[owner] = c
	}
	return c
}
