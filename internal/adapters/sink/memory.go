// Package sink implements the write-side persistence collaborator for
// finished validation records. Writes are insert-only and best-effort: the
// pipeline never blocks on durable storage.
package sink

import (
	"context"
	"sync"

	"github.com/mailprobe/mailprobe/internal/core"
)

// MemorySink keeps records in process memory. It is the default sink and
// doubles as the test spy.
type MemorySink struct {
	mu      sync.Mutex
	records []StoredRecord
}

// StoredRecord pairs a record with the owner it was validated for.
type StoredRecord struct {
	Owner  string
	Record *core.ValidationRecord
}

// NewMemorySink creates an in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Store appends the record.
func (s *MemorySink) Store(_ context.Context, owner string, record *core.ValidationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, StoredRecord{Owner: owner, Record: record})
	return nil
}

// Records returns a snapshot of everything stored so far.
func (s *MemorySink) Records() []StoredRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]StoredRecord, len(s.records))
	copy(out, s.records)
	return out
}
