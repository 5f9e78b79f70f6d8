package sink

import (
	"context"
	"sync"
	"testing"

	"github.com/mailprobe/mailprobe/internal/core"
)

func TestMemorySinkStoresRecords(t *testing.T) {
	t.Parallel()

	s := NewMemorySink()
	rec := &core.ValidationRecord{
		Address:    core.Address{Raw: "user@example.com", LocalPart: "user", Domain: "example.com"},
		Confidence: core.ConfidenceResult{Score: 95, Band: core.BandLow},
	}

	if err := s.Store(context.Background(), "acct", rec); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	got := s.Records()
	if len(got) != 1 {
		t.Fatalf("records = %d, want 1", len(got))
	}
	if got[0].Owner != "acct" {
		t.Errorf("owner = %q, want acct", got[0].Owner)
	}
	if got[0].Record != rec {
		t.Error("stored record is not the one handed in")
	}
}

func TestMemorySinkConcurrentWrites(t *testing.T) {
	t.Parallel()

	s := NewMemorySink()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Store(context.Background(), "acct", &core.ValidationRecord{})
		}()
	}
	wg.Wait()

	if got := len(s.Records()); got != 50 {
		t.Errorf("records = %d, want 50", got)
	}
}
