package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

// fakeQuota is an in-test quota store with a fixed limit and a choice of
// admission behavior for oversized requests.
type fakeQuota struct {
	mu      sync.Mutex
	used    int64
	limit   int64
	partial bool
}

func (q *fakeQuota) Reserve(_ context.Context, _ string, n int) (Reservation, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	remaining := q.limit - q.used
	switch {
	case int64(n) <= remaining:
		q.used += int64(n)
		return Reservation{Decision: QuotaFull, Approved: n}, nil
	case remaining <= 0 || !q.partial:
		return Reservation{Decision: QuotaRejected}, nil
	default:
		q.used = q.limit
		return Reservation{Decision: QuotaPartial, Approved: int(remaining)}, nil
	}
}

func (q *fakeQuota) Release(_ context.Context, _ string, n int) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.used -= int64(n)
	if q.used < 0 {
		q.used = 0
	}
	return nil
}

func (q *fakeQuota) Usage(_ context.Context, _ string) (int64, int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.used, q.limit, nil
}

func newBatchService(sink *fakeSink) *VerifierService {
	return newTestService(
		&fakeResolver{result: passedDNS()},
		&fakeClassifier{},
		&fakeProber{smtp: &SMTPResult{Outcome: OutcomePassed, Accepted: true}},
		sink,
	)
}

func addressList(n int) []string {
	emails := make([]string, n)
	for i := range emails {
		emails[i] = fmt.Sprintf("user%d@example.com", i)
	}
	return emails
}

func collect(results <-chan StreamItem) []StreamItem {
	var items []StreamItem
	for item := range results {
		items = append(items, item)
	}
	return items
}

func TestBatchRunCompletes(t *testing.T) {
	t.Parallel()

	quota := &fakeQuota{limit: 100}
	orch := NewBatchOrchestrator(newBatchService(&fakeSink{}), quota, 4, zap.NewNop())

	job, results, err := orch.Run(context.Background(), "acct", addressList(20), ValidationOptions{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	items := collect(results)
	if len(items) != 20 {
		t.Fatalf("emitted %d items, want 20", len(items))
	}

	// Every submission index appears exactly once.
	seen := make(map[int]bool)
	for _, item := range items {
		if seen[item.Index] {
			t.Errorf("index %d emitted twice", item.Index)
		}
		seen[item.Index] = true
		if item.Record == nil {
			t.Fatalf("index %d has nil record", item.Index)
		}
	}
	for i := 0; i < 20; i++ {
		if !seen[i] {
			t.Errorf("index %d never emitted", i)
		}
	}

	if got := job.State(); got != BatchCompleted {
		t.Errorf("state = %q, want %q", got, BatchCompleted)
	}
	used, _, _ := quota.Usage(context.Background(), "acct")
	if used != 20 {
		t.Errorf("quota used = %d, want 20", used)
	}
}

func TestBatchRunQuotaRejected(t *testing.T) {
	t.Parallel()

	quota := &fakeQuota{limit: 3}
	sink := &fakeSink{}
	orch := NewBatchOrchestrator(newBatchService(sink), quota, 4, zap.NewNop())

	job, _, err := orch.Run(context.Background(), "acct", addressList(10), ValidationOptions{})
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("Run() error = %v, want ErrQuotaExceeded", err)
	}
	if got := job.State(); got != BatchRejected {
		t.Errorf("state = %q, want %q", got, BatchRejected)
	}
	if sink.count() != 0 {
		t.Errorf("sink writes = %d, want 0 for a rejected batch", sink.count())
	}
	used, _, _ := quota.Usage(context.Background(), "acct")
	if used != 0 {
		t.Errorf("quota used = %d, want 0 for a rejected batch", used)
	}
}

func TestBatchRunPartialAdmission(t *testing.T) {
	t.Parallel()

	quota := &fakeQuota{limit: 3, partial: true}
	orch := NewBatchOrchestrator(newBatchService(&fakeSink{}), quota, 2, zap.NewNop())

	job, results, err := orch.Run(context.Background(), "acct", addressList(10), ValidationOptions{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if job.Admitted != 3 {
		t.Fatalf("admitted = %d, want 3", job.Admitted)
	}

	items := collect(results)
	if len(items) != 3 {
		t.Fatalf("emitted %d items, want 3", len(items))
	}
	// Partial admission keeps the earliest submissions.
	for _, item := range items {
		if item.Index > 2 {
			t.Errorf("index %d emitted beyond the admitted prefix", item.Index)
		}
	}
	if got := job.State(); got != BatchCompleted {
		t.Errorf("state = %q, want %q", got, BatchCompleted)
	}
}

// blockingResolver parks every lookup until released, so a test can cancel a
// batch with work still in flight.
type blockingResolver struct {
	release chan struct{}
	started chan struct{}
	once    sync.Once
}

func (r *blockingResolver) Resolve(ctx context.Context, _ string) *DNSResult {
	r.once.Do(func() { close(r.started) })
	select {
	case <-r.release:
	case <-ctx.Done():
	}
	return passedDNS()
}

func TestBatchRunCancellation(t *testing.T) {
	t.Parallel()

	resolver := &blockingResolver{
		release: make(chan struct{}),
		started: make(chan struct{}),
	}
	svc := NewVerifierService(
		fakeSyntax{},
		resolver,
		&fakeClassifier{},
		&fakeProber{smtp: &SMTPResult{Outcome: OutcomePassed, Accepted: true}},
		&fakeSuggester{},
		&fakeSink{},
		zap.NewNop(),
	)
	quota := &fakeQuota{limit: 100}
	orch := NewBatchOrchestrator(svc, quota, 2, zap.NewNop())

	job, results, err := orch.Run(context.Background(), "acct", addressList(50), ValidationOptions{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	<-resolver.started
	job.Cancel()
	close(resolver.release)

	items := collect(results)
	if len(items) >= 50 {
		t.Errorf("emitted %d items after cancellation, want fewer than 50", len(items))
	}
	if got := job.State(); got != BatchCancelled {
		t.Errorf("state = %q, want %q", got, BatchCancelled)
	}

	// Reservations for never-started items are returned; started items keep
	// theirs, so usage stays between emitted and admitted.
	used, _, _ := quota.Usage(context.Background(), "acct")
	if used > int64(job.Admitted) {
		t.Errorf("quota used = %d exceeds admitted %d", used, job.Admitted)
	}
	if used < int64(len(items)) {
		t.Errorf("quota used = %d below emitted count %d", used, len(items))
	}
}

func TestBatchRunItemIsolation(t *testing.T) {
	t.Parallel()

	// First probe panics; the batch must still deliver a record per address.
	prober := &fakeProber{
		smtp:      &SMTPResult{Outcome: OutcomePassed, Accepted: true},
		panicOnce: true,
	}
	svc := NewVerifierService(
		fakeSyntax{},
		&fakeResolver{result: passedDNS()},
		&fakeClassifier{},
		prober,
		&fakeSuggester{},
		&fakeSink{},
		zap.NewNop(),
	)
	orch := NewBatchOrchestrator(svc, &fakeQuota{limit: 100}, 1, zap.NewNop())

	_, results, err := orch.Run(context.Background(), "acct", addressList(5), ValidationOptions{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	items := collect(results)
	if len(items) != 5 {
		t.Fatalf("emitted %d items, want 5", len(items))
	}
	failed := 0
	for _, item := range items {
		if item.Record.InternalError != "" {
			failed++
		}
	}
	if failed != 1 {
		t.Errorf("internal-error records = %d, want exactly 1", failed)
	}
}

func TestBatchRunStreamClosesPromptly(t *testing.T) {
	t.Parallel()

	orch := NewBatchOrchestrator(newBatchService(&fakeSink{}), &fakeQuota{limit: 10}, 4, zap.NewNop())
	_, results, err := orch.Run(context.Background(), "acct", addressList(10), ValidationOptions{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	done := make(chan struct{})
	go func() {
		collect(results)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("result stream did not close")
	}
}
