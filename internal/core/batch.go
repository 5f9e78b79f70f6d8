package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// BatchJob tracks one batch submission. It is owned by the orchestrator for
// its lifetime and destroyed once all results are delivered or the caller
// disconnects.
type BatchJob struct {
	ID       string
	Owner    string
	Emails   []string
	Admitted int

	mu      sync.Mutex
	state   BatchState
	emitted int
	cancel  context.CancelFunc
}

// State returns the job's current lifecycle state.
func (j *BatchJob) State() BatchState {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

// Emitted returns how many results have been streamed so far.
func (j *BatchJob) Emitted() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.emitted
}

// Cancel stops the batch. In-flight probes finish or time out naturally;
// already-emitted results remain valid.
func (j *BatchJob) Cancel() {
	j.mu.Lock()
	cancel := j.cancel
	j.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (j *BatchJob) setState(s BatchState) {
	j.mu.Lock()
	j.state = s
	j.mu.Unlock()
}

func (j *BatchJob) noteEmitted() {
	j.mu.Lock()
	j.emitted++
	j.mu.Unlock()
}

// indexedEmail is one unit of work pulled by the pool.
type indexedEmail struct {
	index int
	email string
}

// BatchOrchestrator fans a list of addresses out over a bounded worker pool
// and streams results as they complete. Admission goes through the quota
// store before any pipeline work starts.
type BatchOrchestrator struct {
	service *VerifierService
	quota   QuotaStore
	logger  *zap.Logger
	workers int
}

// NewBatchOrchestrator creates a new orchestrator with the given pool size.
func NewBatchOrchestrator(service *VerifierService, quota QuotaStore, workers int, logger *zap.Logger) *BatchOrchestrator {
	if workers < 1 {
		workers = 1
	}
	return &BatchOrchestrator{
		service: service,
		quota:   quota,
		logger:  logger,
		workers: workers,
	}
}

// Run admits and executes a batch, returning the job handle and the result
// stream. The stream is closed after the last result; each item carries the
// submission index of its address so the caller can restore submission
// order. On quota rejection it returns ErrQuotaExceeded and no work is
// performed.
func (o *BatchOrchestrator) Run(ctx context.Context, owner string, emails []string, opts ValidationOptions) (*BatchJob, <-chan StreamItem, error) {
	job := &BatchJob{
		ID:     fmt.Sprintf("batch-%d", time.Now().UnixNano()),
		Owner:  owner,
		Emails: emails,
		state:  BatchPending,
	}

	if ctx.Err() != nil {
		job.setState(BatchCancelled)
		return job, nil, ErrBatchCancelled
	}

	res, err := o.quota.Reserve(ctx, owner, len(emails))
	if err != nil {
		job.setState(BatchRejected)
		return job, nil, fmt.Errorf("quota reservation failed: %w", err)
	}
	if res.Decision == QuotaRejected {
		job.setState(BatchRejected)
		o.logger.Info("Batch rejected by quota gate",
			zap.String("owner", owner),
			zap.Int("requested", len(emails)))
		return job, nil, ErrQuotaExceeded
	}
	job.Admitted = res.Approved

	batchCtx, cancel := context.WithCancel(ctx)
	job.mu.Lock()
	job.cancel = cancel
	job.state = BatchRunning
	job.mu.Unlock()

	o.logger.Info("Batch admitted",
		zap.String("job_id", job.ID),
		zap.String("owner", owner),
		zap.Int("requested", len(emails)),
		zap.Int("admitted", job.Admitted),
		zap.String("decision", string(res.Decision)))

	jobs := make(chan indexedEmail)
	results := make(chan StreamItem)

	var wg sync.WaitGroup
	for i := 0; i < o.workers; i++ {
		wg.Add(1)
		go o.worker(batchCtx, job, opts, jobs, results, &wg)
	}

	// Feeder counts the items it never handed to a worker so their
	// reservations can be released on cancellation.
	go func() {
		unstarted := 0
		admitted := emails[:job.Admitted]
	feed:
		for i, email := range admitted {
			select {
			case jobs <- indexedEmail{index: i, email: email}:
			case <-batchCtx.Done():
				unstarted = len(admitted) - i
				break feed
			}
		}
		close(jobs)

		wg.Wait()
		close(results)

		if batchCtx.Err() != nil {
			job.setState(BatchCancelled)
			o.releaseUnstarted(owner, unstarted)
			o.logger.Info("Batch cancelled",
				zap.String("job_id", job.ID),
				zap.Int("emitted", job.Emitted()),
				zap.Int("released", unstarted))
		} else {
			job.setState(BatchCompleted)
			o.logger.Info("Batch completed",
				zap.String("job_id", job.ID),
				zap.Int("emitted", job.Emitted()))
		}
		cancel()
	}()

	return job, results, nil
}

// worker pulls addresses and runs the full pipeline for each one
// independently. A failure in one item never aborts the batch.
func (o *BatchOrchestrator) worker(ctx context.Context, job *BatchJob, opts ValidationOptions, jobs <-chan indexedEmail, results chan<- StreamItem, wg *sync.WaitGroup) {
	defer wg.Done()
	for item := range jobs {
		rec := o.service.Verify(ctx, job.Owner, item.email, opts)
		select {
		case results <- StreamItem{Index: item.index, Record: rec}:
			job.noteEmitted()
		case <-ctx.Done():
			// The consumer is gone; drop the remaining work.
			return
		}
	}
}

// releaseUnstarted returns reservations for items that never started. The
// release context is fresh because the batch context is already cancelled.
func (o *BatchOrchestrator) releaseUnstarted(owner string, n int) {
	if n <= 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := o.quota.Release(ctx, owner, n); err != nil {
		o.logger.Warn("Failed to release unstarted quota",
			zap.String("owner", owner),
			zap.Int("count", n),
			zap.Error(err))
	}
}
