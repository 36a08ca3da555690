package businessflow

import (
	"context"
	"fmt"
	"log"

	"github.com/applaud-app/applaud/app/dto"
	"github.com/applaud-app/applaud/app/services"
	"github.com/applaud-app/applaud/repository"
	"github.com/applaud-app/applaud/utils"
)

// CounterFlow defines the counter use cases: fire-and-forget increment
// dispatch and read-only status for the home page.
type CounterFlow interface {
	EnqueueIncrement(ctx context.Context, metadata *ClientMetadata) (*dto.EnqueueIncrementResponse, error)
	GetCounterStatus(ctx context.Context, metadata *ClientMetadata) (*dto.CounterStatusResponse, error)
}

// CounterFlowImpl implements CounterFlow
type CounterFlowImpl struct {
	counterRepo repository.CounterRepository
	queue       services.JobQueue
	delaySecs   int
}

// NewCounterFlow creates a new counter flow
func NewCounterFlow(counterRepo repository.CounterRepository, queue services.JobQueue, delaySecs int) CounterFlow {
	if delaySecs < 0 {
		delaySecs = 0
	}
	return &CounterFlowImpl{
		counterRepo: counterRepo,
		queue:       queue,
		delaySecs:   delaySecs,
	}
}

// EnqueueIncrement dispatches one increment task and returns without waiting
// for processing. A queue failure is surfaced so the request fails visibly
// instead of silently dropping the task.
func (f *CounterFlowImpl) EnqueueIncrement(ctx context.Context, metadata *ClientMetadata) (*dto.EnqueueIncrementResponse, error) {
	if err := f.queue.Enqueue(ctx, services.TaskKindIncrementCounter); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEnqueueFailed, err)
	}

	// Pending count is informational; a read failure does not fail the enqueue
	pending, err := f.queue.Size(ctx)
	if err != nil {
		log.Printf("counter flow: failed to read queue size: %v", err)
		pending = 0
	}

	return &dto.EnqueueIncrementResponse{
		Message:     fmt.Sprintf("Job enqueued! Counter will increment in ~%d seconds.", f.delaySecs),
		PendingJobs: pending,
	}, nil
}

// GetCounterStatus returns the current counter value and pending job count.
// Read-only except for the lazy first-access creation of the counter row.
func (f *CounterFlowImpl) GetCounterStatus(ctx context.Context, metadata *ClientMetadata) (*dto.CounterStatusResponse, error) {
	counter, err := f.counterRepo.GetOrCreate(ctx, utils.CounterNameClicks)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCounterUnavailable, err)
	}

	pending, err := f.queue.Size(ctx)
	if err != nil {
		log.Printf("counter flow: failed to read queue size: %v", err)
		pending = 0
	}

	return &dto.CounterStatusResponse{
		Counter:     ToCounterDTO(*counter),
		PendingJobs: pending,
	}, nil
}
