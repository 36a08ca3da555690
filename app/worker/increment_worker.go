// Package worker contains background task consumers for the job queue
package worker

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/applaud-app/applaud/app/dto"
	"github.com/applaud-app/applaud/app/services"
	"github.com/applaud-app/applaud/repository"
	"github.com/applaud-app/applaud/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	incrementsAppliedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "counter_increments_applied_total",
		Help: "Total number of counter increments committed by workers",
	})
	taskDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "worker_task_duration_seconds",
		Help:    "Increment task processing latencies in seconds",
		Buckets: prometheus.DefBuckets,
	})
)

// IncrementWorker consumes increment tasks from the job queue, performs a
// delayed locked increment against the counter store, and publishes the new
// value to the broadcast channel.
type IncrementWorker struct {
	queue       services.JobQueue
	counterRepo repository.CounterRepository
	broadcaster services.Broadcaster
	logger      *log.Logger

	delay       time.Duration
	concurrency int
}

// NewIncrementWorker creates a new increment worker pool
func NewIncrementWorker(
	queue services.JobQueue,
	counterRepo repository.CounterRepository,
	broadcaster services.Broadcaster,
	delay time.Duration,
	concurrency int,
	logDir string,
) *IncrementWorker {
	if delay < 0 {
		delay = 0
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	w := &IncrementWorker{
		queue:       queue,
		counterRepo: counterRepo,
		broadcaster: broadcaster,
		delay:       delay,
		concurrency: concurrency,
	}
	w.logger = newWorkerLogger(logDir)
	return w
}

// newWorkerLogger writes to stdout and a rotating file under logDir
func newWorkerLogger(logDir string) *log.Logger {
	if logDir == "" {
		return log.New(os.Stdout, "worker: ", log.LstdFlags)
	}
	rotating := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "worker.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     14, // days
		Compress:   true,
	}
	return log.New(io.MultiWriter(os.Stdout, rotating), "worker: ", log.LstdFlags)
}

// Start launches the worker goroutines. The returned cancel function stops
// them and waits for in-flight tasks to finish.
func (w *IncrementWorker) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)
	var wg sync.WaitGroup

	for i := 0; i < w.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.run(ctx)
		}()
	}

	return func() {
		cancel()
		wg.Wait()
	}
}

func (w *IncrementWorker) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		task, err := w.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Printf("dequeue failed: %v", err)
			// Back off so a dead queue backend does not spin the loop
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		if task == nil {
			continue // poll timeout, nothing pending
		}

		start := time.Now()
		if err := w.perform(ctx, task); err != nil {
			w.logger.Printf("task %s failed (attempt %d): %v", task.ID, task.Attempts+1, err)
			if nackErr := w.queue.Nack(ctx, task); nackErr != nil {
				// The lease reaper will eventually redeliver it
				w.logger.Printf("task %s requeue failed: %v", task.ID, nackErr)
			}
			continue
		}
		taskDuration.Observe(time.Since(start).Seconds())

		if err := w.queue.Ack(ctx, task); err != nil {
			// The increment is committed; an ack failure means the task may be
			// redelivered and increment again. Accepted at-least-once trade-off.
			w.logger.Printf("task %s ack failed: %v", task.ID, err)
		}
	}
}

// perform executes one dequeued task. Any error returned here surfaces to the
// queue's redelivery path; broadcast failures do not, since the increment is
// already committed.
func (w *IncrementWorker) perform(ctx context.Context, task *services.Task) error {
	if task.Kind != services.TaskKindIncrementCounter {
		// Drop unknown kinds instead of requeueing them forever
		w.logger.Printf("dropping task %s with unknown kind %q", task.ID, task.Kind)
		return nil
	}

	// Simulated work latency; deliberately runs before any lock is taken
	if w.delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.delay):
		}
	}

	counter, err := w.counterRepo.GetOrCreate(ctx, utils.CounterNameClicks)
	if err != nil {
		return fmt.Errorf("get or create counter: %w", err)
	}

	updated, err := w.counterRepo.Increment(ctx, counter.Name)
	if err != nil {
		return fmt.Errorf("increment counter: %w", err)
	}
	incrementsAppliedTotal.Inc()

	event := dto.CounterEventDTO{
		Name:      updated.Name,
		Value:     updated.Value,
		UpdatedAt: updated.UpdatedAt.Format(time.RFC3339),
	}
	if err := w.broadcaster.Publish(ctx, utils.CounterStreamName, event); err != nil {
		// Non-fatal: the value is persisted, observers just miss this update
		w.logger.Printf("broadcast of counter %s=%d failed: %v", updated.Name, updated.Value, err)
	}

	w.logger.Printf("counter %s incremented to %d", updated.Name, updated.Value)
	return nil
}
