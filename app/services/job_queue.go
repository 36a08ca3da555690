// Package services contains infrastructure-facing service implementations for the application
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/applaud-app/applaud/config"
	"github.com/applaud-app/applaud/utils"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

// Task kinds accepted by the job queue
const (
	TaskKindIncrementCounter = "increment_counter"
)

// ErrQueueUnavailable is returned when the queue backend cannot accept or serve tasks
var ErrQueueUnavailable = errors.New("job queue unavailable")

// Task is the unit of work carried by the job queue.
// Tasks are not deduplicated; many tasks may target the same counter.
type Task struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Attempts   int       `json:"attempts"`
	EnqueuedAt time.Time `json:"enqueued_at"`

	// raw payload exactly as stored in Redis, required for LREM on ack/requeue
	raw string
}

// JobQueue is the durable asynchronous work queue contract.
//
// Delivery is at-least-once: a dequeued task is moved to a processing list
// under a lease, and tasks whose lease expires (crashed worker) are
// re-delivered. Ordering across tasks is not guaranteed.
type JobQueue interface {
	// Enqueue persists one task and returns immediately
	Enqueue(ctx context.Context, kind string) error
	// Dequeue blocks up to the configured poll timeout and returns (nil, nil) when no task arrived
	Dequeue(ctx context.Context) (*Task, error)
	// Ack removes a successfully processed task
	Ack(ctx context.Context, task *Task) error
	// Nack returns a failed task to the pending queue for redelivery
	Nack(ctx context.Context, task *Task) error
	// Size returns the count of pending plus in-flight tasks
	Size(ctx context.Context) (int64, error)
	// StartReclaimer starts the lease reaper; the returned func stops it
	StartReclaimer(ctx context.Context) func()
}

var (
	jobsEnqueuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jobs_enqueued_total",
		Help: "Total number of tasks enqueued",
	})
	jobsAckedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jobs_acked_total",
		Help: "Total number of tasks acknowledged after successful processing",
	})
	jobsRequeuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jobs_requeued_total",
		Help: "Total number of tasks returned to the queue after a failure",
	})
	jobsReclaimedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jobs_reclaimed_total",
		Help: "Total number of tasks reclaimed from expired leases",
	})
	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "queue_depth",
		Help: "Pending plus in-flight tasks as of the last reclaimer pass",
	})
)

// RedisJobQueue implements JobQueue on top of Redis lists.
//
// Pending tasks live in a list; Dequeue atomically moves a task to a
// processing list (BLMOVE) and records a lease deadline in a hash. The
// reclaimer requeues processing entries whose lease has expired.
type RedisJobQueue struct {
	client *redis.Client

	pendingKey    string
	processingKey string
	leasesKey     string

	leaseTimeout    time.Duration
	pollTimeout     time.Duration
	reclaimInterval time.Duration
}

// NewRedisJobQueue creates a new Redis-backed job queue
func NewRedisJobQueue(client *redis.Client, cfg config.QueueConfig) *RedisJobQueue {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "applaud:queue"
	}
	q := &RedisJobQueue{
		client:          client,
		pendingKey:      prefix + ":pending",
		processingKey:   prefix + ":processing",
		leasesKey:       prefix + ":leases",
		leaseTimeout:    cfg.LeaseTimeout,
		pollTimeout:     cfg.PollTimeout,
		reclaimInterval: cfg.ReclaimInterval,
	}
	if q.leaseTimeout <= 0 {
		q.leaseTimeout = 30 * time.Second
	}
	if q.pollTimeout <= 0 {
		q.pollTimeout = 5 * time.Second
	}
	if q.reclaimInterval <= 0 {
		q.reclaimInterval = 10 * time.Second
	}
	return q
}

// Enqueue persists one task and returns without waiting for processing
func (q *RedisJobQueue) Enqueue(ctx context.Context, kind string) error {
	task := Task{
		ID:         uuid.New().String(),
		Kind:       kind,
		Attempts:   0,
		EnqueuedAt: utils.UTCNow(),
	}
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}
	if err := q.client.LPush(ctx, q.pendingKey, payload).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrQueueUnavailable, err)
	}
	jobsEnqueuedTotal.Inc()
	return nil
}

// Dequeue blocks until a task arrives or the poll timeout elapses
func (q *RedisJobQueue) Dequeue(ctx context.Context) (*Task, error) {
	raw, err := q.client.BLMove(ctx, q.pendingKey, q.processingKey, "RIGHT", "LEFT", q.pollTimeout).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrQueueUnavailable, err)
	}

	var task Task
	if err := json.Unmarshal([]byte(raw), &task); err != nil {
		// Poison entry, drop it so it cannot wedge the queue
		log.Printf("queue: dropping undecodable task payload: %v", err)
		q.client.LRem(ctx, q.processingKey, 1, raw)
		return nil, nil
	}
	task.raw = raw

	deadline := utils.UTCNow().Add(q.leaseTimeout).Unix()
	if err := q.client.HSet(ctx, q.leasesKey, task.ID, deadline).Err(); err != nil {
		log.Printf("queue: failed to record lease for task %s: %v", task.ID, err)
	}

	return &task, nil
}

// Ack removes a processed task from the processing list and releases its lease
func (q *RedisJobQueue) Ack(ctx context.Context, task *Task) error {
	pipe := q.client.Pipeline()
	pipe.LRem(ctx, q.processingKey, 1, task.raw)
	pipe.HDel(ctx, q.leasesKey, task.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrQueueUnavailable, err)
	}
	jobsAckedTotal.Inc()
	return nil
}

// Nack moves a failed task back to the pending queue with an incremented attempt count
func (q *RedisJobQueue) Nack(ctx context.Context, task *Task) error {
	requeued := *task
	requeued.Attempts++
	payload, err := json.Marshal(requeued)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	pipe := q.client.Pipeline()
	pipe.LRem(ctx, q.processingKey, 1, task.raw)
	pipe.HDel(ctx, q.leasesKey, task.ID)
	pipe.LPush(ctx, q.pendingKey, payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrQueueUnavailable, err)
	}
	jobsRequeuedTotal.Inc()
	return nil
}

// Size returns pending plus in-flight task counts
func (q *RedisJobQueue) Size(ctx context.Context) (int64, error) {
	pipe := q.client.Pipeline()
	pending := pipe.LLen(ctx, q.pendingKey)
	processing := pipe.LLen(ctx, q.processingKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrQueueUnavailable, err)
	}
	return pending.Val() + processing.Val(), nil
}

// StartReclaimer starts a background loop that requeues tasks whose lease
// expired, making a crashed worker's in-flight tasks re-deliverable within a
// bounded time window. The returned cancel function stops the loop.
func (q *RedisJobQueue) StartReclaimer(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		ticker := time.NewTicker(q.reclaimInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				q.reclaimExpired(ctx)
			}
		}
	}()

	return cancel
}

func (q *RedisJobQueue) reclaimExpired(ctx context.Context) {
	entries, err := q.client.LRange(ctx, q.processingKey, 0, -1).Result()
	if err != nil {
		log.Printf("queue: reclaimer failed to scan processing list: %v", err)
		return
	}

	now := utils.UTCNow().Unix()
	for _, raw := range entries {
		var task Task
		if err := json.Unmarshal([]byte(raw), &task); err != nil {
			q.client.LRem(ctx, q.processingKey, 1, raw)
			continue
		}

		deadlineStr, err := q.client.HGet(ctx, q.leasesKey, task.ID).Result()
		if err == nil {
			deadline, parseErr := strconv.ParseInt(deadlineStr, 10, 64)
			if parseErr == nil && deadline > now {
				continue // lease still held
			}
		} else if !errors.Is(err, redis.Nil) {
			continue // transient error, retry next pass
		}

		task.raw = raw
		if err := q.Nack(ctx, &task); err != nil {
			log.Printf("queue: failed to reclaim task %s: %v", task.ID, err)
			continue
		}
		jobsReclaimedTotal.Inc()
		log.Printf("queue: reclaimed task %s (kind=%s attempts=%d)", task.ID, task.Kind, task.Attempts+1)
	}

	if size, err := q.Size(ctx); err == nil {
		queueDepth.Set(float64(size))
	}
}
