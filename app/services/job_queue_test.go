package services

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/applaud-app/applaud/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestQueue connects to a local Redis and returns a queue with a unique
// key prefix. Tests skip when no Redis is reachable.
func setupTestQueue(t *testing.T, cfg config.QueueConfig) (*RedisJobQueue, *redis.Client) {
	t.Helper()

	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		url = "redis://localhost:6379/1"
	}
	opt, err := redis.ParseURL(url)
	require.NoError(t, err)

	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("Redis not available at %s: %v", url, err)
	}

	cfg.KeyPrefix = fmt.Sprintf("applaud:test:%d", time.Now().UnixNano())
	queue := NewRedisJobQueue(client, cfg)

	t.Cleanup(func() {
		client.Del(context.Background(), queue.pendingKey, queue.processingKey, queue.leasesKey)
		client.Close()
	})

	return queue, client
}

func TestRedisJobQueue_EnqueueAndSize(t *testing.T) {
	queue, _ := setupTestQueue(t, config.QueueConfig{PollTimeout: time.Second})
	ctx := context.Background()

	size, err := queue.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), size)

	require.NoError(t, queue.Enqueue(ctx, TaskKindIncrementCounter))
	require.NoError(t, queue.Enqueue(ctx, TaskKindIncrementCounter))

	size, err = queue.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), size)
}

func TestRedisJobQueue_DequeueAck(t *testing.T) {
	queue, client := setupTestQueue(t, config.QueueConfig{PollTimeout: time.Second})
	ctx := context.Background()

	require.NoError(t, queue.Enqueue(ctx, TaskKindIncrementCounter))

	task, err := queue.Dequeue(ctx)
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, TaskKindIncrementCounter, task.Kind)
	assert.Equal(t, 0, task.Attempts)
	assert.NotEmpty(t, task.ID)

	// A dequeued task is in flight, not gone, so it still counts
	size, err := queue.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), size)

	// The lease for the task was recorded
	exists, err := client.HExists(ctx, queue.leasesKey, task.ID).Result()
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, queue.Ack(ctx, task))

	size, err = queue.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), size)

	exists, err = client.HExists(ctx, queue.leasesKey, task.ID).Result()
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRedisJobQueue_DequeueTimeout(t *testing.T) {
	queue, _ := setupTestQueue(t, config.QueueConfig{PollTimeout: 100 * time.Millisecond})

	task, err := queue.Dequeue(context.Background())
	require.NoError(t, err)
	assert.Nil(t, task)
}

func TestRedisJobQueue_NackRedelivers(t *testing.T) {
	queue, _ := setupTestQueue(t, config.QueueConfig{PollTimeout: time.Second})
	ctx := context.Background()

	require.NoError(t, queue.Enqueue(ctx, TaskKindIncrementCounter))

	task, err := queue.Dequeue(ctx)
	require.NoError(t, err)
	require.NotNil(t, task)

	require.NoError(t, queue.Nack(ctx, task))

	redelivered, err := queue.Dequeue(ctx)
	require.NoError(t, err)
	require.NotNil(t, redelivered)
	assert.Equal(t, task.ID, redelivered.ID)
	assert.Equal(t, 1, redelivered.Attempts)
}

func TestRedisJobQueue_ReclaimExpiredLease(t *testing.T) {
	queue, client := setupTestQueue(t, config.QueueConfig{
		PollTimeout:  time.Second,
		LeaseTimeout: time.Minute,
	})
	ctx := context.Background()

	require.NoError(t, queue.Enqueue(ctx, TaskKindIncrementCounter))

	task, err := queue.Dequeue(ctx)
	require.NoError(t, err)
	require.NotNil(t, task)

	// Force the lease into the past, as if the worker holding it crashed
	expired := time.Now().Add(-time.Minute).Unix()
	require.NoError(t, client.HSet(ctx, queue.leasesKey, task.ID, expired).Err())

	queue.reclaimExpired(ctx)

	redelivered, err := queue.Dequeue(ctx)
	require.NoError(t, err)
	require.NotNil(t, redelivered)
	assert.Equal(t, task.ID, redelivered.ID)
	assert.Equal(t, 1, redelivered.Attempts)
}

func TestRedisJobQueue_ReclaimSkipsHeldLease(t *testing.T) {
	queue, _ := setupTestQueue(t, config.QueueConfig{
		PollTimeout:  200 * time.Millisecond,
		LeaseTimeout: time.Minute,
	})
	ctx := context.Background()

	require.NoError(t, queue.Enqueue(ctx, TaskKindIncrementCounter))

	task, err := queue.Dequeue(ctx)
	require.NoError(t, err)
	require.NotNil(t, task)

	queue.reclaimExpired(ctx)

	// The live lease keeps the task in flight, so nothing comes back
	redelivered, err := queue.Dequeue(ctx)
	require.NoError(t, err)
	assert.Nil(t, redelivered)
}

func TestRedisJobQueue_PoisonEntryDropped(t *testing.T) {
	queue, client := setupTestQueue(t, config.QueueConfig{PollTimeout: time.Second})
	ctx := context.Background()

	require.NoError(t, client.LPush(ctx, queue.pendingKey, "not json").Err())

	task, err := queue.Dequeue(ctx)
	require.NoError(t, err)
	assert.Nil(t, task)

	size, err := queue.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), size)
}
