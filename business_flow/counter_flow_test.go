package businessflow

import (
	"context"
	"errors"
	"testing"

	"github.com/applaud-app/applaud/app/services"
	"github.com/applaud-app/applaud/models"
	"github.com/applaud-app/applaud/repository"
	"github.com/applaud-app/applaud/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubQueue struct {
	services.JobQueue

	enqueued   []string
	enqueueErr error

	size    int64
	sizeErr error
}

func (q *stubQueue) Enqueue(ctx context.Context, kind string) error {
	if q.enqueueErr != nil {
		return q.enqueueErr
	}
	q.enqueued = append(q.enqueued, kind)
	q.size++
	return nil
}

func (q *stubQueue) Size(ctx context.Context) (int64, error) {
	if q.sizeErr != nil {
		return 0, q.sizeErr
	}
	return q.size, nil
}

type stubCounterRepo struct {
	repository.CounterRepository

	counter        *models.Counter
	getOrCreateErr error
}

func (r *stubCounterRepo) GetOrCreate(ctx context.Context, name string) (*models.Counter, error) {
	if r.getOrCreateErr != nil {
		return nil, r.getOrCreateErr
	}
	if r.counter == nil {
		r.counter = &models.Counter{ID: 1, Name: name, Value: 0, UpdatedAt: utils.UTCNow()}
	}
	return r.counter, nil
}

func testMetadata() *ClientMetadata {
	return &ClientMetadata{IPAddress: "127.0.0.1", UserAgent: "test-agent", RequestID: "req-1"}
}

func TestEnqueueIncrement_Success(t *testing.T) {
	queue := &stubQueue{}
	flow := NewCounterFlow(&stubCounterRepo{}, queue, 2)

	resp, err := flow.EnqueueIncrement(context.Background(), testMetadata())
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.Equal(t, []string{services.TaskKindIncrementCounter}, queue.enqueued)
	assert.Equal(t, int64(1), resp.PendingJobs)
	assert.Contains(t, resp.Message, "~2 seconds")
}

func TestEnqueueIncrement_QueueFailure(t *testing.T) {
	queue := &stubQueue{enqueueErr: services.ErrQueueUnavailable}
	flow := NewCounterFlow(&stubCounterRepo{}, queue, 2)

	resp, err := flow.EnqueueIncrement(context.Background(), testMetadata())
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.True(t, IsEnqueueFailed(err))
}

func TestEnqueueIncrement_SizeFailureIsNonFatal(t *testing.T) {
	queue := &stubQueue{sizeErr: errors.New("redis timeout")}
	flow := NewCounterFlow(&stubCounterRepo{}, queue, 2)

	resp, err := flow.EnqueueIncrement(context.Background(), testMetadata())
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, int64(0), resp.PendingJobs)
}

func TestGetCounterStatus_LazyCreation(t *testing.T) {
	repo := &stubCounterRepo{}
	queue := &stubQueue{size: 3}
	flow := NewCounterFlow(repo, queue, 2)

	resp, err := flow.GetCounterStatus(context.Background(), testMetadata())
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.Equal(t, utils.CounterNameClicks, resp.Counter.Name)
	assert.Equal(t, int64(0), resp.Counter.Value)
	assert.Equal(t, int64(3), resp.PendingJobs)
}

func TestGetCounterStatus_StoreFailure(t *testing.T) {
	repo := &stubCounterRepo{getOrCreateErr: errors.New("connection refused")}
	flow := NewCounterFlow(repo, &stubQueue{}, 2)

	resp, err := flow.GetCounterStatus(context.Background(), testMetadata())
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.True(t, IsCounterUnavailable(err))
}
