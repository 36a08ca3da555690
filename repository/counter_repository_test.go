package repository_test

import (
	"context"
	"sync"
	"testing"

	"github.com/applaud-app/applaud/models"
	"github.com/applaud-app/applaud/repository"
	apptesting "github.com/applaud-app/applaud/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCounterRepo(t *testing.T) (repository.CounterRepository, *apptesting.TestDB) {
	t.Helper()

	if !apptesting.Available() {
		t.Skip("PostgreSQL not available for integration tests")
	}

	testDB, err := apptesting.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := testDB.TeardownTestDB(); err != nil {
			t.Logf("teardown failed: %v", err)
		}
	})

	return repository.NewCounterRepository(testDB.DB), testDB
}

func TestCounterRepository_GetOrCreate(t *testing.T) {
	repo, _ := setupCounterRepo(t)
	ctx := context.Background()

	counter, err := repo.GetOrCreate(ctx, "clicks")
	require.NoError(t, err)
	require.NotNil(t, counter)
	assert.Equal(t, "clicks", counter.Name)
	assert.Equal(t, int64(0), counter.Value)
	assert.NotZero(t, counter.ID)

	// Second call returns the existing row instead of creating another
	again, err := repo.GetOrCreate(ctx, "clicks")
	require.NoError(t, err)
	require.NotNil(t, again)
	assert.Equal(t, counter.ID, again.ID)

	count, err := repo.Count(ctx, models.CounterFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestCounterRepository_GetOrCreateConcurrent(t *testing.T) {
	repo, _ := setupCounterRepo(t)
	ctx := context.Background()

	const racers = 10
	var wg sync.WaitGroup
	errs := make(chan error, racers)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.GetOrCreate(ctx, "clicks")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	// Exactly one row survives the creation race
	count, err := repo.Count(ctx, models.CounterFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestCounterRepository_IncrementMissingCounter(t *testing.T) {
	repo, _ := setupCounterRepo(t)

	_, err := repo.Increment(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrCounterNotFound)
}

func TestCounterRepository_IncrementSequence(t *testing.T) {
	repo, _ := setupCounterRepo(t)
	ctx := context.Background()

	_, err := repo.GetOrCreate(ctx, "clicks")
	require.NoError(t, err)

	for want := int64(1); want <= 3; want++ {
		updated, err := repo.Increment(ctx, "clicks")
		require.NoError(t, err)
		assert.Equal(t, want, updated.Value)
	}
}

func TestCounterRepository_IncrementConcurrent(t *testing.T) {
	repo, _ := setupCounterRepo(t)
	ctx := context.Background()

	_, err := repo.GetOrCreate(ctx, "clicks")
	require.NoError(t, err)

	// The row lock serializes writers, so no increment may be lost
	const writers = 20
	var wg sync.WaitGroup
	errs := make(chan error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Increment(ctx, "clicks")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	counter, err := repo.ByName(ctx, "clicks")
	require.NoError(t, err)
	require.NotNil(t, counter)
	assert.Equal(t, int64(writers), counter.Value)
}

func TestCounterRepository_IncrementDoesNotTouchOtherCounters(t *testing.T) {
	repo, _ := setupCounterRepo(t)
	ctx := context.Background()

	_, err := repo.GetOrCreate(ctx, "clicks")
	require.NoError(t, err)
	_, err = repo.GetOrCreate(ctx, "visits")
	require.NoError(t, err)

	_, err = repo.Increment(ctx, "clicks")
	require.NoError(t, err)

	other, err := repo.ByName(ctx, "visits")
	require.NoError(t, err)
	require.NotNil(t, other)
	assert.Equal(t, int64(0), other.Value)
}
