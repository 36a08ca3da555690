package repository_test

import (
	"context"
	"testing"

	"github.com/applaud-app/applaud/repository"
	apptesting "github.com/applaud-app/applaud/testing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestimonialRepos(t *testing.T) (repository.TestimonialRepository, repository.CommentRepository, *apptesting.TestFixtures) {
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

	return repository.NewTestimonialRepository(testDB.DB),
		repository.NewCommentRepository(testDB.DB),
		apptesting.NewTestFixtures(testDB)
}

func TestTestimonialRepository_ByUUID(t *testing.T) {
	repo, _, fixtures := setupTestimonialRepos(t)
	ctx := context.Background()

	created, err := fixtures.CreateTestTestimonial()
	require.NoError(t, err)

	found, err := repo.ByUUID(ctx, created.UUID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, created.Name, found.Name)

	missing, err := repo.ByUUID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestTestimonialRepository_ListRecentFirst(t *testing.T) {
	repo, _, fixtures := setupTestimonialRepos(t)
	ctx := context.Background()

	first, err := fixtures.CreateTestTestimonial()
	require.NoError(t, err)
	second, err := fixtures.CreateTestTestimonial()
	require.NoError(t, err)

	_, err = fixtures.CreateTestComment(first.ID)
	require.NoError(t, err)
	_, err = fixtures.CreateTestComment(first.ID)
	require.NoError(t, err)

	listed, err := repo.ListRecentFirst(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, listed, 2)

	// Newest testimonial first, comments ride along
	assert.Equal(t, second.ID, listed[0].ID)
	assert.Equal(t, first.ID, listed[1].ID)
	assert.Len(t, listed[1].Comments, 2)

	limited, err := repo.ListRecentFirst(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, second.ID, limited[0].ID)
}

func TestCommentRepository_ListByTestimonial(t *testing.T) {
	_, commentRepo, fixtures := setupTestimonialRepos(t)
	ctx := context.Background()

	testimonial, err := fixtures.CreateTestTestimonial()
	require.NoError(t, err)
	other, err := fixtures.CreateTestTestimonial()
	require.NoError(t, err)

	mine, err := fixtures.CreateTestComment(testimonial.ID)
	require.NoError(t, err)
	_, err = fixtures.CreateTestComment(other.ID)
	require.NoError(t, err)

	comments, err := commentRepo.ListByTestimonial(ctx, testimonial.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, mine.ID, comments[0].ID)
}
