package testing

import (
	"context"
	"fmt"

	"github.com/applaud-app/applaud/models"
	"github.com/applaud-app/applaud/repository"
	"github.com/applaud-app/applaud/utils"
	"github.com/google/uuid"
)

// TestFixtures provides helpers for creating test data
type TestFixtures struct {
	testDB *TestDB
	seq    int
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(testDB *TestDB) *TestFixtures {
	return &TestFixtures{testDB: testDB}
}

// CreateTestCounter creates a counter row with the given name and value
func (f *TestFixtures) CreateTestCounter(name string, value int64) (*models.Counter, error) {
	counter := &models.Counter{
		Name:      name,
		Value:     value,
		CreatedAt: utils.UTCNow(),
		UpdatedAt: utils.UTCNow(),
	}
	if err := f.testDB.DB.Create(counter).Error; err != nil {
		return nil, err
	}
	return counter, nil
}

// CreateTestTestimonial creates a testimonial with generated content
func (f *TestFixtures) CreateTestTestimonial() (*models.Testimonial, error) {
	f.seq++
	testimonial := &models.Testimonial{
		UUID: uuid.New(),
		Name: fmt.Sprintf("Visitor %d", f.seq),
		Body: fmt.Sprintf("Testimonial body %d", f.seq),
	}
	if err := f.testDB.DB.Create(testimonial).Error; err != nil {
		return nil, err
	}
	return testimonial, nil
}

// CreateTestComment creates a comment attached to the given testimonial
func (f *TestFixtures) CreateTestComment(testimonialID uint) (*models.Comment, error) {
	f.seq++
	comment := &models.Comment{
		TestimonialID: testimonialID,
		AuthorName:    fmt.Sprintf("Commenter %d", f.seq),
		Body:          fmt.Sprintf("Comment body %d", f.seq),
	}
	if err := f.testDB.DB.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateTestContext returns a context suitable for repository calls in tests
func CreateTestContext() context.Context {
	ctx := context.Background()
	ctx = context.WithValue(ctx, utils.RequestIDKey, "test-request")
	return ctx
}

// CounterRepository returns a counter repository bound to the test database
func (f *TestFixtures) CounterRepository() repository.CounterRepository {
	return repository.NewCounterRepository(f.testDB.DB)
}
