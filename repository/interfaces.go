// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/applaud-app/applaud/models"
	"github.com/google/uuid"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	Count(ctx context.Context, filter F) (int64, error)
}

// CounterRepository defines operations for named counters.
//
// Increment is the single point of mutual exclusion for counter mutation:
// it acquires a row-level lock, re-reads the current value under the lock,
// and persists value+1. Callers must never write Value directly.
type CounterRepository interface {
	Repository[models.Counter, models.CounterFilter]
	ByName(ctx context.Context, name string) (*models.Counter, error)
	GetOrCreate(ctx context.Context, name string) (*models.Counter, error)
	Increment(ctx context.Context, name string) (*models.Counter, error)
}

// TestimonialRepository defines operations for testimonials
type TestimonialRepository interface {
	Repository[models.Testimonial, models.TestimonialFilter]
	ByUUID(ctx context.Context, uuid uuid.UUID) (*models.Testimonial, error)
	ListRecentFirst(ctx context.Context, limit, offset int) ([]*models.Testimonial, error)
}

// CommentRepository defines operations for testimonial comments
type CommentRepository interface {
	Repository[models.Comment, models.CommentFilter]
	ListByTestimonial(ctx context.Context, testimonialID uint) ([]*models.Comment, error)
}
