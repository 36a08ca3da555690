package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/applaud-app/applaud/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TestimonialRepositoryImpl implements TestimonialRepository interface
type TestimonialRepositoryImpl struct {
	*BaseRepository[models.Testimonial, models.TestimonialFilter]
}

// NewTestimonialRepository creates a new testimonial repository
func NewTestimonialRepository(db *gorm.DB) TestimonialRepository {
	return &TestimonialRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Testimonial, models.TestimonialFilter](db),
	}
}

// ByUUID finds a testimonial by UUID
func (r *TestimonialRepositoryImpl) ByUUID(ctx context.Context, id uuid.UUID) (*models.Testimonial, error) {
	db := r.getDB(ctx)
	var testimonial models.Testimonial
	err := db.Where("uuid = ?", id).Last(&testimonial).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find testimonial by UUID %s: %w", id, err)
	}
	return &testimonial, nil
}

// ListRecentFirst returns testimonials newest first with their comments preloaded
func (r *TestimonialRepositoryImpl) ListRecentFirst(ctx context.Context, limit, offset int) ([]*models.Testimonial, error) {
	db := r.getDB(ctx)
	query := db.Preload("Comments", func(db *gorm.DB) *gorm.DB {
		return db.Order("comments.created_at ASC")
	}).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var testimonials []*models.Testimonial
	if err := query.Find(&testimonials).Error; err != nil {
		return nil, fmt.Errorf("failed to list testimonials: %w", err)
	}
	return testimonials, nil
}

// ByFilter retrieves testimonials based on filter criteria
func (r *TestimonialRepositoryImpl) ByFilter(ctx context.Context, filter models.TestimonialFilter, orderBy string, limit, offset int) ([]*models.Testimonial, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db, filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var testimonials []*models.Testimonial
	if err := query.Find(&testimonials).Error; err != nil {
		return nil, fmt.Errorf("failed to find testimonials by filter: %w", err)
	}
	return testimonials, nil
}

// Count returns the number of testimonials matching the filter
func (r *TestimonialRepositoryImpl) Count(ctx context.Context, filter models.TestimonialFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	if err := r.applyFilter(db.Model(&models.Testimonial{}), filter).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count testimonials: %w", err)
	}
	return count, nil
}

func (r *TestimonialRepositoryImpl) applyFilter(db *gorm.DB, filter models.TestimonialFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.Name != nil {
		db = db.Where("name = ?", *filter.Name)
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at <= ?", *filter.CreatedBefore)
	}
	return db
}
