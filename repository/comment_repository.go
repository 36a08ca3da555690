package repository

import (
	"context"
	"fmt"

	"github.com/applaud-app/applaud/models"
	"gorm.io/gorm"
)

// CommentRepositoryImpl implements CommentRepository interface
type CommentRepositoryImpl struct {
	*BaseRepository[models.Comment, models.CommentFilter]
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &CommentRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Comment, models.CommentFilter](db),
	}
}

// ListByTestimonial returns all comments for a testimonial oldest first
func (r *CommentRepositoryImpl) ListByTestimonial(ctx context.Context, testimonialID uint) ([]*models.Comment, error) {
	db := r.getDB(ctx)
	var comments []*models.Comment
	err := db.Where("testimonial_id = ?", testimonialID).Order("created_at ASC").Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list comments for testimonial %d: %w", testimonialID, err)
	}
	return comments, nil
}

// ByFilter retrieves comments based on filter criteria
func (r *CommentRepositoryImpl) ByFilter(ctx context.Context, filter models.CommentFilter, orderBy string, limit, offset int) ([]*models.Comment, error) {
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

	var comments []*models.Comment
	if err := query.Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("failed to find comments by filter: %w", err)
	}
	return comments, nil
}

// Count returns the number of comments matching the filter
func (r *CommentRepositoryImpl) Count(ctx context.Context, filter models.CommentFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	if err := r.applyFilter(db.Model(&models.Comment{}), filter).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count comments: %w", err)
	}
	return count, nil
}

func (r *CommentRepositoryImpl) applyFilter(db *gorm.DB, filter models.CommentFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.TestimonialID != nil {
		db = db.Where("testimonial_id = ?", *filter.TestimonialID)
	}
	if filter.AuthorName != nil {
		db = db.Where("author_name = ?", *filter.AuthorName)
	}
	return db
}
