package businessflow

import (
	"context"
	"fmt"

	"github.com/applaud-app/applaud/app/dto"
	"github.com/applaud-app/applaud/models"
	"github.com/applaud-app/applaud/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TestimonialFlow defines the testimonial and comment use cases
type TestimonialFlow interface {
	ListTestimonials(ctx context.Context, metadata *ClientMetadata) (*dto.ListTestimonialsResponse, error)
	CreateTestimonial(ctx context.Context, req *dto.CreateTestimonialRequest, metadata *ClientMetadata) (*dto.TestimonialDTO, error)
	AddComment(ctx context.Context, testimonialUUID string, req *dto.CreateCommentRequest, metadata *ClientMetadata) (*dto.CommentDTO, error)
}

// TestimonialFlowImpl implements TestimonialFlow
type TestimonialFlowImpl struct {
	testimonialRepo repository.TestimonialRepository
	commentRepo     repository.CommentRepository
	db              *gorm.DB
}

// NewTestimonialFlow creates a new testimonial flow
func NewTestimonialFlow(
	testimonialRepo repository.TestimonialRepository,
	commentRepo repository.CommentRepository,
	db *gorm.DB,
) TestimonialFlow {
	return &TestimonialFlowImpl{
		testimonialRepo: testimonialRepo,
		commentRepo:     commentRepo,
		db:              db,
	}
}

// ListTestimonials returns all testimonials newest first with their comments
func (f *TestimonialFlowImpl) ListTestimonials(ctx context.Context, metadata *ClientMetadata) (*dto.ListTestimonialsResponse, error) {
	testimonials, err := f.testimonialRepo.ListRecentFirst(ctx, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list testimonials: %w", err)
	}

	items := make([]dto.TestimonialDTO, 0, len(testimonials))
	for _, t := range testimonials {
		items = append(items, ToTestimonialDTO(*t))
	}

	return &dto.ListTestimonialsResponse{
		Testimonials: items,
		Total:        int64(len(items)),
	}, nil
}

// CreateTestimonial persists a new testimonial
func (f *TestimonialFlowImpl) CreateTestimonial(ctx context.Context, req *dto.CreateTestimonialRequest, metadata *ClientMetadata) (*dto.TestimonialDTO, error) {
	if req == nil {
		return nil, ErrTestimonialInvalid
	}

	testimonial := &models.Testimonial{
		UUID:  uuid.New(),
		Name:  req.Name,
		Body:  req.Body,
		Email: req.Email,
		Bio:   req.Bio,
	}
	if err := f.testimonialRepo.Save(ctx, testimonial); err != nil {
		return nil, fmt.Errorf("failed to save testimonial: %w", err)
	}

	result := ToTestimonialDTO(*testimonial)
	return &result, nil
}

// AddComment persists a comment on an existing testimonial
func (f *TestimonialFlowImpl) AddComment(ctx context.Context, testimonialUUID string, req *dto.CreateCommentRequest, metadata *ClientMetadata) (*dto.CommentDTO, error) {
	if req == nil {
		return nil, ErrCommentInvalid
	}

	parsed, err := uuid.Parse(testimonialUUID)
	if err != nil {
		return nil, ErrTestimonialNotFound
	}

	var comment *models.Comment
	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		testimonial, err := f.testimonialRepo.ByUUID(txCtx, parsed)
		if err != nil {
			return fmt.Errorf("failed to find testimonial: %w", err)
		}
		if testimonial == nil {
			return ErrTestimonialNotFound
		}

		comment = &models.Comment{
			TestimonialID: testimonial.ID,
			AuthorName:    req.AuthorName,
			Body:          req.Body,
			Email:         req.Email,
		}
		if err := f.commentRepo.Save(txCtx, comment); err != nil {
			return fmt.Errorf("failed to save comment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := ToCommentDTO(*comment)
	return &result, nil
}
