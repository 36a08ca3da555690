package dto

// CreateTestimonialRequest represents the payload to submit a testimonial
type CreateTestimonialRequest struct {
	Name  string  `json:"name" validate:"required,min=1,max=255"`
	Body  string  `json:"body" validate:"required,min=1"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
	Bio   *string `json:"bio,omitempty" validate:"omitempty,max=160"`
}

// CreateCommentRequest represents the payload to comment on a testimonial
type CreateCommentRequest struct {
	AuthorName string  `json:"author_name" validate:"required,min=1,max=255"`
	Body       string  `json:"body" validate:"required,min=1"`
	Email      *string `json:"email,omitempty" validate:"omitempty,email"`
}

// CommentDTO represents a comment for responses
type CommentDTO struct {
	ID         uint    `json:"id"`
	AuthorName string  `json:"author_name"`
	Body       string  `json:"body"`
	Email      *string `json:"email,omitempty"`
	CreatedAt  string  `json:"created_at"`
}

// TestimonialDTO represents a testimonial for responses
type TestimonialDTO struct {
	UUID      string       `json:"uuid"`
	Name      string       `json:"name"`
	Body      string       `json:"body"`
	Email     *string      `json:"email,omitempty"`
	Bio       *string      `json:"bio,omitempty"`
	CreatedAt string       `json:"created_at"`
	Comments  []CommentDTO `json:"comments"`
}

// ListTestimonialsResponse wraps the testimonial listing
type ListTestimonialsResponse struct {
	Testimonials []TestimonialDTO `json:"testimonials"`
	Total        int64            `json:"total"`
}
