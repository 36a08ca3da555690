// Package businessflow contains the business logic for the application.
package businessflow

import (
	"time"

	"github.com/applaud-app/applaud/app/dto"
	"github.com/applaud-app/applaud/models"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds all client-related information for logging and tracing
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	RequestID string `json:"request_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// ToCounterDTO converts a counter model to CounterDTO for responses
func ToCounterDTO(counter models.Counter) dto.CounterDTO {
	return dto.CounterDTO{
		Name:      counter.Name,
		Value:     counter.Value,
		CreatedAt: counter.CreatedAt.Format(time.RFC3339),
		UpdatedAt: counter.UpdatedAt.Format(time.RFC3339),
	}
}

// ToCommentDTO converts a comment model to CommentDTO
func ToCommentDTO(comment models.Comment) dto.CommentDTO {
	return dto.CommentDTO{
		ID:         comment.ID,
		AuthorName: comment.AuthorName,
		Body:       comment.Body,
		Email:      comment.Email,
		CreatedAt:  comment.CreatedAt.Format(time.RFC3339),
	}
}

// ToTestimonialDTO converts a testimonial model to TestimonialDTO
func ToTestimonialDTO(testimonial models.Testimonial) dto.TestimonialDTO {
	comments := make([]dto.CommentDTO, 0, len(testimonial.Comments))
	for _, comment := range testimonial.Comments {
		comments = append(comments, ToCommentDTO(comment))
	}
	return dto.TestimonialDTO{
		UUID:      testimonial.UUID.String(),
		Name:      testimonial.Name,
		Body:      testimonial.Body,
		Email:     testimonial.Email,
		Bio:       testimonial.Bio,
		CreatedAt: testimonial.CreatedAt.Format(time.RFC3339),
		Comments:  comments,
	}
}
