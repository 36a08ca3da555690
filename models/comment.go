package models

import (
	"time"

	"github.com/applaud-app/applaud/utils"
	"gorm.io/gorm"
)

// Comment represents a comment left on a testimonial
// Table: comments
type Comment struct {
	ID            uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	TestimonialID uint    `gorm:"not null;index" json:"testimonial_id"`
	AuthorName    string  `gorm:"type:varchar(255);not null" json:"author_name"`
	Body          string  `gorm:"type:text;not null" json:"body"`
	Email         *string `gorm:"type:varchar(255)" json:"email,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relations
	Testimonial *Testimonial `gorm:"foreignKey:TestimonialID;references:ID;constraint:OnDelete:CASCADE" json:"testimonial,omitempty"`
}

func (Comment) TableName() string { return "comments" }

// BeforeCreate normalizes timestamps if zero
func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = utils.UTCNow()
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = utils.UTCNow()
	}
	return nil
}

// CommentFilter represents filter criteria for comment queries
type CommentFilter struct {
	ID            *uint   `json:"id,omitempty"`
	TestimonialID *uint   `json:"testimonial_id,omitempty"`
	AuthorName    *string `json:"author_name,omitempty"`
}
