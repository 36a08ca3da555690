package models

import (
	"time"

	"github.com/applaud-app/applaud/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Testimonial represents a testimonial submitted by a visitor
// Table: testimonials
// Email and Bio are optional; validation happens at the DTO layer
type Testimonial struct {
	ID    uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID  uuid.UUID `gorm:"type:uuid;uniqueIndex;not null;default:gen_random_uuid()" json:"uuid"`
	Name  string    `gorm:"type:varchar(255);not null" json:"name"`
	Body  string    `gorm:"type:text;not null" json:"body"`
	Email *string   `gorm:"type:varchar(255)" json:"email,omitempty"`
	Bio   *string   `gorm:"type:varchar(160)" json:"bio,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relations
	Comments []Comment `gorm:"foreignKey:TestimonialID;references:ID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
}

func (Testimonial) TableName() string { return "testimonials" }

// BeforeCreate ensures UUID is set and timestamps are normalized
func (t *Testimonial) BeforeCreate(tx *gorm.DB) error {
	if t.UUID == uuid.Nil {
		t.UUID = uuid.New()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = utils.UTCNow()
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = utils.UTCNow()
	}
	return nil
}

// TestimonialFilter represents filter criteria for testimonial queries
type TestimonialFilter struct {
	ID            *uint      `json:"id,omitempty"`
	UUID          *uuid.UUID `json:"uuid,omitempty"`
	Name          *string    `json:"name,omitempty"`
	CreatedAfter  *time.Time `json:"created_after,omitempty"`
	CreatedBefore *time.Time `json:"created_before,omitempty"`
}
