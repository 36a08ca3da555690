// Package models contains the GORM data models for the application
package models

import (
	"time"

	"github.com/applaud-app/applaud/utils"
	"gorm.io/gorm"
)

// Counter represents a named, monotonically increasing counter
// Table: counters
// Exactly one row exists per distinct name; value only ever increases and
// must be mutated exclusively through CounterRepository.Increment, which
// serializes writers with a row-level lock.
type Counter struct {
	ID    uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name  string `gorm:"type:varchar(64);uniqueIndex;not null" json:"name"`
	Value int64  `gorm:"not null;default:0" json:"value"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Counter) TableName() string { return "counters" }

// BeforeCreate normalizes timestamps if zero
func (c *Counter) BeforeCreate(tx *gorm.DB) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = utils.UTCNow()
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = utils.UTCNow()
	}
	return nil
}

// CounterFilter represents filter criteria for counter queries
type CounterFilter struct {
	ID   *uint   `json:"id,omitempty"`
	Name *string `json:"name,omitempty"`
}
