// Package models contains domain entities and business models for the insurance platform
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Period status constants
const (
	PeriodStatusActive = "active"
	PeriodStatusClosed = "closed"
)

// Period represents a billing cycle with its own rate card.
// At most one period is active at a time.
type Period struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID      uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	StartDate time.Time `gorm:"not null;index:idx_periods_start_date" json:"start_date"`
	EndDate   time.Time `gorm:"not null;index:idx_periods_end_date" json:"end_date"`
	Status    string    `gorm:"size:20;not null;default:'active';index:idx_periods_status" json:"status"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relationships
	RateCard *PremiumRate `gorm:"foreignKey:PeriodID" json:"rate_card,omitempty"`
	Premiums []Premium    `gorm:"foreignKey:PeriodID" json:"premiums,omitempty"`
}

func (Period) TableName() string {
	return "periods"
}

// IsActive reports whether the period is the open billing cycle
func (p *Period) IsActive() bool {
	return p.Status == PeriodStatusActive
}

// PeriodFilter represents filter criteria for period queries
type PeriodFilter struct {
	ID           *uint      `json:"id,omitempty"`
	UUID         *uuid.UUID `json:"uuid,omitempty"`
	Status       *string    `json:"status,omitempty"`
	StartsAfter  *time.Time `json:"starts_after,omitempty"`
	EndsBefore   *time.Time `json:"ends_before,omitempty"`
	CreatedAfter *time.Time `json:"created_after,omitempty"`
}

// BeforeCreate ensures UUID is set
func (p *Period) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == uuid.Nil {
		p.UUID = uuid.New()
	}
	return nil
}
