package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Company represents a tenant: an employer whose roster is insured under
// a benefit package.
type Company struct {
	ID                 uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID               uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`
	Name               string    `gorm:"size:255;not null;index:idx_companies_name" json:"name"`
	RegistrationNumber *string   `gorm:"size:64;uniqueIndex" json:"registration_number,omitempty"`
	ContactEmail       string    `gorm:"size:255;not null" json:"contact_email"`
	ContactMobile      *string   `gorm:"size:20" json:"contact_mobile,omitempty"`

	IsActive *bool `gorm:"default:true;index:idx_companies_is_active" json:"is_active"`

	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	// Relationships
	Members  []Member  `gorm:"foreignKey:CompanyID" json:"members,omitempty"`
	Premiums []Premium `gorm:"foreignKey:CompanyID" json:"premiums,omitempty"`
}

func (Company) TableName() string {
	return "companies"
}

// CompanyFilter represents filter criteria for company queries
type CompanyFilter struct {
	ID            *uint      `json:"id,omitempty"`
	UUID          *uuid.UUID `json:"uuid,omitempty"`
	Name          *string    `json:"name,omitempty"`
	IsActive      *bool      `json:"is_active,omitempty"`
	CreatedAfter  *time.Time `json:"created_after,omitempty"`
	CreatedBefore *time.Time `json:"created_before,omitempty"`
}

// BeforeCreate ensures UUID is set
func (c *Company) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	return nil
}
