package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Benefit is a coverable service category from the benefit catalog,
// e.g. outpatient care, dental, or maternity.
type Benefit struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID        uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`
	Code        string    `gorm:"size:64;uniqueIndex;not null" json:"code"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`

	IsActive *bool `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Benefit) TableName() string {
	return "benefits"
}

// BenefitFilter represents filter criteria for benefit queries
type BenefitFilter struct {
	ID       *uint      `json:"id,omitempty"`
	UUID     *uuid.UUID `json:"uuid,omitempty"`
	Code     *string    `json:"code,omitempty"`
	IsActive *bool      `json:"is_active,omitempty"`
}

// BeforeCreate ensures UUID is set
func (b *Benefit) BeforeCreate(tx *gorm.DB) error {
	if b.UUID == uuid.Nil {
		b.UUID = uuid.New()
	}
	return nil
}

// CompanyBenefit links a benefit to a company's package under a specific
// premium. Claim coverage checks resolve against the rows attached to the
// company's latest premium.
type CompanyBenefit struct {
	ID        uint `gorm:"primaryKey;autoIncrement" json:"id"`
	CompanyID uint `gorm:"not null;index:idx_company_benefits_company_id" json:"company_id"`
	PremiumID uint `gorm:"not null;index:idx_company_benefits_premium_id" json:"premium_id"`
	BenefitID uint `gorm:"not null;index:idx_company_benefits_benefit_id" json:"benefit_id"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relationships
	Company *Company `gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE" json:"company,omitempty"`
	Premium *Premium `gorm:"foreignKey:PremiumID;constraint:OnDelete:CASCADE" json:"premium,omitempty"`
	Benefit *Benefit `gorm:"foreignKey:BenefitID;constraint:OnDelete:CASCADE" json:"benefit,omitempty"`
}

func (CompanyBenefit) TableName() string {
	return "company_benefits"
}

// CompanyBenefitFilter represents filter criteria for company benefit queries
type CompanyBenefitFilter struct {
	ID        *uint `json:"id,omitempty"`
	CompanyID *uint `json:"company_id,omitempty"`
	PremiumID *uint `json:"premium_id,omitempty"`
	BenefitID *uint `json:"benefit_id,omitempty"`
}
