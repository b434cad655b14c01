package models

import (
	"time"
)

// PremiumRate is the per-period rate card: one monetary rate per billing
// category plus the tax rate applied on the subtotal. All rates are
// non-negative decimals.
type PremiumRate struct {
	ID       uint `gorm:"primaryKey;autoIncrement" json:"id"`
	PeriodID uint `gorm:"not null;uniqueIndex" json:"period_id"`

	PrincipalRate    float64 `gorm:"type:numeric(14,2);not null" json:"principal_rate"`
	SpouseRate       float64 `gorm:"type:numeric(14,2);not null" json:"spouse_rate"`
	ChildRate        float64 `gorm:"type:numeric(14,2);not null" json:"child_rate"`
	SpecialNeedsRate float64 `gorm:"type:numeric(14,2);not null" json:"special_needs_rate"`
	TaxRate          float64 `gorm:"type:numeric(6,4);not null" json:"tax_rate"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relationships
	Period *Period `gorm:"foreignKey:PeriodID;constraint:OnDelete:CASCADE" json:"period,omitempty"`
}

func (PremiumRate) TableName() string {
	return "premium_rates"
}

// RateFor returns the monetary rate for the given billing category
func (r *PremiumRate) RateFor(category string) float64 {
	switch category {
	case CategoryPrincipal:
		return r.PrincipalRate
	case CategorySpouse:
		return r.SpouseRate
	case CategoryChild:
		return r.ChildRate
	case CategorySpecialNeeds:
		return r.SpecialNeedsRate
	}
	return 0
}

// PremiumRateFilter represents filter criteria for rate card queries
type PremiumRateFilter struct {
	ID       *uint `json:"id,omitempty"`
	PeriodID *uint `json:"period_id,omitempty"`
}
