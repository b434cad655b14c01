package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Premium status constants
const (
	PremiumStatusActive     = "active"
	PremiumStatusSuperseded = "superseded"
)

// Premium is an immutable record of one premium calculation for a company
// in a period. Recalculations and mid-period adjustments never update a
// row: they append a new Premium that supersedes the previous one, linked
// through PreviousPremiumID.
type Premium struct {
	ID       uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID     uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`
	CompanyID uint     `gorm:"not null;index:idx_premiums_company_id" json:"company_id"`
	PeriodID  uint     `gorm:"not null;index:idx_premiums_period_id" json:"period_id"`

	// Roster counts at calculation time
	PrincipalCount    int `gorm:"not null" json:"principal_count"`
	SpouseCount       int `gorm:"not null" json:"spouse_count"`
	ChildCount        int `gorm:"not null" json:"child_count"`
	SpecialNeedsCount int `gorm:"not null" json:"special_needs_count"`

	// Calculated amounts
	Subtotal float64 `gorm:"type:numeric(14,2);not null" json:"subtotal"`
	Tax      float64 `gorm:"type:numeric(14,2);not null" json:"tax"`
	Total    float64 `gorm:"type:numeric(14,2);not null" json:"total"`

	// Pro-ration fields, set only on mid-period adjustments
	IsAdjustment      bool       `gorm:"not null;default:false" json:"is_adjustment"`
	AdjustmentFactor  *float64   `gorm:"type:numeric(10,6)" json:"adjustment_factor,omitempty"`
	ProRatedTotal     *float64   `gorm:"type:numeric(14,2)" json:"pro_rated_total,omitempty"`
	ProRataStartDate  *time.Time `json:"pro_rata_start_date,omitempty"`
	ProRataEndDate    *time.Time `json:"pro_rata_end_date,omitempty"`
	PreviousPremiumID *uint      `gorm:"index" json:"previous_premium_id,omitempty"`

	Status     string    `gorm:"size:20;not null;default:'active';index:idx_premiums_status" json:"status"`
	IssuedDate time.Time `gorm:"not null" json:"issued_date"`

	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	// Relationships
	Company  *Company     `gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE" json:"company,omitempty"`
	Period   *Period      `gorm:"foreignKey:PeriodID;constraint:OnDelete:CASCADE" json:"period,omitempty"`
	Previous *Premium     `gorm:"foreignKey:PreviousPremiumID" json:"previous,omitempty"`
	Benefits []CompanyBenefit `gorm:"foreignKey:PremiumID" json:"benefits,omitempty"`
}

func (Premium) TableName() string {
	return "premiums"
}

// AmountDue returns the amount the company owes for this premium:
// the pro-rated total for adjustments, the full total otherwise.
func (p *Premium) AmountDue() float64 {
	if p.IsAdjustment && p.ProRatedTotal != nil {
		return *p.ProRatedTotal
	}
	return p.Total
}

// TotalMemberCount returns the number of billed members
func (p *Premium) TotalMemberCount() int {
	return p.PrincipalCount + p.SpouseCount + p.ChildCount + p.SpecialNeedsCount
}

// PremiumFilter represents filter criteria for premium queries
type PremiumFilter struct {
	ID            *uint      `json:"id,omitempty"`
	UUID          *uuid.UUID `json:"uuid,omitempty"`
	CompanyID     *uint      `json:"company_id,omitempty"`
	PeriodID      *uint      `json:"period_id,omitempty"`
	Status        *string    `json:"status,omitempty"`
	IsAdjustment  *bool      `json:"is_adjustment,omitempty"`
	CreatedAfter  *time.Time `json:"created_after,omitempty"`
	CreatedBefore *time.Time `json:"created_before,omitempty"`
}

// BeforeCreate ensures UUID is set
func (p *Premium) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == uuid.Nil {
		p.UUID = uuid.New()
	}
	return nil
}
