package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Procedure is a billable medical procedure with a standard rate that
// applies when no provider-specific rate is negotiated.
type Procedure struct {
	ID   uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`

	Code         string  `gorm:"size:64;uniqueIndex;not null" json:"code"`
	Name         string  `gorm:"size:255;not null" json:"name"`
	Description  *string `gorm:"type:text" json:"description,omitempty"`
	StandardRate float64 `gorm:"type:numeric(14,2);not null" json:"standard_rate"`

	IsActive *bool `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relationships
	ProviderRates []ProviderProcedureRate `gorm:"foreignKey:ProcedureID" json:"provider_rates,omitempty"`
}

func (Procedure) TableName() string {
	return "procedures"
}

// ProcedureFilter represents filter criteria for procedure queries
type ProcedureFilter struct {
	ID       *uint      `json:"id,omitempty"`
	UUID     *uuid.UUID `json:"uuid,omitempty"`
	Code     *string    `json:"code,omitempty"`
	IsActive *bool      `json:"is_active,omitempty"`
}

// BeforeCreate ensures UUID is set
func (p *Procedure) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == uuid.Nil {
		p.UUID = uuid.New()
	}
	return nil
}

// ProviderProcedureRate is a negotiated rate between an institution and
// the insurer for a single procedure. An active, unexpired provider rate
// takes precedence over the procedure's standard rate when pricing claim
// lines.
type ProviderProcedureRate struct {
	ID            uint `gorm:"primaryKey;autoIncrement" json:"id"`
	InstitutionID uint `gorm:"not null;index:idx_provider_rates_institution_id" json:"institution_id"`
	ProcedureID   uint `gorm:"not null;index:idx_provider_rates_procedure_id" json:"procedure_id"`

	Rate          float64    `gorm:"type:numeric(14,2);not null" json:"rate"`
	EffectiveFrom time.Time  `gorm:"not null" json:"effective_from"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	IsActive      *bool      `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relationships
	Institution *Institution `gorm:"foreignKey:InstitutionID;constraint:OnDelete:CASCADE" json:"institution,omitempty"`
	Procedure   *Procedure   `gorm:"foreignKey:ProcedureID;constraint:OnDelete:CASCADE" json:"procedure,omitempty"`
}

func (ProviderProcedureRate) TableName() string {
	return "provider_procedure_rates"
}

// IsInForce reports whether the negotiated rate applies at the given time
func (r *ProviderProcedureRate) IsInForce(at time.Time) bool {
	if r.IsActive != nil && !*r.IsActive {
		return false
	}
	if at.Before(r.EffectiveFrom) {
		return false
	}
	if r.ExpiresAt != nil && !at.Before(*r.ExpiresAt) {
		return false
	}
	return true
}

// ProviderProcedureRateFilter represents filter criteria for provider rate queries
type ProviderProcedureRateFilter struct {
	ID            *uint `json:"id,omitempty"`
	InstitutionID *uint `json:"institution_id,omitempty"`
	ProcedureID   *uint `json:"procedure_id,omitempty"`
	IsActive      *bool `json:"is_active,omitempty"`
}
