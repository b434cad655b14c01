package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Claim status constants
const (
	ClaimStatusSubmitted  = "submitted"
	ClaimStatusApproved   = "approved"
	ClaimStatusRejected   = "rejected"
	ClaimStatusPaid       = "paid"
	ClaimStatusFraudulent = "fraudulent"
)

// Claim is a reimbursement request filed on behalf of a member for
// services rendered at an institution by a personnel. A Claim row exists
// only for submissions that passed every validation step.
type Claim struct {
	ID   uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`

	MemberID      uint `gorm:"not null;index:idx_claims_member_id" json:"member_id"`
	BenefitID     uint `gorm:"not null;index:idx_claims_benefit_id" json:"benefit_id"`
	InstitutionID uint `gorm:"not null;index:idx_claims_institution_id" json:"institution_id"`
	PersonnelID   uint `gorm:"not null;index:idx_claims_personnel_id" json:"personnel_id"`

	Amount      float64   `gorm:"type:numeric(14,2);not null" json:"amount"`
	ServiceDate time.Time `gorm:"not null" json:"service_date"`
	Notes       *string   `gorm:"type:text" json:"notes,omitempty"`

	Status string `gorm:"size:20;not null;default:'submitted';index:idx_claims_status" json:"status"`

	// RequiresHigherApproval flags claims whose provider or practitioner
	// has unverified credentials, so a senior adjudicator must sign off.
	RequiresHigherApproval bool `gorm:"not null;default:false" json:"requires_higher_approval"`

	DecidedAt      *time.Time `json:"decided_at,omitempty"`
	DecidedBy      *uint      `json:"decided_by,omitempty"`
	DecisionReason *string    `gorm:"type:text" json:"decision_reason,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	// Relationships
	Member      *Member          `gorm:"foreignKey:MemberID;constraint:OnDelete:CASCADE" json:"member,omitempty"`
	Benefit     *Benefit         `gorm:"foreignKey:BenefitID" json:"benefit,omitempty"`
	Institution *Institution     `gorm:"foreignKey:InstitutionID" json:"institution,omitempty"`
	Personnel   *Personnel       `gorm:"foreignKey:PersonnelID" json:"personnel,omitempty"`
	Procedures  []ClaimProcedure `gorm:"foreignKey:ClaimID" json:"procedures,omitempty"`
}

func (Claim) TableName() string {
	return "claims"
}

// IsDecided reports whether the claim has reached a terminal adjudication state
func (c *Claim) IsDecided() bool {
	return c.Status != ClaimStatusSubmitted
}

// ClaimFilter represents filter criteria for claim queries
type ClaimFilter struct {
	ID                     *uint      `json:"id,omitempty"`
	UUID                   *uuid.UUID `json:"uuid,omitempty"`
	MemberID               *uint      `json:"member_id,omitempty"`
	BenefitID              *uint      `json:"benefit_id,omitempty"`
	InstitutionID          *uint      `json:"institution_id,omitempty"`
	PersonnelID            *uint      `json:"personnel_id,omitempty"`
	Status                 *string    `json:"status,omitempty"`
	RequiresHigherApproval *bool      `json:"requires_higher_approval,omitempty"`
	CreatedAfter           *time.Time `json:"created_after,omitempty"`
	CreatedBefore          *time.Time `json:"created_before,omitempty"`
}

// BeforeCreate ensures UUID is set
func (c *Claim) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	return nil
}

// ClaimProcedure is an itemized line on a claim: one medical procedure,
// its quantity, and the unit rate that was in force when the claim was
// priced. UnitRate is frozen at submission time.
type ClaimProcedure struct {
	ID          uint `gorm:"primaryKey;autoIncrement" json:"id"`
	ClaimID     uint `gorm:"not null;index:idx_claim_procedures_claim_id" json:"claim_id"`
	ProcedureID uint `gorm:"not null;index:idx_claim_procedures_procedure_id" json:"procedure_id"`

	Quantity  int     `gorm:"not null" json:"quantity"`
	UnitRate  float64 `gorm:"type:numeric(14,2);not null" json:"unit_rate"`
	LineTotal float64 `gorm:"type:numeric(14,2);not null" json:"line_total"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`

	// Relationships
	Claim     *Claim     `gorm:"foreignKey:ClaimID;constraint:OnDelete:CASCADE" json:"claim,omitempty"`
	Procedure *Procedure `gorm:"foreignKey:ProcedureID" json:"procedure,omitempty"`
}

func (ClaimProcedure) TableName() string {
	return "claim_procedures"
}

// ClaimProcedureFilter represents filter criteria for claim line queries
type ClaimProcedureFilter struct {
	ID          *uint `json:"id,omitempty"`
	ClaimID     *uint `json:"claim_id,omitempty"`
	ProcedureID *uint `json:"procedure_id,omitempty"`
}
