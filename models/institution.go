package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Network admission status constants. Claims may only reference approved
// institutions and personnel.
const (
	ApprovalStatusPending  = "pending"
	ApprovalStatusApproved = "approved"
	ApprovalStatusRejected = "rejected"
)

// Credential verification status constants. Unverified credentials do not
// block a claim but escalate it to a senior adjudicator.
const (
	VerificationStatusPending  = "pending"
	VerificationStatusVerified = "verified"
	VerificationStatusRejected = "rejected"
)

// Institution is a healthcare provider in the network: a hospital,
// clinic, pharmacy, or lab.
type Institution struct {
	ID   uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`

	Name    string  `gorm:"size:255;not null" json:"name"`
	Type    string  `gorm:"size:64;not null" json:"type"`
	Address *string `gorm:"type:text" json:"address,omitempty"`

	ApprovalStatus     string `gorm:"size:20;not null;default:'pending';index:idx_institutions_approval_status" json:"approval_status"`
	VerificationStatus string `gorm:"size:20;not null;default:'pending'" json:"verification_status"`

	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	// Relationships
	Personnel     []Personnel             `gorm:"foreignKey:InstitutionID" json:"personnel,omitempty"`
	ProviderRates []ProviderProcedureRate `gorm:"foreignKey:InstitutionID" json:"provider_rates,omitempty"`
}

func (Institution) TableName() string {
	return "institutions"
}

// IsApproved reports whether the institution is admitted to the network
func (i *Institution) IsApproved() bool {
	return i.ApprovalStatus == ApprovalStatusApproved
}

// IsVerified reports whether the institution's credentials are verified
func (i *Institution) IsVerified() bool {
	return i.VerificationStatus == VerificationStatusVerified
}

// InstitutionFilter represents filter criteria for institution queries
type InstitutionFilter struct {
	ID             *uint      `json:"id,omitempty"`
	UUID           *uuid.UUID `json:"uuid,omitempty"`
	Name           *string    `json:"name,omitempty"`
	Type           *string    `json:"type,omitempty"`
	ApprovalStatus *string    `json:"approval_status,omitempty"`
}

// BeforeCreate ensures UUID is set
func (i *Institution) BeforeCreate(tx *gorm.DB) error {
	if i.UUID == uuid.Nil {
		i.UUID = uuid.New()
	}
	return nil
}
