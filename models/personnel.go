package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Personnel is a licensed practitioner attached to an institution:
// a physician, dentist, pharmacist, or similar.
type Personnel struct {
	ID   uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`

	InstitutionID uint `gorm:"not null;index:idx_personnel_institution_id" json:"institution_id"`

	FirstName     string  `gorm:"size:255;not null" json:"first_name"`
	LastName      string  `gorm:"size:255;not null" json:"last_name"`
	Specialty     *string `gorm:"size:255" json:"specialty,omitempty"`
	LicenseNumber string  `gorm:"size:64;uniqueIndex;not null" json:"license_number"`

	ApprovalStatus     string `gorm:"size:20;not null;default:'pending';index:idx_personnel_approval_status" json:"approval_status"`
	VerificationStatus string `gorm:"size:20;not null;default:'pending'" json:"verification_status"`

	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	// Relationships
	Institution *Institution `gorm:"foreignKey:InstitutionID;constraint:OnDelete:CASCADE" json:"institution,omitempty"`
}

func (Personnel) TableName() string {
	return "personnel"
}

// IsApproved reports whether the practitioner is admitted to the network
func (p *Personnel) IsApproved() bool {
	return p.ApprovalStatus == ApprovalStatusApproved
}

// IsVerified reports whether the practitioner's credentials are verified
func (p *Personnel) IsVerified() bool {
	return p.VerificationStatus == VerificationStatusVerified
}

// PersonnelFilter represents filter criteria for personnel queries
type PersonnelFilter struct {
	ID             *uint      `json:"id,omitempty"`
	UUID           *uuid.UUID `json:"uuid,omitempty"`
	InstitutionID  *uint      `json:"institution_id,omitempty"`
	LicenseNumber  *string    `json:"license_number,omitempty"`
	ApprovalStatus *string    `json:"approval_status,omitempty"`
}

// BeforeCreate ensures UUID is set
func (p *Personnel) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == uuid.Nil {
		p.UUID = uuid.New()
	}
	return nil
}
