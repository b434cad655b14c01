package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Member type constants
const (
	MemberTypePrincipal = "principal"
	MemberTypeDependent = "dependent"
)

// Dependent type constants
const (
	DependentTypeSpouse   = "spouse"
	DependentTypeChild    = "child"
	DependentTypeParent   = "parent"
	DependentTypeGuardian = "guardian"
)

// Billing category constants. Parent and guardian dependents belong to no
// billing category.
const (
	CategoryPrincipal    = "principal"
	CategorySpouse       = "spouse"
	CategoryChild        = "child"
	CategorySpecialNeeds = "special_needs"
)

// Member is a covered person: either a principal policyholder or a
// dependent attached to one. A dependent's company always equals its
// principal's company.
type Member struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID      uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`
	CompanyID uint      `gorm:"not null;index:idx_members_company_id" json:"company_id"`

	FirstName string `gorm:"size:255;not null" json:"first_name"`
	LastName  string `gorm:"size:255;not null" json:"last_name"`

	MemberType    string  `gorm:"size:20;not null;index:idx_members_member_type" json:"member_type"`
	DependentType *string `gorm:"size:20" json:"dependent_type,omitempty"`
	DateOfBirth   time.Time `gorm:"not null" json:"date_of_birth"`
	HasDisability bool      `gorm:"not null;default:false" json:"has_disability"`

	// PrincipalID is set iff the member is a dependent
	PrincipalID *uint `gorm:"index:idx_members_principal_id" json:"principal_id,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	// Relationships
	Company    *Company `gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE" json:"company,omitempty"`
	Principal  *Member  `gorm:"foreignKey:PrincipalID" json:"principal,omitempty"`
	Dependents []Member `gorm:"foreignKey:PrincipalID" json:"dependents,omitempty"`
	Claims     []Claim  `gorm:"foreignKey:MemberID" json:"claims,omitempty"`
}

func (Member) TableName() string {
	return "members"
}

// IsDependent reports whether the member is attached to a principal
func (m *Member) IsDependent() bool {
	return m.MemberType == MemberTypeDependent
}

// BillingCategory returns the billing category the member counts toward,
// or "" for members outside all four categories (parents and guardians).
func (m *Member) BillingCategory() string {
	if m.MemberType == MemberTypePrincipal {
		return CategoryPrincipal
	}
	if m.DependentType == nil {
		return ""
	}
	switch *m.DependentType {
	case DependentTypeSpouse:
		return CategorySpouse
	case DependentTypeChild:
		if m.HasDisability {
			return CategorySpecialNeeds
		}
		return CategoryChild
	}
	return ""
}

// MemberFilter represents filter criteria for member queries
type MemberFilter struct {
	ID            *uint      `json:"id,omitempty"`
	UUID          *uuid.UUID `json:"uuid,omitempty"`
	CompanyID     *uint      `json:"company_id,omitempty"`
	MemberType    *string    `json:"member_type,omitempty"`
	DependentType *string    `json:"dependent_type,omitempty"`
	PrincipalID   *uint      `json:"principal_id,omitempty"`
	HasDisability *bool      `json:"has_disability,omitempty"`
}

// BeforeCreate ensures UUID is set
func (m *Member) BeforeCreate(tx *gorm.DB) error {
	if m.UUID == uuid.Nil {
		m.UUID = uuid.New()
	}
	return nil
}
