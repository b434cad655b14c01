// Package dto
package dto

type EnrollPrincipalRequest struct {
	CompanyUUID   string `json:"company_uuid" validate:"required,uuid4"`
	FirstName     string `json:"first_name" validate:"required,min=1,max=255"`
	LastName      string `json:"last_name" validate:"required,min=1,max=255"`
	DateOfBirth   string `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	HasDisability bool   `json:"has_disability"`
}

type EnrollDependentRequest struct {
	PrincipalUUID string `json:"principal_uuid" validate:"required,uuid4"`
	DependentType string `json:"dependent_type" validate:"required,oneof=spouse child parent guardian"`
	FirstName     string `json:"first_name" validate:"required,min=1,max=255"`
	LastName      string `json:"last_name" validate:"required,min=1,max=255"`
	DateOfBirth   string `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	HasDisability bool   `json:"has_disability"`
}

type MemberDTO struct {
	ID            uint    `json:"id" example:"1"`
	UUID          string  `json:"uuid" example:"f47ac10b-58cc-4372-a567-0e02b2c3d479"`
	CompanyID     uint    `json:"company_id"`
	FirstName     string  `json:"first_name"`
	LastName      string  `json:"last_name"`
	MemberType    string  `json:"member_type" example:"principal"`
	DependentType *string `json:"dependent_type,omitempty" example:"spouse"`
	DateOfBirth   string  `json:"date_of_birth" example:"1990-04-12"`
	HasDisability bool    `json:"has_disability"`
	PrincipalID   *uint   `json:"principal_id,omitempty"`
	CreatedAt     string  `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

type MemberCountsDTO struct {
	Principal    int `json:"principal"`
	Spouse       int `json:"spouse"`
	Child        int `json:"child"`
	SpecialNeeds int `json:"special_needs"`
}

type CompanyRosterResponse struct {
	Members []MemberDTO     `json:"members"`
	Counts  MemberCountsDTO `json:"counts"`
}
