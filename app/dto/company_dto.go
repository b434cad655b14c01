// Package dto
package dto

type CreateCompanyRequest struct {
	Name               string  `json:"name" validate:"required,min=2,max=255"`
	RegistrationNumber *string `json:"registration_number,omitempty" validate:"omitempty,max=64"`
	ContactEmail       string  `json:"contact_email" validate:"required,email,max=255"`
	ContactMobile      *string `json:"contact_mobile,omitempty" validate:"omitempty,max=20"`
}

type CompanyDTO struct {
	ID                 uint    `json:"id" example:"1"`
	UUID               string  `json:"uuid" example:"f47ac10b-58cc-4372-a567-0e02b2c3d479"`
	Name               string  `json:"name" example:"Acme Logistics"`
	RegistrationNumber *string `json:"registration_number,omitempty"`
	ContactEmail       string  `json:"contact_email"`
	ContactMobile      *string `json:"contact_mobile,omitempty"`
	IsActive           *bool   `json:"is_active" example:"true"`
	CreatedAt          string  `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

type AssignBenefitsRequest struct {
	BenefitCodes []string `json:"benefit_codes" validate:"required,min=1,dive,required"`
}

type BenefitDTO struct {
	ID          uint    `json:"id"`
	UUID        string  `json:"uuid"`
	Code        string  `json:"code" example:"OUTPATIENT"`
	Name        string  `json:"name" example:"Outpatient care"`
	Description *string `json:"description,omitempty"`
}

type BenefitPackageResponse struct {
	Company  CompanyDTO   `json:"company"`
	Premium  *PremiumDTO  `json:"premium,omitempty"`
	Benefits []BenefitDTO `json:"benefits"`
}
