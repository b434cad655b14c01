// Package dto
package dto

type SubmitClaimRequest struct {
	MemberUUID      string  `json:"member_uuid" validate:"required,uuid4"`
	InstitutionUUID string  `json:"institution_uuid" validate:"required,uuid4"`
	PersonnelUUID   string  `json:"personnel_uuid" validate:"required,uuid4"`
	BenefitCode     string  `json:"benefit_code" validate:"required,min=1,max=64"`
	Amount          float64 `json:"amount" validate:"required,gt=0"`
	ServiceDate     string  `json:"service_date" validate:"required,datetime=2006-01-02"`
	Notes           *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type ClaimProcedureItem struct {
	ProcedureCode string `json:"procedure_code" validate:"required,min=1,max=64"`
	Quantity      int    `json:"quantity" validate:"required,gt=0"`
}

type SubmitClaimWithProceduresRequest struct {
	MemberUUID      string               `json:"member_uuid" validate:"required,uuid4"`
	InstitutionUUID string               `json:"institution_uuid" validate:"required,uuid4"`
	PersonnelUUID   string               `json:"personnel_uuid" validate:"required,uuid4"`
	BenefitCode     string               `json:"benefit_code" validate:"required,min=1,max=64"`
	ServiceDate     string               `json:"service_date" validate:"required,datetime=2006-01-02"`
	Notes           *string              `json:"notes,omitempty" validate:"omitempty,max=2000"`
	Procedures      []ClaimProcedureItem `json:"procedures" validate:"required,min=1,dive"`
}

type ClaimDecisionRequest struct {
	Reason *string `json:"reason,omitempty" validate:"omitempty,max=2000"`
}

type ClaimProcedureDTO struct {
	ProcedureID uint    `json:"procedure_id"`
	Code        string  `json:"code,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitRate    float64 `json:"unit_rate"`
	LineTotal   float64 `json:"line_total"`
}

type ClaimDTO struct {
	ID                     uint                `json:"id" example:"1"`
	UUID                   string              `json:"uuid" example:"f47ac10b-58cc-4372-a567-0e02b2c3d479"`
	MemberID               uint                `json:"member_id"`
	BenefitID              uint                `json:"benefit_id"`
	InstitutionID          uint                `json:"institution_id"`
	PersonnelID            uint                `json:"personnel_id"`
	Amount                 float64             `json:"amount"`
	ServiceDate            string              `json:"service_date" example:"2026-03-04"`
	Status                 string              `json:"status" example:"submitted"`
	RequiresHigherApproval bool                `json:"requires_higher_approval"`
	Notes                  *string             `json:"notes,omitempty"`
	DecisionReason         *string             `json:"decision_reason,omitempty"`
	Procedures             []ClaimProcedureDTO `json:"procedures,omitempty"`
	CreatedAt              string              `json:"created_at" example:"2024-01-15T10:30:00Z"`
}
