// Package dto
package dto

type CalculatePremiumRequest struct {
	CompanyUUID string  `json:"company_uuid" validate:"required,uuid4"`
	PeriodUUID  *string `json:"period_uuid,omitempty" validate:"omitempty,uuid4"`
}

type PremiumDTO struct {
	ID                uint     `json:"id" example:"1"`
	UUID              string   `json:"uuid" example:"f47ac10b-58cc-4372-a567-0e02b2c3d479"`
	CompanyID         uint     `json:"company_id"`
	PeriodID          uint     `json:"period_id"`
	PrincipalCount    int      `json:"principal_count"`
	SpouseCount       int      `json:"spouse_count"`
	ChildCount        int      `json:"child_count"`
	SpecialNeedsCount int      `json:"special_needs_count"`
	Subtotal          float64  `json:"subtotal" example:"4000"`
	Tax               float64  `json:"tax" example:"640"`
	Total             float64  `json:"total" example:"4640"`
	IsAdjustment      bool     `json:"is_adjustment"`
	AdjustmentFactor  *float64 `json:"adjustment_factor,omitempty"`
	ProRatedTotal     *float64 `json:"pro_rated_total,omitempty"`
	ProRataStartDate  *string  `json:"pro_rata_start_date,omitempty"`
	ProRataEndDate    *string  `json:"pro_rata_end_date,omitempty"`
	PreviousPremiumID *uint    `json:"previous_premium_id,omitempty"`
	Status            string   `json:"status" example:"active"`
	IssuedDate        string   `json:"issued_date" example:"2024-01-15T10:30:00Z"`
}

type PremiumHistoryResponse struct {
	Premiums []PremiumDTO `json:"premiums"`
}

type RateCardDTO struct {
	ID               uint    `json:"id"`
	PeriodID         uint    `json:"period_id"`
	PrincipalRate    float64 `json:"principal_rate" example:"1000"`
	SpouseRate       float64 `json:"spouse_rate" example:"500"`
	ChildRate        float64 `json:"child_rate" example:"300"`
	SpecialNeedsRate float64 `json:"special_needs_rate" example:"600"`
	TaxRate          float64 `json:"tax_rate" example:"0.16"`
}

type PeriodDTO struct {
	ID        uint         `json:"id"`
	UUID      string       `json:"uuid"`
	Name      string       `json:"name" example:"FY2026"`
	StartDate string       `json:"start_date" example:"2026-01-01"`
	EndDate   string       `json:"end_date" example:"2026-12-31"`
	Status    string       `json:"status" example:"active"`
	RateCard  *RateCardDTO `json:"rate_card,omitempty"`
}

type CreatePeriodRequest struct {
	Name      string `json:"name" validate:"required,min=2,max=255"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

type CreateRateCardRequest struct {
	PrincipalRate    float64 `json:"principal_rate" validate:"gte=0"`
	SpouseRate       float64 `json:"spouse_rate" validate:"gte=0"`
	ChildRate        float64 `json:"child_rate" validate:"gte=0"`
	SpecialNeedsRate float64 `json:"special_needs_rate" validate:"gte=0"`
	TaxRate          float64 `json:"tax_rate" validate:"gte=0,lte=1"`
}
