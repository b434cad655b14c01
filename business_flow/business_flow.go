// Package businessflow contains the business logic for the application.
package businessflow

import (
	"time"

	"github.com/coverbase/coverbase/app/dto"
	"github.com/coverbase/coverbase/models"
	"github.com/coverbase/coverbase/utils"
)

const RequestIDKey = "X-Request-ID"

const dateLayout = "2006-01-02"

// ClientMetadata holds all client-related information for audit logging
type ClientMetadata struct {
	IPAddress  string            `json:"ip_address"`
	UserAgent  string            `json:"user_agent"`
	RequestID  string            `json:"request_id,omitempty"`
	Additional map[string]string `json:"additional,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Additional: make(map[string]string),
	}
}

// AddAdditional adds additional custom information to the metadata
func (cm *ClientMetadata) AddAdditional(key, value string) {
	if cm.Additional == nil {
		cm.Additional = make(map[string]string)
	}
	cm.Additional[key] = value
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

func ToCompanyDTO(company models.Company) dto.CompanyDTO {
	return dto.CompanyDTO{
		ID:                 company.ID,
		UUID:               company.UUID.String(),
		Name:               company.Name,
		RegistrationNumber: company.RegistrationNumber,
		ContactEmail:       company.ContactEmail,
		ContactMobile:      company.ContactMobile,
		IsActive:           company.IsActive,
		CreatedAt:          company.CreatedAt.Format(time.RFC3339),
	}
}

func ToMemberDTO(member models.Member) dto.MemberDTO {
	return dto.MemberDTO{
		ID:            member.ID,
		UUID:          member.UUID.String(),
		CompanyID:     member.CompanyID,
		FirstName:     member.FirstName,
		LastName:      member.LastName,
		MemberType:    member.MemberType,
		DependentType: member.DependentType,
		DateOfBirth:   member.DateOfBirth.Format(dateLayout),
		HasDisability: member.HasDisability,
		PrincipalID:   member.PrincipalID,
		CreatedAt:     member.CreatedAt.Format(time.RFC3339),
	}
}

func ToPremiumDTO(premium models.Premium) dto.PremiumDTO {
	d := dto.PremiumDTO{
		ID:                premium.ID,
		UUID:              premium.UUID.String(),
		CompanyID:         premium.CompanyID,
		PeriodID:          premium.PeriodID,
		PrincipalCount:    premium.PrincipalCount,
		SpouseCount:       premium.SpouseCount,
		ChildCount:        premium.ChildCount,
		SpecialNeedsCount: premium.SpecialNeedsCount,
		Subtotal:          premium.Subtotal,
		Tax:               premium.Tax,
		Total:             premium.Total,
		IsAdjustment:      premium.IsAdjustment,
		AdjustmentFactor:  premium.AdjustmentFactor,
		ProRatedTotal:     premium.ProRatedTotal,
		PreviousPremiumID: premium.PreviousPremiumID,
		Status:            premium.Status,
		IssuedDate:        premium.IssuedDate.Format(time.RFC3339),
	}
	if premium.ProRataStartDate != nil {
		d.ProRataStartDate = utils.ToPtr(premium.ProRataStartDate.Format(dateLayout))
	}
	if premium.ProRataEndDate != nil {
		d.ProRataEndDate = utils.ToPtr(premium.ProRataEndDate.Format(dateLayout))
	}
	return d
}

func ToClaimDTO(claim models.Claim) dto.ClaimDTO {
	d := dto.ClaimDTO{
		ID:                     claim.ID,
		UUID:                   claim.UUID.String(),
		MemberID:               claim.MemberID,
		BenefitID:              claim.BenefitID,
		InstitutionID:          claim.InstitutionID,
		PersonnelID:            claim.PersonnelID,
		Amount:                 claim.Amount,
		ServiceDate:            claim.ServiceDate.Format(dateLayout),
		Status:                 claim.Status,
		RequiresHigherApproval: claim.RequiresHigherApproval,
		Notes:                  claim.Notes,
		DecisionReason:         claim.DecisionReason,
		CreatedAt:              claim.CreatedAt.Format(time.RFC3339),
	}
	for _, proc := range claim.Procedures {
		item := dto.ClaimProcedureDTO{
			ProcedureID: proc.ProcedureID,
			Quantity:    proc.Quantity,
			UnitRate:    proc.UnitRate,
			LineTotal:   proc.LineTotal,
		}
		if proc.Procedure != nil {
			item.Code = proc.Procedure.Code
		}
		d.Procedures = append(d.Procedures, item)
	}
	return d
}

func ToRateCardDTO(rate models.PremiumRate) dto.RateCardDTO {
	return dto.RateCardDTO{
		ID:               rate.ID,
		PeriodID:         rate.PeriodID,
		PrincipalRate:    rate.PrincipalRate,
		SpouseRate:       rate.SpouseRate,
		ChildRate:        rate.ChildRate,
		SpecialNeedsRate: rate.SpecialNeedsRate,
		TaxRate:          rate.TaxRate,
	}
}

func ToPeriodDTO(period models.Period) dto.PeriodDTO {
	d := dto.PeriodDTO{
		ID:        period.ID,
		UUID:      period.UUID.String(),
		Name:      period.Name,
		StartDate: period.StartDate.Format(dateLayout),
		EndDate:   period.EndDate.Format(dateLayout),
		Status:    period.Status,
	}
	if period.RateCard != nil {
		d.RateCard = utils.ToPtr(ToRateCardDTO(*period.RateCard))
	}
	return d
}

func ToAdminDTOModel(admin models.Admin) dto.AdminDTO {
	return dto.AdminDTO{
		ID:        admin.ID,
		UUID:      admin.UUID.String(),
		Username:  admin.Username,
		IsActive:  admin.IsActive,
		CreatedAt: admin.CreatedAt.Format(time.RFC3339),
	}
}

func ToAdminSessionDTO(accessToken, refreshToken string) dto.AdminSessionDTO {
	return dto.AdminSessionDTO{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(utils.AccessTokenTTL.Seconds()),
		TokenType:    "Bearer",
		CreatedAt:    utils.UTCNow().Format(time.RFC3339),
	}
}
