package businessflow

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/coverbase/coverbase/app/dto"
	"github.com/coverbase/coverbase/models"
	"github.com/coverbase/coverbase/repository"
	"github.com/coverbase/coverbase/utils"
	"gorm.io/gorm"
)

// MemberFlow represents roster management: enrollment and removal of
// principals and dependents
type MemberFlow interface {
	EnrollPrincipal(ctx context.Context, req *dto.EnrollPrincipalRequest, metadata *ClientMetadata) (*dto.MemberDTO, error)
	EnrollDependent(ctx context.Context, req *dto.EnrollDependentRequest, metadata *ClientMetadata) (*dto.MemberDTO, error)
	RemoveMember(ctx context.Context, memberUUID string, metadata *ClientMetadata) error
	ListByCompany(ctx context.Context, companyUUID string) (*dto.CompanyRosterResponse, error)
}

// MemberFlowImpl implements MemberFlow
type MemberFlowImpl struct {
	memberRepo  repository.MemberRepository
	companyRepo repository.CompanyRepository
	claimRepo   repository.ClaimRepository
	auditRepo   repository.AuditLogRepository
	premiumFlow PremiumFlow
	db          *gorm.DB
}

func NewMemberFlow(
	memberRepo repository.MemberRepository,
	companyRepo repository.CompanyRepository,
	claimRepo repository.ClaimRepository,
	auditRepo repository.AuditLogRepository,
	premiumFlow PremiumFlow,
	db *gorm.DB,
) MemberFlow {
	return &MemberFlowImpl{
		memberRepo:  memberRepo,
		companyRepo: companyRepo,
		claimRepo:   claimRepo,
		auditRepo:   auditRepo,
		premiumFlow: premiumFlow,
		db:          db,
	}
}

// ValidateDependentEligibility enforces the age rules for a dependent:
// spouse, parent, and guardian must be adults; a child must be 18 or
// younger unless disabled, and at least one day old.
func ValidateDependentEligibility(dependentType string, dateOfBirth time.Time, hasDisability bool, today time.Time) error {
	if dateOfBirth.After(today) {
		return ErrBirthDateInFuture
	}
	age := utils.YearsBetween(dateOfBirth, today)
	switch dependentType {
	case models.DependentTypeSpouse, models.DependentTypeParent, models.DependentTypeGuardian:
		if age < utils.AdultAge {
			return ErrDependentTooYoung
		}
	case models.DependentTypeChild:
		if utils.DaysBetween(dateOfBirth, today) < 1 {
			return ErrChildTooYoung
		}
		if !hasDisability && age > utils.ChildMaxAge {
			return ErrChildTooOld
		}
	default:
		return ErrInvalidDependentType
	}
	return nil
}

func (f *MemberFlowImpl) EnrollPrincipal(ctx context.Context, req *dto.EnrollPrincipalRequest, metadata *ClientMetadata) (*dto.MemberDTO, error) {
	company, err := f.companyRepo.ByUUID(ctx, req.CompanyUUID)
	if err != nil {
		return nil, NewBusinessError("COMPANY_LOOKUP_FAILED", "Failed to look up company", err)
	}
	if company == nil {
		return nil, NewBusinessError("COMPANY_NOT_FOUND", "Company not found", ErrCompanyNotFound)
	}
	if !utils.IsTrue(company.IsActive) {
		return nil, NewBusinessError("COMPANY_INACTIVE", "Company is inactive", ErrCompanyInactive)
	}

	dateOfBirth, err := time.Parse(dateLayout, req.DateOfBirth)
	if err != nil {
		return nil, NewBusinessError("MEMBER_VALIDATION_FAILED", "Invalid date of birth", err)
	}
	if dateOfBirth.After(utils.UTCToday()) {
		return nil, NewBusinessError("MEMBER_VALIDATION_FAILED", "Date of birth cannot be in the future", ErrBirthDateInFuture)
	}

	member := &models.Member{
		CompanyID:     company.ID,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		MemberType:    models.MemberTypePrincipal,
		DateOfBirth:   dateOfBirth,
		HasDisability: req.HasDisability,
		CreatedAt:     utils.UTCNow(),
		UpdatedAt:     utils.UTCNow(),
	}
	if err := f.memberRepo.Save(ctx, member); err != nil {
		return nil, NewBusinessError("MEMBER_CREATION_FAILED", "Failed to enroll principal", err)
	}

	msg := fmt.Sprintf("Principal %s %s enrolled", member.FirstName, member.LastName)
	_ = createAuditLog(ctx, f.auditRepo, &company.ID, models.AuditActionMemberEnrolled, msg, true, nil, metadata)

	f.adjustPremium(ctx, company, models.CategoryPrincipal, 1, metadata)

	result := ToMemberDTO(*member)
	return &result, nil
}

func (f *MemberFlowImpl) EnrollDependent(ctx context.Context, req *dto.EnrollDependentRequest, metadata *ClientMetadata) (*dto.MemberDTO, error) {
	principal, err := f.memberRepo.ByUUID(ctx, req.PrincipalUUID)
	if err != nil {
		return nil, NewBusinessError("MEMBER_LOOKUP_FAILED", "Failed to look up principal", err)
	}
	if principal == nil || principal.MemberType != models.MemberTypePrincipal {
		return nil, NewBusinessError("PRINCIPAL_NOT_FOUND", "Principal not found", ErrPrincipalNotFound)
	}

	company, err := f.companyRepo.ByID(ctx, principal.CompanyID)
	if err != nil {
		return nil, NewBusinessError("COMPANY_LOOKUP_FAILED", "Failed to look up company", err)
	}
	if company == nil {
		return nil, NewBusinessError("COMPANY_NOT_FOUND", "Company not found", ErrCompanyNotFound)
	}

	dateOfBirth, err := time.Parse(dateLayout, req.DateOfBirth)
	if err != nil {
		return nil, NewBusinessError("MEMBER_VALIDATION_FAILED", "Invalid date of birth", err)
	}
	if err := ValidateDependentEligibility(req.DependentType, dateOfBirth, req.HasDisability, utils.UTCToday()); err != nil {
		return nil, NewBusinessError("MEMBER_VALIDATION_FAILED", "Dependent eligibility check failed", err)
	}

	// The dependent's company is always derived from the principal
	member := &models.Member{
		CompanyID:     principal.CompanyID,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		MemberType:    models.MemberTypeDependent,
		DependentType: utils.ToPtr(req.DependentType),
		DateOfBirth:   dateOfBirth,
		HasDisability: req.HasDisability,
		PrincipalID:   utils.ToPtr(principal.ID),
		CreatedAt:     utils.UTCNow(),
		UpdatedAt:     utils.UTCNow(),
	}
	if err := f.memberRepo.Save(ctx, member); err != nil {
		return nil, NewBusinessError("MEMBER_CREATION_FAILED", "Failed to enroll dependent", err)
	}

	msg := fmt.Sprintf("Dependent %s %s (%s) enrolled", member.FirstName, member.LastName, req.DependentType)
	_ = createAuditLog(ctx, f.auditRepo, &company.ID, models.AuditActionMemberEnrolled, msg, true, nil, metadata)

	f.adjustPremium(ctx, company, member.BillingCategory(), 1, metadata)

	result := ToMemberDTO(*member)
	return &result, nil
}

// RemoveMember soft deletes a member. Removal is refused when the member
// has claims on record or, for principals, active dependents.
func (f *MemberFlowImpl) RemoveMember(ctx context.Context, memberUUID string, metadata *ClientMetadata) error {
	member, err := f.memberRepo.ByUUID(ctx, memberUUID)
	if err != nil {
		return NewBusinessError("MEMBER_LOOKUP_FAILED", "Failed to look up member", err)
	}
	if member == nil {
		return NewBusinessError("MEMBER_NOT_FOUND", "Member not found", ErrMemberNotFound)
	}

	claimCount, err := f.claimRepo.CountByMember(ctx, member.ID)
	if err != nil {
		return NewBusinessError("CLAIM_LOOKUP_FAILED", "Failed to look up claims", err)
	}
	if claimCount > 0 {
		errMsg := "Member has claims on record"
		_ = createAuditLog(ctx, f.auditRepo, &member.CompanyID, models.AuditActionMemberRemovalBlocked, errMsg, false, &errMsg, metadata)
		return NewBusinessError("MEMBER_HAS_CLAIMS", errMsg, ErrMemberHasClaims)
	}

	if member.MemberType == models.MemberTypePrincipal {
		hasDeps, err := f.memberRepo.HasDependents(ctx, member.ID)
		if err != nil {
			return NewBusinessError("MEMBER_LOOKUP_FAILED", "Failed to look up dependents", err)
		}
		if hasDeps {
			errMsg := "Principal still has active dependents"
			_ = createAuditLog(ctx, f.auditRepo, &member.CompanyID, models.AuditActionMemberRemovalBlocked, errMsg, false, &errMsg, metadata)
			return NewBusinessError("PRINCIPAL_HAS_DEPENDENTS", errMsg, ErrPrincipalHasDependents)
		}
	}

	if err := f.memberRepo.SoftDelete(ctx, member.ID); err != nil {
		return NewBusinessError("MEMBER_REMOVAL_FAILED", "Failed to remove member", err)
	}

	msg := fmt.Sprintf("Member %s %s removed", member.FirstName, member.LastName)
	_ = createAuditLog(ctx, f.auditRepo, &member.CompanyID, models.AuditActionMemberRemoved, msg, true, nil, metadata)

	company, err := f.companyRepo.ByID(ctx, member.CompanyID)
	if err == nil && company != nil {
		f.adjustPremium(ctx, company, member.BillingCategory(), -1, metadata)
	}

	return nil
}

func (f *MemberFlowImpl) ListByCompany(ctx context.Context, companyUUID string) (*dto.CompanyRosterResponse, error) {
	company, err := f.companyRepo.ByUUID(ctx, companyUUID)
	if err != nil {
		return nil, NewBusinessError("COMPANY_LOOKUP_FAILED", "Failed to look up company", err)
	}
	if company == nil {
		return nil, NewBusinessError("COMPANY_NOT_FOUND", "Company not found", ErrCompanyNotFound)
	}

	members, err := f.memberRepo.ListActiveByCompany(ctx, company.ID)
	if err != nil {
		return nil, NewBusinessError("ROSTER_LOOKUP_FAILED", "Failed to load company roster", err)
	}

	counts := CountCategories(members)
	resp := &dto.CompanyRosterResponse{
		Members: make([]dto.MemberDTO, 0, len(members)),
		Counts: dto.MemberCountsDTO{
			Principal:    counts.Principal,
			Spouse:       counts.Spouse,
			Child:        counts.Child,
			SpecialNeeds: counts.SpecialNeeds,
		},
	}
	for _, member := range members {
		resp.Members = append(resp.Members, ToMemberDTO(*member))
	}
	return resp, nil
}

// adjustPremium triggers the incremental premium recalculation as a
// best-effort side effect: failures are logged and audited but never roll
// back the member mutation.
func (f *MemberFlowImpl) adjustPremium(ctx context.Context, company *models.Company, category string, delta int, metadata *ClientMetadata) {
	if category == "" {
		return
	}
	if _, err := f.premiumFlow.AdjustForMemberChange(ctx, company, category, delta, metadata); err != nil {
		log.Printf("premium adjustment failed for company %d: %v", company.ID, err)
		errMsg := err.Error()
		_ = createAuditLog(ctx, f.auditRepo, &company.ID, models.AuditActionPremiumAdjustmentFailed, "Premium adjustment failed after member change", false, &errMsg, metadata)
	}
}
