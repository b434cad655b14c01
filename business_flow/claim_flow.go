package businessflow

import (
	"context"
	"fmt"
	"time"

	"github.com/coverbase/coverbase/app/dto"
	"github.com/coverbase/coverbase/app/services"
	"github.com/coverbase/coverbase/models"
	"github.com/coverbase/coverbase/repository"
	"github.com/coverbase/coverbase/utils"
	"gorm.io/gorm"
)

// BenefitNotCoveredMessage is returned verbatim when the claimed benefit
// is missing from the company's package.
const BenefitNotCoveredMessage = "The requested benefit is not included in the member's insurance package"

// ClaimFlow represents claim submission and adjudication
type ClaimFlow interface {
	SubmitClaim(ctx context.Context, req *dto.SubmitClaimRequest, metadata *ClientMetadata) (*dto.ClaimDTO, error)
	SubmitClaimWithProcedures(ctx context.Context, req *dto.SubmitClaimWithProceduresRequest, metadata *ClientMetadata) (*dto.ClaimDTO, error)
	ApproveClaim(ctx context.Context, claimUUID string, req *dto.ClaimDecisionRequest, adminID uint, metadata *ClientMetadata) (*dto.ClaimDTO, error)
	RejectClaim(ctx context.Context, claimUUID string, req *dto.ClaimDecisionRequest, adminID uint, metadata *ClientMetadata) (*dto.ClaimDTO, error)
}

// ClaimFlowImpl implements ClaimFlow
type ClaimFlowImpl struct {
	memberRepo         repository.MemberRepository
	companyRepo        repository.CompanyRepository
	institutionRepo    repository.InstitutionRepository
	personnelRepo      repository.PersonnelRepository
	benefitRepo        repository.BenefitRepository
	companyBenefitRepo repository.CompanyBenefitRepository
	premiumRepo        repository.PremiumRepository
	procedureRepo      repository.ProcedureRepository
	claimRepo          repository.ClaimRepository
	auditRepo          repository.AuditLogRepository
	periodFlow         PeriodFlow
	notifier           services.NotificationService
	db                 *gorm.DB
}

func NewClaimFlow(
	memberRepo repository.MemberRepository,
	companyRepo repository.CompanyRepository,
	institutionRepo repository.InstitutionRepository,
	personnelRepo repository.PersonnelRepository,
	benefitRepo repository.BenefitRepository,
	companyBenefitRepo repository.CompanyBenefitRepository,
	premiumRepo repository.PremiumRepository,
	procedureRepo repository.ProcedureRepository,
	claimRepo repository.ClaimRepository,
	auditRepo repository.AuditLogRepository,
	periodFlow PeriodFlow,
	notifier services.NotificationService,
	db *gorm.DB,
) ClaimFlow {
	return &ClaimFlowImpl{
		memberRepo:         memberRepo,
		companyRepo:        companyRepo,
		institutionRepo:    institutionRepo,
		personnelRepo:      personnelRepo,
		benefitRepo:        benefitRepo,
		companyBenefitRepo: companyBenefitRepo,
		premiumRepo:        premiumRepo,
		procedureRepo:      procedureRepo,
		claimRepo:          claimRepo,
		auditRepo:          auditRepo,
		periodFlow:         periodFlow,
		notifier:           notifier,
		db:                 db,
	}
}

// claimContext carries the entities resolved by the validation pipeline
type claimContext struct {
	member                 *models.Member
	institution            *models.Institution
	personnel              *models.Personnel
	benefit                *models.Benefit
	premium                *models.Premium
	requiresHigherApproval bool
}

// validate runs the ordered, short-circuiting claim checks. No Claim row
// is created when any step fails.
func (f *ClaimFlowImpl) validate(ctx context.Context, memberUUID, institutionUUID, personnelUUID, benefitCode string) (*claimContext, error) {
	// 1. Member exists
	member, err := f.memberRepo.ByUUID(ctx, memberUUID)
	if err != nil {
		return nil, NewBusinessError("MEMBER_LOOKUP_FAILED", "Failed to look up member", err)
	}
	if member == nil {
		return nil, NewBusinessError("MEMBER_NOT_FOUND", "Member not found", ErrMemberNotFound)
	}

	// 2. Institution exists and is admitted to the network
	institution, err := f.institutionRepo.ByUUID(ctx, institutionUUID)
	if err != nil {
		return nil, NewBusinessError("INSTITUTION_LOOKUP_FAILED", "Failed to look up institution", err)
	}
	if institution == nil {
		return nil, NewBusinessError("INSTITUTION_NOT_FOUND", "Institution not found", ErrInstitutionNotFound)
	}
	if !institution.IsApproved() {
		return nil, NewBusinessError("INSTITUTION_NOT_APPROVED", "Institution is not approved", ErrInstitutionNotApproved)
	}

	// 3. Personnel exists, belongs to the institution, and is admitted
	personnel, err := f.personnelRepo.ByUUID(ctx, personnelUUID)
	if err != nil {
		return nil, NewBusinessError("PERSONNEL_LOOKUP_FAILED", "Failed to look up personnel", err)
	}
	if personnel == nil {
		return nil, NewBusinessError("PERSONNEL_NOT_FOUND", "Personnel not found", ErrPersonnelNotFound)
	}
	if personnel.InstitutionID != institution.ID {
		return nil, NewBusinessError("PERSONNEL_MISMATCH", "Personnel does not belong to the institution", ErrPersonnelMismatch)
	}
	if !personnel.IsApproved() {
		return nil, NewBusinessError("PERSONNEL_NOT_APPROVED", "Personnel is not approved", ErrPersonnelNotApproved)
	}

	// 4. Benefit exists
	benefit, err := f.benefitRepo.ByCode(ctx, benefitCode)
	if err != nil {
		return nil, NewBusinessError("BENEFIT_LOOKUP_FAILED", "Failed to look up benefit", err)
	}
	if benefit == nil {
		return nil, NewBusinessError("BENEFIT_NOT_FOUND", "Benefit not found", ErrBenefitNotFound)
	}

	// 5. An active period exists
	period, err := f.periodFlow.ResolvePeriod(ctx, nil)
	if err != nil {
		return nil, err
	}

	// 6. The member's company is covered for the period
	premium, err := f.premiumRepo.LatestForCompanyPeriod(ctx, member.CompanyID, period.ID)
	if err != nil {
		return nil, NewBusinessError("PREMIUM_LOOKUP_FAILED", "Failed to look up premium", err)
	}
	if premium == nil {
		return nil, NewBusinessError("NO_PREMIUM_FOR_PERIOD", "Company has no premium for the period", ErrNoPremiumForPeriod)
	}

	// 7. The benefit is part of the package attached to that premium
	anchor, err := packageAnchor(ctx, f.premiumRepo, premium)
	if err != nil {
		return nil, err
	}
	packagePremiumID := anchor.ID
	covered, err := f.companyBenefitRepo.ExistsForPremium(ctx, packagePremiumID, benefit.ID)
	if err != nil {
		return nil, NewBusinessError("BENEFIT_LOOKUP_FAILED", "Failed to look up benefit package", err)
	}
	if !covered {
		return nil, NewBusinessError("BENEFIT_NOT_COVERED", BenefitNotCoveredMessage, ErrBenefitNotCovered)
	}

	return &claimContext{
		member:                 member,
		institution:            institution,
		personnel:              personnel,
		benefit:                benefit,
		premium:                premium,
		requiresHigherApproval: !institution.IsVerified() || !personnel.IsVerified(),
	}, nil
}

func (f *ClaimFlowImpl) SubmitClaim(ctx context.Context, req *dto.SubmitClaimRequest, metadata *ClientMetadata) (*dto.ClaimDTO, error) {
	serviceDate, err := time.Parse(dateLayout, req.ServiceDate)
	if err != nil {
		return nil, NewBusinessError("CLAIM_VALIDATION_FAILED", "Invalid service date", err)
	}
	if req.Amount <= 0 {
		return nil, NewBusinessError("CLAIM_VALIDATION_FAILED", "Claim amount must be positive", ErrInvalidClaimAmount)
	}

	cc, err := f.validate(ctx, req.MemberUUID, req.InstitutionUUID, req.PersonnelUUID, req.BenefitCode)
	if err != nil {
		return nil, err
	}

	claim := &models.Claim{
		MemberID:               cc.member.ID,
		BenefitID:              cc.benefit.ID,
		InstitutionID:          cc.institution.ID,
		PersonnelID:            cc.personnel.ID,
		Amount:                 req.Amount,
		ServiceDate:            serviceDate,
		Notes:                  req.Notes,
		Status:                 models.ClaimStatusSubmitted,
		RequiresHigherApproval: cc.requiresHigherApproval,
		CreatedAt:              utils.UTCNow(),
		UpdatedAt:              utils.UTCNow(),
	}
	if err := f.claimRepo.Save(ctx, claim); err != nil {
		return nil, NewBusinessError("CLAIM_CREATION_FAILED", "Failed to create claim", err)
	}

	msg := fmt.Sprintf("Claim %s submitted for %.2f", claim.UUID, claim.Amount)
	_ = createAuditLog(ctx, f.auditRepo, &cc.member.CompanyID, models.AuditActionClaimSubmitted, msg, true, nil, metadata)

	result := ToClaimDTO(*claim)
	return &result, nil
}

// SubmitClaimWithProcedures prices each line at the provider-specific
// rate when one is in force at the service date, else the standard rate.
func (f *ClaimFlowImpl) SubmitClaimWithProcedures(ctx context.Context, req *dto.SubmitClaimWithProceduresRequest, metadata *ClientMetadata) (*dto.ClaimDTO, error) {
	serviceDate, err := time.Parse(dateLayout, req.ServiceDate)
	if err != nil {
		return nil, NewBusinessError("CLAIM_VALIDATION_FAILED", "Invalid service date", err)
	}

	cc, err := f.validate(ctx, req.MemberUUID, req.InstitutionUUID, req.PersonnelUUID, req.BenefitCode)
	if err != nil {
		return nil, err
	}

	var amount float64
	procedures := make([]*models.ClaimProcedure, 0, len(req.Procedures))
	for _, item := range req.Procedures {
		if item.Quantity <= 0 {
			return nil, NewBusinessError("CLAIM_VALIDATION_FAILED", "Procedure quantity must be positive", ErrInvalidQuantity)
		}
		procedure, err := f.procedureRepo.ByCode(ctx, item.ProcedureCode)
		if err != nil {
			return nil, NewBusinessError("PROCEDURE_LOOKUP_FAILED", "Failed to look up procedure", err)
		}
		if procedure == nil {
			return nil, NewBusinessErrorf("PROCEDURE_NOT_FOUND", "Procedure %s not found", ErrProcedureNotFound, item.ProcedureCode)
		}

		unitRate := procedure.StandardRate
		providerRate, err := f.procedureRepo.ProviderRate(ctx, cc.institution.ID, procedure.ID, serviceDate)
		if err != nil {
			return nil, NewBusinessError("PROCEDURE_LOOKUP_FAILED", "Failed to look up provider rate", err)
		}
		if providerRate != nil {
			unitRate = providerRate.Rate
		}

		lineTotal := float64(item.Quantity) * unitRate
		amount += lineTotal
		procedures = append(procedures, &models.ClaimProcedure{
			ProcedureID: procedure.ID,
			Quantity:    item.Quantity,
			UnitRate:    unitRate,
			LineTotal:   lineTotal,
			CreatedAt:   utils.UTCNow(),
		})
	}

	claim := &models.Claim{
		MemberID:               cc.member.ID,
		BenefitID:              cc.benefit.ID,
		InstitutionID:          cc.institution.ID,
		PersonnelID:            cc.personnel.ID,
		Amount:                 amount,
		ServiceDate:            serviceDate,
		Notes:                  req.Notes,
		Status:                 models.ClaimStatusSubmitted,
		RequiresHigherApproval: cc.requiresHigherApproval,
		CreatedAt:              utils.UTCNow(),
		UpdatedAt:              utils.UTCNow(),
	}
	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		return f.claimRepo.SaveWithProcedures(txCtx, claim, procedures)
	})
	if err != nil {
		return nil, NewBusinessError("CLAIM_CREATION_FAILED", "Failed to create claim", err)
	}
	claim.Procedures = make([]models.ClaimProcedure, 0, len(procedures))
	for _, proc := range procedures {
		claim.Procedures = append(claim.Procedures, *proc)
	}

	msg := fmt.Sprintf("Claim %s submitted with %d procedures for %.2f", claim.UUID, len(procedures), amount)
	_ = createAuditLog(ctx, f.auditRepo, &cc.member.CompanyID, models.AuditActionClaimSubmitted, msg, true, nil, metadata)

	result := ToClaimDTO(*claim)
	return &result, nil
}

func (f *ClaimFlowImpl) ApproveClaim(ctx context.Context, claimUUID string, req *dto.ClaimDecisionRequest, adminID uint, metadata *ClientMetadata) (*dto.ClaimDTO, error) {
	return f.decide(ctx, claimUUID, models.ClaimStatusApproved, models.AuditActionClaimApproved, req, adminID, metadata)
}

func (f *ClaimFlowImpl) RejectClaim(ctx context.Context, claimUUID string, req *dto.ClaimDecisionRequest, adminID uint, metadata *ClientMetadata) (*dto.ClaimDTO, error) {
	return f.decide(ctx, claimUUID, models.ClaimStatusRejected, models.AuditActionClaimRejected, req, adminID, metadata)
}

func (f *ClaimFlowImpl) decide(ctx context.Context, claimUUID, status, auditAction string, req *dto.ClaimDecisionRequest, adminID uint, metadata *ClientMetadata) (*dto.ClaimDTO, error) {
	claim, err := f.claimRepo.ByUUID(ctx, claimUUID)
	if err != nil {
		return nil, NewBusinessError("CLAIM_LOOKUP_FAILED", "Failed to look up claim", err)
	}
	if claim == nil {
		return nil, NewBusinessError("CLAIM_NOT_FOUND", "Claim not found", ErrClaimNotFound)
	}
	if claim.IsDecided() {
		return nil, NewBusinessError("CLAIM_ALREADY_DECIDED", "Claim has already been decided", ErrClaimAlreadyDecided)
	}

	var reason *string
	if req != nil {
		reason = req.Reason
	}
	now := utils.UTCNow()
	if err := f.claimRepo.UpdateStatus(ctx, claim.ID, status, adminID, reason, now); err != nil {
		return nil, NewBusinessError("CLAIM_DECISION_FAILED", "Failed to record claim decision", err)
	}

	claim.Status = status
	claim.DecidedAt = &now
	claim.DecidedBy = &adminID
	claim.DecisionReason = reason

	member, err := f.memberRepo.ByID(ctx, claim.MemberID)
	if err == nil && member != nil {
		msg := fmt.Sprintf("Claim %s %s", claim.UUID, status)
		_ = createAuditLog(ctx, f.auditRepo, &member.CompanyID, auditAction, msg, true, nil, metadata)

		if f.notifier != nil {
			if company, err := f.companyRepo.ByID(ctx, member.CompanyID); err == nil && company != nil {
				mobile := ""
				if company.ContactMobile != nil {
					mobile = *company.ContactMobile
				}
				_ = f.notifier.NotifyClaimDecision(company.ContactEmail, mobile, claim.UUID.String(), status)
			}
		}
	}

	result := ToClaimDTO(*claim)
	return &result, nil
}
