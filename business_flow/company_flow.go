package businessflow

import (
	"context"

	"github.com/coverbase/coverbase/app/dto"
	"github.com/coverbase/coverbase/models"
	"github.com/coverbase/coverbase/repository"
	"github.com/coverbase/coverbase/utils"
	"gorm.io/gorm"
)

// CompanyFlow represents company onboarding and benefit package management
type CompanyFlow interface {
	CreateCompany(ctx context.Context, req *dto.CreateCompanyRequest, metadata *ClientMetadata) (*dto.CompanyDTO, error)
	GetCompany(ctx context.Context, companyUUID string) (*dto.CompanyDTO, error)
	AssignBenefitPackage(ctx context.Context, companyUUID string, req *dto.AssignBenefitsRequest, metadata *ClientMetadata) (*dto.BenefitPackageResponse, error)
}

// CompanyFlowImpl implements CompanyFlow
type CompanyFlowImpl struct {
	companyRepo        repository.CompanyRepository
	benefitRepo        repository.BenefitRepository
	companyBenefitRepo repository.CompanyBenefitRepository
	premiumRepo        repository.PremiumRepository
	auditRepo          repository.AuditLogRepository
	periodFlow         PeriodFlow
	db                 *gorm.DB
}

func NewCompanyFlow(
	companyRepo repository.CompanyRepository,
	benefitRepo repository.BenefitRepository,
	companyBenefitRepo repository.CompanyBenefitRepository,
	premiumRepo repository.PremiumRepository,
	auditRepo repository.AuditLogRepository,
	periodFlow PeriodFlow,
	db *gorm.DB,
) CompanyFlow {
	return &CompanyFlowImpl{
		companyRepo:        companyRepo,
		benefitRepo:        benefitRepo,
		companyBenefitRepo: companyBenefitRepo,
		premiumRepo:        premiumRepo,
		auditRepo:          auditRepo,
		periodFlow:         periodFlow,
		db:                 db,
	}
}

func (f *CompanyFlowImpl) CreateCompany(ctx context.Context, req *dto.CreateCompanyRequest, metadata *ClientMetadata) (*dto.CompanyDTO, error) {
	existing, err := f.companyRepo.ByName(ctx, req.Name)
	if err != nil {
		return nil, NewBusinessError("COMPANY_LOOKUP_FAILED", "Failed to look up company", err)
	}
	if existing != nil {
		return nil, NewBusinessError("COMPANY_EXISTS", "Company already exists", ErrCompanyAlreadyExists)
	}

	company := &models.Company{
		Name:               req.Name,
		RegistrationNumber: req.RegistrationNumber,
		ContactEmail:       req.ContactEmail,
		ContactMobile:      req.ContactMobile,
		IsActive:           utils.ToPtr(true),
		CreatedAt:          utils.UTCNow(),
		UpdatedAt:          utils.UTCNow(),
	}
	if err := f.companyRepo.Save(ctx, company); err != nil {
		return nil, NewBusinessError("COMPANY_CREATION_FAILED", "Failed to create company", err)
	}

	_ = createAuditLog(ctx, f.auditRepo, &company.ID, models.AuditActionCompanyCreated, "Company "+company.Name+" created", true, nil, metadata)

	result := ToCompanyDTO(*company)
	return &result, nil
}

func (f *CompanyFlowImpl) GetCompany(ctx context.Context, companyUUID string) (*dto.CompanyDTO, error) {
	company, err := f.companyRepo.ByUUID(ctx, companyUUID)
	if err != nil {
		return nil, NewBusinessError("COMPANY_LOOKUP_FAILED", "Failed to look up company", err)
	}
	if company == nil {
		return nil, NewBusinessError("COMPANY_NOT_FOUND", "Company not found", ErrCompanyNotFound)
	}

	result := ToCompanyDTO(*company)
	return &result, nil
}

// AssignBenefitPackage attaches a set of catalog benefits to the company's
// latest premium for the active period. The premium must exist first:
// coverage is always anchored to a concrete premium row.
func (f *CompanyFlowImpl) AssignBenefitPackage(ctx context.Context, companyUUID string, req *dto.AssignBenefitsRequest, metadata *ClientMetadata) (*dto.BenefitPackageResponse, error) {
	company, err := f.companyRepo.ByUUID(ctx, companyUUID)
	if err != nil {
		return nil, NewBusinessError("COMPANY_LOOKUP_FAILED", "Failed to look up company", err)
	}
	if company == nil {
		return nil, NewBusinessError("COMPANY_NOT_FOUND", "Company not found", ErrCompanyNotFound)
	}

	period, err := f.periodFlow.ResolvePeriod(ctx, nil)
	if err != nil {
		return nil, err
	}

	premium, err := f.premiumRepo.LatestForCompanyPeriod(ctx, company.ID, period.ID)
	if err != nil {
		return nil, NewBusinessError("PREMIUM_LOOKUP_FAILED", "Failed to look up premium", err)
	}
	if premium == nil {
		return nil, NewBusinessError("NO_PREMIUM_FOR_PERIOD", "Company has no premium for the active period", ErrNoPremiumForPeriod)
	}
	premium, err = packageAnchor(ctx, f.premiumRepo, premium)
	if err != nil {
		return nil, err
	}

	benefits := make([]*models.Benefit, 0, len(req.BenefitCodes))
	for _, code := range req.BenefitCodes {
		benefit, err := f.benefitRepo.ByCode(ctx, code)
		if err != nil {
			return nil, NewBusinessError("BENEFIT_LOOKUP_FAILED", "Failed to look up benefit", err)
		}
		if benefit == nil {
			return nil, NewBusinessErrorf("BENEFIT_NOT_FOUND", "Benefit %s not found", ErrBenefitNotFound, code)
		}
		benefits = append(benefits, benefit)
	}

	rows := make([]*models.CompanyBenefit, 0, len(benefits))
	for _, benefit := range benefits {
		included, err := f.companyBenefitRepo.ExistsForPremium(ctx, premium.ID, benefit.ID)
		if err != nil {
			return nil, NewBusinessError("BENEFIT_LOOKUP_FAILED", "Failed to look up benefit package", err)
		}
		if included {
			continue
		}
		rows = append(rows, &models.CompanyBenefit{
			CompanyID: company.ID,
			PremiumID: premium.ID,
			BenefitID: benefit.ID,
			CreatedAt: utils.UTCNow(),
			UpdatedAt: utils.UTCNow(),
		})
	}
	if err := f.companyBenefitRepo.SaveBatch(ctx, rows); err != nil {
		return nil, NewBusinessError("BENEFIT_ASSIGNMENT_FAILED", "Failed to assign benefit package", err)
	}

	_ = createAuditLog(ctx, f.auditRepo, &company.ID, models.AuditActionBenefitPackageAssigned, "Benefit package assigned", true, nil, metadata)

	resp := &dto.BenefitPackageResponse{
		Company: ToCompanyDTO(*company),
		Premium: utils.ToPtr(ToPremiumDTO(*premium)),
	}
	for _, benefit := range benefits {
		resp.Benefits = append(resp.Benefits, dto.BenefitDTO{
			ID:          benefit.ID,
			UUID:        benefit.UUID.String(),
			Code:        benefit.Code,
			Name:        benefit.Name,
			Description: benefit.Description,
		})
	}
	return resp, nil
}
