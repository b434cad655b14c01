// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/coverbase/coverbase/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// PeriodRepository defines operations for billing periods
type PeriodRepository interface {
	Repository[models.Period, models.PeriodFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Period, error)
	ActivePeriod(ctx context.Context) (*models.Period, error)
	ClosePeriod(ctx context.Context, periodID uint) error
}

// PremiumRateRepository defines operations for per-period rate cards
type PremiumRateRepository interface {
	Repository[models.PremiumRate, models.PremiumRateFilter]
	ByPeriodID(ctx context.Context, periodID uint) (*models.PremiumRate, error)
}

// CompanyRepository defines operations for companies
type CompanyRepository interface {
	Repository[models.Company, models.CompanyFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Company, error)
	ByName(ctx context.Context, name string) (*models.Company, error)
}

// MemberRepository defines operations for covered members
type MemberRepository interface {
	Repository[models.Member, models.MemberFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Member, error)
	ListActiveByCompany(ctx context.Context, companyID uint) ([]*models.Member, error)
	ListDependentsOf(ctx context.Context, principalID uint) ([]*models.Member, error)
	HasDependents(ctx context.Context, principalID uint) (bool, error)
	SoftDelete(ctx context.Context, memberID uint) error
}

// PremiumRepository defines operations for the append-only premium ledger
type PremiumRepository interface {
	Repository[models.Premium, models.PremiumFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Premium, error)
	LatestForCompanyPeriod(ctx context.Context, companyID, periodID uint) (*models.Premium, error)
	HistoryForCompanyPeriod(ctx context.Context, companyID, periodID uint) ([]*models.Premium, error)
	Supersede(ctx context.Context, premiumID uint) error
}

// BenefitRepository defines operations for the benefit catalog
type BenefitRepository interface {
	Repository[models.Benefit, models.BenefitFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Benefit, error)
	ByCode(ctx context.Context, code string) (*models.Benefit, error)
}

// CompanyBenefitRepository defines operations for company benefit packages
type CompanyBenefitRepository interface {
	Repository[models.CompanyBenefit, models.CompanyBenefitFilter]
	ListByPremium(ctx context.Context, premiumID uint) ([]*models.CompanyBenefit, error)
	ExistsForPremium(ctx context.Context, premiumID, benefitID uint) (bool, error)
}

// ClaimRepository defines operations for claims
type ClaimRepository interface {
	Repository[models.Claim, models.ClaimFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Claim, error)
	CountByMember(ctx context.Context, memberID uint) (int64, error)
	SaveWithProcedures(ctx context.Context, claim *models.Claim, procedures []*models.ClaimProcedure) error
	ListByMember(ctx context.Context, memberID uint, limit, offset int) ([]*models.Claim, error)
	UpdateStatus(ctx context.Context, claimID uint, status string, decidedBy uint, reason *string, at time.Time) error
	ListProcedures(ctx context.Context, claimID uint) ([]*models.ClaimProcedure, error)
}

// InstitutionRepository defines operations for healthcare institutions
type InstitutionRepository interface {
	Repository[models.Institution, models.InstitutionFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Institution, error)
}

// PersonnelRepository defines operations for medical personnel
type PersonnelRepository interface {
	Repository[models.Personnel, models.PersonnelFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Personnel, error)
}

// ProcedureRepository defines operations for procedures and provider rates
type ProcedureRepository interface {
	Repository[models.Procedure, models.ProcedureFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Procedure, error)
	ByCode(ctx context.Context, code string) (*models.Procedure, error)
	ProviderRate(ctx context.Context, institutionID, procedureID uint, at time.Time) (*models.ProviderProcedureRate, error)
	SaveProviderRate(ctx context.Context, rate *models.ProviderProcedureRate) error
}

// AdminRepository defines operations for admin accounts
type AdminRepository interface {
	Repository[models.Admin, models.AdminFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Admin, error)
	ByUsername(ctx context.Context, username string) (*models.Admin, error)
	UpdateLastLogin(ctx context.Context, adminID uint, at time.Time) error
}

// AuditLogRepository defines operations for audit logs
type AuditLogRepository interface {
	Repository[models.AuditLog, models.AuditLogFilter]
	ListByCompany(ctx context.Context, companyID uint, limit, offset int) ([]*models.AuditLog, error)
	ListByAction(ctx context.Context, action string, limit, offset int) ([]*models.AuditLog, error)
	ListFailedActions(ctx context.Context, limit, offset int) ([]*models.AuditLog, error)
}
