// Package testing provides test utilities and database setup for testing the administration platform
package testing

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/coverbase/coverbase/models"
	"github.com/coverbase/coverbase/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreatePeriod creates a billing period covering the given date range
func (tf *TestFixtures) CreatePeriod(name string, start, end time.Time, status string) (*models.Period, error) {
	period := &models.Period{
		UUID:      uuid.New(),
		Name:      name,
		StartDate: start,
		EndDate:   end,
		Status:    status,
	}

	if err := tf.DB.DB.Create(period).Error; err != nil {
		return nil, fmt.Errorf("failed to create test period: %w", err)
	}

	return period, nil
}

// CreateActivePeriod creates an active period spanning the current year
func (tf *TestFixtures) CreateActivePeriod() (*models.Period, error) {
	now := utils.UTCNow()
	start := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(now.Year(), 12, 31, 0, 0, 0, 0, time.UTC)
	return tf.CreatePeriod(fmt.Sprintf("FY%d", now.Year()), start, end, models.PeriodStatusActive)
}

// CreateRateCard attaches a rate card to a period
func (tf *TestFixtures) CreateRateCard(periodID uint, principal, spouse, child, specialNeeds, tax float64) (*models.PremiumRate, error) {
	rate := &models.PremiumRate{
		PeriodID:         periodID,
		PrincipalRate:    principal,
		SpouseRate:       spouse,
		ChildRate:        child,
		SpecialNeedsRate: specialNeeds,
		TaxRate:          tax,
	}

	if err := tf.DB.DB.Create(rate).Error; err != nil {
		return nil, fmt.Errorf("failed to create test rate card: %w", err)
	}

	return rate, nil
}

// CreateCompany creates an active test company with a unique registration number
func (tf *TestFixtures) CreateCompany(name string) (*models.Company, error) {
	regNumber := fmt.Sprintf("REG-%09d", rand.Intn(900000000)+100000000)
	mobile := fmt.Sprintf("+1555%07d", rand.Intn(9000000)+1000000)

	company := &models.Company{
		UUID:               uuid.New(),
		Name:               name,
		RegistrationNumber: &regNumber,
		ContactEmail:       fmt.Sprintf("billing.%09d@example.com", rand.Intn(900000000)+100000000),
		ContactMobile:      &mobile,
		IsActive:           utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(company).Error; err != nil {
		return nil, fmt.Errorf("failed to create test company: %w", err)
	}

	return company, nil
}

// CreatePrincipal creates a principal member on the company roster
func (tf *TestFixtures) CreatePrincipal(companyID uint, dateOfBirth time.Time) (*models.Member, error) {
	member := &models.Member{
		UUID:        uuid.New(),
		CompanyID:   companyID,
		FirstName:   "Jane",
		LastName:    fmt.Sprintf("Principal%04d", rand.Intn(10000)),
		MemberType:  models.MemberTypePrincipal,
		DateOfBirth: dateOfBirth,
	}

	if err := tf.DB.DB.Create(member).Error; err != nil {
		return nil, fmt.Errorf("failed to create test principal: %w", err)
	}

	return member, nil
}

// CreateDependent creates a dependent attached to a principal
func (tf *TestFixtures) CreateDependent(principal *models.Member, dependentType string, dateOfBirth time.Time, hasDisability bool) (*models.Member, error) {
	member := &models.Member{
		UUID:          uuid.New(),
		CompanyID:     principal.CompanyID,
		FirstName:     "Sam",
		LastName:      fmt.Sprintf("Dependent%04d", rand.Intn(10000)),
		MemberType:    models.MemberTypeDependent,
		DependentType: &dependentType,
		DateOfBirth:   dateOfBirth,
		HasDisability: hasDisability,
		PrincipalID:   &principal.ID,
	}

	if err := tf.DB.DB.Create(member).Error; err != nil {
		return nil, fmt.Errorf("failed to create test dependent: %w", err)
	}

	return member, nil
}

// CreateBenefit creates a benefit catalog entry with a unique code
func (tf *TestFixtures) CreateBenefit(name string) (*models.Benefit, error) {
	benefit := &models.Benefit{
		UUID:     uuid.New(),
		Code:     fmt.Sprintf("BEN-%06d", rand.Intn(900000)+100000),
		Name:     name,
		IsActive: utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(benefit).Error; err != nil {
		return nil, fmt.Errorf("failed to create test benefit: %w", err)
	}

	return benefit, nil
}

// AttachBenefits links benefits to a company's package under the given premium
func (tf *TestFixtures) AttachBenefits(companyID, premiumID uint, benefitIDs ...uint) error {
	for _, benefitID := range benefitIDs {
		link := &models.CompanyBenefit{
			CompanyID: companyID,
			PremiumID: premiumID,
			BenefitID: benefitID,
		}
		if err := tf.DB.DB.Create(link).Error; err != nil {
			return fmt.Errorf("failed to attach benefit %d: %w", benefitID, err)
		}
	}
	return nil
}

// CreateInstitution creates a network institution with the given statuses
func (tf *TestFixtures) CreateInstitution(approvalStatus, verificationStatus string) (*models.Institution, error) {
	institution := &models.Institution{
		UUID:               uuid.New(),
		Name:               fmt.Sprintf("General Hospital %04d", rand.Intn(10000)),
		Type:               "hospital",
		ApprovalStatus:     approvalStatus,
		VerificationStatus: verificationStatus,
	}

	if err := tf.DB.DB.Create(institution).Error; err != nil {
		return nil, fmt.Errorf("failed to create test institution: %w", err)
	}

	return institution, nil
}

// CreatePersonnel creates a practitioner attached to an institution
func (tf *TestFixtures) CreatePersonnel(institutionID uint, approvalStatus, verificationStatus string) (*models.Personnel, error) {
	personnel := &models.Personnel{
		UUID:               uuid.New(),
		InstitutionID:      institutionID,
		FirstName:          "Gregory",
		LastName:           fmt.Sprintf("House%04d", rand.Intn(10000)),
		LicenseNumber:      fmt.Sprintf("LIC-%09d", rand.Intn(900000000)+100000000),
		ApprovalStatus:     approvalStatus,
		VerificationStatus: verificationStatus,
	}

	if err := tf.DB.DB.Create(personnel).Error; err != nil {
		return nil, fmt.Errorf("failed to create test personnel: %w", err)
	}

	return personnel, nil
}

// CreateProcedure creates a billable procedure with the given standard rate
func (tf *TestFixtures) CreateProcedure(name string, standardRate float64) (*models.Procedure, error) {
	procedure := &models.Procedure{
		UUID:         uuid.New(),
		Code:         fmt.Sprintf("PRC-%06d", rand.Intn(900000)+100000),
		Name:         name,
		StandardRate: standardRate,
		IsActive:     utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(procedure).Error; err != nil {
		return nil, fmt.Errorf("failed to create test procedure: %w", err)
	}

	return procedure, nil
}

// CreateProviderRate creates a negotiated provider rate effective from the given time
func (tf *TestFixtures) CreateProviderRate(institutionID, procedureID uint, rate float64, effectiveFrom time.Time, expiresAt *time.Time) (*models.ProviderProcedureRate, error) {
	providerRate := &models.ProviderProcedureRate{
		InstitutionID: institutionID,
		ProcedureID:   procedureID,
		Rate:          rate,
		EffectiveFrom: effectiveFrom,
		ExpiresAt:     expiresAt,
		IsActive:      utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(providerRate).Error; err != nil {
		return nil, fmt.Errorf("failed to create test provider rate: %w", err)
	}

	return providerRate, nil
}

// CreateAdmin creates an active admin account with the given credentials
func (tf *TestFixtures) CreateAdmin(username, password string) (*models.Admin, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &models.Admin{
		UUID:         uuid.New(),
		Username:     username,
		PasswordHash: string(hashedPassword),
		IsActive:     utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(admin).Error; err != nil {
		return nil, fmt.Errorf("failed to create test admin: %w", err)
	}

	return admin, nil
}
