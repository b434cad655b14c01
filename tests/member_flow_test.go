package tests

import (
	"context"
	"testing"
	"time"

	"github.com/coverbase/coverbase/app/dto"
	businessflow "github.com/coverbase/coverbase/business_flow"
	"github.com/coverbase/coverbase/models"
	testingutil "github.com/coverbase/coverbase/testing"
	"github.com/coverbase/coverbase/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrollPrincipal(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flows := newTestFlows(testDB)
		ctx := context.Background()

		period, err := fixtures.CreateActivePeriod()
		require.NoError(t, err)
		_, err = fixtures.CreateRateCard(period.ID, 1000, 500, 300, 600, 0.16)
		require.NoError(t, err)

		company, err := fixtures.CreateCompany("Enrollment Co")
		require.NoError(t, err)

		t.Run("SuccessfulEnrollment", func(t *testing.T) {
			req := &dto.EnrollPrincipalRequest{
				CompanyUUID: company.UUID.String(),
				FirstName:   "Alice",
				LastName:    "Nguyen",
				DateOfBirth: "1988-11-02",
			}
			result, err := flows.memberFlow.EnrollPrincipal(ctx, req, testMetadata())
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, models.MemberTypePrincipal, result.MemberType)
			assert.Nil(t, result.DependentType)
			assert.Nil(t, result.PrincipalID)
			assert.Equal(t, "1988-11-02", result.DateOfBirth)

			stored, err := flows.memberRepo.ByUUID(ctx, result.UUID)
			require.NoError(t, err)
			require.NotNil(t, stored)
			assert.Equal(t, company.ID, stored.CompanyID)
		})

		t.Run("CompanyNotFound", func(t *testing.T) {
			req := &dto.EnrollPrincipalRequest{
				CompanyUUID: uuid.NewString(),
				FirstName:   "Ghost",
				LastName:    "Employee",
				DateOfBirth: "1990-01-01",
			}
			_, err := flows.memberFlow.EnrollPrincipal(ctx, req, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsCompanyNotFound(err))
		})

		t.Run("InactiveCompany", func(t *testing.T) {
			dormant, err := fixtures.CreateCompany("Dormant Co")
			require.NoError(t, err)
			err = testDB.DB.Model(&models.Company{}).
				Where("id = ?", dormant.ID).
				Update("is_active", false).Error
			require.NoError(t, err)

			req := &dto.EnrollPrincipalRequest{
				CompanyUUID: dormant.UUID.String(),
				FirstName:   "Late",
				LastName:    "Joiner",
				DateOfBirth: "1990-01-01",
			}
			_, err = flows.memberFlow.EnrollPrincipal(ctx, req, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsCompanyInactive(err))
		})

		t.Run("FutureBirthDate", func(t *testing.T) {
			future := utils.UTCToday().AddDate(1, 0, 0).Format("2006-01-02")
			req := &dto.EnrollPrincipalRequest{
				CompanyUUID: company.UUID.String(),
				FirstName:   "Not",
				LastName:    "Born",
				DateOfBirth: future,
			}
			_, err := flows.memberFlow.EnrollPrincipal(ctx, req, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsEligibilityViolation(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestEnrollDependent(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flows := newTestFlows(testDB)
		ctx := context.Background()

		period, err := fixtures.CreateActivePeriod()
		require.NoError(t, err)
		_, err = fixtures.CreateRateCard(period.ID, 1000, 500, 300, 600, 0.16)
		require.NoError(t, err)

		company, err := fixtures.CreateCompany("Families Inc")
		require.NoError(t, err)
		principal, err := fixtures.CreatePrincipal(company.ID, time.Date(1984, 3, 15, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)

		today := utils.UTCToday()
		adultDOB := today.AddDate(-30, 0, 0).Format("2006-01-02")
		teenDOB := today.AddDate(-17, 0, 0).Format("2006-01-02")
		youngAdultDOB := today.AddDate(-19, 0, 0).Format("2006-01-02")
		childDOB := today.AddDate(-8, 0, 0).Format("2006-01-02")

		t.Run("SpouseEnrollment", func(t *testing.T) {
			req := &dto.EnrollDependentRequest{
				PrincipalUUID: principal.UUID.String(),
				DependentType: models.DependentTypeSpouse,
				FirstName:     "Maya",
				LastName:      "Nguyen",
				DateOfBirth:   adultDOB,
			}
			result, err := flows.memberFlow.EnrollDependent(ctx, req, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, models.MemberTypeDependent, result.MemberType)
			require.NotNil(t, result.DependentType)
			assert.Equal(t, models.DependentTypeSpouse, *result.DependentType)
			require.NotNil(t, result.PrincipalID)
			assert.Equal(t, principal.ID, *result.PrincipalID)
			assert.Equal(t, principal.CompanyID, result.CompanyID)
		})

		t.Run("UnderageSpouseRejected", func(t *testing.T) {
			req := &dto.EnrollDependentRequest{
				PrincipalUUID: principal.UUID.String(),
				DependentType: models.DependentTypeSpouse,
				FirstName:     "Too",
				LastName:      "Young",
				DateOfBirth:   teenDOB,
			}
			_, err := flows.memberFlow.EnrollDependent(ctx, req, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsEligibilityViolation(err))
		})

		t.Run("ChildEnrollment", func(t *testing.T) {
			req := &dto.EnrollDependentRequest{
				PrincipalUUID: principal.UUID.String(),
				DependentType: models.DependentTypeChild,
				FirstName:     "Kim",
				LastName:      "Nguyen",
				DateOfBirth:   childDOB,
			}
			result, err := flows.memberFlow.EnrollDependent(ctx, req, testMetadata())
			require.NoError(t, err)

			stored, err := flows.memberRepo.ByUUID(ctx, result.UUID)
			require.NoError(t, err)
			require.NotNil(t, stored)
			assert.Equal(t, models.CategoryChild, stored.BillingCategory())
		})

		t.Run("AdultChildRejected", func(t *testing.T) {
			req := &dto.EnrollDependentRequest{
				PrincipalUUID: principal.UUID.String(),
				DependentType: models.DependentTypeChild,
				FirstName:     "Grown",
				LastName:      "Up",
				DateOfBirth:   youngAdultDOB,
			}
			_, err := flows.memberFlow.EnrollDependent(ctx, req, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsEligibilityViolation(err))
		})

		t.Run("AdultDisabledChildAccepted", func(t *testing.T) {
			req := &dto.EnrollDependentRequest{
				PrincipalUUID: principal.UUID.String(),
				DependentType: models.DependentTypeChild,
				FirstName:     "Cared",
				LastName:      "For",
				DateOfBirth:   youngAdultDOB,
				HasDisability: true,
			}
			result, err := flows.memberFlow.EnrollDependent(ctx, req, testMetadata())
			require.NoError(t, err)

			stored, err := flows.memberRepo.ByUUID(ctx, result.UUID)
			require.NoError(t, err)
			require.NotNil(t, stored)
			assert.Equal(t, models.CategorySpecialNeeds, stored.BillingCategory())
		})

		t.Run("ParentIsUnbilled", func(t *testing.T) {
			elderDOB := today.AddDate(-60, 0, 0).Format("2006-01-02")
			req := &dto.EnrollDependentRequest{
				PrincipalUUID: principal.UUID.String(),
				DependentType: models.DependentTypeParent,
				FirstName:     "Elder",
				LastName:      "Nguyen",
				DateOfBirth:   elderDOB,
			}
			result, err := flows.memberFlow.EnrollDependent(ctx, req, testMetadata())
			require.NoError(t, err)

			stored, err := flows.memberRepo.ByUUID(ctx, result.UUID)
			require.NoError(t, err)
			require.NotNil(t, stored)
			assert.Equal(t, "", stored.BillingCategory())

			roster, err := flows.memberFlow.ListByCompany(ctx, company.UUID.String())
			require.NoError(t, err)
			total := roster.Counts.Principal + roster.Counts.Spouse + roster.Counts.Child + roster.Counts.SpecialNeeds
			assert.Less(t, total, len(roster.Members))
		})

		t.Run("PrincipalNotFound", func(t *testing.T) {
			req := &dto.EnrollDependentRequest{
				PrincipalUUID: uuid.NewString(),
				DependentType: models.DependentTypeSpouse,
				FirstName:     "No",
				LastName:      "Anchor",
				DateOfBirth:   adultDOB,
			}
			_, err := flows.memberFlow.EnrollDependent(ctx, req, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsPrincipalNotFound(err))
		})

		t.Run("DependentCannotAnchorDependent", func(t *testing.T) {
			roster, err := flows.memberFlow.ListByCompany(ctx, company.UUID.String())
			require.NoError(t, err)

			var spouse *dto.MemberDTO
			for i := range roster.Members {
				if roster.Members[i].MemberType == models.MemberTypeDependent {
					spouse = &roster.Members[i]
					break
				}
			}
			require.NotNil(t, spouse)

			req := &dto.EnrollDependentRequest{
				PrincipalUUID: spouse.UUID,
				DependentType: models.DependentTypeChild,
				FirstName:     "Nested",
				LastName:      "Dependent",
				DateOfBirth:   childDOB,
			}
			_, err = flows.memberFlow.EnrollDependent(ctx, req, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsPrincipalNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestRemoveMember(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flows := newTestFlows(testDB)
		ctx := context.Background()

		period, err := fixtures.CreateActivePeriod()
		require.NoError(t, err)
		_, err = fixtures.CreateRateCard(period.ID, 1000, 500, 300, 600, 0.16)
		require.NoError(t, err)

		company, err := fixtures.CreateCompany("Turnover LLC")
		require.NoError(t, err)

		adult := time.Date(1980, 5, 5, 0, 0, 0, 0, time.UTC)
		child := time.Date(2016, 7, 7, 0, 0, 0, 0, time.UTC)

		principal, err := fixtures.CreatePrincipal(company.ID, adult)
		require.NoError(t, err)
		dependent, err := fixtures.CreateDependent(principal, models.DependentTypeChild, child, false)
		require.NoError(t, err)

		t.Run("PrincipalWithDependentsBlocked", func(t *testing.T) {
			err := flows.memberFlow.RemoveMember(ctx, principal.UUID.String(), testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsPrincipalHasDependents(err))
		})

		t.Run("MemberWithClaimsBlocked", func(t *testing.T) {
			benefit, err := fixtures.CreateBenefit("Outpatient")
			require.NoError(t, err)
			institution, err := fixtures.CreateInstitution(models.ApprovalStatusApproved, models.VerificationStatusVerified)
			require.NoError(t, err)
			personnel, err := fixtures.CreatePersonnel(institution.ID, models.ApprovalStatusApproved, models.VerificationStatusVerified)
			require.NoError(t, err)

			claim := &models.Claim{
				UUID:          uuid.New(),
				MemberID:      dependent.ID,
				BenefitID:     benefit.ID,
				InstitutionID: institution.ID,
				PersonnelID:   personnel.ID,
				Amount:        120.50,
				ServiceDate:   utils.UTCToday(),
				Status:        models.ClaimStatusSubmitted,
			}
			require.NoError(t, testDB.DB.Create(claim).Error)

			err = flows.memberFlow.RemoveMember(ctx, dependent.UUID.String(), testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsMemberHasClaims(err))

			// Drop the claim so the removal subtests below can proceed
			require.NoError(t, testDB.DB.Unscoped().Delete(claim).Error)
		})

		t.Run("SuccessfulRemoval", func(t *testing.T) {
			err := flows.memberFlow.RemoveMember(ctx, dependent.UUID.String(), testMetadata())
			require.NoError(t, err)

			gone, err := flows.memberRepo.ByUUID(ctx, dependent.UUID.String())
			require.NoError(t, err)
			assert.Nil(t, gone)

			// With the dependent gone the principal can be removed
			err = flows.memberFlow.RemoveMember(ctx, principal.UUID.String(), testMetadata())
			require.NoError(t, err)
		})

		t.Run("MemberNotFound", func(t *testing.T) {
			err := flows.memberFlow.RemoveMember(ctx, uuid.NewString(), testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsMemberNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

// Enrollment must not fail when the premium adjustment cannot run, e.g.
// when the active period has no rate card yet.
func TestEnrollmentSurvivesAdjustmentFailure(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flows := newTestFlows(testDB)
		ctx := context.Background()

		_, err := fixtures.CreateActivePeriod()
		require.NoError(t, err)
		company, err := fixtures.CreateCompany("Unpriced Co")
		require.NoError(t, err)

		req := &dto.EnrollPrincipalRequest{
			CompanyUUID: company.UUID.String(),
			FirstName:   "First",
			LastName:    "In",
			DateOfBirth: "1991-08-09",
		}
		result, err := flows.memberFlow.EnrollPrincipal(ctx, req, testMetadata())
		require.NoError(t, err)
		require.NotNil(t, result)

		stored, err := flows.memberRepo.ByUUID(ctx, result.UUID)
		require.NoError(t, err)
		require.NotNil(t, stored)

		history, err := flows.premiumFlow.GetPremiumHistory(ctx, company.UUID.String())
		require.NoError(t, err)
		assert.Empty(t, history.Premiums)

		return nil
	})
	require.NoError(t, err)
}
