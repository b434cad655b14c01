package tests

import (
	"context"
	"testing"
	"time"

	"github.com/coverbase/coverbase/app/dto"
	"github.com/coverbase/coverbase/app/services"
	businessflow "github.com/coverbase/coverbase/business_flow"
	"github.com/coverbase/coverbase/config"
	"github.com/coverbase/coverbase/models"
	"github.com/coverbase/coverbase/repository"
	testingutil "github.com/coverbase/coverbase/testing"
	"github.com/coverbase/coverbase/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testFlows bundles the wired business flows backed by a single test database
type testFlows struct {
	periodFlow  businessflow.PeriodFlow
	companyFlow businessflow.CompanyFlow
	premiumFlow businessflow.PremiumFlow
	memberFlow  businessflow.MemberFlow
	claimFlow   businessflow.ClaimFlow

	companyRepo repository.CompanyRepository
	memberRepo  repository.MemberRepository
	premiumRepo repository.PremiumRepository
	claimRepo   repository.ClaimRepository
}

func newTestFlows(testDB *testingutil.TestDB) *testFlows {
	periodRepo := repository.NewPeriodRepository(testDB.DB)
	rateRepo := repository.NewPremiumRateRepository(testDB.DB)
	companyRepo := repository.NewCompanyRepository(testDB.DB)
	benefitRepo := repository.NewBenefitRepository(testDB.DB)
	companyBenefitRepo := repository.NewCompanyBenefitRepository(testDB.DB)
	memberRepo := repository.NewMemberRepository(testDB.DB)
	premiumRepo := repository.NewPremiumRepository(testDB.DB)
	institutionRepo := repository.NewInstitutionRepository(testDB.DB)
	personnelRepo := repository.NewPersonnelRepository(testDB.DB)
	procedureRepo := repository.NewProcedureRepository(testDB.DB)
	claimRepo := repository.NewClaimRepository(testDB.DB)
	auditRepo := repository.NewAuditLogRepository(testDB.DB)

	notificationService := services.NewNotificationService(
		services.NewMockSMSProvider(),
		services.NewMockEmailProvider(),
	)

	cacheConfig := &config.CacheConfig{Enabled: false}

	periodFlow := businessflow.NewPeriodFlow(periodRepo, rateRepo, auditRepo, testDB.DB, nil, cacheConfig)

	companyFlow := businessflow.NewCompanyFlow(companyRepo, benefitRepo, companyBenefitRepo, premiumRepo, auditRepo, periodFlow, testDB.DB)

	premiumFlow := businessflow.NewPremiumFlow(companyRepo, memberRepo, premiumRepo, companyBenefitRepo, auditRepo, periodFlow, notificationService, testDB.DB)

	memberFlow := businessflow.NewMemberFlow(memberRepo, companyRepo, claimRepo, auditRepo, premiumFlow, testDB.DB)

	claimFlow := businessflow.NewClaimFlow(memberRepo, companyRepo, institutionRepo, personnelRepo, benefitRepo, companyBenefitRepo, premiumRepo, procedureRepo, claimRepo, auditRepo, periodFlow, notificationService, testDB.DB)

	return &testFlows{
		periodFlow:  periodFlow,
		companyFlow: companyFlow,
		premiumFlow: premiumFlow,
		memberFlow:  memberFlow,
		claimFlow:   claimFlow,
		companyRepo: companyRepo,
		memberRepo:  memberRepo,
		premiumRepo: premiumRepo,
		claimRepo:   claimRepo,
	}
}

func testMetadata() *businessflow.ClientMetadata {
	return businessflow.NewClientMetadata("127.0.0.1", "Test User Agent")
}

func TestCalculatePremium(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flows := newTestFlows(testDB)
		ctx := context.Background()

		period, err := fixtures.CreateActivePeriod()
		require.NoError(t, err)
		_, err = fixtures.CreateRateCard(period.ID, 1000, 500, 300, 600, 0.16)
		require.NoError(t, err)

		company, err := fixtures.CreateCompany("Acme Logistics")
		require.NoError(t, err)

		adult := time.Date(1985, 6, 1, 0, 0, 0, 0, time.UTC)
		child := time.Date(2015, 9, 20, 0, 0, 0, 0, time.UTC)

		// Roster: 2 principals, 1 spouse, 4 children of which one is
		// disabled and bills as special needs
		p1, err := fixtures.CreatePrincipal(company.ID, adult)
		require.NoError(t, err)
		_, err = fixtures.CreatePrincipal(company.ID, adult)
		require.NoError(t, err)
		_, err = fixtures.CreateDependent(p1, models.DependentTypeSpouse, adult, false)
		require.NoError(t, err)
		_, err = fixtures.CreateDependent(p1, models.DependentTypeChild, child, false)
		require.NoError(t, err)
		_, err = fixtures.CreateDependent(p1, models.DependentTypeChild, child, false)
		require.NoError(t, err)
		_, err = fixtures.CreateDependent(p1, models.DependentTypeChild, child, false)
		require.NoError(t, err)
		_, err = fixtures.CreateDependent(p1, models.DependentTypeChild, child, true)
		require.NoError(t, err)

		t.Run("SuccessfulCalculation", func(t *testing.T) {
			req := &dto.CalculatePremiumRequest{CompanyUUID: company.UUID.String()}
			result, err := flows.premiumFlow.CalculatePremium(ctx, req, testMetadata())
			require.NoError(t, err)
			require.NotNil(t, result)

			assert.Equal(t, 2, result.PrincipalCount)
			assert.Equal(t, 1, result.SpouseCount)
			assert.Equal(t, 3, result.ChildCount)
			assert.Equal(t, 1, result.SpecialNeedsCount)
			assert.InDelta(t, 4000.0, result.Subtotal, 0.001)
			assert.InDelta(t, 640.0, result.Tax, 0.001)
			assert.InDelta(t, 4640.0, result.Total, 0.001)
			assert.False(t, result.IsAdjustment)
			assert.Equal(t, models.PremiumStatusActive, result.Status)

			stored, err := flows.premiumRepo.ByUUID(ctx, result.UUID)
			require.NoError(t, err)
			require.NotNil(t, stored)
			assert.Equal(t, company.ID, stored.CompanyID)
			assert.Equal(t, period.ID, stored.PeriodID)
		})

		t.Run("RecalculationSupersedesPrevious", func(t *testing.T) {
			req := &dto.CalculatePremiumRequest{CompanyUUID: company.UUID.String()}
			second, err := flows.premiumFlow.CalculatePremium(ctx, req, testMetadata())
			require.NoError(t, err)

			history, err := flows.premiumFlow.GetPremiumHistory(ctx, company.UUID.String())
			require.NoError(t, err)
			require.Len(t, history.Premiums, 2)

			assert.Equal(t, models.PremiumStatusSuperseded, history.Premiums[0].Status)
			assert.Equal(t, models.PremiumStatusActive, history.Premiums[1].Status)
			assert.Equal(t, second.UUID, history.Premiums[1].UUID)
		})

		t.Run("CompanyNotFound", func(t *testing.T) {
			req := &dto.CalculatePremiumRequest{CompanyUUID: uuid.NewString()}
			_, err := flows.premiumFlow.CalculatePremium(ctx, req, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsCompanyNotFound(err))
		})

		t.Run("EnrollmentAppendsProRatedAdjustment", func(t *testing.T) {
			before, err := flows.premiumFlow.GetPremiumHistory(ctx, company.UUID.String())
			require.NoError(t, err)

			enrollReq := &dto.EnrollPrincipalRequest{
				CompanyUUID: company.UUID.String(),
				FirstName:   "New",
				LastName:    "Hire",
				DateOfBirth: "1992-02-10",
			}
			_, err = flows.memberFlow.EnrollPrincipal(ctx, enrollReq, testMetadata())
			require.NoError(t, err)

			after, err := flows.premiumFlow.GetPremiumHistory(ctx, company.UUID.String())
			require.NoError(t, err)
			require.Len(t, after.Premiums, len(before.Premiums)+1)

			latest := after.Premiums[len(after.Premiums)-1]
			assert.True(t, latest.IsAdjustment)
			assert.Equal(t, 3, latest.PrincipalCount)
			require.NotNil(t, latest.PreviousPremiumID)
			require.NotNil(t, latest.AdjustmentFactor)
			require.NotNil(t, latest.ProRatedTotal)
			assert.Greater(t, *latest.AdjustmentFactor, 0.0)
			assert.LessOrEqual(t, *latest.AdjustmentFactor, 1.0)
			assert.LessOrEqual(t, *latest.ProRatedTotal, latest.Total)

			// The superseded premium keeps its original amounts
			previous := after.Premiums[len(after.Premiums)-2]
			assert.Equal(t, models.PremiumStatusSuperseded, previous.Status)
			assert.InDelta(t, 4640.0, previous.Total, 0.001)
		})

		t.Run("RemovalAppendsSecondAdjustment", func(t *testing.T) {
			before, err := flows.premiumFlow.GetPremiumHistory(ctx, company.UUID.String())
			require.NoError(t, err)

			roster, err := flows.memberFlow.ListByCompany(ctx, company.UUID.String())
			require.NoError(t, err)

			var victim *dto.MemberDTO
			for i := range roster.Members {
				if roster.Members[i].MemberType == models.MemberTypePrincipal && roster.Members[i].LastName == "Hire" {
					victim = &roster.Members[i]
					break
				}
			}
			require.NotNil(t, victim)

			err = flows.memberFlow.RemoveMember(ctx, victim.UUID, testMetadata())
			require.NoError(t, err)

			after, err := flows.premiumFlow.GetPremiumHistory(ctx, company.UUID.String())
			require.NoError(t, err)
			require.Len(t, after.Premiums, len(before.Premiums)+1)

			latest := after.Premiums[len(after.Premiums)-1]
			assert.True(t, latest.IsAdjustment)
			assert.Equal(t, 2, latest.PrincipalCount)
		})

		t.Run("ExportStatement", func(t *testing.T) {
			history, err := flows.premiumFlow.GetPremiumHistory(ctx, company.UUID.String())
			require.NoError(t, err)
			require.NotEmpty(t, history.Premiums)
			latest := history.Premiums[len(history.Premiums)-1]

			filename, content, err := flows.premiumFlow.ExportStatement(ctx, latest.UUID)
			require.NoError(t, err)
			assert.Contains(t, filename, latest.UUID)
			assert.Contains(t, filename, ".xlsx")
			assert.NotEmpty(t, content)
		})

		t.Run("ExportStatementNotFound", func(t *testing.T) {
			_, _, err := flows.premiumFlow.ExportStatement(ctx, uuid.NewString())
			require.Error(t, err)
			assert.True(t, businessflow.IsPremiumNotFound(err))
		})

		t.Run("HistoryForUnknownCompany", func(t *testing.T) {
			_, err := flows.premiumFlow.GetPremiumHistory(ctx, uuid.NewString())
			require.Error(t, err)
			assert.True(t, businessflow.IsCompanyNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestCalculatePremiumWithoutRateCard(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flows := newTestFlows(testDB)
		ctx := context.Background()

		_, err := fixtures.CreateActivePeriod()
		require.NoError(t, err)
		company, err := fixtures.CreateCompany("No Rates Inc")
		require.NoError(t, err)

		req := &dto.CalculatePremiumRequest{CompanyUUID: company.UUID.String()}
		_, err = flows.premiumFlow.CalculatePremium(ctx, req, testMetadata())
		require.Error(t, err)
		assert.True(t, businessflow.IsRateCardNotFound(err))

		return nil
	})
	require.NoError(t, err)
}

func TestCalculatePremiumExplicitPeriod(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flows := newTestFlows(testDB)
		ctx := context.Background()

		// A closed prior period with its own rate card
		closedStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		closedEnd := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
		closed, err := fixtures.CreatePeriod("FY2024", closedStart, closedEnd, models.PeriodStatusClosed)
		require.NoError(t, err)
		_, err = fixtures.CreateRateCard(closed.ID, 800, 400, 200, 500, 0.10)
		require.NoError(t, err)

		active, err := fixtures.CreateActivePeriod()
		require.NoError(t, err)
		_, err = fixtures.CreateRateCard(active.ID, 1000, 500, 300, 600, 0.16)
		require.NoError(t, err)

		company, err := fixtures.CreateCompany("Time Travel Ltd")
		require.NoError(t, err)
		_, err = fixtures.CreatePrincipal(company.ID, time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)

		req := &dto.CalculatePremiumRequest{
			CompanyUUID: company.UUID.String(),
			PeriodUUID:  utils.ToPtr(closed.UUID.String()),
		}
		result, err := flows.premiumFlow.CalculatePremium(ctx, req, testMetadata())
		require.NoError(t, err)
		assert.Equal(t, closed.ID, result.PeriodID)
		assert.InDelta(t, 800.0, result.Subtotal, 0.001)
		assert.InDelta(t, 880.0, result.Total, 0.001)

		t.Run("UnknownPeriod", func(t *testing.T) {
			req := &dto.CalculatePremiumRequest{
				CompanyUUID: company.UUID.String(),
				PeriodUUID:  utils.ToPtr(uuid.NewString()),
			}
			_, err := flows.premiumFlow.CalculatePremium(ctx, req, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsPeriodNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}
