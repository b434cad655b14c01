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

// claimTestEnv holds a covered company with an approved provider network
type claimTestEnv struct {
	company     *models.Company
	member      *models.Member
	benefit     *models.Benefit
	institution *models.Institution
	personnel   *models.Personnel
	premiumID   uint
	serviceDate string
}

func setupClaimEnv(t *testing.T, testDB *testingutil.TestDB, flows *testFlows) *claimTestEnv {
	fixtures := testingutil.NewTestFixtures(testDB)
	ctx := context.Background()

	period, err := fixtures.CreateActivePeriod()
	require.NoError(t, err)
	_, err = fixtures.CreateRateCard(period.ID, 1000, 500, 300, 600, 0.16)
	require.NoError(t, err)

	company, err := fixtures.CreateCompany("Covered Corp")
	require.NoError(t, err)
	member, err := fixtures.CreatePrincipal(company.ID, time.Date(1986, 4, 12, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	premium, err := flows.premiumFlow.CalculatePremium(ctx, &dto.CalculatePremiumRequest{CompanyUUID: company.UUID.String()}, testMetadata())
	require.NoError(t, err)

	benefit, err := fixtures.CreateBenefit("Outpatient care")
	require.NoError(t, err)
	require.NoError(t, fixtures.AttachBenefits(company.ID, premium.ID, benefit.ID))

	institution, err := fixtures.CreateInstitution(models.ApprovalStatusApproved, models.VerificationStatusVerified)
	require.NoError(t, err)
	personnel, err := fixtures.CreatePersonnel(institution.ID, models.ApprovalStatusApproved, models.VerificationStatusVerified)
	require.NoError(t, err)

	return &claimTestEnv{
		company:     company,
		member:      member,
		benefit:     benefit,
		institution: institution,
		personnel:   personnel,
		premiumID:   premium.ID,
		serviceDate: utils.UTCToday().Format("2006-01-02"),
	}
}

func (env *claimTestEnv) submitRequest() *dto.SubmitClaimRequest {
	return &dto.SubmitClaimRequest{
		MemberUUID:      env.member.UUID.String(),
		InstitutionUUID: env.institution.UUID.String(),
		PersonnelUUID:   env.personnel.UUID.String(),
		BenefitCode:     env.benefit.Code,
		Amount:          250.00,
		ServiceDate:     env.serviceDate,
	}
}

func TestSubmitClaim(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flows := newTestFlows(testDB)
		ctx := context.Background()
		env := setupClaimEnv(t, testDB, flows)

		t.Run("SuccessfulSubmission", func(t *testing.T) {
			result, err := flows.claimFlow.SubmitClaim(ctx, env.submitRequest(), testMetadata())
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, models.ClaimStatusSubmitted, result.Status)
			assert.False(t, result.RequiresHigherApproval)
			assert.InDelta(t, 250.00, result.Amount, 0.001)

			stored, err := flows.claimRepo.ByUUID(ctx, result.UUID)
			require.NoError(t, err)
			require.NotNil(t, stored)
			assert.Equal(t, env.member.ID, stored.MemberID)
		})

		t.Run("NonPositiveAmountRejected", func(t *testing.T) {
			req := env.submitRequest()
			req.Amount = 0
			_, err := flows.claimFlow.SubmitClaim(ctx, req, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidClaimAmount(err))
		})

		t.Run("MemberNotFound", func(t *testing.T) {
			req := env.submitRequest()
			req.MemberUUID = uuid.NewString()
			// An invalid institution too: the member check fires first
			req.InstitutionUUID = uuid.NewString()
			_, err := flows.claimFlow.SubmitClaim(ctx, req, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsMemberNotFound(err))
		})

		t.Run("InstitutionNotApproved", func(t *testing.T) {
			pending, err := fixtures.CreateInstitution(models.ApprovalStatusPending, models.VerificationStatusVerified)
			require.NoError(t, err)

			req := env.submitRequest()
			req.InstitutionUUID = pending.UUID.String()
			_, err = flows.claimFlow.SubmitClaim(ctx, req, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsInstitutionNotApproved(err))
		})

		t.Run("PersonnelMismatch", func(t *testing.T) {
			other, err := fixtures.CreateInstitution(models.ApprovalStatusApproved, models.VerificationStatusVerified)
			require.NoError(t, err)
			stranger, err := fixtures.CreatePersonnel(other.ID, models.ApprovalStatusApproved, models.VerificationStatusVerified)
			require.NoError(t, err)

			req := env.submitRequest()
			req.PersonnelUUID = stranger.UUID.String()
			_, err = flows.claimFlow.SubmitClaim(ctx, req, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsPersonnelMismatch(err))
		})

		t.Run("PersonnelNotApproved", func(t *testing.T) {
			rejected, err := fixtures.CreatePersonnel(env.institution.ID, models.ApprovalStatusRejected, models.VerificationStatusVerified)
			require.NoError(t, err)

			req := env.submitRequest()
			req.PersonnelUUID = rejected.UUID.String()
			_, err = flows.claimFlow.SubmitClaim(ctx, req, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsPersonnelNotApproved(err))
		})

		t.Run("BenefitNotFound", func(t *testing.T) {
			req := env.submitRequest()
			req.BenefitCode = "NO-SUCH-BENEFIT"
			_, err := flows.claimFlow.SubmitClaim(ctx, req, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsBenefitNotFound(err))
		})

		t.Run("BenefitNotCovered", func(t *testing.T) {
			uncovered, err := fixtures.CreateBenefit("Cosmetic surgery")
			require.NoError(t, err)

			before, err := flows.claimRepo.CountByMember(ctx, env.member.ID)
			require.NoError(t, err)

			req := env.submitRequest()
			req.BenefitCode = uncovered.Code
			_, err = flows.claimFlow.SubmitClaim(ctx, req, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsBenefitNotCovered(err))

			var berr *businessflow.BusinessError
			require.ErrorAs(t, err, &berr)
			assert.Equal(t, businessflow.BenefitNotCoveredMessage, berr.Message)

			// A rejected submission must not leave a claim behind
			after, err := flows.claimRepo.CountByMember(ctx, env.member.ID)
			require.NoError(t, err)
			assert.Equal(t, before, after)
		})

		t.Run("NoPremiumForPeriod", func(t *testing.T) {
			uncovered, err := fixtures.CreateCompany("Uninsured Inc")
			require.NoError(t, err)
			orphan, err := fixtures.CreatePrincipal(uncovered.ID, time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC))
			require.NoError(t, err)

			req := env.submitRequest()
			req.MemberUUID = orphan.UUID.String()
			_, err = flows.claimFlow.SubmitClaim(ctx, req, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsNoPremiumForPeriod(err))
		})

		t.Run("UnverifiedProviderEscalates", func(t *testing.T) {
			unverified, err := fixtures.CreateInstitution(models.ApprovalStatusApproved, models.VerificationStatusPending)
			require.NoError(t, err)
			doctor, err := fixtures.CreatePersonnel(unverified.ID, models.ApprovalStatusApproved, models.VerificationStatusVerified)
			require.NoError(t, err)

			req := env.submitRequest()
			req.InstitutionUUID = unverified.UUID.String()
			req.PersonnelUUID = doctor.UUID.String()
			result, err := flows.claimFlow.SubmitClaim(ctx, req, testMetadata())
			require.NoError(t, err)
			assert.True(t, result.RequiresHigherApproval)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestSubmitClaimWithProcedures(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flows := newTestFlows(testDB)
		ctx := context.Background()
		env := setupClaimEnv(t, testDB, flows)

		consult, err := fixtures.CreateProcedure("Consultation", 80)
		require.NoError(t, err)
		xray, err := fixtures.CreateProcedure("X-ray", 150)
		require.NoError(t, err)

		// Negotiated rate for the x-ray, already in force
		_, err = fixtures.CreateProviderRate(env.institution.ID, xray.ID, 120, utils.UTCToday().AddDate(0, -1, 0), nil)
		require.NoError(t, err)

		baseRequest := func() *dto.SubmitClaimWithProceduresRequest {
			return &dto.SubmitClaimWithProceduresRequest{
				MemberUUID:      env.member.UUID.String(),
				InstitutionUUID: env.institution.UUID.String(),
				PersonnelUUID:   env.personnel.UUID.String(),
				BenefitCode:     env.benefit.Code,
				ServiceDate:     env.serviceDate,
				Procedures: []dto.ClaimProcedureItem{
					{ProcedureCode: consult.Code, Quantity: 2},
					{ProcedureCode: xray.Code, Quantity: 1},
				},
			}
		}

		t.Run("PricesProviderRateOverStandard", func(t *testing.T) {
			result, err := flows.claimFlow.SubmitClaimWithProcedures(ctx, baseRequest(), testMetadata())
			require.NoError(t, err)
			require.Len(t, result.Procedures, 2)

			// 2 consultations at the standard 80, 1 x-ray at the negotiated 120
			assert.InDelta(t, 280.0, result.Amount, 0.001)

			byProcedure := map[uint]dto.ClaimProcedureDTO{}
			for _, line := range result.Procedures {
				byProcedure[line.ProcedureID] = line
			}
			assert.InDelta(t, 80.0, byProcedure[consult.ID].UnitRate, 0.001)
			assert.InDelta(t, 160.0, byProcedure[consult.ID].LineTotal, 0.001)
			assert.InDelta(t, 120.0, byProcedure[xray.ID].UnitRate, 0.001)
		})

		t.Run("ExpiredProviderRateFallsBack", func(t *testing.T) {
			mri, err := fixtures.CreateProcedure("MRI scan", 500)
			require.NoError(t, err)
			expiry := utils.UTCToday().AddDate(0, 0, -10)
			_, err = fixtures.CreateProviderRate(env.institution.ID, mri.ID, 400, utils.UTCToday().AddDate(-1, 0, 0), &expiry)
			require.NoError(t, err)

			req := baseRequest()
			req.Procedures = []dto.ClaimProcedureItem{{ProcedureCode: mri.Code, Quantity: 1}}
			result, err := flows.claimFlow.SubmitClaimWithProcedures(ctx, req, testMetadata())
			require.NoError(t, err)
			require.Len(t, result.Procedures, 1)
			assert.InDelta(t, 500.0, result.Procedures[0].UnitRate, 0.001)
		})

		t.Run("UnknownProcedure", func(t *testing.T) {
			req := baseRequest()
			req.Procedures = []dto.ClaimProcedureItem{{ProcedureCode: "NO-SUCH-PROCEDURE", Quantity: 1}}
			_, err := flows.claimFlow.SubmitClaimWithProcedures(ctx, req, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsProcedureNotFound(err))
		})

		t.Run("NonPositiveQuantity", func(t *testing.T) {
			req := baseRequest()
			req.Procedures = []dto.ClaimProcedureItem{{ProcedureCode: consult.Code, Quantity: 0}}
			_, err := flows.claimFlow.SubmitClaimWithProcedures(ctx, req, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidQuantity(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestClaimAdjudication(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flows := newTestFlows(testDB)
		ctx := context.Background()
		env := setupClaimEnv(t, testDB, flows)

		admin, err := fixtures.CreateAdmin("adjudicator", "Str0ngPass!word")
		require.NoError(t, err)

		t.Run("ApproveClaim", func(t *testing.T) {
			submitted, err := flows.claimFlow.SubmitClaim(ctx, env.submitRequest(), testMetadata())
			require.NoError(t, err)

			result, err := flows.claimFlow.ApproveClaim(ctx, submitted.UUID, &dto.ClaimDecisionRequest{}, admin.ID, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, models.ClaimStatusApproved, result.Status)

			stored, err := flows.claimRepo.ByUUID(ctx, submitted.UUID)
			require.NoError(t, err)
			require.NotNil(t, stored)
			assert.Equal(t, models.ClaimStatusApproved, stored.Status)
			require.NotNil(t, stored.DecidedBy)
			assert.Equal(t, admin.ID, *stored.DecidedBy)
			assert.NotNil(t, stored.DecidedAt)
		})

		t.Run("RejectClaimWithReason", func(t *testing.T) {
			submitted, err := flows.claimFlow.SubmitClaim(ctx, env.submitRequest(), testMetadata())
			require.NoError(t, err)

			reason := "Service date outside coverage window"
			result, err := flows.claimFlow.RejectClaim(ctx, submitted.UUID, &dto.ClaimDecisionRequest{Reason: &reason}, admin.ID, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, models.ClaimStatusRejected, result.Status)
			require.NotNil(t, result.DecisionReason)
			assert.Equal(t, reason, *result.DecisionReason)
		})

		t.Run("SecondDecisionConflicts", func(t *testing.T) {
			submitted, err := flows.claimFlow.SubmitClaim(ctx, env.submitRequest(), testMetadata())
			require.NoError(t, err)

			_, err = flows.claimFlow.ApproveClaim(ctx, submitted.UUID, &dto.ClaimDecisionRequest{}, admin.ID, testMetadata())
			require.NoError(t, err)

			_, err = flows.claimFlow.RejectClaim(ctx, submitted.UUID, &dto.ClaimDecisionRequest{}, admin.ID, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsClaimAlreadyDecided(err))
		})

		t.Run("ClaimNotFound", func(t *testing.T) {
			_, err := flows.claimFlow.ApproveClaim(ctx, uuid.NewString(), &dto.ClaimDecisionRequest{}, admin.ID, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsClaimNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}
