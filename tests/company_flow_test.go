package tests

import (
	"context"
	"testing"
	"time"

	"github.com/coverbase/coverbase/app/dto"
	businessflow "github.com/coverbase/coverbase/business_flow"
	testingutil "github.com/coverbase/coverbase/testing"
	"github.com/coverbase/coverbase/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompanyFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flows := newTestFlows(testDB)
		ctx := context.Background()

		t.Run("CreateCompany", func(t *testing.T) {
			req := &dto.CreateCompanyRequest{
				Name:               "Globex Industries",
				RegistrationNumber: utils.ToPtr("REG-100200300"),
				ContactEmail:       "billing@globex.example.com",
				ContactMobile:      utils.ToPtr("+15551234567"),
			}
			company, err := flows.companyFlow.CreateCompany(ctx, req, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, "Globex Industries", company.Name)
			assert.True(t, utils.IsTrue(company.IsActive))
			assert.NotEmpty(t, company.UUID)

			fetched, err := flows.companyFlow.GetCompany(ctx, company.UUID)
			require.NoError(t, err)
			assert.Equal(t, company.ID, fetched.ID)
		})

		t.Run("DuplicateName", func(t *testing.T) {
			req := &dto.CreateCompanyRequest{
				Name:         "Globex Industries",
				ContactEmail: "other@globex.example.com",
			}
			_, err := flows.companyFlow.CreateCompany(ctx, req, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsCompanyAlreadyExists(err))
		})

		t.Run("GetCompanyNotFound", func(t *testing.T) {
			_, err := flows.companyFlow.GetCompany(ctx, uuid.NewString())
			require.Error(t, err)
			assert.True(t, businessflow.IsCompanyNotFound(err))
		})

		t.Run("AssignBenefitPackage", func(t *testing.T) {
			period, err := fixtures.CreateActivePeriod()
			require.NoError(t, err)
			_, err = fixtures.CreateRateCard(period.ID, 1000, 500, 300, 600, 0.16)
			require.NoError(t, err)

			company, err := fixtures.CreateCompany("Initech")
			require.NoError(t, err)
			_, err = fixtures.CreatePrincipal(company.ID, time.Date(1984, 2, 19, 0, 0, 0, 0, time.UTC))
			require.NoError(t, err)

			outpatient, err := fixtures.CreateBenefit("Outpatient care")
			require.NoError(t, err)
			dental, err := fixtures.CreateBenefit("Dental care")
			require.NoError(t, err)

			assignReq := &dto.AssignBenefitsRequest{BenefitCodes: []string{outpatient.Code, dental.Code}}

			// Coverage is anchored to a premium, so assignment before the
			// first calculation is rejected
			_, err = flows.companyFlow.AssignBenefitPackage(ctx, company.UUID.String(), assignReq, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsNoPremiumForPeriod(err))

			premium, err := flows.premiumFlow.CalculatePremium(ctx, &dto.CalculatePremiumRequest{CompanyUUID: company.UUID.String()}, testMetadata())
			require.NoError(t, err)

			resp, err := flows.companyFlow.AssignBenefitPackage(ctx, company.UUID.String(), assignReq, testMetadata())
			require.NoError(t, err)
			require.NotNil(t, resp.Premium)
			assert.Equal(t, premium.ID, resp.Premium.ID)
			assert.Len(t, resp.Benefits, 2)

			// Re-assigning the same codes does not duplicate package rows
			resp, err = flows.companyFlow.AssignBenefitPackage(ctx, company.UUID.String(), assignReq, testMetadata())
			require.NoError(t, err)
			assert.Len(t, resp.Benefits, 2)
		})

		t.Run("AssignUnknownBenefit", func(t *testing.T) {
			company, err := fixtures.CreateCompany("Umbrella Corp")
			require.NoError(t, err)
			_, err = fixtures.CreatePrincipal(company.ID, time.Date(1979, 5, 5, 0, 0, 0, 0, time.UTC))
			require.NoError(t, err)
			_, err = flows.premiumFlow.CalculatePremium(ctx, &dto.CalculatePremiumRequest{CompanyUUID: company.UUID.String()}, testMetadata())
			require.NoError(t, err)

			assignReq := &dto.AssignBenefitsRequest{BenefitCodes: []string{"NO-SUCH-CODE"}}
			_, err = flows.companyFlow.AssignBenefitPackage(ctx, company.UUID.String(), assignReq, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsBenefitNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}
