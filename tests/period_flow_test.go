package tests

import (
	"context"
	"testing"

	"github.com/coverbase/coverbase/app/dto"
	businessflow "github.com/coverbase/coverbase/business_flow"
	"github.com/coverbase/coverbase/models"
	testingutil "github.com/coverbase/coverbase/testing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flows := newTestFlows(testDB)
		ctx := context.Background()

		t.Run("NoActivePeriodInitially", func(t *testing.T) {
			_, err := flows.periodFlow.ActivePeriod(ctx)
			require.Error(t, err)
			assert.True(t, businessflow.IsNoActivePeriod(err))
		})

		t.Run("CreatePeriod", func(t *testing.T) {
			req := &dto.CreatePeriodRequest{
				Name:      "FY2026",
				StartDate: "2026-01-01",
				EndDate:   "2026-12-31",
			}
			period, err := flows.periodFlow.CreatePeriod(ctx, req, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, "FY2026", period.Name)
			assert.Equal(t, models.PeriodStatusActive, period.Status)
			assert.NotEmpty(t, period.UUID)
		})

		t.Run("InvalidDateRange", func(t *testing.T) {
			req := &dto.CreatePeriodRequest{
				Name:      "Backwards",
				StartDate: "2026-12-31",
				EndDate:   "2026-01-01",
			}
			_, err := flows.periodFlow.CreatePeriod(ctx, req, testMetadata())
			require.Error(t, err)
		})

		t.Run("AttachRateCard", func(t *testing.T) {
			active, err := flows.periodFlow.ActivePeriod(ctx)
			require.NoError(t, err)

			rateReq := &dto.CreateRateCardRequest{
				PrincipalRate:    1000,
				SpouseRate:       500,
				ChildRate:        300,
				SpecialNeedsRate: 600,
				TaxRate:          0.16,
			}
			updated, err := flows.periodFlow.AttachRateCard(ctx, active.UUID, rateReq, testMetadata())
			require.NoError(t, err)
			require.NotNil(t, updated.RateCard)
			assert.InDelta(t, 1000.0, updated.RateCard.PrincipalRate, 0.001)
			assert.InDelta(t, 0.16, updated.RateCard.TaxRate, 0.001)

			// Only one rate card per period
			_, err = flows.periodFlow.AttachRateCard(ctx, active.UUID, rateReq, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsRateCardAlreadyExists(err))
		})

		t.Run("AttachRateCardUnknownPeriod", func(t *testing.T) {
			rateReq := &dto.CreateRateCardRequest{PrincipalRate: 100}
			_, err := flows.periodFlow.AttachRateCard(ctx, uuid.NewString(), rateReq, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsPeriodNotFound(err))
		})

		t.Run("NewPeriodClosesPrevious", func(t *testing.T) {
			first, err := flows.periodFlow.ActivePeriod(ctx)
			require.NoError(t, err)

			req := &dto.CreatePeriodRequest{
				Name:      "FY2027",
				StartDate: "2027-01-01",
				EndDate:   "2027-12-31",
			}
			second, err := flows.periodFlow.CreatePeriod(ctx, req, testMetadata())
			require.NoError(t, err)

			active, err := flows.periodFlow.ActivePeriod(ctx)
			require.NoError(t, err)
			assert.Equal(t, second.UUID, active.UUID)

			closed, err := flows.periodFlow.ResolvePeriod(ctx, &first.UUID)
			require.NoError(t, err)
			assert.Equal(t, models.PeriodStatusClosed, closed.Status)
		})

		t.Run("ActivePeriodWithoutRateCard", func(t *testing.T) {
			// FY2027 has no rate card yet; the lookup still succeeds
			active, err := flows.periodFlow.ActivePeriod(ctx)
			require.NoError(t, err)
			assert.Nil(t, active.RateCard)
		})

		return nil
	})
	require.NoError(t, err)
}
