package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPremiumAmountDue(t *testing.T) {
	full := Premium{Total: 4640}
	assert.InDelta(t, 4640.0, full.AmountDue(), 0.001)

	proRated := 1650.0
	adjustment := Premium{Total: 4640, IsAdjustment: true, ProRatedTotal: &proRated}
	assert.InDelta(t, 1650.0, adjustment.AmountDue(), 0.001)

	// An adjustment without a pro-rated total falls back to the full amount
	bare := Premium{Total: 4640, IsAdjustment: true}
	assert.InDelta(t, 4640.0, bare.AmountDue(), 0.001)
}

func TestPremiumTotalMemberCount(t *testing.T) {
	premium := Premium{PrincipalCount: 2, SpouseCount: 1, ChildCount: 3, SpecialNeedsCount: 1}
	assert.Equal(t, 7, premium.TotalMemberCount())

	assert.Zero(t, (&Premium{}).TotalMemberCount())
}

func TestProviderProcedureRateIsInForce(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	active := true
	inactive := false

	t.Run("WithinWindow", func(t *testing.T) {
		rate := ProviderProcedureRate{EffectiveFrom: from, ExpiresAt: &until, IsActive: &active}
		assert.True(t, rate.IsInForce(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)))
	})

	t.Run("BeforeEffective", func(t *testing.T) {
		rate := ProviderProcedureRate{EffectiveFrom: from, IsActive: &active}
		assert.False(t, rate.IsInForce(time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)))
	})

	t.Run("OnExpiry", func(t *testing.T) {
		rate := ProviderProcedureRate{EffectiveFrom: from, ExpiresAt: &until, IsActive: &active}
		assert.False(t, rate.IsInForce(until))
	})

	t.Run("NoExpiry", func(t *testing.T) {
		rate := ProviderProcedureRate{EffectiveFrom: from, IsActive: &active}
		assert.True(t, rate.IsInForce(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)))
	})

	t.Run("Deactivated", func(t *testing.T) {
		rate := ProviderProcedureRate{EffectiveFrom: from, IsActive: &inactive}
		assert.False(t, rate.IsInForce(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)))
	})
}

func TestClaimIsDecided(t *testing.T) {
	assert.False(t, (&Claim{Status: ClaimStatusSubmitted}).IsDecided())
	assert.True(t, (&Claim{Status: ClaimStatusApproved}).IsDecided())
	assert.True(t, (&Claim{Status: ClaimStatusRejected}).IsDecided())
}

func TestPeriodIsActive(t *testing.T) {
	assert.True(t, (&Period{Status: PeriodStatusActive}).IsActive())
	assert.False(t, (&Period{Status: PeriodStatusClosed}).IsActive())
}

func TestInstitutionVerification(t *testing.T) {
	approved := Institution{ApprovalStatus: ApprovalStatusApproved, VerificationStatus: VerificationStatusVerified}
	assert.True(t, approved.IsApproved())
	assert.True(t, approved.IsVerified())

	pending := Institution{ApprovalStatus: ApprovalStatusPending, VerificationStatus: VerificationStatusPending}
	assert.False(t, pending.IsApproved())
	assert.False(t, pending.IsVerified())
}
