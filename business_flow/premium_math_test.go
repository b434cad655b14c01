package businessflow

import (
	"testing"
	"time"

	"github.com/coverbase/coverbase/models"
	"github.com/coverbase/coverbase/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountCategories(t *testing.T) {
	spouse := models.DependentTypeSpouse
	child := models.DependentTypeChild
	parent := models.DependentTypeParent
	guardian := models.DependentTypeGuardian

	members := []*models.Member{
		{MemberType: models.MemberTypePrincipal},
		{MemberType: models.MemberTypePrincipal},
		{MemberType: models.MemberTypeDependent, DependentType: &spouse},
		{MemberType: models.MemberTypeDependent, DependentType: &child},
		{MemberType: models.MemberTypeDependent, DependentType: &child, HasDisability: true},
		{MemberType: models.MemberTypeDependent, DependentType: &parent},
		{MemberType: models.MemberTypeDependent, DependentType: &guardian},
	}

	counts := CountCategories(members)
	assert.Equal(t, 2, counts.Principal)
	assert.Equal(t, 1, counts.Spouse)
	assert.Equal(t, 1, counts.Child)
	assert.Equal(t, 1, counts.SpecialNeeds)
}

func TestCategoryCountsApply(t *testing.T) {
	counts := CategoryCounts{Principal: 2, Spouse: 1}

	added := counts.Apply(models.CategoryChild, 1)
	assert.Equal(t, 1, added.Child)
	assert.Equal(t, 2, added.Principal)

	removed := counts.Apply(models.CategorySpouse, -1)
	assert.Equal(t, 0, removed.Spouse)

	// Removing below zero floors at zero rather than going negative
	floored := counts.Apply(models.CategoryChild, -3)
	assert.Equal(t, 0, floored.Child)

	// An unbilled category leaves the counts untouched
	unchanged := counts.Apply("", 1)
	assert.Equal(t, counts, unchanged)
}

func TestComputePremium(t *testing.T) {
	rate := &models.PremiumRate{
		PrincipalRate:    1000,
		SpouseRate:       500,
		ChildRate:        300,
		SpecialNeedsRate: 600,
		TaxRate:          0.16,
	}
	counts := CategoryCounts{Principal: 2, Spouse: 1, Child: 3, SpecialNeeds: 1}

	subtotal, tax, total := ComputePremium(counts, rate)
	assert.InDelta(t, 4000.0, subtotal, 0.001)
	assert.InDelta(t, 640.0, tax, 0.001)
	assert.InDelta(t, 4640.0, total, 0.001)

	subtotal, tax, total = ComputePremium(CategoryCounts{}, rate)
	assert.Zero(t, subtotal)
	assert.Zero(t, tax)
	assert.Zero(t, total)
}

func TestProRataFactor(t *testing.T) {
	today := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("HalfYearRemaining", func(t *testing.T) {
		end := today.AddDate(0, 0, 182)
		factor := ProRataFactor(today, end)
		assert.InDelta(t, 182.0/utils.DaysInYear, factor, 0.0001)
		assert.Greater(t, factor, 0.0)
		assert.LessOrEqual(t, factor, 1.0)
	})

	t.Run("FullYearRemaining", func(t *testing.T) {
		end := today.AddDate(0, 0, 365)
		assert.InDelta(t, 1.0, ProRataFactor(today, end), 0.0001)
	})

	t.Run("PeriodAlreadyEnded", func(t *testing.T) {
		end := today.AddDate(0, 0, -30)
		assert.Zero(t, ProRataFactor(today, end))
	})

	t.Run("SameDay", func(t *testing.T) {
		assert.Zero(t, ProRataFactor(today, today))
	})
}

func TestValidateDependentEligibility(t *testing.T) {
	today := time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name          string
		dependentType string
		dateOfBirth   time.Time
		hasDisability bool
		wantErr       error
	}{
		{"AdultSpouse", models.DependentTypeSpouse, today.AddDate(-30, 0, 0), false, nil},
		{"UnderageSpouse", models.DependentTypeSpouse, today.AddDate(-17, 0, 0), false, ErrDependentTooYoung},
		{"AdultParent", models.DependentTypeParent, today.AddDate(-55, 0, 0), false, nil},
		{"UnderageGuardian", models.DependentTypeGuardian, today.AddDate(-16, 0, 0), false, ErrDependentTooYoung},
		{"YoungChild", models.DependentTypeChild, today.AddDate(-8, 0, 0), false, nil},
		{"ChildAtEighteen", models.DependentTypeChild, today.AddDate(-18, 0, 0), false, nil},
		{"AdultChild", models.DependentTypeChild, today.AddDate(-19, 0, 0), false, ErrChildTooOld},
		{"AdultDisabledChild", models.DependentTypeChild, today.AddDate(-25, 0, 0), true, nil},
		{"NewbornSameDay", models.DependentTypeChild, today, false, ErrChildTooYoung},
		{"NewbornOneDayOld", models.DependentTypeChild, today.AddDate(0, 0, -1), false, nil},
		{"FutureBirthDate", models.DependentTypeSpouse, today.AddDate(0, 0, 1), false, ErrBirthDateInFuture},
		{"UnknownType", "cousin", today.AddDate(-30, 0, 0), false, ErrInvalidDependentType},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateDependentEligibility(tc.dependentType, tc.dateOfBirth, tc.hasDisability, today)
			if tc.wantErr == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestEligibilityViolationPredicate(t *testing.T) {
	violations := []error{
		ErrInvalidDependentType,
		ErrDependentTooYoung,
		ErrChildTooOld,
		ErrChildTooYoung,
		ErrBirthDateInFuture,
	}
	for _, sentinel := range violations {
		wrapped := NewBusinessError("MEMBER_VALIDATION_FAILED", "rejected", sentinel)
		assert.True(t, IsEligibilityViolation(wrapped), "expected %v to count as an eligibility violation", sentinel)
	}

	assert.False(t, IsEligibilityViolation(ErrMemberNotFound))
}
