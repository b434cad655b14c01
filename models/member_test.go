package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBillingCategory(t *testing.T) {
	spouse := DependentTypeSpouse
	child := DependentTypeChild
	parent := DependentTypeParent
	guardian := DependentTypeGuardian

	cases := []struct {
		name   string
		member Member
		want   string
	}{
		{"Principal", Member{MemberType: MemberTypePrincipal}, CategoryPrincipal},
		{"Spouse", Member{MemberType: MemberTypeDependent, DependentType: &spouse}, CategorySpouse},
		{"Child", Member{MemberType: MemberTypeDependent, DependentType: &child}, CategoryChild},
		{"DisabledChild", Member{MemberType: MemberTypeDependent, DependentType: &child, HasDisability: true}, CategorySpecialNeeds},
		{"Parent", Member{MemberType: MemberTypeDependent, DependentType: &parent}, ""},
		{"Guardian", Member{MemberType: MemberTypeDependent, DependentType: &guardian}, ""},
		{"DependentWithoutType", Member{MemberType: MemberTypeDependent}, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.member.BillingCategory())
		})
	}
}

func TestIsDependent(t *testing.T) {
	principal := Member{MemberType: MemberTypePrincipal}
	assert.False(t, principal.IsDependent())

	dependent := Member{MemberType: MemberTypeDependent}
	assert.True(t, dependent.IsDependent())
}
