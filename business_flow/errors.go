// Package businessflow contains the core business logic and use cases for insurance administration workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Period and rate card errors
	ErrPeriodNotFound        = errors.New("period not found")
	ErrNoActivePeriod        = errors.New("no active period")
	ErrPeriodAlreadyClosed   = errors.New("period is already closed")
	ErrRateCardNotFound      = errors.New("rate card not found")
	ErrRateCardAlreadyExists = errors.New("rate card already exists for period")
	ErrInvalidRate           = errors.New("rates must be non-negative")

	// Company-related errors
	ErrCompanyNotFound      = errors.New("company not found")
	ErrCompanyInactive      = errors.New("company is inactive")
	ErrCompanyAlreadyExists = errors.New("company already exists")

	// Member-related errors
	ErrMemberNotFound         = errors.New("member not found")
	ErrPrincipalNotFound      = errors.New("principal not found")
	ErrPrincipalHasDependents = errors.New("principal still has active dependents")
	ErrMemberHasClaims        = errors.New("member has claims on record")
	ErrInvalidDependentType   = errors.New("invalid dependent type")
	ErrDependentTooYoung      = errors.New("dependent must be at least 18 years old")
	ErrChildTooOld            = errors.New("child dependent must be 18 or younger unless disabled")
	ErrBirthDateInFuture      = errors.New("date of birth cannot be in the future")
	ErrChildTooYoung          = errors.New("child must be at least one day old")

	// Premium-related errors
	ErrPremiumNotFound    = errors.New("premium not found")
	ErrNoPremiumForPeriod = errors.New("company has no premium for the period")

	// Benefit and coverage errors
	ErrBenefitNotFound   = errors.New("benefit not found")
	ErrNoBenefitPackage  = errors.New("company has no benefit package assigned")
	ErrBenefitNotCovered = errors.New("benefit not included in insurance package")

	// Claim-related errors
	ErrClaimNotFound          = errors.New("claim not found")
	ErrClaimAlreadyDecided    = errors.New("claim has already been decided")
	ErrInstitutionNotFound    = errors.New("institution not found")
	ErrInstitutionNotApproved = errors.New("institution is not approved")
	ErrPersonnelNotFound      = errors.New("personnel not found")
	ErrPersonnelNotApproved   = errors.New("personnel is not approved")
	ErrPersonnelMismatch      = errors.New("personnel does not belong to the institution")
	ErrProcedureNotFound      = errors.New("procedure not found")
	ErrInvalidClaimAmount     = errors.New("claim amount must be positive")
	ErrInvalidQuantity        = errors.New("procedure quantity must be positive")

	// Admin auth errors
	ErrAdminNotFound     = errors.New("admin not found")
	ErrAdminInactive     = errors.New("admin account is inactive")
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrInvalidCaptcha    = errors.New("invalid captcha")
	ErrCacheNotAvailable = errors.New("cache not available")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsPeriodNotFound(err error) bool {
	return errors.Is(err, ErrPeriodNotFound)
}

func IsNoActivePeriod(err error) bool {
	return errors.Is(err, ErrNoActivePeriod)
}

func IsRateCardNotFound(err error) bool {
	return errors.Is(err, ErrRateCardNotFound)
}

func IsRateCardAlreadyExists(err error) bool {
	return errors.Is(err, ErrRateCardAlreadyExists)
}

func IsCompanyNotFound(err error) bool {
	return errors.Is(err, ErrCompanyNotFound)
}

func IsCompanyInactive(err error) bool {
	return errors.Is(err, ErrCompanyInactive)
}

func IsCompanyAlreadyExists(err error) bool {
	return errors.Is(err, ErrCompanyAlreadyExists)
}

func IsMemberNotFound(err error) bool {
	return errors.Is(err, ErrMemberNotFound)
}

func IsPrincipalNotFound(err error) bool {
	return errors.Is(err, ErrPrincipalNotFound)
}

func IsPrincipalHasDependents(err error) bool {
	return errors.Is(err, ErrPrincipalHasDependents)
}

func IsMemberHasClaims(err error) bool {
	return errors.Is(err, ErrMemberHasClaims)
}

func IsEligibilityViolation(err error) bool {
	return errors.Is(err, ErrInvalidDependentType) ||
		errors.Is(err, ErrDependentTooYoung) ||
		errors.Is(err, ErrChildTooOld) ||
		errors.Is(err, ErrBirthDateInFuture) ||
		errors.Is(err, ErrChildTooYoung)
}

func IsPremiumNotFound(err error) bool {
	return errors.Is(err, ErrPremiumNotFound)
}

func IsNoPremiumForPeriod(err error) bool {
	return errors.Is(err, ErrNoPremiumForPeriod)
}

func IsBenefitNotFound(err error) bool {
	return errors.Is(err, ErrBenefitNotFound)
}

func IsNoBenefitPackage(err error) bool {
	return errors.Is(err, ErrNoBenefitPackage)
}

func IsBenefitNotCovered(err error) bool {
	return errors.Is(err, ErrBenefitNotCovered)
}

func IsClaimNotFound(err error) bool {
	return errors.Is(err, ErrClaimNotFound)
}

func IsClaimAlreadyDecided(err error) bool {
	return errors.Is(err, ErrClaimAlreadyDecided)
}

func IsInstitutionNotFound(err error) bool {
	return errors.Is(err, ErrInstitutionNotFound)
}

func IsInstitutionNotApproved(err error) bool {
	return errors.Is(err, ErrInstitutionNotApproved)
}

func IsPersonnelNotFound(err error) bool {
	return errors.Is(err, ErrPersonnelNotFound)
}

func IsPersonnelNotApproved(err error) bool {
	return errors.Is(err, ErrPersonnelNotApproved)
}

func IsPersonnelMismatch(err error) bool {
	return errors.Is(err, ErrPersonnelMismatch)
}

func IsProcedureNotFound(err error) bool {
	return errors.Is(err, ErrProcedureNotFound)
}

func IsInvalidClaimAmount(err error) bool {
	return errors.Is(err, ErrInvalidClaimAmount)
}

func IsInvalidQuantity(err error) bool {
	return errors.Is(err, ErrInvalidQuantity)
}

func IsAdminNotFound(err error) bool {
	return errors.Is(err, ErrAdminNotFound)
}

func IsAdminInactive(err error) bool {
	return errors.Is(err, ErrAdminInactive)
}

func IsIncorrectPassword(err error) bool {
	return errors.Is(err, ErrIncorrectPassword)
}

func IsInvalidCaptcha(err error) bool {
	return errors.Is(err, ErrInvalidCaptcha)
}
