// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"
	"time"

	"github.com/coverbase/coverbase/app/dto"
	businessflow "github.com/coverbase/coverbase/business_flow"
	"github.com/coverbase/coverbase/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// MemberHandlerInterface defines the contract for member enrollment handlers
type MemberHandlerInterface interface {
	EnrollPrincipal(c fiber.Ctx) error
	EnrollDependent(c fiber.Ctx) error
	RemoveMember(c fiber.Ctx) error
	ListCompanyMembers(c fiber.Ctx) error
}

// MemberHandler implements MemberHandlerInterface
type MemberHandler struct {
	flow      businessflow.MemberFlow
	validator *validator.Validate
}

// ErrorResponse standard JSON error
func (h *MemberHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

// SuccessResponse standard JSON success
func (h *MemberHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func NewMemberHandler(flow businessflow.MemberFlow) MemberHandlerInterface {
	return &MemberHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

// EnrollPrincipal adds a principal member to a company's roster
func (h *MemberHandler) EnrollPrincipal(c fiber.Ctx) error {
	var req dto.EnrollPrincipalRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	result, err := h.flow.EnrollPrincipal(h.createRequestContext(c, "/api/v1/members/principal"), &req, metadata)
	if err != nil {
		if businessflow.IsCompanyNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Company not found", "COMPANY_NOT_FOUND", nil)
		}
		if businessflow.IsCompanyInactive(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Company is inactive", "COMPANY_INACTIVE", nil)
		}
		if businessflow.IsEligibilityViolation(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "ELIGIBILITY_VIOLATION", nil)
		}
		log.Println("Principal enrollment failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Enrollment failed", "ENROLLMENT_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Principal enrolled", result)
}

// EnrollDependent adds a dependent under an existing principal
func (h *MemberHandler) EnrollDependent(c fiber.Ctx) error {
	var req dto.EnrollDependentRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	result, err := h.flow.EnrollDependent(h.createRequestContext(c, "/api/v1/members/dependent"), &req, metadata)
	if err != nil {
		if businessflow.IsPrincipalNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Principal not found", "PRINCIPAL_NOT_FOUND", nil)
		}
		if businessflow.IsCompanyInactive(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Company is inactive", "COMPANY_INACTIVE", nil)
		}
		if businessflow.IsEligibilityViolation(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "ELIGIBILITY_VIOLATION", nil)
		}
		log.Println("Dependent enrollment failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Enrollment failed", "ENROLLMENT_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Dependent enrolled", result)
}

// RemoveMember soft-deletes a member when no claims or dependents block it
func (h *MemberHandler) RemoveMember(c fiber.Ctx) error {
	memberUUID := c.Params("uuid")
	if memberUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Member UUID is required", "INVALID_REQUEST", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	err := h.flow.RemoveMember(h.createRequestContext(c, "/api/v1/members/:uuid"), memberUUID, metadata)
	if err != nil {
		if businessflow.IsMemberNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Member not found", "MEMBER_NOT_FOUND", nil)
		}
		if businessflow.IsMemberHasClaims(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Member has claims on record", "MEMBER_HAS_CLAIMS", nil)
		}
		if businessflow.IsPrincipalHasDependents(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Principal still has active dependents", "PRINCIPAL_HAS_DEPENDENTS", nil)
		}
		log.Println("Member removal failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Member removal failed", "MEMBER_REMOVAL_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Member removed", nil)
}

// ListCompanyMembers returns the active roster with billing category counts
func (h *MemberHandler) ListCompanyMembers(c fiber.Ctx) error {
	companyUUID := c.Params("uuid")
	if companyUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Company UUID is required", "INVALID_REQUEST", nil)
	}

	result, err := h.flow.ListByCompany(h.createRequestContext(c, "/api/v1/companies/:uuid/members"), companyUUID)
	if err != nil {
		if businessflow.IsCompanyNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Company not found", "COMPANY_NOT_FOUND", nil)
		}
		log.Println("Roster lookup failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Roster lookup failed", "ROSTER_LOOKUP_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Roster retrieved", result)
}

// createRequestContext mirrors other handlers for request-scoped values
func (h *MemberHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *MemberHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
