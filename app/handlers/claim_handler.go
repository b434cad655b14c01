// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"
	"time"

	"github.com/coverbase/coverbase/app/dto"
	"github.com/coverbase/coverbase/app/middleware"
	businessflow "github.com/coverbase/coverbase/business_flow"
	"github.com/coverbase/coverbase/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// ClaimHandlerInterface defines the contract for claim handlers
type ClaimHandlerInterface interface {
	SubmitClaim(c fiber.Ctx) error
	SubmitClaimWithProcedures(c fiber.Ctx) error
	ApproveClaim(c fiber.Ctx) error
	RejectClaim(c fiber.Ctx) error
}

// ClaimHandler implements ClaimHandlerInterface
type ClaimHandler struct {
	flow      businessflow.ClaimFlow
	validator *validator.Validate
}

// ErrorResponse standard JSON error
func (h *ClaimHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
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
func (h *ClaimHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func NewClaimHandler(flow businessflow.ClaimFlow) ClaimHandlerInterface {
	return &ClaimHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

// mapClaimError translates the ordered validation failures to HTTP statuses.
// Coverage failures carry the exact message from the flow so the response
// body matches what downstream integrations key on.
func (h *ClaimHandler) mapClaimError(c fiber.Ctx, err error) error {
	switch {
	case businessflow.IsMemberNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Member not found", "MEMBER_NOT_FOUND", nil)
	case businessflow.IsInstitutionNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Institution not found", "INSTITUTION_NOT_FOUND", nil)
	case businessflow.IsInstitutionNotApproved(err):
		return h.ErrorResponse(c, fiber.StatusForbidden, "Institution is not approved", "INSTITUTION_NOT_APPROVED", nil)
	case businessflow.IsPersonnelNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Personnel not found", "PERSONNEL_NOT_FOUND", nil)
	case businessflow.IsPersonnelMismatch(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Personnel does not belong to the institution", "PERSONNEL_MISMATCH", nil)
	case businessflow.IsPersonnelNotApproved(err):
		return h.ErrorResponse(c, fiber.StatusForbidden, "Personnel is not approved", "PERSONNEL_NOT_APPROVED", nil)
	case businessflow.IsBenefitNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Benefit not found", "BENEFIT_NOT_FOUND", nil)
	case businessflow.IsNoActivePeriod(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "No active period", "NO_ACTIVE_PERIOD", nil)
	case businessflow.IsNoPremiumForPeriod(err):
		return h.ErrorResponse(c, fiber.StatusForbidden, "Company has no premium for the period", "NO_PREMIUM_FOR_PERIOD", nil)
	case businessflow.IsBenefitNotCovered(err):
		return h.ErrorResponse(c, fiber.StatusForbidden, businessflow.BenefitNotCoveredMessage, "BENEFIT_NOT_COVERED", nil)
	case businessflow.IsProcedureNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Procedure not found", "PROCEDURE_NOT_FOUND", nil)
	case businessflow.IsInvalidClaimAmount(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Claim amount must be positive", "INVALID_CLAIM_AMOUNT", nil)
	case businessflow.IsInvalidQuantity(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Procedure quantity must be positive", "INVALID_QUANTITY", nil)
	}
	log.Println("Claim submission failed", err)
	return h.ErrorResponse(c, fiber.StatusInternalServerError, "Claim submission failed", "CLAIM_SUBMISSION_FAILED", nil)
}

// SubmitClaim files a claim with a flat amount
func (h *ClaimHandler) SubmitClaim(c fiber.Ctx) error {
	var req dto.SubmitClaimRequest
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
	result, err := h.flow.SubmitClaim(h.createRequestContext(c, "/api/v1/claims"), &req, metadata)
	if err != nil {
		return h.mapClaimError(c, err)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Claim submitted", result)
}

// SubmitClaimWithProcedures files a claim priced from itemized procedures
func (h *ClaimHandler) SubmitClaimWithProcedures(c fiber.Ctx) error {
	var req dto.SubmitClaimWithProceduresRequest
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
	result, err := h.flow.SubmitClaimWithProcedures(h.createRequestContext(c, "/api/v1/claims-with-procedures"), &req, metadata)
	if err != nil {
		return h.mapClaimError(c, err)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Claim submitted", result)
}

// ApproveClaim records an approval decision on a submitted claim
func (h *ClaimHandler) ApproveClaim(c fiber.Ctx) error {
	return h.decide(c, "/api/v1/claims/:uuid/approve", h.flow.ApproveClaim, "Claim approved")
}

// RejectClaim records a rejection decision on a submitted claim
func (h *ClaimHandler) RejectClaim(c fiber.Ctx) error {
	return h.decide(c, "/api/v1/claims/:uuid/reject", h.flow.RejectClaim, "Claim rejected")
}

type decisionFunc func(ctx context.Context, claimUUID string, req *dto.ClaimDecisionRequest, adminID uint, metadata *businessflow.ClientMetadata) (*dto.ClaimDTO, error)

func (h *ClaimHandler) decide(c fiber.Ctx, endpoint string, fn decisionFunc, successMsg string) error {
	claimUUID := c.Params("uuid")
	if claimUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Claim UUID is required", "INVALID_REQUEST", nil)
	}

	adminID, ok := c.Locals("admin_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Admin not authenticated", "UNAUTHORIZED", nil)
	}

	var req dto.ClaimDecisionRequest
	if len(c.Body()) > 0 {
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
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	result, err := fn(h.createRequestContext(c, endpoint), claimUUID, &req, adminID, metadata)
	if err != nil {
		if businessflow.IsClaimNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Claim not found", "CLAIM_NOT_FOUND", nil)
		}
		if businessflow.IsClaimAlreadyDecided(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Claim has already been decided", "CLAIM_ALREADY_DECIDED", nil)
		}
		log.Println("Claim decision failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Claim decision failed", "CLAIM_DECISION_FAILED", nil)
	}

	middleware.ObserveClaimAdjudicated(result.Status)
	return h.SuccessResponse(c, fiber.StatusOK, successMsg, result)
}

// createRequestContext mirrors other handlers for request-scoped values
func (h *ClaimHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *ClaimHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
