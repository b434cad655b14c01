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

// CompanyHandlerInterface defines the contract for company handlers
type CompanyHandlerInterface interface {
	CreateCompany(c fiber.Ctx) error
	GetCompany(c fiber.Ctx) error
	AssignBenefits(c fiber.Ctx) error
}

// CompanyHandler implements CompanyHandlerInterface
type CompanyHandler struct {
	flow      businessflow.CompanyFlow
	validator *validator.Validate
}

// ErrorResponse standard JSON error
func (h *CompanyHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
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
func (h *CompanyHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func NewCompanyHandler(flow businessflow.CompanyFlow) CompanyHandlerInterface {
	return &CompanyHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

// CreateCompany registers a new corporate client
func (h *CompanyHandler) CreateCompany(c fiber.Ctx) error {
	var req dto.CreateCompanyRequest
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
	result, err := h.flow.CreateCompany(h.createRequestContext(c, "/api/v1/companies"), &req, metadata)
	if err != nil {
		if businessflow.IsCompanyAlreadyExists(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Company already exists", "COMPANY_EXISTS", nil)
		}
		log.Println("Company creation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Company creation failed", "COMPANY_CREATION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Company created", result)
}

// GetCompany returns a company by UUID
func (h *CompanyHandler) GetCompany(c fiber.Ctx) error {
	companyUUID := c.Params("uuid")
	if companyUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Company UUID is required", "INVALID_REQUEST", nil)
	}

	result, err := h.flow.GetCompany(h.createRequestContext(c, "/api/v1/companies/:uuid"), companyUUID)
	if err != nil {
		if businessflow.IsCompanyNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Company not found", "COMPANY_NOT_FOUND", nil)
		}
		log.Println("Company lookup failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Company lookup failed", "COMPANY_LOOKUP_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Company retrieved", result)
}

// AssignBenefits attaches a benefit package to the company's current premium
func (h *CompanyHandler) AssignBenefits(c fiber.Ctx) error {
	companyUUID := c.Params("uuid")
	if companyUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Company UUID is required", "INVALID_REQUEST", nil)
	}

	var req dto.AssignBenefitsRequest
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
	result, err := h.flow.AssignBenefitPackage(h.createRequestContext(c, "/api/v1/companies/:uuid/benefits"), companyUUID, &req, metadata)
	if err != nil {
		if businessflow.IsCompanyNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Company not found", "COMPANY_NOT_FOUND", nil)
		}
		if businessflow.IsBenefitNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Benefit not found", "BENEFIT_NOT_FOUND", nil)
		}
		if businessflow.IsNoActivePeriod(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "No active period", "NO_ACTIVE_PERIOD", nil)
		}
		if businessflow.IsNoPremiumForPeriod(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Company has no premium for the active period", "NO_PREMIUM_FOR_PERIOD", nil)
		}
		log.Println("Benefit assignment failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Benefit assignment failed", "BENEFIT_ASSIGNMENT_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Benefit package assigned", result)
}

// createRequestContext mirrors other handlers for request-scoped values
func (h *CompanyHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *CompanyHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
