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

// PremiumHandlerInterface defines the contract for premium handlers
type PremiumHandlerInterface interface {
	CalculatePremium(c fiber.Ctx) error
	GetPremiumHistory(c fiber.Ctx) error
	DownloadStatement(c fiber.Ctx) error
}

// PremiumHandler implements PremiumHandlerInterface
type PremiumHandler struct {
	flow      businessflow.PremiumFlow
	validator *validator.Validate
}

// ErrorResponse standard JSON error
func (h *PremiumHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
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
func (h *PremiumHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func NewPremiumHandler(flow businessflow.PremiumFlow) PremiumHandlerInterface {
	return &PremiumHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

// CalculatePremium runs the full premium calculation for a company
func (h *PremiumHandler) CalculatePremium(c fiber.Ctx) error {
	var req dto.CalculatePremiumRequest
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
	result, err := h.flow.CalculatePremium(h.createRequestContext(c, "/api/v1/premiums/calculate"), &req, metadata)
	if err != nil {
		if businessflow.IsCompanyNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Company not found", "COMPANY_NOT_FOUND", nil)
		}
		if businessflow.IsPeriodNotFound(err) || businessflow.IsNoActivePeriod(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Period not found", "PERIOD_NOT_FOUND", nil)
		}
		if businessflow.IsRateCardNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Rate card not found", "RATE_CARD_NOT_FOUND", nil)
		}
		log.Println("Premium calculation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Premium calculation failed", "PREMIUM_CALCULATION_FAILED", nil)
	}

	middleware.ObservePremiumIssued()
	return h.SuccessResponse(c, fiber.StatusCreated, "Premium calculated", result)
}

// GetPremiumHistory returns the premium chain for a company in the active period
func (h *PremiumHandler) GetPremiumHistory(c fiber.Ctx) error {
	companyUUID := c.Params("uuid")
	if companyUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Company UUID is required", "INVALID_REQUEST", nil)
	}

	result, err := h.flow.GetPremiumHistory(h.createRequestContext(c, "/api/v1/companies/:uuid/premiums"), companyUUID)
	if err != nil {
		if businessflow.IsCompanyNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Company not found", "COMPANY_NOT_FOUND", nil)
		}
		if businessflow.IsNoActivePeriod(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "No active period", "NO_ACTIVE_PERIOD", nil)
		}
		log.Println("Premium history lookup failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Premium history lookup failed", "PREMIUM_LOOKUP_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Premium history retrieved", result)
}

// DownloadStatement streams the premium statement as an XLSX attachment
func (h *PremiumHandler) DownloadStatement(c fiber.Ctx) error {
	premiumUUID := c.Params("uuid")
	if premiumUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Premium UUID is required", "INVALID_REQUEST", nil)
	}

	filename, content, err := h.flow.ExportStatement(h.createRequestContext(c, "/api/v1/premiums/:uuid/statement"), premiumUUID)
	if err != nil {
		if businessflow.IsPremiumNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Premium not found", "PREMIUM_NOT_FOUND", nil)
		}
		log.Println("Statement export failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Statement export failed", "STATEMENT_EXPORT_FAILED", nil)
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(content)
}

// createRequestContext mirrors other handlers for request-scoped values
func (h *PremiumHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *PremiumHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
