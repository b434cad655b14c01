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

// PeriodHandlerInterface defines the contract for period and rate card handlers
type PeriodHandlerInterface interface {
	CreatePeriod(c fiber.Ctx) error
	AttachRateCard(c fiber.Ctx) error
	GetActivePeriod(c fiber.Ctx) error
}

// PeriodHandler implements PeriodHandlerInterface
type PeriodHandler struct {
	flow      businessflow.PeriodFlow
	validator *validator.Validate
}

// ErrorResponse standard JSON error
func (h *PeriodHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
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
func (h *PeriodHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func NewPeriodHandler(flow businessflow.PeriodFlow) PeriodHandlerInterface {
	return &PeriodHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

// CreatePeriod opens a new billing period, closing the current active one
func (h *PeriodHandler) CreatePeriod(c fiber.Ctx) error {
	var req dto.CreatePeriodRequest
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
	result, err := h.flow.CreatePeriod(h.createRequestContext(c, "/api/v1/periods"), &req, metadata)
	if err != nil {
		log.Println("Period creation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Period creation failed", "PERIOD_CREATION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Period created", result)
}

// AttachRateCard binds a rate card to a period
func (h *PeriodHandler) AttachRateCard(c fiber.Ctx) error {
	periodUUID := c.Params("uuid")
	if periodUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Period UUID is required", "INVALID_REQUEST", nil)
	}

	var req dto.CreateRateCardRequest
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
	result, err := h.flow.AttachRateCard(h.createRequestContext(c, "/api/v1/periods/:uuid/rates"), periodUUID, &req, metadata)
	if err != nil {
		if businessflow.IsPeriodNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Period not found", "PERIOD_NOT_FOUND", nil)
		}
		if businessflow.IsRateCardAlreadyExists(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Rate card already exists for period", "RATE_CARD_EXISTS", nil)
		}
		log.Println("Rate card creation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Rate card creation failed", "RATE_CARD_CREATION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Rate card attached", result)
}

// GetActivePeriod returns the currently active period with its rate card
func (h *PeriodHandler) GetActivePeriod(c fiber.Ctx) error {
	result, err := h.flow.ActivePeriod(h.createRequestContext(c, "/api/v1/periods/active"))
	if err != nil {
		if businessflow.IsNoActivePeriod(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "No active period", "NO_ACTIVE_PERIOD", nil)
		}
		log.Println("Active period lookup failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Active period lookup failed", "PERIOD_LOOKUP_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Active period retrieved", result)
}

// createRequestContext mirrors other handlers for request-scoped values
func (h *PeriodHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *PeriodHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
