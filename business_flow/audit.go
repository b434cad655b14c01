package businessflow

import (
	"context"

	"github.com/coverbase/coverbase/models"
	"github.com/coverbase/coverbase/repository"
	"github.com/coverbase/coverbase/utils"
)

// createAuditLog records an audit entry. Callers deliberately ignore the
// returned error: auditing never blocks the business operation.
func createAuditLog(ctx context.Context, auditRepo repository.AuditLogRepository, companyID *uint, action, description string, success bool, errorMsg *string, metadata *ClientMetadata) error {
	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		CompanyID:    companyID,
		Action:       action,
		Description:  &description,
		Success:      utils.ToPtr(success),
		IPAddress:    &ipAddress,
		UserAgent:    &userAgent,
		ErrorMessage: errorMsg,
	}

	// Extract request ID from context if available
	requestID := ctx.Value(RequestIDKey)
	if requestID != nil {
		requestIDStr, ok := requestID.(string)
		if ok {
			audit.RequestID = &requestIDStr
		}
	}

	return auditRepo.Save(ctx, audit)
}
