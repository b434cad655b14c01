package models

import (
	"encoding/json"
	"time"
)

type AuditLog struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	CompanyID    *uint           `gorm:"index:idx_audit_company_id" json:"company_id,omitempty"`
	Company      *Company        `gorm:"foreignKey:CompanyID;references:ID" json:"company,omitempty"`
	Action       string          `gorm:"size:64;not null;index:idx_audit_action" json:"action"`
	Description  *string         `gorm:"type:text" json:"description,omitempty"`
	IPAddress    *string         `gorm:"type:inet;index:idx_audit_ip_address" json:"ip_address,omitempty"`
	UserAgent    *string         `gorm:"type:text" json:"user_agent,omitempty"`
	RequestID    *string         `gorm:"size:255;index:idx_audit_request_id" json:"request_id,omitempty"`
	Metadata     json.RawMessage `gorm:"type:jsonb;index:idx_audit_metadata,type:gin" json:"metadata,omitempty"`
	Success      *bool           `gorm:"default:true;index:idx_audit_success" json:"success"`
	ErrorMessage *string         `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time       `gorm:"default:CURRENT_TIMESTAMP;index:idx_audit_created_at" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_log"
}

// Audit action constants
const (
	AuditActionPeriodOpened            = "period_opened"
	AuditActionCompanyCreated          = "company_created"
	AuditActionBenefitPackageAssigned  = "benefit_package_assigned"
	AuditActionMemberEnrolled          = "member_enrolled"
	AuditActionMemberRemoved           = "member_removed"
	AuditActionMemberRemovalBlocked    = "member_removal_blocked"
	AuditActionPremiumCalculated       = "premium_calculated"
	AuditActionPremiumAdjusted         = "premium_adjusted"
	AuditActionPremiumAdjustmentFailed = "premium_adjustment_failed"
	AuditActionClaimSubmitted          = "claim_submitted"
	AuditActionClaimApproved           = "claim_approved"
	AuditActionClaimRejected           = "claim_rejected"
	AuditActionAdminLoginSuccess       = "admin_login_success"
	AuditActionAdminLoginFailed        = "admin_login_failed"
)

// AuditLogFilter represents filter criteria for audit log queries
type AuditLogFilter struct {
	ID            *uint
	CompanyID     *uint
	Action        *string
	Success       *bool
	IPAddress     *string
	RequestID     *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

func (a *AuditLog) IsFailed() bool {
	return a.Success != nil && !*a.Success
}
