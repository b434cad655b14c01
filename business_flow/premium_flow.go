package businessflow

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/coverbase/coverbase/app/dto"
	"github.com/coverbase/coverbase/app/services"
	"github.com/coverbase/coverbase/models"
	"github.com/coverbase/coverbase/repository"
	"github.com/coverbase/coverbase/utils"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// CategoryCounts holds the roster breakdown by billing category
type CategoryCounts struct {
	Principal    int
	Spouse       int
	Child        int
	SpecialNeeds int
}

// Get returns the count for a billing category
func (c CategoryCounts) Get(category string) int {
	switch category {
	case models.CategoryPrincipal:
		return c.Principal
	case models.CategorySpouse:
		return c.Spouse
	case models.CategoryChild:
		return c.Child
	case models.CategorySpecialNeeds:
		return c.SpecialNeeds
	}
	return 0
}

// Apply returns a copy with the category count shifted by delta, floored at zero
func (c CategoryCounts) Apply(category string, delta int) CategoryCounts {
	shifted := c
	switch category {
	case models.CategoryPrincipal:
		shifted.Principal += delta
	case models.CategorySpouse:
		shifted.Spouse += delta
	case models.CategoryChild:
		shifted.Child += delta
	case models.CategorySpecialNeeds:
		shifted.SpecialNeeds += delta
	}
	if shifted.Principal < 0 {
		shifted.Principal = 0
	}
	if shifted.Spouse < 0 {
		shifted.Spouse = 0
	}
	if shifted.Child < 0 {
		shifted.Child = 0
	}
	if shifted.SpecialNeeds < 0 {
		shifted.SpecialNeeds = 0
	}
	return shifted
}

// CountCategories classifies roster members into billing categories.
// Parent and guardian dependents fall outside every category.
func CountCategories(members []*models.Member) CategoryCounts {
	var counts CategoryCounts
	for _, member := range members {
		switch member.BillingCategory() {
		case models.CategoryPrincipal:
			counts.Principal++
		case models.CategorySpouse:
			counts.Spouse++
		case models.CategoryChild:
			counts.Child++
		case models.CategorySpecialNeeds:
			counts.SpecialNeeds++
		}
	}
	return counts
}

// ComputePremium applies the rate card to category counts:
// subtotal = sum of count*rate, tax = subtotal*taxRate, total = subtotal+tax
func ComputePremium(counts CategoryCounts, rate *models.PremiumRate) (subtotal, tax, total float64) {
	subtotal = float64(counts.Principal)*rate.PrincipalRate +
		float64(counts.Spouse)*rate.SpouseRate +
		float64(counts.Child)*rate.ChildRate +
		float64(counts.SpecialNeeds)*rate.SpecialNeedsRate
	tax = subtotal * rate.TaxRate
	total = subtotal + tax
	return subtotal, tax, total
}

// ProRataFactor returns the fraction of the billing year remaining between
// today and the period end, floored at zero
func ProRataFactor(today, periodEnd time.Time) float64 {
	remaining := utils.DaysBetween(today, periodEnd)
	if remaining <= 0 {
		return 0
	}
	return float64(remaining) / utils.DaysInYear
}

// packageAnchor resolves the premium that benefit packages attach to:
// the nearest non-adjustment premium walking back through the chain.
// Adjustments inherit the package of their ancestor.
func packageAnchor(ctx context.Context, premiumRepo repository.PremiumRepository, premium *models.Premium) (*models.Premium, error) {
	anchor := premium
	for anchor.IsAdjustment && anchor.PreviousPremiumID != nil {
		prev, err := premiumRepo.ByID(ctx, *anchor.PreviousPremiumID)
		if err != nil {
			return nil, NewBusinessError("PREMIUM_LOOKUP_FAILED", "Failed to walk premium chain", err)
		}
		if prev == nil {
			break
		}
		anchor = prev
	}
	return anchor, nil
}

// PremiumFlow represents premium calculation, adjustment, and reporting
type PremiumFlow interface {
	CalculatePremium(ctx context.Context, req *dto.CalculatePremiumRequest, metadata *ClientMetadata) (*dto.PremiumDTO, error)
	AdjustForMemberChange(ctx context.Context, company *models.Company, category string, delta int, metadata *ClientMetadata) (*dto.PremiumDTO, error)
	GetPremiumHistory(ctx context.Context, companyUUID string) (*dto.PremiumHistoryResponse, error)
	ExportStatement(ctx context.Context, premiumUUID string) (string, []byte, error)
}

// PremiumFlowImpl implements PremiumFlow
type PremiumFlowImpl struct {
	companyRepo        repository.CompanyRepository
	memberRepo         repository.MemberRepository
	premiumRepo        repository.PremiumRepository
	companyBenefitRepo repository.CompanyBenefitRepository
	auditRepo          repository.AuditLogRepository
	periodFlow         PeriodFlow
	notifier           services.NotificationService
	db                 *gorm.DB
}

func NewPremiumFlow(
	companyRepo repository.CompanyRepository,
	memberRepo repository.MemberRepository,
	premiumRepo repository.PremiumRepository,
	companyBenefitRepo repository.CompanyBenefitRepository,
	auditRepo repository.AuditLogRepository,
	periodFlow PeriodFlow,
	notifier services.NotificationService,
	db *gorm.DB,
) PremiumFlow {
	return &PremiumFlowImpl{
		companyRepo:        companyRepo,
		memberRepo:         memberRepo,
		premiumRepo:        premiumRepo,
		companyBenefitRepo: companyBenefitRepo,
		auditRepo:          auditRepo,
		periodFlow:         periodFlow,
		notifier:           notifier,
		db:                 db,
	}
}

// CalculatePremium runs the full calculation for a company against the
// requested period (or the active one) and appends a fresh Premium row.
func (f *PremiumFlowImpl) CalculatePremium(ctx context.Context, req *dto.CalculatePremiumRequest, metadata *ClientMetadata) (*dto.PremiumDTO, error) {
	company, err := f.companyRepo.ByUUID(ctx, req.CompanyUUID)
	if err != nil {
		return nil, NewBusinessError("COMPANY_LOOKUP_FAILED", "Failed to look up company", err)
	}
	if company == nil {
		return nil, NewBusinessError("COMPANY_NOT_FOUND", "Company not found", ErrCompanyNotFound)
	}

	period, err := f.periodFlow.ResolvePeriod(ctx, req.PeriodUUID)
	if err != nil {
		return nil, err
	}

	premium, err := f.calculateFull(ctx, company, period)
	if err != nil {
		_ = createAuditLog(ctx, f.auditRepo, &company.ID, models.AuditActionPremiumCalculated, "Premium calculation failed", false, utils.ToPtr(err.Error()), metadata)
		return nil, err
	}

	msg := fmt.Sprintf("Premium %s issued, total %.2f", premium.UUID, premium.Total)
	_ = createAuditLog(ctx, f.auditRepo, &company.ID, models.AuditActionPremiumCalculated, msg, true, nil, metadata)

	if f.notifier != nil {
		mobile := ""
		if company.ContactMobile != nil {
			mobile = *company.ContactMobile
		}
		_ = f.notifier.NotifyPremiumIssued(company.ContactEmail, mobile, company.Name, premium.Total)
	}

	result := ToPremiumDTO(*premium)
	return &result, nil
}

// calculateFull is Contract A: classify the roster, apply the rate card,
// supersede the previous premium, and append the new row.
func (f *PremiumFlowImpl) calculateFull(ctx context.Context, company *models.Company, period *models.Period) (*models.Premium, error) {
	rate, err := f.periodFlow.ResolveRateCard(ctx, period.ID)
	if err != nil {
		return nil, err
	}

	members, err := f.memberRepo.ListActiveByCompany(ctx, company.ID)
	if err != nil {
		return nil, NewBusinessError("ROSTER_LOOKUP_FAILED", "Failed to load company roster", err)
	}
	counts := CountCategories(members)
	subtotal, tax, total := ComputePremium(counts, rate)

	premium := &models.Premium{
		CompanyID:         company.ID,
		PeriodID:          period.ID,
		PrincipalCount:    counts.Principal,
		SpouseCount:       counts.Spouse,
		ChildCount:        counts.Child,
		SpecialNeedsCount: counts.SpecialNeeds,
		Subtotal:          subtotal,
		Tax:               tax,
		Total:             total,
		Status:            models.PremiumStatusActive,
		IssuedDate:        utils.UTCNow(),
		CreatedAt:         utils.UTCNow(),
		UpdatedAt:         utils.UTCNow(),
	}

	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		previous, err := f.premiumRepo.LatestForCompanyPeriod(txCtx, company.ID, period.ID)
		if err != nil {
			return NewBusinessError("PREMIUM_LOOKUP_FAILED", "Failed to look up premium", err)
		}
		if previous != nil {
			if err := f.premiumRepo.Supersede(txCtx, previous.ID); err != nil {
				return NewBusinessError("PREMIUM_SUPERSEDE_FAILED", "Failed to supersede premium", err)
			}
		}
		if err := f.premiumRepo.Save(txCtx, premium); err != nil {
			return NewBusinessError("PREMIUM_CREATION_FAILED", "Failed to create premium", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return premium, nil
}

// AdjustForMemberChange is Contract B: shift the latest premium's counts
// by delta in the changed category, recompute, and pro-rate the result
// over the remainder of the period. Falls back to a full calculation when
// no prior premium exists. Category "" (parent/guardian dependents) is a
// no-op since those members are not billed.
func (f *PremiumFlowImpl) AdjustForMemberChange(ctx context.Context, company *models.Company, category string, delta int, metadata *ClientMetadata) (*dto.PremiumDTO, error) {
	if category == "" || delta == 0 {
		return nil, nil
	}

	period, err := f.periodFlow.ResolvePeriod(ctx, nil)
	if err != nil {
		return nil, err
	}

	previous, err := f.premiumRepo.LatestForCompanyPeriod(ctx, company.ID, period.ID)
	if err != nil {
		return nil, NewBusinessError("PREMIUM_LOOKUP_FAILED", "Failed to look up premium", err)
	}
	if previous == nil {
		premium, err := f.calculateFull(ctx, company, period)
		if err != nil {
			return nil, err
		}
		result := ToPremiumDTO(*premium)
		return &result, nil
	}

	rate, err := f.periodFlow.ResolveRateCard(ctx, period.ID)
	if err != nil {
		return nil, err
	}

	counts := CategoryCounts{
		Principal:    previous.PrincipalCount,
		Spouse:       previous.SpouseCount,
		Child:        previous.ChildCount,
		SpecialNeeds: previous.SpecialNeedsCount,
	}.Apply(category, delta)
	subtotal, tax, total := ComputePremium(counts, rate)

	today := utils.UTCToday()
	factor := ProRataFactor(today, period.EndDate)
	proRated := total * factor

	premium := &models.Premium{
		CompanyID:         company.ID,
		PeriodID:          period.ID,
		PrincipalCount:    counts.Principal,
		SpouseCount:       counts.Spouse,
		ChildCount:        counts.Child,
		SpecialNeedsCount: counts.SpecialNeeds,
		Subtotal:          subtotal,
		Tax:               tax,
		Total:             total,
		IsAdjustment:      true,
		AdjustmentFactor:  utils.ToPtr(factor),
		ProRatedTotal:     utils.ToPtr(proRated),
		ProRataStartDate:  utils.ToPtr(today),
		ProRataEndDate:    utils.ToPtr(period.EndDate),
		PreviousPremiumID: utils.ToPtr(previous.ID),
		Status:            models.PremiumStatusActive,
		IssuedDate:        utils.UTCNow(),
		CreatedAt:         utils.UTCNow(),
		UpdatedAt:         utils.UTCNow(),
	}

	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		if err := f.premiumRepo.Supersede(txCtx, previous.ID); err != nil {
			return NewBusinessError("PREMIUM_SUPERSEDE_FAILED", "Failed to supersede premium", err)
		}
		if err := f.premiumRepo.Save(txCtx, premium); err != nil {
			return NewBusinessError("PREMIUM_CREATION_FAILED", "Failed to create premium", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("Premium adjusted (%+d %s), pro-rated total %.2f", delta, category, proRated)
	_ = createAuditLog(ctx, f.auditRepo, &company.ID, models.AuditActionPremiumAdjusted, msg, true, nil, metadata)

	result := ToPremiumDTO(*premium)
	return &result, nil
}

// GetPremiumHistory returns the append-only premium chain for the company
// in the active period, oldest first
func (f *PremiumFlowImpl) GetPremiumHistory(ctx context.Context, companyUUID string) (*dto.PremiumHistoryResponse, error) {
	company, err := f.companyRepo.ByUUID(ctx, companyUUID)
	if err != nil {
		return nil, NewBusinessError("COMPANY_LOOKUP_FAILED", "Failed to look up company", err)
	}
	if company == nil {
		return nil, NewBusinessError("COMPANY_NOT_FOUND", "Company not found", ErrCompanyNotFound)
	}

	period, err := f.periodFlow.ResolvePeriod(ctx, nil)
	if err != nil {
		return nil, err
	}

	premiums, err := f.premiumRepo.HistoryForCompanyPeriod(ctx, company.ID, period.ID)
	if err != nil {
		return nil, NewBusinessError("PREMIUM_LOOKUP_FAILED", "Failed to load premium history", err)
	}

	resp := &dto.PremiumHistoryResponse{Premiums: make([]dto.PremiumDTO, 0, len(premiums))}
	for _, premium := range premiums {
		resp.Premiums = append(resp.Premiums, ToPremiumDTO(*premium))
	}
	return resp, nil
}

// ExportStatement renders a premium as an XLSX statement and returns the
// suggested filename with the file bytes
func (f *PremiumFlowImpl) ExportStatement(ctx context.Context, premiumUUID string) (string, []byte, error) {
	premium, err := f.premiumRepo.ByUUID(ctx, premiumUUID)
	if err != nil {
		return "", nil, NewBusinessError("PREMIUM_LOOKUP_FAILED", "Failed to look up premium", err)
	}
	if premium == nil {
		return "", nil, NewBusinessError("PREMIUM_NOT_FOUND", "Premium not found", ErrPremiumNotFound)
	}

	company, err := f.companyRepo.ByID(ctx, premium.CompanyID)
	if err != nil {
		return "", nil, NewBusinessError("COMPANY_LOOKUP_FAILED", "Failed to look up company", err)
	}

	benefits, err := f.companyBenefitRepo.ListByPremium(ctx, premium.ID)
	if err != nil {
		return "", nil, NewBusinessError("BENEFIT_LOOKUP_FAILED", "Failed to load benefit package", err)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := "Statement"
	xl.SetSheetName(xl.GetSheetName(0), sheet)

	companyName := ""
	if company != nil {
		companyName = company.Name
	}

	header := []string{"Field", "Value"}
	_ = xl.SetSheetRow(sheet, "A1", &header)
	rows := [][]string{
		{"Premium", premium.UUID.String()},
		{"Company", companyName},
		{"Issued", premium.IssuedDate.UTC().Format(time.RFC3339)},
		{"Status", premium.Status},
		{"Principals", strconv.Itoa(premium.PrincipalCount)},
		{"Spouses", strconv.Itoa(premium.SpouseCount)},
		{"Children", strconv.Itoa(premium.ChildCount)},
		{"Special needs", strconv.Itoa(premium.SpecialNeedsCount)},
		{"Subtotal", fmt.Sprintf("%.2f", premium.Subtotal)},
		{"Tax", fmt.Sprintf("%.2f", premium.Tax)},
		{"Total", fmt.Sprintf("%.2f", premium.Total)},
		{"Amount due", fmt.Sprintf("%.2f", premium.AmountDue())},
	}
	if premium.IsAdjustment && premium.AdjustmentFactor != nil {
		rows = append(rows, []string{"Adjustment factor", fmt.Sprintf("%.6f", *premium.AdjustmentFactor)})
	}
	for i, row := range rows {
		cellRef, _ := excelize.CoordinatesToCellName(1, i+2)
		_ = xl.SetSheetRow(sheet, cellRef, &row)
	}

	benefitStart := len(rows) + 3
	benefitHeader := []string{"Benefit code", "Benefit name"}
	cellRef, _ := excelize.CoordinatesToCellName(1, benefitStart)
	_ = xl.SetSheetRow(sheet, cellRef, &benefitHeader)
	for i, cb := range benefits {
		if cb.Benefit == nil {
			continue
		}
		record := []string{cb.Benefit.Code, cb.Benefit.Name}
		cellRef, _ := excelize.CoordinatesToCellName(1, benefitStart+1+i)
		_ = xl.SetSheetRow(sheet, cellRef, &record)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}
	filename := fmt.Sprintf("premium_statement_%s.xlsx", premium.UUID)
	return filename, buf.Bytes(), nil
}
