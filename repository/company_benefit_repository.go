package repository

import (
	"context"

	"github.com/coverbase/coverbase/models"
	"gorm.io/gorm"
)

// CompanyBenefitRepositoryImpl implements CompanyBenefitRepository interface
type CompanyBenefitRepositoryImpl struct {
	*BaseRepository[models.CompanyBenefit, models.CompanyBenefitFilter]
}

// NewCompanyBenefitRepository creates a new company benefit repository
func NewCompanyBenefitRepository(db *gorm.DB) CompanyBenefitRepository {
	return &CompanyBenefitRepositoryImpl{
		BaseRepository: NewBaseRepository[models.CompanyBenefit, models.CompanyBenefitFilter](db),
	}
}

// ListByPremium retrieves the benefit package rows attached to a premium
func (r *CompanyBenefitRepositoryImpl) ListByPremium(ctx context.Context, premiumID uint) ([]*models.CompanyBenefit, error) {
	db := r.getDB(ctx)

	var rows []*models.CompanyBenefit
	err := db.Where("premium_id = ?", premiumID).
		Preload("Benefit").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	return rows, nil
}

// ExistsForPremium checks whether a benefit is included in the package
// attached to a premium
func (r *CompanyBenefitRepositoryImpl) ExistsForPremium(ctx context.Context, premiumID, benefitID uint) (bool, error) {
	filter := models.CompanyBenefitFilter{PremiumID: &premiumID, BenefitID: &benefitID}
	return r.Exists(ctx, filter)
}

// applyFilter applies filter criteria to a GORM query
func (r *CompanyBenefitRepositoryImpl) applyFilter(query *gorm.DB, filter models.CompanyBenefitFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.CompanyID != nil {
		query = query.Where("company_id = ?", *filter.CompanyID)
	}
	if filter.PremiumID != nil {
		query = query.Where("premium_id = ?", *filter.PremiumID)
	}
	if filter.BenefitID != nil {
		query = query.Where("benefit_id = ?", *filter.BenefitID)
	}
	return query
}

// ByFilter retrieves company benefit rows based on filter criteria
func (r *CompanyBenefitRepositoryImpl) ByFilter(ctx context.Context, filter models.CompanyBenefitFilter, orderBy string, limit, offset int) ([]*models.CompanyBenefit, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.CompanyBenefit{})

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "id DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.CompanyBenefit
	err := query.Find(&rows).Error
	if err != nil {
		return nil, err
	}

	return rows, nil
}

// Count returns the number of company benefit rows matching the filter
func (r *CompanyBenefitRepositoryImpl) Count(ctx context.Context, filter models.CompanyBenefitFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.CompanyBenefit{})

	query = r.applyFilter(query, filter)

	var count int64
	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any company benefit row matching the filter exists
func (r *CompanyBenefitRepositoryImpl) Exists(ctx context.Context, filter models.CompanyBenefitFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
