package repository

import (
	"context"

	"github.com/coverbase/coverbase/models"
	"github.com/coverbase/coverbase/utils"
	"gorm.io/gorm"
)

// BenefitRepositoryImpl implements BenefitRepository interface
type BenefitRepositoryImpl struct {
	*BaseRepository[models.Benefit, models.BenefitFilter]
}

// NewBenefitRepository creates a new benefit repository
func NewBenefitRepository(db *gorm.DB) BenefitRepository {
	return &BenefitRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Benefit, models.BenefitFilter](db),
	}
}

// ByUUID retrieves a benefit by UUID
func (r *BenefitRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.Benefit, error) {
	parsedUUID, err := utils.ParseUUID(uuid)
	if err != nil {
		return nil, err
	}

	filter := models.BenefitFilter{UUID: &parsedUUID}
	benefits, err := r.ByFilter(ctx, filter, "", 1, 0)
	if err != nil {
		return nil, err
	}

	if len(benefits) == 0 {
		return nil, nil
	}

	return benefits[0], nil
}

// ByCode retrieves a benefit by its catalog code
func (r *BenefitRepositoryImpl) ByCode(ctx context.Context, code string) (*models.Benefit, error) {
	filter := models.BenefitFilter{Code: &code}
	benefits, err := r.ByFilter(ctx, filter, "", 1, 0)
	if err != nil {
		return nil, err
	}

	if len(benefits) == 0 {
		return nil, nil
	}

	return benefits[0], nil
}

// applyFilter applies filter criteria to a GORM query
func (r *BenefitRepositoryImpl) applyFilter(query *gorm.DB, filter models.BenefitFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.Code != nil {
		query = query.Where("code = ?", *filter.Code)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	return query
}

// ByFilter retrieves benefits based on filter criteria
func (r *BenefitRepositoryImpl) ByFilter(ctx context.Context, filter models.BenefitFilter, orderBy string, limit, offset int) ([]*models.Benefit, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Benefit{})

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

	var benefits []*models.Benefit
	err := query.Find(&benefits).Error
	if err != nil {
		return nil, err
	}

	return benefits, nil
}

// Count returns the number of benefits matching the filter
func (r *BenefitRepositoryImpl) Count(ctx context.Context, filter models.BenefitFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Benefit{})

	query = r.applyFilter(query, filter)

	var count int64
	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any benefit matching the filter exists
func (r *BenefitRepositoryImpl) Exists(ctx context.Context, filter models.BenefitFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
