package repository

import (
	"context"
	"errors"

	"github.com/coverbase/coverbase/models"
	"github.com/coverbase/coverbase/utils"
	"gorm.io/gorm"
)

// PremiumRepositoryImpl implements PremiumRepository interface
type PremiumRepositoryImpl struct {
	*BaseRepository[models.Premium, models.PremiumFilter]
}

// NewPremiumRepository creates a new premium repository
func NewPremiumRepository(db *gorm.DB) PremiumRepository {
	return &PremiumRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Premium, models.PremiumFilter](db),
	}
}

// ByUUID retrieves a premium by UUID
func (r *PremiumRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.Premium, error) {
	parsedUUID, err := utils.ParseUUID(uuid)
	if err != nil {
		return nil, err
	}

	filter := models.PremiumFilter{UUID: &parsedUUID}
	premiums, err := r.ByFilter(ctx, filter, "", 1, 0)
	if err != nil {
		return nil, err
	}

	if len(premiums) == 0 {
		return nil, nil
	}

	return premiums[0], nil
}

// LatestForCompanyPeriod retrieves the most recent premium in the chain
// for a company and period, regardless of status
func (r *PremiumRepositoryImpl) LatestForCompanyPeriod(ctx context.Context, companyID, periodID uint) (*models.Premium, error) {
	db := r.getDB(ctx)

	var premium models.Premium
	err := db.Where("company_id = ? AND period_id = ?", companyID, periodID).
		Order("id DESC").
		First(&premium).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &premium, nil
}

// HistoryForCompanyPeriod retrieves the full premium chain for a company
// and period, oldest first
func (r *PremiumRepositoryImpl) HistoryForCompanyPeriod(ctx context.Context, companyID, periodID uint) ([]*models.Premium, error) {
	db := r.getDB(ctx)

	var premiums []*models.Premium
	err := db.Where("company_id = ? AND period_id = ?", companyID, periodID).
		Order("id ASC").
		Find(&premiums).Error
	if err != nil {
		return nil, err
	}

	return premiums, nil
}

// Supersede marks a premium as replaced by a newer calculation. The row
// itself is never mutated beyond its status.
func (r *PremiumRepositoryImpl) Supersede(ctx context.Context, premiumID uint) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Model(&models.Premium{}).
		Where("id = ?", premiumID).
		Updates(map[string]any{
			"status":     models.PremiumStatusSuperseded,
			"updated_at": utils.UTCNow(),
		}).Error
	return err
}

// applyFilter applies filter criteria to a GORM query
func (r *PremiumRepositoryImpl) applyFilter(query *gorm.DB, filter models.PremiumFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.CompanyID != nil {
		query = query.Where("company_id = ?", *filter.CompanyID)
	}
	if filter.PeriodID != nil {
		query = query.Where("period_id = ?", *filter.PeriodID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.IsAdjustment != nil {
		query = query.Where("is_adjustment = ?", *filter.IsAdjustment)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves premiums based on filter criteria
func (r *PremiumRepositoryImpl) ByFilter(ctx context.Context, filter models.PremiumFilter, orderBy string, limit, offset int) ([]*models.Premium, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Premium{})

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

	var premiums []*models.Premium
	err := query.Find(&premiums).Error
	if err != nil {
		return nil, err
	}

	return premiums, nil
}

// Count returns the number of premiums matching the filter
func (r *PremiumRepositoryImpl) Count(ctx context.Context, filter models.PremiumFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Premium{})

	query = r.applyFilter(query, filter)

	var count int64
	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any premium matching the filter exists
func (r *PremiumRepositoryImpl) Exists(ctx context.Context, filter models.PremiumFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
