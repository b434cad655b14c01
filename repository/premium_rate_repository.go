package repository

import (
	"context"
	"errors"

	"github.com/coverbase/coverbase/models"
	"gorm.io/gorm"
)

// PremiumRateRepositoryImpl implements PremiumRateRepository interface
type PremiumRateRepositoryImpl struct {
	*BaseRepository[models.PremiumRate, models.PremiumRateFilter]
}

// NewPremiumRateRepository creates a new rate card repository
func NewPremiumRateRepository(db *gorm.DB) PremiumRateRepository {
	return &PremiumRateRepositoryImpl{
		BaseRepository: NewBaseRepository[models.PremiumRate, models.PremiumRateFilter](db),
	}
}

// ByPeriodID retrieves the rate card attached to a period
func (r *PremiumRateRepositoryImpl) ByPeriodID(ctx context.Context, periodID uint) (*models.PremiumRate, error) {
	db := r.getDB(ctx)

	var rate models.PremiumRate
	err := db.Where("period_id = ?", periodID).Last(&rate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &rate, nil
}

// applyFilter applies filter criteria to a GORM query
func (r *PremiumRateRepositoryImpl) applyFilter(query *gorm.DB, filter models.PremiumRateFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.PeriodID != nil {
		query = query.Where("period_id = ?", *filter.PeriodID)
	}
	return query
}

// ByFilter retrieves rate cards based on filter criteria
func (r *PremiumRateRepositoryImpl) ByFilter(ctx context.Context, filter models.PremiumRateFilter, orderBy string, limit, offset int) ([]*models.PremiumRate, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.PremiumRate{})

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

	var rates []*models.PremiumRate
	err := query.Find(&rates).Error
	if err != nil {
		return nil, err
	}

	return rates, nil
}

// Count returns the number of rate cards matching the filter
func (r *PremiumRateRepositoryImpl) Count(ctx context.Context, filter models.PremiumRateFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.PremiumRate{})

	query = r.applyFilter(query, filter)

	var count int64
	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any rate card matching the filter exists
func (r *PremiumRateRepositoryImpl) Exists(ctx context.Context, filter models.PremiumRateFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
