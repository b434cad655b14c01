package repository

import (
	"context"
	"errors"

	"github.com/coverbase/coverbase/models"
	"github.com/coverbase/coverbase/utils"
	"gorm.io/gorm"
)

// PeriodRepositoryImpl implements PeriodRepository interface
type PeriodRepositoryImpl struct {
	*BaseRepository[models.Period, models.PeriodFilter]
}

// NewPeriodRepository creates a new period repository
func NewPeriodRepository(db *gorm.DB) PeriodRepository {
	return &PeriodRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Period, models.PeriodFilter](db),
	}
}

// ByUUID retrieves a period by UUID
func (r *PeriodRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.Period, error) {
	parsedUUID, err := utils.ParseUUID(uuid)
	if err != nil {
		return nil, err
	}

	filter := models.PeriodFilter{UUID: &parsedUUID}
	periods, err := r.ByFilter(ctx, filter, "", 1, 0)
	if err != nil {
		return nil, err
	}

	if len(periods) == 0 {
		return nil, nil
	}

	return periods[0], nil
}

// ActivePeriod retrieves the currently open billing period, if any
func (r *PeriodRepositoryImpl) ActivePeriod(ctx context.Context) (*models.Period, error) {
	db := r.getDB(ctx)

	var period models.Period
	err := db.Where("status = ?", models.PeriodStatusActive).
		Order("start_date DESC").
		First(&period).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &period, nil
}

// ClosePeriod marks a period as closed
func (r *PeriodRepositoryImpl) ClosePeriod(ctx context.Context, periodID uint) error {
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

	err = db.Model(&models.Period{}).
		Where("id = ?", periodID).
		Updates(map[string]any{
			"status":     models.PeriodStatusClosed,
			"updated_at": utils.UTCNow(),
		}).Error
	return err
}

// applyFilter applies filter criteria to a GORM query
func (r *PeriodRepositoryImpl) applyFilter(query *gorm.DB, filter models.PeriodFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.StartsAfter != nil {
		query = query.Where("start_date > ?", *filter.StartsAfter)
	}
	if filter.EndsBefore != nil {
		query = query.Where("end_date < ?", *filter.EndsBefore)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	return query
}

// ByFilter retrieves periods based on filter criteria
func (r *PeriodRepositoryImpl) ByFilter(ctx context.Context, filter models.PeriodFilter, orderBy string, limit, offset int) ([]*models.Period, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Period{})

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

	var periods []*models.Period
	err := query.Find(&periods).Error
	if err != nil {
		return nil, err
	}

	return periods, nil
}

// Count returns the number of periods matching the filter
func (r *PeriodRepositoryImpl) Count(ctx context.Context, filter models.PeriodFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Period{})

	query = r.applyFilter(query, filter)

	var count int64
	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any period matching the filter exists
func (r *PeriodRepositoryImpl) Exists(ctx context.Context, filter models.PeriodFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
