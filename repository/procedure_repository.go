package repository

import (
	"context"
	"errors"
	"time"

	"github.com/coverbase/coverbase/models"
	"github.com/coverbase/coverbase/utils"
	"gorm.io/gorm"
)

// ProcedureRepositoryImpl implements ProcedureRepository interface
type ProcedureRepositoryImpl struct {
	*BaseRepository[models.Procedure, models.ProcedureFilter]
}

// NewProcedureRepository creates a new procedure repository
func NewProcedureRepository(db *gorm.DB) ProcedureRepository {
	return &ProcedureRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Procedure, models.ProcedureFilter](db),
	}
}

// ByUUID retrieves a procedure by UUID
func (r *ProcedureRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.Procedure, error) {
	parsedUUID, err := utils.ParseUUID(uuid)
	if err != nil {
		return nil, err
	}

	filter := models.ProcedureFilter{UUID: &parsedUUID}
	procedures, err := r.ByFilter(ctx, filter, "", 1, 0)
	if err != nil {
		return nil, err
	}

	if len(procedures) == 0 {
		return nil, nil
	}

	return procedures[0], nil
}

// ByCode retrieves a procedure by its billing code
func (r *ProcedureRepositoryImpl) ByCode(ctx context.Context, code string) (*models.Procedure, error) {
	filter := models.ProcedureFilter{Code: &code}
	procedures, err := r.ByFilter(ctx, filter, "", 1, 0)
	if err != nil {
		return nil, err
	}

	if len(procedures) == 0 {
		return nil, nil
	}

	return procedures[0], nil
}

// ProviderRate retrieves the negotiated rate in force for an institution
// and procedure at the given time, or nil when none applies
func (r *ProcedureRepositoryImpl) ProviderRate(ctx context.Context, institutionID, procedureID uint, at time.Time) (*models.ProviderProcedureRate, error) {
	db := r.getDB(ctx)

	var rate models.ProviderProcedureRate
	err := db.Where("institution_id = ? AND procedure_id = ?", institutionID, procedureID).
		Where("is_active = ?", true).
		Where("effective_from <= ?", at).
		Where("expires_at IS NULL OR expires_at > ?", at).
		Order("effective_from DESC").
		First(&rate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &rate, nil
}

// SaveProviderRate creates a negotiated provider rate
func (r *ProcedureRepositoryImpl) SaveProviderRate(ctx context.Context, rate *models.ProviderProcedureRate) error {
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

	err = db.Create(rate).Error
	return err
}

// applyFilter applies filter criteria to a GORM query
func (r *ProcedureRepositoryImpl) applyFilter(query *gorm.DB, filter models.ProcedureFilter) *gorm.DB {
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

// ByFilter retrieves procedures based on filter criteria
func (r *ProcedureRepositoryImpl) ByFilter(ctx context.Context, filter models.ProcedureFilter, orderBy string, limit, offset int) ([]*models.Procedure, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Procedure{})

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

	var procedures []*models.Procedure
	err := query.Find(&procedures).Error
	if err != nil {
		return nil, err
	}

	return procedures, nil
}

// Count returns the number of procedures matching the filter
func (r *ProcedureRepositoryImpl) Count(ctx context.Context, filter models.ProcedureFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Procedure{})

	query = r.applyFilter(query, filter)

	var count int64
	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any procedure matching the filter exists
func (r *ProcedureRepositoryImpl) Exists(ctx context.Context, filter models.ProcedureFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
