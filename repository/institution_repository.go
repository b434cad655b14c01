package repository

import (
	"context"

	"github.com/coverbase/coverbase/models"
	"github.com/coverbase/coverbase/utils"
	"gorm.io/gorm"
)

// InstitutionRepositoryImpl implements InstitutionRepository interface
type InstitutionRepositoryImpl struct {
	*BaseRepository[models.Institution, models.InstitutionFilter]
}

// NewInstitutionRepository creates a new institution repository
func NewInstitutionRepository(db *gorm.DB) InstitutionRepository {
	return &InstitutionRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Institution, models.InstitutionFilter](db),
	}
}

// ByUUID retrieves an institution by UUID
func (r *InstitutionRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.Institution, error) {
	parsedUUID, err := utils.ParseUUID(uuid)
	if err != nil {
		return nil, err
	}

	filter := models.InstitutionFilter{UUID: &parsedUUID}
	institutions, err := r.ByFilter(ctx, filter, "", 1, 0)
	if err != nil {
		return nil, err
	}

	if len(institutions) == 0 {
		return nil, nil
	}

	return institutions[0], nil
}

// applyFilter applies filter criteria to a GORM query
func (r *InstitutionRepositoryImpl) applyFilter(query *gorm.DB, filter models.InstitutionFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.Name != nil {
		query = query.Where("name = ?", *filter.Name)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.ApprovalStatus != nil {
		query = query.Where("approval_status = ?", *filter.ApprovalStatus)
	}
	return query
}

// ByFilter retrieves institutions based on filter criteria
func (r *InstitutionRepositoryImpl) ByFilter(ctx context.Context, filter models.InstitutionFilter, orderBy string, limit, offset int) ([]*models.Institution, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Institution{})

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

	var institutions []*models.Institution
	err := query.Find(&institutions).Error
	if err != nil {
		return nil, err
	}

	return institutions, nil
}

// Count returns the number of institutions matching the filter
func (r *InstitutionRepositoryImpl) Count(ctx context.Context, filter models.InstitutionFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Institution{})

	query = r.applyFilter(query, filter)

	var count int64
	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any institution matching the filter exists
func (r *InstitutionRepositoryImpl) Exists(ctx context.Context, filter models.InstitutionFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
