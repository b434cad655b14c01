package repository

import (
	"context"

	"github.com/coverbase/coverbase/models"
	"github.com/coverbase/coverbase/utils"
	"gorm.io/gorm"
)

// PersonnelRepositoryImpl implements PersonnelRepository interface
type PersonnelRepositoryImpl struct {
	*BaseRepository[models.Personnel, models.PersonnelFilter]
}

// NewPersonnelRepository creates a new personnel repository
func NewPersonnelRepository(db *gorm.DB) PersonnelRepository {
	return &PersonnelRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Personnel, models.PersonnelFilter](db),
	}
}

// ByUUID retrieves a personnel record by UUID
func (r *PersonnelRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.Personnel, error) {
	parsedUUID, err := utils.ParseUUID(uuid)
	if err != nil {
		return nil, err
	}

	filter := models.PersonnelFilter{UUID: &parsedUUID}
	personnel, err := r.ByFilter(ctx, filter, "", 1, 0)
	if err != nil {
		return nil, err
	}

	if len(personnel) == 0 {
		return nil, nil
	}

	return personnel[0], nil
}

// applyFilter applies filter criteria to a GORM query
func (r *PersonnelRepositoryImpl) applyFilter(query *gorm.DB, filter models.PersonnelFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.InstitutionID != nil {
		query = query.Where("institution_id = ?", *filter.InstitutionID)
	}
	if filter.LicenseNumber != nil {
		query = query.Where("license_number = ?", *filter.LicenseNumber)
	}
	if filter.ApprovalStatus != nil {
		query = query.Where("approval_status = ?", *filter.ApprovalStatus)
	}
	return query
}

// ByFilter retrieves personnel based on filter criteria
func (r *PersonnelRepositoryImpl) ByFilter(ctx context.Context, filter models.PersonnelFilter, orderBy string, limit, offset int) ([]*models.Personnel, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Personnel{})

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

	var personnel []*models.Personnel
	err := query.Find(&personnel).Error
	if err != nil {
		return nil, err
	}

	return personnel, nil
}

// Count returns the number of personnel matching the filter
func (r *PersonnelRepositoryImpl) Count(ctx context.Context, filter models.PersonnelFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Personnel{})

	query = r.applyFilter(query, filter)

	var count int64
	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any personnel matching the filter exists
func (r *PersonnelRepositoryImpl) Exists(ctx context.Context, filter models.PersonnelFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
