package repository

import (
	"context"

	"github.com/coverbase/coverbase/models"
	"github.com/coverbase/coverbase/utils"
	"gorm.io/gorm"
)

// CompanyRepositoryImpl implements CompanyRepository interface
type CompanyRepositoryImpl struct {
	*BaseRepository[models.Company, models.CompanyFilter]
}

// NewCompanyRepository creates a new company repository
func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &CompanyRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Company, models.CompanyFilter](db),
	}
}

// ByUUID retrieves a company by UUID
func (r *CompanyRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.Company, error) {
	parsedUUID, err := utils.ParseUUID(uuid)
	if err != nil {
		return nil, err
	}

	filter := models.CompanyFilter{UUID: &parsedUUID}
	companies, err := r.ByFilter(ctx, filter, "", 1, 0)
	if err != nil {
		return nil, err
	}

	if len(companies) == 0 {
		return nil, nil
	}

	return companies[0], nil
}

// ByName retrieves a company by exact name
func (r *CompanyRepositoryImpl) ByName(ctx context.Context, name string) (*models.Company, error) {
	filter := models.CompanyFilter{Name: &name}
	companies, err := r.ByFilter(ctx, filter, "", 1, 0)
	if err != nil {
		return nil, err
	}

	if len(companies) == 0 {
		return nil, nil
	}

	return companies[0], nil
}

// applyFilter applies filter criteria to a GORM query
func (r *CompanyRepositoryImpl) applyFilter(query *gorm.DB, filter models.CompanyFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.Name != nil {
		query = query.Where("name = ?", *filter.Name)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves companies based on filter criteria
func (r *CompanyRepositoryImpl) ByFilter(ctx context.Context, filter models.CompanyFilter, orderBy string, limit, offset int) ([]*models.Company, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Company{})

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

	var companies []*models.Company
	err := query.Find(&companies).Error
	if err != nil {
		return nil, err
	}

	return companies, nil
}

// Count returns the number of companies matching the filter
func (r *CompanyRepositoryImpl) Count(ctx context.Context, filter models.CompanyFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Company{})

	query = r.applyFilter(query, filter)

	var count int64
	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any company matching the filter exists
func (r *CompanyRepositoryImpl) Exists(ctx context.Context, filter models.CompanyFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
