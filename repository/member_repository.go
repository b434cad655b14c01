package repository

import (
	"context"

	"github.com/coverbase/coverbase/models"
	"github.com/coverbase/coverbase/utils"
	"gorm.io/gorm"
)

// MemberRepositoryImpl implements MemberRepository interface
type MemberRepositoryImpl struct {
	*BaseRepository[models.Member, models.MemberFilter]
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &MemberRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Member, models.MemberFilter](db),
	}
}

// ByUUID retrieves a member by UUID
func (r *MemberRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.Member, error) {
	parsedUUID, err := utils.ParseUUID(uuid)
	if err != nil {
		return nil, err
	}

	filter := models.MemberFilter{UUID: &parsedUUID}
	members, err := r.ByFilter(ctx, filter, "", 1, 0)
	if err != nil {
		return nil, err
	}

	if len(members) == 0 {
		return nil, nil
	}

	return members[0], nil
}

// ListActiveByCompany retrieves the current roster of a company. Soft
// deleted members are excluded by GORM's default scope.
func (r *MemberRepositoryImpl) ListActiveByCompany(ctx context.Context, companyID uint) ([]*models.Member, error) {
	db := r.getDB(ctx)

	var members []*models.Member
	err := db.Where("company_id = ?", companyID).
		Order("id ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}

	return members, nil
}

// ListDependentsOf retrieves the active dependents attached to a principal
func (r *MemberRepositoryImpl) ListDependentsOf(ctx context.Context, principalID uint) ([]*models.Member, error) {
	db := r.getDB(ctx)

	var members []*models.Member
	err := db.Where("principal_id = ?", principalID).
		Order("id ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}

	return members, nil
}

// HasDependents checks whether a principal still has active dependents
func (r *MemberRepositoryImpl) HasDependents(ctx context.Context, principalID uint) (bool, error) {
	db := r.getDB(ctx)

	var count int64
	err := db.Model(&models.Member{}).
		Where("principal_id = ?", principalID).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// SoftDelete removes a member from the roster while keeping the row for history
func (r *MemberRepositoryImpl) SoftDelete(ctx context.Context, memberID uint) error {
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

	err = db.Delete(&models.Member{}, memberID).Error
	return err
}

// applyFilter applies filter criteria to a GORM query
func (r *MemberRepositoryImpl) applyFilter(query *gorm.DB, filter models.MemberFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.CompanyID != nil {
		query = query.Where("company_id = ?", *filter.CompanyID)
	}
	if filter.MemberType != nil {
		query = query.Where("member_type = ?", *filter.MemberType)
	}
	if filter.DependentType != nil {
		query = query.Where("dependent_type = ?", *filter.DependentType)
	}
	if filter.PrincipalID != nil {
		query = query.Where("principal_id = ?", *filter.PrincipalID)
	}
	if filter.HasDisability != nil {
		query = query.Where("has_disability = ?", *filter.HasDisability)
	}
	return query
}

// ByFilter retrieves members based on filter criteria
func (r *MemberRepositoryImpl) ByFilter(ctx context.Context, filter models.MemberFilter, orderBy string, limit, offset int) ([]*models.Member, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Member{})

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

	var members []*models.Member
	err := query.Find(&members).Error
	if err != nil {
		return nil, err
	}

	return members, nil
}

// Count returns the number of members matching the filter
func (r *MemberRepositoryImpl) Count(ctx context.Context, filter models.MemberFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Member{})

	query = r.applyFilter(query, filter)

	var count int64
	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any member matching the filter exists
func (r *MemberRepositoryImpl) Exists(ctx context.Context, filter models.MemberFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
