package repository

import (
	"context"
	"time"

	"github.com/coverbase/coverbase/models"
	"github.com/coverbase/coverbase/utils"
	"gorm.io/gorm"
)

// ClaimRepositoryImpl implements ClaimRepository interface
type ClaimRepositoryImpl struct {
	*BaseRepository[models.Claim, models.ClaimFilter]
}

// NewClaimRepository creates a new claim repository
func NewClaimRepository(db *gorm.DB) ClaimRepository {
	return &ClaimRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Claim, models.ClaimFilter](db),
	}
}

// ByUUID retrieves a claim by UUID
func (r *ClaimRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.Claim, error) {
	parsedUUID, err := utils.ParseUUID(uuid)
	if err != nil {
		return nil, err
	}

	filter := models.ClaimFilter{UUID: &parsedUUID}
	claims, err := r.ByFilter(ctx, filter, "", 1, 0)
	if err != nil {
		return nil, err
	}

	if len(claims) == 0 {
		return nil, nil
	}

	return claims[0], nil
}

// CountByMember returns the number of claims filed for a member
func (r *ClaimRepositoryImpl) CountByMember(ctx context.Context, memberID uint) (int64, error) {
	filter := models.ClaimFilter{MemberID: &memberID}
	return r.Count(ctx, filter)
}

// SaveWithProcedures creates a claim and its itemized lines atomically
func (r *ClaimRepositoryImpl) SaveWithProcedures(ctx context.Context, claim *models.Claim, procedures []*models.ClaimProcedure) error {
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

	if err = db.Create(claim).Error; err != nil {
		return err
	}

	for _, proc := range procedures {
		proc.ClaimID = claim.ID
	}
	if len(procedures) > 0 {
		if err = db.CreateInBatches(procedures, 100).Error; err != nil {
			return err
		}
	}

	return nil
}

// UpdateStatus records an adjudication decision on a claim
func (r *ClaimRepositoryImpl) UpdateStatus(ctx context.Context, claimID uint, status string, decidedBy uint, reason *string, at time.Time) error {
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

	err = db.Model(&models.Claim{}).
		Where("id = ?", claimID).
		Updates(map[string]any{
			"status":          status,
			"decided_at":      at,
			"decided_by":      decidedBy,
			"decision_reason": reason,
			"updated_at":      utils.UTCNow(),
		}).Error
	return err
}

// ListProcedures retrieves the itemized lines of a claim
func (r *ClaimRepositoryImpl) ListProcedures(ctx context.Context, claimID uint) ([]*models.ClaimProcedure, error) {
	db := r.getDB(ctx)

	var procedures []*models.ClaimProcedure
	err := db.Where("claim_id = ?", claimID).
		Preload("Procedure").
		Order("id ASC").
		Find(&procedures).Error
	if err != nil {
		return nil, err
	}

	return procedures, nil
}

// ListByMember retrieves claims filed for a member, newest first
func (r *ClaimRepositoryImpl) ListByMember(ctx context.Context, memberID uint, limit, offset int) ([]*models.Claim, error) {
	filter := models.ClaimFilter{MemberID: &memberID}
	return r.ByFilter(ctx, filter, "created_at DESC", limit, offset)
}

// applyFilter applies filter criteria to a GORM query
func (r *ClaimRepositoryImpl) applyFilter(query *gorm.DB, filter models.ClaimFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.MemberID != nil {
		query = query.Where("member_id = ?", *filter.MemberID)
	}
	if filter.BenefitID != nil {
		query = query.Where("benefit_id = ?", *filter.BenefitID)
	}
	if filter.InstitutionID != nil {
		query = query.Where("institution_id = ?", *filter.InstitutionID)
	}
	if filter.PersonnelID != nil {
		query = query.Where("personnel_id = ?", *filter.PersonnelID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.RequiresHigherApproval != nil {
		query = query.Where("requires_higher_approval = ?", *filter.RequiresHigherApproval)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves claims based on filter criteria
func (r *ClaimRepositoryImpl) ByFilter(ctx context.Context, filter models.ClaimFilter, orderBy string, limit, offset int) ([]*models.Claim, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Claim{})

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

	var claims []*models.Claim
	err := query.Find(&claims).Error
	if err != nil {
		return nil, err
	}

	return claims, nil
}

// Count returns the number of claims matching the filter
func (r *ClaimRepositoryImpl) Count(ctx context.Context, filter models.ClaimFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Claim{})

	query = r.applyFilter(query, filter)

	var count int64
	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any claim matching the filter exists
func (r *ClaimRepositoryImpl) Exists(ctx context.Context, filter models.ClaimFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
