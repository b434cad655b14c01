// Package businessflow contains the core business logic and use cases for insurance administration workflows
package businessflow

import (
	"context"
	"encoding/json"
	"time"

	"github.com/coverbase/coverbase/app/dto"
	"github.com/coverbase/coverbase/config"
	"github.com/coverbase/coverbase/models"
	"github.com/coverbase/coverbase/repository"
	"github.com/coverbase/coverbase/utils"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// PeriodFlow represents billing period and rate card management
type PeriodFlow interface {
	CreatePeriod(ctx context.Context, req *dto.CreatePeriodRequest, metadata *ClientMetadata) (*dto.PeriodDTO, error)
	AttachRateCard(ctx context.Context, periodUUID string, req *dto.CreateRateCardRequest, metadata *ClientMetadata) (*dto.PeriodDTO, error)
	ActivePeriod(ctx context.Context) (*dto.PeriodDTO, error)

	// Resolvers used by the premium and claim flows
	ResolvePeriod(ctx context.Context, periodUUID *string) (*models.Period, error)
	ResolveRateCard(ctx context.Context, periodID uint) (*models.PremiumRate, error)
}

// PeriodFlowImpl implements PeriodFlow with a Redis read-through cache on
// the hot lookup path. Cache failures fall through to Postgres silently.
type PeriodFlowImpl struct {
	periodRepo  repository.PeriodRepository
	rateRepo    repository.PremiumRateRepository
	auditRepo   repository.AuditLogRepository
	db          *gorm.DB
	rc          *redis.Client
	cacheConfig *config.CacheConfig
}

func NewPeriodFlow(
	periodRepo repository.PeriodRepository,
	rateRepo repository.PremiumRateRepository,
	auditRepo repository.AuditLogRepository,
	db *gorm.DB,
	rc *redis.Client,
	cacheConfig *config.CacheConfig,
) PeriodFlow {
	return &PeriodFlowImpl{
		periodRepo:  periodRepo,
		rateRepo:    rateRepo,
		auditRepo:   auditRepo,
		db:          db,
		rc:          rc,
		cacheConfig: cacheConfig,
	}
}

func redisKey(cfg config.CacheConfig, key string) string {
	if cfg.RedisPrefix == "" {
		return key
	}
	return cfg.RedisPrefix + ":" + key
}

func (f *PeriodFlowImpl) CreatePeriod(ctx context.Context, req *dto.CreatePeriodRequest, metadata *ClientMetadata) (*dto.PeriodDTO, error) {
	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return nil, NewBusinessError("PERIOD_VALIDATION_FAILED", "Invalid start date", err)
	}
	endDate, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return nil, NewBusinessError("PERIOD_VALIDATION_FAILED", "Invalid end date", err)
	}
	if !startDate.Before(endDate) {
		return nil, NewBusinessError("PERIOD_VALIDATION_FAILED", "Start date must precede end date", nil)
	}

	period := &models.Period{
		Name:      req.Name,
		StartDate: startDate,
		EndDate:   endDate,
		Status:    models.PeriodStatusActive,
		CreatedAt: utils.UTCNow(),
		UpdatedAt: utils.UTCNow(),
	}

	// Opening a period closes the previous one: at most one period is
	// active at a time.
	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		current, err := f.periodRepo.ActivePeriod(txCtx)
		if err != nil {
			return NewBusinessError("PERIOD_LOOKUP_FAILED", "Failed to look up active period", err)
		}
		if current != nil {
			if err := f.periodRepo.ClosePeriod(txCtx, current.ID); err != nil {
				return NewBusinessError("PERIOD_CLOSE_FAILED", "Failed to close previous period", err)
			}
		}
		if err := f.periodRepo.Save(txCtx, period); err != nil {
			return NewBusinessError("PERIOD_CREATION_FAILED", "Failed to create period", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	f.invalidateCache(ctx, period.ID)
	_ = createAuditLog(ctx, f.auditRepo, nil, models.AuditActionPeriodOpened, "Period "+period.Name+" opened", true, nil, metadata)

	result := ToPeriodDTO(*period)
	return &result, nil
}

func (f *PeriodFlowImpl) AttachRateCard(ctx context.Context, periodUUID string, req *dto.CreateRateCardRequest, metadata *ClientMetadata) (*dto.PeriodDTO, error) {
	period, err := f.periodRepo.ByUUID(ctx, periodUUID)
	if err != nil {
		return nil, NewBusinessError("PERIOD_LOOKUP_FAILED", "Failed to look up period", err)
	}
	if period == nil {
		return nil, NewBusinessError("PERIOD_NOT_FOUND", "Period not found", ErrPeriodNotFound)
	}

	existing, err := f.rateRepo.ByPeriodID(ctx, period.ID)
	if err != nil {
		return nil, NewBusinessError("RATE_CARD_LOOKUP_FAILED", "Failed to look up rate card", err)
	}
	if existing != nil {
		return nil, NewBusinessError("RATE_CARD_EXISTS", "Rate card already exists for period", ErrRateCardAlreadyExists)
	}

	rate := &models.PremiumRate{
		PeriodID:         period.ID,
		PrincipalRate:    req.PrincipalRate,
		SpouseRate:       req.SpouseRate,
		ChildRate:        req.ChildRate,
		SpecialNeedsRate: req.SpecialNeedsRate,
		TaxRate:          req.TaxRate,
		CreatedAt:        utils.UTCNow(),
		UpdatedAt:        utils.UTCNow(),
	}
	if err := f.rateRepo.Save(ctx, rate); err != nil {
		return nil, NewBusinessError("RATE_CARD_CREATION_FAILED", "Failed to create rate card", err)
	}

	f.invalidateCache(ctx, period.ID)

	period.RateCard = rate
	result := ToPeriodDTO(*period)
	return &result, nil
}

func (f *PeriodFlowImpl) ActivePeriod(ctx context.Context) (*dto.PeriodDTO, error) {
	period, err := f.ResolvePeriod(ctx, nil)
	if err != nil {
		return nil, err
	}

	rate, err := f.ResolveRateCard(ctx, period.ID)
	if err != nil && !IsRateCardNotFound(err) {
		return nil, err
	}
	period.RateCard = rate

	result := ToPeriodDTO(*period)
	return &result, nil
}

// ResolvePeriod returns the period for the given UUID, or the active
// period when none is supplied. The active period lookup is cached.
func (f *PeriodFlowImpl) ResolvePeriod(ctx context.Context, periodUUID *string) (*models.Period, error) {
	if periodUUID != nil {
		period, err := f.periodRepo.ByUUID(ctx, *periodUUID)
		if err != nil {
			return nil, NewBusinessError("PERIOD_LOOKUP_FAILED", "Failed to look up period", err)
		}
		if period == nil {
			return nil, NewBusinessError("PERIOD_NOT_FOUND", "Period not found", ErrPeriodNotFound)
		}
		return period, nil
	}

	if f.rc != nil && f.cacheConfig != nil && f.cacheConfig.Enabled {
		cacheKey := redisKey(*f.cacheConfig, utils.CacheKeyActivePeriod)
		if bs, err := f.rc.Get(ctx, cacheKey).Bytes(); err == nil && len(bs) > 0 {
			var cached models.Period
			if err := json.Unmarshal(bs, &cached); err == nil && cached.ID != 0 {
				return &cached, nil
			}
		}
	}

	period, err := f.periodRepo.ActivePeriod(ctx)
	if err != nil {
		return nil, NewBusinessError("PERIOD_LOOKUP_FAILED", "Failed to look up active period", err)
	}
	if period == nil {
		return nil, NewBusinessError("NO_ACTIVE_PERIOD", "No active period", ErrNoActivePeriod)
	}

	if f.rc != nil && f.cacheConfig != nil && f.cacheConfig.Enabled {
		cacheKey := redisKey(*f.cacheConfig, utils.CacheKeyActivePeriod)
		if bs, err := json.Marshal(period); err == nil {
			_ = f.rc.Set(ctx, cacheKey, bs, f.cacheConfig.DefaultTTL).Err()
		}
	}

	return period, nil
}

// ResolveRateCard returns the rate card for a period, read through the cache
func (f *PeriodFlowImpl) ResolveRateCard(ctx context.Context, periodID uint) (*models.PremiumRate, error) {
	cacheEnabled := f.rc != nil && f.cacheConfig != nil && f.cacheConfig.Enabled
	cacheKey := ""
	if cacheEnabled {
		cacheKey = redisKey(*f.cacheConfig, utils.RateCardCacheKey(periodID))
		if bs, err := f.rc.Get(ctx, cacheKey).Bytes(); err == nil && len(bs) > 0 {
			var cached models.PremiumRate
			if err := json.Unmarshal(bs, &cached); err == nil && cached.ID != 0 {
				return &cached, nil
			}
		}
	}

	rate, err := f.rateRepo.ByPeriodID(ctx, periodID)
	if err != nil {
		return nil, NewBusinessError("RATE_CARD_LOOKUP_FAILED", "Failed to look up rate card", err)
	}
	if rate == nil {
		return nil, NewBusinessError("RATE_CARD_NOT_FOUND", "Rate card not found", ErrRateCardNotFound)
	}

	if cacheEnabled {
		if bs, err := json.Marshal(rate); err == nil {
			_ = f.rc.Set(ctx, cacheKey, bs, f.cacheConfig.DefaultTTL).Err()
		}
	}

	return rate, nil
}

func (f *PeriodFlowImpl) invalidateCache(ctx context.Context, periodID uint) {
	if f.rc == nil || f.cacheConfig == nil || !f.cacheConfig.Enabled {
		return
	}
	_ = f.rc.Del(ctx,
		redisKey(*f.cacheConfig, utils.CacheKeyActivePeriod),
		redisKey(*f.cacheConfig, utils.RateCardCacheKey(periodID)),
	).Err()
}
