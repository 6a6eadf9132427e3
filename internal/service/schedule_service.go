package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/booking-api/internal/availability"
	"github.com/noah-isme/booking-api/internal/models"
	appErrors "github.com/noah-isme/booking-api/pkg/errors"
)

type scheduleRepository interface {
	Get(ctx context.Context, businessID string) (models.WeeklySchedule, error)
	Replace(ctx context.Context, businessID string, week models.WeeklySchedule) error
}

// ScheduleService reads and replaces weekly schedules. Reads go through the cache when enabled.
type ScheduleService struct {
	repo       scheduleRepository
	businesses businessFinder
	cache      *ScheduleCache
	logger     *zap.Logger
}

// NewScheduleService creates a ScheduleService. cache may be nil.
func NewScheduleService(repo scheduleRepository, businesses businessFinder, cache *ScheduleCache, logger *zap.Logger) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{repo: repo, businesses: businesses, cache: cache, logger: logger}
}

// Get returns all seven days of a business; unconfigured days come back inactive.
func (s *ScheduleService) Get(ctx context.Context, businessID string) (models.WeeklySchedule, error) {
	if cached, ok := s.cache.Load(ctx, businessID); ok {
		return completeWeek(cached), nil
	}

	week, err := s.repo.Get(ctx, businessID)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to load schedule")
	}
	week = completeWeek(week)
	s.cache.Store(ctx, businessID, week)
	return week, nil
}

// GetForOwner returns the schedule of a business the caller manages.
func (s *ScheduleService) GetForOwner(ctx context.Context, businessID string, claims *models.JWTClaims) (models.WeeklySchedule, error) {
	if _, err := ownedBusiness(ctx, s.businesses, businessID, claims); err != nil {
		return nil, err
	}
	return s.Get(ctx, businessID)
}

// Update validates and stores a full week, then drops the cached copy.
func (s *ScheduleService) Update(ctx context.Context, businessID string, claims *models.JWTClaims, week models.WeeklySchedule) (models.WeeklySchedule, error) {
	if _, err := ownedBusiness(ctx, s.businesses, businessID, claims); err != nil {
		return nil, err
	}
	if err := availability.ValidateWeek(week); err != nil {
		return nil, appErrors.Invalid(err, err.Error())
	}

	if err := s.repo.Replace(ctx, businessID, week); err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to save schedule")
	}
	if err := s.cache.Forget(ctx, businessID); err != nil {
		s.logger.Warn("stale schedule may be served until ttl", zap.String("business_id", businessID), zap.Error(err))
	}
	s.logger.Info("schedule updated", zap.String("business_id", businessID))
	return completeWeek(week), nil
}

func completeWeek(week models.WeeklySchedule) models.WeeklySchedule {
	out := make(models.WeeklySchedule, len(models.Weekdays))
	for _, w := range models.Weekdays {
		out[w] = week[w]
	}
	return out
}
