package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/booking-api/internal/models"
	appErrors "github.com/noah-isme/booking-api/pkg/errors"
)

// CacheRepository is the key/value store behind the schedule cache.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

const (
	cacheHit   = "hit"
	cacheMiss  = "miss"
	cacheError = "error"
	cacheOK    = "ok"
)

// ScheduleCache keeps weekly schedules out of the database on the availability path.
// A nil cache, or one without a store, does nothing.
type ScheduleCache struct {
	store   CacheRepository
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
}

// NewScheduleCache builds a cache over store. store may be nil.
func NewScheduleCache(store CacheRepository, metrics *MetricsService, ttl time.Duration, logger *zap.Logger) *ScheduleCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleCache{store: store, metrics: metrics, ttl: ttl, logger: logger}
}

func (c *ScheduleCache) active() bool {
	return c != nil && c.store != nil
}

// Load returns the cached week of a business. Store failures are reported as misses.
func (c *ScheduleCache) Load(ctx context.Context, businessID string) (models.WeeklySchedule, bool) {
	if !c.active() {
		return nil, false
	}
	start := time.Now()
	var week models.WeeklySchedule
	err := c.store.Get(ctx, scheduleKey(businessID), &week)

	result := cacheHit
	switch {
	case err == nil:
	case errors.Is(err, appErrors.ErrCacheMiss):
		result = cacheMiss
	default:
		result = cacheError
		c.logger.Warn("schedule cache read failed", zap.String("business_id", businessID), zap.Error(err))
	}
	c.metrics.ObserveScheduleCache("load", result, time.Since(start))
	return week, result == cacheHit
}

// Store caches a week for the configured TTL.
func (c *ScheduleCache) Store(ctx context.Context, businessID string, week models.WeeklySchedule) {
	if !c.active() {
		return
	}
	start := time.Now()
	result := cacheOK
	if err := c.store.Set(ctx, scheduleKey(businessID), week, c.ttl); err != nil {
		result = cacheError
		c.logger.Warn("schedule cache write failed", zap.String("business_id", businessID), zap.Error(err))
	}
	c.metrics.ObserveScheduleCache("store", result, time.Since(start))
}

// Forget drops the cached week of a business.
func (c *ScheduleCache) Forget(ctx context.Context, businessID string) error {
	if !c.active() {
		return nil
	}
	start := time.Now()
	err := c.store.Delete(ctx, scheduleKey(businessID))
	result := cacheOK
	if err != nil {
		result = cacheError
	}
	c.metrics.ObserveScheduleCache("forget", result, time.Since(start))
	return err
}

func scheduleKey(businessID string) string {
	return "schedule:" + businessID
}
