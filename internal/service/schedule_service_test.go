package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/booking-api/internal/models"
	appErrors "github.com/noah-isme/booking-api/pkg/errors"
)

type memoryCache struct {
	data    map[string][]byte
	deleted []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}}
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.data[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	return nil
}

func (m *memoryCache) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.data, k)
	}
	m.deleted = append(m.deleted, keys...)
	return nil
}

func newScheduleFixture(cached bool) (*ScheduleService, *stubSchedules, *memoryCache, *MetricsService) {
	businesses := newStubBusinesses(&models.Business{ID: "biz-1", OwnerID: ownerClaims.UserID})
	repo := newStubSchedules()
	repo.weeks["biz-1"] = standardWeek()
	store := newMemoryCache()
	metrics := NewMetricsService()
	var cache *ScheduleCache
	if cached {
		cache = NewScheduleCache(store, metrics, time.Minute, nil)
	}
	return NewScheduleService(repo, businesses, cache, nil), repo, store, metrics
}

func TestScheduleGetFillsWeek(t *testing.T) {
	svc, _, _, _ := newScheduleFixture(false)

	week, err := svc.Get(context.Background(), "biz-1")
	require.NoError(t, err)
	assert.Len(t, week, 7)
	assert.True(t, week[models.Monday].IsActive)
	assert.False(t, week[models.Sunday].IsActive)
}

func TestScheduleGetUsesCache(t *testing.T) {
	svc, repo, store, _ := newScheduleFixture(true)
	ctx := context.Background()

	_, err := svc.Get(ctx, "biz-1")
	require.NoError(t, err)
	assert.Contains(t, store.data, scheduleKey("biz-1"))

	week, err := svc.Get(ctx, "biz-1")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.gets)
	assert.Equal(t, 2, week[models.Monday].CapacityPerSlot)
}

func TestScheduleUpdateInvalidatesCache(t *testing.T) {
	svc, repo, store, _ := newScheduleFixture(true)
	ctx := context.Background()
	_, err := svc.Get(ctx, "biz-1")
	require.NoError(t, err)

	week := fullWeek()
	week[models.Friday] = models.DaySchedule{IsActive: true, OpenTime: "10:00", CloseTime: "14:00", SlotDurationMinutes: 30, CapacityPerSlot: 1}
	saved, err := svc.Update(ctx, "biz-1", ownerClaims, week)
	require.NoError(t, err)
	assert.True(t, saved[models.Friday].IsActive)
	assert.Equal(t, 1, repo.replaced)
	assert.Equal(t, []string{scheduleKey("biz-1")}, store.deleted)

	fresh, err := svc.Get(ctx, "biz-1")
	require.NoError(t, err)
	assert.True(t, fresh[models.Friday].IsActive)
}

func TestScheduleUpdateValidation(t *testing.T) {
	svc, repo, _, _ := newScheduleFixture(false)
	ctx := context.Background()

	_, err := svc.Update(ctx, "biz-1", ownerClaims, standardWeek())
	requireCode(t, err, appErrors.ErrValidation)

	bad := fullWeek()
	bad[models.Monday] = models.DaySchedule{IsActive: true, OpenTime: "12:00", CloseTime: "09:00", SlotDurationMinutes: 30, CapacityPerSlot: 1}
	_, err = svc.Update(ctx, "biz-1", ownerClaims, bad)
	requireCode(t, err, appErrors.ErrValidation)

	_, err = svc.Update(ctx, "biz-1", strangerClaims, fullWeek())
	requireCode(t, err, appErrors.ErrForbidden)

	_, err = svc.Update(ctx, "biz-1", adminClaims, fullWeek())
	assert.NoError(t, err)
	assert.Equal(t, 1, repo.replaced)
}

func TestScheduleGetForOwner(t *testing.T) {
	svc, _, _, _ := newScheduleFixture(false)

	_, err := svc.GetForOwner(context.Background(), "biz-1", strangerClaims)
	requireCode(t, err, appErrors.ErrForbidden)

	_, err = svc.GetForOwner(context.Background(), "missing", ownerClaims)
	requireCode(t, err, appErrors.ErrNotFound)

	week, err := svc.GetForOwner(context.Background(), "biz-1", ownerClaims)
	require.NoError(t, err)
	assert.Len(t, week, 7)
}
