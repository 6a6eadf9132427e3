package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/booking-api/internal/models"
	appErrors "github.com/noah-isme/booking-api/pkg/errors"
)

func newAvailabilityFixture(t *testing.T, mode models.AppointmentMode) (*AvailabilityService, *bookingFixture) {
	t.Helper()
	f := newBookingFixture(t, mode)
	svc := NewAvailabilityService(f.businesses, f.schedules, f.employees, f.ledger, time.UTC, nil)
	return svc, f
}

func TestAvailableSlotsGeneric(t *testing.T) {
	svc, f := newAvailabilityFixture(t, models.ModeGeneric)
	_, _, err := f.book("customer-1", "2030-05-06T10:00", nil)
	require.NoError(t, err)
	_, _, err = f.book("customer-2", "2030-05-06T10:00", nil)
	require.NoError(t, err)
	_, _, err = f.book("customer-3", "2030-05-06T11:00", nil)
	require.NoError(t, err)

	slots, err := svc.AvailableSlots(context.Background(), "biz-1", "2030-05-06", "")
	require.NoError(t, err)
	require.Len(t, slots, 3)

	want := []struct {
		time      string
		booked    int
		available bool
	}{{"09:00", 0, true}, {"10:00", 2, false}, {"11:00", 1, true}}
	for i, w := range want {
		assert.Equal(t, w.time, slots[i].Time)
		require.NotNil(t, slots[i].TotalCapacity)
		assert.Equal(t, 2, *slots[i].TotalCapacity)
		assert.Equal(t, w.booked, *slots[i].BookedCount)
		assert.Equal(t, w.available, slots[i].IsAvailable)
	}
}

func TestAvailableSlotsIgnoresCancelled(t *testing.T) {
	svc, f := newAvailabilityFixture(t, models.ModeGeneric)
	appt, _, err := f.book(customerClaims.UserID, "2030-05-06T09:00", nil)
	require.NoError(t, err)
	_, _, err = f.svc.Cancel(context.Background(), appt.ID, customerClaims)
	require.NoError(t, err)

	slots, err := svc.AvailableSlots(context.Background(), "biz-1", "2030-05-06", "")
	require.NoError(t, err)
	assert.Zero(t, *slots[0].BookedCount)
}

func TestAvailableSlotsEmployeeScope(t *testing.T) {
	svc, f := newAvailabilityFixture(t, models.ModePerEmployee)
	_, _, err := f.book("customer-1", "2030-05-06T09:00", strPtr("bob"))
	require.NoError(t, err)

	ana, err := svc.AvailableSlots(context.Background(), "biz-1", "2030-05-06", "ana")
	require.NoError(t, err)
	require.Len(t, ana, 2)
	assert.Equal(t, "09:00", ana[0].Time)
	assert.True(t, ana[0].IsAvailable)
	assert.Nil(t, ana[0].TotalCapacity)
	assert.Equal(t, "10:00", ana[1].Time)

	bob, err := svc.AvailableSlots(context.Background(), "biz-1", "2030-05-06", "bob")
	require.NoError(t, err)
	require.Len(t, bob, 1)
	assert.False(t, bob[0].IsAvailable)

	// no grant for tuesday
	none, err := svc.AvailableSlots(context.Background(), "biz-1", "2030-05-07", "bob")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestAvailableSlotsEmployeeWithinBusinessCapacity(t *testing.T) {
	svc, f := newAvailabilityFixture(t, models.ModeGeneric)
	ctx := context.Background()
	_, _, err := f.book("customer-1", "2030-05-06T09:00", strPtr("ana"))
	require.NoError(t, err)
	_, _, err = f.book("customer-2", "2030-05-06T09:00", strPtr("bob"))
	require.NoError(t, err)

	cy, err := svc.AvailableSlots(ctx, "biz-1", "2030-05-06", "cy")
	require.NoError(t, err)
	require.Len(t, cy, 1)
	assert.False(t, cy[0].IsAvailable)

	// the listing agrees with what booking accepts
	_, _, err = f.book("customer-3", "2030-05-06T09:00", strPtr("cy"))
	requireCode(t, err, appErrors.ErrSlotUnavailable)

	ana, err := svc.AvailableSlots(ctx, "biz-1", "2030-05-06", "ana")
	require.NoError(t, err)
	require.Len(t, ana, 2)
	assert.False(t, ana[0].IsAvailable)
	assert.True(t, ana[1].IsAvailable)
}

func TestAvailableSlotsPerEmployeeRequiresEmployee(t *testing.T) {
	svc, f := newAvailabilityFixture(t, models.ModePerEmployee)
	for _, id := range []string{"ana", "bob", "cy"} {
		_, _, err := f.book("customer-"+id, "2030-05-06T09:00", strPtr(id))
		require.NoError(t, err)
	}

	_, err := svc.AvailableSlots(context.Background(), "biz-1", "2030-05-06", "")
	requireCode(t, err, appErrors.ErrInvalidEmployee)
}

func TestAvailableSlotsEmptyCases(t *testing.T) {
	svc, _ := newAvailabilityFixture(t, models.ModeGeneric)
	ctx := context.Background()

	for _, tc := range []struct{ business, date string }{
		{"biz-1", "2030-05-07"}, // closed day
		{"biz-1", "2030-05-08"}, // unconfigured day
		{"draft", "2030-05-06"}, // unpublished
	} {
		slots, err := svc.AvailableSlots(ctx, tc.business, tc.date, "")
		require.NoError(t, err, tc)
		assert.NotNil(t, slots, tc)
		assert.Empty(t, slots, tc)
	}
}

func TestAvailableSlotsErrors(t *testing.T) {
	svc, _ := newAvailabilityFixture(t, models.ModeGeneric)
	ctx := context.Background()

	_, err := svc.AvailableSlots(ctx, "missing", "2030-05-06", "")
	requireCode(t, err, appErrors.ErrNotFound)

	_, err = svc.AvailableSlots(ctx, "biz-1", "2030-13-01", "")
	requireCode(t, err, appErrors.ErrValidation)

	for _, id := range []string{"foreign", "gone", "nobody"} {
		_, err = svc.AvailableSlots(ctx, "biz-1", "2030-05-06", id)
		requireCode(t, err, appErrors.ErrInvalidEmployee)
	}
}

func TestAvailableSlotsDeterministic(t *testing.T) {
	svc, _ := newAvailabilityFixture(t, models.ModeGeneric)
	first, err := svc.AvailableSlots(context.Background(), "biz-1", "2030-05-06", "")
	require.NoError(t, err)
	second, err := svc.AvailableSlots(context.Background(), "biz-1", "2030-05-06", "")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
