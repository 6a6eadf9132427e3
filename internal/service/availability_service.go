package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/booking-api/internal/availability"
	"github.com/noah-isme/booking-api/internal/models"
	appErrors "github.com/noah-isme/booking-api/pkg/errors"
)

type slotCounter interface {
	CountConfirmedBySlot(ctx context.Context, businessID, date, employeeID string) (map[string]int, error)
}

// AvailabilityService annotates the slots of one business day with their bookings.
type AvailabilityService struct {
	businesses   businessFinder
	schedules    scheduleReader
	employees    employeeFinder
	appointments slotCounter
	location     *time.Location
	logger       *zap.Logger
}

// NewAvailabilityService creates an AvailabilityService. loc is used for businesses without a timezone.
func NewAvailabilityService(businesses businessFinder, schedules scheduleReader, employees employeeFinder, appointments slotCounter, loc *time.Location, logger *zap.Logger) *AvailabilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &AvailabilityService{businesses: businesses, schedules: schedules, employees: employees, appointments: appointments, location: loc, logger: logger}
}

// AvailableSlots lists the slots of date in ascending order. A closed, unpublished or
// unconfigured day yields an empty list rather than an error. With employeeID set the
// result is scoped to that employee's allowed slots and own bookings, still bounded by the
// business capacity in generic mode. A per-employee business requires employeeID.
func (s *AvailabilityService) AvailableSlots(ctx context.Context, businessID, date, employeeID string) ([]models.Slot, error) {
	b, err := findBusiness(ctx, s.businesses, businessID)
	if err != nil {
		return nil, err
	}
	day, err := availability.ParseDate(date, b.Location(s.location))
	if err != nil {
		return nil, appErrors.Invalid(err, err.Error())
	}

	var employee *models.Employee
	if employeeID != "" {
		if employee, err = bookableEmployee(ctx, s.employees, b.ID, employeeID); err != nil {
			return nil, err
		}
	} else if b.AppointmentMode == models.ModePerEmployee {
		return nil, appErrors.Clone(appErrors.ErrInvalidEmployee, "this business books by employee, employee_id is required")
	}

	if !b.Published() {
		return []models.Slot{}, nil
	}
	week, err := s.schedules.Get(ctx, b.ID)
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	weekday := availability.WeekdayOf(day)
	schedule := week[weekday]
	raw := availability.GenerateSlots(schedule)
	if employee != nil {
		raw = availability.FilterAllowed(raw, employee.AllowedSlots[weekday])
	}
	if len(raw) == 0 {
		return []models.Slot{}, nil
	}

	counts, err := s.count(ctx, b.ID, day, employeeID)
	if err != nil {
		return nil, err
	}
	switch {
	case employee == nil:
		return availability.AnnotateGeneric(raw, schedule.CapacityPerSlot, counts), nil
	case b.AppointmentMode == models.ModePerEmployee:
		return availability.AnnotateEmployee(raw, counts), nil
	}

	// A generic business still caps every slot at its capacity, whoever is booked.
	shared, err := s.count(ctx, b.ID, day, "")
	if err != nil {
		return nil, err
	}
	return availability.AnnotateEmployeeShared(raw, counts, shared, schedule.CapacityPerSlot), nil
}

func (s *AvailabilityService) count(ctx context.Context, businessID string, day time.Time, employeeID string) (map[string]int, error) {
	counts, err := s.appointments.CountConfirmedBySlot(ctx, businessID, day.Format(dateLayout), employeeID)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to count bookings")
	}
	return counts, nil
}

// bookableEmployee resolves an employee that may take bookings for businessID.
func bookableEmployee(ctx context.Context, repo employeeFinder, businessID, employeeID string) (*models.Employee, error) {
	e, err := repo.FindByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidEmployee, "employee not found")
		}
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to load employee")
	}
	if e.BusinessID != businessID {
		return nil, appErrors.Clone(appErrors.ErrInvalidEmployee, "employee works for another business")
	}
	if !e.Active {
		return nil, appErrors.Clone(appErrors.ErrInvalidEmployee, "employee is inactive")
	}
	return e, nil
}
