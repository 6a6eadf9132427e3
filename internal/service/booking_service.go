package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/booking-api/internal/availability"
	"github.com/noah-isme/booking-api/internal/models"
	"github.com/noah-isme/booking-api/internal/repository"
	appErrors "github.com/noah-isme/booking-api/pkg/errors"
	"github.com/noah-isme/booking-api/pkg/jobs"
	"github.com/noah-isme/booking-api/pkg/logger"
	"github.com/noah-isme/booking-api/pkg/middleware/requestid"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// Layouts accepted for business-local appointment times.
var localTimeLayouts = []string{"2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02 15:04:05", "2006-01-02 15:04"}

type appointmentStore interface {
	Reserve(ctx context.Context, appt *models.Appointment, businessCapacity int) error
	Cancel(ctx context.Context, id string, at time.Time) (*models.Appointment, error)
	FindByID(ctx context.Context, id string) (*models.Appointment, error)
	ListByUser(ctx context.Context, userID string) ([]models.Appointment, error)
	ListByBusiness(ctx context.Context, businessID, date string) ([]models.AppointmentWithUser, error)
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// BookingConfig holds the reservation rules.
type BookingConfig struct {
	Location              *time.Location
	RejectPast            bool
	AllowPastCancellation bool
}

// BookingService is the reservation ledger: it validates a request against the schedule
// and commits it atomically through the appointment store.
type BookingService struct {
	appointments appointmentStore
	businesses   businessFinder
	schedules    scheduleReader
	employees    employeeFinder
	notifier     jobEnqueuer
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
	config       BookingConfig
	now          func() time.Time
}

// NewBookingService creates a BookingService. notifier and metrics may be nil.
func NewBookingService(appointments appointmentStore, businesses businessFinder, schedules scheduleReader, employees employeeFinder, notifier jobEnqueuer, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg BookingConfig) *BookingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &BookingService{
		appointments: appointments,
		businesses:   businesses,
		schedules:    schedules,
		employees:    employees,
		notifier:     notifier,
		metrics:      metrics,
		validator:    validate,
		logger:       logger,
		config:       cfg,
		now:          time.Now,
	}
}

// Create books a slot for userID. Warnings report side effects that could not be
// scheduled; they never undo the booking.
func (s *BookingService) Create(ctx context.Context, userID string, req models.CreateAppointmentRequest) (*models.Appointment, []string, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Invalid(err, "invalid appointment payload")
	}
	var employeeID *string
	if req.EmployeeID != nil && strings.TrimSpace(*req.EmployeeID) != "" {
		id := strings.TrimSpace(*req.EmployeeID)
		employeeID = &id
	}

	b, err := findBusiness(ctx, s.businesses, req.BusinessID)
	if err != nil {
		return nil, nil, err
	}
	if !b.Published() {
		s.metrics.RecordBookingOutcome(OutcomeNotConfigured)
		return nil, nil, appErrors.Clone(appErrors.ErrScheduleNotConfigured, "business is not accepting bookings")
	}

	loc := b.Location(s.config.Location)
	at, err := parseAppointmentTime(req.AppointmentTime, loc)
	if err != nil {
		return nil, nil, appErrors.Invalid(err, err.Error())
	}

	week, err := s.schedules.Get(ctx, b.ID)
	if err != nil {
		return nil, nil, appErrors.FromError(err)
	}
	weekday := availability.WeekdayOf(at)
	day := week[weekday]
	slots := availability.GenerateSlots(day)
	if len(slots) == 0 {
		s.metrics.RecordBookingOutcome(OutcomeNotConfigured)
		return nil, nil, appErrors.Clone(appErrors.ErrScheduleNotConfigured, fmt.Sprintf("business is closed on %s", weekday))
	}

	capacity := day.CapacityPerSlot
	if b.AppointmentMode == models.ModePerEmployee {
		if employeeID == nil {
			s.metrics.RecordBookingOutcome(OutcomeInvalidEmployee)
			return nil, nil, appErrors.Clone(appErrors.ErrInvalidEmployee, "this business books by employee, employee_id is required")
		}
		capacity = repository.Unlimited
	}
	if employeeID != nil {
		e, err := bookableEmployee(ctx, s.employees, b.ID, *employeeID)
		if err != nil {
			if appErrors.Is(err, appErrors.ErrInvalidEmployee) {
				s.metrics.RecordBookingOutcome(OutcomeInvalidEmployee)
			}
			return nil, nil, err
		}
		slots = availability.FilterAllowed(slots, e.AllowedSlots[weekday])
	}

	slotTime := at.Format(clockLayout)
	if at.Second() != 0 || at.Nanosecond() != 0 || !availability.Contains(slots, slotTime) {
		s.metrics.RecordBookingOutcome(OutcomeSlotUnavailable)
		return nil, nil, appErrors.Clone(appErrors.ErrSlotUnavailable, fmt.Sprintf("%s is not a bookable slot", at.Format("2006-01-02 15:04")))
	}
	if s.config.RejectPast && at.Before(s.now()) {
		s.metrics.RecordBookingOutcome(OutcomeSlotUnavailable)
		return nil, nil, appErrors.Clone(appErrors.ErrSlotUnavailable, "slot has already started")
	}

	appt := &models.Appointment{
		BusinessID:      b.ID,
		UserID:          userID,
		EmployeeID:      employeeID,
		AppointmentTime: at.UTC(),
		SlotDate:        at.Format(dateLayout),
		SlotTime:        slotTime,
	}
	if err := s.appointments.Reserve(ctx, appt, capacity); err != nil {
		if errors.Is(err, repository.ErrSlotFull) {
			s.metrics.RecordBookingOutcome(OutcomeSlotUnavailable)
			return nil, nil, appErrors.Clone(appErrors.ErrSlotUnavailable, "slot is fully booked")
		}
		return nil, nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to book appointment")
	}
	s.metrics.RecordBookingOutcome(OutcomeConfirmed)
	logger.Ctx(ctx, s.logger).Info("appointment confirmed",
		zap.String("appointment_id", appt.ID),
		zap.String("business_id", b.ID),
		zap.String("slot", appt.SlotDate+" "+appt.SlotTime),
	)

	var warnings []string
	if err := s.notify(ctx, JobAppointmentConfirmed, appt.ID); err != nil {
		warnings = append(warnings, "confirmation notification could not be scheduled")
	}
	appt.DisplayStatus = appt.DisplayStatusAt(s.now())
	return appt, warnings, nil
}

// Cancel moves a confirmed appointment to cancelled and frees its slot. The customer,
// the business owner or an admin may cancel.
func (s *BookingService) Cancel(ctx context.Context, id string, claims *models.JWTClaims) (*models.Appointment, []string, error) {
	appt, err := s.authorized(ctx, id, claims)
	if err != nil {
		return nil, nil, err
	}

	if appt.Status == models.StatusCancelled {
		s.metrics.RecordBookingOutcome(OutcomeAlreadyCancelled)
		return nil, nil, appErrors.Clone(appErrors.ErrAlreadyCancelled, "")
	}
	now := s.now()
	if !s.config.AllowPastCancellation && appt.AppointmentTime.Before(now) {
		s.metrics.RecordBookingOutcome(OutcomeRejected)
		return nil, nil, appErrors.Clone(appErrors.ErrConflict, "appointment has already taken place")
	}

	cancelled, err := s.appointments.Cancel(ctx, appt.ID, now.UTC())
	if err != nil {
		if errors.Is(err, repository.ErrNotConfirmed) {
			s.metrics.RecordBookingOutcome(OutcomeAlreadyCancelled)
			return nil, nil, appErrors.Clone(appErrors.ErrAlreadyCancelled, "")
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "appointment not found")
		}
		return nil, nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to cancel appointment")
	}
	s.metrics.RecordBookingOutcome(OutcomeCancelled)
	logger.Ctx(ctx, s.logger).Info("appointment cancelled", zap.String("appointment_id", cancelled.ID), zap.String("by", claims.UserID))

	var warnings []string
	if err := s.notify(ctx, JobAppointmentCancelled, cancelled.ID); err != nil {
		warnings = append(warnings, "cancellation notification could not be scheduled")
	}
	cancelled.DisplayStatus = cancelled.DisplayStatusAt(now)
	return cancelled, warnings, nil
}

// Get returns one appointment to a participant.
func (s *BookingService) Get(ctx context.Context, id string, claims *models.JWTClaims) (*models.Appointment, error) {
	appt, err := s.authorized(ctx, id, claims)
	if err != nil {
		return nil, err
	}
	appt.DisplayStatus = appt.DisplayStatusAt(s.now())
	return appt, nil
}

// ListMine returns the caller's appointments, soonest first.
func (s *BookingService) ListMine(ctx context.Context, userID string) ([]models.Appointment, error) {
	items, err := s.appointments.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to list appointments")
	}
	now := s.now()
	for i := range items {
		items[i].DisplayStatus = items[i].DisplayStatusAt(now)
	}
	return items, nil
}

// ListByBusiness returns a business's appointments with the booking customer. date
// ("YYYY-MM-DD") is optional.
func (s *BookingService) ListByBusiness(ctx context.Context, businessID, date string, claims *models.JWTClaims) ([]models.AppointmentWithUser, error) {
	b, err := ownedBusiness(ctx, s.businesses, businessID, claims)
	if err != nil {
		return nil, err
	}
	if date != "" {
		d, err := availability.ParseDate(date, b.Location(s.config.Location))
		if err != nil {
			return nil, appErrors.Invalid(err, err.Error())
		}
		date = d.Format(dateLayout)
	}

	items, err := s.appointments.ListByBusiness(ctx, b.ID, date)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to list appointments")
	}
	now := s.now()
	for i := range items {
		items[i].DisplayStatus = items[i].DisplayStatusAt(now)
	}
	return items, nil
}

// SendPDF queues the receipt email of an appointment.
func (s *BookingService) SendPDF(ctx context.Context, id string, claims *models.JWTClaims) error {
	appt, err := s.authorized(ctx, id, claims)
	if err != nil {
		return err
	}
	return s.notifyExplicit(ctx, JobAppointmentSendPDF, appt.ID)
}

// SendCancellationEmail queues the cancellation notice again. Only cancelled appointments qualify.
func (s *BookingService) SendCancellationEmail(ctx context.Context, id string, claims *models.JWTClaims) error {
	appt, err := s.authorized(ctx, id, claims)
	if err != nil {
		return err
	}
	if appt.Status != models.StatusCancelled {
		return appErrors.Clone(appErrors.ErrConflict, "appointment is not cancelled")
	}
	return s.notifyExplicit(ctx, JobAppointmentSendCancellation, appt.ID)
}

// authorized loads an appointment the caller participates in: its customer, the owner of
// its business, or an admin.
func (s *BookingService) authorized(ctx context.Context, id string, claims *models.JWTClaims) (*models.Appointment, error) {
	if claims == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "missing authentication")
	}
	appt, err := s.appointments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "appointment not found")
		}
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to load appointment")
	}
	if appt.UserID == claims.UserID || claims.IsAdmin() {
		return appt, nil
	}
	b, err := findBusiness(ctx, s.businesses, appt.BusinessID)
	if err != nil {
		return nil, err
	}
	if b.OwnerID == claims.UserID {
		return appt, nil
	}
	return nil, appErrors.Clone(appErrors.ErrForbidden, "appointment belongs to another user")
}

func (s *BookingService) notify(ctx context.Context, jobType, appointmentID string) error {
	if s.notifier == nil {
		return nil
	}
	err := s.notifier.Enqueue(jobs.Job{
		Type:      jobType,
		Payload:   NotificationPayload{AppointmentID: appointmentID},
		RequestID: requestid.FromContext(ctx),
	})
	if err != nil {
		s.metrics.RecordNotificationFailure(jobType, "enqueue")
		logger.Ctx(ctx, s.logger).Warn("notification not queued", zap.String("type", jobType), zap.String("appointment_id", appointmentID), zap.Error(err))
	}
	return err
}

func (s *BookingService) notifyExplicit(ctx context.Context, jobType, appointmentID string) error {
	if s.notifier == nil {
		return appErrors.New("NOTIFICATIONS_DISABLED", http.StatusServiceUnavailable, "notifications are not configured")
	}
	if err := s.notify(ctx, jobType, appointmentID); err != nil {
		return appErrors.Wrap(err, "NOTIFICATIONS_UNAVAILABLE", http.StatusServiceUnavailable, "notification could not be queued, try again later")
	}
	return nil
}

// parseAppointmentTime accepts RFC 3339 or a wall-clock time in loc, and returns it in loc.
func parseAppointmentTime(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range localTimeLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid appointment_time %q, expected RFC 3339 or YYYY-MM-DDTHH:MM", raw)
}
