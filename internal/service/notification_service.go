package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/booking-api/internal/models"
	"github.com/noah-isme/booking-api/pkg/events"
	"github.com/noah-isme/booking-api/pkg/jobs"
	"github.com/noah-isme/booking-api/pkg/mailer"
	"github.com/noah-isme/booking-api/pkg/middleware/requestid"
)

// Notification job types.
const (
	JobAppointmentConfirmed        = "appointment.confirmed"
	JobAppointmentCancelled        = "appointment.cancelled"
	JobAppointmentSendPDF          = "appointment.send_pdf"
	JobAppointmentSendCancellation = "appointment.send_cancellation"
)

// Event types published on the appointment stream.
const (
	EventAppointmentConfirmed = "appointment.confirmed.v1"
	EventAppointmentCancelled = "appointment.cancelled.v1"
)

// NotificationPayload is carried by every notification job.
type NotificationPayload struct {
	AppointmentID string `json:"appointment_id"`
}

type appointmentFinder interface {
	FindByID(ctx context.Context, id string) (*models.Appointment, error)
}

type userFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type receiptMaker interface {
	Receipt(ctx context.Context, appt *models.Appointment, customer string) ([]byte, error)
}

// NotificationService handles the notification queue: customer email plus the
// appointment event stream. Failures are logged and counted, never propagated to bookings.
type NotificationService struct {
	appointments appointmentFinder
	users        userFinder
	documents    receiptMaker
	sender       mailer.Sender
	publisher    events.Publisher
	metrics      *MetricsService
	logger       *zap.Logger
}

// NewNotificationService creates a NotificationService.
func NewNotificationService(appointments appointmentFinder, users userFinder, documents receiptMaker, sender mailer.Sender, publisher events.Publisher, metrics *MetricsService, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		appointments: appointments,
		users:        users,
		documents:    documents,
		sender:       sender,
		publisher:    publisher,
		metrics:      metrics,
		logger:       logger,
	}
}

// Handle processes one job. Returning an error makes the queue retry it; events are
// only published on the first attempt so retries do not duplicate them.
func (s *NotificationService) Handle(ctx context.Context, job jobs.Job) error {
	if job.RequestID != "" {
		ctx = requestid.WithID(ctx, job.RequestID)
	}
	payload, ok := job.Payload.(NotificationPayload)
	if !ok {
		s.metrics.RecordNotificationFailure(job.Type, "payload")
		s.logger.Error("dropping notification with unexpected payload", zap.String("job_id", job.ID), zap.String("type", job.Type))
		return nil
	}

	appt, err := s.appointments.FindByID(ctx, payload.AppointmentID)
	if err != nil {
		return fmt.Errorf("load appointment %s: %w", payload.AppointmentID, err)
	}
	user, err := s.users.FindByID(ctx, appt.UserID)
	if err != nil {
		return fmt.Errorf("load customer %s: %w", appt.UserID, err)
	}

	switch job.Type {
	case JobAppointmentConfirmed:
		if job.Attempt == 0 {
			s.publish(ctx, job.Type, EventAppointmentConfirmed, appt)
		}
		err = s.email(ctx, job.Type, appt, user, "Your appointment is confirmed")
	case JobAppointmentCancelled:
		if job.Attempt == 0 {
			s.publish(ctx, job.Type, EventAppointmentCancelled, appt)
		}
		err = s.email(ctx, job.Type, appt, user, "Your appointment was cancelled")
	case JobAppointmentSendPDF:
		err = s.email(ctx, job.Type, appt, user, "Your appointment receipt")
	case JobAppointmentSendCancellation:
		err = s.email(ctx, job.Type, appt, user, "Your appointment was cancelled")
	default:
		s.metrics.RecordNotificationFailure(job.Type, "unknown")
		s.logger.Error("unknown notification type", zap.String("type", job.Type))
		return nil
	}
	if err != nil {
		return err
	}

	s.metrics.RecordNotificationSent(job.Type)
	return nil
}

// GiveUp is the queue's OnGiveUp hook.
func (s *NotificationService) GiveUp(job jobs.Job, err error) {
	s.metrics.RecordNotificationFailure(job.Type, "exhausted")
	s.logger.Error("notification abandoned", zap.String("job_id", job.ID), zap.String("type", job.Type), zap.Error(err))
}

func (s *NotificationService) email(ctx context.Context, jobType string, appt *models.Appointment, user *models.User, subject string) error {
	doc, err := s.documents.Receipt(ctx, appt, user.FullName)
	if err != nil {
		s.metrics.RecordNotificationFailure(jobType, "document")
		return fmt.Errorf("render receipt: %w", err)
	}

	body := fmt.Sprintf("Hello %s,\n\n%s: %s at %s.\nThe receipt is attached.\n", user.FullName, subject, appt.SlotDate, appt.SlotTime)
	msg := mailer.Message{
		To:      user.Email,
		Subject: subject,
		Body:    body,
		Attachments: []mailer.Attachment{{
			Filename:    fmt.Sprintf("appointment-%s.pdf", appt.ID),
			ContentType: "application/pdf",
			Data:        doc,
		}},
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		s.metrics.RecordNotificationFailure(jobType, "email")
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

func (s *NotificationService) publish(ctx context.Context, jobType, eventType string, appt *models.Appointment) {
	evt, err := events.New(eventType, appt.ID, appt)
	if err == nil {
		err = s.publisher.Publish(ctx, evt)
	}
	if err != nil {
		s.metrics.RecordNotificationFailure(jobType, "event")
		s.logger.Warn("appointment event not published", zap.String("type", eventType), zap.String("appointment_id", appt.ID), zap.Error(err))
	}
}
