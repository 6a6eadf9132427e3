package service

import (
	"context"
	"fmt"
	"time"

	"github.com/noah-isme/booking-api/internal/models"
	appErrors "github.com/noah-isme/booking-api/pkg/errors"
	"github.com/noah-isme/booking-api/pkg/export"
)

type receiptRenderer interface {
	Render(r export.Receipt) ([]byte, error)
}

type qrEncoder interface {
	PNG(fields ...string) ([]byte, error)
}

// DocumentService renders the QR code and PDF receipt of an appointment.
type DocumentService struct {
	businesses businessFinder
	qr         qrEncoder
	pdf        receiptRenderer
	location   *time.Location
}

// NewDocumentService creates a DocumentService.
func NewDocumentService(businesses businessFinder, qr qrEncoder, pdf receiptRenderer, loc *time.Location) *DocumentService {
	if loc == nil {
		loc = time.UTC
	}
	return &DocumentService{businesses: businesses, qr: qr, pdf: pdf, location: loc}
}

// QRCode encodes appointment_id|business_id|slot_date|slot_time plus its signature.
func (s *DocumentService) QRCode(appt *models.Appointment) ([]byte, error) {
	png, err := s.qr.PNG(appt.ID, appt.BusinessID, appt.SlotDate, appt.SlotTime)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to encode qr code")
	}
	return png, nil
}

// Receipt renders the PDF receipt. customer may be empty.
func (s *DocumentService) Receipt(ctx context.Context, appt *models.Appointment, customer string) ([]byte, error) {
	b, err := findBusiness(ctx, s.businesses, appt.BusinessID)
	if err != nil {
		return nil, err
	}
	qr, err := s.QRCode(appt)
	if err != nil {
		return nil, err
	}

	local := appt.AppointmentTime.In(b.Location(s.location))
	fields := []export.Field{
		{Label: "Appointment", Value: appt.ID},
		{Label: "Business", Value: b.Name},
		{Label: "Address", Value: b.Address},
		{Label: "Date", Value: local.Format("Monday, 02 January 2006")},
		{Label: "Time", Value: fmt.Sprintf("%s (%s)", local.Format(clockLayout), local.Location())},
	}
	if customer != "" {
		fields = append(fields, export.Field{Label: "Customer", Value: customer})
	}
	if appt.EmployeeID != nil {
		fields = append(fields, export.Field{Label: "Employee", Value: *appt.EmployeeID})
	}
	if appt.CancelledAt != nil {
		fields = append(fields, export.Field{Label: "Cancelled at", Value: appt.CancelledAt.In(local.Location()).Format("2006-01-02 15:04")})
	}

	title := "Appointment confirmation"
	footer := "Present this QR code at the front desk."
	if appt.Status == models.StatusCancelled {
		title = "Appointment cancellation"
		footer = "This appointment was cancelled and its slot released."
	}

	doc, err := s.pdf.Render(export.Receipt{
		Title:  title,
		Status: string(appt.DisplayStatusAt(time.Now())),
		Fields: fields,
		QRCode: qr,
		Footer: footer,
	})
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to render receipt")
	}
	return doc, nil
}
