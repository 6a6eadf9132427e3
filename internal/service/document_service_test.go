package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/booking-api/internal/models"
	appErrors "github.com/noah-isme/booking-api/pkg/errors"
	"github.com/noah-isme/booking-api/pkg/export"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestDocumentQRCodeIsSignedPNG(t *testing.T) {
	svc := NewDocumentService(newStubBusinesses(), export.NewQRSigner("secret", 128), export.NewPDFExporter(), nil)
	appt := &models.Appointment{ID: "appt-1", BusinessID: "biz-1", SlotDate: "2030-05-06", SlotTime: "09:00"}

	png, err := svc.QRCode(appt)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic))
}

func TestDocumentReceipt(t *testing.T) {
	businesses := newStubBusinesses(&models.Business{ID: "biz-1", Name: "Barber", Timezone: "UTC"})
	svc := NewDocumentService(businesses, export.NewQRSigner("secret", 128), export.NewPDFExporter(), nil)
	cancelledAt := time.Date(2030, 5, 1, 8, 0, 0, 0, time.UTC)
	appt := &models.Appointment{
		ID: "appt-1", BusinessID: "biz-1", AppointmentTime: time.Date(2030, 5, 6, 9, 0, 0, 0, time.UTC),
		SlotDate: "2030-05-06", SlotTime: "09:00", Status: models.StatusCancelled, CancelledAt: &cancelledAt,
	}

	doc, err := svc.Receipt(context.Background(), appt, "Ana")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))

	appt.BusinessID = "missing"
	_, err = svc.Receipt(context.Background(), appt, "Ana")
	requireCode(t, err, appErrors.ErrNotFound)
}

func TestDocumentQRCodeRequiresSecret(t *testing.T) {
	svc := NewDocumentService(newStubBusinesses(), export.NewQRSigner("", 128), export.NewPDFExporter(), nil)

	_, err := svc.QRCode(&models.Appointment{ID: "appt-1"})
	requireCode(t, err, appErrors.ErrInternal)
}
