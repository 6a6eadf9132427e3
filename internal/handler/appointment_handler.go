package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/booking-api/internal/models"
	"github.com/noah-isme/booking-api/pkg/response"
)

type bookingService interface {
	Create(ctx context.Context, userID string, req models.CreateAppointmentRequest) (*models.Appointment, []string, error)
	Cancel(ctx context.Context, id string, claims *models.JWTClaims) (*models.Appointment, []string, error)
	Get(ctx context.Context, id string, claims *models.JWTClaims) (*models.Appointment, error)
	ListMine(ctx context.Context, userID string) ([]models.Appointment, error)
	ListByBusiness(ctx context.Context, businessID, date string, claims *models.JWTClaims) ([]models.AppointmentWithUser, error)
	SendPDF(ctx context.Context, id string, claims *models.JWTClaims) error
	SendCancellationEmail(ctx context.Context, id string, claims *models.JWTClaims) error
}

type documentService interface {
	QRCode(appt *models.Appointment) ([]byte, error)
	Receipt(ctx context.Context, appt *models.Appointment, customer string) ([]byte, error)
}

// AppointmentHandler exposes booking, cancellation and appointment documents.
type AppointmentHandler struct {
	bookings  bookingService
	documents documentService
}

// NewAppointmentHandler builds a new handler.
func NewAppointmentHandler(bookings bookingService, documents documentService) *AppointmentHandler {
	return &AppointmentHandler{bookings: bookings, documents: documents}
}

// Create godoc
// @Summary Book a slot
// @Tags Appointments
// @Accept json
// @Produce json
// @Param payload body models.CreateAppointmentRequest true "Booking payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /appointments/ [post]
func (h *AppointmentHandler) Create(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req models.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err, "invalid appointment payload")
		return
	}

	appt, warnings, err := h.bookings.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.WithWarnings(c, http.StatusCreated, appt, warnings)
}

// Cancel godoc
// @Summary Cancel an appointment
// @Tags Appointments
// @Produce json
// @Param id path string true "Appointment ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /appointments/{id}/cancel [post]
func (h *AppointmentHandler) Cancel(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	appt, warnings, err := h.bookings.Cancel(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.WithWarnings(c, http.StatusOK, appt, warnings)
}

// ListMine godoc
// @Summary The caller's appointments
// @Tags Appointments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /appointments/me [get]
// @Router /appointments/my-appointments [get]
func (h *AppointmentHandler) ListMine(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	items, err := h.bookings.ListMine(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// ListByBusiness godoc
// @Summary Appointments of an owned business
// @Tags Appointments
// @Produce json
// @Param id path string true "Business ID"
// @Param date query string false "Only this date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /appointments/business/{id}/with-users [get]
// @Router /appointments/business/{id} [get]
func (h *AppointmentHandler) ListByBusiness(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	items, err := h.bookings.ListByBusiness(c.Request.Context(), c.Param("id"), c.Query("date"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Get godoc
// @Summary Appointment detail
// @Tags Appointments
// @Produce json
// @Param id path string true "Appointment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /appointments/{id} [get]
func (h *AppointmentHandler) Get(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	appt, err := h.bookings.Get(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, appt)
}

// QRCode godoc
// @Summary Signed QR code of an appointment
// @Tags Appointments
// @Produce png
// @Param id path string true "Appointment ID"
// @Success 200 {file} binary
// @Router /appointments/{id}/qr [get]
func (h *AppointmentHandler) QRCode(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	appt, err := h.bookings.Get(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	png, err := h.documents.QRCode(appt)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Binary(c, "image/png", "appointment-"+appt.ID+".png", png)
}

// PDF godoc
// @Summary PDF receipt of an appointment
// @Tags Appointments
// @Produce application/pdf
// @Param id path string true "Appointment ID"
// @Success 200 {file} binary
// @Router /appointments/{id}/pdf [get]
func (h *AppointmentHandler) PDF(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	appt, err := h.bookings.Get(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	customer := ""
	if appt.UserID == claims.UserID {
		customer = claims.FullName
	}
	pdf, err := h.documents.Receipt(c.Request.Context(), appt, customer)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Binary(c, "application/pdf", "appointment-"+appt.ID+".pdf", pdf)
}

// SendPDF godoc
// @Summary Email the PDF receipt again
// @Tags Appointments
// @Produce json
// @Param id path string true "Appointment ID"
// @Success 202 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /appointments/{id}/send-pdf [post]
func (h *AppointmentHandler) SendPDF(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	if err := h.bookings.SendPDF(c.Request.Context(), c.Param("id"), claims); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, gin.H{"message": "receipt email queued"}, nil)
}

// SendCancellationEmail godoc
// @Summary Email the cancellation notice again
// @Tags Appointments
// @Produce json
// @Param id path string true "Appointment ID"
// @Success 202 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /appointments/{id}/send-cancellation-email [post]
func (h *AppointmentHandler) SendCancellationEmail(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	if err := h.bookings.SendCancellationEmail(c.Request.Context(), c.Param("id"), claims); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, gin.H{"message": "cancellation email queued"}, nil)
}
