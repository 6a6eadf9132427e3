package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/booking-api/internal/models"
	"github.com/noah-isme/booking-api/pkg/response"
)

type availabilityService interface {
	AvailableSlots(ctx context.Context, businessID, date, employeeID string) ([]models.Slot, error)
}

// AvailabilityHandler answers slot availability queries.
type AvailabilityHandler struct {
	service availabilityService
}

// NewAvailabilityHandler builds a new handler.
func NewAvailabilityHandler(service availabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: service}
}

// AvailableSlots godoc
// @Summary Slots of a business on a date
// @Description Every slot of the day with its remaining capacity. Closed days yield an empty list.
// @Tags Availability
// @Produce json
// @Param id path string true "Business ID"
// @Param date query string true "Date (YYYY-MM-DD) in the business timezone"
// @Param employee_id query string false "Restrict to one employee"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /businesses/{id}/available-slots [get]
func (h *AvailabilityHandler) AvailableSlots(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		invalidPayload(c, errors.New("date is required"), "query parameter date is required")
		return
	}

	slots, err := h.service.AvailableSlots(c.Request.Context(), c.Param("id"), date, c.Query("employee_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}
