package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/booking-api/internal/models"
	"github.com/noah-isme/booking-api/pkg/response"
)

type scheduleService interface {
	GetForOwner(ctx context.Context, businessID string, claims *models.JWTClaims) (models.WeeklySchedule, error)
	Update(ctx context.Context, businessID string, claims *models.JWTClaims, week models.WeeklySchedule) (models.WeeklySchedule, error)
}

// ScheduleHandler manages the weekly schedule of a business.
type ScheduleHandler struct {
	service scheduleService
}

// NewScheduleHandler builds a new handler.
func NewScheduleHandler(service scheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: service}
}

// Get godoc
// @Summary Weekly schedule of an owned business
// @Tags Schedules
// @Produce json
// @Param id path string true "Business ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /businesses/my-business/{id}/schedule [get]
func (h *ScheduleHandler) Get(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	week, err := h.service.GetForOwner(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, week)
}

// Update godoc
// @Summary Replace the weekly schedule
// @Description Keys are lowercase weekday names; omitted days are closed
// @Tags Schedules
// @Accept json
// @Produce json
// @Param id path string true "Business ID"
// @Param payload body models.WeeklySchedule true "Weekly schedule"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /businesses/my-business/{id}/schedule [put]
func (h *ScheduleHandler) Update(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var week models.WeeklySchedule
	if err := c.ShouldBindJSON(&week); err != nil {
		invalidPayload(c, err, "invalid schedule payload")
		return
	}

	saved, err := h.service.Update(c.Request.Context(), c.Param("id"), claims, week)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, saved)
}
