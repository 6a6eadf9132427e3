package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/booking-api/internal/models"
	"github.com/noah-isme/booking-api/pkg/response"
)

type employeeService interface {
	Create(ctx context.Context, businessID string, claims *models.JWTClaims, req models.CreateEmployeeRequest) (*models.Employee, error)
	ListActive(ctx context.Context, businessID string) ([]models.Employee, error)
	UpdateAllowedSlots(ctx context.Context, employeeID string, claims *models.JWTClaims, req models.UpdateAllowedSlotsRequest) (*models.Employee, error)
	Deactivate(ctx context.Context, employeeID string, claims *models.JWTClaims) error
}

// EmployeeHandler exposes staff management.
type EmployeeHandler struct {
	service employeeService
}

// NewEmployeeHandler builds a new handler.
func NewEmployeeHandler(service employeeService) *EmployeeHandler {
	return &EmployeeHandler{service: service}
}

// Create godoc
// @Summary Add an employee
// @Tags Employees
// @Accept json
// @Produce json
// @Param id path string true "Business ID"
// @Param payload body models.CreateEmployeeRequest true "Employee payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /employees/businesses/{id}/employees [post]
func (h *EmployeeHandler) Create(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req models.CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err, "invalid employee payload")
		return
	}

	employee, err := h.service.Create(c.Request.Context(), c.Param("id"), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, employee)
}

// List godoc
// @Summary Active employees of a business
// @Tags Employees
// @Produce json
// @Param id path string true "Business ID"
// @Success 200 {object} response.Envelope
// @Router /employees/businesses/{id}/employees [get]
func (h *EmployeeHandler) List(c *gin.Context) {
	items, err := h.service.ListActive(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// UpdateAllowedSlots godoc
// @Summary Restrict the slots an employee works
// @Tags Employees
// @Accept json
// @Produce json
// @Param id path string true "Employee ID"
// @Param payload body models.UpdateAllowedSlotsRequest true "Allowed slot start times per weekday"
// @Success 200 {object} response.Envelope
// @Router /employees/employees/{id}/allowed-slots [put]
func (h *EmployeeHandler) UpdateAllowedSlots(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req models.UpdateAllowedSlotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err, "invalid allowed slots payload")
		return
	}

	employee, err := h.service.UpdateAllowedSlots(c.Request.Context(), c.Param("id"), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, employee)
}

// Deactivate godoc
// @Summary Deactivate an employee
// @Description Existing appointments keep their employee reference
// @Tags Employees
// @Param id path string true "Employee ID"
// @Success 204
// @Router /employees/employees/{id} [delete]
func (h *EmployeeHandler) Deactivate(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	if err := h.service.Deactivate(c.Request.Context(), c.Param("id"), claims); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
