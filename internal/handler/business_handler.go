package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/booking-api/internal/models"
	"github.com/noah-isme/booking-api/pkg/response"
)

type businessService interface {
	Create(ctx context.Context, claims *models.JWTClaims, req models.CreateBusinessRequest) (*models.Business, error)
	AssignToOwner(ctx context.Context, claims *models.JWTClaims, ownerID string, req models.CreateBusinessRequest) (*models.Business, error)
	Update(ctx context.Context, id string, claims *models.JWTClaims, req models.UpdateBusinessRequest) (*models.Business, error)
	Publish(ctx context.Context, id string, claims *models.JWTClaims) (*models.Business, error)
	ListMine(ctx context.Context, ownerID string) ([]models.Business, error)
	ListPublished(ctx context.Context) ([]models.Business, error)
	Detail(ctx context.Context, id string, claims *models.JWTClaims) (*models.BusinessDetail, error)
}

// BusinessHandler exposes business management and the public directory.
type BusinessHandler struct {
	service businessService
}

// NewBusinessHandler builds a new handler.
func NewBusinessHandler(service businessService) *BusinessHandler {
	return &BusinessHandler{service: service}
}

// Create godoc
// @Summary Create a draft business
// @Tags Businesses
// @Accept json
// @Produce json
// @Param payload body models.CreateBusinessRequest true "Business payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /businesses/my-business [post]
func (h *BusinessHandler) Create(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req models.CreateBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err, "invalid business payload")
		return
	}

	business, err := h.service.Create(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, business)
}

// Assign godoc
// @Summary Create a draft business for an approved owner
// @Tags Businesses
// @Accept json
// @Produce json
// @Param owner_id query string true "Owner user ID"
// @Param payload body models.CreateBusinessRequest true "Business payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /businesses/admin/assign-business [post]
func (h *BusinessHandler) Assign(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req models.CreateBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err, "invalid business payload")
		return
	}

	business, err := h.service.AssignToOwner(c.Request.Context(), claims, c.Query("owner_id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, business)
}

// ListMine godoc
// @Summary List the caller's businesses
// @Tags Businesses
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /businesses/my-businesses [get]
func (h *BusinessHandler) ListMine(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	items, err := h.service.ListMine(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Update godoc
// @Summary Update business details
// @Tags Businesses
// @Accept json
// @Produce json
// @Param id path string true "Business ID"
// @Param payload body models.UpdateBusinessRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /businesses/my-business/{id} [put]
func (h *BusinessHandler) Update(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req models.UpdateBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err, "invalid business payload")
		return
	}

	business, err := h.service.Update(c.Request.Context(), c.Param("id"), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, business)
}

// Publish godoc
// @Summary Publish a business
// @Description Requires at least one active day in the weekly schedule
// @Tags Businesses
// @Produce json
// @Param id path string true "Business ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /businesses/my-business/{id}/publish [post]
func (h *BusinessHandler) Publish(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	business, err := h.service.Publish(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, business)
}

// ListPublished godoc
// @Summary Public business directory
// @Tags Businesses
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /businesses/ [get]
func (h *BusinessHandler) ListPublished(c *gin.Context) {
	items, err := h.service.ListPublished(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Detail godoc
// @Summary Business with its weekly schedule
// @Tags Businesses
// @Produce json
// @Param id path string true "Business ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /businesses/{id} [get]
func (h *BusinessHandler) Detail(c *gin.Context) {
	detail, err := h.service.Detail(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, detail)
}
