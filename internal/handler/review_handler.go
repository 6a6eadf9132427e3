package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/booking-api/internal/models"
	"github.com/noah-isme/booking-api/pkg/response"
)

type reviewService interface {
	Create(ctx context.Context, claims *models.JWTClaims, req models.CreateReviewRequest) (*models.Review, error)
	ListByBusiness(ctx context.Context, businessID string) ([]models.Review, error)
	Eligibility(ctx context.Context, userID, businessID string) (*models.ReviewEligibility, error)
	Reply(ctx context.Context, id string, claims *models.JWTClaims, req models.ReplyReviewRequest) (*models.Review, error)
}

// ReviewHandler exposes business reviews.
type ReviewHandler struct {
	service reviewService
}

func NewReviewHandler(service reviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

// Create godoc
// @Summary Review a finished appointment
// @Tags Reviews
// @Accept json
// @Produce json
// @Param payload body models.CreateReviewRequest true "Review"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /reviews/ [post]
func (h *ReviewHandler) Create(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req models.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err, "invalid review payload")
		return
	}

	review, err := h.service.Create(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, review)
}

// ListByBusiness godoc
// @Summary Public reviews of a business
// @Tags Reviews
// @Produce json
// @Param id path string true "Business ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reviews/business/{id} [get]
func (h *ReviewHandler) ListByBusiness(c *gin.Context) {
	items, err := h.service.ListByBusiness(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Eligibility godoc
// @Summary Whether the caller may review a business
// @Tags Reviews
// @Produce json
// @Param id path string true "Business ID"
// @Success 200 {object} response.Envelope
// @Router /reviews/eligibility/{id} [get]
func (h *ReviewHandler) Eligibility(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	res, err := h.service.Eligibility(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// Reply godoc
// @Summary Answer a review
// @Tags Reviews
// @Accept json
// @Produce json
// @Param id path string true "Review ID"
// @Param payload body models.ReplyReviewRequest true "Reply"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /reviews/{id}/reply [post]
func (h *ReviewHandler) Reply(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req models.ReplyReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err, "invalid reply payload")
		return
	}

	review, err := h.service.Reply(c.Request.Context(), c.Param("id"), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, review)
}
