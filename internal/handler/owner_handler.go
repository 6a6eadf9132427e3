package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/booking-api/internal/models"
	"github.com/noah-isme/booking-api/pkg/response"
)

type ownerService interface {
	Request(ctx context.Context, claims *models.JWTClaims, payload models.OwnerRequestPayload) (*models.OwnerRequest, error)
	Requests(ctx context.Context, status models.OwnerRequestStatus) ([]models.OwnerRequestWithUser, error)
	Approve(ctx context.Context, userID string) (*models.UserInfo, error)
	Reject(ctx context.Context, userID string) (*models.OwnerRequest, error)
	Owners(ctx context.Context) ([]models.UserSummary, error)
}

// OwnerHandler serves owner applications and their admin review.
type OwnerHandler struct {
	service ownerService
}

func NewOwnerHandler(service ownerService) *OwnerHandler {
	return &OwnerHandler{service: service}
}

// RequestOwner godoc
// @Summary Apply for the business owner role
// @Tags Users
// @Accept json
// @Produce json
// @Param payload body models.OwnerRequestPayload true "Application"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /users/me/request-owner [post]
func (h *OwnerHandler) RequestOwner(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var payload models.OwnerRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		invalidPayload(c, err, "invalid owner request")
		return
	}

	req, err := h.service.Request(c.Request.Context(), claims, payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, req)
}

// ListRequests godoc
// @Summary Owner applications
// @Tags Users
// @Produce json
// @Param status query string false "pending (default), approved or rejected"
// @Success 200 {object} response.Envelope
// @Router /users/admin/owner-requests [get]
func (h *OwnerHandler) ListRequests(c *gin.Context) {
	items, err := h.service.Requests(c.Request.Context(), models.OwnerRequestStatus(c.Query("status")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Approve godoc
// @Summary Approve a pending owner application
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /users/admin/approve-owner/{id} [post]
func (h *OwnerHandler) Approve(c *gin.Context) {
	info, err := h.service.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, info)
}

// Reject godoc
// @Summary Reject a pending owner application
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /users/admin/reject-owner/{id} [post]
func (h *OwnerHandler) Reject(c *gin.Context) {
	req, err := h.service.Reject(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, req)
}

// ListOwners godoc
// @Summary Approved business owners
// @Tags Users
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /users/admin/owners [get]
func (h *OwnerHandler) ListOwners(c *gin.Context) {
	items, err := h.service.Owners(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}
