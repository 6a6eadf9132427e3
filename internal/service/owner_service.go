package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/booking-api/internal/models"
	"github.com/noah-isme/booking-api/internal/repository"
	appErrors "github.com/noah-isme/booking-api/pkg/errors"
)

type ownerRequestStore interface {
	Submit(ctx context.Context, req *models.OwnerRequest) error
	FindByUser(ctx context.Context, userID string) (*models.OwnerRequest, error)
	List(ctx context.Context, status models.OwnerRequestStatus) ([]models.OwnerRequestWithUser, error)
	Approve(ctx context.Context, userID string, at time.Time) (bool, error)
	Reject(ctx context.Context, userID string, at time.Time) (bool, error)
}

type userDirectory interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	ListByRole(ctx context.Context, role models.UserRole) ([]models.UserSummary, error)
}

// OwnerService runs the application flow that turns a customer into a business owner.
type OwnerService struct {
	requests  ownerRequestStore
	users     userDirectory
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

func NewOwnerService(requests ownerRequestStore, users userDirectory, validate *validator.Validate, logger *zap.Logger) *OwnerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &OwnerService{requests: requests, users: users, validator: validate, logger: logger, now: time.Now}
}

// Request files the caller's application. Only USER accounts may apply, and only while
// they have no pending or approved request.
func (s *OwnerService) Request(ctx context.Context, claims *models.JWTClaims, payload models.OwnerRequestPayload) (*models.OwnerRequest, error) {
	if claims == nil || claims.Role != models.RoleUser {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only customer accounts can request owner access")
	}
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Invalid(err, "invalid owner request")
	}

	req := &models.OwnerRequest{
		UserID:              claims.UserID,
		BusinessName:        strings.TrimSpace(payload.BusinessName),
		BusinessDescription: payload.BusinessDescription,
		Address:             payload.Address,
		LogoURL:             payload.LogoURL,
	}
	switch err := s.requests.Submit(ctx, req); {
	case errors.Is(err, repository.ErrDuplicate):
		return nil, appErrors.Clone(appErrors.ErrConflict, "an owner request is already pending or approved")
	case err != nil:
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to submit owner request")
	}
	s.logger.Info("owner requested", zap.String("user_id", req.UserID))
	return req, nil
}

// Status returns the caller's request, or nil when they never applied.
func (s *OwnerService) Status(ctx context.Context, userID string) (*models.OwnerRequest, error) {
	req, err := s.requests.FindByUser(ctx, userID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to load owner request")
	}
	return req, nil
}

// Requests lists applications in status, pending when status is empty.
func (s *OwnerService) Requests(ctx context.Context, status models.OwnerRequestStatus) ([]models.OwnerRequestWithUser, error) {
	switch status {
	case "":
		status = models.OwnerRequestPending
	case models.OwnerRequestPending, models.OwnerRequestApproved, models.OwnerRequestRejected:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be pending, approved or rejected")
	}
	items, err := s.requests.List(ctx, status)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to list owner requests")
	}
	return items, nil
}

// Approve accepts a pending request and promotes its user to OWNER.
func (s *OwnerService) Approve(ctx context.Context, userID string) (*models.UserInfo, error) {
	ok, err := s.requests.Approve(ctx, userID, s.now())
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to approve owner request")
	}
	if !ok {
		return nil, s.notPending(ctx, userID)
	}
	s.logger.Info("owner approved", zap.String("user_id", userID))

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to load user")
	}
	info := userInfo(user)
	info.OwnerRequest, err = s.Status(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// Reject declines a pending request. The user keeps the USER role and may apply again.
func (s *OwnerService) Reject(ctx context.Context, userID string) (*models.OwnerRequest, error) {
	ok, err := s.requests.Reject(ctx, userID, s.now())
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to reject owner request")
	}
	if !ok {
		return nil, s.notPending(ctx, userID)
	}
	s.logger.Info("owner rejected", zap.String("user_id", userID))
	return s.Status(ctx, userID)
}

// Owners lists active OWNER accounts.
func (s *OwnerService) Owners(ctx context.Context) ([]models.UserSummary, error) {
	items, err := s.users.ListByRole(ctx, models.RoleOwner)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to list owners")
	}
	return items, nil
}

func (s *OwnerService) notPending(ctx context.Context, userID string) error {
	req, err := s.Status(ctx, userID)
	switch {
	case err != nil:
		return err
	case req == nil:
		return appErrors.Clone(appErrors.ErrNotFound, "user has no owner request")
	}
	return appErrors.Clone(appErrors.ErrConflict, "owner request is already "+string(req.Status))
}
