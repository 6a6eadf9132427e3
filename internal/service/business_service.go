package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/booking-api/internal/models"
	appErrors "github.com/noah-isme/booking-api/pkg/errors"
)

type businessRepository interface {
	Create(ctx context.Context, b *models.Business) error
	Update(ctx context.Context, b *models.Business) error
	FindByID(ctx context.Context, id string) (*models.Business, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Business, error)
	ListPublished(ctx context.Context) ([]models.Business, error)
}

type businessFinder interface {
	FindByID(ctx context.Context, id string) (*models.Business, error)
}

type scheduleReader interface {
	Get(ctx context.Context, businessID string) (models.WeeklySchedule, error)
}

// BusinessService manages business listings and their publication.
type BusinessService struct {
	repo            businessRepository
	schedules       scheduleReader
	users           userFinder
	validator       *validator.Validate
	logger          *zap.Logger
	defaultTimezone string
}

// NewBusinessService creates a BusinessService. users resolves owners for admin assignment.
func NewBusinessService(repo businessRepository, schedules scheduleReader, users userFinder, validate *validator.Validate, logger *zap.Logger, defaultTimezone string) *BusinessService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if defaultTimezone == "" {
		defaultTimezone = "UTC"
	}
	return &BusinessService{repo: repo, schedules: schedules, users: users, validator: validate, logger: logger, defaultTimezone: defaultTimezone}
}

// Create registers a draft business owned by the caller.
func (s *BusinessService) Create(ctx context.Context, claims *models.JWTClaims, req models.CreateBusinessRequest) (*models.Business, error) {
	if claims == nil || (claims.Role != models.RoleOwner && claims.Role != models.RoleAdmin) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only approved owners can create businesses")
	}
	return s.create(ctx, claims.UserID, req)
}

// AssignToOwner lets an admin open a draft business on behalf of an approved owner.
func (s *BusinessService) AssignToOwner(ctx context.Context, claims *models.JWTClaims, ownerID string, req models.CreateBusinessRequest) (*models.Business, error) {
	if !claims.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only admins can assign businesses")
	}
	if ownerID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "owner_id is required")
	}
	owner, err := s.users.FindByID(ctx, ownerID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, appErrors.Clone(appErrors.ErrNotFound, "owner not found")
	case err != nil:
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to load owner")
	}
	if owner.Role != models.RoleOwner {
		return nil, appErrors.Clone(appErrors.ErrConflict, "user is not an approved owner")
	}
	return s.create(ctx, owner.ID, req)
}

func (s *BusinessService) create(ctx context.Context, ownerID string, req models.CreateBusinessRequest) (*models.Business, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid business payload")
	}

	b := &models.Business{
		OwnerID:         ownerID,
		Name:            strings.TrimSpace(req.Name),
		Description:     req.Description,
		Address:         req.Address,
		Timezone:        req.Timezone,
		AppointmentMode: req.AppointmentMode,
		Status:          models.BusinessDraft,
	}
	if b.Timezone == "" {
		b.Timezone = s.defaultTimezone
	}
	if b.AppointmentMode == "" {
		b.AppointmentMode = models.ModeGeneric
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to create business")
	}
	s.logger.Info("business created", zap.String("business_id", b.ID), zap.String("owner_id", b.OwnerID))
	return b, nil
}

// Update applies the non-nil fields of req.
func (s *BusinessService) Update(ctx context.Context, id string, claims *models.JWTClaims, req models.UpdateBusinessRequest) (*models.Business, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid business payload")
	}
	b, err := ownedBusiness(ctx, s.repo, id, claims)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		b.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		b.Description = *req.Description
	}
	if req.Address != nil {
		b.Address = *req.Address
	}
	if req.Timezone != nil {
		b.Timezone = *req.Timezone
	}
	if req.AppointmentMode != nil {
		b.AppointmentMode = *req.AppointmentMode
	}

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to update business")
	}
	return b, nil
}

// Publish opens a business for booking. At least one weekday must be active.
func (s *BusinessService) Publish(ctx context.Context, id string, claims *models.JWTClaims) (*models.Business, error) {
	b, err := ownedBusiness(ctx, s.repo, id, claims)
	if err != nil {
		return nil, err
	}
	if b.Published() {
		return b, nil
	}

	week, err := s.schedules.Get(ctx, b.ID)
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	if !week.Configured() {
		return nil, appErrors.Clone(appErrors.ErrScheduleNotConfigured, "configure at least one active day before publishing")
	}

	b.Status = models.BusinessPublished
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to publish business")
	}
	s.logger.Info("business published", zap.String("business_id", b.ID))
	return b, nil
}

// ListMine returns the caller's businesses, drafts included.
func (s *BusinessService) ListMine(ctx context.Context, ownerID string) ([]models.Business, error) {
	items, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to list businesses")
	}
	return items, nil
}

// ListPublished returns the public catalogue.
func (s *BusinessService) ListPublished(ctx context.Context) ([]models.Business, error) {
	items, err := s.repo.ListPublished(ctx)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to list businesses")
	}
	return items, nil
}

// Detail returns a business with its schedule. Drafts are only visible to their owner or an admin.
func (s *BusinessService) Detail(ctx context.Context, id string, claims *models.JWTClaims) (*models.BusinessDetail, error) {
	b, err := findBusiness(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if !b.Published() && !canManage(b, claims) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "business not found")
	}

	week, err := s.schedules.Get(ctx, b.ID)
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	return &models.BusinessDetail{Business: *b, Schedule: week}, nil
}

func findBusiness(ctx context.Context, repo businessFinder, id string) (*models.Business, error) {
	b, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "business not found")
		}
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to load business")
	}
	return b, nil
}

// ownedBusiness loads a business the caller may manage.
func ownedBusiness(ctx context.Context, repo businessFinder, id string, claims *models.JWTClaims) (*models.Business, error) {
	b, err := findBusiness(ctx, repo, id)
	if err != nil {
		return nil, err
	}
	if !canManage(b, claims) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "business belongs to another owner")
	}
	return b, nil
}

func canManage(b *models.Business, claims *models.JWTClaims) bool {
	if claims == nil {
		return false
	}
	return claims.IsAdmin() || b.OwnerID == claims.UserID
}
