package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/booking-api/internal/availability"
	"github.com/noah-isme/booking-api/internal/models"
	appErrors "github.com/noah-isme/booking-api/pkg/errors"
)

type employeeRepository interface {
	Create(ctx context.Context, e *models.Employee) error
	FindByID(ctx context.Context, id string) (*models.Employee, error)
	ListActiveByBusiness(ctx context.Context, businessID string) ([]models.Employee, error)
	UpdateAllowedSlots(ctx context.Context, id string, allowed models.AllowedSlots) error
	Deactivate(ctx context.Context, id string) error
}

type employeeFinder interface {
	FindByID(ctx context.Context, id string) (*models.Employee, error)
}

// EmployeeService manages the staff of a business and their slot grants.
type EmployeeService struct {
	repo       employeeRepository
	businesses businessFinder
	schedules  scheduleReader
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewEmployeeService creates an EmployeeService.
func NewEmployeeService(repo employeeRepository, businesses businessFinder, schedules scheduleReader, validate *validator.Validate, logger *zap.Logger) *EmployeeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &EmployeeService{repo: repo, businesses: businesses, schedules: schedules, validator: validate, logger: logger}
}

// Create adds an active employee to a business the caller manages.
func (s *EmployeeService) Create(ctx context.Context, businessID string, claims *models.JWTClaims, req models.CreateEmployeeRequest) (*models.Employee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid employee payload")
	}
	if _, err := ownedBusiness(ctx, s.businesses, businessID, claims); err != nil {
		return nil, err
	}
	allowed, err := s.checkAllowed(ctx, businessID, req.AllowedSlots)
	if err != nil {
		return nil, err
	}

	e := &models.Employee{
		BusinessID:   businessID,
		Name:         strings.TrimSpace(req.Name),
		Active:       true,
		AllowedSlots: allowed,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to create employee")
	}
	s.logger.Info("employee created", zap.String("business_id", businessID), zap.String("employee_id", e.ID))
	return e, nil
}

// ListActive returns the bookable employees of a business.
func (s *EmployeeService) ListActive(ctx context.Context, businessID string) ([]models.Employee, error) {
	if _, err := findBusiness(ctx, s.businesses, businessID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListActiveByBusiness(ctx, businessID)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to list employees")
	}
	return items, nil
}

// UpdateAllowedSlots replaces an employee's grants after checking them against the schedule.
func (s *EmployeeService) UpdateAllowedSlots(ctx context.Context, employeeID string, claims *models.JWTClaims, req models.UpdateAllowedSlotsRequest) (*models.Employee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid allowed slots payload")
	}
	e, err := s.managedEmployee(ctx, employeeID, claims)
	if err != nil {
		return nil, err
	}
	allowed, err := s.checkAllowed(ctx, e.BusinessID, req.AllowedSlots)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateAllowedSlots(ctx, e.ID, allowed); err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to update allowed slots")
	}
	e.AllowedSlots = allowed
	return e, nil
}

// Deactivate hides an employee from booking. Existing appointments are kept.
func (s *EmployeeService) Deactivate(ctx context.Context, employeeID string, claims *models.JWTClaims) error {
	e, err := s.managedEmployee(ctx, employeeID, claims)
	if err != nil {
		return err
	}
	if !e.Active {
		return nil
	}
	if err := s.repo.Deactivate(ctx, e.ID); err != nil {
		return appErrors.WrapAs(err, appErrors.ErrInternal, "failed to deactivate employee")
	}
	s.logger.Info("employee deactivated", zap.String("employee_id", e.ID))
	return nil
}

func (s *EmployeeService) managedEmployee(ctx context.Context, employeeID string, claims *models.JWTClaims) (*models.Employee, error) {
	e, err := s.repo.FindByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to load employee")
	}
	if _, err := ownedBusiness(ctx, s.businesses, e.BusinessID, claims); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *EmployeeService) checkAllowed(ctx context.Context, businessID string, allowed models.AllowedSlots) (models.AllowedSlots, error) {
	if len(allowed) == 0 {
		return models.AllowedSlots{}, nil
	}
	week, err := s.schedules.Get(ctx, businessID)
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	clean, err := availability.ValidateAllowed(week, allowed)
	if err != nil {
		return nil, appErrors.Invalid(err, err.Error())
	}
	return clean, nil
}
