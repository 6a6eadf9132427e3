package models

import "time"

// AppointmentMode selects how capacity is counted for a business.
type AppointmentMode string

const (
	// ModeGeneric counts bookings against capacity_per_slot.
	ModeGeneric AppointmentMode = "generic"
	// ModePerEmployee books an employee's own calendar, one appointment per slot.
	ModePerEmployee AppointmentMode = "per_employee"
)

// BusinessStatus gates whether a business can be booked.
type BusinessStatus string

const (
	BusinessDraft     BusinessStatus = "draft"
	BusinessPublished BusinessStatus = "published"
)

// Business is a bookable listing owned by an OWNER user.
type Business struct {
	ID              string          `db:"id" json:"id"`
	OwnerID         string          `db:"owner_id" json:"owner_id"`
	Name            string          `db:"name" json:"name"`
	Description     string          `db:"description" json:"description"`
	Address         string          `db:"address" json:"address"`
	Timezone        string          `db:"timezone" json:"timezone"`
	AppointmentMode AppointmentMode `db:"appointment_mode" json:"appointment_mode"`
	Status          BusinessStatus  `db:"status" json:"status"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// Published reports whether the business accepts bookings.
func (b *Business) Published() bool {
	return b != nil && b.Status == BusinessPublished
}

// Location resolves the business timezone, falling back to fallback when unset or unknown.
func (b *Business) Location(fallback *time.Location) *time.Location {
	if b != nil && b.Timezone != "" {
		if loc, err := time.LoadLocation(b.Timezone); err == nil {
			return loc
		}
	}
	if fallback == nil {
		return time.UTC
	}
	return fallback
}

// BusinessDetail is the public view of a business with its weekly schedule.
type BusinessDetail struct {
	Business
	Schedule WeeklySchedule `json:"schedule"`
}

// CreateBusinessRequest payload for registering a business.
type CreateBusinessRequest struct {
	Name            string          `json:"name" validate:"required,max=120"`
	Description     string          `json:"description" validate:"max=2000"`
	Address         string          `json:"address" validate:"max=255"`
	Timezone        string          `json:"timezone" validate:"omitempty,timezone"`
	AppointmentMode AppointmentMode `json:"appointment_mode" validate:"omitempty,oneof=generic per_employee"`
}

// UpdateBusinessRequest carries partial updates; nil fields are left untouched.
type UpdateBusinessRequest struct {
	Name            *string          `json:"name" validate:"omitempty,min=1,max=120"`
	Description     *string          `json:"description" validate:"omitempty,max=2000"`
	Address         *string          `json:"address" validate:"omitempty,max=255"`
	Timezone        *string          `json:"timezone" validate:"omitempty,timezone"`
	AppointmentMode *AppointmentMode `json:"appointment_mode" validate:"omitempty,oneof=generic per_employee"`
}
