package models

import "time"

// AppointmentStatus is the persisted lifecycle state. confirmed -> cancelled is the only transition.
type AppointmentStatus string

const (
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// DisplayStatus is derived for presentation and never stored.
type DisplayStatus string

const (
	DisplayConfirmed DisplayStatus = "confirmed"
	DisplayCancelled DisplayStatus = "cancelled"
	DisplayFinished  DisplayStatus = "finished"
)

// Appointment is one reservation in the ledger.
type Appointment struct {
	ID              string            `db:"id" json:"id"`
	BusinessID      string            `db:"business_id" json:"business_id"`
	UserID          string            `db:"user_id" json:"user_id"`
	EmployeeID      *string           `db:"employee_id" json:"employee_id,omitempty"`
	AppointmentTime time.Time         `db:"appointment_time" json:"appointment_time"`
	SlotDate        string            `db:"slot_date" json:"slot_date"`
	SlotTime        string            `db:"slot_time" json:"slot_time"`
	Status          AppointmentStatus `db:"status" json:"status"`
	CancelledAt     *time.Time        `db:"cancelled_at" json:"cancelled_at,omitempty"`
	CreatedAt       time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time         `db:"updated_at" json:"updated_at"`
	DisplayStatus   DisplayStatus     `db:"-" json:"display_status,omitempty"`
}

// DisplayStatusAt reports finished for confirmed appointments whose time has passed.
func (a Appointment) DisplayStatusAt(now time.Time) DisplayStatus {
	if a.Status == StatusCancelled {
		return DisplayCancelled
	}
	if a.AppointmentTime.Before(now) {
		return DisplayFinished
	}
	return DisplayConfirmed
}

// EmployeeKey returns the employee id or "" for generic bookings.
func (a Appointment) EmployeeKey() string {
	if a.EmployeeID == nil {
		return ""
	}
	return *a.EmployeeID
}

// AppointmentWithUser is the business-side listing row.
type AppointmentWithUser struct {
	Appointment
	User UserSummary `db:"user" json:"user"`
}

// CreateAppointmentRequest is the booking payload. appointment_time is RFC 3339 or a
// business-local "YYYY-MM-DDTHH:MM[:SS]".
type CreateAppointmentRequest struct {
	BusinessID      string  `json:"business_id" validate:"required"`
	AppointmentTime string  `json:"appointment_time" validate:"required"`
	EmployeeID      *string `json:"employee_id"`
}
