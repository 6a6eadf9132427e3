package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// AllowedSlots restricts an employee to specific "HH:MM" slot labels per weekday.
// A weekday that is absent grants nothing.
type AllowedSlots map[Weekday][]string

// Value marshals the allowed slots to JSON for persistence.
func (a AllowedSlots) Value() (driver.Value, error) {
	if a == nil {
		return "{}", nil
	}
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal allowed slots: %w", err)
	}
	return string(data), nil
}

// Scan unmarshals JSON payloads into the allowed slots map.
func (a *AllowedSlots) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*a = AllowedSlots{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for AllowedSlots", value)
	}
	if len(data) == 0 {
		*a = AllowedSlots{}
		return nil
	}
	out := AllowedSlots{}
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("unmarshal allowed slots: %w", err)
	}
	*a = out
	return nil
}

// Employee belongs to exactly one business.
type Employee struct {
	ID           string       `db:"id" json:"id"`
	BusinessID   string       `db:"business_id" json:"business_id"`
	Name         string       `db:"name" json:"name"`
	Active       bool         `db:"active" json:"active"`
	AllowedSlots AllowedSlots `db:"allowed_slots" json:"allowed_slots"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

// CreateEmployeeRequest payload for adding an employee.
type CreateEmployeeRequest struct {
	Name         string       `json:"name" validate:"required,max=120"`
	AllowedSlots AllowedSlots `json:"allowed_slots"`
}

// UpdateAllowedSlotsRequest replaces an employee's allowed slots.
type UpdateAllowedSlotsRequest struct {
	AllowedSlots AllowedSlots `json:"allowed_slots" validate:"required"`
}
