package models

import (
	"strings"
	"time"
)

// Weekday is the lowercase English day name used as schedule key.
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// Weekdays lists the week starting on Monday.
var Weekdays = [7]Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// ParseWeekday normalises a day name. ok is false for unknown names.
func ParseWeekday(raw string) (Weekday, bool) {
	w := Weekday(strings.ToLower(strings.TrimSpace(raw)))
	for _, d := range Weekdays {
		if d == w {
			return w, true
		}
	}
	return "", false
}

// DaySchedule is one weekday of a business's opening hours.
type DaySchedule struct {
	IsActive            bool   `db:"is_active" json:"is_active"`
	OpenTime            string `db:"open_time" json:"open_time"`
	CloseTime           string `db:"close_time" json:"close_time"`
	SlotDurationMinutes int    `db:"slot_duration_minutes" json:"slot_duration_minutes"`
	CapacityPerSlot     int    `db:"capacity_per_slot" json:"capacity_per_slot"`
}

// WeeklySchedule maps each weekday to its hours.
type WeeklySchedule map[Weekday]DaySchedule

// Configured reports whether at least one day is open.
func (w WeeklySchedule) Configured() bool {
	for _, d := range w {
		if d.IsActive {
			return true
		}
	}
	return false
}

// ScheduleEntry is the persisted row of business_schedules.
type ScheduleEntry struct {
	BusinessID string  `db:"business_id"`
	Weekday    Weekday `db:"weekday"`
	DaySchedule
	UpdatedAt time.Time `db:"updated_at"`
}
