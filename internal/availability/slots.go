// Package availability derives bookable slots from weekly schedules. Everything here is
// pure: callers supply the schedule, the allowed-slot overrides and the booked counts.
package availability

import (
	"fmt"
	"sort"
	"time"

	"github.com/noah-isme/booking-api/internal/models"
)

// Clock is a wall-clock time of day in minutes since midnight.
type Clock int

// ParseClock parses "HH:MM" (24h).
func ParseClock(raw string) (Clock, error) {
	t, err := time.Parse("15:04", raw)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q, expected HH:MM", raw)
	}
	return Clock(t.Hour()*60 + t.Minute()), nil
}

// FormatClock renders c as "HH:MM".
func FormatClock(c Clock) string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// GenerateSlots lists the slot labels of a day in ascending order. Only whole slots are
// produced: a trailing remainder shorter than the slot duration is dropped, so the count
// is floor((close-open)/duration). Inactive or malformed days yield nothing.
func GenerateSlots(day models.DaySchedule) []string {
	if !day.IsActive || day.SlotDurationMinutes <= 0 {
		return []string{}
	}
	open, err := ParseClock(day.OpenTime)
	if err != nil {
		return []string{}
	}
	closeAt, err := ParseClock(day.CloseTime)
	if err != nil || open >= closeAt {
		return []string{}
	}

	step := Clock(day.SlotDurationMinutes)
	slots := make([]string, 0, int(closeAt-open)/int(step))
	for cursor := open; cursor+step <= closeAt; cursor += step {
		slots = append(slots, FormatClock(cursor))
	}
	return slots
}

// FilterAllowed keeps the raw slots that appear in allowed, preserving raw order.
func FilterAllowed(raw, allowed []string) []string {
	set := make(map[string]struct{}, len(allowed))
	for _, s := range allowed {
		set[s] = struct{}{}
	}
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if _, ok := set[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

// EmployeeSlots intersects the day's slots with the employee's grant for weekday.
func EmployeeSlots(day models.DaySchedule, weekday models.Weekday, allowed models.AllowedSlots) []string {
	return FilterAllowed(GenerateSlots(day), allowed[weekday])
}

// Contains reports whether label is one of slots.
func Contains(slots []string, label string) bool {
	for _, s := range slots {
		if s == label {
			return true
		}
	}
	return false
}

// AnnotateGeneric marks each slot with capacity and confirmed bookings.
func AnnotateGeneric(raw []string, capacity int, booked map[string]int) []models.Slot {
	out := make([]models.Slot, 0, len(raw))
	for _, label := range raw {
		total, count := capacity, booked[label]
		out = append(out, models.Slot{
			Time:          label,
			TotalCapacity: &total,
			BookedCount:   &count,
			IsAvailable:   count < total,
		})
	}
	return out
}

// AnnotateEmployee marks a slot available when the employee has no confirmed booking there.
func AnnotateEmployee(raw []string, booked map[string]int) []models.Slot {
	out := make([]models.Slot, 0, len(raw))
	for _, label := range raw {
		out = append(out, models.Slot{Time: label, IsAvailable: booked[label] == 0})
	}
	return out
}

// AnnotateEmployeeShared is AnnotateEmployee for a business whose employees share the
// business-wide capacity: a slot is also unavailable once shared reaches capacity.
func AnnotateEmployeeShared(raw []string, own, shared map[string]int, capacity int) []models.Slot {
	out := AnnotateEmployee(raw, own)
	for i := range out {
		if shared[out[i].Time] >= capacity {
			out[i].IsAvailable = false
		}
	}
	return out
}

// WeekdayOf maps a calendar date to its schedule key.
func WeekdayOf(date time.Time) models.Weekday {
	// time.Weekday starts on Sunday.
	return models.Weekdays[(int(date.Weekday())+6)%7]
}

// ParseDate parses a "YYYY-MM-DD" calendar date in loc.
func ParseDate(raw string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation("2006-01-02", raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", raw)
	}
	return d, nil
}

// SortLabels orders HH:MM labels ascending in place.
func SortLabels(labels []string) {
	sort.Strings(labels)
}
