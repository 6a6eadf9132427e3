package availability

import (
	"fmt"

	"github.com/noah-isme/booking-api/internal/models"
)

// ValidateDay checks one weekday entry. Inactive days may carry any hours.
func ValidateDay(weekday models.Weekday, day models.DaySchedule) error {
	if !day.IsActive {
		return nil
	}
	open, err := ParseClock(day.OpenTime)
	if err != nil {
		return fmt.Errorf("%s open_time: %w", weekday, err)
	}
	closeAt, err := ParseClock(day.CloseTime)
	if err != nil {
		return fmt.Errorf("%s close_time: %w", weekday, err)
	}
	if open >= closeAt {
		return fmt.Errorf("%s: open_time must be before close_time", weekday)
	}
	if day.SlotDurationMinutes <= 0 {
		return fmt.Errorf("%s: slot_duration_minutes must be positive", weekday)
	}
	if day.CapacityPerSlot <= 0 {
		return fmt.Errorf("%s: capacity_per_slot must be positive", weekday)
	}
	if int(closeAt-open) < day.SlotDurationMinutes {
		return fmt.Errorf("%s: opening window shorter than one slot", weekday)
	}
	return nil
}

// ValidateWeek requires all seven weekdays and validates each one.
func ValidateWeek(week models.WeeklySchedule) error {
	for w := range week {
		if parsed, ok := models.ParseWeekday(string(w)); !ok || parsed != w {
			return fmt.Errorf("unknown weekday %q", w)
		}
	}
	for _, w := range models.Weekdays {
		day, ok := week[w]
		if !ok {
			return fmt.Errorf("missing schedule for %s", w)
		}
		if err := ValidateDay(w, day); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAllowed checks that every granted label is a generated slot of that weekday.
// Labels are normalised: duplicates removed and sorted.
func ValidateAllowed(week models.WeeklySchedule, allowed models.AllowedSlots) (models.AllowedSlots, error) {
	out := make(models.AllowedSlots, len(allowed))
	for key, labels := range allowed {
		w, ok := models.ParseWeekday(string(key))
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", key)
		}
		generated := GenerateSlots(week[w])
		seen := make(map[string]struct{}, len(labels))
		clean := make([]string, 0, len(labels))
		for _, label := range labels {
			if !Contains(generated, label) {
				return nil, fmt.Errorf("%s %s is not a slot of the business schedule", w, label)
			}
			if _, dup := seen[label]; dup {
				continue
			}
			seen[label] = struct{}{}
			clean = append(clean, label)
		}
		SortLabels(clean)
		out[w] = clean
	}
	return out, nil
}
