package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/booking-api/internal/models"
)

// ScheduleRepository persists weekly schedules, one row per business and weekday.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository constructs the repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// Get returns the stored days of a business. Days never configured are absent.
func (r *ScheduleRepository) Get(ctx context.Context, businessID string) (models.WeeklySchedule, error) {
	query := r.db.Rebind(`SELECT business_id, weekday, is_active, open_time, close_time, slot_duration_minutes, capacity_per_slot, updated_at FROM business_schedules WHERE business_id = ?`)
	var rows []models.ScheduleEntry
	if err := r.db.SelectContext(ctx, &rows, query, businessID); err != nil {
		return nil, fmt.Errorf("get schedule: %w", err)
	}
	week := make(models.WeeklySchedule, len(rows))
	for _, row := range rows {
		week[row.Weekday] = row.DaySchedule
	}
	return week, nil
}

// Replace overwrites all days of a business in one transaction.
func (r *ScheduleRepository) Replace(ctx context.Context, businessID string, week models.WeeklySchedule) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schedule tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM business_schedules WHERE business_id = ?`), businessID); err != nil {
		return fmt.Errorf("clear schedule: %w", err)
	}

	now := time.Now().UTC()
	insert := tx.Rebind(`INSERT INTO business_schedules (business_id, weekday, is_active, open_time, close_time, slot_duration_minutes, capacity_per_slot, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	for _, w := range models.Weekdays {
		day, ok := week[w]
		if !ok {
			continue
		}
		if _, err := tx.ExecContext(ctx, insert, businessID, w, day.IsActive, day.OpenTime, day.CloseTime, day.SlotDurationMinutes, day.CapacityPerSlot, now); err != nil {
			return fmt.Errorf("insert schedule %s: %w", w, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schedule: %w", err)
	}
	return nil
}
