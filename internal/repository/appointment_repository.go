package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/booking-api/internal/models"
)

// Unlimited disables the business-wide cap, e.g. for per-employee businesses where each
// employee calendar is capped on its own.
const Unlimited = math.MaxInt32

const appointmentColumns = `id, business_id, user_id, employee_id, appointment_time, slot_date, slot_time, status, cancelled_at, created_at, updated_at`

// AppointmentRepository is the reservation ledger. Capacity is enforced with counters in
// slot_reservations: one business-wide row per (business, date, time) keyed with an empty
// employee id, plus one row per employee capped at 1. Counters are bumped with a
// conditional upsert, so two writers on the same key serialize on the row lock.
type AppointmentRepository struct {
	db *sqlx.DB
}

// NewAppointmentRepository constructs the repository.
func NewAppointmentRepository(db *sqlx.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

type querier interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

// Reserve books appt atomically. businessCapacity caps the business-wide counter; an
// employee booking additionally takes that employee's single seat. ErrSlotFull is
// returned when any cap is reached.
func (r *AppointmentRepository) Reserve(ctx context.Context, appt *models.Appointment, businessCapacity int) error {
	if appt.ID == "" {
		appt.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	appt.Status = models.StatusConfirmed
	appt.AppointmentTime = appt.AppointmentTime.UTC()
	appt.CreatedAt, appt.UpdatedAt = now, now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reserve tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := bumpCounter(ctx, tx, appt.BusinessID, "", appt.SlotDate, appt.SlotTime, businessCapacity); err != nil {
		return err
	}
	if emp := appt.EmployeeKey(); emp != "" {
		if err := bumpCounter(ctx, tx, appt.BusinessID, emp, appt.SlotDate, appt.SlotTime, 1); err != nil {
			return err
		}
	}

	insert, args, err := tx.BindNamed(`INSERT INTO appointments (`+appointmentColumns+`) VALUES (:id, :business_id, :user_id, :employee_id, :appointment_time, :slot_date, :slot_time, :status, :cancelled_at, :created_at, :updated_at)`, appt)
	if err != nil {
		return fmt.Errorf("bind appointment insert: %w", err)
	}
	if _, err := tx.ExecContext(ctx, insert, args...); err != nil {
		if isUniqueViolation(err) {
			return ErrSlotFull
		}
		return fmt.Errorf("insert appointment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return ErrSlotFull
		}
		return fmt.Errorf("commit reserve: %w", err)
	}
	return nil
}

func bumpCounter(ctx context.Context, q querier, businessID, employeeID, date, slot string, capacity int) error {
	if capacity <= 0 {
		return ErrSlotFull
	}
	query := q.Rebind(`INSERT INTO slot_reservations (business_id, employee_id, slot_date, slot_time, booked) VALUES (?, ?, ?, ?, 1)
		ON CONFLICT (business_id, employee_id, slot_date, slot_time)
		DO UPDATE SET booked = slot_reservations.booked + 1 WHERE slot_reservations.booked < ?
		RETURNING booked`)
	var booked int
	if err := q.GetContext(ctx, &booked, query, businessID, employeeID, date, slot, capacity); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSlotFull
		}
		return fmt.Errorf("reserve slot counter: %w", err)
	}
	return nil
}

func releaseCounter(ctx context.Context, q querier, businessID, employeeID, date, slot string) error {
	query := q.Rebind(`UPDATE slot_reservations SET booked = booked - 1 WHERE business_id = ? AND employee_id = ? AND slot_date = ? AND slot_time = ? AND booked > 0`)
	if _, err := q.ExecContext(ctx, query, businessID, employeeID, date, slot); err != nil {
		return fmt.Errorf("release slot counter: %w", err)
	}
	return nil
}

// Cancel moves a confirmed appointment to cancelled and frees its seats in one
// transaction. The status change is a compare-and-set; ErrNotConfirmed means it lost.
func (r *AppointmentRepository) Cancel(ctx context.Context, id string, at time.Time) (*models.Appointment, error) {
	at = at.UTC()
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin cancel tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	update := tx.Rebind(`UPDATE appointments SET status = ?, cancelled_at = ?, updated_at = ? WHERE id = ? AND status = ?`)
	res, err := tx.ExecContext(ctx, update, models.StatusCancelled, at, at, id, models.StatusConfirmed)
	if err != nil {
		return nil, fmt.Errorf("cancel appointment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("cancel appointment rows: %w", err)
	}
	if n == 0 {
		return nil, ErrNotConfirmed
	}

	var appt models.Appointment
	if err := tx.GetContext(ctx, &appt, tx.Rebind(`SELECT `+appointmentColumns+` FROM appointments WHERE id = ?`), id); err != nil {
		return nil, fmt.Errorf("reload cancelled appointment: %w", err)
	}

	if err := releaseCounter(ctx, tx, appt.BusinessID, "", appt.SlotDate, appt.SlotTime); err != nil {
		return nil, err
	}
	if emp := appt.EmployeeKey(); emp != "" {
		if err := releaseCounter(ctx, tx, appt.BusinessID, emp, appt.SlotDate, appt.SlotTime); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit cancel: %w", err)
	}
	return &appt, nil
}

// FindByID returns an appointment or sql.ErrNoRows.
func (r *AppointmentRepository) FindByID(ctx context.Context, id string) (*models.Appointment, error) {
	query := r.db.Rebind(`SELECT ` + appointmentColumns + ` FROM appointments WHERE id = ?`)
	var appt models.Appointment
	if err := r.db.GetContext(ctx, &appt, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find appointment: %w", err)
	}
	return &appt, nil
}

// ListByUser returns a user's appointments, most recent first.
func (r *AppointmentRepository) ListByUser(ctx context.Context, userID string) ([]models.Appointment, error) {
	query := r.db.Rebind(`SELECT ` + appointmentColumns + ` FROM appointments WHERE user_id = ? ORDER BY appointment_time DESC, id ASC`)
	out := []models.Appointment{}
	if err := r.db.SelectContext(ctx, &out, query, userID); err != nil {
		return nil, fmt.Errorf("list appointments by user: %w", err)
	}
	return out, nil
}

// ListByBusiness returns a business's appointments joined with the booking user.
// date, when set, restricts to one business-local calendar day.
func (r *AppointmentRepository) ListByBusiness(ctx context.Context, businessID, date string) ([]models.AppointmentWithUser, error) {
	query := `SELECT a.id, a.business_id, a.user_id, a.employee_id, a.appointment_time, a.slot_date, a.slot_time, a.status, a.cancelled_at, a.created_at, a.updated_at,
		u.id AS "user.id", u.email AS "user.email", u.full_name AS "user.full_name"
		FROM appointments a JOIN users u ON u.id = a.user_id
		WHERE a.business_id = ?`
	args := []interface{}{businessID}
	if date != "" {
		query += ` AND a.slot_date = ?`
		args = append(args, date)
	}
	query += ` ORDER BY a.appointment_time ASC, a.id ASC`

	out := []models.AppointmentWithUser{}
	if err := r.db.SelectContext(ctx, &out, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list appointments by business: %w", err)
	}
	return out, nil
}

// CountConfirmedBySlot returns confirmed bookings per slot label for one business day.
// A non-empty employeeID restricts the count to that employee.
func (r *AppointmentRepository) CountConfirmedBySlot(ctx context.Context, businessID, date, employeeID string) (map[string]int, error) {
	query := `SELECT slot_time, COUNT(*) AS booked FROM appointments WHERE business_id = ? AND slot_date = ? AND status = ?`
	args := []interface{}{businessID, date, models.StatusConfirmed}
	if employeeID != "" {
		query += ` AND employee_id = ?`
		args = append(args, employeeID)
	}
	query += ` GROUP BY slot_time`

	var rows []struct {
		SlotTime string `db:"slot_time"`
		Booked   int    `db:"booked"`
	}
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("count confirmed by slot: %w", err)
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.SlotTime] = row.Booked
	}
	return counts, nil
}
