package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/booking-api/internal/models"
)

var appointmentCols = []string{"id", "business_id", "user_id", "employee_id", "appointment_time", "slot_date", "slot_time", "status", "cancelled_at", "created_at", "updated_at"}

func mondayNine() *models.Appointment {
	return &models.Appointment{
		BusinessID:      "b1",
		UserID:          "u1",
		AppointmentTime: time.Date(2030, 5, 6, 9, 0, 0, 0, time.UTC),
		SlotDate:        "2030-05-06",
		SlotTime:        "09:00",
	}
}

func TestReserveCommits(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO slot_reservations").
		WithArgs("b1", "", "2030-05-06", "09:00", 2).
		WillReturnRows(sqlmock.NewRows([]string{"booked"}).AddRow(1))
	mock.ExpectExec("INSERT INTO appointments").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	appt := mondayNine()
	require.NoError(t, repo.Reserve(context.Background(), appt, 2))
	assert.NotEmpty(t, appt.ID)
	assert.Equal(t, models.StatusConfirmed, appt.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveFullSlot(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO slot_reservations").WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := repo.Reserve(context.Background(), mondayNine(), 1)
	assert.ErrorIs(t, err, ErrSlotFull)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveEmployeeSeatTaken(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	emp := "e1"
	appt := mondayNine()
	appt.EmployeeID = &emp

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO slot_reservations").
		WithArgs("b1", "", "2030-05-06", "09:00", Unlimited).
		WillReturnRows(sqlmock.NewRows([]string{"booked"}).AddRow(3))
	mock.ExpectQuery("INSERT INTO slot_reservations").
		WithArgs("b1", "e1", "2030-05-06", "09:00", 1).
		WillReturnRows(sqlmock.NewRows([]string{"booked"}))
	mock.ExpectRollback()

	err := repo.Reserve(context.Background(), appt, Unlimited)
	assert.ErrorIs(t, err, ErrSlotFull)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveUniqueViolationIsFull(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO slot_reservations").WillReturnRows(sqlmock.NewRows([]string{"booked"}).AddRow(1))
	mock.ExpectExec("INSERT INTO appointments").WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	err := repo.Reserve(context.Background(), mondayNine(), 1)
	assert.ErrorIs(t, err, ErrSlotFull)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveZeroCapacity(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.ErrorIs(t, repo.Reserve(context.Background(), mondayNine(), 0), ErrSlotFull)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelLosesCompareAndSet(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE appointments SET status = ?, cancelled_at = ?, updated_at = ? WHERE id = ? AND status = ?")).
		WithArgs(models.StatusCancelled, sqlmock.AnyArg(), sqlmock.AnyArg(), "a1", models.StatusConfirmed).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.Cancel(context.Background(), "a1", time.Now())
	assert.ErrorIs(t, err, ErrNotConfirmed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelReleasesBothCounters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE appointments SET status").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM appointments WHERE id = \\?").WithArgs("a1").
		WillReturnRows(sqlmock.NewRows(appointmentCols).
			AddRow("a1", "b1", "u1", "e1", now, "2030-05-06", "09:00", "cancelled", now, now, now))
	mock.ExpectExec("UPDATE slot_reservations SET booked = booked - 1").
		WithArgs("b1", "", "2030-05-06", "09:00").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE slot_reservations SET booked = booked - 1").
		WithArgs("b1", "e1", "2030-05-06", "09:00").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	appt, err := repo.Cancel(context.Background(), "a1", now)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, appt.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountConfirmedBySlotForEmployee(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("AND status = ? AND employee_id = ? GROUP BY slot_time")).
		WithArgs("b1", "2030-05-06", models.StatusConfirmed, "e1").
		WillReturnRows(sqlmock.NewRows([]string{"slot_time", "booked"}).AddRow("09:00", 1))

	counts, err := repo.CountConfirmedBySlot(context.Background(), "b1", "2030-05-06", "e1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"09:00": 1}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}
