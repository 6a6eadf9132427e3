package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrSlotFull means the slot reached its capacity when the reservation was committed.
	ErrSlotFull = errors.New("slot is full")
	// ErrNotConfirmed means a cancel lost the compare-and-set: the appointment is missing or already cancelled.
	ErrNotConfirmed = errors.New("appointment is not confirmed")
	// ErrDuplicate wraps unique constraint violations outside the ledger.
	ErrDuplicate = errors.New("duplicate record")
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

// notFoundOr passes sql.ErrNoRows through untouched and annotates every other error with op.
func notFoundOr(err error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return sql.ErrNoRows
	}
	return fmt.Errorf("%s: %w", op, err)
}
