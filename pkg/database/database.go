package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/noah-isme/booking-api/pkg/config"
)

// Open connects to the configured store and, when enabled, applies the schema.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	var (
		db  *sqlx.DB
		err error
	)
	switch cfg.Driver {
	case config.DriverSQLite:
		db, err = NewSQLite(cfg.SQLitePath)
	case config.DriverPostgres, "":
		db, err = NewPostgres(cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}

// NewPostgres returns a configured PostgreSQL client.
func NewPostgres(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// NewSQLite opens an embedded database. SQLite allows one writer at a time, so the
// pool is pinned to a single connection and every transaction is serialized.
func NewSQLite(path string) (*sqlx.DB, error) {
	sqlx.BindDriver(config.DriverSQLite, sqlx.QUESTION)
	if path == "" {
		path = ":memory:"
	}
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if !strings.Contains(path, ":memory:") {
		db.SetConnMaxLifetime(time.Hour)
	}

	pragmas := []string{
		`PRAGMA journal_mode=WAL`,
		`PRAGMA foreign_keys=ON`,
		`PRAGMA busy_timeout=5000`,
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite %s: %w", p, err)
		}
	}

	return db, nil
}

// Migrate creates the booking schema when missing. Statements are idempotent.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for i, stmt := range schemaFor(db.DriverName()) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}

func schemaFor(driver string) []string {
	boolType, jsonType := "BOOLEAN", "JSONB"
	if driver == config.DriverSQLite {
		boolType, jsonType = "INTEGER", "TEXT"
	}
	r := strings.NewReplacer("{bool}", boolType, "{json}", jsonType)

	out := make([]string, len(schema))
	for i, stmt := range schema {
		out[i] = r.Replace(stmt)
	}
	return out
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		full_name TEXT NOT NULL,
		role TEXT NOT NULL,
		active {bool} NOT NULL,
		last_login TIMESTAMP NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS businesses (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL REFERENCES users(id),
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		timezone TEXT NOT NULL,
		appointment_mode TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_businesses_owner ON businesses(owner_id)`,
	`CREATE TABLE IF NOT EXISTS business_schedules (
		business_id TEXT NOT NULL REFERENCES businesses(id),
		weekday TEXT NOT NULL,
		is_active {bool} NOT NULL,
		open_time TEXT NOT NULL,
		close_time TEXT NOT NULL,
		slot_duration_minutes INTEGER NOT NULL,
		capacity_per_slot INTEGER NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		PRIMARY KEY (business_id, weekday)
	)`,
	`CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		business_id TEXT NOT NULL REFERENCES businesses(id),
		name TEXT NOT NULL,
		active {bool} NOT NULL,
		allowed_slots {json} NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_employees_business ON employees(business_id)`,
	`CREATE TABLE IF NOT EXISTS appointments (
		id TEXT PRIMARY KEY,
		business_id TEXT NOT NULL REFERENCES businesses(id),
		user_id TEXT NOT NULL REFERENCES users(id),
		employee_id TEXT NULL REFERENCES employees(id),
		appointment_time TIMESTAMP NOT NULL,
		slot_date TEXT NOT NULL,
		slot_time TEXT NOT NULL,
		status TEXT NOT NULL,
		cancelled_at TIMESTAMP NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_appointments_user ON appointments(user_id, appointment_time)`,
	`CREATE INDEX IF NOT EXISTS idx_appointments_slot ON appointments(business_id, slot_date, slot_time)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_appointments_employee_slot
		ON appointments(employee_id, slot_date, slot_time)
		WHERE status = 'confirmed' AND employee_id IS NOT NULL`,
	`CREATE TABLE IF NOT EXISTS slot_reservations (
		business_id TEXT NOT NULL,
		employee_id TEXT NOT NULL,
		slot_date TEXT NOT NULL,
		slot_time TEXT NOT NULL,
		booked INTEGER NOT NULL,
		PRIMARY KEY (business_id, employee_id, slot_date, slot_time)
	)`,
	`CREATE TABLE IF NOT EXISTS owner_requests (
		user_id TEXT PRIMARY KEY REFERENCES users(id),
		business_name TEXT NOT NULL,
		business_description TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		logo_url TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		decided_at TIMESTAMP NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_owner_requests_status ON owner_requests(status, created_at)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id TEXT PRIMARY KEY,
		business_id TEXT NOT NULL REFERENCES businesses(id),
		user_id TEXT NOT NULL REFERENCES users(id),
		appointment_id TEXT NOT NULL UNIQUE REFERENCES appointments(id),
		rating INTEGER NOT NULL,
		comment TEXT NOT NULL,
		reply_text TEXT NULL,
		reply_role TEXT NULL,
		replied_at TIMESTAMP NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reviews_business ON reviews(business_id, created_at)`,
}
