package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/booking-api/pkg/config"
)

func TestOpenSQLiteMigrates(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, config.DatabaseConfig{Driver: config.DriverSQLite, SQLitePath: ":memory:", AutoMigrate: true})
	require.NoError(t, err)
	defer db.Close()

	var tables []string
	require.NoError(t, db.SelectContext(ctx, &tables, `SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`))
	assert.Equal(t, []string{"appointments", "business_schedules", "businesses", "employees", "owner_requests", "reviews", "slot_reservations", "users"}, tables)

	// re-running is a no-op
	require.NoError(t, Migrate(ctx, db))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.DatabaseConfig{Driver: "oracle"})
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestSchemaDialects(t *testing.T) {
	pg := schemaFor(config.DriverPostgres)
	lite := schemaFor(config.DriverSQLite)
	require.Len(t, lite, len(pg))
	assert.Contains(t, pg[0], "active BOOLEAN")
	assert.Contains(t, lite[0], "active INTEGER")
	for _, stmt := range lite {
		assert.NotContains(t, stmt, "{")
	}
}
