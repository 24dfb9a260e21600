package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsEmptyURL(t *testing.T) {
	_, err := New(context.Background(), "  ", 4, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestNewRejectsMalformedURL(t *testing.T) {
	_, err := New(context.Background(), "postgres://%zz", 4, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse database URL")
}

func TestNilDBGuards(t *testing.T) {
	var db *DB

	require.Error(t, db.Health(context.Background()))
	require.Error(t, db.EnsureSchema(context.Background()))
}

func TestLoadMigrations(t *testing.T) {
	migrations, err := loadMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	assert.Equal(t, "001_initial", migrations[0].version)
	for i := 1; i < len(migrations); i++ {
		assert.Less(t, migrations[i-1].version, migrations[i].version)
	}

	initial := migrations[0].sql
	for _, table := range []string{"users", "characters"} {
		assert.Contains(t, initial, "CREATE TABLE IF NOT EXISTS "+table)
	}
	assert.Contains(t, initial, "lower(email)")
}
