package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFS_ContainsAnnotatedMigrations(t *testing.T) {
	names, err := fs.Glob(FS, "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, names)

	for _, n := range names {
		b, err := fs.ReadFile(FS, n)
		require.NoError(t, err)
		body := string(b)
		require.True(t, strings.Contains(body, "-- +goose Up"), n)
		require.True(t, strings.Contains(body, "-- +goose Down"), n)
	}
}

func TestInit_NotifiesOnInventoryChannel(t *testing.T) {
	b, err := fs.ReadFile(FS, "00001_init.sql")
	require.NoError(t, err)
	require.Contains(t, string(b), "pg_notify('inventory_changes'")
}
