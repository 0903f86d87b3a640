package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add batch trace codes", "add_batch_trace_codes"},
		{"Add-Blend-Components", "add_blend_components"},
		{"BYPRODUCT__RATES", "byproduct_rates"},
		{"  cost elements 2  ", "cost_elements_2"},
		{"oil/cake!rates", "oil_cake_rates"},
		{"_leading", "leading"},
		{"!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, slugify(tt.input))
		})
	}
}

func TestCreateMigration_NumbersSequentially(t *testing.T) {
	dir := t.TempDir()

	first, err := CreateMigration(dir, "initial schema", "Materials, lots and movements")
	require.NoError(t, err)
	assert.Equal(t, uint(1), first.Version)
	assert.Equal(t, "000001_initial_schema", first.Base())
	assert.Equal(t, filepath.Join(dir, "000001_initial_schema.up.sql"), first.UpPath)
	assert.Equal(t, filepath.Join(dir, "000001_initial_schema.down.sql"), first.DownPath)

	up, err := os.ReadFile(first.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "000001_initial_schema (up)")
	assert.Contains(t, string(up), "Materials, lots and movements")

	down, err := os.ReadFile(first.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "(down)")

	second, err := CreateMigration(dir, "Writeoff Reasons", "")
	require.NoError(t, err)
	assert.Equal(t, uint(2), second.Version)
	assert.Equal(t, "000002_writeoff_reasons", second.Base())
}

func TestCreateMigration_RejectsEmptyName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "???", "")
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"000010_rates.up.sql", "000010_rates.down.sql",
		"000002_lots.up.sql", "000002_lots.down.sql",
		"README.md", "notes.up.sql",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "000099_dir.up.sql"), 0o755))

	files, err := ListMigrations(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "000002_lots", files[0].Base())
	assert.Equal(t, "000010_rates", files[1].Base())
	assert.Equal(t, filepath.Join(dir, "000010_rates.down.sql"), files[1].DownPath)
}

func TestListMigrations_MissingDir(t *testing.T) {
	files, err := ListMigrations(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestRepositoryMigrationsArePaired(t *testing.T) {
	files, err := ListMigrations(filepath.Join("..", "..", "..", "migrations"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for i, f := range files {
		assert.Equal(t, uint(i+1), f.Version, "migrations are numbered without gaps")
		_, err := os.Stat(f.DownPath)
		assert.NoError(t, err, "%s has no down migration", f.Base())
	}
}
