package migration

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add claims table", "add_claims_table"},
		{"Add-Claims-Table", "add_claims_table"},
		{"ADD_CLAIMS_TABLE", "add_claims_table"},
		{"add__claims__table", "add_claims_table"},
		{"Add Budgets 2026", "add_budgets_2026"},
		{"create-pnl-line-items", "create_pnl_line_items"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "add deductions table", "deduction fact store")
	require.NoError(t, err)
	require.NotNil(t, mf)

	assert.Len(t, mf.Version, 14)
	assert.Contains(t, mf.UpPath, "_add_deductions_table.up.sql")
	assert.Contains(t, mf.DownPath, "_add_deductions_table.down.sql")

	upContent, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(upContent), "add deductions table")
	assert.Contains(t, string(upContent), "deduction fact store")

	downContent, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(downContent), "Rollback")
}

func TestCreateMigration_MissingDirIsCreated(t *testing.T) {
	dir := t.TempDir() + "/nested/migrations"

	mf, err := CreateMigration(dir, "create accruals", "accrual fact store")
	require.NoError(t, err)

	_, err = os.Stat(mf.UpPath)
	assert.NoError(t, err)
}

func TestListMigrations(t *testing.T) {
	t.Run("missing directory lists empty", func(t *testing.T) {
		migrations, err := ListMigrations(t.TempDir() + "/does-not-exist")
		require.NoError(t, err)
		assert.Empty(t, migrations)
	})

	t.Run("one entry per up/down pair", func(t *testing.T) {
		dir := t.TempDir()
		_, err := CreateMigration(dir, "create trade spends", "trade spend fact store")
		require.NoError(t, err)

		migrations, err := ListMigrations(dir)
		require.NoError(t, err)
		require.Len(t, migrations, 1)
		assert.True(t, strings.HasSuffix(migrations[0], "_create_trade_spends"))
	})

	t.Run("ignores stray files", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(dir+"/README.md", []byte("notes"), 0644))
		require.NoError(t, os.WriteFile(dir+"/001_orphan.down.sql", []byte("--"), 0644))

		migrations, err := ListMigrations(dir)
		require.NoError(t, err)
		assert.Empty(t, migrations)
	})
}
