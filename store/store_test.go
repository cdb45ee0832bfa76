package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func testStore(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	return New(db)
}

func TestSaveAndRun(t *testing.T) {
	s := testStore(t)

	report := NewReport(KindGranteesCreate, "export.csv", false)
	report.Success("Acme Water")
	report.Failure("No Lead Org", "missing fields: LIF Primary Lead Name")

	run, err := s.Save(report)
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, StatusCompleted, run.Status)
	assert.Equal(t, 1, run.Succeeded)
	assert.Equal(t, 1, run.Failed)

	stored, err := s.Run(run.ID)
	require.NoError(t, err)
	require.Len(t, stored.Outcomes, 2)
	assert.Equal(t, "Acme Water", stored.Outcomes[0].Entity)
	assert.True(t, stored.Outcomes[0].Success)
	assert.False(t, stored.Outcomes[1].Success)
	assert.Contains(t, stored.Outcomes[1].Message, "missing fields")
}

func TestSaveDryRun(t *testing.T) {
	s := testStore(t)

	run, err := s.Save(NewReport(KindGrantsCreate, "grants.csv", true))
	require.NoError(t, err)
	assert.Equal(t, StatusDryRun, run.Status)
}

func TestRunsAndCount(t *testing.T) {
	s := testStore(t)

	for _, kind := range []string{KindGranteesCreate, KindGranteesUpdate, KindOrgsImport} {
		_, err := s.Save(NewReport(kind, "export.csv", false))
		require.NoError(t, err)
	}

	runs, err := s.Runs(2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	count, err := s.Count()
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}

func TestRunNotFound(t *testing.T) {
	s := testStore(t)
	_, err := s.Run("missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
