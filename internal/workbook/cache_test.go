package workbook

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simulcheck/internal/shared/testutil"
)

func fixtureWorkbook(t *testing.T, chwValue float64) string {
	t.Helper()
	return testutil.WriteWorkbook(t,
		testutil.HourlySheet("CHW hourly", []string{"A CHW (kbtuh)"},
			[]string{"2024-01-15 01:00:00"}, [][]float64{{chwValue}}),
		testutil.HourlySheet("MTHW hourly", []string{"A MTHW (kbtuh)"},
			[]string{"2024-01-15 01:00:00"}, [][]float64{{1}}),
	)
}

func TestCacheReturnsSameWorkbookForUnchangedFile(t *testing.T) {
	path := fixtureWorkbook(t, 100)
	cache := NewCache(NewLoader("Timestamp", testLogger()), testLogger())

	first, err := cache.Get(path, "CHW hourly", "MTHW hourly")
	require.NoError(t, err)
	second, err := cache.Get(path, "CHW hourly", "MTHW hourly")
	require.NoError(t, err)

	assert.Same(t, first, second)
}

func TestCacheInvalidatesWhenFileChanges(t *testing.T) {
	path := fixtureWorkbook(t, 100)
	cache := NewCache(NewLoader("Timestamp", testLogger()), testLogger())

	first, err := cache.Get(path, "CHW hourly", "MTHW hourly")
	require.NoError(t, err)

	// Rewriting the file changes size or mtime; force mtime forward to be
	// robust on coarse-grained filesystems.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))

	second, err := cache.Get(path, "CHW hourly", "MTHW hourly")
	require.NoError(t, err)

	assert.NotSame(t, first, second)
}

func TestCacheExplicitInvalidate(t *testing.T) {
	path := fixtureWorkbook(t, 100)
	cache := NewCache(NewLoader("Timestamp", testLogger()), testLogger())

	first, err := cache.Get(path, "CHW hourly", "MTHW hourly")
	require.NoError(t, err)

	cache.Invalidate(path)

	second, err := cache.Get(path, "CHW hourly", "MTHW hourly")
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}

func TestCacheMissingFile(t *testing.T) {
	cache := NewCache(NewLoader("Timestamp", testLogger()), testLogger())
	_, err := cache.Get("/nonexistent/loads.xlsm", "CHW hourly", "MTHW hourly")
	assert.Error(t, err)
}
