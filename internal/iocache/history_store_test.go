package iocache

import (
	"bytes"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/huangsam/brewwater/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord(presetKey string, createdAt time.Time, mgDrops int32) schema.RecipeRunRecord {
	return schema.RecipeRunRecord{
		CreatedAt:           createdAt,
		PresetKey:           presetKey,
		Profile:             schema.StandardProfile,
		Strategy:            string(schema.IndependentRounding),
		GeneralHardness:     40,
		CarbonateHardness:   20,
		MagnesiumPct:        80,
		PotassiumPct:        80,
		VolumeMl:            300,
		Scale:               0.3,
		MagnesiumDrops:      mgDrops,
		CalciumDrops:        0,
		PotassiumDrops:      1,
		SodiumDrops:         0,
		SodiumMilligrams:    0.328,
		PotassiumMilligrams: 1.874,
	}
}

func newSQLiteStore(t *testing.T) *HistoryStoreImpl {
	t.Helper()
	store, err := NewHistoryStore(schema.SQLiteBackend, filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	impl, ok := store.(*HistoryStoreImpl)
	require.True(t, ok)
	return impl
}

func TestHistoryStore_NoneBackend(t *testing.T) {
	store, err := NewHistoryStore(schema.NoneBackend, "")
	require.NoError(t, err)

	id, err := store.RecordRecipe(sampleRecord("bright-juicy", time.Now(), 1))
	assert.NoError(t, err)
	assert.Equal(t, int64(0), id)

	runs, err := store.GetAllRecipeRuns()
	assert.NoError(t, err)
	assert.Empty(t, runs)

	status, err := store.GetStatus()
	assert.NoError(t, err)
	assert.False(t, status.Connected)
	assert.Equal(t, "none", status.Backend)

	assert.NoError(t, store.Close())
}

func TestHistoryStore_UnsupportedBackend(t *testing.T) {
	_, err := NewHistoryStore(schema.DatabaseBackend("oracle"), "")
	assert.Error(t, err)
}

func TestHistoryStore_SQLiteRoundTrip(t *testing.T) {
	store := newSQLiteStore(t)
	base := time.Date(2025, 6, 1, 8, 30, 0, 123456789, time.UTC)

	id1, err := store.RecordRecipe(sampleRecord("bright-juicy", base, 1))
	require.NoError(t, err)
	id2, err := store.RecordRecipe(sampleRecord("", base.Add(time.Hour), 2))
	require.NoError(t, err)
	id3, err := store.RecordRecipe(sampleRecord("bright-juicy", base.Add(2*time.Hour), 3))
	require.NoError(t, err)
	assert.Less(t, id1, id2)
	assert.Less(t, id2, id3)

	runs, err := store.GetAllRecipeRuns()
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, id1, runs[0].RunID)
	assert.Equal(t, base, runs[0].CreatedAt)
	assert.Equal(t, "bright-juicy", runs[0].PresetKey)
	assert.Equal(t, "", runs[1].PresetKey)
	assert.Equal(t, int32(3), runs[2].MagnesiumDrops)
	assert.InDelta(t, 0.3, runs[0].Scale, 1e-12)
	assert.InDelta(t, 1.874, runs[0].PotassiumMilligrams, 1e-12)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, "sqlite", status.Backend)
	assert.Equal(t, 3, status.TotalRuns)
	assert.Equal(t, id3, status.LastRunID)
	assert.Equal(t, base.Add(2*time.Hour), status.LastRunTime)
	assert.Equal(t, base, status.OldestRunTime)
	assert.Equal(t, int64(1+2+3+3), status.TotalDrops) // Mg drops plus one KHCO3 drop each
	assert.Equal(t, "bright-juicy", status.TopPresetKey)
	assert.Equal(t, 2, status.TopPresetCount)
	assert.Equal(t, int64(3), status.TableSizes[recipeRunsTable])
}

func TestHistoryStore_EmptyStatus(t *testing.T) {
	store := newSQLiteStore(t)
	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, 0, status.TotalRuns)
	assert.Empty(t, status.TopPresetKey)
}

func TestHistoryStore_ConcurrentWrites(t *testing.T) {
	store := newSQLiteStore(t)
	const writers = 10

	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := store.RecordRecipe(sampleRecord("floral-clarity", time.Now().UTC(), int32(i)))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	runs, err := store.GetAllRecipeRuns()
	require.NoError(t, err)
	assert.Len(t, runs, writers)
}

func TestTableNameHelpers(t *testing.T) {
	assert.NoError(t, validateTableName(recipeRunsTable))
	assert.Error(t, validateTableName(""))
	assert.Error(t, validateTableName("runs; DROP TABLE x"))

	assert.Equal(t, "`brewwater_recipe_runs`", quoteTableName(recipeRunsTable, schema.MySQLBackend))
	assert.Equal(t, `"brewwater_recipe_runs"`, quoteTableName(recipeRunsTable, schema.PostgreSQLBackend))
	assert.Equal(t, `"brewwater_recipe_runs"`, quoteTableName(recipeRunsTable, schema.SQLiteBackend))
}

func TestFormatTime(t *testing.T) {
	ts := time.Date(2025, 1, 2, 3, 4, 5, 6, time.FixedZone("X", 3600))
	assert.Equal(t, "2025-01-02T02:04:05.000000006Z", formatTime(ts, schema.SQLiteBackend))
	assert.Equal(t, ts.UTC(), formatTime(ts, schema.PostgreSQLBackend))
}

func TestMySQLDSN(t *testing.T) {
	dsn, err := mysqlDSN("user:pass@tcp(localhost:3306)/brew")
	require.NoError(t, err)
	assert.Contains(t, dsn, "parseTime=true")

	_, err = mysqlDSN("not a dsn")
	assert.Error(t, err)
}

func TestPrintHistoryStatus(t *testing.T) {
	var buf bytes.Buffer
	PrintHistoryStatus(&buf, schema.HistoryStatus{Backend: "none"})
	assert.Contains(t, buf.String(), "History Backend: none")
	assert.NotContains(t, buf.String(), "Total Runs")

	buf.Reset()
	ts := time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC)
	PrintHistoryStatus(&buf, schema.HistoryStatus{
		Backend:        "sqlite",
		Connected:      true,
		TotalRuns:      2,
		LastRunID:      2,
		LastRunTime:    ts,
		OldestRunTime:  ts,
		TotalDrops:     7,
		TopPresetKey:   "bright-juicy",
		TopPresetCount: 2,
		TableSizes:     map[string]int64{recipeRunsTable: 2},
	})
	out := buf.String()
	assert.Contains(t, out, "Total Runs: 2")
	assert.Contains(t, out, "Last Run: 2025-06-01 08:30:00")
	assert.Contains(t, out, "Top Preset: bright-juicy (2 runs)")
	assert.Contains(t, out, "brewwater_recipe_runs: 2 rows")
}
