package iocache

import (
	"database/sql"
	"fmt"
	"regexp"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/huangsam/brewwater/internal/contract"
	"github.com/huangsam/brewwater/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// recipeRunsTable is the name of the table for recipe history.
const recipeRunsTable = "brewwater_recipe_runs"

// recipeRunColumns lists the persisted columns in insert and select order.
const recipeRunColumns = `created_at, preset_key, profile, strategy,
	general_hardness, carbonate_hardness, magnesium_pct, potassium_pct, volume_ml, scale,
	magnesium_drops, calcium_drops, potassium_drops, sodium_drops,
	sodium_mg, potassium_mg`

var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// HistoryStoreImpl implements the HistoryStore interface.
type HistoryStoreImpl struct {
	db         *sql.DB
	backend    schema.DatabaseBackend
	driverName string
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore creates a new HistoryStore with the specified backend.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	var db *sql.DB
	var err error
	var driverName string

	switch backend {
	case schema.SQLiteBackend:
		driverName = "sqlite"
		dbPath := connStr
		if dbPath == "" {
			dbPath = contract.GetHistoryDBFilePath()
		}
		db, err = sql.Open(driverName, dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		driverName = "mysql"
		dsn, err := mysqlDSN(connStr)
		if err != nil {
			return nil, err
		}
		db, err = sql.Open(driverName, dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		}

	case schema.PostgreSQLBackend:
		driverName = "pgx"
		db, err = sql.Open(driverName, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=... port=... user=... password=... dbname=...", err)
		}

	case schema.NoneBackend:
		// Return a no-op store for disabled history
		return &HistoryStoreImpl{backend: backend}, nil

	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}

	// Ping to verify connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		var connDetail string
		switch backend {
		case schema.MySQLBackend:
			connDetail = "Check that MySQL is running and the connection string is correct. Ensure user/password are valid."
		case schema.PostgreSQLBackend:
			connDetail = "Check that PostgreSQL is running and the connection string is correct. Ensure user/password are valid."
		default:
			connDetail = "Verify the database file path is accessible."
		}
		return nil, fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, connDetail)
	}

	if _, err := db.Exec(getCreateRecipeRunsQuery(backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", recipeRunsTable, err)
	}

	return &HistoryStoreImpl{
		db:         db,
		backend:    backend,
		driverName: driverName,
	}, nil
}

// mysqlDSN normalizes a MySQL DSN so DATETIME columns scan into time.Time.
func mysqlDSN(connStr string) (string, error) {
	cfg, err := mysql.ParseDSN(connStr)
	if err != nil {
		return "", fmt.Errorf("invalid MySQL connection string: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN(), nil
}

// getCreateRecipeRunsQuery returns the CREATE TABLE query for brewwater_recipe_runs.
func getCreateRecipeRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(recipeRunsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				created_at DATETIME(6) NOT NULL,
				preset_key VARCHAR(64) NOT NULL,
				profile VARCHAR(64) NOT NULL,
				strategy VARCHAR(32) NOT NULL,
				general_hardness DOUBLE NOT NULL,
				carbonate_hardness DOUBLE NOT NULL,
				magnesium_pct DOUBLE NOT NULL,
				potassium_pct DOUBLE NOT NULL,
				volume_ml DOUBLE NOT NULL,
				scale DOUBLE NOT NULL,
				magnesium_drops INT NOT NULL,
				calcium_drops INT NOT NULL,
				potassium_drops INT NOT NULL,
				sodium_drops INT NOT NULL,
				sodium_mg DOUBLE NOT NULL,
				potassium_mg DOUBLE NOT NULL
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				created_at TIMESTAMPTZ NOT NULL,
				preset_key TEXT NOT NULL,
				profile TEXT NOT NULL,
				strategy TEXT NOT NULL,
				general_hardness DOUBLE PRECISION NOT NULL,
				carbonate_hardness DOUBLE PRECISION NOT NULL,
				magnesium_pct DOUBLE PRECISION NOT NULL,
				potassium_pct DOUBLE PRECISION NOT NULL,
				volume_ml DOUBLE PRECISION NOT NULL,
				scale DOUBLE PRECISION NOT NULL,
				magnesium_drops INT NOT NULL,
				calcium_drops INT NOT NULL,
				potassium_drops INT NOT NULL,
				sodium_drops INT NOT NULL,
				sodium_mg DOUBLE PRECISION NOT NULL,
				potassium_mg DOUBLE PRECISION NOT NULL
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TEXT NOT NULL,
				preset_key TEXT NOT NULL,
				profile TEXT NOT NULL,
				strategy TEXT NOT NULL,
				general_hardness REAL NOT NULL,
				carbonate_hardness REAL NOT NULL,
				magnesium_pct REAL NOT NULL,
				potassium_pct REAL NOT NULL,
				volume_ml REAL NOT NULL,
				scale REAL NOT NULL,
				magnesium_drops INTEGER NOT NULL,
				calcium_drops INTEGER NOT NULL,
				potassium_drops INTEGER NOT NULL,
				sodium_drops INTEGER NOT NULL,
				sodium_mg REAL NOT NULL,
				potassium_mg REAL NOT NULL
			);
		`, quotedTableName)
	}
}

// RecordRecipe stores one computed recipe and returns its run ID.
func (hs *HistoryStoreImpl) RecordRecipe(record schema.RecipeRunRecord) (int64, error) {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return 0, nil
	}

	quotedTableName := quoteTableName(recipeRunsTable, hs.backend)
	args := []any{
		formatTime(record.CreatedAt, hs.backend), record.PresetKey, record.Profile, record.Strategy,
		record.GeneralHardness, record.CarbonateHardness, record.MagnesiumPct, record.PotassiumPct,
		record.VolumeMl, record.Scale,
		record.MagnesiumDrops, record.CalciumDrops, record.PotassiumDrops, record.SodiumDrops,
		record.SodiumMilligrams, record.PotassiumMilligrams,
	}

	var runID int64
	switch hs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (%s)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
			RETURNING run_id`, quotedTableName, recipeRunColumns)
		if err := hs.db.QueryRow(query, args...).Scan(&runID); err != nil {
			return 0, fmt.Errorf("failed to insert recipe run: %w", err)
		}
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (%s)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, quotedTableName, recipeRunColumns)
		result, err := hs.db.Exec(query, args...)
		if err != nil {
			return 0, fmt.Errorf("failed to insert recipe run: %w", err)
		}
		runID, err = result.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("failed to read recipe run id: %w", err)
		}
	}

	return runID, nil
}

// GetAllRecipeRuns retrieves all recipe runs ordered by run ID.
func (hs *HistoryStoreImpl) GetAllRecipeRuns() ([]schema.RecipeRunRecord, error) {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT run_id, %s FROM %s ORDER BY run_id", recipeRunColumns, quoteTableName(recipeRunsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query recipe runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RecipeRunRecord
	for rows.Next() {
		var record schema.RecipeRunRecord
		var createdAtStr string
		var createdAt any = &record.CreatedAt
		if hs.backend == schema.SQLiteBackend {
			createdAt = &createdAtStr
		}

		if err := rows.Scan(&record.RunID, createdAt, &record.PresetKey, &record.Profile, &record.Strategy,
			&record.GeneralHardness, &record.CarbonateHardness, &record.MagnesiumPct, &record.PotassiumPct,
			&record.VolumeMl, &record.Scale,
			&record.MagnesiumDrops, &record.CalciumDrops, &record.PotassiumDrops, &record.SodiumDrops,
			&record.SodiumMilligrams, &record.PotassiumMilligrams); err != nil {
			return nil, fmt.Errorf("failed to scan recipe run: %w", err)
		}

		if hs.backend == schema.SQLiteBackend {
			record.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAtStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse created_at: %w", err)
			}
		}
		record.CreatedAt = record.CreatedAt.UTC()
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recipe runs: %w", err)
	}

	return results, nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}

	if hs.backend == schema.NoneBackend || hs.db == nil {
		return status, nil
	}

	quotedTableName := quoteTableName(recipeRunsTable, hs.backend)

	row := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*), COALESCE(SUM(magnesium_drops + calcium_drops + potassium_drops + sodium_drops), 0) FROM %s", quotedTableName))
	if err := row.Scan(&status.TotalRuns, &status.TotalDrops); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}
	status.TableSizes[recipeRunsTable] = int64(status.TotalRuns)

	if status.TotalRuns == 0 {
		return status, nil
	}

	// Get last run info
	row = hs.db.QueryRow(fmt.Sprintf("SELECT run_id, created_at FROM %s ORDER BY run_id DESC LIMIT 1", quotedTableName))
	lastRunTime, err := hs.scanIDAndTime(row, &status.LastRunID)
	if err != nil {
		return status, fmt.Errorf("failed to get last run info: %w", err)
	}
	status.LastRunTime = lastRunTime

	// Get oldest run time
	var oldestRunID int64
	row = hs.db.QueryRow(fmt.Sprintf("SELECT run_id, created_at FROM %s ORDER BY run_id ASC LIMIT 1", quotedTableName))
	oldestRunTime, err := hs.scanIDAndTime(row, &oldestRunID)
	if err != nil {
		return status, fmt.Errorf("failed to get oldest run time: %w", err)
	}
	status.OldestRunTime = oldestRunTime

	// Most used preset, ties broken by key
	row = hs.db.QueryRow(fmt.Sprintf(`SELECT preset_key, COUNT(*) AS runs FROM %s
		WHERE preset_key <> ''
		GROUP BY preset_key
		ORDER BY runs DESC, preset_key ASC
		LIMIT 1`, quotedTableName))
	if err := row.Scan(&status.TopPresetKey, &status.TopPresetCount); err != nil && err != sql.ErrNoRows {
		return status, fmt.Errorf("failed to get top preset: %w", err)
	}

	return status, nil
}

// scanIDAndTime scans a (run_id, created_at) row, handling SQLite's text timestamps.
func (hs *HistoryStoreImpl) scanIDAndTime(row *sql.Row, id *int64) (time.Time, error) {
	if hs.backend == schema.SQLiteBackend {
		var ts string
		if err := row.Scan(id, &ts); err != nil {
			return time.Time{}, err
		}
		return time.Parse(time.RFC3339Nano, ts)
	}
	var ts time.Time
	if err := row.Scan(id, &ts); err != nil {
		return time.Time{}, err
	}
	return ts.UTC(), nil
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// validateTableName validates that the table name is a safe SQL identifier.
// It ensures the name consists only of alphanumeric characters and underscores,
// starting with a letter or underscore, to prevent SQL injection.
func validateTableName(name string) error {
	if name == "" {
		return fmt.Errorf("table name cannot be empty")
	}
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("invalid table name: %s (must match pattern %s)", name, tableNamePattern)
	}
	return nil
}

// quoteTableName returns the properly quoted table name for the given backend.
func quoteTableName(name string, backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf("`%s`", name)
	default: // SQLite and PostgreSQL
		return fmt.Sprintf("\"%s\"", name)
	}
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	switch backend {
	case schema.SQLiteBackend:
		return t.UTC().Format(time.RFC3339Nano)
	default:
		return t.UTC()
	}
}
