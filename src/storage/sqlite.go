package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"trade-brain/src/helpers"
	"trade-brain/src/logger"
	"trade-brain/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

type SQLiteTickStore struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLiteTickStore(cfg *models.MConfig, log *logger.Logger) (*SQLiteTickStore, error) {
	return &SQLiteTickStore{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteTickStore) Initialize() error {
	dsn := d.Config.Storage.DBPath

	if dir := filepath.Dir(dsn); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create data dir: %w", err)
		}
	}

	// Open DB
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.createTables()
}

// -----------------------------------------------------------------------------

func (d *SQLiteTickStore) createTables() error {
	// SQLite types: REAL for float64. Duplicates are allowed, so no primary
	// key; the timestamp index serves the recency scans.
	query := `
		CREATE TABLE IF NOT EXISTS ticks (
			timestamp REAL,
			price REAL
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create ticks: %w", err)
	}

	if _, err := d.DB.Exec("CREATE INDEX IF NOT EXISTS idx_ts ON ticks (timestamp)"); err != nil {
		return fmt.Errorf("failed to create idx_ts: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

// SaveTicksBulk inserts the batch in a single transaction. On any failure
// the transaction rolls back and nothing is written.
func (d *SQLiteTickStore) SaveTicksBulk(ticks []models.MTick) (int, error) {
	if len(ticks) == 0 {
		return 0, nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return 0, helpers.NewStorageError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT INTO ticks (timestamp, price) VALUES (?, ?)")
	if err != nil {
		return 0, helpers.NewStorageError("failed to prepare insert", err)
	}
	defer stmt.Close()

	for _, t := range ticks {
		if _, err := stmt.Exec(t.Timestamp, t.Price); err != nil {
			return 0, helpers.NewStorageError("tick insert failed", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, helpers.NewStorageError("failed to commit ticks", err)
	}

	return len(ticks), nil
}

// -----------------------------------------------------------------------------

// FetchRecentPrices returns the limit most-recent prices in ascending
// timestamp order. The scan is newest-first, so the result is reversed
// before returning.
func (d *SQLiteTickStore) FetchRecentPrices(limit int) ([]float64, error) {
	rows, err := d.DB.Query("SELECT price FROM ticks ORDER BY timestamp DESC LIMIT ?", limit)
	if err != nil {
		return nil, helpers.NewStorageError("failed to fetch prices", err)
	}
	defer rows.Close()

	var prices []float64
	for rows.Next() {
		var p float64
		if err := rows.Scan(&p); err != nil {
			return nil, helpers.NewStorageError("failed to scan price", err)
		}
		prices = append(prices, p)
	}
	if err := rows.Err(); err != nil {
		return nil, helpers.NewStorageError("price scan aborted", err)
	}

	reverseFloats(prices)
	return prices, nil
}

// -----------------------------------------------------------------------------

// FetchRecentTicks is FetchRecentPrices with timestamps, same ordering.
func (d *SQLiteTickStore) FetchRecentTicks(limit int) ([]models.MTick, error) {
	rows, err := d.DB.Query("SELECT timestamp, price FROM ticks ORDER BY timestamp DESC LIMIT ?", limit)
	if err != nil {
		return nil, helpers.NewStorageError("failed to fetch ticks", err)
	}
	defer rows.Close()

	var ticks []models.MTick
	for rows.Next() {
		var t models.MTick
		if err := rows.Scan(&t.Timestamp, &t.Price); err != nil {
			return nil, helpers.NewStorageError("failed to scan tick", err)
		}
		ticks = append(ticks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, helpers.NewStorageError("tick scan aborted", err)
	}

	reverseTicks(ticks)
	return ticks, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteTickStore) CountTicks() (int64, error) {
	var count int64
	if err := d.DB.QueryRow("SELECT COUNT(*) FROM ticks").Scan(&count); err != nil {
		return 0, helpers.NewStorageError("failed to count ticks", err)
	}
	return count, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteTickStore) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}

// -----------------------------------------------------------------------------
// Shared helpers (sqlite + postgres adapters)
// -----------------------------------------------------------------------------

func reverseFloats(s []float64) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func reverseTicks(s []models.MTick) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
