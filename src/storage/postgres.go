package storage

import (
	"database/sql"
	"fmt"

	"trade-brain/src/helpers"
	"trade-brain/src/logger"
	"trade-brain/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

type PostgresTickStore struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresTickStore(cfg *models.MConfig, log *logger.Logger) (*PostgresTickStore, error) {
	return &PostgresTickStore{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresTickStore) Initialize() error {
	dsn := d.Config.Storage.DBConnectionString
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db
	return d.createTables()
}

// -----------------------------------------------------------------------------

func (d *PostgresTickStore) createTables() error {
	query := `
		CREATE TABLE IF NOT EXISTS ticks (
			timestamp DOUBLE PRECISION,
			price DOUBLE PRECISION
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

func (d *PostgresTickStore) SaveTicksBulk(ticks []models.MTick) (int, error) {
	if len(ticks) == 0 {
		return 0, nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return 0, helpers.NewStorageError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT INTO ticks (timestamp, price) VALUES ($1, $2)")
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

func (d *PostgresTickStore) FetchRecentPrices(limit int) ([]float64, error) {
	rows, err := d.DB.Query("SELECT price FROM ticks ORDER BY timestamp DESC LIMIT $1", limit)
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

func (d *PostgresTickStore) FetchRecentTicks(limit int) ([]models.MTick, error) {
	rows, err := d.DB.Query("SELECT timestamp, price FROM ticks ORDER BY timestamp DESC LIMIT $1", limit)
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

func (d *PostgresTickStore) CountTicks() (int64, error) {
	var count int64
	if err := d.DB.QueryRow("SELECT COUNT(*) FROM ticks").Scan(&count); err != nil {
		return 0, helpers.NewStorageError("failed to count ticks", err)
	}
	return count, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresTickStore) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
