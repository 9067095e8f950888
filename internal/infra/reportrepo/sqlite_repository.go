package reportrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/yanqian/tempcast/internal/domain/outlook"
)

// generated_at is stored as fixed-width UTC text so lexical order is chronological.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS forecast_reports (
		id TEXT PRIMARY KEY,
		location TEXT NOT NULL,
		generated_at TEXT NOT NULL,
		payload TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_forecast_reports_location_generated
		ON forecast_reports (location, generated_at DESC);
`

// SQLiteRepository persists reports in a local SQLite file.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens path, enables WAL and creates the schema.
func NewSQLiteRepository(path string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure sqlite: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

// Close releases the database handle.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) Save(ctx context.Context, report outlook.Report) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO forecast_reports (id, location, generated_at, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE
		SET location = excluded.location, generated_at = excluded.generated_at, payload = excluded.payload
	`, report.ID, report.Location.Name, report.GeneratedAt.UTC().Format(sqliteTimeLayout), string(payload))
	return err
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (outlook.Report, bool, error) {
	row := r.db.QueryRowContext(ctx, `SELECT payload FROM forecast_reports WHERE id = ?`, id)
	return scanSQLiteReport(row)
}

func (r *SQLiteRepository) Latest(ctx context.Context, location string) (outlook.Report, bool, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT payload FROM forecast_reports
		WHERE location = ?
		ORDER BY generated_at DESC
		LIMIT 1
	`, location)
	return scanSQLiteReport(row)
}

// List returns the newest reports first; a non-positive limit returns all.
func (r *SQLiteRepository) List(ctx context.Context, limit int) ([]outlook.Report, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT payload FROM forecast_reports
		ORDER BY generated_at DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []outlook.Report
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		report, err := decodeReport([]byte(payload))
		if err != nil {
			return nil, err
		}
		out = append(out, report)
	}
	return out, rows.Err()
}

func scanSQLiteReport(row *sql.Row) (outlook.Report, bool, error) {
	var payload string
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return outlook.Report{}, false, nil
		}
		return outlook.Report{}, false, err
	}
	report, err := decodeReport([]byte(payload))
	if err != nil {
		return outlook.Report{}, false, err
	}
	return report, true, nil
}

var _ outlook.ReportRepository = (*SQLiteRepository)(nil)
