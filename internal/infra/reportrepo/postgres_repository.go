package reportrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/tempcast/internal/domain/outlook"
)

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS forecast_reports (
		id TEXT PRIMARY KEY,
		location TEXT NOT NULL,
		generated_at TIMESTAMPTZ NOT NULL,
		payload JSONB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_forecast_reports_location_generated
		ON forecast_reports (location, generated_at DESC);
`

// PostgresRepository implements outlook.ReportRepository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// EnsureSchema creates the reports table when missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, postgresSchema)
	return err
}

func (r *PostgresRepository) Save(ctx context.Context, report outlook.Report) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO forecast_reports (id, location, generated_at, payload)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET location = EXCLUDED.location, generated_at = EXCLUDED.generated_at, payload = EXCLUDED.payload
	`, report.ID, report.Location.Name, report.GeneratedAt, payload)
	return err
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (outlook.Report, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT payload FROM forecast_reports WHERE id = $1 LIMIT 1
	`, id)
	return scanPostgresReport(row)
}

func (r *PostgresRepository) Latest(ctx context.Context, location string) (outlook.Report, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT payload FROM forecast_reports
		WHERE location = $1
		ORDER BY generated_at DESC
		LIMIT 1
	`, location)
	return scanPostgresReport(row)
}

// List returns the newest reports first; a non-positive limit returns all.
func (r *PostgresRepository) List(ctx context.Context, limit int) ([]outlook.Report, error) {
	var bound any
	if limit > 0 {
		bound = limit
	}
	rows, err := r.pool.Query(ctx, `
		SELECT payload FROM forecast_reports
		ORDER BY generated_at DESC, id
		LIMIT $1
	`, bound)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []outlook.Report
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		report, err := decodeReport(payload)
		if err != nil {
			return nil, err
		}
		out = append(out, report)
	}
	return out, rows.Err()
}

func scanPostgresReport(row pgx.Row) (outlook.Report, bool, error) {
	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return outlook.Report{}, false, nil
		}
		return outlook.Report{}, false, err
	}
	report, err := decodeReport(payload)
	if err != nil {
		return outlook.Report{}, false, err
	}
	return report, true, nil
}

func decodeReport(payload []byte) (outlook.Report, error) {
	var report outlook.Report
	if err := json.Unmarshal(payload, &report); err != nil {
		return outlook.Report{}, fmt.Errorf("decode report: %w", err)
	}
	return report, nil
}

var _ outlook.ReportRepository = (*PostgresRepository)(nil)
