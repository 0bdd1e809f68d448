package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS job_alerts (
	id              TEXT PRIMARY KEY,
	email           TEXT NOT NULL,
	role            TEXT NOT NULL,
	country         TEXT NOT NULL,
	frequency       TEXT NOT NULL DEFAULT 'daily',
	is_active       BOOLEAN NOT NULL DEFAULT TRUE,
	last_alerted_at TIMESTAMPTZ,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// NewPostgresPool creates and verifies a pgxpool connection pool.
func NewPostgresPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	return pool, nil
}

// PostgresStore keeps alerts in the job_alerts table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the job_alerts table when it is missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create job_alerts: %w", err)
	}
	return nil
}

func (s *PostgresStore) Insert(ctx context.Context, alert Alert) (Alert, error) {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO job_alerts (id, email, role, country, frequency, is_active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		alert.ID, alert.Email, alert.Role, alert.Country, string(alert.Frequency), alert.IsActive, alert.CreatedAt,
	)
	if err != nil {
		return Alert{}, fmt.Errorf("insert alert: %w", err)
	}

	return alert, nil
}

func (s *PostgresStore) ListActive(ctx context.Context) ([]Alert, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, email, role, country, frequency, is_active, last_alerted_at, created_at
		 FROM job_alerts WHERE is_active = TRUE ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("query active alerts: %w", err)
	}
	defer rows.Close()

	var alerts []Alert
	for rows.Next() {
		var (
			a    Alert
			freq string
		)
		if err := rows.Scan(&a.ID, &a.Email, &a.Role, &a.Country, &freq, &a.IsActive, &a.LastAlertedAt, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		a.Frequency = Frequency(freq)
		alerts = append(alerts, a)
	}

	return alerts, rows.Err()
}

func (s *PostgresStore) MarkAlerted(ctx context.Context, id string, at time.Time) error {
	tag, err := s.pool.Exec(ctx, `UPDATE job_alerts SET last_alerted_at = $2 WHERE id = $1`, id, at.UTC())
	if err != nil {
		return fmt.Errorf("mark alerted: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Deactivate(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE job_alerts SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate alert: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
