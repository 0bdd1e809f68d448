package alerts

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS job_alerts (
	id              TEXT PRIMARY KEY,
	email           TEXT NOT NULL,
	role            TEXT NOT NULL,
	country         TEXT NOT NULL,
	frequency       TEXT NOT NULL DEFAULT 'daily',
	is_active       INTEGER NOT NULL DEFAULT 1,
	last_alerted_at TEXT,
	created_at      TEXT NOT NULL
)`

// sqliteTime keeps a fixed fraction width so text order matches time order.
const sqliteTime = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore keeps alerts in a local database file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and ensures the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create job_alerts: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Insert(ctx context.Context, alert Alert) (Alert, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO job_alerts (id, email, role, country, frequency, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		alert.ID, alert.Email, alert.Role, alert.Country, string(alert.Frequency),
		alert.IsActive, alert.CreatedAt.UTC().Format(sqliteTime),
	)
	if err != nil {
		return Alert{}, fmt.Errorf("insert alert: %w", err)
	}

	return alert, nil
}

func (s *SQLiteStore) ListActive(ctx context.Context) ([]Alert, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, email, role, country, frequency, is_active, last_alerted_at, created_at
		 FROM job_alerts WHERE is_active = 1 ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("query active alerts: %w", err)
	}
	defer rows.Close()

	var alerts []Alert
	for rows.Next() {
		var (
			a           Alert
			freq        string
			lastAlerted sql.NullString
			createdAt   string
		)
		if err := rows.Scan(&a.ID, &a.Email, &a.Role, &a.Country, &freq, &a.IsActive, &lastAlerted, &createdAt); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}

		a.Frequency = Frequency(freq)
		if a.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at of %s: %w", a.ID, err)
		}

		if lastAlerted.Valid {
			at, err := time.Parse(time.RFC3339Nano, lastAlerted.String)
			if err != nil {
				return nil, fmt.Errorf("parse last_alerted_at of %s: %w", a.ID, err)
			}
			a.LastAlertedAt = &at
		}

		alerts = append(alerts, a)
	}

	return alerts, rows.Err()
}

func (s *SQLiteStore) MarkAlerted(ctx context.Context, id string, at time.Time) error {
	return s.update(ctx, `UPDATE job_alerts SET last_alerted_at = ? WHERE id = ?`, at.UTC().Format(sqliteTime), id)
}

func (s *SQLiteStore) Deactivate(ctx context.Context, id string) error {
	return s.update(ctx, `UPDATE job_alerts SET is_active = 0 WHERE id = ?`, id)
}

func (s *SQLiteStore) update(ctx context.Context, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update alert: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
