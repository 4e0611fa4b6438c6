package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/leadlens/leadlens/internal/assess"
)

// PostgresConfig controls the report store connection pool.
type PostgresConfig struct {
	DSN      string
	MaxConns int32
}

// pgxPool is the subset of pgxpool.Pool the store uses; pgxmock satisfies it
// in tests.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements ReportStore on Postgres.
type PostgresStore struct {
	pool pgxPool
}

// NewPostgresStore connects a pool and returns the store.
func NewPostgresStore(ctx context.Context, cfg PostgresConfig) (*PostgresStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresStoreWithPool constructs a store from an existing pool
// (primarily for testing).
func NewPostgresStoreWithPool(pool pgxPool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &PostgresStore{pool: pool}, nil
}

// Close closes the underlying connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// SaveReport inserts one completed snapshot.
func (s *PostgresStore) SaveReport(ctx context.Context, snap assess.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	query := `
		INSERT INTO reports (id, url, analyzed_at, overall_score, overall_category, snapshot)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err = s.pool.Exec(ctx, query,
		uuid.NewString(), snap.URL, snap.AnalyzedAt, snap.OverallScore, snap.OverallCategory, payload)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// ListReports returns reports newest first.
func (s *PostgresStore) ListReports(ctx context.Context, limit, offset int) ([]Report, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, url, analyzed_at, overall_score, overall_category, snapshot
		FROM reports
		ORDER BY analyzed_at DESC
		LIMIT $1 OFFSET $2;
	`
	rows, err := s.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var reports []Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return reports, nil
}

// GetReport loads one report by id.
func (s *PostgresStore) GetReport(ctx context.Context, id string) (Report, error) {
	query := `
		SELECT id, url, analyzed_at, overall_score, overall_category, snapshot
		FROM reports
		WHERE id = $1;
	`
	r, err := scanReport(s.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Report{}, ErrNotFound
	}
	if err != nil {
		return Report{}, err
	}
	return r, nil
}

// Stats aggregates totals in SQL and derives the weak-criteria ranking from
// the most recent snapshots.
func (s *PostgresStore) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE analyzed_at >= $1),
		       COALESCE(AVG(overall_score), 0)
		FROM reports;
	`
	midnight := time.Now().UTC().Truncate(24 * time.Hour)
	row := s.pool.QueryRow(ctx, query, midnight)
	if err := row.Scan(&stats.TotalReports, &stats.ReportsToday, &stats.AverageScore); err != nil {
		return Stats{}, fmt.Errorf("aggregate reports: %w", err)
	}

	recent, err := s.ListReports(ctx, 100, 0)
	if err != nil {
		return Stats{}, err
	}
	stats.TopWeakCriteria = weakCriteria(recent, 2, 5)
	return stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (Report, error) {
	var (
		r       Report
		payload []byte
	)
	if err := row.Scan(&r.ID, &r.URL, &r.AnalyzedAt, &r.OverallScore, &r.OverallCategory, &payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Report{}, err
		}
		return Report{}, fmt.Errorf("scan report: %w", err)
	}
	if err := json.Unmarshal(payload, &r.Snapshot); err != nil {
		return Report{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return r, nil
}
