// Package storage provides the SQLite implementation of the Storage interface.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/finsight/newsrag/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS ingestion_runs (
		id TEXT PRIMARY KEY,
		namespace TEXT NOT NULL,
		fetched INTEGER NOT NULL,
		indexed INTEGER NOT NULL,
		index_size INTEGER NOT NULL,
		persisted INTEGER NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_runs_namespace ON ingestion_runs(namespace);
	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON ingestion_runs(created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// RecordRun inserts an ingestion run record.
func (s *SQLiteStorage) RecordRun(ctx context.Context, run *models.IngestionRun) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ingestion_runs (id, namespace, fetched, indexed, index_size, persisted, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Namespace, run.Fetched, run.Indexed, run.IndexSize, run.Persisted, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record ingestion run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs for a namespace, newest first.
func (s *SQLiteStorage) ListRuns(ctx context.Context, namespace string, limit int) ([]*models.IngestionRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, namespace, fetched, indexed, index_size, persisted, created_at
		 FROM ingestion_runs WHERE namespace = ? ORDER BY created_at DESC LIMIT ?`,
		namespace, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list ingestion runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.IngestionRun
	for rows.Next() {
		var run models.IngestionRun
		if err := rows.Scan(&run.ID, &run.Namespace, &run.Fetched, &run.Indexed,
			&run.IndexSize, &run.Persisted, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ingestion run: %w", err)
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}

// NamespaceStats aggregates run counts and latest index sizes per namespace.
func (s *SQLiteStorage) NamespaceStats(ctx context.Context) ([]*models.NamespaceStat, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT namespace, COUNT(*) AS runs, MAX(created_at) AS last_run_at,
		        (SELECT index_size FROM ingestion_runs r2
		         WHERE r2.namespace = r1.namespace ORDER BY created_at DESC LIMIT 1) AS documents
		 FROM ingestion_runs r1 GROUP BY namespace ORDER BY namespace`)
	if err != nil {
		return nil, fmt.Errorf("failed to query namespace stats: %w", err)
	}
	defer rows.Close()

	var stats []*models.NamespaceStat
	for rows.Next() {
		var stat models.NamespaceStat
		if err := rows.Scan(&stat.Namespace, &stat.Runs, &stat.LastRunAt, &stat.Documents); err != nil {
			return nil, fmt.Errorf("failed to scan namespace stat: %w", err)
		}
		stats = append(stats, &stat)
	}
	return stats, rows.Err()
}

// CountRuns returns the total number of recorded ingestion runs.
func (s *SQLiteStorage) CountRuns(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ingestion_runs`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count ingestion runs: %w", err)
	}
	return count, nil
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
