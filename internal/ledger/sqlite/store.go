// Package sqlite provides a SQLite-backed edition ledger.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/dnaforge/internal/engine/sampler"
	"github.com/louisbranch/dnaforge/internal/ledger"
	"github.com/louisbranch/dnaforge/internal/ledger/sqlite/migrations"
	"github.com/louisbranch/dnaforge/internal/platform/storage/sqlitemigrate"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists runs and editions in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	if value.IsZero() {
		return 0
	}
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	if value == 0 {
		return time.Time{}
	}
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite ledger at path and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(ctx, sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

// CreateRun inserts a run record.
func (s *Store) CreateRun(ctx context.Context, run ledger.Run) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	id := strings.TrimSpace(run.ID)
	if id == "" {
		return fmt.Errorf("run id is required")
	}
	if run.Status == "" {
		run.Status = ledger.RunStatusRunning
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO runs (id, seed, target, status, editions, created_at, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id,
		run.Seed,
		run.Target,
		string(run.Status),
		run.Editions,
		toMillis(run.CreatedAt),
		toMillis(run.CompletedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ledger.ErrAlreadyExists
		}
		return fmt.Errorf("create run: %w", err)
	}
	return nil
}

// GetRun returns one run by id.
func (s *Store) GetRun(ctx context.Context, id string) (ledger.Run, error) {
	if err := s.ready(ctx); err != nil {
		return ledger.Run{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, seed, target, status, editions, created_at, completed_at
		   FROM runs
		  WHERE id = ?`,
		strings.TrimSpace(id),
	)

	var run ledger.Run
	var status string
	var createdAt, completedAt int64
	if err := row.Scan(&run.ID, &run.Seed, &run.Target, &status, &run.Editions, &createdAt, &completedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.Run{}, ledger.ErrNotFound
		}
		return ledger.Run{}, fmt.Errorf("get run: %w", err)
	}
	run.Status = ledger.RunStatus(status)
	run.CreatedAt = fromMillis(createdAt)
	run.CompletedAt = fromMillis(completedAt)
	return run, nil
}

// CompleteRun records the final status and edition count of a run.
func (s *Store) CompleteRun(ctx context.Context, id string, status ledger.RunStatus, editions int, at time.Time) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}
	result, err := s.sqlDB.ExecContext(ctx,
		`UPDATE runs SET status = ?, editions = ?, completed_at = ? WHERE id = ?`,
		string(status), editions, toMillis(at), strings.TrimSpace(id),
	)
	if err != nil {
		return fmt.Errorf("complete run: %w", err)
	}
	updated, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("complete run: %w", err)
	}
	if updated == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

// PutEdition inserts one accepted edition.
func (s *Store) PutEdition(ctx context.Context, edition ledger.Edition) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(edition.RunID) == "" {
		return fmt.Errorf("run id is required")
	}
	if edition.DNA == "" {
		return fmt.Errorf("dna is required")
	}
	attributes := edition.Attributes
	if attributes == nil {
		attributes = []sampler.Attribute{}
	}
	encoded, err := json.Marshal(attributes)
	if err != nil {
		return fmt.Errorf("encode attributes: %w", err)
	}
	if edition.CreatedAt.IsZero() {
		edition.CreatedAt = time.Now().UTC()
	}

	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO editions (run_id, edition, dna, dna_key, dna_hash, attributes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		strings.TrimSpace(edition.RunID),
		edition.Edition,
		edition.DNA,
		edition.Key,
		edition.Hash,
		string(encoded),
		toMillis(edition.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ledger.ErrAlreadyExists
		}
		return fmt.Errorf("put edition: %w", err)
	}
	return nil
}

// ListEditions returns the editions of a run in creation order.
func (s *Store) ListEditions(ctx context.Context, runID string) ([]ledger.Edition, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT run_id, edition, dna, dna_key, dna_hash, attributes, created_at
		   FROM editions
		  WHERE run_id = ?
		  ORDER BY rowid`,
		strings.TrimSpace(runID),
	)
	if err != nil {
		return nil, fmt.Errorf("list editions: %w", err)
	}
	defer rows.Close()

	var editions []ledger.Edition
	for rows.Next() {
		var edition ledger.Edition
		var attributes string
		var createdAt int64
		if err := rows.Scan(&edition.RunID, &edition.Edition, &edition.DNA, &edition.Key, &edition.Hash, &attributes, &createdAt); err != nil {
			return nil, fmt.Errorf("scan edition: %w", err)
		}
		if err := json.Unmarshal([]byte(attributes), &edition.Attributes); err != nil {
			return nil, fmt.Errorf("decode attributes: %w", err)
		}
		edition.CreatedAt = fromMillis(createdAt)
		editions = append(editions, edition)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list editions: %w", err)
	}
	return editions, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

var _ ledger.Store = (*Store)(nil)
