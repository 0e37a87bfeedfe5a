// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive persists annotation runs in SQLite so earlier results can
// be listed and inspected without querying providers again.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/gene-annotator/internal/normalize"
	"github.com/pdiddy/gene-annotator/pkg/types"
)

// ErrNotFound is returned when a run or record does not exist.
var ErrNotFound = errors.New("not found")

// Run summarizes one archived aggregation call.
type Run struct {
	ID          string    `json:"id" yaml:"id"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	Providers   []string  `json:"providers" yaml:"providers"`
	Mode        string    `json:"mode" yaml:"mode"`
	Records     int       `json:"records" yaml:"records"`
	WithTargets int       `json:"with_targets" yaml:"with_targets"`
}

// Store manages the archive database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the archive database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating archive directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			providers TEXT NOT NULL,
			mode TEXT NOT NULL,
			records INTEGER NOT NULL,
			with_targets INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS records (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			symbol TEXT NOT NULL,
			body TEXT NOT NULL,
			PRIMARY KEY (run_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_symbol ON records(run_id, symbol)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Save stores rs under a new run ID and returns the run summary.
func (s *Store) Save(ctx context.Context, rs types.ResultSet, mode types.Mode) (Run, error) {
	run := Run{
		ID:        uuid.NewString(),
		CreatedAt: s.now().UTC(),
		Providers: rs.Providers,
		Mode:      string(mode),
		Records:   len(rs.Records),
	}
	if run.Providers == nil {
		run.Providers = []string{}
	}
	for _, r := range rs.Records {
		if r.HasDrugTargets() {
			run.WithTargets++
		}
	}

	providers, err := json.Marshal(run.Providers)
	if err != nil {
		return Run{}, fmt.Errorf("encoding providers: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, providers, mode, records, with_targets) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.Format(time.RFC3339Nano), string(providers), run.Mode, run.Records, run.WithTargets,
	); err != nil {
		return Run{}, fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO records (run_id, position, symbol, body) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return Run{}, fmt.Errorf("preparing record insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range rs.Records {
		body, err := json.Marshal(r)
		if err != nil {
			return Run{}, fmt.Errorf("encoding record %s: %w", r.Symbol, err)
		}
		if _, err := stmt.ExecContext(ctx, run.ID, i, r.Symbol, string(body)); err != nil {
			return Run{}, fmt.Errorf("inserting record %s: %w", r.Symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("committing run: %w", err)
	}
	return run, nil
}

// List returns archived runs, newest first. limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, created_at, providers, mode, records, with_targets FROM runs ORDER BY created_at DESC, id`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Get returns the summary of run id.
func (s *Store) Get(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, providers, mode, records, with_targets FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return run, err
}

// Load returns the full result set of run id, records in original order.
func (s *Store) Load(ctx context.Context, id string) (types.ResultSet, error) {
	run, err := s.Get(ctx, id)
	if err != nil {
		return types.ResultSet{}, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT body FROM records WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return types.ResultSet{}, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	rs := types.ResultSet{Providers: run.Providers, Records: []types.AnnotationRecord{}}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return types.ResultSet{}, fmt.Errorf("scanning record: %w", err)
		}
		var rec types.AnnotationRecord
		if err := json.Unmarshal([]byte(body), &rec); err != nil {
			return types.ResultSet{}, fmt.Errorf("decoding record: %w", err)
		}
		rs.Records = append(rs.Records, rec)
	}
	return rs, rows.Err()
}

// Record returns one gene's record from run id, matching symbol
// case-insensitively.
func (s *Store) Record(ctx context.Context, id, symbol string) (types.AnnotationRecord, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM records WHERE run_id = ? AND symbol = ? ORDER BY position LIMIT 1`,
		id, normalize.Key(symbol),
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return types.AnnotationRecord{}, fmt.Errorf("gene %s in run %s: %w", symbol, id, ErrNotFound)
	}
	if err != nil {
		return types.AnnotationRecord{}, fmt.Errorf("querying record: %w", err)
	}

	var rec types.AnnotationRecord
	if err := json.Unmarshal([]byte(body), &rec); err != nil {
		return types.AnnotationRecord{}, fmt.Errorf("decoding record: %w", err)
	}
	return rec, nil
}

// Delete removes run id and its records.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		run       Run
		created   string
		providers string
	)
	if err := sc.Scan(&run.ID, &created, &providers, &run.Mode, &run.Records, &run.WithTargets); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scanning run: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return Run{}, fmt.Errorf("parsing run time: %w", err)
	}
	run.CreatedAt = t
	if err := json.Unmarshal([]byte(providers), &run.Providers); err != nil {
		return Run{}, fmt.Errorf("decoding providers: %w", err)
	}
	return run, nil
}
