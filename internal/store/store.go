// Package store provides SQLite-based persistence for reliability suite
// reports and their replay cases.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/samdwyer/questforge/internal/harness"
	"github.com/samdwyer/questforge/internal/logger"
	"github.com/samdwyer/questforge/internal/quest"
)

// ErrRunNotFound is returned when a suite run id is not archived.
var ErrRunNotFound = errors.New("suite run not found")

// Store wraps the SQLite connection.
type Store struct {
	db *sql.DB
}

// RunRecord is the archived summary of one suite run.
type RunRecord struct {
	ID                string    `json:"id"`
	StartedAt         time.Time `json:"started_at"`
	DurationMS        int64     `json:"duration_ms"`
	Version           string    `json:"version"`
	ScenarioCount     int       `json:"scenario_count"`
	Total             int       `json:"total"`
	Pass              int       `json:"pass"`
	Fail              int       `json:"fail"`
	DeterministicRate float64   `json:"deterministic_rate"`
	PatchPassRate     *float64  `json:"patch_pass_rate"`
	Interrupted       bool      `json:"interrupted"`
}

// Open opens or creates the SQLite database at the given path.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	if path == ":memory:" {
		// every connection to :memory: is a separate empty database
		db.SetMaxOpenConns(1)
	}

	for _, stmt := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run %q: %w", stmt, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS suite_runs (
			id TEXT PRIMARY KEY,
			started_at TIMESTAMP NOT NULL,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			version TEXT NOT NULL DEFAULT '',
			scenario_count INTEGER NOT NULL DEFAULT 0,
			total INTEGER NOT NULL DEFAULT 0,
			pass INTEGER NOT NULL DEFAULT 0,
			fail INTEGER NOT NULL DEFAULT 0,
			deterministic_rate REAL NOT NULL DEFAULT 0,
			patch_pass_rate REAL,
			interrupted INTEGER NOT NULL DEFAULT 0,
			report TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS replay_cases (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES suite_runs(id) ON DELETE CASCADE,
			scenario_id TEXT NOT NULL,
			seed TEXT NOT NULL,
			request TEXT NOT NULL,
			include_patches INTEGER NOT NULL DEFAULT 0,
			reason TEXT NOT NULL DEFAULT ''
		)`,

		`CREATE INDEX IF NOT EXISTS idx_suite_runs_started_at ON suite_runs(started_at)`,
		`CREATE INDEX IF NOT EXISTS idx_replay_cases_run_id ON replay_cases(run_id)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

// SaveReport archives a suite report and its replay cases in one
// transaction. Saving the same report twice replaces the earlier copy.
func (s *Store) SaveReport(ctx context.Context, r *harness.Report) error {
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM replay_cases WHERE run_id = ?`,
		`DELETE FROM suite_runs WHERE id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, r.ID); err != nil {
			return err
		}
	}

	var patchRate sql.NullFloat64
	if r.Summary.PatchPassRate != nil {
		patchRate = sql.NullFloat64{Float64: *r.Summary.PatchPassRate, Valid: true}
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO suite_runs (id, started_at, duration_ms, version, scenario_count,
			total, pass, fail, deterministic_rate, patch_pass_rate, interrupted, report)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.StartedAt.UTC(), r.DurationMS, r.Version, r.Summary.ScenarioCount,
		r.Summary.Total, r.Summary.Pass, r.Summary.Fail, r.Summary.DeterministicRate,
		patchRate, r.Interrupted, string(body))
	if err != nil {
		return fmt.Errorf("insert suite run: %w", err)
	}

	for _, rc := range r.ReplayCases {
		req, err := json.Marshal(rc.Request)
		if err != nil {
			return fmt.Errorf("encode replay request: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO replay_cases (run_id, scenario_id, seed, request, include_patches, reason)
			VALUES (?, ?, ?, ?, ?, ?)
		`, r.ID, rc.ScenarioID, rc.Seed, string(req), rc.IncludePatches, rc.Reason)
		if err != nil {
			return fmt.Errorf("insert replay case: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	logger.Debugf("Archived suite run %s with %d replay cases", r.ID, len(r.ReplayCases))
	return nil
}

// LatestRuns returns up to limit archived runs, newest first.
func (s *Store) LatestRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, duration_ms, version, scenario_count,
			total, pass, fail, deterministic_rate, patch_pass_rate, interrupted
		FROM suite_runs
		ORDER BY started_at DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var rec RunRecord
		var patchRate sql.NullFloat64
		if err := rows.Scan(&rec.ID, &rec.StartedAt, &rec.DurationMS, &rec.Version,
			&rec.ScenarioCount, &rec.Total, &rec.Pass, &rec.Fail,
			&rec.DeterministicRate, &patchRate, &rec.Interrupted); err != nil {
			return nil, err
		}
		if patchRate.Valid {
			v := patchRate.Float64
			rec.PatchPassRate = &v
		}
		runs = append(runs, rec)
	}
	return runs, rows.Err()
}

// Report returns the full archived report for a run.
func (s *Store) Report(ctx context.Context, runID string) (*harness.Report, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT report FROM suite_runs WHERE id = ?`, runID).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}

	var r harness.Report
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", runID, err)
	}
	return &r, nil
}

// ReplayCases returns the archived replay cases of a run in insertion
// order.
func (s *Store) ReplayCases(ctx context.Context, runID string) ([]harness.ReplayCase, error) {
	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM suite_runs WHERE id = ?`, runID).Scan(&exists); err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, ErrRunNotFound
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT scenario_id, seed, request, include_patches, reason
		FROM replay_cases
		WHERE run_id = ?
		ORDER BY id
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cases := []harness.ReplayCase{}
	for rows.Next() {
		var rc harness.ReplayCase
		var req string
		if err := rows.Scan(&rc.ScenarioID, &rc.Seed, &req, &rc.IncludePatches, &rc.Reason); err != nil {
			return nil, err
		}
		var request quest.Request
		if err := json.Unmarshal([]byte(req), &request); err != nil {
			return nil, fmt.Errorf("decode replay request: %w", err)
		}
		rc.Request = request
		cases = append(cases, rc)
	}
	return cases, rows.Err()
}
