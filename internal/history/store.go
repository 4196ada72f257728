// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists completed generation runs in a local SQLite
// database and supports full-text search over past utterances.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/utterance-engine/pkg/types"
)

const dbFile = "history.db"

// Store manages the run history SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// NewStore opens or creates the history database at cfg.DBDir/history.db,
// creating the schema if it does not exist.
func NewStore(cfg types.HistoryConfig) (*Store, error) {
	dbDir := cfg.DBDir
	if dbDir == "" {
		dbDir = "index"
	}
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, maxResults: maxResults}
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
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			intention TEXT NOT NULL,
			output_path TEXT NOT NULL,
			generated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS utterances (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES runs(id),
			seq INTEGER NOT NULL,
			text TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_utterances_run_id ON utterances(run_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='utterances_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE utterances_fts USING fts5(text, content=utterances, content_rowid=rowid)`,
			`CREATE TRIGGER utterances_ai AFTER INSERT ON utterances BEGIN
				INSERT INTO utterances_fts(rowid, text) VALUES (new.rowid, new.text);
			END`,
			`CREATE TRIGGER utterances_ad AFTER DELETE ON utterances BEGIN
				INSERT INTO utterances_fts(utterances_fts, rowid, text) VALUES('delete', old.rowid, old.text);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// Record inserts one completed run and its utterances, returning the
// assigned run id.
func (s *Store) Record(ctx context.Context, run types.Run) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (intention, output_path, generated_at) VALUES (?, ?, ?)`,
		run.Intention, run.OutputPath, run.GeneratedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	for i, text := range run.Utterances {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO utterances (run_id, seq, text) VALUES (?, ?, ?)`,
			runID, i+1, text,
		); err != nil {
			return 0, fmt.Errorf("inserting utterance %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// List returns recent runs, newest first, with their utterances in sequence
// order. A non-positive limit uses the store default.
func (s *Store) List(ctx context.Context, limit int) ([]types.Run, error) {
	if limit <= 0 {
		limit = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, intention, output_path, generated_at FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []types.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}

	for i := range runs {
		if err := s.loadUtterances(ctx, &runs[i]); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// Export returns every recorded run, oldest first, for serialization.
func (s *Store) Export(ctx context.Context) ([]types.Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, intention, output_path, generated_at FROM runs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []types.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}

	for i := range runs {
		if err := s.loadUtterances(ctx, &runs[i]); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// SearchResult is one matching utterance with its run provenance.
type SearchResult struct {
	RunID       int64     `json:"run_id" yaml:"run_id"`
	Seq         int       `json:"seq" yaml:"seq"`
	Text        string    `json:"text" yaml:"text"`
	Intention   string    `json:"intention" yaml:"intention"`
	OutputPath  string    `json:"output_path" yaml:"output_path"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
}

// Search runs an FTS5 match over past utterances, ranked by relevance.
// A non-positive limit uses the store default.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT u.run_id, u.seq, u.text, r.intention, r.output_path, r.generated_at
		FROM utterances_fts
		JOIN utterances u ON u.rowid = utterances_fts.rowid
		JOIN runs r ON r.id = u.run_id
		WHERE utterances_fts MATCH ?
		ORDER BY utterances_fts.rank
		LIMIT ?`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var (
			sr          SearchResult
			generatedAt string
		)
		if err := rows.Scan(&sr.RunID, &sr.Seq, &sr.Text, &sr.Intention, &sr.OutputPath, &generatedAt); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		sr.GeneratedAt, err = time.Parse(time.RFC3339Nano, generatedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing run timestamp: %w", err)
		}
		results = append(results, sr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating results: %w", err)
	}
	return results, nil
}

// scanRun reads one runs row.
func scanRun(rows *sql.Rows) (types.Run, error) {
	var (
		run         types.Run
		generatedAt string
	)
	if err := rows.Scan(&run.RunID, &run.Intention, &run.OutputPath, &generatedAt); err != nil {
		return types.Run{}, fmt.Errorf("scanning run: %w", err)
	}
	parsed, err := time.Parse(time.RFC3339Nano, generatedAt)
	if err != nil {
		return types.Run{}, fmt.Errorf("parsing run timestamp: %w", err)
	}
	run.GeneratedAt = parsed
	return run, nil
}

// loadUtterances fills run.Utterances in sequence order.
func (s *Store) loadUtterances(ctx context.Context, run *types.Run) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT text FROM utterances WHERE run_id = ? ORDER BY seq`, run.RunID)
	if err != nil {
		return fmt.Errorf("querying utterances for run %d: %w", run.RunID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return fmt.Errorf("scanning utterance: %w", err)
		}
		run.Utterances = append(run.Utterances, text)
	}
	return rows.Err()
}
