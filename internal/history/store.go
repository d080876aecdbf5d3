// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history indexes the JSONL run and failure logs into SQLite so
// past batches can be queried without re-scanning log files.
package history

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/landing-engine/pkg/types"
)

const dbFile = "history.db"

// Source log files under the logs directory.
const (
	reviewLogSource  = "review_logs.jsonl"
	failureLogSource = "deploy_failures.jsonl"
)

// Store manages the run history SQLite database.
type Store struct {
	db         *sql.DB
	logsDir    string
	maxResults int
}

// NewStore opens or creates the history database at indexDir/history.db and
// creates the schema if needed.
func NewStore(cfg types.HistoryConfig) (*Store, error) {
	indexDir := cfg.IndexDir
	if indexDir == "" {
		indexDir = filepath.Join(logsDirOrDefault(cfg.LogsDir), "index")
	}
	if err := os.MkdirAll(indexDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(indexDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		logsDir:    logsDirOrDefault(cfg.LogsDir),
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

func logsDirOrDefault(dir string) string {
	if dir == "" {
		return "logs"
	}
	return dir
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			case_id TEXT NOT NULL,
			approved INTEGER NOT NULL,
			rounds INTEGER NOT NULL,
			status TEXT NOT NULL,
			error_type TEXT,
			legal_score REAL,
			tone_score REAL,
			structure_score REAL,
			seo_score REAL,
			model_writer TEXT,
			model_reviewer TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_case_id ON runs(case_id)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status)`,
		`CREATE TABLE IF NOT EXISTS failures (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			case_id TEXT NOT NULL,
			error_type TEXT,
			stage TEXT,
			message TEXT NOT NULL,
			timestamp TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_failures_case_id ON failures(case_id)`,
		`CREATE TABLE IF NOT EXISTS indexing_status (
			source TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table over failure messages, with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='failures_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE failures_fts USING fts5(message, content=failures, content_rowid=rowid)`,
			`CREATE TRIGGER failures_ai AFTER INSERT ON failures BEGIN
				INSERT INTO failures_fts(rowid, message) VALUES (new.rowid, new.message);
			END`,
			`CREATE TRIGGER failures_ad AFTER DELETE ON failures BEGIN
				INSERT INTO failures_fts(failures_fts, rowid, message) VALUES('delete', old.rowid, old.message);
			END`,
			`CREATE TRIGGER failures_au AFTER UPDATE ON failures BEGIN
				INSERT INTO failures_fts(failures_fts, rowid, message) VALUES('delete', old.rowid, old.message);
				INSERT INTO failures_fts(rowid, message) VALUES (new.rowid, new.message);
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

// IngestSummary holds counts from one indexing run.
type IngestSummary struct {
	Indexed int
	Skipped int
	Failed  int
}

// rawRunEntry mirrors one line of the review log.
type rawRunEntry struct {
	CaseID         string        `json:"case_id"`
	Approved       bool          `json:"approved"`
	Rounds         int           `json:"rounds"`
	Status         string        `json:"status"`
	Scores         *types.Scores `json:"scores"`
	ErrorType      string        `json:"error_type"`
	ModelWriter    string        `json:"model_writer"`
	ModelReviewer  string        `json:"model_reviewer"`
	ModelFixer     string        `json:"model_fixer"`
	ModelFinalGate string        `json:"model_final_gate"`
}

// rawFailureEntry mirrors one line of the deploy failure log.
type rawFailureEntry struct {
	CaseID       string `json:"case_id"`
	ErrorType    string `json:"error_type"`
	Stage        string `json:"stage"`
	ErrorMessage string `json:"error_message"`
	Timestamp    string `json:"timestamp"`
}

// Ingest reads review_logs.jsonl and deploy_failures.jsonl and populates the
// database. Files unchanged since their last indexing (by mod time) are
// skipped; a changed file is re-indexed wholesale since JSONL lines carry no
// identity of their own.
func (s *Store) Ingest(ctx context.Context, w io.Writer) (IngestSummary, error) {
	var summary IngestSummary

	for _, source := range []string{reviewLogSource, failureLogSource} {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		path := filepath.Join(s.logsDir, source)
		info, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(w, "skipped %s (missing)\n", source)
			summary.Skipped++
			continue
		}
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", source, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM indexing_status WHERE source = ?`, source,
		).Scan(&storedModTime)
		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", source)
			summary.Skipped++
			continue
		}

		count, err := s.ingestSource(ctx, source, path, modTime)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", source, err)
			summary.Failed++
			continue
		}
		fmt.Fprintf(w, "indexed %s (%d records)\n", source, count)
		summary.Indexed++
	}

	fmt.Fprintf(w, "\nindexed: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Skipped, summary.Failed)
	return summary, nil
}

func (s *Store) ingestSource(ctx context.Context, source, path, modTime string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	table := "runs"
	if source == failureLogSource {
		table = "failures"
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
		return 0, fmt.Errorf("clearing %s: %w", table, err)
	}

	count := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if source == failureLogSource {
			var entry rawFailureEntry
			if err := json.Unmarshal(line, &entry); err != nil {
				continue
			}
			_, err = tx.ExecContext(ctx,
				`INSERT INTO failures (case_id, error_type, stage, message, timestamp)
				 VALUES (?, ?, ?, ?, ?)`,
				entry.CaseID, entry.ErrorType, entry.Stage, entry.ErrorMessage, entry.Timestamp)
		} else {
			var entry rawRunEntry
			if err := json.Unmarshal(line, &entry); err != nil {
				continue
			}
			var legal, tone, structure, seo any
			if entry.Scores != nil {
				legal, tone, structure, seo = entry.Scores.Legal, entry.Scores.Tone, entry.Scores.Structure, entry.Scores.SEO
			}
			_, err = tx.ExecContext(ctx,
				`INSERT INTO runs (case_id, approved, rounds, status, error_type,
					legal_score, tone_score, structure_score, seo_score,
					model_writer, model_reviewer)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				entry.CaseID, entry.Approved, entry.Rounds, entry.Status, entry.ErrorType,
				legal, tone, structure, seo, entry.ModelWriter, entry.ModelReviewer)
		}
		if err != nil {
			return 0, fmt.Errorf("inserting record: %w", err)
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("reading %s: %w", source, err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO indexing_status (source, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(source) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		source, modTime); err != nil {
		return 0, fmt.Errorf("updating indexing status: %w", err)
	}

	return count, tx.Commit()
}

// QueryOptions holds parameters for history queries.
type QueryOptions struct {
	// Text is an FTS5 search string over deploy failure messages.
	Text string

	// Status filters runs by terminal status.
	Status string

	// CaseID filters both runs and failures by case.
	CaseID string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// RunRecord is one indexed workflow execution.
type RunRecord struct {
	CaseID        string        `json:"case_id"`
	Approved      bool          `json:"approved"`
	Rounds        int           `json:"rounds"`
	Status        string        `json:"status"`
	ErrorType     string        `json:"error_type,omitempty"`
	Scores        *types.Scores `json:"scores,omitempty"`
	ModelWriter   string        `json:"model_writer,omitempty"`
	ModelReviewer string        `json:"model_reviewer,omitempty"`
}

// FailureRecord is one indexed deploy failure.
type FailureRecord struct {
	CaseID    string `json:"case_id"`
	ErrorType string `json:"error_type,omitempty"`
	Stage     string `json:"stage,omitempty"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp,omitempty"`
}

// RetrieveResult bundles matching runs and failures.
type RetrieveResult struct {
	Runs     []RunRecord     `json:"runs,omitempty"`
	Failures []FailureRecord `json:"failures,omitempty"`
}

// Retrieve queries indexed history. A text query searches deploy failure
// messages via FTS5 ranked by relevance; status and case filters select run
// records, newest first.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) (RetrieveResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var result RetrieveResult

	if opts.Text != "" {
		failures, err := s.searchFailures(ctx, opts, maxResults)
		if err != nil {
			return RetrieveResult{}, err
		}
		result.Failures = failures
		return result, nil
	}

	runs, err := s.queryRuns(ctx, opts, maxResults)
	if err != nil {
		return RetrieveResult{}, err
	}
	result.Runs = runs

	if opts.CaseID != "" {
		failures, err := s.searchFailures(ctx, opts, maxResults)
		if err != nil {
			return RetrieveResult{}, err
		}
		result.Failures = failures
	}
	return result, nil
}

func (s *Store) queryRuns(ctx context.Context, opts QueryOptions, limit int) ([]RunRecord, error) {
	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(
		`SELECT case_id, approved, rounds, status, error_type,
			legal_score, tone_score, structure_score, seo_score,
			model_writer, model_reviewer
		FROM runs WHERE 1=1`)

	if opts.Status != "" {
		qb.WriteString(` AND status = ?`)
		args = append(args, opts.Status)
	}
	if opts.CaseID != "" {
		qb.WriteString(` AND case_id = ?`)
		args = append(args, opts.CaseID)
	}
	qb.WriteString(` ORDER BY rowid DESC LIMIT ?`)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var (
			r                          RunRecord
			errorType                  sql.NullString
			legal, tone, structure, se sql.NullFloat64
			writer, reviewer           sql.NullString
		)
		if err := rows.Scan(&r.CaseID, &r.Approved, &r.Rounds, &r.Status, &errorType,
			&legal, &tone, &structure, &se, &writer, &reviewer); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		r.ErrorType = errorType.String
		r.ModelWriter = writer.String
		r.ModelReviewer = reviewer.String
		if legal.Valid {
			r.Scores = &types.Scores{
				Legal:     legal.Float64,
				Tone:      tone.Float64,
				Structure: structure.Float64,
				SEO:       se.Float64,
			}
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *Store) searchFailures(ctx context.Context, opts QueryOptions, limit int) ([]FailureRecord, error) {
	var (
		qb   strings.Builder
		args []any
	)
	if opts.Text != "" {
		qb.WriteString(
			`SELECT f.case_id, f.error_type, f.stage, f.message, f.timestamp
			FROM failures_fts
			JOIN failures f ON f.rowid = failures_fts.rowid
			WHERE failures_fts MATCH ?`)
		args = append(args, opts.Text)
	} else {
		qb.WriteString(
			`SELECT f.case_id, f.error_type, f.stage, f.message, f.timestamp
			FROM failures f WHERE 1=1`)
	}
	if opts.CaseID != "" {
		qb.WriteString(` AND f.case_id = ?`)
		args = append(args, opts.CaseID)
	}
	if opts.Text != "" {
		qb.WriteString(` ORDER BY failures_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY f.rowid DESC`)
	}
	qb.WriteString(` LIMIT ?`)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying failures: %w", err)
	}
	defer rows.Close()

	var records []FailureRecord
	for rows.Next() {
		var (
			f                    FailureRecord
			errorType, stage, ts sql.NullString
		)
		if err := rows.Scan(&f.CaseID, &errorType, &stage, &f.Message, &ts); err != nil {
			return nil, fmt.Errorf("scanning failure row: %w", err)
		}
		f.ErrorType = errorType.String
		f.Stage = stage.String
		f.Timestamp = ts.String
		records = append(records, f)
	}
	return records, rows.Err()
}
