package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/Epistemic-Technology/pdfsplit/internal/logger"
	"github.com/Epistemic-Technology/pdfsplit/models"
)

// timeLayout is fixed-width so created_at sorts lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db  *sql.DB
	log logger.Logger
}

// NewSQLiteStore creates a new SQLite store
func NewSQLiteStore(dbPath string, log logger.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Each :memory: connection is its own database
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db, log: log}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the database tables if they don't exist
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		operation TEXT NOT NULL,
		inputs TEXT NOT NULL,
		output_dir TEXT,
		policy TEXT,
		success INTEGER NOT NULL,
		message TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS outputs (
		run_id TEXT NOT NULL,
		output_index INTEGER NOT NULL,
		path TEXT NOT NULL,
		pages INTEGER,
		size INTEGER,
		PRIMARY KEY (run_id, output_index),
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// RecordRun stores a run and its outputs in a single transaction
func (s *SQLiteStore) RecordRun(ctx context.Context, run *models.RunRecord) (string, error) {
	if run.RunID == "" {
		run.RunID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	inputsJSON, err := json.Marshal(run.Inputs)
	if err != nil {
		return "", fmt.Errorf("failed to marshal inputs: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs (id, operation, inputs, output_dir, policy, success, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, run.RunID, run.Operation, string(inputsJSON), run.OutputDir, run.Policy,
		run.Success, run.Message, run.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	for i, out := range run.Outputs {
		_, err = tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO outputs (run_id, output_index, path, pages, size)
			VALUES (?, ?, ?, ?, ?)
		`, run.RunID, i, out.Path, out.Pages, out.Size)
		if err != nil {
			return "", fmt.Errorf("failed to insert output %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.log.Debug("Recorded %s run %s with %d outputs", run.Operation, run.RunID, len(run.Outputs))
	return run.RunID, nil
}

// GetRun retrieves a run by ID
func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*models.RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, operation, inputs, output_dir, policy, success, message, created_at
		FROM runs
		WHERE id = ?
	`, runID)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", runID)
	}
	if err != nil {
		return nil, err
	}

	run.Outputs, err = s.getOutputs(ctx, runID)
	if err != nil {
		return nil, err
	}
	return run, nil
}

func (s *SQLiteStore) getOutputs(ctx context.Context, runID string) ([]models.OutputFile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT path, pages, size
		FROM outputs
		WHERE run_id = ?
		ORDER BY output_index
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query outputs: %w", err)
	}
	defer rows.Close()

	var outputs []models.OutputFile
	for rows.Next() {
		var out models.OutputFile
		if err := rows.Scan(&out.Path, &out.Pages, &out.Size); err != nil {
			return nil, fmt.Errorf("failed to scan output: %w", err)
		}
		outputs = append(outputs, out)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outputs: %w", err)
	}

	return outputs, nil
}

// ListRuns returns recorded runs, newest first
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]models.RunRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, operation, inputs, output_dir, policy, success, message, created_at
		FROM runs
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []models.RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	for i := range runs {
		runs[i].Outputs, err = s.getOutputs(ctx, runs[i].RunID)
		if err != nil {
			return nil, err
		}
	}

	return runs, nil
}

// DeleteRun removes a run; its outputs go with it via ON DELETE CASCADE
func (s *SQLiteStore) DeleteRun(ctx context.Context, runID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, runID)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("run not found: %s", runID)
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*models.RunRecord, error) {
	var run models.RunRecord
	var inputsJSON, createdAt string
	var outputDir, policy, message sql.NullString

	err := row.Scan(&run.RunID, &run.Operation, &inputsJSON, &outputDir, &policy,
		&run.Success, &message, &createdAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	if err := json.Unmarshal([]byte(inputsJSON), &run.Inputs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal inputs: %w", err)
	}
	run.CreatedAt, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	run.OutputDir = outputDir.String
	run.Policy = policy.String
	run.Message = message.String

	return &run, nil
}

// Ensure SQLiteStore implements Store interface
var _ Store = (*SQLiteStore)(nil)
