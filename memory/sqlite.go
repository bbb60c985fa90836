// SQLite persistence for step logs and task history.
//
// Information Hiding:
// - Connection management hidden behind the type
// - Schema and migration details encapsulated
// - Thread-safe via sql.DB's built-in connection pooling

package memory

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// SqliteStore implements Persister backed by a SQLite database, and keeps a
// task-level history of completed runs.
type SqliteStore struct {
	db *sql.DB
}

// OpenSqlite opens or creates a SQLite database at the given path, creating
// parent directories if needed.
func OpenSqlite(path string) (*SqliteStore, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	store := &SqliteStore{db: db}
	if err := store.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// NewSqliteInMemory creates an in-memory database (useful for testing).
func NewSqliteInMemory() (*SqliteStore, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite: %w", err)
	}

	store := &SqliteStore{db: db}
	if err := store.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *SqliteStore) Close() error {
	return s.db.Close()
}

func (s *SqliteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS steps (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			thought TEXT,
			tool TEXT,
			input TEXT,
			final INTEGER NOT NULL DEFAULT 0,
			answer TEXT,
			observation TEXT,
			error TEXT,
			created_at INTEGER NOT NULL,
			UNIQUE(session_id, seq)
		);

		CREATE INDEX IF NOT EXISTS idx_steps_session
		ON steps(session_id, seq);

		CREATE TABLE IF NOT EXISTS task_history (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			task TEXT NOT NULL,
			result TEXT NOT NULL,
			status TEXT NOT NULL,
			step_count INTEGER NOT NULL,
			created_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_task_history_session
		ON task_history(session_id, created_at DESC);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// PersistStep writes one step through to durable storage.
func (s *SqliteStore) PersistStep(ctx context.Context, sessionID string, step Step) error {
	final := 0
	if step.Final {
		final = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO steps (id, session_id, seq, thought, tool, input, final, answer, observation, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, uuid.New().String(), sessionID, step.Seq, step.Thought, step.Tool, string(step.Input),
		final, step.Answer, step.Observation, step.Err, step.At.Unix())
	if err != nil {
		return fmt.Errorf("failed to persist step: %w", err)
	}
	return nil
}

// LoadSteps returns all persisted steps for a session in sequence order.
func (s *SqliteStore) LoadSteps(ctx context.Context, sessionID string) ([]Step, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, thought, tool, input, final, answer, observation, error, created_at
		FROM steps
		WHERE session_id = ?
		ORDER BY seq ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query steps: %w", err)
	}
	defer rows.Close()

	var steps []Step
	for rows.Next() {
		var step Step
		var input, thought, tool, answer, observation, errText sql.NullString
		var final int
		var createdAt int64

		if err := rows.Scan(&step.Seq, &thought, &tool, &input, &final, &answer, &observation, &errText, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan step: %w", err)
		}
		step.Thought = thought.String
		step.Tool = tool.String
		if input.String != "" {
			step.Input = []byte(input.String)
		}
		step.Final = final != 0
		step.Answer = answer.String
		step.Observation = observation.String
		step.Err = errText.String
		step.At = time.Unix(createdAt, 0)
		steps = append(steps, step)
	}
	return steps, rows.Err()
}

// TaskRecord is one completed run in the task history.
type TaskRecord struct {
	ID        string
	SessionID string
	Task      string
	Result    string
	Status    string
	StepCount int
	CreatedAt time.Time
}

// SaveTaskResult records a completed run in the task history.
func (s *SqliteStore) SaveTaskResult(ctx context.Context, sessionID, task, result, status string, stepCount int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO task_history (id, session_id, task, result, status, step_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, uuid.New().String(), sessionID, task, result, status, stepCount, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save task result: %w", err)
	}
	return nil
}

// TaskHistory returns recent task records, newest first. An empty sessionID
// returns history across all sessions.
func (s *SqliteStore) TaskHistory(ctx context.Context, sessionID string, limit int) ([]TaskRecord, error) {
	query := `
		SELECT id, session_id, task, result, status, step_count, created_at
		FROM task_history
	`
	args := []interface{}{}
	if sessionID != "" {
		query += " WHERE session_id = ?"
		args = append(args, sessionID)
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query task history: %w", err)
	}
	defer rows.Close()

	var records []TaskRecord
	for rows.Next() {
		var r TaskRecord
		var createdAt int64
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Task, &r.Result, &r.Status, &r.StepCount, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan task record: %w", err)
		}
		r.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, r)
	}
	return records, rows.Err()
}

// Verify SqliteStore implements Persister
var _ Persister = (*SqliteStore)(nil)
