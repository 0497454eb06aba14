package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store manages run history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	defaultListLimit = 20
	timeLayout       = "2006-01-02T15:04:05.000000000Z07:00"

	// A second vidscribe process may hold the write lock briefly.
	sqliteBusyCode   = 5
	busyAttempts     = 5
	busyFirstBackoff = 10 * time.Millisecond
	busyMaxBackoff   = 200 * time.Millisecond
)

// Open creates the database at path if needed and upgrades its schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if path = strings.TrimSpace(path); path == "" {
		return nil, errors.New("open history: database path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	// WAL lets history commands read while a run is recording.
	dsn := "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", path, err)
	}
	store := &Store{db: db, path: path}
	if err := store.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open history %s: %w", path, err)
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts run, assigning an ID and timestamp when absent.
func (s *Store) Record(ctx context.Context, run *Run) error {
	if run == nil {
		return errors.New("record run: nil run")
	}
	if strings.TrimSpace(run.SourcePath) == "" {
		return errors.New("record run: source path required")
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	if run.Status == "" {
		run.Status = StatusFailed
	}
	_, err := s.execWithRetry(ctx, `INSERT INTO runs (
		id, request_id, source_path, output_path, provider, language, status,
		chunks_total, chunks_skipped, characters, audio_seconds, duration_ms,
		error_message, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.RequestID,
		run.SourcePath,
		nullableString(run.OutputPath),
		run.Provider,
		nullableString(run.Language),
		string(run.Status),
		run.ChunksTotal,
		run.ChunksSkipped,
		run.Characters,
		run.AudioSeconds,
		run.Duration.Milliseconds(),
		nullableString(run.ErrorMessage),
		run.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

const selectColumns = `id, request_id, source_path, output_path, provider, language, status,
	chunks_total, chunks_skipped, characters, audio_seconds, duration_ms,
	error_message, created_at`

// List returns up to limit runs, newest first. A non-positive limit uses the default.
func (s *Store) List(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+selectColumns+" FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Get returns the run with id, or nil when it does not exist.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+selectColumns+" FROM runs WHERE id = ?", id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return run, err
}

// Stats counts runs by status.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(1) FROM runs GROUP BY status")
	if err != nil {
		return stats, fmt.Errorf("run stats: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return stats, fmt.Errorf("scan stats: %w", err)
		}
		stats.Total += count
		switch Status(status) {
		case StatusSucceeded:
			stats.Succeeded += count
		case StatusFailed:
			stats.Failed += count
		}
	}
	return stats, rows.Err()
}

// Clear deletes every run and reports how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, "DELETE FROM runs")
	if err != nil {
		return 0, fmt.Errorf("clear runs: %w", err)
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(scanner rowScanner) (*Run, error) {
	var (
		run        Run
		output     sql.NullString
		language   sql.NullString
		status     string
		durationMS int64
		errMessage sql.NullString
		createdAt  string
	)
	if err := scanner.Scan(
		&run.ID,
		&run.RequestID,
		&run.SourcePath,
		&output,
		&run.Provider,
		&language,
		&status,
		&run.ChunksTotal,
		&run.ChunksSkipped,
		&run.Characters,
		&run.AudioSeconds,
		&durationMS,
		&errMessage,
		&createdAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	run.OutputPath = output.String
	run.Language = language.String
	run.Status = Status(status)
	run.Duration = time.Duration(durationMS) * time.Millisecond
	run.ErrorMessage = errMessage.String
	if ts, err := time.Parse(timeLayout, createdAt); err == nil {
		run.CreatedAt = ts
	}
	return &run, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func isSQLiteBusy(err error) bool {
	var coded interface{ Code() int }
	if errors.As(err, &coded) {
		return coded.Code()&0xff == sqliteBusyCode
	}
	return err != nil && strings.Contains(err.Error(), "database is locked")
}

// execWithRetry runs a write, backing off while another connection holds
// the lock.
func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	backoff := busyFirstBackoff
	for attempt := 1; ; attempt++ {
		res, err := s.db.ExecContext(ctx, query, args...)
		if err == nil || !isSQLiteBusy(err) || attempt == busyAttempts {
			return res, err
		}
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		backoff = min(backoff*2, busyMaxBackoff)
	}
}
