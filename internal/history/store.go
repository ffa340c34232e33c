package history

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/r3dlabs/termkit/internal/errors"
	"github.com/r3dlabs/termkit/internal/refresh"

	_ "modernc.org/sqlite"
)

// DefaultFileName is the database name under the data directory.
const DefaultFileName = "history.db"

// Session is one finished live monitoring run.
type Session struct {
	ID             int64
	Tool           string
	StartedAt      time.Time
	Interval       time.Duration
	Duration       time.Duration
	Status         string
	Cycles         int
	Degraded       int
	RenderFailures int
	Elapsed        time.Duration
	Error          string
}

// FromResult builds a Session record from a session result.
func FromResult(tool string, started time.Time, interval, duration time.Duration, res refresh.Result) Session {
	s := Session{
		Tool:           tool,
		StartedAt:      started,
		Interval:       interval,
		Duration:       duration,
		Status:         res.Status.String(),
		Cycles:         res.Cycles,
		Degraded:       res.Degraded,
		RenderFailures: res.RenderFailures,
		Elapsed:        res.Elapsed,
	}
	if res.Err != nil {
		s.Error = res.Err.Error()
	}
	return s
}

// Store persists live session results in SQLite.
type Store struct {
	db *sql.DB
}

// DefaultPath returns $XDG_DATA_HOME/termkit/history.db, falling back to
// ~/.local/share/termkit/history.db.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "termkit", DefaultFileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrFS,
			"Can't find your home directory",
			"Set history.path in .termkit.yaml")
	}
	return filepath.Join(home, ".local", "share", "termkit", DefaultFileName), nil
}

// Open opens (creating if needed) the database at path. ":memory:" is
// accepted for tests.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrFS,
				"Can't create history directory "+filepath.Dir(path),
				"Check directory permissions or set history.path")
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(2000)")
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrFS, "Can't open history database", "")
	}
	// A single connection keeps ":memory:" databases alive across calls.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, errors.WrapWithCode(err, errors.ErrFS,
			"Can't initialise history database "+path,
			"Delete the file to start a fresh history")
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			tool TEXT NOT NULL,
			started_at TIMESTAMP NOT NULL,
			interval_ms INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			status TEXT NOT NULL,
			cycles INTEGER NOT NULL,
			degraded INTEGER NOT NULL DEFAULT 0,
			elapsed_ms INTEGER NOT NULL,
			error TEXT
		)`,
		`ALTER TABLE sessions ADD COLUMN render_failures INTEGER NOT NULL DEFAULT 0`,
		`CREATE INDEX IF NOT EXISTS sessions_started ON sessions(started_at)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil && !isDuplicateColumnError(err) {
			return err
		}
	}
	return nil
}

func isDuplicateColumnError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "duplicate column") || strings.Contains(msg, "already exists")
}

// Record stores a finished session and returns its ID.
func (s *Store) Record(ctx context.Context, sess Session) (int64, error) {
	var errText sql.NullString
	if sess.Error != "" {
		errText = sql.NullString{String: sess.Error, Valid: true}
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (tool, started_at, interval_ms, duration_ms, status, cycles, degraded, render_failures, elapsed_ms, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.Tool, sess.StartedAt.UTC(), sess.Interval.Milliseconds(), sess.Duration.Milliseconds(),
		sess.Status, sess.Cycles, sess.Degraded, sess.RenderFailures, sess.Elapsed.Milliseconds(), errText,
	)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrFS, "Can't record session history", "")
	}
	return res.LastInsertId()
}

// Filter narrows List.
type Filter struct {
	// Tool keeps sessions of one tool ("sys", "procs", "net") when set.
	Tool string
	// Limit caps the rows returned; zero means 20.
	Limit int
}

// List returns recorded sessions, newest first.
func (s *Store) List(ctx context.Context, f Filter) ([]Session, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, tool, started_at, interval_ms, duration_ms, status, cycles, degraded, render_failures, elapsed_ms, error FROM sessions`
	args := []any{}
	if f.Tool != "" {
		query += ` WHERE tool = ?`
		args = append(args, f.Tool)
	}
	query += ` ORDER BY started_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrFS, "Can't read session history", "")
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		var intervalMs, durationMs, elapsedMs int64
		var errText sql.NullString
		if err := rows.Scan(&sess.ID, &sess.Tool, &sess.StartedAt, &intervalMs, &durationMs,
			&sess.Status, &sess.Cycles, &sess.Degraded, &sess.RenderFailures, &elapsedMs, &errText); err != nil {
			return nil, err
		}
		sess.Interval = time.Duration(intervalMs) * time.Millisecond
		sess.Duration = time.Duration(durationMs) * time.Millisecond
		sess.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		sess.Error = errText.String
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// Prune deletes sessions older than before and returns how many went.
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE started_at < ?`, before.UTC())
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrFS, "Can't prune session history", "")
	}
	return res.RowsAffected()
}
