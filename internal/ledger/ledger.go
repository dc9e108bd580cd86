// Package ledger keeps a history of sync sessions in a SQLite database so
// the status command can show what the service has been doing.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver, registers as "sqlite".

	"github.com/tonimelisma/savesync/internal/supervisor"
)

const stateDirPermissions = 0o755

const (
	sqlInsertSession = `INSERT INTO sessions
		(id, started_at, ended_at, remote_path, local_path, outcome, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	sqlRecentSessions = `SELECT id, started_at, ended_at, remote_path, local_path, outcome, error
		FROM sessions ORDER BY started_at DESC, id LIMIT ?`
)

// Session is one recorded sync session.
type Session struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at"`
	RemotePath string    `json:"remote_path"`
	LocalPath  string    `json:"local_path"`
	Outcome    string    `json:"outcome"`
	Error      string    `json:"error,omitempty"`
}

// Duration returns how long the session ran.
func (s *Session) Duration() time.Duration {
	return s.EndedAt.Sub(s.StartedAt)
}

// Store persists session history. It implements supervisor.Recorder.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the ledger database at dbPath and applies
// migrations.
func Open(ctx context.Context, dbPath string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), stateDirPermissions); err != nil {
		return nil, fmt.Errorf("ledger: creating state directory: %w", err)
	}

	// DSN parameters ensure pragmas apply to every connection from the pool.
	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"+
			"&_pragma=busy_timeout(5000)",
		dbPath,
	)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("ledger: opening database %s: %w", dbPath, err)
	}

	// Sole-writer pattern: only one connection writes at a time.
	db.SetMaxOpenConns(1)

	version, err := migrateSchema(ctx, db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("session ledger opened",
		slog.String("db_path", dbPath),
		slog.Int64("schema_version", version),
	)

	return &Store{db: db, logger: logger}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores a finished session.
func (s *Store) Record(ctx context.Context, r *supervisor.Report) error {
	var errText sql.NullString
	if r.Err != nil {
		errText = sql.NullString{String: r.Err.Error(), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, sqlInsertSession,
		r.ID,
		r.Start.UnixNano(),
		r.End.UnixNano(),
		r.RemotePath,
		r.LocalPath,
		r.Outcome.String(),
		errText,
	)
	if err != nil {
		return fmt.Errorf("ledger: recording session %s: %w", r.ID, err)
	}

	s.logger.Debug("session recorded",
		slog.String("session", r.ID),
		slog.String("outcome", r.Outcome.String()),
	)

	return nil
}

// Recent returns up to n sessions, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, sqlRecentSessions, n)
	if err != nil {
		return nil, fmt.Errorf("ledger: querying sessions: %w", err)
	}
	defer rows.Close()

	var out []Session

	for rows.Next() {
		var (
			sess           Session
			started, ended int64
			errText        sql.NullString
		)

		if err := rows.Scan(&sess.ID, &started, &ended, &sess.RemotePath, &sess.LocalPath,
			&sess.Outcome, &errText); err != nil {
			return nil, fmt.Errorf("ledger: scanning session: %w", err)
		}

		sess.StartedAt = time.Unix(0, started)
		sess.EndedAt = time.Unix(0, ended)
		sess.Error = errText.String

		out = append(out, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ledger: iterating sessions: %w", err)
	}

	return out, nil
}
