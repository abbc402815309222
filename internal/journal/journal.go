// Package journal persists replayed sessions in SQLite.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/suykerbuyk/adaptive-ui/internal/behavior"
	"github.com/suykerbuyk/adaptive-ui/internal/journal/migrations"
	"github.com/suykerbuyk/adaptive-ui/internal/mode"
)

var (
	// ErrNotFound is returned by Get for unknown session ids.
	ErrNotFound = errors.New("session not found")
	// ErrDuplicate is returned by Record when the recording is already journaled.
	ErrDuplicate = errors.New("recording already journaled")
)

// Entry is one adaptation in a session's timeline.
type Entry struct {
	Offset time.Duration // since the recording started
	Action string
}

// MarshalJSON stores the offset in milliseconds.
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Offset int64  `json:"offset_ms"`
		Action string `json:"action"`
	}{e.Offset.Milliseconds(), e.Action})
}

// UnmarshalJSON reads the millisecond offset written by MarshalJSON.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Offset int64  `json:"offset_ms"`
		Action string `json:"action"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.Offset = time.Duration(raw.Offset) * time.Millisecond
	e.Action = raw.Action
	return nil
}

// Session is one replayed recording and the adaptations it produced.
type Session struct {
	ID          string
	RecordingID string
	Source      string
	StartedAt   time.Time
	EndedAt     time.Time
	Snapshot    behavior.Snapshot
	Mode        mode.Mode
	Timeline    []Entry
}

// Store is a SQLite session journal.
type Store struct {
	db *sql.DB
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

// Open opens (creating if needed) the journal at path and applies migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("journal path is required")
	}
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}

	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(context.Background(), db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts a session, assigning an id when empty. Returns the id.
func (s *Store) Record(ctx context.Context, sess Session) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s == nil || s.db == nil {
		return "", fmt.Errorf("journal is not open")
	}
	if strings.TrimSpace(sess.RecordingID) == "" {
		return "", fmt.Errorf("recording id is required")
	}
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	if sess.Timeline == nil {
		sess.Timeline = []Entry{}
	}

	snapshot, err := json.Marshal(sess.Snapshot)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	m, err := json.Marshal(sess.Mode)
	if err != nil {
		return "", fmt.Errorf("encode mode: %w", err)
	}
	timeline, err := json.Marshal(sess.Timeline)
	if err != nil {
		return "", fmt.Errorf("encode timeline: %w", err)
	}

	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO sessions (
		   id, recording_id, source, started_at, ended_at, snapshot, mode, timeline
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID,
		sess.RecordingID,
		sess.Source,
		toMillis(sess.StartedAt),
		toMillis(sess.EndedAt),
		string(snapshot),
		string(m),
		string(timeline),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("%w: %s", ErrDuplicate, sess.RecordingID)
		}
		return "", fmt.Errorf("record session: %w", err)
	}
	return sess.ID, nil
}

// Get returns one session by id.
func (s *Store) Get(ctx context.Context, id string) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	if s == nil || s.db == nil {
		return Session{}, fmt.Errorf("journal is not open")
	}

	row := s.db.QueryRowContext(ctx, selectSessions+` WHERE id = ?`, strings.TrimSpace(id))
	sess, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrNotFound
		}
		return Session{}, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}

// HasRecording reports whether a recording has already been journaled.
func (s *Store) HasRecording(ctx context.Context, recordingID string) (bool, error) {
	if s == nil || s.db == nil {
		return false, fmt.Errorf("journal is not open")
	}
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sessions WHERE recording_id = ?`, recordingID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check recording: %w", err)
	}
	return count > 0, nil
}

// List returns the most recently ended sessions first. limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("journal is not open")
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx,
		selectSessions+` ORDER BY ended_at DESC, id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("list sessions: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

const selectSessions = `SELECT id, recording_id, source, started_at, ended_at, snapshot, mode, timeline
	   FROM sessions`

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (Session, error) {
	var (
		sess                  Session
		startedAt, endedAt    int64
		snapshot, m, timeline string
	)
	if err := row.Scan(
		&sess.ID,
		&sess.RecordingID,
		&sess.Source,
		&startedAt,
		&endedAt,
		&snapshot,
		&m,
		&timeline,
	); err != nil {
		return Session{}, err
	}
	sess.StartedAt = fromMillis(startedAt)
	sess.EndedAt = fromMillis(endedAt)
	if err := json.Unmarshal([]byte(snapshot), &sess.Snapshot); err != nil {
		return Session{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if err := json.Unmarshal([]byte(m), &sess.Mode); err != nil {
		return Session{}, fmt.Errorf("decode mode: %w", err)
	}
	if err := json.Unmarshal([]byte(timeline), &sess.Timeline); err != nil {
		return Session{}, fmt.Errorf("decode timeline: %w", err)
	}
	return sess, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
