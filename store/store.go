// Package store persists sessions to SQLite so conversations survive process
// restarts. It keeps three tables: sessions, their exchanges, and the
// variable bindings snapshotted after each turn.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/yooz-lang/go-yooz/chatlog"
)

// SessionStore persists sessions in a SQLite database.
type SessionStore struct {
	db     *sql.DB
	dbPath string
}

// SessionInfo summarizes one stored session.
type SessionInfo struct {
	ID        string
	StartedAt time.Time
	EndedAt   time.Time
	Turns     int
	Active    bool
}

// Open initializes the SQLite database at the given path, creating the
// schema if needed.
func Open(path string) (*SessionStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &SessionStore{db: db, dbPath: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// initialize creates the required tables.
func (s *SessionStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		started_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		ended_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS exchanges (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		turn INTEGER NOT NULL,
		input TEXT NOT NULL,
		response TEXT NOT NULL,
		source TEXT NOT NULL,
		matched INTEGER NOT NULL,
		created_at DATETIME NOT NULL,
		UNIQUE(session_id, turn)
	);
	CREATE INDEX IF NOT EXISTS idx_exchanges_session ON exchanges(session_id);

	CREATE TABLE IF NOT EXISTS variables (
		session_id TEXT NOT NULL,
		name TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (session_id, name)
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// CreateSession records a new session.
func (s *SessionStore) CreateSession(id string) error {
	_, err := s.db.Exec(`INSERT INTO sessions (id) VALUES (?)`, id)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// EndSession marks a session as finished.
func (s *SessionStore) EndSession(id string) error {
	_, err := s.db.Exec(`UPDATE sessions SET ended_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	return nil
}

// AppendExchange records one turn of a session.
func (s *SessionStore) AppendExchange(ex chatlog.Exchange) error {
	_, err := s.db.Exec(
		`INSERT INTO exchanges (session_id, turn, input, response, source, matched, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ex.SessionID, ex.Turn, ex.Input, ex.Response, ex.Source, ex.Matched, ex.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to append exchange: %w", err)
	}
	return nil
}

// Exchanges loads a session's exchanges in turn order.
func (s *SessionStore) Exchanges(sessionID string) ([]chatlog.Exchange, error) {
	rows, err := s.db.Query(
		`SELECT session_id, turn, input, response, source, matched, created_at
		 FROM exchanges WHERE session_id = ? ORDER BY turn`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query exchanges: %w", err)
	}
	defer rows.Close()

	var out []chatlog.Exchange
	for rows.Next() {
		var ex chatlog.Exchange
		if err := rows.Scan(&ex.SessionID, &ex.Turn, &ex.Input, &ex.Response, &ex.Source, &ex.Matched, &ex.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan exchange: %w", err)
		}
		out = append(out, ex)
	}
	return out, rows.Err()
}

// SaveVariables snapshots a session's variable bindings.
func (s *SessionStore) SaveVariables(sessionID string, vars map[string]string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM variables WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to clear variables: %w", err)
	}
	for name, value := range vars {
		if _, err := tx.Exec(
			`INSERT INTO variables (session_id, name, value) VALUES (?, ?, ?)`,
			sessionID, name, value,
		); err != nil {
			return fmt.Errorf("failed to save variable %s: %w", name, err)
		}
	}
	return tx.Commit()
}

// LoadVariables restores a session's variable bindings.
func (s *SessionStore) LoadVariables(sessionID string) (map[string]string, error) {
	rows, err := s.db.Query(`SELECT name, value FROM variables WHERE session_id = ?`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query variables: %w", err)
	}
	defer rows.Close()

	vars := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("failed to scan variable: %w", err)
		}
		vars[name] = value
	}
	return vars, rows.Err()
}

// ListSessions returns stored sessions, newest first.
func (s *SessionStore) ListSessions() ([]SessionInfo, error) {
	rows, err := s.db.Query(`
		SELECT s.id, s.started_at, s.ended_at, COUNT(e.id)
		FROM sessions s
		LEFT JOIN exchanges e ON e.session_id = s.id
		GROUP BY s.id
		ORDER BY s.started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionInfo
	for rows.Next() {
		var info SessionInfo
		var ended sql.NullTime
		if err := rows.Scan(&info.ID, &info.StartedAt, &ended, &info.Turns); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		if ended.Valid {
			info.EndedAt = ended.Time
		} else {
			info.Active = true
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *SessionStore) Close() error {
	return s.db.Close()
}
