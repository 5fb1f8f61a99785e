package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/xiaot623/gogo/ollama-mcp/internal/domain"
)

// SQLiteStore implements SessionStore using SQLite. Each session is one row
// holding its messages as a JSON array.
type SQLiteStore struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// Ensure SQLiteStore implements SessionStore interface.
var _ SessionStore = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string, ttl time.Duration) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	if isMemoryDSN(dsn) {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	store := &SQLiteStore{db: db, ttl: ttl, now: time.Now}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			messages TEXT NOT NULL,
			created_at REAL NOT NULL,
			updated_at REAL NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_at)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// SaveContext upserts the session row.
func (s *SQLiteStore) SaveContext(ctx context.Context, sessionID string, messages []domain.Message) error {
	if err := ValidateSessionID(sessionID); err != nil {
		return err
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	data, err := json.Marshal(messages)
	if err != nil {
		return domain.NewSessionError("save", err)
	}

	now := s.now()
	createdAt := toUnix(now)
	existing, err := s.get(ctx, sessionID)
	if err != nil {
		return domain.NewSessionError("save", err)
	}
	if existing != nil && !existing.Expired(now, s.ttl) {
		createdAt = toUnix(existing.CreatedAt.Time)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (session_id, messages, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			messages = excluded.messages,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at
	`, sessionID, string(data), createdAt, toUnix(now))
	if err != nil {
		return domain.NewSessionError("save", err)
	}
	return nil
}

// LoadContext reads the session row, deleting it when expired.
func (s *SQLiteStore) LoadContext(ctx context.Context, sessionID string) ([]domain.Message, bool, error) {
	if err := ValidateSessionID(sessionID); err != nil {
		return nil, false, err
	}

	session, err := s.get(ctx, sessionID)
	if err != nil {
		return nil, false, domain.NewSessionError("load", err)
	}
	if session == nil {
		return nil, false, nil
	}

	if session.Expired(s.now(), s.ttl) {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = ?`, sessionID); err != nil {
			return nil, false, domain.NewSessionError("expire", err)
		}
		return nil, false, nil
	}
	return session.Messages, true, nil
}

// ClearContext deletes the session row.
func (s *SQLiteStore) ClearContext(ctx context.Context, sessionID string) error {
	if err := ValidateSessionID(sessionID); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = ?`, sessionID); err != nil {
		return domain.NewSessionError("clear", err)
	}
	return nil
}

// UpdateContext appends message to the stored messages.
func (s *SQLiteStore) UpdateContext(ctx context.Context, sessionID string, message domain.Message) error {
	messages, _, err := s.LoadContext(ctx, sessionID)
	if err != nil {
		return err
	}
	return s.SaveContext(ctx, sessionID, append(messages, message))
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) get(ctx context.Context, sessionID string) (*domain.Session, error) {
	var (
		raw                  string
		createdAt, updatedAt float64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT messages, created_at, updated_at FROM sessions WHERE session_id = ?
	`, sessionID).Scan(&raw, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	session := &domain.Session{
		SessionID: sessionID,
		CreatedAt: domain.UnixTime{Time: fromUnix(createdAt)},
		UpdatedAt: domain.UnixTime{Time: fromUnix(updatedAt)},
	}
	if err := json.Unmarshal([]byte(raw), &session.Messages); err != nil {
		return nil, fmt.Errorf("failed to unmarshal messages: %w", err)
	}
	if session.Messages == nil {
		session.Messages = []domain.Message{}
	}
	return session, nil
}

func toUnix(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

func fromUnix(secs float64) time.Time {
	whole, frac := math.Modf(secs)
	return time.Unix(int64(whole), int64(frac*float64(time.Second)))
}
