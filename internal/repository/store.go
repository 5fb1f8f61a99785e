// Package store persists per-session conversation context.
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xiaot623/gogo/ollama-mcp/internal/domain"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// SessionStore defines the interface for session persistence.
type SessionStore interface {
	// SaveContext overwrites the messages of a session and refreshes its
	// update time.
	SaveContext(ctx context.Context, sessionID string, messages []domain.Message) error

	// LoadContext returns the messages of a live session. An absent or
	// expired session is reported with found == false; expired sessions are
	// deleted on the way.
	LoadContext(ctx context.Context, sessionID string) (messages []domain.Message, found bool, err error)

	// ClearContext deletes a session. Clearing an absent session succeeds.
	ClearContext(ctx context.Context, sessionID string) error

	// UpdateContext appends one message. Concurrent updates of the same
	// session are last-writer-wins.
	UpdateContext(ctx context.Context, sessionID string, message domain.Message) error

	Close() error
}

// Open creates the store for backend. root is the session directory of the
// file backend; dsn is the sqlite data source and defaults to a database
// file inside root.
func Open(backend, root, dsn string, ttl time.Duration) (SessionStore, error) {
	switch backend {
	case "", BackendFile:
		return NewFileStore(root, ttl), nil
	case BackendSQLite:
		if dsn == "" {
			dsn = filepath.Join(root, "sessions.db")
		}
		if !isMemoryDSN(dsn) {
			if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
				return nil, fmt.Errorf("failed to create session directory: %w", err)
			}
		}
		return NewSQLiteStore(dsn, ttl)
	default:
		return nil, fmt.Errorf("unknown session backend: %s", backend)
	}
}

// ValidateSessionID rejects ids that are empty or could escape the storage
// root.
func ValidateSessionID(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return domain.NewValidationError("session_id is required")
	}
	if sessionID == "." || sessionID == ".." || strings.ContainsAny(sessionID, `/\`) || strings.ContainsRune(sessionID, 0) {
		return domain.NewValidationError("invalid session_id: %q", sessionID)
	}
	return nil
}

func isMemoryDSN(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
}
