package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/xiaot623/gogo/ollama-mcp/internal/domain"
)

// FileStore keeps one indented JSON document per session under root.
type FileStore struct {
	root string
	ttl  time.Duration
	now  func() time.Time
}

// Ensure FileStore implements SessionStore interface.
var _ SessionStore = (*FileStore)(nil)

// NewFileStore creates a file-backed session store. root is created on the
// first write.
func NewFileStore(root string, ttl time.Duration) *FileStore {
	return &FileStore{root: root, ttl: ttl, now: time.Now}
}

// Root returns the session directory.
func (s *FileStore) Root() string {
	return s.root
}

func (s *FileStore) path(sessionID string) string {
	return filepath.Join(s.root, sessionID+".json")
}

// SaveContext writes the session file, keeping the creation time of a live
// existing record.
func (s *FileStore) SaveContext(ctx context.Context, sessionID string, messages []domain.Message) error {
	if err := ValidateSessionID(sessionID); err != nil {
		return err
	}

	now := s.now()
	session := domain.Session{
		SessionID: sessionID,
		Messages:  messages,
		CreatedAt: domain.UnixTime{Time: now},
		UpdatedAt: domain.UnixTime{Time: now},
	}
	if session.Messages == nil {
		session.Messages = []domain.Message{}
	}
	if existing, err := s.read(sessionID); err == nil && existing != nil && !existing.Expired(now, s.ttl) {
		session.CreatedAt = existing.CreatedAt
	}

	return s.write(&session)
}

// LoadContext reads the session file. Expired files are removed.
func (s *FileStore) LoadContext(ctx context.Context, sessionID string) ([]domain.Message, bool, error) {
	if err := ValidateSessionID(sessionID); err != nil {
		return nil, false, err
	}

	session, err := s.read(sessionID)
	if err != nil {
		return nil, false, domain.NewSessionError("load", err)
	}
	if session == nil {
		return nil, false, nil
	}

	if session.Expired(s.now(), s.ttl) {
		if err := s.remove(sessionID); err != nil {
			return nil, false, domain.NewSessionError("expire", err)
		}
		return nil, false, nil
	}

	if session.Messages == nil {
		session.Messages = []domain.Message{}
	}
	return session.Messages, true, nil
}

// ClearContext deletes the session file if present.
func (s *FileStore) ClearContext(ctx context.Context, sessionID string) error {
	if err := ValidateSessionID(sessionID); err != nil {
		return err
	}
	if err := s.remove(sessionID); err != nil {
		return domain.NewSessionError("clear", err)
	}
	return nil
}

// UpdateContext appends message to the stored messages.
func (s *FileStore) UpdateContext(ctx context.Context, sessionID string, message domain.Message) error {
	messages, _, err := s.LoadContext(ctx, sessionID)
	if err != nil {
		return err
	}
	return s.SaveContext(ctx, sessionID, append(messages, message))
}

// Close is a no-op for the file backend.
func (s *FileStore) Close() error {
	return nil
}

// read returns nil, nil when the file does not exist.
func (s *FileStore) read(sessionID string) (*domain.Session, error) {
	data, err := os.ReadFile(s.path(sessionID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// write replaces the session file through a temp file and rename.
func (s *FileStore) write(session *domain.Session) error {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return domain.NewSessionError("save", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(session); err != nil {
		return domain.NewSessionError("save", err)
	}

	tmp, err := os.CreateTemp(s.root, "."+session.SessionID+".*.tmp")
	if err != nil {
		return domain.NewSessionError("save", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return domain.NewSessionError("save", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return domain.NewSessionError("save", err)
	}
	if err := os.Rename(tmpName, s.path(session.SessionID)); err != nil {
		os.Remove(tmpName)
		return domain.NewSessionError("save", err)
	}
	return nil
}

func (s *FileStore) remove(sessionID string) error {
	if err := os.Remove(s.path(sessionID)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
