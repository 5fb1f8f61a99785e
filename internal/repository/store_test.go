package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/ollama-mcp/internal/domain"
)

type clock struct {
	t time.Time
}

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestFileStore(t *testing.T, ttl time.Duration) (*FileStore, *clock) {
	t.Helper()
	c := &clock{t: time.Unix(1700000000, 0)}
	s := NewFileStore(filepath.Join(t.TempDir(), "nested", "sessions"), ttl)
	s.now = c.now
	return s, c
}

func newTestSQLiteStore(t *testing.T, ttl time.Duration) (*SQLiteStore, *clock) {
	t.Helper()
	c := &clock{t: time.Unix(1700000000, 0)}
	s, err := NewSQLiteStore(":memory:", ttl)
	if err != nil {
		t.Fatalf("failed to create sqlite store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	s.now = c.now
	return s, c
}

type backend struct {
	name  string
	store SessionStore
	clock *clock
}

func backends(t *testing.T, ttl time.Duration) []backend {
	fs, fc := newTestFileStore(t, ttl)
	ss, sc := newTestSQLiteStore(t, ttl)
	return []backend{
		{name: "file", store: fs, clock: fc},
		{name: "sqlite", store: ss, clock: sc},
	}
}

func TestSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	for _, b := range backends(t, time.Hour) {
		t.Run(b.name, func(t *testing.T) {
			msgs := []domain.Message{
				{Role: "user", Content: "hi <there> & ü"},
				{Role: "assistant", Content: "hello"},
			}
			require.NoError(t, b.store.SaveContext(ctx, "s1", msgs))

			got, found, err := b.store.LoadContext(ctx, "s1")
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, msgs, got)
		})
	}
}

func TestSessionAbsent(t *testing.T) {
	ctx := context.Background()
	for _, b := range backends(t, time.Hour) {
		t.Run(b.name, func(t *testing.T) {
			got, found, err := b.store.LoadContext(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, found)
			assert.Nil(t, got)
		})
	}
}

func TestSessionExpiry(t *testing.T) {
	ctx := context.Background()
	for _, b := range backends(t, 10*time.Second) {
		t.Run(b.name, func(t *testing.T) {
			require.NoError(t, b.store.SaveContext(ctx, "s1", []domain.Message{{Role: "user", Content: "x"}}))

			b.clock.advance(10 * time.Second)
			_, found, err := b.store.LoadContext(ctx, "s1")
			require.NoError(t, err)
			assert.True(t, found, "ttl boundary is exclusive")

			b.clock.advance(time.Second)
			_, found, err = b.store.LoadContext(ctx, "s1")
			require.NoError(t, err)
			assert.False(t, found)

			// expired data stays gone even when the clock moves back
			b.clock.advance(-time.Minute)
			_, found, err = b.store.LoadContext(ctx, "s1")
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}

func TestSessionClearIsIdempotent(t *testing.T) {
	ctx := context.Background()
	for _, b := range backends(t, time.Hour) {
		t.Run(b.name, func(t *testing.T) {
			require.NoError(t, b.store.SaveContext(ctx, "s1", []domain.Message{{Role: "user", Content: "x"}}))
			require.NoError(t, b.store.ClearContext(ctx, "s1"))
			require.NoError(t, b.store.ClearContext(ctx, "s1"))

			_, found, err := b.store.LoadContext(ctx, "s1")
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}

func TestSessionUpdateAppends(t *testing.T) {
	ctx := context.Background()
	for _, b := range backends(t, time.Hour) {
		t.Run(b.name, func(t *testing.T) {
			require.NoError(t, b.store.UpdateContext(ctx, "s1", domain.Message{Role: "user", Content: "one"}))
			require.NoError(t, b.store.UpdateContext(ctx, "s1", domain.Message{Role: "assistant", Content: "two"}))

			got, found, err := b.store.LoadContext(ctx, "s1")
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, []domain.Message{
				{Role: "user", Content: "one"},
				{Role: "assistant", Content: "two"},
			}, got)
		})
	}
}

func TestSessionSaveRefreshesTTL(t *testing.T) {
	ctx := context.Background()
	for _, b := range backends(t, 10*time.Second) {
		t.Run(b.name, func(t *testing.T) {
			require.NoError(t, b.store.SaveContext(ctx, "s1", nil))
			b.clock.advance(8 * time.Second)
			require.NoError(t, b.store.SaveContext(ctx, "s1", []domain.Message{{Role: "user", Content: "x"}}))
			b.clock.advance(8 * time.Second)

			got, found, err := b.store.LoadContext(ctx, "s1")
			require.NoError(t, err)
			assert.True(t, found)
			assert.Len(t, got, 1)
		})
	}
}

func TestSessionRejectsEscapingIDs(t *testing.T) {
	ctx := context.Background()
	for _, b := range backends(t, time.Hour) {
		t.Run(b.name, func(t *testing.T) {
			for _, id := range []string{"", "..", ".", "a/b", `a\b`, "../etc"} {
				err := b.store.SaveContext(ctx, id, nil)
				assert.True(t, domain.IsKind(err, domain.KindValidation), "id %q", id)
			}
		})
	}
}

func TestFileStoreLayout(t *testing.T) {
	ctx := context.Background()
	s, c := newTestFileStore(t, time.Hour)

	_, err := os.Stat(s.Root())
	assert.True(t, os.IsNotExist(err), "root is created lazily")

	require.NoError(t, s.SaveContext(ctx, "abc", []domain.Message{{Role: "user", Content: "hi"}}))
	created := c.t
	c.advance(5 * time.Second)
	require.NoError(t, s.SaveContext(ctx, "abc", []domain.Message{{Role: "user", Content: "again"}}))

	data, err := os.ReadFile(filepath.Join(s.Root(), "abc.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"session_id\": \"abc\"")

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "abc", raw["session_id"])
	assert.InDelta(t, float64(created.Unix()), raw["created_at"], 0.001)
	assert.InDelta(t, float64(c.t.Unix()), raw["updated_at"], 0.001)

	entries, err := os.ReadDir(s.Root())
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestFileStoreExpiredFileIsDeleted(t *testing.T) {
	ctx := context.Background()
	s, c := newTestFileStore(t, time.Second)

	require.NoError(t, s.SaveContext(ctx, "old", nil))
	c.advance(2 * time.Second)

	_, found, err := s.LoadContext(ctx, "old")
	require.NoError(t, err)
	assert.False(t, found)

	_, err = os.Stat(filepath.Join(s.Root(), "old.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestFileStoreCorruptFile(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestFileStore(t, time.Hour)
	require.NoError(t, os.MkdirAll(s.Root(), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(s.Root(), "bad.json"), []byte("{"), 0o644))

	_, _, err := s.LoadContext(ctx, "bad")
	assert.True(t, domain.IsKind(err, domain.KindSession))
}

func TestFileStoreReadsExistingDirectory(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestFileStore(t, time.Hour)
	s.now = time.Now
	require.NoError(t, os.MkdirAll(s.Root(), 0o755))

	now := float64(time.Now().Unix())
	doc := map[string]any{
		"session_id": "legacy",
		"messages":   []map[string]string{{"role": "user", "content": "from disk"}},
		"created_at": now - 30,
		"updated_at": now - 10.5,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(s.Root(), "legacy.json"), data, 0o644))

	got, found, err := s.LoadContext(ctx, "legacy")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []domain.Message{{Role: "user", Content: "from disk"}}, got)
}

func TestOpen(t *testing.T) {
	root := t.TempDir()

	fileStore, err := Open(BackendFile, root, "", time.Hour)
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, fileStore)

	sqliteStore, err := Open(BackendSQLite, filepath.Join(root, "db"), "", time.Hour)
	require.NoError(t, err)
	defer sqliteStore.Close()
	assert.IsType(t, &SQLiteStore{}, sqliteStore)
	_, err = os.Stat(filepath.Join(root, "db", "sessions.db"))
	assert.NoError(t, err)

	_, err = Open("redis", root, "", time.Hour)
	assert.Error(t, err)
}
