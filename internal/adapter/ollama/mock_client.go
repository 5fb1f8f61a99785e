package ollama

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/xiaot623/gogo/ollama-mcp/internal/domain"
)

// MockClient is an in-memory stand-in for the Ollama API. It keeps a small
// mutable model set so copy, create and delete behave plausibly.
type MockClient struct {
	mu     sync.Mutex
	models map[string]mockModel
}

type mockModel struct {
	size      int64
	family    string
	params    string
	modelfile string
	digest    string
	modified  time.Time
}

// Ensure MockClient implements OllamaClient interface.
var _ OllamaClient = (*MockClient)(nil)

// NewMockClient creates a mock client seeded with two models.
func NewMockClient() *MockClient {
	now := time.Now().UTC()
	m := &MockClient{models: make(map[string]mockModel)}
	m.models["llama3.2:latest"] = mockModel{
		size:      2019393189,
		family:    "llama",
		params:    "3.2B",
		modelfile: "FROM llama3.2\n",
		digest:    mockDigest("llama3.2:latest"),
		modified:  now,
	}
	m.models["nomic-embed-text:latest"] = mockModel{
		size:      274302450,
		family:    "nomic-bert",
		params:    "137M",
		modelfile: "FROM nomic-embed-text\n",
		digest:    mockDigest("nomic-embed-text:latest"),
		modified:  now,
	}
	return m
}

// ListModels returns the mock model set sorted by name.
func (m *MockClient) ListModels(ctx context.Context) (Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.models))
	for name := range m.models {
		names = append(names, name)
	}
	sort.Strings(names)

	models := make([]any, 0, len(names))
	for _, name := range names {
		mm := m.models[name]
		models = append(models, Object{
			"name":        name,
			"model":       name,
			"size":        float64(mm.size),
			"digest":      mm.digest,
			"modified_at": mm.modified.Format(time.RFC3339),
			"details": Object{
				"family":         mm.family,
				"parameter_size": mm.params,
			},
		})
	}
	return Object{"models": models}, nil
}

// ShowModel returns details of a mock model.
func (m *MockClient) ShowModel(ctx context.Context, model string) (Object, error) {
	mm, ok := m.lookup(model)
	if !ok {
		return nil, notFound(model)
	}
	return Object{
		"modelfile": mm.modelfile,
		"details": Object{
			"family":         mm.family,
			"parameter_size": mm.params,
		},
	}, nil
}

// DeleteModel removes a mock model.
func (m *MockClient) DeleteModel(ctx context.Context, model string) (Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := canonicalName(model)
	if _, ok := m.models[key]; !ok {
		return nil, notFound(model)
	}
	delete(m.models, key)
	return Object{}, nil
}

// CopyModel duplicates a mock model under a new name.
func (m *MockClient) CopyModel(ctx context.Context, source, destination string) (Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mm, ok := m.models[canonicalName(source)]
	if !ok {
		return nil, notFound(source)
	}
	mm.modified = time.Now().UTC()
	m.models[canonicalName(destination)] = mm
	return Object{}, nil
}

// PullModel simulates a download and registers the model.
func (m *MockClient) PullModel(ctx context.Context, req *PullRequest, fn StreamFunc) error {
	const total = 1 << 20
	steps := []Object{
		{"status": "pulling manifest"},
		{"status": "downloading", "digest": mockDigest(req.Model), "total": float64(total), "completed": float64(total / 2)},
		{"status": "downloading", "digest": mockDigest(req.Model), "total": float64(total), "completed": float64(total)},
		{"status": "verifying sha256 digest"},
		{"status": "success"},
	}
	if err := m.emit(ctx, steps, fn); err != nil {
		return err
	}

	m.mu.Lock()
	m.models[canonicalName(req.Model)] = mockModel{
		size:      total,
		family:    "mock",
		params:    "1M",
		modelfile: "FROM " + req.Model + "\n",
		digest:    mockDigest(req.Model),
		modified:  time.Now().UTC(),
	}
	m.mu.Unlock()
	return nil
}

// CreateModel registers a model built from a Modelfile.
func (m *MockClient) CreateModel(ctx context.Context, req *CreateRequest, fn StreamFunc) error {
	m.mu.Lock()
	m.models[canonicalName(req.Model)] = mockModel{
		size:      1 << 20,
		family:    "mock",
		params:    "1M",
		modelfile: req.Modelfile,
		digest:    mockDigest(req.Model),
		modified:  time.Now().UTC(),
	}
	m.mu.Unlock()

	if !req.Stream {
		return m.emit(ctx, []Object{{"status": "success"}}, fn)
	}
	return m.emit(ctx, []Object{
		{"status": "reading model metadata"},
		{"status": "writing manifest"},
		{"status": "success"},
	}, fn)
}

// Generate echoes the prompt back.
func (m *MockClient) Generate(ctx context.Context, req *GenerateRequest, fn StreamFunc) error {
	if _, ok := m.lookup(req.Model); !ok {
		return notFound(req.Model)
	}
	text := fmt.Sprintf("[MOCK] Received your prompt: %q. This is a mock response.", truncate(req.Prompt, 100))
	if !req.Stream {
		return m.emit(ctx, []Object{generateChunk(req.Model, text, true)}, fn)
	}

	pieces := splitIntoChunks(text, 10)
	chunks := make([]Object, 0, len(pieces)+1)
	for _, p := range pieces {
		chunks = append(chunks, generateChunk(req.Model, p, false))
	}
	chunks = append(chunks, generateChunk(req.Model, "", true))
	return m.emit(ctx, chunks, fn)
}

// Chat answers the last user message.
func (m *MockClient) Chat(ctx context.Context, req *ChatRequest, fn StreamFunc) error {
	if _, ok := m.lookup(req.Model); !ok {
		return notFound(req.Model)
	}

	var last string
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == domain.RoleUser {
			last = req.Messages[i].Content
			break
		}
	}
	text := "[MOCK] This is a mock chat response."
	if last != "" {
		text = fmt.Sprintf("[MOCK] Received your message: %q. This is a mock response.", truncate(last, 100))
	}

	if !req.Stream {
		return m.emit(ctx, []Object{chatChunk(req.Model, text, true)}, fn)
	}

	pieces := splitIntoChunks(text, 10)
	chunks := make([]Object, 0, len(pieces)+1)
	for _, p := range pieces {
		chunks = append(chunks, chatChunk(req.Model, p, false))
	}
	chunks = append(chunks, chatChunk(req.Model, "", true))
	return m.emit(ctx, chunks, fn)
}

// Embeddings derives a small deterministic vector from the prompt.
func (m *MockClient) Embeddings(ctx context.Context, req *EmbeddingsRequest) (Object, error) {
	if _, ok := m.lookup(req.Model); !ok {
		return nil, notFound(req.Model)
	}
	sum := sha256.Sum256([]byte(req.Prompt))
	vec := make([]any, 8)
	for i := range vec {
		vec[i] = float64(sum[i])/127.5 - 1
	}
	return Object{"embedding": vec}, nil
}

// ListProcesses reports no loaded models.
func (m *MockClient) ListProcesses(ctx context.Context) (Object, error) {
	return Object{"models": []any{}}, nil
}

// CheckBlob reports whether digest belongs to a known mock model.
func (m *MockClient) CheckBlob(ctx context.Context, digest string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, mm := range m.models {
		if mm.digest == digest {
			return true
		}
	}
	return false
}

// GetVersion returns a fixed mock version.
func (m *MockClient) GetVersion(ctx context.Context) (Object, error) {
	return Object{"version": "0.0.0-mock"}, nil
}

// Close is a no-op.
func (m *MockClient) Close() error {
	return nil
}

func (m *MockClient) lookup(model string) (mockModel, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mm, ok := m.models[canonicalName(model)]
	return mm, ok
}

func (m *MockClient) emit(ctx context.Context, chunks []Object, fn StreamFunc) error {
	for _, chunk := range chunks {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := fn(chunk); err != nil {
			if errors.Is(err, ErrStopStream) {
				return nil
			}
			return err
		}
	}
	return nil
}

func generateChunk(model, text string, done bool) Object {
	return Object{
		"model":      model,
		"created_at": time.Now().UTC().Format(time.RFC3339Nano),
		"response":   text,
		"done":       done,
	}
}

func chatChunk(model, text string, done bool) Object {
	return Object{
		"model":      model,
		"created_at": time.Now().UTC().Format(time.RFC3339Nano),
		"message":    Object{"role": domain.RoleAssistant, "content": text},
		"done":       done,
	}
}

func notFound(model string) error {
	body := fmt.Sprintf(`{"error":"model '%s' not found"}`, model)
	return domain.NewUpstreamError(404, body, nil)
}

// canonicalName appends the default tag when none is given.
func canonicalName(model string) string {
	model = strings.TrimSpace(model)
	if !strings.Contains(model, ":") {
		return model + ":latest"
	}
	return model
}

func mockDigest(name string) string {
	sum := sha256.Sum256([]byte(name))
	return "sha256:" + hex.EncodeToString(sum[:])
}

// splitIntoChunks splits a string into chunks of approximately the given size.
func splitIntoChunks(s string, chunkSize int) []string {
	if len(s) == 0 {
		return []string{""}
	}

	var chunks []string
	for i := 0; i < len(s); i += chunkSize {
		end := i + chunkSize
		if end > len(s) {
			end = len(s)
		}
		chunks = append(chunks, s[i:end])
	}
	return chunks
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
