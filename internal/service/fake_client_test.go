package service

import (
	"context"
	"errors"
	"sync"

	"github.com/xiaot623/gogo/ollama-mcp/internal/adapter/ollama"
)

var errNotScripted = errors.New("not scripted")

// fakeClient is an OllamaClient whose behavior is set per test.
type fakeClient struct {
	mu    sync.Mutex
	calls map[string]int

	listModels func(ctx context.Context) (ollama.Object, error)
	showModel  func(ctx context.Context, model string) (ollama.Object, error)
	pull       func(ctx context.Context, req *ollama.PullRequest, fn ollama.StreamFunc) error
	create     func(ctx context.Context, req *ollama.CreateRequest, fn ollama.StreamFunc) error
	generate   func(ctx context.Context, req *ollama.GenerateRequest, fn ollama.StreamFunc) error
	chat       func(ctx context.Context, req *ollama.ChatRequest, fn ollama.StreamFunc) error
	embeddings func(ctx context.Context, req *ollama.EmbeddingsRequest) (ollama.Object, error)
	checkBlob  func(ctx context.Context, digest string) bool
}

var _ ollama.OllamaClient = (*fakeClient)(nil)

func newFakeClient() *fakeClient {
	return &fakeClient{calls: make(map[string]int)}
}

func (f *fakeClient) record(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
}

func (f *fakeClient) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeClient) ListModels(ctx context.Context) (ollama.Object, error) {
	f.record("list")
	if f.listModels == nil {
		return nil, errNotScripted
	}
	return f.listModels(ctx)
}

func (f *fakeClient) ShowModel(ctx context.Context, model string) (ollama.Object, error) {
	f.record("show")
	if f.showModel == nil {
		return nil, errNotScripted
	}
	return f.showModel(ctx, model)
}

func (f *fakeClient) DeleteModel(ctx context.Context, model string) (ollama.Object, error) {
	f.record("delete")
	return ollama.Object{}, nil
}

func (f *fakeClient) CopyModel(ctx context.Context, source, destination string) (ollama.Object, error) {
	f.record("copy")
	return ollama.Object{}, nil
}

func (f *fakeClient) PullModel(ctx context.Context, req *ollama.PullRequest, fn ollama.StreamFunc) error {
	f.record("pull")
	if f.pull == nil {
		return errNotScripted
	}
	return f.pull(ctx, req, fn)
}

func (f *fakeClient) CreateModel(ctx context.Context, req *ollama.CreateRequest, fn ollama.StreamFunc) error {
	f.record("create")
	if f.create == nil {
		return errNotScripted
	}
	return f.create(ctx, req, fn)
}

func (f *fakeClient) Generate(ctx context.Context, req *ollama.GenerateRequest, fn ollama.StreamFunc) error {
	f.record("generate")
	if f.generate == nil {
		return errNotScripted
	}
	return f.generate(ctx, req, fn)
}

func (f *fakeClient) Chat(ctx context.Context, req *ollama.ChatRequest, fn ollama.StreamFunc) error {
	f.record("chat")
	if f.chat == nil {
		return errNotScripted
	}
	return f.chat(ctx, req, fn)
}

func (f *fakeClient) Embeddings(ctx context.Context, req *ollama.EmbeddingsRequest) (ollama.Object, error) {
	f.record("embeddings")
	if f.embeddings == nil {
		return nil, errNotScripted
	}
	return f.embeddings(ctx, req)
}

func (f *fakeClient) ListProcesses(ctx context.Context) (ollama.Object, error) {
	f.record("ps")
	return ollama.Object{"models": []any{}}, nil
}

func (f *fakeClient) CheckBlob(ctx context.Context, digest string) bool {
	f.record("blob")
	if f.checkBlob == nil {
		return false
	}
	return f.checkBlob(ctx, digest)
}

func (f *fakeClient) GetVersion(ctx context.Context) (ollama.Object, error) {
	f.record("version")
	return ollama.Object{"version": "0.5.1"}, nil
}

func (f *fakeClient) Close() error {
	return nil
}

// emit feeds chunks to fn the way the real client does and reports how many
// were consumed.
func emit(fn ollama.StreamFunc, chunks ...ollama.Object) (int, error) {
	for i, c := range chunks {
		if err := fn(c); err != nil {
			if errors.Is(err, ollama.ErrStopStream) {
				return i + 1, nil
			}
			return i + 1, err
		}
	}
	return len(chunks), nil
}
