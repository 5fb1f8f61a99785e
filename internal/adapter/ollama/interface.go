// Package ollama provides the client for the Ollama REST API.
package ollama

import "context"

// OllamaClient defines the upstream operations used by the tool dispatcher.
type OllamaClient interface {
	ListModels(ctx context.Context) (Object, error)
	ShowModel(ctx context.Context, model string) (Object, error)
	DeleteModel(ctx context.Context, model string) (Object, error)
	CopyModel(ctx context.Context, source, destination string) (Object, error)

	// PullModel always streams.
	PullModel(ctx context.Context, req *PullRequest, fn StreamFunc) error

	// CreateModel, Generate and Chat stream when req.Stream is set and call
	// fn exactly once otherwise.
	CreateModel(ctx context.Context, req *CreateRequest, fn StreamFunc) error
	Generate(ctx context.Context, req *GenerateRequest, fn StreamFunc) error
	Chat(ctx context.Context, req *ChatRequest, fn StreamFunc) error

	Embeddings(ctx context.Context, req *EmbeddingsRequest) (Object, error)
	ListProcesses(ctx context.Context) (Object, error)

	// CheckBlob never fails; any fault is reported as an absent blob.
	CheckBlob(ctx context.Context, digest string) bool

	GetVersion(ctx context.Context) (Object, error)

	// Close releases pooled connections. It is safe to call repeatedly.
	Close() error
}

// Ensure Client implements OllamaClient interface.
var _ OllamaClient = (*Client)(nil)
