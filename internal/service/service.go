// Package service implements the tool dispatcher: it routes tool calls to
// the upstream client and the session store and normalizes their results.
package service

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/labstack/gommon/log"

	"github.com/xiaot623/gogo/ollama-mcp/internal/adapter/ollama"
	"github.com/xiaot623/gogo/ollama-mcp/internal/domain"
	"github.com/xiaot623/gogo/ollama-mcp/internal/logging"
	"github.com/xiaot623/gogo/ollama-mcp/internal/metrics"
	"github.com/xiaot623/gogo/ollama-mcp/internal/repository"
	"github.com/xiaot623/gogo/ollama-mcp/internal/tools"
)

// Server identity reported on discovery and by the root endpoint.
const (
	Name    = "Ollama MCP Server"
	Version = "0.1.0"
)

// PolicyChecker decides whether a tool call may run.
type PolicyChecker interface {
	Allowed(ctx context.Context, toolName string, args map[string]any) (bool, string, error)
}

// Service dispatches tool calls to the registered handlers.
type Service struct {
	client   ollama.OllamaClient
	sessions store.SessionStore
	registry *tools.Registry
	policy   PolicyChecker
	metrics  *metrics.Metrics
	logger   *log.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithPolicy installs a tool policy. Without one every tool is allowed.
func WithPolicy(p PolicyChecker) Option {
	return func(s *Service) { s.policy = p }
}

// WithMetrics records tool call metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New creates the dispatcher and registers every catalog tool.
func New(client ollama.OllamaClient, sessions store.SessionStore, opts ...Option) *Service {
	s := &Service{
		client:   client,
		sessions: sessions,
		registry: tools.NewRegistry(),
		logger:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerBuiltins()
	return s
}

// Tools returns the tool catalog in registration order.
func (s *Service) Tools() []domain.ToolDescriptor {
	return s.registry.Descriptors()
}

// Close releases the upstream client and the session store.
func (s *Service) Close() error {
	var result *multierror.Error
	if err := s.client.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("failed to close ollama client: %w", err))
	}
	if err := s.sessions.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("failed to close session store: %w", err))
	}
	return result.ErrorOrNil()
}

func (s *Service) registerBuiltins() {
	handlers := map[string]tools.HandlerFunc{
		tools.CheckHealth:      s.checkHealth,
		tools.ListModels:       s.listModels,
		tools.ShowModel:        s.showModel,
		tools.PullModel:        s.pullModel,
		tools.DeleteModel:      s.deleteModel,
		tools.CopyModel:        s.copyModel,
		tools.CreateModel:      s.createModel,
		tools.Generate:         s.generate,
		tools.GenerateStream:   s.generateStream,
		tools.Chat:             s.chat,
		tools.ChatStream:       s.chatStream,
		tools.Embeddings:       s.embeddings,
		tools.CreateEmbeddings: s.createEmbeddings,
		tools.ListProcesses:    s.listProcesses,
		tools.CheckBlobs:       s.checkBlobs,
		tools.GetVersion:       s.getVersion,
		tools.UpdateModel:      s.updateModel,
		tools.GetModelfile:     s.getModelfile,
		tools.GetModelsInfo:    s.getModelsInfo,
		tools.ValidateModel:    s.validateModel,
		tools.GetModelSize:     s.getModelSize,
		tools.SearchModels:     s.searchModels,
		tools.SaveContext:      s.saveContext,
		tools.LoadContext:      s.loadContext,
		tools.ClearContext:     s.clearContext,
		tools.AppendContext:    s.appendContext,
		tools.BatchGenerate:    s.batchGenerate,
		tools.CompareModels:    s.compareModels,
	}

	for _, desc := range tools.Catalog() {
		handler, ok := handlers[desc.Name]
		if !ok {
			panic("no handler for tool " + desc.Name)
		}
		s.registry.MustRegister(desc, handler)
	}
}
