package cli

import (
	"context"
	"fmt"

	"github.com/labstack/gommon/log"

	"github.com/xiaot623/gogo/ollama-mcp/internal/adapter/ollama"
	"github.com/xiaot623/gogo/ollama-mcp/internal/config"
	"github.com/xiaot623/gogo/ollama-mcp/internal/logging"
	"github.com/xiaot623/gogo/ollama-mcp/internal/metrics"
	"github.com/xiaot623/gogo/ollama-mcp/internal/repository"
	"github.com/xiaot623/gogo/ollama-mcp/internal/service"
	"github.com/xiaot623/gogo/ollama-mcp/policy"
)

// app holds the dependencies built once at startup.
type app struct {
	cfg     *config.Config
	logger  *log.Logger
	metrics *metrics.Metrics
	service *service.Service
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	logging.ConfigureGlobal(cfg.LogLevel, cfg.LogFormat, nil)
	logger := logging.New("ollama-mcp", cfg.LogLevel, cfg.LogFormat, nil)

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	engine, err := policy.NewEngineFromFile(ctx, cfg.ToolPolicyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize policy engine: %w", err)
	}

	sessions, err := store.Open(cfg.SessionBackend, cfg.SessionStoragePath, cfg.SessionDSN, cfg.SessionTTL())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session store: %w", err)
	}

	client := ollama.NewOllamaClient(cfg.OllamaMode, cfg.OllamaBaseURL(), cfg.OllamaTimeout(),
		ollama.WithRequestObserver(m.ObserveUpstream))

	svc := service.New(client, sessions,
		service.WithPolicy(engine),
		service.WithMetrics(m),
		service.WithLogger(logger),
	)

	logger.Infoj(log.JSON{
		"event":           "startup",
		"ollama_url":      cfg.OllamaBaseURL(),
		"ollama_mode":     cfg.OllamaMode,
		"session_backend": cfg.SessionBackend,
		"session_ttl_s":   cfg.SessionTTLSeconds,
		"tools":           len(svc.Tools()),
	})
	if cfg.RateLimitEnabled {
		logger.Warnf("rate limiting is configured (%d requests/minute) but not enforced", cfg.RateLimitRequestsPerMinute)
	}

	return &app{cfg: cfg, logger: logger, metrics: m, service: svc}, nil
}

func (a *app) Close() error {
	return a.service.Close()
}
