package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"

	"github.com/xiaot623/gogo/ollama-mcp/internal/domain"
	"github.com/xiaot623/gogo/ollama-mcp/internal/format"
)

// HandleToolCall runs one tool call to completion. It never fails: unknown
// tools, policy blocks, invalid arguments, upstream and session failures and
// handler panics all come back as an error envelope.
func (s *Service) HandleToolCall(ctx context.Context, name string, args domain.Arguments) (result domain.ToolResult) {
	callID := "call_" + uuid.NewString()[:8]
	start := time.Now()
	label := name

	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorf("tool %s panicked (call_id=%s): %v", name, callID, r)
			result = domain.Failed(domain.ErrorEnvelope{
				Error:     fmt.Sprintf("internal error: %v", r),
				ErrorType: domain.KindInternal,
			})
		}

		outcome := "ok"
		if result.IsError() {
			outcome = string(result.Error.ErrorType)
		}
		elapsed := time.Since(start)
		s.metrics.ObserveToolCall(label, outcome, elapsed)
		s.logger.Infoj(log.JSON{
			"event":       "tool_call",
			"call_id":     callID,
			"tool":        name,
			"outcome":     outcome,
			"duration_ms": elapsed.Milliseconds(),
		})
	}()

	handler, ok := s.registry.Lookup(name)
	if !ok {
		label = "unknown"
		return failed(domain.NewUnknownToolError(name))
	}

	if args == nil {
		args = domain.Arguments{}
	}

	if s.policy != nil {
		allowed, reason, err := s.policy.Allowed(ctx, name, args)
		if err != nil {
			return failed(domain.NewPolicyError(name, err.Error()))
		}
		if !allowed {
			return failed(domain.NewPolicyError(name, reason))
		}
	}

	s.logger.Debugf("tool %s started (call_id=%s)", name, callID)
	value, err := handler(ctx, args)
	if err != nil {
		return failed(err)
	}
	return domain.OK(value)
}

// CheckHealth probes the upstream. It never fails.
func (s *Service) CheckHealth(ctx context.Context) HealthResult {
	if _, err := s.client.ListModels(ctx); err != nil {
		s.logger.Warnf("health check failed: %v", err)
		return HealthResult{Status: domain.HealthStatusUnhealthy, OllamaConnected: false}
	}
	return HealthResult{Status: domain.HealthStatusHealthy, OllamaConnected: true}
}

func failed(err error) domain.ToolResult {
	return domain.Failed(format.Error(err))
}
