package service

import (
	"context"

	"github.com/xiaot623/gogo/ollama-mcp/internal/domain"
	"github.com/xiaot623/gogo/ollama-mcp/internal/repository"
)

func (s *Service) saveContext(ctx context.Context, args domain.Arguments) (any, error) {
	var p saveParams
	if err := decodeArgs(args, &p); err != nil {
		return nil, err
	}
	if err := store.ValidateSessionID(p.SessionID); err != nil {
		return nil, err
	}
	if len(p.Messages) == 0 {
		return nil, domain.NewValidationError("messages is required")
	}

	if err := s.sessions.SaveContext(ctx, p.SessionID, p.Messages); err != nil {
		return nil, err
	}
	return SaveContextResult{SessionID: p.SessionID, Saved: true}, nil
}

func (s *Service) loadContext(ctx context.Context, args domain.Arguments) (any, error) {
	var p sessionParams
	if err := decodeArgs(args, &p); err != nil {
		return nil, err
	}
	if err := store.ValidateSessionID(p.SessionID); err != nil {
		return nil, err
	}

	messages, found, err := s.sessions.LoadContext(ctx, p.SessionID)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return LoadContextResult{SessionID: p.SessionID, Messages: messages, Found: found}, nil
}

func (s *Service) clearContext(ctx context.Context, args domain.Arguments) (any, error) {
	var p sessionParams
	if err := decodeArgs(args, &p); err != nil {
		return nil, err
	}
	if err := store.ValidateSessionID(p.SessionID); err != nil {
		return nil, err
	}

	if err := s.sessions.ClearContext(ctx, p.SessionID); err != nil {
		return nil, err
	}
	return ClearContextResult{SessionID: p.SessionID, Cleared: true}, nil
}

func (s *Service) appendContext(ctx context.Context, args domain.Arguments) (any, error) {
	var p appendParams
	if err := decodeArgs(args, &p); err != nil {
		return nil, err
	}
	if err := store.ValidateSessionID(p.SessionID); err != nil {
		return nil, err
	}
	if p.Message == nil || p.Message.Role == "" {
		return nil, domain.NewValidationError("message with a role is required")
	}

	if err := s.sessions.UpdateContext(ctx, p.SessionID, *p.Message); err != nil {
		return nil, err
	}
	return AppendContextResult{SessionID: p.SessionID, Appended: true}, nil
}
