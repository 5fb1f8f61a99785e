package service

import (
	"context"

	"github.com/xiaot623/gogo/ollama-mcp/internal/adapter/ollama"
	"github.com/xiaot623/gogo/ollama-mcp/internal/domain"
	"github.com/xiaot623/gogo/ollama-mcp/internal/format"
)

func (s *Service) generate(ctx context.Context, args domain.Arguments) (any, error) {
	req, err := generateRequest(args)
	if err != nil {
		return nil, err
	}
	return s.generateOnce(ctx, req)
}

func (s *Service) generateStream(ctx context.Context, args domain.Arguments) (any, error) {
	req, err := generateRequest(args)
	if err != nil {
		return nil, err
	}
	req.Stream = true

	chunks := make([]format.GenerateResult, 0)
	err = s.client.Generate(ctx, req, func(chunk ollama.Object) error {
		chunks = append(chunks, format.Generate(chunk))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return chunks, nil
}

func (s *Service) chat(ctx context.Context, args domain.Arguments) (any, error) {
	req, err := chatRequest(args)
	if err != nil {
		return nil, err
	}

	var result format.ChatResult
	err = s.client.Chat(ctx, req, func(chunk ollama.Object) error {
		result = format.Chat(chunk)
		return ollama.ErrStopStream
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) chatStream(ctx context.Context, args domain.Arguments) (any, error) {
	req, err := chatRequest(args)
	if err != nil {
		return nil, err
	}
	req.Stream = true

	chunks := make([]format.ChatResult, 0)
	err = s.client.Chat(ctx, req, func(chunk ollama.Object) error {
		chunks = append(chunks, format.Chat(chunk))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return chunks, nil
}

func (s *Service) embeddings(ctx context.Context, args domain.Arguments) (any, error) {
	var p embeddingsParams
	if err := decodeArgs(args, &p); err != nil {
		return nil, err
	}
	model, err := requireModel("model", p.Model)
	if err != nil {
		return nil, err
	}
	if err := requireString("prompt", p.Prompt); err != nil {
		return nil, err
	}

	resp, err := s.client.Embeddings(ctx, &ollama.EmbeddingsRequest{Model: model, Prompt: p.Prompt, Options: p.Options})
	if err != nil {
		return nil, err
	}
	return format.Embedding(resp), nil
}

// createEmbeddings embeds each prompt in order; the first failure aborts.
func (s *Service) createEmbeddings(ctx context.Context, args domain.Arguments) (any, error) {
	var p batchParams
	if err := decodeArgs(args, &p); err != nil {
		return nil, err
	}
	model, err := requireModel("model", p.Model)
	if err != nil {
		return nil, err
	}
	if len(p.Prompts) == 0 {
		return nil, domain.NewValidationError("prompts is required")
	}

	results := make([]format.EmbeddingResult, 0, len(p.Prompts))
	for _, prompt := range p.Prompts {
		resp, err := s.client.Embeddings(ctx, &ollama.EmbeddingsRequest{Model: model, Prompt: prompt, Options: p.Options})
		if err != nil {
			return nil, err
		}
		results = append(results, format.Embedding(resp))
	}
	return results, nil
}

func (s *Service) generateOnce(ctx context.Context, req *ollama.GenerateRequest) (format.GenerateResult, error) {
	req.Stream = false

	var result format.GenerateResult
	err := s.client.Generate(ctx, req, func(chunk ollama.Object) error {
		result = format.Generate(chunk)
		return ollama.ErrStopStream
	})
	if err != nil {
		return format.GenerateResult{}, err
	}
	return result, nil
}

func generateRequest(args domain.Arguments) (*ollama.GenerateRequest, error) {
	var p generateParams
	if err := decodeArgs(args, &p); err != nil {
		return nil, err
	}
	model, err := requireModel("model", p.Model)
	if err != nil {
		return nil, err
	}
	if err := requireString("prompt", p.Prompt); err != nil {
		return nil, err
	}
	return &ollama.GenerateRequest{
		Model:    model,
		Prompt:   p.Prompt,
		System:   p.System,
		Template: p.Template,
		Context:  p.Context,
		Options:  p.Options,
	}, nil
}

func chatRequest(args domain.Arguments) (*ollama.ChatRequest, error) {
	var p chatParams
	if err := decodeArgs(args, &p); err != nil {
		return nil, err
	}
	model, err := requireModel("model", p.Model)
	if err != nil {
		return nil, err
	}
	if len(p.Messages) == 0 {
		return nil, domain.NewValidationError("messages is required")
	}
	return &ollama.ChatRequest{Model: model, Messages: p.Messages, Options: p.Options}, nil
}
