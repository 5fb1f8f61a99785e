package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/xiaot623/gogo/ollama-mcp/internal/adapter/ollama"
	"github.com/xiaot623/gogo/ollama-mcp/internal/domain"
	"github.com/xiaot623/gogo/ollama-mcp/internal/format"
)

const (
	mib = 1024 * 1024
	gib = 1024 * mib
)

func (s *Service) getModelfile(ctx context.Context, args domain.Arguments) (any, error) {
	var p modelParams
	if err := decodeArgs(args, &p); err != nil {
		return nil, err
	}
	model, err := requireModel("model", p.Model)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.ShowModel(ctx, model)
	if err != nil {
		return nil, err
	}
	return ModelfileResult{Model: model, Modelfile: format.String(resp, "modelfile")}, nil
}

// getModelsInfo fetches details for every listed model. A failed detail
// fetch leaves that entry's details null.
func (s *Service) getModelsInfo(ctx context.Context, _ domain.Arguments) (any, error) {
	resp, err := s.client.ListModels(ctx)
	if err != nil {
		return nil, err
	}

	entries := listedModels(resp)
	result := ModelsInfoResult{Models: make([]ModelInfo, 0, len(entries))}
	for _, m := range entries {
		info := ModelInfo{
			Name:       format.String(m, "name"),
			Size:       format.Int(m, "size"),
			ModifiedAt: format.String(m, "modified_at"),
		}
		details, err := s.client.ShowModel(ctx, info.Name)
		if err != nil {
			s.logger.Warnf("failed to fetch details of %s: %v", info.Name, err)
		} else {
			info.Details = details
		}
		result.Models = append(result.Models, info)
	}
	result.Count = len(result.Models)
	return result, nil
}

func (s *Service) validateModel(ctx context.Context, args domain.Arguments) (any, error) {
	var p modelParams
	if err := decodeArgs(args, &p); err != nil {
		return nil, err
	}
	model, err := requireModel("model", p.Model)
	if err != nil {
		return nil, err
	}

	details, err := s.client.ShowModel(ctx, model)
	if err != nil {
		return InvalidModel{Valid: false, Model: model, Error: err.Error()}, nil
	}
	return ValidModel{Valid: true, Model: model, Details: details}, nil
}

func (s *Service) getModelSize(ctx context.Context, args domain.Arguments) (any, error) {
	var p modelParams
	if err := decodeArgs(args, &p); err != nil {
		return nil, err
	}
	model, err := requireModel("model", p.Model)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	for _, m := range listedModels(resp) {
		if format.String(m, "name") != model {
			continue
		}
		return modelSize(model, format.Int(m, "size")), nil
	}
	return nil, domain.NewValidationError("model %s not found", model)
}

func modelSize(model string, bytes int64) ModelSizeResult {
	sizeMB := float64(bytes) / mib
	sizeGB := float64(bytes) / gib

	human := fmt.Sprintf("%.2f MB", sizeMB)
	if sizeGB >= 1 {
		human = fmt.Sprintf("%.2f GB", sizeGB)
	}
	return ModelSizeResult{
		Model:     model,
		SizeBytes: bytes,
		SizeMB:    round2(sizeMB),
		SizeGB:    round2(sizeGB),
		SizeHuman: human,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// searchModels matches a lowercase substring against local model names.
// The remote flag is accepted and ignored.
func (s *Service) searchModels(ctx context.Context, args domain.Arguments) (any, error) {
	var p searchParams
	if err := decodeArgs(args, &p); err != nil {
		return nil, err
	}
	query := strings.ToLower(p.Query)
	if err := requireString("query", query); err != nil {
		return nil, err
	}

	resp, err := s.client.ListModels(ctx)
	if err != nil {
		return nil, err
	}

	matches := make([]any, 0)
	for _, m := range listedModels(resp) {
		if strings.Contains(strings.ToLower(format.String(m, "name")), query) {
			matches = append(matches, m)
		}
	}
	return SearchResult{Query: query, Models: matches, Count: len(matches)}, nil
}

// batchGenerate runs one completion per prompt in order; the first failure
// fails the batch.
func (s *Service) batchGenerate(ctx context.Context, args domain.Arguments) (any, error) {
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

	results := make([]format.GenerateResult, 0, len(p.Prompts))
	for _, prompt := range p.Prompts {
		res, err := s.generateOnce(ctx, &ollama.GenerateRequest{Model: model, Prompt: prompt, Options: p.Options})
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

// compareModels runs the prompt against every model. Per-model failures are
// recorded in place and do not stop the others.
func (s *Service) compareModels(ctx context.Context, args domain.Arguments) (any, error) {
	var p compareParams
	if err := decodeArgs(args, &p); err != nil {
		return nil, err
	}
	if len(p.Models) < 2 {
		return nil, domain.NewValidationError("at least 2 models are required")
	}
	if err := requireString("prompt", p.Prompt); err != nil {
		return nil, err
	}

	results := make(map[string]any, len(p.Models))
	for _, name := range p.Models {
		model, err := requireModel("model", name)
		if err != nil {
			results[name] = map[string]string{"error": err.Error()}
			continue
		}
		res, err := s.generateOnce(ctx, &ollama.GenerateRequest{Model: model, Prompt: p.Prompt, Options: p.Options})
		if err != nil {
			results[name] = map[string]string{"error": err.Error()}
			continue
		}
		results[name] = res
	}
	return CompareResult{Prompt: p.Prompt, Results: results}, nil
}

func listedModels(resp ollama.Object) []map[string]any {
	raw := format.Slice(resp, "models")
	out := make([]map[string]any, 0, len(raw))
	for _, entry := range raw {
		if m, ok := entry.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
