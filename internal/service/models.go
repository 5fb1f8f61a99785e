package service

import (
	"context"
	"fmt"

	"github.com/xiaot623/gogo/ollama-mcp/internal/adapter/ollama"
	"github.com/xiaot623/gogo/ollama-mcp/internal/domain"
	"github.com/xiaot623/gogo/ollama-mcp/internal/format"
)

func (s *Service) checkHealth(ctx context.Context, _ domain.Arguments) (any, error) {
	return s.CheckHealth(ctx), nil
}

func (s *Service) listModels(ctx context.Context, _ domain.Arguments) (any, error) {
	resp, err := s.client.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	return format.ModelList(resp), nil
}

func (s *Service) showModel(ctx context.Context, args domain.Arguments) (any, error) {
	var p modelParams
	if err := decodeArgs(args, &p); err != nil {
		return nil, err
	}
	model, err := requireModel("model", p.Model)
	if err != nil {
		return nil, err
	}
	return s.client.ShowModel(ctx, model)
}

func (s *Service) pullModel(ctx context.Context, args domain.Arguments) (any, error) {
	var p pullParams
	if err := decodeArgs(args, &p); err != nil {
		return nil, err
	}
	model, err := requireModel("model", p.Model)
	if err != nil {
		return nil, err
	}

	result := &ProgressResult{Status: domain.ProgressDownloading, Model: model}
	if err := s.client.PullModel(ctx, &ollama.PullRequest{Model: model, Insecure: p.Insecure}, drainProgress(result)); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) deleteModel(ctx context.Context, args domain.Arguments) (any, error) {
	var p modelParams
	if err := decodeArgs(args, &p); err != nil {
		return nil, err
	}
	model, err := requireModel("model", p.Model)
	if err != nil {
		return nil, err
	}
	return s.client.DeleteModel(ctx, model)
}

func (s *Service) copyModel(ctx context.Context, args domain.Arguments) (any, error) {
	var p copyParams
	if err := decodeArgs(args, &p); err != nil {
		return nil, err
	}
	source, err := requireModel("source", p.Source)
	if err != nil {
		return nil, err
	}
	destination, err := requireModel("destination", p.Destination)
	if err != nil {
		return nil, err
	}
	return s.client.CopyModel(ctx, source, destination)
}

func (s *Service) createModel(ctx context.Context, args domain.Arguments) (any, error) {
	return s.buildModel(ctx, args, domain.ProgressCreating)
}

// updateModel is create with overwrite semantics; the upstream call is the same.
func (s *Service) updateModel(ctx context.Context, args domain.Arguments) (any, error) {
	return s.buildModel(ctx, args, domain.ProgressUpdating)
}

func (s *Service) buildModel(ctx context.Context, args domain.Arguments, initial domain.ProgressStatus) (any, error) {
	var p modelfileParams
	if err := decodeArgs(args, &p); err != nil {
		return nil, err
	}
	model, err := requireModel("model", p.Model)
	if err != nil {
		return nil, err
	}
	if err := requireString("modelfile", p.Modelfile); err != nil {
		return nil, err
	}

	result := &ProgressResult{Status: initial, Model: model}
	req := &ollama.CreateRequest{Model: model, Modelfile: p.Modelfile}
	if err := s.client.CreateModel(ctx, req, drainProgress(result)); err != nil {
		return nil, err
	}
	return result, nil
}

// drainProgress consumes progress chunks until one reports success or
// carries an error. A stream ending without either leaves result unchanged.
func drainProgress(result *ProgressResult) ollama.StreamFunc {
	return func(chunk ollama.Object) error {
		if format.String(chunk, "status") == string(domain.ProgressSuccess) {
			result.Status = domain.ProgressSuccess
			return ollama.ErrStopStream
		}
		if msg := errorField(chunk); msg != "" {
			result.Status = domain.ProgressError
			result.Error = msg
			return ollama.ErrStopStream
		}
		return nil
	}
}

func errorField(chunk ollama.Object) string {
	switch v := chunk["error"].(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if !v {
			return ""
		}
	}
	return fmt.Sprint(chunk["error"])
}

func (s *Service) listProcesses(ctx context.Context, _ domain.Arguments) (any, error) {
	return s.client.ListProcesses(ctx)
}

func (s *Service) checkBlobs(ctx context.Context, args domain.Arguments) (any, error) {
	var p digestParams
	if err := decodeArgs(args, &p); err != nil {
		return nil, err
	}
	if err := requireString("digest", p.Digest); err != nil {
		return nil, err
	}
	return BlobResult{Digest: p.Digest, Exists: s.client.CheckBlob(ctx, p.Digest)}, nil
}

func (s *Service) getVersion(ctx context.Context, _ domain.Arguments) (any, error) {
	return s.client.GetVersion(ctx)
}
