// Package format maps raw upstream payloads to the stable shapes returned by
// tool calls. Every function is pure and defaults missing fields.
package format

import (
	"github.com/xiaot623/gogo/ollama-mcp/internal/domain"
)

// ModelSummary is one entry of a model listing.
type ModelSummary struct {
	Name       string `json:"name"`
	Size       int64  `json:"size"`
	ModifiedAt string `json:"modified_at"`
	Digest     string `json:"digest"`
}

// ModelListResult is the normalized model listing.
type ModelListResult struct {
	Models []ModelSummary `json:"models"`
	Count  int            `json:"count"`
}

// Timings are the evaluation statistics reported with a completion.
type Timings struct {
	TotalDuration      int64 `json:"total_duration"`
	LoadDuration       int64 `json:"load_duration"`
	PromptEvalCount    int64 `json:"prompt_eval_count"`
	PromptEvalDuration int64 `json:"prompt_eval_duration"`
	EvalCount          int64 `json:"eval_count"`
	EvalDuration       int64 `json:"eval_duration"`
}

// GenerateResult is a normalized completion or completion chunk.
type GenerateResult struct {
	Response string  `json:"response"`
	Done     bool    `json:"done"`
	Context  []int64 `json:"context"`
	Timings
}

// ChatResult is a normalized chat completion or chat chunk.
type ChatResult struct {
	Message map[string]any `json:"message"`
	Done    bool           `json:"done"`
	Timings
}

// EmbeddingResult is a normalized embedding vector.
type EmbeddingResult struct {
	Embedding []float64 `json:"embedding"`
}

// ModelList normalizes the body of GET /api/tags.
func ModelList(raw map[string]any) ModelListResult {
	entries := Slice(raw, "models")
	out := ModelListResult{Models: make([]ModelSummary, 0, len(entries))}
	for _, entry := range entries {
		m, _ := entry.(map[string]any)
		out.Models = append(out.Models, ModelSummary{
			Name:       String(m, "name"),
			Size:       Int(m, "size"),
			ModifiedAt: String(m, "modified_at"),
			Digest:     String(m, "digest"),
		})
	}
	out.Count = len(out.Models)
	return out
}

// Generate normalizes a generate response or stream chunk.
func Generate(raw map[string]any) GenerateResult {
	ctxTokens := Slice(raw, "context")
	tokens := make([]int64, 0, len(ctxTokens))
	for _, v := range ctxTokens {
		if n, ok := toInt(v); ok {
			tokens = append(tokens, n)
		}
	}
	return GenerateResult{
		Response: String(raw, "response"),
		Done:     Bool(raw, "done"),
		Context:  tokens,
		Timings:  timings(raw),
	}
}

// Chat normalizes a chat response or stream chunk.
func Chat(raw map[string]any) ChatResult {
	msg, ok := raw["message"].(map[string]any)
	if !ok {
		msg = map[string]any{}
	}
	return ChatResult{
		Message: msg,
		Done:    Bool(raw, "done"),
		Timings: timings(raw),
	}
}

// Embedding normalizes an embeddings response.
func Embedding(raw map[string]any) EmbeddingResult {
	values := Slice(raw, "embedding")
	vec := make([]float64, 0, len(values))
	for _, v := range values {
		if f, ok := toFloat(v); ok {
			vec = append(vec, f)
		}
	}
	return EmbeddingResult{Embedding: vec}
}

// Error renders any error as the outward error envelope.
func Error(err error) domain.ErrorEnvelope {
	return domain.ErrorEnvelope{
		Error:     err.Error(),
		ErrorType: domain.KindOf(err),
	}
}

func timings(raw map[string]any) Timings {
	return Timings{
		TotalDuration:      Int(raw, "total_duration"),
		LoadDuration:       Int(raw, "load_duration"),
		PromptEvalCount:    Int(raw, "prompt_eval_count"),
		PromptEvalDuration: Int(raw, "prompt_eval_duration"),
		EvalCount:          Int(raw, "eval_count"),
		EvalDuration:       Int(raw, "eval_duration"),
	}
}
