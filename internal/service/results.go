package service

import (
	"github.com/xiaot623/gogo/ollama-mcp/internal/adapter/ollama"
	"github.com/xiaot623/gogo/ollama-mcp/internal/domain"
)

// HealthResult is returned by the health check.
type HealthResult struct {
	Status          domain.HealthStatus `json:"status"`
	OllamaConnected bool                `json:"ollama_connected"`
}

// ProgressResult is the outcome of a drained pull, create or update stream.
type ProgressResult struct {
	Status domain.ProgressStatus `json:"status"`
	Model  string                `json:"model"`
	Error  string                `json:"error,omitempty"`
}

// BlobResult reports whether a blob digest exists upstream.
type BlobResult struct {
	Digest string `json:"digest"`
	Exists bool   `json:"exists"`
}

// ModelfileResult carries the Modelfile text of one model.
type ModelfileResult struct {
	Model     string `json:"model"`
	Modelfile string `json:"modelfile"`
}

// ModelInfo is one entry of the models-info aggregate. Details is nil when
// the detail fetch failed.
type ModelInfo struct {
	Name       string        `json:"name"`
	Size       int64         `json:"size"`
	ModifiedAt string        `json:"modified_at"`
	Details    ollama.Object `json:"details"`
}

// ModelsInfoResult aggregates the listing with per-model details.
type ModelsInfoResult struct {
	Models []ModelInfo `json:"models"`
	Count  int         `json:"count"`
}

// ValidModel is returned when the model probe succeeded.
type ValidModel struct {
	Valid   bool          `json:"valid"`
	Model   string        `json:"model"`
	Details ollama.Object `json:"details"`
}

// InvalidModel is returned when the model probe failed.
type InvalidModel struct {
	Valid bool   `json:"valid"`
	Model string `json:"model"`
	Error string `json:"error"`
}

// ModelSizeResult is the size of one model in bytes, MiB and GiB.
type ModelSizeResult struct {
	Model     string  `json:"model"`
	SizeBytes int64   `json:"size_bytes"`
	SizeMB    float64 `json:"size_mb"`
	SizeGB    float64 `json:"size_gb"`
	SizeHuman string  `json:"size_human"`
}

// SearchResult carries the raw upstream entries of matching models.
type SearchResult struct {
	Query  string `json:"query"`
	Models []any  `json:"models"`
	Count  int    `json:"count"`
}

// SaveContextResult acknowledges a session save.
type SaveContextResult struct {
	SessionID string `json:"session_id"`
	Saved     bool   `json:"saved"`
}

// LoadContextResult carries the stored messages. Found is false for a
// missing or expired session.
type LoadContextResult struct {
	SessionID string           `json:"session_id"`
	Messages  []domain.Message `json:"messages"`
	Found     bool             `json:"found"`
}

// ClearContextResult acknowledges a session clear.
type ClearContextResult struct {
	SessionID string `json:"session_id"`
	Cleared   bool   `json:"cleared"`
}

// AppendContextResult acknowledges an appended message.
type AppendContextResult struct {
	SessionID string `json:"session_id"`
	Appended  bool   `json:"appended"`
}

// CompareResult maps each requested model name to its normalized completion
// or to an {"error": ...} record.
type CompareResult struct {
	Prompt  string         `json:"prompt"`
	Results map[string]any `json:"results"`
}
