package service

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/xiaot623/gogo/ollama-mcp/internal/adapter/ollama"
	"github.com/xiaot623/gogo/ollama-mcp/internal/domain"
)

type modelParams struct {
	Model string `json:"model"`
}

type pullParams struct {
	Model    string `json:"model"`
	Insecure bool   `json:"insecure"`
}

type copyParams struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

type modelfileParams struct {
	Model     string `json:"model"`
	Modelfile string `json:"modelfile"`
}

type generateParams struct {
	Model    string         `json:"model"`
	Prompt   string         `json:"prompt"`
	System   string         `json:"system"`
	Template string         `json:"template"`
	Context  []int          `json:"context"`
	Options  map[string]any `json:"options"`
}

type chatParams struct {
	Model    string               `json:"model"`
	Messages []ollama.ChatMessage `json:"messages"`
	Options  map[string]any       `json:"options"`
}

type embeddingsParams struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Options map[string]any `json:"options"`
}

type batchParams struct {
	Model   string         `json:"model"`
	Prompts []string       `json:"prompts"`
	Options map[string]any `json:"options"`
}

type compareParams struct {
	Models  []string       `json:"models"`
	Prompt  string         `json:"prompt"`
	Options map[string]any `json:"options"`
}

type digestParams struct {
	Digest string `json:"digest"`
}

type searchParams struct {
	Query  string `json:"query"`
	Remote bool   `json:"remote"`
}

type sessionParams struct {
	SessionID string `json:"session_id"`
}

type saveParams struct {
	SessionID string           `json:"session_id"`
	Messages  []domain.Message `json:"messages"`
}

type appendParams struct {
	SessionID string          `json:"session_id"`
	Message   *domain.Message `json:"message"`
}

// decodeArgs converts the untyped argument map into dst. Type mismatches are
// validation failures.
func decodeArgs(args domain.Arguments, dst any) error {
	data, err := json.Marshal(args)
	if err != nil {
		return domain.NewValidationError("invalid arguments: %v", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return domain.NewValidationError("invalid argument %s: expected %s", typeErr.Field, typeErr.Type)
		}
		return domain.NewValidationError("invalid arguments: %v", err)
	}
	return nil
}

// requireModel trims a model name and rejects empty names.
func requireModel(field, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.NewValidationError("%s must be a non-empty model name", field)
	}
	return name, nil
}

func requireString(field, value string) error {
	if value == "" {
		return domain.NewValidationError("%s is required", field)
	}
	return nil
}
