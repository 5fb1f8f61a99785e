package ollama

import "errors"

// Object is one decoded JSON object returned by the upstream API, either a
// whole unary response body or one stream chunk.
type Object = map[string]any

// StreamFunc receives decoded chunks in order. Returning ErrStopStream ends
// consumption without an error; any other error aborts the call.
type StreamFunc func(chunk Object) error

// ErrStopStream is returned by a StreamFunc to stop reading a stream early.
var ErrStopStream = errors.New("stop stream")

// PullRequest is the body of POST /api/pull.
type PullRequest struct {
	Model    string `json:"model"`
	Insecure bool   `json:"insecure"`
}

// CreateRequest is the body of POST /api/create.
type CreateRequest struct {
	Model     string `json:"model"`
	Modelfile string `json:"modelfile"`
	Stream    bool   `json:"stream"`
}

// GenerateRequest is the body of POST /api/generate.
type GenerateRequest struct {
	Model    string         `json:"model"`
	Prompt   string         `json:"prompt"`
	System   string         `json:"system,omitempty"`
	Template string         `json:"template,omitempty"`
	Context  []int          `json:"context,omitempty"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

// ChatMessage is one message of a chat request.
type ChatMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Model    string         `json:"model"`
	Messages []ChatMessage  `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

// EmbeddingsRequest is the body of POST /api/embeddings.
type EmbeddingsRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Options map[string]any `json:"options,omitempty"`
}

// The legacy upstream API keys model operations by "name"; newer releases
// accept "model". Both are sent.
type namedModel struct {
	Name  string `json:"name"`
	Model string `json:"model"`
}

type pullBody struct {
	namedModel
	Insecure bool `json:"insecure"`
}

type createBody struct {
	namedModel
	Modelfile string `json:"modelfile"`
	Stream    bool   `json:"stream"`
}

type copyBody struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
}
