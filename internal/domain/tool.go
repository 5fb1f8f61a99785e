package domain

import "encoding/json"

// Arguments is the untyped argument map of one tool call, as received on the wire.
type Arguments map[string]any

// Schema is the JSON-Schema subset used to describe tool inputs.
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

// ToolDescriptor is one catalog entry returned on discovery.
type ToolDescriptor struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	InputSchema *Schema `json:"inputSchema"`
}

// ErrorEnvelope is the outward shape of a failed tool call.
type ErrorEnvelope struct {
	Error     string    `json:"error"`
	ErrorType ErrorKind `json:"error_type"`
}

// ToolResult is the outcome of one tool call: a success value or an error
// envelope. It always marshals to a JSON value.
type ToolResult struct {
	Value any
	Error *ErrorEnvelope
}

// OK wraps a success value.
func OK(v any) ToolResult {
	return ToolResult{Value: v}
}

// Failed wraps an error envelope.
func Failed(env ErrorEnvelope) ToolResult {
	return ToolResult{Error: &env}
}

// IsError reports whether the result carries an error envelope.
func (r ToolResult) IsError() bool {
	return r.Error != nil
}

func (r ToolResult) MarshalJSON() ([]byte, error) {
	if r.Error != nil {
		return json.Marshal(r.Error)
	}
	return json.Marshal(r.Value)
}
