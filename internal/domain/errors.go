package domain

import (
	"errors"
	"fmt"
)

// Error is a classified tool-call failure. StatusCode and Body are only set
// for upstream API failures.
type Error struct {
	Kind       ErrorKind
	Message    string
	StatusCode int
	Body       string
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewConnectionError reports that the upstream host could not be reached.
func NewConnectionError(cause error) *Error {
	return &Error{Kind: KindConnection, Message: "connection to ollama failed", Cause: cause}
}

// NewUpstreamError reports a rejected request. statusCode is 0 when the
// failure happened before a response was received.
func NewUpstreamError(statusCode int, body string, cause error) *Error {
	msg := "unexpected ollama error"
	if statusCode != 0 {
		msg = fmt.Sprintf("ollama api error [%d]: %s", statusCode, body)
	}
	return &Error{Kind: KindUpstream, Message: msg, StatusCode: statusCode, Body: body, Cause: cause}
}

// NewValidationError reports an invalid or missing tool argument.
func NewValidationError(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NewUnknownToolError reports a tool name that is not in the catalog.
func NewUnknownToolError(name string) *Error {
	return &Error{Kind: KindUnknownTool, Message: fmt.Sprintf("unknown tool: %s", name)}
}

// NewSessionError reports a session persistence failure.
func NewSessionError(op string, cause error) *Error {
	return &Error{Kind: KindSession, Message: "session persistence failed (" + op + ")", Cause: cause}
}

// NewPolicyError reports a tool call rejected by the tool policy.
func NewPolicyError(name, reason string) *Error {
	msg := fmt.Sprintf("tool %s blocked by policy", name)
	if reason != "" {
		msg += ": " + reason
	}
	return &Error{Kind: KindPolicy, Message: msg}
}

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var de *Error
	return errors.As(err, &de) && de.Kind == kind
}
