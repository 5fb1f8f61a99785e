// Package domain defines the core types shared by the dispatcher, the
// upstream client and the transports.
package domain

// ErrorKind classifies a failure surfaced by a tool call.
type ErrorKind string

const (
	KindConnection  ErrorKind = "OllamaConnectionError"
	KindUpstream    ErrorKind = "OllamaAPIError"
	KindValidation  ErrorKind = "ValidationError"
	KindUnknownTool ErrorKind = "UnknownToolError"
	KindSession     ErrorKind = "SessionError"
	KindPolicy      ErrorKind = "PolicyError"
	KindInternal    ErrorKind = "MCPError"
)

// HealthStatus is reported by the health-check tool and the liveness endpoint.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// ProgressStatus is the status recorded while draining pull/create streams.
type ProgressStatus string

const (
	ProgressDownloading ProgressStatus = "downloading"
	ProgressCreating    ProgressStatus = "creating"
	ProgressUpdating    ProgressStatus = "updating"
	ProgressSuccess     ProgressStatus = "success"
	ProgressError       ProgressStatus = "error"
)

// Message roles accepted by the chat endpoint.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
