// Package config provides configuration for the ollama-mcp server.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvConfigFile names an optional YAML file applied under the environment.
const EnvConfigFile = "CONFIG_FILE"

// Config holds the server configuration. Durations are stored in the units
// of their environment variables.
type Config struct {
	// Server settings
	MCPHost string `yaml:"mcp_host"`
	MCPPort int    `yaml:"mcp_port"`
	RPCPort int    `yaml:"rpc_port"`

	// Ollama API
	OllamaHost           string `yaml:"ollama_host"`
	OllamaPort           int    `yaml:"ollama_port"`
	OllamaTimeoutSeconds int    `yaml:"ollama_timeout"`
	OllamaMode           string `yaml:"ollama_mode"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Sessions
	SessionBackend     string `yaml:"session_backend"`
	SessionStoragePath string `yaml:"session_storage_path"`
	SessionTTLSeconds  int    `yaml:"session_ttl"`
	SessionDSN         string `yaml:"session_dsn"`

	// Rate limiting is accepted but not enforced.
	RateLimitEnabled           bool `yaml:"rate_limit_enabled"`
	RateLimitRequestsPerMinute int  `yaml:"rate_limit_requests_per_minute"`

	ToolPolicyFile string `yaml:"tool_policy_file"`
	MetricsEnabled bool   `yaml:"metrics_enabled"`

	// WebSocket transport
	WSMaxMessageSize int64 `yaml:"ws_max_message_size"`
	WSWriteTimeoutMs int   `yaml:"ws_write_timeout_ms"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		MCPHost:                    "0.0.0.0",
		MCPPort:                    4838,
		RPCPort:                    0,
		OllamaHost:                 "localhost",
		OllamaPort:                 11434,
		OllamaTimeoutSeconds:       60,
		LogLevel:                   "INFO",
		LogFormat:                  "json",
		SessionBackend:             "file",
		SessionStoragePath:         "./sessions",
		SessionTTLSeconds:          3600,
		RateLimitRequestsPerMinute: 60,
		MetricsEnabled:             true,
		WSMaxMessageSize:           1 << 20,
		WSWriteTimeoutMs:           10000,
	}
}

// Load builds the configuration from defaults, the optional CONFIG_FILE and
// environment variables, in increasing precedence.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.MCPHost = getEnv("MCP_HOST", c.MCPHost)
	c.MCPPort = getEnvInt("MCP_PORT", c.MCPPort)
	c.RPCPort = getEnvInt("RPC_PORT", c.RPCPort)
	c.OllamaHost = getEnv("OLLAMA_HOST", c.OllamaHost)
	c.OllamaPort = getEnvInt("OLLAMA_PORT", c.OllamaPort)
	c.OllamaTimeoutSeconds = getEnvInt("OLLAMA_TIMEOUT", c.OllamaTimeoutSeconds)
	c.OllamaMode = getEnv("OLLAMA_MODE", c.OllamaMode)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
	c.SessionBackend = getEnv("SESSION_BACKEND", c.SessionBackend)
	c.SessionStoragePath = getEnv("SESSION_STORAGE_PATH", c.SessionStoragePath)
	c.SessionTTLSeconds = getEnvInt("SESSION_TTL", c.SessionTTLSeconds)
	c.SessionDSN = getEnv("SESSION_DSN", c.SessionDSN)
	c.RateLimitEnabled = getEnvBool("RATE_LIMIT_ENABLED", c.RateLimitEnabled)
	c.RateLimitRequestsPerMinute = getEnvInt("RATE_LIMIT_REQUESTS_PER_MINUTE", c.RateLimitRequestsPerMinute)
	c.ToolPolicyFile = getEnv("TOOL_POLICY_FILE", c.ToolPolicyFile)
	c.MetricsEnabled = getEnvBool("METRICS_ENABLED", c.MetricsEnabled)
	c.WSMaxMessageSize = int64(getEnvInt("WS_MAX_MESSAGE_SIZE", int(c.WSMaxMessageSize)))
	c.WSWriteTimeoutMs = getEnvInt("WS_WRITE_TIMEOUT_MS", c.WSWriteTimeoutMs)
}

// Validate rejects values the server cannot start with.
func (c *Config) Validate() error {
	if err := validPort("MCP_PORT", c.MCPPort, false); err != nil {
		return err
	}
	if err := validPort("RPC_PORT", c.RPCPort, true); err != nil {
		return err
	}
	if err := validPort("OLLAMA_PORT", c.OllamaPort, false); err != nil {
		return err
	}
	if c.OllamaTimeoutSeconds <= 0 {
		return fmt.Errorf("OLLAMA_TIMEOUT must be positive, got %d", c.OllamaTimeoutSeconds)
	}
	if c.SessionTTLSeconds <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %d", c.SessionTTLSeconds)
	}
	switch c.SessionBackend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q", c.SessionBackend)
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("unknown LOG_FORMAT %q", c.LogFormat)
	}
	if c.WSMaxMessageSize <= 0 {
		return fmt.Errorf("WS_MAX_MESSAGE_SIZE must be positive, got %d", c.WSMaxMessageSize)
	}
	return nil
}

// OllamaBaseURL returns the upstream base URL. An OLLAMA_HOST that already
// carries a scheme is used as is.
func (c *Config) OllamaBaseURL() string {
	if strings.HasPrefix(c.OllamaHost, "http://") || strings.HasPrefix(c.OllamaHost, "https://") {
		return strings.TrimSuffix(c.OllamaHost, "/")
	}
	return "http://" + net.JoinHostPort(c.OllamaHost, strconv.Itoa(c.OllamaPort))
}

// MCPAddr returns the HTTP listen address.
func (c *Config) MCPAddr() string {
	return net.JoinHostPort(c.MCPHost, strconv.Itoa(c.MCPPort))
}

// RPCAddr returns the net/rpc listen address, or "" when disabled.
func (c *Config) RPCAddr() string {
	if c.RPCPort == 0 {
		return ""
	}
	return net.JoinHostPort(c.MCPHost, strconv.Itoa(c.RPCPort))
}

func (c *Config) OllamaTimeout() time.Duration {
	return time.Duration(c.OllamaTimeoutSeconds) * time.Second
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLSeconds) * time.Second
}

func (c *Config) WSWriteTimeout() time.Duration {
	return time.Duration(c.WSWriteTimeoutMs) * time.Millisecond
}

func validPort(name string, port int, zeroOK bool) error {
	if port == 0 && zeroOK {
		return nil
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("%s out of range: %d", name, port)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return defaultVal
}
