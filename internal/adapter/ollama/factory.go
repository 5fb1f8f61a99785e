package ollama

import (
	"strings"
	"time"

	"github.com/labstack/gommon/log"
)

// ModeMock selects the in-memory mock client.
const ModeMock = "MOCK"

// NewOllamaClient creates an upstream client for the given mode. MOCK returns
// a MockClient; anything else returns a real Client for baseURL.
func NewOllamaClient(mode, baseURL string, timeout time.Duration, opts ...Option) OllamaClient {
	if strings.EqualFold(mode, ModeMock) {
		log.Info("OLLAMA_MODE=MOCK detected, using mock ollama client")
		return NewMockClient()
	}

	return NewClient(baseURL, timeout, opts...)
}
