package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/xiaot623/gogo/ollama-mcp/internal/domain"
)

const (
	userAgent = "ollama-mcp/0.1.0"

	// maxErrorBody bounds how much of a failed response is kept.
	maxErrorBody = 64 << 10
)

// RequestObserver is notified after every upstream round trip. status is 0
// when no response was received.
type RequestObserver func(endpoint string, status int, elapsed time.Duration)

// Client is the Ollama REST API client. The underlying HTTP clients are
// created on first use and shared by concurrent callers.
type Client struct {
	baseURL  string
	timeout  time.Duration
	observer RequestObserver

	mu           sync.Mutex
	transport    *http.Transport
	httpClient   *http.Client
	streamClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithRequestObserver installs a hook called after each upstream request.
func WithRequestObserver(obs RequestObserver) Option {
	return func(c *Client) {
		c.observer = obs
	}
}

// NewClient creates a new Ollama client for baseURL, e.g. http://localhost:11434.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		timeout: timeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// clients returns the unary and streaming HTTP clients, creating them on
// first use. Both share one transport. The streaming client has no overall
// deadline so long pulls are bounded only by the upstream.
func (c *Client) clients() (*http.Client, *http.Client) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.httpClient == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.ResponseHeaderTimeout = c.timeout
		c.transport = transport
		c.httpClient = &http.Client{Timeout: c.timeout, Transport: transport}
		c.streamClient = &http.Client{Transport: transport}
	}
	return c.httpClient, c.streamClient
}

// Close releases idle connections. A later call recreates the clients.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.transport == nil {
		return nil
	}
	c.transport.CloseIdleConnections()
	c.transport = nil
	c.httpClient = nil
	c.streamClient = nil
	return nil
}

// ListModels retrieves the locally available models.
func (c *Client) ListModels(ctx context.Context) (Object, error) {
	return c.request(ctx, http.MethodGet, "/api/tags", nil)
}

// ShowModel retrieves the details of one model.
func (c *Client) ShowModel(ctx context.Context, model string) (Object, error) {
	return c.request(ctx, http.MethodPost, "/api/show", map[string]string{"model": model})
}

// DeleteModel removes a local model.
func (c *Client) DeleteModel(ctx context.Context, model string) (Object, error) {
	return c.request(ctx, http.MethodDelete, "/api/delete", namedModel{Name: model, Model: model})
}

// CopyModel copies source to destination.
func (c *Client) CopyModel(ctx context.Context, source, destination string) (Object, error) {
	return c.request(ctx, http.MethodPost, "/api/copy", copyBody{Source: source, Destination: destination})
}

// PullModel downloads a model from the registry, streaming progress chunks.
func (c *Client) PullModel(ctx context.Context, req *PullRequest, fn StreamFunc) error {
	body := pullBody{
		namedModel: namedModel{Name: req.Model, Model: req.Model},
		Insecure:   req.Insecure,
	}
	return c.stream(ctx, http.MethodPost, "/api/pull", body, fn)
}

// CreateModel creates a model from a Modelfile.
func (c *Client) CreateModel(ctx context.Context, req *CreateRequest, fn StreamFunc) error {
	body := createBody{
		namedModel: namedModel{Name: req.Model, Model: req.Model},
		Modelfile:  req.Modelfile,
		Stream:     req.Stream,
	}
	return c.unaryOrStream(ctx, "/api/create", body, req.Stream, fn)
}

// Generate runs a completion for a prompt.
func (c *Client) Generate(ctx context.Context, req *GenerateRequest, fn StreamFunc) error {
	return c.unaryOrStream(ctx, "/api/generate", req, req.Stream, fn)
}

// Chat runs a chat completion.
func (c *Client) Chat(ctx context.Context, req *ChatRequest, fn StreamFunc) error {
	return c.unaryOrStream(ctx, "/api/chat", req, req.Stream, fn)
}

// Embeddings computes the embedding vector of a prompt.
func (c *Client) Embeddings(ctx context.Context, req *EmbeddingsRequest) (Object, error) {
	return c.request(ctx, http.MethodPost, "/api/embeddings", req)
}

// ListProcesses lists the models currently loaded for inference.
func (c *Client) ListProcesses(ctx context.Context) (Object, error) {
	return c.request(ctx, http.MethodGet, "/api/ps", nil)
}

// CheckBlob reports whether the blob with the given digest exists upstream.
func (c *Client) CheckBlob(ctx context.Context, digest string) bool {
	endpoint := "/api/blobs/" + url.PathEscape(digest)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+endpoint, nil)
	if err != nil {
		return false
	}
	httpReq.Header.Set("User-Agent", userAgent)

	unary, _ := c.clients()
	start := time.Now()
	resp, err := unary.Do(httpReq)
	if err != nil {
		c.observe("/api/blobs", 0, start)
		return false
	}
	defer resp.Body.Close()
	c.observe("/api/blobs", resp.StatusCode, start)

	return resp.StatusCode == http.StatusOK
}

// GetVersion retrieves the upstream server version.
func (c *Client) GetVersion(ctx context.Context) (Object, error) {
	return c.request(ctx, http.MethodGet, "/api/version", nil)
}

func (c *Client) unaryOrStream(ctx context.Context, endpoint string, body any, stream bool, fn StreamFunc) error {
	if stream {
		return c.stream(ctx, http.MethodPost, endpoint, body, fn)
	}

	result, err := c.request(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return err
	}
	if err := fn(result); err != nil && !errors.Is(err, ErrStopStream) {
		return err
	}
	return nil
}

// request performs one unary round trip and decodes the JSON object body.
func (c *Client) request(ctx context.Context, method, endpoint string, body any) (Object, error) {
	httpReq, err := c.newRequest(ctx, method, endpoint, body)
	if err != nil {
		return nil, domain.NewUpstreamError(0, "", err)
	}

	unary, _ := c.clients()
	start := time.Now()
	resp, err := unary.Do(httpReq)
	if err != nil {
		c.observe(endpoint, 0, start)
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()
	c.observe(endpoint, resp.StatusCode, start)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewUpstreamError(0, "", fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, domain.NewUpstreamError(resp.StatusCode, string(respBody), nil)
	}

	return decodeObject(respBody)
}

// stream performs a request whose body is newline-delimited JSON and hands
// each decoded line to fn.
func (c *Client) stream(ctx context.Context, method, endpoint string, body any, fn StreamFunc) error {
	httpReq, err := c.newRequest(ctx, method, endpoint, body)
	if err != nil {
		return domain.NewUpstreamError(0, "", err)
	}

	_, streamer := c.clients()
	start := time.Now()
	resp, err := streamer.Do(httpReq)
	if err != nil {
		c.observe(endpoint, 0, start)
		return classifyTransportError(err)
	}
	defer resp.Body.Close()
	c.observe(endpoint, resp.StatusCode, start)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return domain.NewUpstreamError(resp.StatusCode, string(respBody), nil)
	}

	return readStream(resp.Body, fn)
}

// readStream decodes one JSON object per non-empty line. Lines that are not
// JSON objects are skipped.
func readStream(r io.Reader, fn StreamFunc) error {
	reader := bufio.NewReader(r)

	for {
		line, readErr := reader.ReadBytes('\n')

		if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
			var chunk Object
			if err := json.Unmarshal(trimmed, &chunk); err == nil && chunk != nil {
				if err := fn(chunk); err != nil {
					if errors.Is(err, ErrStopStream) {
						return nil
					}
					return err
				}
			}
		}

		if readErr != nil {
			if readErr == io.EOF {
				return nil
			}
			return domain.NewUpstreamError(0, "", fmt.Errorf("failed to read stream: %w", readErr))
		}
	}
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(httpReq, body != nil)
	return httpReq, nil
}

// setHeaders sets common request headers.
func (c *Client) setHeaders(req *http.Request, hasBody bool) {
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
}

func (c *Client) observe(endpoint string, status int, start time.Time) {
	if c.observer != nil {
		c.observer(endpoint, status, time.Since(start))
	}
}

func decodeObject(data []byte) (Object, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		// delete and copy answer 200 with an empty body
		return Object{}, nil
	}

	var result Object
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, domain.NewUpstreamError(0, "", fmt.Errorf("failed to unmarshal response: %w", err))
	}
	if result == nil {
		result = Object{}
	}
	return result, nil
}

// classifyTransportError maps a failed round trip to a connection failure
// when the host could not be reached, and to an upstream failure otherwise.
func classifyTransportError(err error) error {
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return domain.NewConnectionError(err)
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return domain.NewConnectionError(err)
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return domain.NewConnectionError(err)
	}
	return domain.NewUpstreamError(0, "", err)
}
