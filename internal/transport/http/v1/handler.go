// Package v1 provides the HTTP handlers of the tool server.
package v1

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/xiaot623/gogo/ollama-mcp/internal/domain"
	"github.com/xiaot623/gogo/ollama-mcp/internal/logging"
	"github.com/xiaot623/gogo/ollama-mcp/internal/metrics"
	"github.com/xiaot623/gogo/ollama-mcp/internal/service"
	"github.com/xiaot623/gogo/ollama-mcp/internal/tools"
)

const (
	defaultWSMaxMessageSize = 1 << 20
	defaultWSWriteTimeout   = 10 * time.Second
	defaultWSPongWait       = 60 * time.Second
)

// Options configures a Handler.
type Options struct {
	Logger           *log.Logger
	Metrics          *metrics.Metrics
	WSMaxMessageSize int64
	WSWriteTimeout   time.Duration
	// WSPongWait is how long an idle connection may go without a frame or
	// pong. The server pings at nine tenths of it.
	WSPongWait time.Duration
}

// Handler handles HTTP requests. A nil service is allowed and reported as
// not initialized by the endpoints that need it.
type Handler struct {
	service *service.Service
	logger  *log.Logger
	metrics *metrics.Metrics

	upgrader         websocket.Upgrader
	wsMaxMessageSize int64
	wsWriteTimeout   time.Duration
	wsPongWait       time.Duration
}

// NewHandler creates a new handler.
func NewHandler(svc *service.Service, opts Options) *Handler {
	h := &Handler{
		service:          svc,
		logger:           opts.Logger,
		metrics:          opts.Metrics,
		wsMaxMessageSize: opts.WSMaxMessageSize,
		wsWriteTimeout:   opts.WSWriteTimeout,
		wsPongWait:       opts.WSPongWait,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	if h.logger == nil {
		h.logger = logging.Discard()
	}
	if h.wsMaxMessageSize <= 0 {
		h.wsMaxMessageSize = defaultWSMaxMessageSize
	}
	if h.wsWriteTimeout <= 0 {
		h.wsWriteTimeout = defaultWSWriteTimeout
	}
	if h.wsPongWait <= 0 {
		h.wsPongWait = defaultWSPongWait
	}
	return h
}

// RegisterRoutes registers the routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Root)
	e.GET("/health", h.Health)

	e.POST("/mcp/tools/list", h.ListTools)
	e.POST("/mcp/tools/call", h.CallTool)

	e.POST("/rpc", h.JSONRPC)
	e.GET("/ws", h.HandleWebSocket)
}

// Root describes the server.
func (h *Handler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"name":        service.Name,
		"version":     service.Version,
		"status":      "running",
		"tools_count": len(h.tools()),
	})
}

// Health reports the upstream health check.
func (h *Handler) Health(c echo.Context) error {
	if h.service == nil {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  string(domain.HealthStatusUnhealthy),
			"message": "server not initialized",
		})
	}
	return c.JSON(http.StatusOK, h.service.CheckHealth(c.Request().Context()))
}

func (h *Handler) tools() []domain.ToolDescriptor {
	if h.service == nil {
		return tools.Catalog()
	}
	return h.service.Tools()
}
