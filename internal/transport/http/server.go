// Package http provides the HTTP server of the tool server.
package http

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/xiaot623/gogo/ollama-mcp/internal/metrics"
	"github.com/xiaot623/gogo/ollama-mcp/internal/service"
	v1 "github.com/xiaot623/gogo/ollama-mcp/internal/transport/http/v1"
)

// Options configures the HTTP server.
type Options struct {
	Logger  *log.Logger
	Metrics *metrics.Metrics

	WSMaxMessageSize int64
	WSWriteTimeout   time.Duration
}

// NewServer creates the HTTP server exposing the tool catalog, tool calls,
// JSON-RPC over HTTP and websocket, and optionally Prometheus metrics.
func NewServer(svc *service.Service, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	if opts.Logger != nil {
		e.Logger = opts.Logger
	}

	// Middleware
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
		Output: e.Logger.Output(),
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	handler := v1.NewHandler(svc, v1.Options{
		Logger:           opts.Logger,
		Metrics:          opts.Metrics,
		WSMaxMessageSize: opts.WSMaxMessageSize,
		WSWriteTimeout:   opts.WSWriteTimeout,
	})
	handler.RegisterRoutes(e)

	if opts.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(opts.Metrics.Handler()))
	}

	return e
}
