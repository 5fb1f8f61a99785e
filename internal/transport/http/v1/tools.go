package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/ollama-mcp/internal/domain"
)

type toolCallRequest struct {
	Name      string           `json:"name"`
	Arguments domain.Arguments `json:"arguments"`
}

// ListTools returns the tool catalog.
func (h *Handler) ListTools(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"tools": h.tools()})
}

// CallTool runs one tool. Tool failures are part of a 200 response; only a
// missing name or a missing dispatcher fail the request.
func (h *Handler) CallTool(c echo.Context) error {
	var req toolCallRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "tool name is required"})
	}
	if h.service == nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "tool handler not initialized"})
	}

	result := h.service.HandleToolCall(c.Request().Context(), req.Name, req.Arguments)
	return c.JSON(http.StatusOK, map[string]any{"result": result})
}
