package v1

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

const sendBuffer = 16

// wsConn is one websocket client. Only writePump writes to conn.
type wsConn struct {
	conn         *websocket.Conn
	send         chan []byte
	done         chan struct{}
	writeTimeout time.Duration
	pongWait     time.Duration
}

// HandleWebSocket upgrades the connection and serves JSON-RPC requests, one
// per text frame, until the client goes away.
func (h *Handler) HandleWebSocket(c echo.Context) error {
	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader has already replied
		h.logger.Warnf("failed to upgrade websocket: %v", err)
		return nil
	}

	h.metrics.WebSocketOpened()
	defer h.metrics.WebSocketClosed()

	conn := &wsConn{
		conn:         ws,
		send:         make(chan []byte, sendBuffer),
		done:         make(chan struct{}),
		writeTimeout: h.wsWriteTimeout,
		pongWait:     h.wsPongWait,
	}
	ws.SetReadLimit(h.wsMaxMessageSize)

	go conn.writePump(h.logger)
	h.readPump(c.Request().Context(), conn)
	close(conn.send)
	<-conn.done
	return nil
}

// readPump handles frames in order. Responses are queued for writePump.
// The read deadline is armed before each read, so a tool call may run
// longer than the pong wait without dropping the connection.
func (h *Handler) readPump(ctx context.Context, conn *wsConn) {
	conn.conn.SetPongHandler(func(string) error {
		return conn.conn.SetReadDeadline(time.Now().Add(conn.pongWait))
	})

	for {
		conn.conn.SetReadDeadline(time.Now().Add(conn.pongWait))
		_, message, err := conn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.logger.Warnf("websocket read error: %v", err)
			}
			return
		}

		_, resp := h.handleRPC(ctx, message)
		data, err := json.Marshal(resp)
		if err != nil {
			h.logger.Errorf("failed to encode websocket response: %v", err)
			data, _ = json.Marshal(rpcFailure(resp.ID, CodeServerError, err.Error()))
		}

		select {
		case conn.send <- data:
		case <-conn.done:
			return
		}
	}
}

// writePump drains the send queue and keeps the connection alive with pings.
func (c *wsConn) writePump(logger *log.Logger) {
	ticker := time.NewTicker(c.pongWait * 9 / 10)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		close(c.done)
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warnf("failed to write websocket message: %v", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
