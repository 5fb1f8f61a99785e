package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func newCallCommand() *cobra.Command {
	var (
		addr    string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "call <tool> [json-arguments]",
		Short: "Call a tool on a running server over websocket",
		Example: `  ollama-mcp call ollama_list_models
  ollama-mcp call ollama_generate '{"model":"llama3.2","prompt":"hi"}'`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			arguments := json.RawMessage(`{}`)
			if len(args) == 2 {
				if !json.Valid([]byte(args[1])) {
					return errors.New("arguments must be valid JSON")
				}
				arguments = json.RawMessage(args[1])
			}

			client, err := dialTools(addr)
			if err != nil {
				return err
			}
			defer client.Close()

			result, err := client.Call(args[0], arguments, timeout)
			if err != nil {
				return err
			}
			formatted, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(formatted))
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "ws://localhost:4838/ws", "websocket server address")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "time to wait for the response")
	return cmd
}

type rpcCall struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type rpcReply struct {
	ID     string          `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// toolsClient speaks JSON-RPC to the websocket endpoint.
type toolsClient struct {
	conn *websocket.Conn
}

func dialTools(addr string) (*toolsClient, error) {
	conn, _, err := websocket.DefaultDialer.Dial(addr, nil)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	return &toolsClient{conn: conn}, nil
}

func (c *toolsClient) Close() error {
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return c.conn.Close()
}

// Call sends one tools/call request and returns the tool result.
func (c *toolsClient) Call(name string, arguments json.RawMessage, timeout time.Duration) (json.RawMessage, error) {
	req := rpcCall{
		JSONRPC: "2.0",
		ID:      "req_" + uuid.NewString(),
		Method:  "tools/call",
		Params: map[string]any{
			"name":      name,
			"arguments": arguments,
		},
	}
	if err := c.conn.WriteJSON(req); err != nil {
		return nil, fmt.Errorf("write request: %w", err)
	}

	deadline := time.Now().Add(timeout)
	for {
		if err := c.conn.SetReadDeadline(deadline); err != nil {
			return nil, err
		}
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}

		var reply rpcReply
		if err := json.Unmarshal(data, &reply); err != nil {
			return nil, fmt.Errorf("unmarshal response: %w", err)
		}
		if reply.ID != req.ID {
			continue
		}
		if reply.Error != nil {
			return nil, fmt.Errorf("rpc error %d: %s", reply.Error.Code, reply.Error.Message)
		}

		var wrapped struct {
			Result json.RawMessage `json:"result"`
		}
		if err := json.Unmarshal(reply.Result, &wrapped); err != nil {
			return nil, fmt.Errorf("unmarshal result: %w", err)
		}
		return wrapped.Result, nil
	}
}
