// Package rpc exposes the tool dispatcher over net/rpc with the JSON-RPC
// 1.0 codec, for internal clients that keep a TCP connection open.
package rpc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"sync"

	"github.com/labstack/gommon/log"

	"github.com/xiaot623/gogo/ollama-mcp/internal/domain"
	"github.com/xiaot623/gogo/ollama-mcp/internal/logging"
	"github.com/xiaot623/gogo/ollama-mcp/internal/service"
)

// ServiceName is the receiver name clients call, as in "Tools.Call".
const ServiceName = "Tools"

// Server accepts RPC connections.
type Server struct {
	rpcServer *rpc.Server
	logger    *log.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	listener net.Listener
	done     chan struct{}
}

// NewServer creates a new RPC server bound to the dispatcher.
func NewServer(svc *service.Service, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	ctx, cancel := context.WithCancel(context.Background())

	rpcServer := rpc.NewServer()
	handler := &Handler{service: svc, ctx: ctx}
	if err := rpcServer.RegisterName(ServiceName, handler); err != nil {
		cancel()
		return nil, fmt.Errorf("register rpc handler: %w", err)
	}

	return &Server{
		rpcServer: rpcServer,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}, nil
}

// Start begins accepting RPC connections on the given address. It returns
// nil once Shutdown closes the listener.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until it is closed.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	if s.ctx.Err() != nil {
		ln.Close()
		close(s.done)
		return nil
	}

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				close(s.done)
				return nil
			}
			s.logger.Warnf("rpc accept error: %v", err)
			continue
		}

		go s.ServeConn(conn)
	}
}

// ServeConn serves a single connection until the peer hangs up.
func (s *Server) ServeConn(conn io.ReadWriteCloser) {
	s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(conn))
}

// Shutdown stops accepting new connections and cancels in-flight calls.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()

	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return nil
	}

	if err := ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Handler implements the RPC methods.
type Handler struct {
	service *service.Service
	ctx     context.Context
}

// ListArgs is the (empty) argument of Tools.List.
type ListArgs struct{}

// ListReply carries the tool catalog.
type ListReply struct {
	Tools []domain.ToolDescriptor `json:"tools"`
}

// CallArgs names a tool and its arguments.
type CallArgs struct {
	Name      string           `json:"name"`
	Arguments domain.Arguments `json:"arguments"`
}

// CallReply wraps the tool result, a success value or an error envelope.
type CallReply struct {
	Result domain.ToolResult `json:"result"`
}

// List returns the tool catalog.
func (h *Handler) List(_ *ListArgs, reply *ListReply) error {
	if h.service == nil {
		return errors.New("tool handler not initialized")
	}
	reply.Tools = h.service.Tools()
	return nil
}

// Call runs one tool. Only a missing name or dispatcher is an RPC error.
func (h *Handler) Call(args *CallArgs, reply *CallReply) error {
	if args == nil || args.Name == "" {
		return errors.New("tool name is required")
	}
	if h.service == nil {
		return errors.New("tool handler not initialized")
	}

	reply.Result = h.service.HandleToolCall(h.ctx, args.Name, args.Arguments)
	return nil
}
