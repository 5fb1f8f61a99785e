package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/xiaot623/gogo/ollama-mcp/internal/config"
	transporthttp "github.com/xiaot623/gogo/ollama-mcp/internal/transport/http"
	"github.com/xiaot623/gogo/ollama-mcp/internal/transport/rpc"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP, JSON-RPC and websocket server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

// serve runs the listeners until ctx is cancelled or one of them fails, then
// shuts everything down.
func serve(ctx context.Context, cfg *config.Config) (err error) {
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			err = multierror.Append(err, closeErr).ErrorOrNil()
		}
	}()

	e := transporthttp.NewServer(a.service, transporthttp.Options{
		Logger:           a.logger,
		Metrics:          a.metrics,
		WSMaxMessageSize: cfg.WSMaxMessageSize,
		WSWriteTimeout:   cfg.WSWriteTimeout(),
	})

	var rpcServer *rpc.Server
	var rpcListener net.Listener
	if addr := cfg.RPCAddr(); addr != "" {
		rpcServer, err = rpc.NewServer(a.service, a.logger)
		if err != nil {
			return err
		}
		rpcListener, err = net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("failed to listen for rpc: %w", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Infof("HTTP server listening on %s", cfg.MCPAddr())
		if err := e.Start(cfg.MCPAddr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if rpcServer != nil {
		g.Go(func() error {
			a.logger.Infof("RPC server listening on %s", rpcListener.Addr())
			if err := rpcServer.Serve(rpcListener); err != nil {
				return fmt.Errorf("rpc server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var result *multierror.Error
		if err := e.Shutdown(shutdownCtx); err != nil {
			result = multierror.Append(result, fmt.Errorf("http shutdown: %w", err))
		}
		if rpcServer != nil {
			if err := rpcServer.Shutdown(shutdownCtx); err != nil {
				result = multierror.Append(result, fmt.Errorf("rpc shutdown: %w", err))
			}
		}
		return result.ErrorOrNil()
	})

	return g.Wait()
}
