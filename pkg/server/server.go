// Package server provides the MCP server exposing a built transit map.
package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/NERVsystems/mapfeatures/pkg/tools"
	"github.com/NERVsystems/mapfeatures/pkg/version"
)

const (
	// ServerName is the name of the MCP server
	ServerName = "mapfeatures-mcp-server"
)

// Server encapsulates the MCP server with the map feature tools.
type Server struct {
	srv      *mcpserver.MCPServer
	registry *tools.Registry
	logger   *slog.Logger
	doneCh   chan struct{}
	running  bool
	mu       sync.Mutex
	cancel   context.CancelFunc
}

// NewServer creates an MCP server answering queries over the features held
// by store.
func NewServer(store *tools.Store, logger *slog.Logger) (*Server, error) {
	if store == nil {
		return nil, errors.New("feature store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("initializing map features MCP server",
		"name", ServerName,
		"version", version.BuildVersion,
		"zooms", store.Zooms())

	srv := mcpserver.NewMCPServer(
		ServerName,
		version.BuildVersion,
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithRecovery(),
	)

	registry := tools.NewRegistry(logger, store)
	registry.RegisterTools(srv)

	return &Server{
		srv:      srv,
		registry: registry,
		logger:   logger,
		doneCh:   make(chan struct{}),
	}, nil
}

// Run serves MCP over stdin/stdout until the input ends or Shutdown is
// called.
func (s *Server) Run() error {
	return s.RunWithContext(context.Background())
}

// RunWithContext serves MCP over stdin/stdout until ctx is canceled, the
// input ends or Shutdown is called.
func (s *Server) RunWithContext(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve reads JSON-RPC messages from in and writes responses to out. It
// blocks until in is exhausted, ctx is canceled or Shutdown is called.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	s.running = true
	s.cancel = cancel
	s.mu.Unlock()

	defer func() {
		cancel()
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		close(s.doneCh)
	}()

	stdio := mcpserver.NewStdioServer(s.srv)
	err := stdio.Listen(ctx, in, out)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, context.Canceled) {
		s.logger.Error("server error", "error", err)
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

// Shutdown initiates a graceful shutdown of the server.
// It does not block and returns immediately.
func (s *Server) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.cancel()
}

// WaitForShutdown blocks until a running server has fully shut down.
func (s *Server) WaitForShutdown() {
	<-s.doneCh
}

// GetMCPServer returns the underlying MCP server instance
func (s *Server) GetMCPServer() *mcpserver.MCPServer {
	return s.srv
}

// ToolNames returns the names of the registered tools
func (s *Server) ToolNames() []string {
	return s.registry.GetToolNames()
}
