// Package mcptest implements helper functions for testing MCP tool hosts.
package mcptest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/zillow/mcp-calculator/server"
)

// Server runs a server.Host over in-memory pipes and connects an MCP client
// to it.
type Server struct {
	name  string
	tools []mcpserver.ServerTool

	ctx    context.Context
	cancel func()

	serverReader *io.PipeReader
	serverWriter *io.PipeWriter
	clientReader *io.PipeReader
	clientWriter *io.PipeWriter

	logs syncBuffer

	transport transport.Interface
	client    *client.Client

	wg sync.WaitGroup
}

// NewServer starts a new host with the provided tools and returns the server instance.
func NewServer(t *testing.T, tools ...mcpserver.ServerTool) (*Server, error) {
	server, err := startServer(t, tools)
	if err != nil {
		return nil, err
	}
	return server, nil
}

// startServer releases the context and pipes when Start fails, and returns
// the closed server alongside the error.
func startServer(t *testing.T, tools []mcpserver.ServerTool) (*Server, error) {
	server := NewUnstartedServer(t)
	server.AddTools(tools...)

	if err := server.Start(); err != nil {
		server.Close()
		return server, err
	}

	return server, nil
}

// NewUnstartedServer creates a new host named after the test, but does not start it.
// Useful for tests where you need to add tools before starting the server.
func NewUnstartedServer(t *testing.T) *Server {
	server := &Server{
		name: t.Name(),
	}

	server.ctx, server.cancel = context.WithCancel(context.Background())

	// Set up pipes for client-server communication
	server.serverReader, server.clientWriter = io.Pipe()
	server.clientReader, server.serverWriter = io.Pipe()

	return server
}

// AddTools adds multiple tools to an unstarted server.
func (s *Server) AddTools(tools ...mcpserver.ServerTool) {
	s.tools = append(s.tools, tools...)
}

// AddTool adds a tool to an unstarted server.
func (s *Server) AddTool(tool mcp.Tool, handler mcpserver.ToolHandlerFunc) {
	s.tools = append(s.tools, mcpserver.ServerTool{
		Tool:    tool,
		Handler: handler,
	})
}

// Start starts the host in a goroutine and initializes the client. Make sure
// to defer Close() after Start(). When using NewServer(), the returned server
// is already started.
func (s *Server) Start() error {
	logger := log.New(&s.logs)
	logger.SetLevel(log.DebugLevel)

	host, err := server.New(server.Config{
		Name:    s.name,
		Version: "1.0.0",
		Logger:  logger,
		Tools:   s.tools,
	})
	if err != nil {
		return fmt.Errorf("server.New(): %w", err)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		if err := host.Listen(s.ctx, s.serverReader, s.serverWriter); err != nil && s.ctx.Err() == nil {
			logger.Error("Host.Listen failed", "err", err)
		}
	}()

	s.transport = transport.NewIO(s.clientReader, s.clientWriter, io.NopCloser(bytes.NewReader(nil)))
	if err := s.transport.Start(s.ctx); err != nil {
		return fmt.Errorf("transport.Start(): %w", err)
	}

	s.client = client.NewClient(s.transport)

	var initReq mcp.InitializeRequest
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "mcptest", Version: "1.0.0"}
	if _, err := s.client.Initialize(s.ctx, initReq); err != nil {
		return fmt.Errorf("client.Initialize(): %w", err)
	}

	return nil
}

// Close stops the server and releases the pipes.
func (s *Server) Close() {
	if s.transport != nil {
		s.transport.Close()
		s.transport = nil
		s.client = nil
	}

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	// Unblock any pending read before waiting on the host goroutine
	s.serverReader.Close()
	s.clientReader.Close()

	s.wg.Wait()

	s.serverWriter.Close()
	s.clientWriter.Close()
}

// Client returns an MCP client connected to the server.
// The client is already initialized, i.e. you do _not_ need to call Client.Initialize().
func (s *Server) Client() *client.Client {
	return s.client
}

// Logs returns everything the host has logged so far.
func (s *Server) Logs() string {
	return s.logs.String()
}

// ResultText concatenates the text content of a tool result.
func ResultText(result *mcp.CallToolResult) (string, error) {
	var b strings.Builder

	for _, content := range result.Content {
		text, ok := content.(mcp.TextContent)
		if !ok {
			return "", fmt.Errorf("unsupported content type: %T", content)
		}
		b.WriteString(text.Text)
	}

	return b.String(), nil
}

// syncBuffer guards a bytes.Buffer shared by the host goroutine and the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
