// Package server hosts a set of MCP tools behind a line-delimited JSON-RPC
// loop on stdin/stdout. Protocol dispatch is delegated to mcp-go; this
// package owns the streams, the logger and the process lifecycle.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Config carries everything New needs to assemble a Host. All wiring is
// explicit: nothing is looked up from globals.
type Config struct {
	// Name and Version are reported to clients during initialize.
	Name    string
	Version string

	// Instructions is optional free text returned from initialize.
	Instructions string

	// Logger receives all diagnostics. It must not write to stdout.
	// Defaults to an info-level logger on stderr.
	Logger *log.Logger

	// Tools is the registration table served by the host.
	Tools []mcpserver.ServerTool

	// ParentWatchInterval is how often ServeStdio checks whether the
	// launching process is still alive. Zero disables the watchdog.
	ParentWatchInterval time.Duration
}

// Host serves a fixed set of tools over a line-delimited transport.
type Host struct {
	name      string
	version   string
	mcp       *mcpserver.MCPServer
	logger    *log.Logger
	tools     []string
	watch     time.Duration
	parentPID func() int
}

// New validates cfg and assembles the MCP server, tool registry and logger.
func New(cfg Config) (*Host, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidConfig)
	}
	if cfg.ParentWatchInterval < 0 {
		return nil, fmt.Errorf("%w: negative parent watch interval %s", ErrInvalidConfig, cfg.ParentWatchInterval)
	}
	if len(cfg.Tools) == 0 {
		return nil, ErrNoTools
	}

	version := cfg.Version
	if version == "" {
		version = "dev"
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Level:           log.InfoLevel,
		})
	}

	names := make([]string, 0, len(cfg.Tools))
	seen := make(map[string]bool, len(cfg.Tools))
	for _, t := range cfg.Tools {
		if t.Tool.Name == "" || t.Handler == nil {
			return nil, fmt.Errorf("%w: tool %q has no name or handler", ErrInvalidConfig, t.Tool.Name)
		}
		if seen[t.Tool.Name] {
			return nil, fmt.Errorf("%w: duplicate tool %q", ErrInvalidConfig, t.Tool.Name)
		}
		seen[t.Tool.Name] = true
		names = append(names, t.Tool.Name)
	}

	opts := []mcpserver.ServerOption{
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithToolHandlerMiddleware(loggingMiddleware(logger)),
		mcpserver.WithRecovery(),
	}
	if cfg.Instructions != "" {
		opts = append(opts, mcpserver.WithInstructions(cfg.Instructions))
	}

	s := mcpserver.NewMCPServer(cfg.Name, version, opts...)
	s.AddTools(cfg.Tools...)

	return &Host{
		name:      cfg.Name,
		version:   version,
		mcp:       s,
		logger:    logger,
		tools:     names,
		watch:     cfg.ParentWatchInterval,
		parentPID: os.Getppid,
	}, nil
}

// Tools returns the registered tool names in registration order.
func (h *Host) Tools() []string {
	return append([]string(nil), h.tools...)
}

// HandleMessage dispatches a single JSON-RPC message. It returns nil for
// notifications.
func (h *Host) HandleMessage(ctx context.Context, message json.RawMessage) mcp.JSONRPCMessage {
	return h.mcp.HandleMessage(ctx, message)
}
