package server

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// loggingMiddleware tags each tool call with a fresh call id and logs its
// outcome and duration.
func loggingMiddleware(logger *log.Logger) mcpserver.ToolHandlerMiddleware {
	return func(next mcpserver.ToolHandlerFunc) mcpserver.ToolHandlerFunc {
		return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			callLogger := logger.With("tool", request.Params.Name, "call_id", uuid.NewString())
			callLogger.Debug("tool call", "arguments", request.GetArguments())

			start := time.Now()
			result, err := next(ctx, request)
			elapsed := time.Since(start)

			switch {
			case err != nil:
				callLogger.Error("tool call failed", "err", err, "duration", elapsed)
			case result != nil && result.IsError:
				callLogger.Warn("tool call returned an error result", "duration", elapsed)
			default:
				callLogger.Info("tool call completed", "duration", elapsed)
			}
			return result, err
		}
	}
}
