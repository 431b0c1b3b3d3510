package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/sync/errgroup"
)

// parseErrorResponse is written for lines that are not valid JSON. The id is
// always null since no request id could be recovered.
type parseErrorResponse struct {
	JSONRPC string `json:"jsonrpc"`
	ID      any    `json:"id"`
	Error   struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Listen reads newline-delimited JSON-RPC messages from in and writes one
// response line to out for every request, in order. A message is fully
// handled before the next one is read. Listen returns nil when in reaches EOF
// and ctx.Err() when ctx is cancelled.
func (h *Host) Listen(ctx context.Context, in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)

	h.logger.Info("listening", "name", h.name, "version", h.version, "tools", h.tools)
	defer h.logger.Debug("listener stopped")

	for {
		line, readErr := h.readLine(ctx, reader)
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			if ctx.Err() == nil {
				h.logger.Error("error reading input", "err", readErr)
			}
			return readErr
		}

		if strings.TrimSpace(line) != "" {
			if err := h.processMessage(ctx, line, out); err != nil {
				h.logger.Error("error handling message", "err", err)
				return err
			}
		}

		if readErr != nil {
			return nil
		}
	}
}

// readLine makes a blocking read cancellable. A final unterminated line is
// returned together with io.EOF.
func (h *Host) readLine(ctx context.Context, reader *bufio.Reader) (string, error) {
	type readResult struct {
		line string
		err  error
	}
	readChan := make(chan readResult, 1)

	go func() {
		line, err := reader.ReadString('\n')
		readChan <- readResult{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-readChan:
		return r.line, r.err
	}
}

// processMessage handles a single message and writes the response
func (h *Host) processMessage(ctx context.Context, line string, writer io.Writer) error {
	var rawMessage json.RawMessage
	if err := json.Unmarshal([]byte(line), &rawMessage); err != nil {
		h.logger.Warn("received malformed message", "err", err)
		resp := parseErrorResponse{JSONRPC: mcp.JSONRPC_VERSION}
		resp.Error.Code = mcp.PARSE_ERROR
		resp.Error.Message = "Parse error"
		return h.writeResponse(resp, writer)
	}

	response := h.HandleMessage(ctx, rawMessage)

	// Notifications don't have responses
	if response == nil {
		return nil
	}
	if err := h.writeResponse(response, writer); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}

func (h *Host) writeResponse(response any, writer io.Writer) error {
	responseBytes, err := json.Marshal(response)
	if err != nil {
		return err
	}

	// Write response followed by newline
	if _, err := fmt.Fprintf(writer, "%s\n", responseBytes); err != nil {
		return err
	}
	return nil
}

// ServeStdio serves on os.Stdin and os.Stdout until stdin closes, ctx is
// cancelled, the process receives SIGINT or SIGTERM, or the parent process
// exits. Shutdown for any of those reasons returns nil.
func (h *Host) ServeStdio(ctx context.Context) error {
	return h.serve(ctx, os.Stdin, os.Stdout)
}

func (h *Host) serve(ctx context.Context, in io.Reader, out io.Writer) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	if h.watch > 0 {
		g.Go(func() error {
			return WatchParent(gctx, h.watch, h.parentPID)
		})
	}

	g.Go(func() error {
		// stdin EOF ends the session; release the watchdog too
		defer cancel()
		return h.Listen(gctx, in, out)
	})

	err := g.Wait()
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		h.logger.Info("shutting down")
		return nil
	case errors.Is(err, ErrParentExited):
		h.logger.Warn("parent process exited, shutting down")
		return nil
	default:
		return err
	}
}
