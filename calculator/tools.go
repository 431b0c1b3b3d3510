package calculator

import (
	"context"
	"errors"
	"math"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Tool names as advertised to MCP clients.
const (
	ToolAdd      = "add"
	ToolSubtract = "subtract"
	ToolMultiply = "multiply"
	ToolDivide   = "divide"
	ToolIsPrime  = "is_prime"
)

// maxExactInt is 2^53. JSON numbers reach handlers as float64, which cannot
// represent every integer at or beyond this magnitude.
const maxExactInt = float64(1 << 53)

type binaryFunc func(a, b float64) (float64, error)

func total(fn func(a, b float64) float64) binaryFunc {
	return func(a, b float64) (float64, error) {
		return fn(a, b), nil
	}
}

// Tools returns the registration table for every calculator operation, in a
// stable order. Each entry pairs the tool's schema with its handler and can be
// handed directly to server.MCPServer.AddTools.
func Tools() []server.ServerTool {
	return []server.ServerTool{
		binaryTool(ToolAdd, "Add", "Adds two numbers",
			"First number", "Second number", total(Add)),
		binaryTool(ToolSubtract, "Subtract", "Subtracts the second number from the first",
			"Number to subtract from", "Number to subtract", total(Subtract)),
		binaryTool(ToolMultiply, "Multiply", "Multiplies two numbers",
			"First number", "Second number", total(Multiply)),
		binaryTool(ToolDivide, "Divide", "Divides the first number by the second",
			"First number (dividend)", "Second number (divisor)", Divide),
		{
			Tool: mcp.NewTool(ToolIsPrime,
				mcp.WithDescription("Checks if a number is prime"),
				mcp.WithTitleAnnotation("Is prime"),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithIdempotentHintAnnotation(true),
				mcp.WithDestructiveHintAnnotation(false),
				mcp.WithOpenWorldHintAnnotation(false),
				mcp.WithNumber("n",
					mcp.Required(),
					mcp.Description("Integer to test for primality"),
					mcp.MultipleOf(1),
				),
			),
			Handler: HandleIsPrime,
		},
	}
}

// Names returns the tool names from Tools, in registration order.
func Names() []string {
	tools := Tools()
	names := make([]string, 0, len(tools))
	for _, t := range tools {
		names = append(names, t.Tool.Name)
	}
	return names
}

func binaryTool(name, title, description, aDesc, bDesc string, fn binaryFunc) server.ServerTool {
	return server.ServerTool{
		Tool: mcp.NewTool(name,
			mcp.WithDescription(description),
			mcp.WithTitleAnnotation(title),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithDestructiveHintAnnotation(false),
			mcp.WithOpenWorldHintAnnotation(false),
			mcp.WithNumber("a", mcp.Required(), mcp.Description(aDesc)),
			mcp.WithNumber("b", mcp.Required(), mcp.Description(bDesc)),
		),
		Handler: binaryHandler(fn),
	}
}

func binaryHandler(fn binaryFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		a, b, err := extractArgs(request.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		result, err := fn(a, b)
		if err != nil {
			return toolError(err)
		}
		return formatResult(result), nil
	}
}

// HandleIsPrime is the tool handler for is_prime.
func HandleIsPrime(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n, err := extractInt(request.GetArguments(), "n")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(strconv.FormatBool(IsPrime(n))), nil
}

// Helper function to extract and validate number arguments
func extractArgs(args map[string]any) (float64, float64, error) {
	a, err := extractFloat(args, "a")
	if err != nil {
		return 0, 0, err
	}
	b, err := extractFloat(args, "b")
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

func extractFloat(args map[string]any, key string) (float64, error) {
	v, ok := args[key].(float64)
	if !ok {
		return 0, &CalculationError{
			message: "parameter '" + key + "' must be a number",
		}
	}
	return v, nil
}

// extractInt accepts only JSON numbers with no fractional part. Values like
// 7.5 are rejected instead of being truncated, and magnitudes of 2^53 or more
// are rejected because the decoded float may already differ from what the
// client sent.
func extractInt(args map[string]any, key string) (int64, error) {
	v, ok := args[key].(float64)
	if !ok || math.Trunc(v) != v {
		return 0, &CalculationError{
			message: "parameter '" + key + "' must be an integer",
		}
	}
	if math.Abs(v) >= maxExactInt {
		return 0, &CalculationError{
			message: "parameter '" + key + "' must be an integer with magnitude below 2^53",
		}
	}
	return int64(v), nil
}

func toolError(err error) (*mcp.CallToolResult, error) {
	var calcErr *CalculationError
	if errors.As(err, &calcErr) {
		return mcp.NewToolResultError(calcErr.Error()), nil
	}
	return nil, err
}

// Helper function to format result
func formatResult(result float64) *mcp.CallToolResult {
	return mcp.NewToolResultText(FormatNumber(result))
}

// FormatNumber renders v in its shortest round-trip form, so 6.0 is "6" and
// 0.1+0.2 is "0.30000000000000004".
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
