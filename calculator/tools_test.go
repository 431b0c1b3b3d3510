package calculator

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func callTool(t *testing.T, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()

	var handler server.ToolHandlerFunc
	for _, tool := range Tools() {
		if tool.Tool.Name == name {
			handler = tool.Handler
		}
	}
	require.NotNil(t, handler, "no handler registered for %q", name)

	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args

	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "unexpected content type %T", result.Content[0])
	return text.Text
}

func TestNames(t *testing.T) {
	want := []string{"add", "subtract", "multiply", "divide", "is_prime"}
	if diff := cmp.Diff(want, Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
}

func TestToolSchemas(t *testing.T) {
	for _, tool := range Tools() {
		t.Run(tool.Tool.Name, func(t *testing.T) {
			assert.NotEmpty(t, tool.Tool.Description)
			assert.Equal(t, "object", tool.Tool.InputSchema.Type)
			assert.NotEmpty(t, tool.Tool.Annotations.Title)

			params := []string{"a", "b"}
			if tool.Tool.Name == ToolIsPrime {
				params = []string{"n"}
			}
			assert.ElementsMatch(t, params, tool.Tool.InputSchema.Required)
			for _, p := range params {
				prop, ok := tool.Tool.InputSchema.Properties[p].(map[string]any)
				require.True(t, ok, "missing property %q", p)
				assert.Equal(t, "number", prop["type"])
				assert.NotEmpty(t, prop["description"])
			}
		})
	}
}

func TestIsPrimeSchemaRequiresInteger(t *testing.T) {
	tools := Tools()
	tool := tools[len(tools)-1].Tool
	require.Equal(t, ToolIsPrime, tool.Name)

	prop := tool.InputSchema.Properties["n"].(map[string]any)
	assert.Equal(t, 1.0, prop["multipleOf"])
}

func TestToolHandlers(t *testing.T) {
	tests := []struct {
		name    string
		tool    string
		args    map[string]any
		want    string
		isError bool
	}{
		{"add", ToolAdd, map[string]any{"a": 2.5, "b": 3.5}, "6", false},
		{"add fractional", ToolAdd, map[string]any{"a": 0.1, "b": 0.2}, "0.30000000000000004", false},
		{"subtract", ToolSubtract, map[string]any{"a": 10.0, "b": 4.5}, "5.5", false},
		{"multiply", ToolMultiply, map[string]any{"a": -3.0, "b": 4.0}, "-12", false},
		{"divide", ToolDivide, map[string]any{"a": 10.0, "b": 2.0}, "5", false},
		{"divide by zero", ToolDivide, map[string]any{"a": 5.0, "b": 0.0}, "Cannot divide by zero", true},
		{"zero divided by zero", ToolDivide, map[string]any{"a": 0.0, "b": 0.0}, "Cannot divide by zero", true},
		{"missing a", ToolAdd, map[string]any{"b": 1.0}, "parameter 'a' must be a number", true},
		{"string b", ToolMultiply, map[string]any{"a": 1.0, "b": "2"}, "parameter 'b' must be a number", true},
		{"no arguments", ToolSubtract, nil, "parameter 'a' must be a number", true},
		{"is_prime true", ToolIsPrime, map[string]any{"n": 29.0}, "true", false},
		{"is_prime false", ToolIsPrime, map[string]any{"n": 21.0}, "false", false},
		{"is_prime negative", ToolIsPrime, map[string]any{"n": -5.0}, "false", false},
		{"is_prime fractional", ToolIsPrime, map[string]any{"n": 7.5}, "parameter 'n' must be an integer", true},
		{"is_prime too large", ToolIsPrime, map[string]any{"n": 1e19}, "parameter 'n' must be an integer with magnitude below 2^53", true},
		{"is_prime rounded odd", ToolIsPrime, map[string]any{"n": float64(9007199254740997)}, "parameter 'n' must be an integer with magnitude below 2^53", true},
		{"is_prime 2^53", ToolIsPrime, map[string]any{"n": float64(1 << 53)}, "parameter 'n' must be an integer with magnitude below 2^53", true},
		{"is_prime negative 2^53", ToolIsPrime, map[string]any{"n": -float64(1 << 53)}, "parameter 'n' must be an integer with magnitude below 2^53", true},
		{"is_prime largest exact", ToolIsPrime, map[string]any{"n": float64(1<<53 - 1)}, "false", false}, // 6361 * 69431 * 20394401
		{"is_prime large prime", ToolIsPrime, map[string]any{"n": float64(9007199254740881)}, "true", false},
		{"is_prime missing", ToolIsPrime, map[string]any{}, "parameter 'n' must be an integer", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := callTool(t, tt.tool, tt.args)
			assert.Equal(t, tt.isError, result.IsError)
			assert.Equal(t, tt.want, resultText(t, result))
		})
	}
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "6", FormatNumber(6.0))
	assert.Equal(t, "-0.5", FormatNumber(-0.5))
	assert.Equal(t, "1e+21", FormatNumber(1e21))
	assert.Equal(t, "+Inf", FormatNumber(1/zero()))
}

func zero() float64 { return 0 }
