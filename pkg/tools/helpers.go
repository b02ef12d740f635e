// Package tools provides the MCP tools that query a built transit map.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/mapfeatures/pkg/core"
)

// ErrorResponse returns a tool result carrying a plain error message
func ErrorResponse(message string) *mcp.CallToolResult {
	return mcp.NewToolResultError(message)
}

// errorResult converts a handler error to a tool result, keeping the code
// and context of build errors
func errorResult(err error) *mcp.CallToolResult {
	var be *core.BuildError
	if errors.As(err, &be) {
		return be.ToMCPResult()
	}
	return ErrorResponse(fmt.Sprintf("Failed to process request: %v", err))
}

// InputParser is a generic function to parse request arguments into a strongly typed struct
func InputParser[T any](req mcp.CallToolRequest) (T, *mcp.CallToolResult, error) {
	var input T

	// Convert the arguments to JSON
	inputJSON, err := json.Marshal(req.Params.Arguments)
	if err != nil {
		return input, ErrorResponse(fmt.Sprintf("Invalid input format: %v", err)), err
	}

	// Parse into the specified type
	if err := json.Unmarshal(inputJSON, &input); err != nil {
		return input, ErrorResponse(fmt.Sprintf("Failed to parse input: %v", err)), err
	}

	return input, nil, nil
}

// WithParsedInput is a higher-order function that handles request parsing and error handling
func WithParsedInput[T any](
	logger *slog.Logger,
	handlerName string,
	handler func(ctx context.Context, input T, logger *slog.Logger) (interface{}, error),
) func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("tool", handlerName)

	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		// Parse the input
		input, errResult, err := InputParser[T](req)
		if err != nil {
			logger.Error("failed to parse input", "error", err)
			return errResult, nil
		}

		// Call the handler with the parsed input
		result, err := handler(ctx, input, logger)
		if err != nil {
			logger.Error("handler error", "error", err)
			return errorResult(err), nil
		}

		// Marshal the result
		resultBytes, err := json.Marshal(result)
		if err != nil {
			logger.Error("failed to marshal result", "error", err)
			return ErrorResponse("Failed to generate result"), nil
		}

		return mcp.NewToolResultText(string(resultBytes)), nil
	}
}

// ValidateRadius validates that a radius is positive and within the specified maximum
func ValidateRadius(radius, maxRadius float64) error {
	if radius <= 0 {
		return core.Errorf(core.ErrInvalidInput, "radius must be greater than 0, got %f", radius)
	}
	if maxRadius > 0 && radius > maxRadius {
		return core.Errorf(core.ErrInvalidInput, "radius must be less than or equal to %f, got %f", maxRadius, radius)
	}
	return nil
}
