// Package tools implements the research MCP tool handlers.
//
// Each tool receives its dependencies through its constructor, exposes
// Definition() for registration and Handle() for calls. Caller mistakes are
// reported as tool errors, never as Go errors.
package tools

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/HendryAvila/hoofy-research/internal/research"
)

// Researcher answers questions. *research.Orchestrator satisfies it.
type Researcher interface {
	Answer(ctx context.Context, question string, opts ...research.CallOption) (*research.ResearchResult, error)
}

// ThresholdSetter changes the default confidence threshold.
type ThresholdSetter interface {
	ConfidenceThreshold() float64
	SetConfidenceThreshold(v float64) error
}

// notifier sends a notification to the client of the current request.
type notifier func(ctx context.Context, method string, params map[string]any) error

// clientNotifier delivers through the MCP server bound to ctx.
func clientNotifier(ctx context.Context, method string, params map[string]any) error {
	s := server.ServerFromContext(ctx)
	if s == nil {
		return errors.New("no MCP server in context")
	}
	return s.SendNotificationToClient(ctx, method, params)
}

// floatArg extracts a number argument. ok is false when the key is missing
// or not a number (JSON numbers are float64).
func floatArg(req mcp.CallToolRequest, key string) (v float64, ok bool) {
	v, ok = req.GetArguments()[key].(float64)
	return v, ok
}

// progressToken returns the caller's progress token, or nil if it sent none.
func progressToken(req mcp.CallToolRequest) mcp.ProgressToken {
	if req.Params.Meta == nil {
		return nil
	}
	return req.Params.Meta.ProgressToken
}
