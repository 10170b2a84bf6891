package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// ThresholdTool handles the research_set_threshold MCP tool.
type ThresholdTool struct {
	target ThresholdSetter
}

// NewThresholdTool creates a ThresholdTool.
func NewThresholdTool(target ThresholdSetter) *ThresholdTool {
	return &ThresholdTool{target: target}
}

// Definition returns the MCP tool definition for research_set_threshold.
func (t *ThresholdTool) Definition() mcp.Tool {
	return mcp.NewTool("research_set_threshold",
		mcp.WithDescription(
			"Change the default confidence threshold for research_answer. "+
				"Higher values consult more sources before answering; 0 answers without probing. "+
				"Takes effect on the next call. Calls already running keep their threshold.",
		),
		mcp.WithNumber("threshold",
			mcp.Required(),
			mcp.Description("New threshold between 0 and 1"),
			mcp.Min(0),
			mcp.Max(1),
		),
	)
}

// Handle processes the research_set_threshold tool call.
func (t *ThresholdTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	v, ok := floatArg(req, "threshold")
	if !ok {
		return mcp.NewToolResultError("'threshold' is required and must be a number"), nil
	}
	previous := t.target.ConfidenceThreshold()
	if err := t.target.SetConfidenceThreshold(v); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Confidence threshold set to %.2f (was %.2f).", v, previous)), nil
}
