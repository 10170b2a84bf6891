package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/HendryAvila/hoofy-research/internal/report"
	"github.com/HendryAvila/hoofy-research/internal/research"
)

// Output formats for research_answer.
const (
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// AnswerTool handles the research_answer MCP tool.
type AnswerTool struct {
	researcher Researcher
	logger     *zap.Logger
	notify     notifier
}

// NewAnswerTool creates an AnswerTool. A nil logger discards output.
func NewAnswerTool(r Researcher, logger *zap.Logger) *AnswerTool {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnswerTool{researcher: r, logger: logger, notify: clientNotifier}
}

// Definition returns the MCP tool definition for research_answer.
func (t *AnswerTool) Definition() mcp.Tool {
	return mcp.NewTool("research_answer",
		mcp.WithDescription(
			"Answer a question about the current project from local knowledge. "+
				"Sources are probed in priority order (project files, knowledge graph, environment) "+
				"and the cascade stops as soon as the combined confidence reaches the threshold. "+
				"When local sources are not enough the result says needs_web_search and suggests queries; "+
				"run those searches yourself. Nothing is written by this tool.",
		),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The question to research, in natural language"),
		),
		mcp.WithNumber("confidence_threshold",
			mcp.Description("Override the threshold for this call only, between 0 and 1 (default: server setting)"),
			mcp.Min(0),
			mcp.Max(1),
		),
		mcp.WithString("detail_level",
			mcp.Description(
				"'summary' (answer and confidence only), 'standard' (one line per source), "+
					"'full' (every source with its evidence). Defaults to 'standard'. Markdown only.",
			),
			mcp.Enum(report.DetailLevelValues()...),
		),
		mcp.WithString("format",
			mcp.Description("'markdown' (default) or 'json' for the raw result"),
			mcp.Enum(FormatMarkdown, FormatJSON),
		),
		mcp.WithBoolean("parallel",
			mcp.Description("Probe all sources at once. The result is the same as a sequential run."),
		),
	)
}

// Handle processes the research_answer tool call.
func (t *AnswerTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question := req.GetString("question", "")

	var opts []research.CallOption
	if v, ok := floatArg(req, "confidence_threshold"); ok {
		opts = append(opts, research.WithThreshold(v))
	}
	if p, ok := req.GetArguments()["parallel"].(bool); ok {
		opts = append(opts, research.WithParallel(p))
	}
	if token := progressToken(req); token != nil {
		opts = append(opts, research.WithProgress(t.progressSink(ctx, token)))
	}

	result, err := t.researcher.Answer(ctx, question, opts...)
	switch {
	case errors.Is(err, research.ErrInvalidInput):
		return mcp.NewToolResultError("'question' is required"), nil
	case errors.Is(err, research.ErrInvalidConfig):
		return mcp.NewToolResultError(err.Error()), nil
	case err != nil:
		return mcp.NewToolResultError(fmt.Sprintf("research failed: %v", err)), nil
	}

	if req.GetString("format", FormatMarkdown) == FormatJSON {
		out, err := report.JSON(result)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(out), nil
	}
	return mcp.NewToolResultText(report.Markdown(result, req.GetString("detail_level", report.DetailStandard))), nil
}

// progressSink forwards cascade progress as MCP progress notifications.
// Delivery failures are logged and otherwise ignored.
func (t *AnswerTool) progressSink(ctx context.Context, token mcp.ProgressToken) research.ProgressSink {
	return research.ProgressFunc(func(completed, total int, message string) {
		err := t.notify(ctx, "notifications/progress", map[string]any{
			"progressToken": token,
			"progress":      completed,
			"total":         total,
			"message":       message,
		})
		if err != nil {
			t.logger.Debug("progress notification dropped", zap.Error(err))
		}
	})
}
