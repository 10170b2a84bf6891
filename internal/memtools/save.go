package memtools

import (
	"context"
	"errors"
	"fmt"

	"github.com/HendryAvila/hoofy-research/internal/memory"
	"github.com/mark3labs/mcp-go/mcp"
)

// SaveTool handles the kg_save MCP tool.
type SaveTool struct {
	store *memory.Store
}

// NewSaveTool creates a SaveTool with the given memory store.
func NewSaveTool(store *memory.Store) *SaveTool {
	return &SaveTool{store: store}
}

// Definition returns the MCP tool definition for kg_save.
func (t *SaveTool) Definition() mcp.Tool {
	return mcp.NewTool("kg_save",
		mcp.WithDescription(
			"Save a fact, decision or component description to the project knowledge graph. "+
				"research_answer reads these nodes, so record what a teammate would need to answer questions later. "+
				"Saving the same type + title + project again revises the node instead of duplicating it.",
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Short, searchable title, e.g. 'Message broker'"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("The knowledge itself. Wrap secrets in <private>...</private> to keep them out of the graph."),
		),
		mcp.WithString("type",
			mcp.Description("Node type: fact (default), decision, component, convention, dependency, or any custom string"),
		),
		mcp.WithString("project",
			mcp.Description("Project name the node belongs to"),
		),
	)
}

// Handle processes the kg_save tool call.
func (t *SaveTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title := req.GetString("title", "")
	content := req.GetString("content", "")
	if content == "" {
		return mcp.NewToolResultError("'content' is required"), nil
	}

	id, updated, err := t.store.AddNode(ctx, memory.AddNodeParams{
		Type:    req.GetString("type", ""),
		Title:   title,
		Content: content,
		Project: req.GetString("project", ""),
	})
	if errors.Is(err, memory.ErrEmptyTitle) {
		return mcp.NewToolResultError("'title' is required"), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to save node: %v", err)), nil
	}

	verb := "Saved"
	if updated {
		verb = "Revised"
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s node #%d: %q", verb, id, title)), nil
}
