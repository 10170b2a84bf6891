package memtools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/hoofy-research/internal/memory"
)

// RelateTool handles the kg_relate MCP tool.
type RelateTool struct {
	store *memory.Store
}

// NewRelateTool creates a RelateTool.
func NewRelateTool(store *memory.Store) *RelateTool {
	return &RelateTool{store: store}
}

// Definition returns the MCP tool definition for kg_relate.
func (t *RelateTool) Definition() mcp.Tool {
	return mcp.NewTool("kg_relate",
		mcp.WithDescription(
			"Link two knowledge graph nodes. When research_answer finds either node it lists the other "+
				"as related, and a linked node counts as stronger evidence. "+
				"Typical types: depends_on, publishes_to, implements, supersedes, part_of.",
		),
		mcp.WithNumber("from_id",
			mcp.Required(),
			mcp.Description("Node the relation starts at"),
		),
		mcp.WithNumber("to_id",
			mcp.Required(),
			mcp.Description("Node the relation points to"),
		),
		mcp.WithString("relation_type",
			mcp.Description("Relation type (default: "+memory.DefaultRelationType+")"),
		),
		mcp.WithString("note",
			mcp.Description("Short detail shown next to the relation, e.g. a topic or queue name"),
		),
		mcp.WithBoolean("bidirectional",
			mcp.Description("Also add the reverse relation (default: false)"),
		),
	)
}

// Handle processes the kg_relate tool call.
func (t *RelateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	from := int64(intArg(req, "from_id", 0))
	to := int64(intArg(req, "to_id", 0))
	switch {
	case from == 0:
		return mcp.NewToolResultError("'from_id' is required"), nil
	case to == 0:
		return mcp.NewToolResultError("'to_id' is required"), nil
	}

	p := memory.AddRelationParams{
		FromID:        from,
		ToID:          to,
		Type:          req.GetString("relation_type", memory.DefaultRelationType),
		Note:          req.GetString("note", ""),
		Bidirectional: boolArg(req, "bidirectional", false),
	}
	ids, err := t.store.AddRelation(ctx, p)
	switch {
	case errors.Is(err, memory.ErrNotFound):
		return mcp.NewToolResultError(fmt.Sprintf("node not found: %v", err)), nil
	case err != nil:
		return mcp.NewToolResultError(fmt.Sprintf("failed to create relation: %v", err)), nil
	}

	arrow := "→"
	if p.Bidirectional {
		arrow = "↔"
	}
	text := fmt.Sprintf("Linked %s %s %s (%s), relation %s.",
		t.label(ctx, from), arrow, t.label(ctx, to), p.Type, joinIDs(ids))
	return mcp.NewToolResultText(text), nil
}

// label renders a node as #id "Title", falling back to the bare ID.
func (t *RelateTool) label(ctx context.Context, id int64) string {
	n, err := t.store.GetNode(ctx, id)
	if err != nil {
		return fmt.Sprintf("#%d", id)
	}
	return fmt.Sprintf("#%d %q", n.ID, n.Title)
}

func joinIDs(ids []int64) string {
	switch len(ids) {
	case 0:
		return "none"
	case 1:
		return fmt.Sprintf("#%d", ids[0])
	}
	return fmt.Sprintf("#%d and #%d", ids[0], ids[1])
}

// UnrelateTool handles the kg_unrelate MCP tool.
type UnrelateTool struct {
	store *memory.Store
}

// NewUnrelateTool creates an UnrelateTool.
func NewUnrelateTool(store *memory.Store) *UnrelateTool {
	return &UnrelateTool{store: store}
}

// Definition returns the MCP tool definition for kg_unrelate.
func (t *UnrelateTool) Definition() mcp.Tool {
	return mcp.NewTool("kg_unrelate",
		mcp.WithDescription(
			"Delete a relation that no longer holds, e.g. after a migration. "+
				"kg_build_context lists relation IDs.",
		),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Relation ID"),
		),
	)
}

// Handle processes the kg_unrelate tool call.
func (t *UnrelateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := int64(intArg(req, "id", 0))
	if id == 0 {
		return mcp.NewToolResultError("'id' is required"), nil
	}
	if err := t.store.RemoveRelation(ctx, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to remove relation: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Relation #%d deleted.", id)), nil
}
