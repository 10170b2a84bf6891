package memtools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/hoofy-research/internal/memory"
)

// BuildContextTool handles the kg_build_context MCP tool.
type BuildContextTool struct {
	store *memory.Store
}

// NewBuildContextTool creates a BuildContextTool.
func NewBuildContextTool(store *memory.Store) *BuildContextTool {
	return &BuildContextTool{store: store}
}

// Definition returns the MCP tool definition for kg_build_context.
func (t *BuildContextTool) Definition() mcp.Tool {
	return mcp.NewTool("kg_build_context",
		mcp.WithDescription(
			"Show a node and the nodes linked to it, grouped by relation type. "+
				"This is the neighbourhood research_answer reports when the node is its best hit. "+
				"Relation IDs shown here can be passed to kg_unrelate.",
		),
		mcp.WithNumber("node_id",
			mcp.Required(),
			mcp.Description("Starting node ID"),
		),
		mcp.WithNumber("depth",
			mcp.Description(fmt.Sprintf("Relation hops to follow (default: %d, max: %d)",
				memory.DefaultContextDepth, memory.MaxContextDepth)),
		),
	)
}

// Handle processes the kg_build_context tool call.
func (t *BuildContextTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	nodeID := int64(intArg(req, "node_id", 0))
	if nodeID == 0 {
		return mcp.NewToolResultError("'node_id' is required"), nil
	}

	result, err := t.store.BuildContext(ctx, nodeID, intArg(req, "depth", memory.DefaultContextDepth))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to build context: %v", err)), nil
	}
	return mcp.NewToolResultText(formatNeighbourhood(result)), nil
}

// formatNeighbourhood renders the root node followed by one section per
// relation type. Within a section nodes keep traversal order.
func formatNeighbourhood(r *memory.ContextResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# #%d %s [%s]\n", r.Root.ID, r.Root.Title, r.Root.Type)
	if r.Root.Project != "" {
		fmt.Fprintf(&b, "Project: %s\n", r.Root.Project)
	}
	if content := strings.TrimSpace(r.Root.Content); content != "" {
		fmt.Fprintf(&b, "\n%s\n", memory.Truncate(content, 300))
	}

	if len(r.Connected) == 0 {
		b.WriteString("\nNot linked to any node. Use kg_relate so research answers can cite related facts.\n")
		return b.String()
	}

	groups := make(map[string][]memory.ContextNode)
	for _, n := range r.Connected {
		groups[n.RelationType] = append(groups[n.RelationType], n)
	}
	types := make([]string, 0, len(groups))
	for typ := range groups {
		types = append(types, typ)
	}
	sort.Strings(types)

	direct := 0
	for _, typ := range types {
		fmt.Fprintf(&b, "\n## %s\n", typ)
		for _, n := range groups[typ] {
			arrow := "→"
			if n.Direction == "incoming" {
				arrow = "←"
			}
			fmt.Fprintf(&b, "- %s #%d %s [%s]", arrow, n.ID, n.Title, n.Type)
			if n.Depth > 1 {
				fmt.Fprintf(&b, " (%d hops)", n.Depth)
			} else {
				direct++
			}
			if n.Note != "" {
				fmt.Fprintf(&b, ": %s", n.Note)
			}
			fmt.Fprintf(&b, " · relation #%d\n", n.RelationID)
		}
	}

	fmt.Fprintf(&b, "\n%d linked nodes, %d direct, up to %d hops away.\n", r.TotalNodes, direct, r.MaxDepth)
	return b.String()
}
