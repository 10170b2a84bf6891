package memtools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/HendryAvila/hoofy-research/internal/memory"
	"github.com/mark3labs/mcp-go/mcp"
)

// StatsTool handles the kg_stats MCP tool.
type StatsTool struct {
	store *memory.Store
}

// NewStatsTool creates a StatsTool with the given memory store.
func NewStatsTool(store *memory.Store) *StatsTool {
	return &StatsTool{store: store}
}

// Definition returns the MCP tool definition for kg_stats.
func (t *StatsTool) Definition() mcp.Tool {
	return mcp.NewTool("kg_stats",
		mcp.WithDescription("Show knowledge graph statistics: nodes by type, relations and projects."),
	)
}

// Handle processes the kg_stats tool call.
func (t *StatsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := t.store.Stats(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get stats: %v", err)), nil
	}

	var sb strings.Builder
	sb.WriteString("## Knowledge Graph Statistics\n\n")
	fmt.Fprintf(&sb, "- **Nodes**: %d\n", stats.TotalNodes)
	fmt.Fprintf(&sb, "- **Relations**: %d\n", stats.TotalRelations)

	types := make([]string, 0, len(stats.NodesByType))
	for typ := range stats.NodesByType {
		types = append(types, typ)
	}
	sort.Strings(types)
	for _, typ := range types {
		fmt.Fprintf(&sb, "  - %s: %d\n", typ, stats.NodesByType[typ])
	}

	if len(stats.Projects) > 0 {
		fmt.Fprintf(&sb, "- **Projects** (%d): %s\n", len(stats.Projects), strings.Join(stats.Projects, ", "))
	} else {
		sb.WriteString("- **Projects**: none\n")
	}

	return mcp.NewToolResultText(sb.String()), nil
}
