package memtools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/hoofy-research/internal/memory"
	"github.com/HendryAvila/hoofy-research/internal/sources"
)

// SearchTool handles the kg_search MCP tool.
type SearchTool struct {
	store *memory.Store
}

// NewSearchTool creates a SearchTool.
func NewSearchTool(store *memory.Store) *SearchTool {
	return &SearchTool{store: store}
}

// Definition returns the MCP tool definition for kg_search.
func (t *SearchTool) Definition() mcp.Tool {
	return mcp.NewTool("kg_search",
		mcp.WithDescription(
			"Search the knowledge graph. Pass 'question' to see exactly which nodes research_answer "+
				"would find for it and which of its keywords each node covers; pass 'query' for a plain "+
				"full-text search. With neither, lists the most recent nodes.",
		),
		mcp.WithString("question",
			mcp.Description("A research question; searched the way the knowledge graph source does"),
		),
		mcp.WithString("query",
			mcp.Description("Full-text keywords"),
		),
		mcp.WithString("type",
			mcp.Description("Only nodes of this type"),
		),
		mcp.WithString("project",
			mcp.Description("Only nodes of this project"),
		),
		mcp.WithBoolean("match_any",
			mcp.Description("For 'query': any word matches instead of all (default: false)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Max results (default: 10, max: 20)"),
		),
	)
}

// Handle processes the kg_search tool call.
func (t *SearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	opts := memory.SearchOptions{
		Type:     req.GetString("type", ""),
		Project:  req.GetString("project", ""),
		Limit:    intArg(req, "limit", 10),
		MatchAny: boolArg(req, "match_any", false),
	}
	query := req.GetString("query", "")

	var keywords []string
	if question := strings.TrimSpace(req.GetString("question", "")); question != "" {
		keywords = sources.Keywords(question)
		if len(keywords) == 0 {
			return mcp.NewToolResultError("'question' has no searchable keywords"), nil
		}
		query = strings.Join(keywords, " ")
		opts.MatchAny = true
	}

	results, err := t.store.Search(ctx, query, opts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	if len(results) == 0 {
		if keywords != nil {
			return mcp.NewToolResultText(fmt.Sprintf(
				"No nodes cover %s. research_answer will skip the knowledge graph for this question.",
				strings.Join(keywords, ", "))), nil
		}
		return mcp.NewToolResultText("No nodes found matching your query."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d nodes:\n", len(results))
	if keywords != nil {
		fmt.Fprintf(&b, "Keywords: %s\n", strings.Join(keywords, ", "))
	}
	for _, r := range results {
		writeSearchHit(&b, r, keywords)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func writeSearchHit(b *strings.Builder, r memory.SearchResult, keywords []string) {
	fmt.Fprintf(b, "\n#%d [%s] %s", r.ID, r.Type, r.Title)
	if r.Project != "" {
		fmt.Fprintf(b, " (project: %s)", r.Project)
	}
	b.WriteString("\n")
	if keywords != nil {
		covered := sources.MatchedKeywords(keywords, r.Title+" "+r.Content)
		fmt.Fprintf(b, "  covers %d/%d: %s\n", len(covered), len(keywords), strings.Join(covered, ", "))
	}
	if content := strings.TrimSpace(r.Content); content != "" {
		fmt.Fprintf(b, "  %s\n", memory.Truncate(content, 300))
	}
	fmt.Fprintf(b, "  revision %d, updated %s\n", r.Revisions, r.UpdatedAt)
}
