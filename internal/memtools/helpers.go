// Package memtools exposes the knowledge graph to MCP clients so the host
// can record facts, decisions and their relations. The research cascade
// reads the same store through sources.KnowledgeGraph.
package memtools

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// intArg reads a numeric argument. JSON numbers arrive as float64.
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}
