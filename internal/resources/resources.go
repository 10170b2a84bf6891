// Package resources implements MCP resource handlers for the research server.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (research://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/hoofy-research/internal/research"
)

// ConfigURI addresses the live research configuration.
const ConfigURI = "research://config"

// ConfigSource exposes the live configuration. *research.Orchestrator
// satisfies it.
type ConfigSource interface {
	Config() research.Config
	Kinds() []research.SourceKind
}

// Handler manages research resource endpoints.
type Handler struct {
	source ConfigSource
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(source ConfigSource) *Handler {
	return &Handler{source: source}
}

// configView is the JSON shape of research://config.
type configView struct {
	ConfidenceThreshold float64               `json:"confidence_threshold"`
	SourceOrder         []research.SourceKind `json:"source_order"`
	ActiveSources       []research.SourceKind `json:"active_sources"`
	PerSourceTimeout    string                `json:"per_source_timeout"`
	OverallDeadline     string                `json:"overall_deadline"`
	Parallel            bool                  `json:"parallel"`
}

// ConfigResource returns the MCP resource definition for the configuration.
func (h *Handler) ConfigResource() mcp.Resource {
	return mcp.NewResource(
		ConfigURI,
		"Research Configuration",
		mcp.WithResourceDescription("Current confidence threshold, source order, timeouts and the sources that are available"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleConfig returns the current configuration as JSON.
func (h *Handler) HandleConfig(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	cfg := h.source.Config()
	view := configView{
		ConfidenceThreshold: cfg.ConfidenceThreshold,
		SourceOrder:         cfg.SourceOrder,
		ActiveSources:       h.source.Kinds(),
		PerSourceTimeout:    cfg.PerSourceTimeout.String(),
		OverallDeadline:     cfg.OverallDeadline.String(),
		Parallel:            cfg.Parallel,
	}

	data, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
