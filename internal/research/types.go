// Package research implements the cascading research orchestrator.
//
// A question is answered by probing an ordered set of knowledge sources
// (project files, knowledge graph, environment), folding each result into
// a running confidence with probabilistic OR, and stopping as soon as the
// configured threshold is met. When local sources are not enough the
// result recommends a web search instead of performing one.
//
// The package owns decision logic only. Concrete providers live in
// internal/sources and rendering lives in internal/report.
package research

import (
	"fmt"
	"time"
)

// SourceKind identifies one of the closed set of knowledge sources.
type SourceKind string

// Source kinds, in default priority order. WebSearch is never probed by the
// cascade; it is only recommended.
const (
	SourceProjectFiles   SourceKind = "project_files"
	SourceKnowledgeGraph SourceKind = "knowledge_graph"
	SourceEnvironment    SourceKind = "environment"
	SourceWebSearch      SourceKind = "web_search"
)

// AllKinds lists every source kind.
var AllKinds = []SourceKind{
	SourceProjectFiles,
	SourceKnowledgeGraph,
	SourceEnvironment,
	SourceWebSearch,
}

// DefaultSourceOrder is the fixed priority sequence of locally probed sources.
// Cheapest and most authoritative first, live system probing last.
var DefaultSourceOrder = []SourceKind{
	SourceProjectFiles,
	SourceKnowledgeGraph,
	SourceEnvironment,
}

// DisplayName returns a human-readable label for the kind.
func (k SourceKind) DisplayName() string {
	switch k {
	case SourceProjectFiles:
		return "Project Files"
	case SourceKnowledgeGraph:
		return "Knowledge Graph"
	case SourceEnvironment:
		return "Environment"
	case SourceWebSearch:
		return "Web Search"
	default:
		return string(k)
	}
}

// Valid reports whether k is one of the known kinds.
func (k SourceKind) Valid() bool {
	switch k {
	case SourceProjectFiles, SourceKnowledgeGraph, SourceEnvironment, SourceWebSearch:
		return true
	}
	return false
}

// ParseSourceKind converts a string into a SourceKind.
func ParseSourceKind(s string) (SourceKind, error) {
	k := SourceKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: unknown source kind %q", ErrInvalidConfig, s)
	}
	return k, nil
}

// ─── Payloads ────────────────────────────────────────────────────────────────

// Payload is the kind-specific data carried by a SourceResult. The set of
// implementations is closed: only the payload types in this package satisfy it.
type Payload interface {
	payloadKind() SourceKind
}

// FileMatch is a project file and its relevance to the question.
type FileMatch struct {
	Path      string  `json:"path"`
	Relevance float64 `json:"relevance"`
}

// ProjectFilesPayload is produced by the project-files provider.
type ProjectFilesPayload struct {
	Files         []FileMatch `json:"files"`
	FilesAnalyzed int         `json:"files_analyzed"`
}

func (ProjectFilesPayload) payloadKind() SourceKind { return SourceProjectFiles }

// GraphNode is a knowledge-graph node reached while answering a question.
type GraphNode struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Type      string `json:"type"`
	Relation  string `json:"relation,omitempty"`
	Direction string `json:"direction,omitempty"`
	Depth     int    `json:"depth"`
}

// KnowledgeGraphPayload is produced by the knowledge-graph provider.
type KnowledgeGraphPayload struct {
	Nodes []GraphNode `json:"nodes"`
}

func (KnowledgeGraphPayload) payloadKind() SourceKind { return SourceKnowledgeGraph }

// CapabilityProbe is one environment check and whether it was satisfied.
type CapabilityProbe struct {
	Capability string `json:"capability"`
	Found      bool   `json:"found"`
	Detail     string `json:"detail,omitempty"`
}

// EnvironmentPayload is produced by the environment provider.
type EnvironmentPayload struct {
	Capabilities []CapabilityProbe `json:"capabilities"`
}

func (EnvironmentPayload) payloadKind() SourceKind { return SourceEnvironment }

// WebSearchPayload carries suggested queries for escalation.
type WebSearchPayload struct {
	Queries []string `json:"queries"`
}

func (WebSearchPayload) payloadKind() SourceKind { return SourceWebSearch }

// ─── Results ─────────────────────────────────────────────────────────────────

// SourceResult is one provider's contribution to a question. It is created
// once per successful probe and never mutated afterwards.
type SourceResult struct {
	Kind       SourceKind `json:"kind"`
	Confidence float64    `json:"confidence"`
	Timestamp  time.Time  `json:"timestamp"`
	// Summary is the provider's narrative, used for answer synthesis.
	Summary string  `json:"summary"`
	Payload Payload `json:"payload,omitempty"`
}

// StopReason records why the cascade ended.
type StopReason string

const (
	StopEarlyExit StopReason = "early_exit"
	StopExhausted StopReason = "exhausted"
	StopDeadline  StopReason = "deadline"
	StopCancelled StopReason = "cancelled"
)

// Metadata describes how a ResearchResult was produced.
type Metadata struct {
	DurationMs     int64        `json:"duration_ms"`
	SourcesQueried []SourceKind `json:"sources_queried"`
	FilesAnalyzed  int          `json:"files_analyzed"`
	StopReason     StopReason   `json:"stop_reason"`
}

// Queried reports whether kind was invoked during the cascade.
func (m Metadata) Queried(kind SourceKind) bool {
	for _, k := range m.SourcesQueried {
		if k == kind {
			return true
		}
	}
	return false
}

// ResearchResult is the sole output of Orchestrator.Answer. Consumers must
// treat it as read-only.
type ResearchResult struct {
	Question         string         `json:"question"`
	Answer           string         `json:"answer"`
	Confidence       float64        `json:"confidence"`
	Sources          []SourceResult `json:"sources"`
	NeedsWebSearch   bool           `json:"needs_web_search"`
	WebSearchQueries []string       `json:"web_search_queries,omitempty"`
	Metadata         Metadata       `json:"metadata"`
}

// Source returns the result contributed by kind, if any.
func (r *ResearchResult) Source(kind SourceKind) (SourceResult, bool) {
	for _, s := range r.Sources {
		if s.Kind == kind {
			return s, true
		}
	}
	return SourceResult{}, false
}
