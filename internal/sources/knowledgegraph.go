package sources

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/HendryAvila/hoofy-research/internal/memory"
	"github.com/HendryAvila/hoofy-research/internal/research"
)

// GraphStore is the part of memory.Store the knowledge-graph provider reads.
type GraphStore interface {
	Search(ctx context.Context, query string, opts memory.SearchOptions) ([]memory.SearchResult, error)
	BuildContext(ctx context.Context, nodeID int64, maxDepth int) (*memory.ContextResult, error)
}

// KnowledgeGraphOptions configures a KnowledgeGraph provider.
type KnowledgeGraphOptions struct {
	// Project restricts the search to one project's nodes. Empty searches all.
	Project string
	// Depth bounds the relation walk around the best hit.
	Depth int
	// Limit caps the number of search hits considered.
	Limit int
}

const (
	defaultGraphLimit = 5
	graphCeiling      = 0.95
	maxGraphContent   = 240
)

// KnowledgeGraph answers questions from curated knowledge-graph nodes.
type KnowledgeGraph struct {
	store   GraphStore
	project string
	depth   int
	limit   int
}

// NewKnowledgeGraph creates a knowledge-graph provider over store.
func NewKnowledgeGraph(store GraphStore, opts KnowledgeGraphOptions) *KnowledgeGraph {
	k := &KnowledgeGraph{store: store, project: opts.Project, depth: opts.Depth, limit: opts.Limit}
	if k.depth <= 0 {
		k.depth = memory.DefaultContextDepth
	}
	if k.limit <= 0 {
		k.limit = defaultGraphLimit
	}
	return k
}

// Kind implements research.Provider.
func (k *KnowledgeGraph) Kind() research.SourceKind { return research.SourceKnowledgeGraph }

// Probe searches the graph and expands the best hit through its relations.
func (k *KnowledgeGraph) Probe(ctx context.Context, question string) (*research.SourceResult, error) {
	if k.store == nil {
		return nil, research.Unavailable(k.Kind(), errors.New("knowledge graph store not configured"))
	}
	keywords := Keywords(question)
	if len(keywords) == 0 {
		return nil, nil
	}

	hits, err := k.store.Search(ctx, strings.Join(keywords, " "), memory.SearchOptions{
		Project:  k.project,
		Limit:    k.limit,
		MatchAny: true,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, research.Unavailable(k.Kind(), err)
	}
	if len(hits) == 0 {
		return nil, nil
	}

	// Hits arrive in FTS rank order; the best by keyword coverage wins and
	// rank breaks ties.
	best, bestCov := 0, -1.0
	for i, h := range hits {
		if c := coverage(keywords, h.Title+" "+h.Content); c > bestCov {
			best, bestCov = i, c
		}
	}
	root := hits[best]

	graph, err := k.store.BuildContext(ctx, root.ID, k.depth)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// A failed walk still leaves the search hits usable.
		graph = nil
	}

	nodes := []research.GraphNode{{ID: root.ID, Title: root.Title, Type: root.Type}}
	for i, h := range hits {
		if i != best {
			nodes = append(nodes, research.GraphNode{ID: h.ID, Title: h.Title, Type: h.Type})
		}
	}
	var related []string
	if graph != nil {
		for _, c := range graph.Connected {
			nodes = append(nodes, research.GraphNode{
				ID: c.ID, Title: c.Title, Type: c.Type,
				Relation: c.RelationType, Direction: c.Direction, Depth: c.Depth,
			})
			if c.Depth == 1 && len(related) < 5 {
				related = append(related, fmt.Sprintf("%s (%s)", c.Title, c.RelationType))
			}
		}
	}

	return &research.SourceResult{
		Kind:       research.SourceKnowledgeGraph,
		Confidence: graphConfidence(bestCov, len(hits), len(related) > 0),
		Summary:    graphSummary(root.Node, related),
		Payload:    research.KnowledgeGraphPayload{Nodes: nodes},
	}, nil
}

// graphConfidence weighs keyword coverage of the best node, corroborating
// hits and whether the node is tied into the curated graph.
func graphConfidence(bestCoverage float64, hits int, related bool) float64 {
	corroboration := float64(hits-1) / float64(defaultGraphLimit-1)
	if corroboration > 1 {
		corroboration = 1
	}
	c := 0.7*bestCoverage + 0.15*corroboration
	if related {
		c += 0.1
	}
	return clampConfidence(c, graphCeiling)
}

func graphSummary(root memory.Node, related []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Knowledge graph %s %q", root.Type, root.Title)
	if content := strings.TrimSpace(root.Content); content != "" {
		fmt.Fprintf(&b, ": %s", memory.Truncate(content, maxGraphContent))
	}
	if !strings.HasSuffix(b.String(), ".") {
		b.WriteString(".")
	}
	if len(related) > 0 {
		fmt.Fprintf(&b, " Related: %s.", strings.Join(related, ", "))
	}
	return b.String()
}
