package resources

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/hoofy-research/internal/research"
)

type staticSource struct {
	cfg   research.Config
	kinds []research.SourceKind
}

func (s staticSource) Config() research.Config { return s.cfg }
func (s staticSource) Kinds() []research.SourceKind { return s.kinds }

func TestHandleConfig(t *testing.T) {
	cfg := research.DefaultConfig()
	cfg.ConfidenceThreshold = 0.75
	cfg.PerSourceTimeout = 1500 * time.Millisecond
	h := NewHandler(staticSource{cfg: cfg, kinds: []research.SourceKind{research.SourceProjectFiles}})

	if h.ConfigResource().URI != ConfigURI {
		t.Errorf("URI = %s", h.ConfigResource().URI)
	}

	req := mcp.ReadResourceRequest{}
	req.Params.URI = ConfigURI
	contents, err := h.HandleConfig(context.Background(), req)
	if err != nil {
		t.Fatalf("HandleConfig: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("expected 1 content, got %d", len(contents))
	}
	text, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("content type = %T", contents[0])
	}

	var got configView
	if err := json.Unmarshal([]byte(text.Text), &got); err != nil {
		t.Fatalf("not JSON: %v", err)
	}
	want := configView{
		ConfidenceThreshold: 0.75,
		SourceOrder:         research.DefaultSourceOrder,
		ActiveSources:       []research.SourceKind{research.SourceProjectFiles},
		PerSourceTimeout:    "1.5s",
		OverallDeadline:     "30s",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config view mismatch (-want +got):\n%s", diff)
	}
}
