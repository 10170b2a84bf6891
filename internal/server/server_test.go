package server

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/HendryAvila/hoofy-research/internal/config"
	"github.com/HendryAvila/hoofy-research/internal/memory"
	"github.com/HendryAvila/hoofy-research/internal/research"
)

// testOptions points every subsystem at temp directories.
func testOptions(t *testing.T) Options {
	t.Helper()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "docker-compose.yml"),
		[]byte("services:\n  broker:\n    image: rabbitmq:3-management\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	settings := config.Default()
	settings.KnowledgeGraph.DataDir = t.TempDir()
	return Options{ProjectRoot: root, Settings: settings}
}

// listTools asks the server for its tool list over JSON-RPC.
func listTools(t *testing.T, s *server.MCPServer) string {
	t.Helper()
	resp := s.HandleMessage(context.Background(), json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}
	return string(data)
}

func TestNew_RegistersEverything(t *testing.T) {
	s, cleanup, err := New(testOptions(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer cleanup()

	list := listTools(t, s)
	for _, name := range []string{
		"research_answer", "research_set_threshold",
		"kg_save", "kg_relate", "kg_unrelate", "kg_search", "kg_build_context", "kg_stats",
	} {
		if !strings.Contains(list, `"`+name+`"`) {
			t.Errorf("tool %s not registered", name)
		}
	}
}

func TestNew_MemoryFailureDegrades(t *testing.T) {
	orig := openMemory
	openMemory = func(memory.Config) (*memory.Store, error) { return nil, errors.New("disk full") }
	t.Cleanup(func() { openMemory = orig })

	core, logs := observer.New(zapcore.WarnLevel)
	opts := testOptions(t)
	opts.Logger = zap.New(core)

	s, cleanup, err := New(opts)
	if err != nil {
		t.Fatalf("New should survive a memory failure: %v", err)
	}
	defer cleanup()

	list := listTools(t, s)
	if !strings.Contains(list, `"research_answer"`) {
		t.Error("research tools must stay registered")
	}
	if strings.Contains(list, `"kg_save"`) {
		t.Error("memory tools must not be registered without a store")
	}

	warnings := logs.FilterMessageSnippet("memory subsystem disabled").All()
	if len(warnings) != 1 {
		t.Fatalf("expected one warning, got %d", len(warnings))
	}
	if warnings[0].ContextMap()["component"] != "server" {
		t.Errorf("warning fields = %v", warnings[0].ContextMap())
	}
}

func TestNew_InvalidSettings(t *testing.T) {
	opts := testOptions(t)
	opts.Settings.ConfidenceThreshold = 3
	if _, _, err := New(opts); !errors.Is(err, research.ErrInvalidConfig) {
		t.Errorf("New = %v, want ErrInvalidConfig", err)
	}
}

func TestNewResearch_AnswersFromProjectAndGraph(t *testing.T) {
	opts := testOptions(t)
	reg := prometheus.NewRegistry()
	opts.Registerer = reg

	r, err := NewResearch(opts)
	if err != nil {
		t.Fatalf("NewResearch: %v", err)
	}
	defer r.Close()

	if _, _, err := r.Memory.AddNode(context.Background(), memory.AddNodeParams{
		Type: "decision", Title: "Message broker", Content: "RabbitMQ carries order events between services.",
	}); err != nil {
		t.Fatal(err)
	}

	got, err := r.Orchestrator.Answer(context.Background(), "Which rabbitmq broker image do we run?",
		research.WithThreshold(1))
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}

	if !got.Metadata.Queried(research.SourceProjectFiles) || !got.Metadata.Queried(research.SourceKnowledgeGraph) {
		t.Errorf("SourcesQueried = %v", got.Metadata.SourcesQueried)
	}
	if _, ok := got.Source(research.SourceProjectFiles); !ok {
		t.Error("docker-compose.yml should contribute")
	}
	if _, ok := got.Source(research.SourceKnowledgeGraph); !ok {
		t.Error("the saved decision should contribute")
	}
	if got.Metadata.FilesAnalyzed != 1 {
		t.Errorf("FilesAnalyzed = %d, want 1", got.Metadata.FilesAnalyzed)
	}
	if !got.NeedsWebSearch || len(got.WebSearchQueries) == 0 {
		t.Error("threshold 1 cannot be met locally; expected escalation with queries")
	}

	n, err := testutil.GatherAndCount(reg, "hoofy_research_requests_total")
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("requests_total series = %d, want 1", n)
	}
}

func TestResearch_CloseWithoutMemory(t *testing.T) {
	r := &Research{logger: zap.NewNop()}
	r.Close()
}

func TestResearch_Reload(t *testing.T) {
	r, err := NewResearch(testOptions(t))
	if err != nil {
		t.Fatalf("NewResearch: %v", err)
	}
	defer r.Close()

	settings := config.Default()
	settings.ConfidenceThreshold = 0.85
	settings.SourceOrder = []string{"environment", "project_files"}
	if err := r.Reload(settings); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	got := r.Orchestrator.Config()
	if got.ConfidenceThreshold != 0.85 {
		t.Errorf("threshold = %v, want 0.85", got.ConfidenceThreshold)
	}
	wantOrder := []research.SourceKind{research.SourceEnvironment, research.SourceProjectFiles}
	if len(got.SourceOrder) != 2 || got.SourceOrder[0] != wantOrder[0] || got.SourceOrder[1] != wantOrder[1] {
		t.Errorf("source order = %v, want %v", got.SourceOrder, wantOrder)
	}

	bad := config.Default()
	bad.ConfidenceThreshold = -1
	if err := r.Reload(bad); !errors.Is(err, research.ErrInvalidConfig) {
		t.Errorf("Reload(bad) = %v, want ErrInvalidConfig", err)
	}
	if r.Orchestrator.ConfidenceThreshold() != 0.85 {
		t.Error("a rejected reload must keep the running settings")
	}
}

func TestNewMCP_ServesExistingResearch(t *testing.T) {
	r, err := NewResearch(testOptions(t))
	if err != nil {
		t.Fatalf("NewResearch: %v", err)
	}
	defer r.Close()

	list := listTools(t, NewMCP(r, nil))
	if !strings.Contains(list, `"research_answer"`) || !strings.Contains(list, `"kg_save"`) {
		t.Errorf("tools missing from %s", list)
	}
}
