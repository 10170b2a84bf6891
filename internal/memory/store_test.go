package memory_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/HendryAvila/hoofy-research/internal/memory"
)

// newTestStore creates a Store backed by a temp directory for isolation.
func newTestStore(t *testing.T) *memory.Store {
	t.Helper()
	s, err := memory.New(memory.Config{
		DataDir:          t.TempDir(),
		MaxContentLength: 200,
		MaxSearchResults: 20,
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// mustAddNode saves a node and returns its ID.
func mustAddNode(t *testing.T, s *memory.Store, typ, title, content string) int64 {
	t.Helper()
	id, _, err := s.AddNode(context.Background(), memory.AddNodeParams{
		Type: typ, Title: title, Content: content, Project: "shop",
	})
	if err != nil {
		t.Fatalf("AddNode(%q) error: %v", title, err)
	}
	return id
}

func mustRelate(t *testing.T, s *memory.Store, from, to int64, typ string) {
	t.Helper()
	if _, err := s.AddRelation(context.Background(), memory.AddRelationParams{
		FromID: from, ToID: to, Type: typ,
	}); err != nil {
		t.Fatalf("AddRelation(%d→%d) error: %v", from, to, err)
	}
}

// ─── New / Initialization ───────────────────────────────────────────────────

func TestNew_CreatesDBFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s, err := memory.New(memory.Config{DataDir: dir})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(filepath.Join(dir, "knowledge.db")); err != nil {
		t.Fatalf("database file not created: %v", err)
	}
}

func TestNew_IdempotentReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s1, err := memory.New(memory.Config{DataDir: dir})
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	id, _, err := s1.AddNode(ctx, memory.AddNodeParams{Title: "Uses PostgreSQL", Content: "primary DB"})
	if err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	s1.Close()

	s2, err := memory.New(memory.Config{DataDir: dir})
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer s2.Close()

	n, err := s2.GetNode(ctx, id)
	if err != nil {
		t.Fatalf("GetNode after reopen: %v", err)
	}
	if n.Title != "Uses PostgreSQL" {
		t.Errorf("Title = %q", n.Title)
	}
}

func TestNew_WALEnabled(t *testing.T) {
	s := newTestStore(t)
	var mode string
	if err := s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
}

// ─── Nodes ──────────────────────────────────────────────────────────────────

func TestAddNode_Basic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, updated, err := s.AddNode(ctx, memory.AddNodeParams{
		Type: "Decision", Title: "Cache layer", Content: "Redis fronts the catalog API", Project: "shop",
	})
	if err != nil {
		t.Fatalf("AddNode error: %v", err)
	}
	if updated {
		t.Error("first save must create, not revise")
	}

	n, err := s.GetNode(ctx, id)
	if err != nil {
		t.Fatalf("GetNode error: %v", err)
	}
	if n.Type != "decision" {
		t.Errorf("Type = %q, want lowercase decision", n.Type)
	}
	if n.Revisions != 1 || n.Project != "shop" {
		t.Errorf("node = %+v", n)
	}
}

func TestAddNode_DefaultsType(t *testing.T) {
	s := newTestStore(t)
	id := mustAddNode(t, s, "", "Go version", "1.25")
	n, _ := s.GetNode(context.Background(), id)
	if n.Type != memory.DefaultNodeType {
		t.Errorf("Type = %q, want %q", n.Type, memory.DefaultNodeType)
	}
}

func TestAddNode_RevisesSameIdentity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := mustAddNode(t, s, "fact", "Database", "MySQL 5.7")
	second, updated, err := s.AddNode(ctx, memory.AddNodeParams{
		Type: "fact", Title: "Database", Content: "PostgreSQL 15", Project: "shop",
	})
	if err != nil {
		t.Fatalf("AddNode error: %v", err)
	}
	if !updated || second != first {
		t.Fatalf("expected revision of %d, got id=%d updated=%v", first, second, updated)
	}

	n, _ := s.GetNode(ctx, first)
	if n.Content != "PostgreSQL 15" || n.Revisions != 2 {
		t.Errorf("node = %+v, want revised content and 2 revisions", n)
	}

	results, err := s.Search(ctx, "MySQL", memory.SearchOptions{})
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("stale content still indexed: %+v", results)
	}
}

func TestAddNode_EmptyTitleRejected(t *testing.T) {
	s := newTestStore(t)
	_, _, err := s.AddNode(context.Background(), memory.AddNodeParams{Title: "   "})
	if !errors.Is(err, memory.ErrEmptyTitle) {
		t.Errorf("error = %v, want ErrEmptyTitle", err)
	}
}

func TestAddNode_PrivateTagsStripped(t *testing.T) {
	s := newTestStore(t)
	id := mustAddNode(t, s, "fact", "Credentials", "user admin <private>password hunter2</private>")
	n, _ := s.GetNode(context.Background(), id)
	if strings.Contains(n.Content, "hunter2") {
		t.Errorf("private content persisted: %q", n.Content)
	}
	if !strings.Contains(n.Content, "[REDACTED]") {
		t.Errorf("expected redaction marker, got %q", n.Content)
	}
}

func TestAddNode_Truncation(t *testing.T) {
	s := newTestStore(t)
	id := mustAddNode(t, s, "note", "Long", strings.Repeat("x", 500))
	n, _ := s.GetNode(context.Background(), id)
	if !strings.HasSuffix(n.Content, "... [truncated]") {
		t.Errorf("content not truncated: len=%d", len(n.Content))
	}
}

func TestAddNode_TruncationKeepsRunes(t *testing.T) {
	s := newTestStore(t)
	id := mustAddNode(t, s, "note", "Accents", "a"+strings.Repeat("é", 400))
	n, _ := s.GetNode(context.Background(), id)
	if !strings.HasSuffix(n.Content, "... [truncated]") {
		t.Fatalf("content not truncated: len=%d", len(n.Content))
	}
	if !utf8.ValidString(n.Content) {
		t.Errorf("truncated content is not valid UTF-8: %q", n.Content[len(n.Content)-20:])
	}
}

func TestGetNode_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetNode(context.Background(), 9999)
	if !errors.Is(err, memory.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestGetNode_CancelledContext(t *testing.T) {
	s := newTestStore(t)
	id := mustAddNode(t, s, "fact", "x", "y")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.GetNode(ctx, id); err == nil {
		t.Error("expected error for cancelled context")
	}
}

// ─── Relations ──────────────────────────────────────────────────────────────

func TestAddRelation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustAddNode(t, s, "component", "Checkout service", "")
	b := mustAddNode(t, s, "component", "Payments", "")

	ids, err := s.AddRelation(ctx, memory.AddRelationParams{FromID: a, ToID: b, Type: "depends_on", Note: "sync call"})
	if err != nil {
		t.Fatalf("AddRelation error: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("got %d ids, want 1", len(ids))
	}

	rels, err := s.Relations(ctx, b)
	if err != nil {
		t.Fatalf("Relations error: %v", err)
	}
	want := memory.Relation{ID: ids[0], FromID: a, ToID: b, Type: "depends_on", Note: "sync call"}
	if len(rels) != 1 {
		t.Fatalf("got %d relations, want 1", len(rels))
	}
	if diff := cmp.Diff(want, rels[0], cmpopts.IgnoreFields(memory.Relation{}, "CreatedAt")); diff != "" {
		t.Errorf("relation mismatch (-want +got):\n%s", diff)
	}
}

func TestAddRelation_Bidirectional(t *testing.T) {
	s := newTestStore(t)
	a := mustAddNode(t, s, "fact", "A", "")
	b := mustAddNode(t, s, "fact", "B", "")

	ids, err := s.AddRelation(context.Background(), memory.AddRelationParams{FromID: a, ToID: b, Bidirectional: true})
	if err != nil {
		t.Fatalf("AddRelation error: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("got %d ids, want 2", len(ids))
	}
	rels, _ := s.Relations(context.Background(), a)
	for _, r := range rels {
		if r.Type != memory.DefaultRelationType {
			t.Errorf("Type = %q, want default", r.Type)
		}
	}
}

func TestAddRelation_Errors(t *testing.T) {
	s := newTestStore(t)
	a := mustAddNode(t, s, "fact", "A", "")
	b := mustAddNode(t, s, "fact", "B", "")
	mustRelate(t, s, a, b, "uses")

	tests := []struct {
		name string
		p    memory.AddRelationParams
		want error
	}{
		{"self", memory.AddRelationParams{FromID: a, ToID: a}, memory.ErrSelfRelation},
		{"missing node", memory.AddRelationParams{FromID: a, ToID: 4242}, memory.ErrNotFound},
		{"duplicate", memory.AddRelationParams{FromID: a, ToID: b, Type: "uses"}, memory.ErrDuplicateRelation},
		{"duplicate reverse", memory.AddRelationParams{FromID: b, ToID: a, Type: "uses", Bidirectional: true}, memory.ErrDuplicateRelation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.AddRelation(context.Background(), tt.p); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}

	// The failed bidirectional insert must not leave a half-written edge.
	rels, _ := s.Relations(context.Background(), a)
	if len(rels) != 1 {
		t.Errorf("got %d relations after failed inserts, want 1", len(rels))
	}
}

func TestRemoveRelation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustAddNode(t, s, "fact", "A", "")
	b := mustAddNode(t, s, "fact", "B", "")
	ids, _ := s.AddRelation(ctx, memory.AddRelationParams{FromID: a, ToID: b})

	if err := s.RemoveRelation(ctx, ids[0]); err != nil {
		t.Fatalf("RemoveRelation error: %v", err)
	}
	if err := s.RemoveRelation(ctx, ids[0]); !errors.Is(err, memory.ErrNotFound) {
		t.Errorf("second RemoveRelation error = %v, want ErrNotFound", err)
	}
	rels, _ := s.Relations(ctx, a)
	if len(rels) != 0 {
		t.Errorf("relation still present: %+v", rels)
	}
}

// ─── BuildContext ───────────────────────────────────────────────────────────

func TestBuildContext_Traversal(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// api → db → backups, plus cache → api (incoming)
	api := mustAddNode(t, s, "component", "API", "")
	db := mustAddNode(t, s, "component", "Database", "")
	backups := mustAddNode(t, s, "process", "Backups", "")
	cache := mustAddNode(t, s, "component", "Cache", "")
	mustRelate(t, s, api, db, "uses")
	mustRelate(t, s, db, backups, "backed_up_by")
	fronts, err := s.AddRelation(ctx, memory.AddRelationParams{FromID: cache, ToID: api, Type: "fronts"})
	if err != nil {
		t.Fatal(err)
	}

	res, err := s.BuildContext(ctx, api, 2)
	if err != nil {
		t.Fatalf("BuildContext error: %v", err)
	}
	if res.Root.ID != api {
		t.Errorf("Root = %d, want %d", res.Root.ID, api)
	}
	if res.TotalNodes != 3 || res.MaxDepth != 2 {
		t.Fatalf("TotalNodes=%d MaxDepth=%d, want 3 and 2", res.TotalNodes, res.MaxDepth)
	}

	byID := map[int64]memory.ContextNode{}
	for _, n := range res.Connected {
		byID[n.ID] = n
	}
	if byID[cache].Direction != "incoming" || byID[cache].Depth != 1 || byID[cache].RelationID != fronts[0] {
		t.Errorf("cache node = %+v", byID[cache])
	}
	if byID[backups].Depth != 2 || byID[backups].RelationType != "backed_up_by" {
		t.Errorf("backups node = %+v", byID[backups])
	}

	shallow, _ := s.BuildContext(ctx, api, 1)
	if shallow.TotalNodes != 2 {
		t.Errorf("depth 1 TotalNodes = %d, want 2", shallow.TotalNodes)
	}
}

func TestBuildContext_CycleTerminates(t *testing.T) {
	s := newTestStore(t)
	a := mustAddNode(t, s, "fact", "A", "")
	b := mustAddNode(t, s, "fact", "B", "")
	c := mustAddNode(t, s, "fact", "C", "")
	mustRelate(t, s, a, b, "next")
	mustRelate(t, s, b, c, "next")
	mustRelate(t, s, c, a, "next")

	res, err := s.BuildContext(context.Background(), a, memory.MaxContextDepth+10)
	if err != nil {
		t.Fatalf("BuildContext error: %v", err)
	}
	if res.TotalNodes != 2 {
		t.Errorf("TotalNodes = %d, want 2", res.TotalNodes)
	}
}

func TestBuildContext_NotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.BuildContext(context.Background(), 77, 2); !errors.Is(err, memory.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

// ─── Search ─────────────────────────────────────────────────────────────────

func seedSearch(t *testing.T, s *memory.Store) {
	t.Helper()
	mustAddNode(t, s, "decision", "JWT auth middleware", "Implemented JWT authentication with refresh tokens")
	mustAddNode(t, s, "fact", "PostgreSQL migration", "Migrated from SQLite to PostgreSQL for production")
	mustAddNode(t, s, "bugfix", "Goroutine leak", "Fixed a goroutine leak in the WebSocket handler")
}

func TestSearch(t *testing.T) {
	s := newTestStore(t)
	seedSearch(t, s)

	tests := []struct {
		name  string
		query string
		opts  memory.SearchOptions
		want  int
	}{
		{"single word", "JWT", memory.SearchOptions{}, 1},
		{"all terms required", "goroutine postgresql", memory.SearchOptions{}, 0},
		{"any term", "goroutine postgresql", memory.SearchOptions{MatchAny: true}, 2},
		{"type filter", "postgresql", memory.SearchOptions{Type: "decision"}, 0},
		{"project filter", "JWT", memory.SearchOptions{Project: "other"}, 0},
		{"no match", "kubernetes", memory.SearchOptions{}, 0},
		{"special chars", `JWT (broken OR`, memory.SearchOptions{MatchAny: true}, 1},
		{"empty falls back to recent", "   ", memory.SearchOptions{}, 3},
		{"limit", "", memory.SearchOptions{Limit: 2}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Search(context.Background(), tt.query, tt.opts)
			if err != nil {
				t.Fatalf("Search(%q) error: %v", tt.query, err)
			}
			if len(got) != tt.want {
				t.Errorf("Search(%q) returned %d results, want %d", tt.query, len(got), tt.want)
			}
		})
	}
}

func TestSearch_RecentOrder(t *testing.T) {
	s := newTestStore(t)
	seedSearch(t, s)

	got, err := s.Search(context.Background(), "", memory.SearchOptions{})
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if got[0].Title != "Goroutine leak" {
		t.Errorf("most recent first, got %q", got[0].Title)
	}
}

// ─── Stats ──────────────────────────────────────────────────────────────────

func TestStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	empty, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats error: %v", err)
	}
	if empty.TotalNodes != 0 || empty.TotalRelations != 0 {
		t.Errorf("empty stats = %+v", empty)
	}

	a := mustAddNode(t, s, "fact", "A", "")
	b := mustAddNode(t, s, "decision", "B", "")
	mustAddNode(t, s, "fact", "C", "")
	mustRelate(t, s, a, b, "")

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats error: %v", err)
	}
	want := &memory.Stats{
		TotalNodes:     3,
		TotalRelations: 1,
		NodesByType:    map[string]int{"fact": 2, "decision": 1},
		Projects:       []string{"shop"},
	}
	if diff := cmp.Diff(want, st); diff != "" {
		t.Errorf("Stats mismatch (-want +got):\n%s", diff)
	}
}

// ─── Helpers ────────────────────────────────────────────────────────────────

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is longer", 4, "this..."},
		{"café au lait", 4, "caf..."},
		{"日本語", 4, "日..."},
		{"日本語", 2, "..."},
	}
	for _, tt := range tests {
		got := memory.Truncate(tt.in, tt.max)
		if got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("Truncate(%q, %d) produced invalid UTF-8", tt.in, tt.max)
		}
	}
}

func TestNew_OpenFailure(t *testing.T) {
	restore := memory.SetOpenDB(func(string, string) (*sql.DB, error) {
		return nil, errors.New("disk on fire")
	})
	defer restore()

	if _, err := memory.New(memory.Config{DataDir: t.TempDir()}); err == nil || !strings.Contains(err.Error(), "disk on fire") {
		t.Errorf("error = %v, want wrapped open failure", err)
	}
}

func TestDefaultConfig_DataDir(t *testing.T) {
	if got := filepath.Base(memory.DefaultConfig().DataDir); got != ".hoofy-research" {
		t.Errorf("default data dir = %q, want ~/.hoofy-research", memory.DefaultConfig().DataDir)
	}
}
