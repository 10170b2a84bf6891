// Package memory implements the knowledge graph read by the research cascade.
//
// Nodes are curated facts, decisions and notes about a project. Relations are
// typed directional edges between nodes. Everything lives in a single SQLite
// database with an FTS5 index over node titles and content.
package memory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// Sentinel errors. Callers match them with errors.Is.
var (
	ErrNotFound          = errors.New("memory: not found")
	ErrSelfRelation      = errors.New("memory: self-relation")
	ErrDuplicateRelation = errors.New("memory: relation already exists")
	ErrEmptyTitle        = errors.New("memory: title is required")
)

// ─── Types ───────────────────────────────────────────────────────────────────

// Node is one entry of the knowledge graph.
type Node struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Project   string `json:"project,omitempty"`
	Revisions int    `json:"revisions"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// AddNodeParams holds the input for creating or revising a node.
type AddNodeParams struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Project string `json:"project,omitempty"`
}

// SearchResult embeds a Node with its FTS5 rank score (lower is better).
type SearchResult struct {
	Node
	Rank float64 `json:"rank"`
}

// SearchOptions holds filters for full-text queries.
type SearchOptions struct {
	Type    string `json:"type,omitempty"`
	Project string `json:"project,omitempty"`
	Limit   int    `json:"limit,omitempty"`

	// MatchAny ORs the query terms instead of requiring all of them.
	MatchAny bool `json:"match_any,omitempty"`
}

// Relation is a typed directional edge between two nodes.
type Relation struct {
	ID        int64  `json:"id"`
	FromID    int64  `json:"from_id"`
	ToID      int64  `json:"to_id"`
	Type      string `json:"type"`
	Note      string `json:"note,omitempty"`
	CreatedAt string `json:"created_at"`
}

// AddRelationParams holds input for creating a new relation.
type AddRelationParams struct {
	FromID        int64  `json:"from_id"`
	ToID          int64  `json:"to_id"`
	Type          string `json:"type"`
	Note          string `json:"note,omitempty"`
	Bidirectional bool   `json:"bidirectional,omitempty"`
}

// ContextNode is one node reached by a graph traversal.
type ContextNode struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Type         string `json:"type"`
	Project      string `json:"project,omitempty"`
	RelationID   int64  `json:"relation_id"`
	RelationType string `json:"relation_type"`
	Direction    string `json:"direction"` // "outgoing" or "incoming"
	Note         string `json:"note,omitempty"`
	Depth        int    `json:"depth"`
}

// ContextResult holds the traversal output rooted at one node.
type ContextResult struct {
	Root       Node          `json:"root"`
	Connected  []ContextNode `json:"connected"`
	TotalNodes int           `json:"total_nodes"`
	MaxDepth   int           `json:"max_depth"`
}

// Stats holds aggregate graph statistics.
type Stats struct {
	TotalNodes     int            `json:"total_nodes"`
	TotalRelations int            `json:"total_relations"`
	NodesByType    map[string]int `json:"nodes_by_type"`
	Projects       []string       `json:"projects"`
}

// Traversal depth bounds for BuildContext.
const (
	DefaultContextDepth = 2
	MaxContextDepth     = 5
)

// DefaultNodeType and DefaultRelationType apply when the caller leaves them empty.
const (
	DefaultNodeType     = "fact"
	DefaultRelationType = "relates_to"
)

// ─── Config ──────────────────────────────────────────────────────────────────

// Config holds store configuration.
type Config struct {
	DataDir          string
	MaxContentLength int
	MaxSearchResults int
}

// DefaultConfig returns the default configuration for the store.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir:          filepath.Join(home, ".hoofy-research"),
		MaxContentLength: 4000,
		MaxSearchResults: 20,
	}
}

// ─── Store ───────────────────────────────────────────────────────────────────

// Store is the knowledge graph backed by SQLite + FTS5. It is safe for
// concurrent use; database/sql serializes access to the connection pool.
type Store struct {
	db  *sql.DB
	cfg Config
}

// New creates a Store with the given configuration.
// It creates the data directory if needed, opens SQLite with WAL mode,
// and runs migrations.
func New(cfg Config) (*Store, error) {
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultConfig().DataDir
	}
	if cfg.MaxContentLength <= 0 {
		cfg.MaxContentLength = DefaultConfig().MaxContentLength
	}
	if cfg.MaxSearchResults <= 0 {
		cfg.MaxSearchResults = DefaultConfig().MaxSearchResults
	}

	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("memory: create data dir: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, "knowledge.db")
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("memory: open database: %w", err)
	}

	// foreign_keys and busy_timeout are per connection; a single connection
	// keeps them effective for every query.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("memory: pragma %q: %w", p, err)
		}
	}
	s := &Store{db: db, cfg: cfg}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("memory: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ─── Migrations ──────────────────────────────────────────────────────────────

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS nodes (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			type       TEXT    NOT NULL DEFAULT 'fact',
			title      TEXT    NOT NULL,
			content    TEXT    NOT NULL DEFAULT '',
			project    TEXT    NOT NULL DEFAULT '',
			revisions  INTEGER NOT NULL DEFAULT 1,
			created_at TEXT    NOT NULL DEFAULT (datetime('now')),
			updated_at TEXT    NOT NULL DEFAULT (datetime('now'))
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_nodes_identity ON nodes(type, title, project);
		CREATE INDEX IF NOT EXISTS idx_nodes_project ON nodes(project);
		CREATE INDEX IF NOT EXISTS idx_nodes_updated ON nodes(updated_at DESC);

		CREATE VIRTUAL TABLE IF NOT EXISTS nodes_fts USING fts5(
			title,
			content,
			type,
			project,
			content='nodes',
			content_rowid='id'
		);

		CREATE TRIGGER IF NOT EXISTS nodes_fts_insert AFTER INSERT ON nodes BEGIN
			INSERT INTO nodes_fts(rowid, title, content, type, project)
			VALUES (new.id, new.title, new.content, new.type, new.project);
		END;

		CREATE TRIGGER IF NOT EXISTS nodes_fts_delete AFTER DELETE ON nodes BEGIN
			INSERT INTO nodes_fts(nodes_fts, rowid, title, content, type, project)
			VALUES ('delete', old.id, old.title, old.content, old.type, old.project);
		END;

		CREATE TRIGGER IF NOT EXISTS nodes_fts_update AFTER UPDATE ON nodes BEGIN
			INSERT INTO nodes_fts(nodes_fts, rowid, title, content, type, project)
			VALUES ('delete', old.id, old.title, old.content, old.type, old.project);
			INSERT INTO nodes_fts(rowid, title, content, type, project)
			VALUES (new.id, new.title, new.content, new.type, new.project);
		END;

		CREATE TABLE IF NOT EXISTS relations (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			from_id    INTEGER NOT NULL,
			to_id      INTEGER NOT NULL,
			type       TEXT    NOT NULL DEFAULT 'relates_to',
			note       TEXT,
			created_at TEXT    NOT NULL DEFAULT (datetime('now')),
			FOREIGN KEY (from_id) REFERENCES nodes(id) ON DELETE CASCADE,
			FOREIGN KEY (to_id)   REFERENCES nodes(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_rel_from ON relations(from_id);
		CREATE INDEX IF NOT EXISTS idx_rel_to   ON relations(to_id);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_rel_unique ON relations(from_id, to_id, type);
	`
	_, err := s.db.Exec(schema)
	return err
}

// ─── Nodes ───────────────────────────────────────────────────────────────────

// AddNode stores a node. A node with the same type, title and project is
// revised in place instead of duplicated; updated reports which happened.
func (s *Store) AddNode(ctx context.Context, p AddNodeParams) (id int64, updated bool, err error) {
	title := strings.TrimSpace(stripPrivateTags(p.Title))
	if title == "" {
		return 0, false, ErrEmptyTitle
	}
	content := stripPrivateTags(p.Content)
	if len(content) > s.cfg.MaxContentLength {
		content = cut(content, s.cfg.MaxContentLength) + "... [truncated]"
	}
	typ := normalizeType(p.Type, DefaultNodeType)
	project := strings.TrimSpace(p.Project)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, fmt.Errorf("memory: begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := Now()
	var existingID int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM nodes WHERE type = ? AND title = ? AND project = ?`,
		typ, title, project,
	).Scan(&existingID)

	switch {
	case err == nil:
		if _, err := tx.ExecContext(ctx,
			`UPDATE nodes
			 SET content = ?, revisions = revisions + 1, updated_at = ?
			 WHERE id = ?`,
			content, now, existingID,
		); err != nil {
			return 0, false, fmt.Errorf("memory: revise node: %w", err)
		}
		id, updated = existingID, true

	case errors.Is(err, sql.ErrNoRows):
		res, err := tx.ExecContext(ctx,
			`INSERT INTO nodes (type, title, content, project, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			typ, title, content, project, now, now,
		)
		if err != nil {
			return 0, false, fmt.Errorf("memory: insert node: %w", err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return 0, false, fmt.Errorf("memory: insert node: %w", err)
		}

	default:
		return 0, false, fmt.Errorf("memory: lookup node: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("memory: commit: %w", err)
	}
	return id, updated, nil
}

// GetNode retrieves a node by ID.
func (s *Store) GetNode(ctx context.Context, id int64) (*Node, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, type, title, content, project, revisions, created_at, updated_at
		 FROM nodes WHERE id = ?`, id,
	)
	var n Node
	if err := row.Scan(&n.ID, &n.Type, &n.Title, &n.Content, &n.Project,
		&n.Revisions, &n.CreatedAt, &n.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: node %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("memory: get node %d: %w", id, err)
	}
	return &n, nil
}

// ─── Relations ───────────────────────────────────────────────────────────────

// AddRelation creates a typed directional edge between two nodes.
// If Bidirectional is true, both directions are created atomically.
// Returns the IDs of created relations (1 or 2).
func (s *Store) AddRelation(ctx context.Context, p AddRelationParams) ([]int64, error) {
	if p.FromID == p.ToID {
		return nil, fmt.Errorf("%w: from_id and to_id are both %d", ErrSelfRelation, p.FromID)
	}
	typ := normalizeType(p.Type, DefaultRelationType)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("memory: begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, id := range []int64{p.FromID, p.ToID} {
		var one int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM nodes WHERE id = ?`, id).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: node %d", ErrNotFound, id)
		}
		if err != nil {
			return nil, fmt.Errorf("memory: checking node %d: %w", id, err)
		}
	}

	pairs := [][2]int64{{p.FromID, p.ToID}}
	if p.Bidirectional {
		pairs = append(pairs, [2]int64{p.ToID, p.FromID})
	}

	note := nullableString(p.Note)
	now := Now()
	ids := make([]int64, 0, len(pairs))
	for _, pair := range pairs {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO relations (from_id, to_id, type, note, created_at) VALUES (?, ?, ?, ?, ?)`,
			pair[0], pair[1], typ, note, now,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return nil, fmt.Errorf("%w: %d → %d (%s)", ErrDuplicateRelation, pair[0], pair[1], typ)
			}
			return nil, fmt.Errorf("memory: creating relation: %w", err)
		}
		id, _ := res.LastInsertId()
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("memory: commit: %w", err)
	}
	return ids, nil
}

// RemoveRelation hard-deletes a relation by its ID.
func (s *Store) RemoveRelation(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM relations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("memory: deleting relation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: relation %d", ErrNotFound, id)
	}
	return nil
}

// Relations returns all relations where the node is either source or target.
func (s *Store) Relations(ctx context.Context, nodeID int64) ([]Relation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, from_id, to_id, type, COALESCE(note, ''), created_at
		 FROM relations
		 WHERE from_id = ? OR to_id = ?
		 ORDER BY id ASC`,
		nodeID, nodeID,
	)
	if err != nil {
		return nil, fmt.Errorf("memory: querying relations: %w", err)
	}
	defer rows.Close()

	var result []Relation
	for rows.Next() {
		var r Relation
		if err := rows.Scan(&r.ID, &r.FromID, &r.ToID, &r.Type, &r.Note, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("memory: scanning relation: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// BuildContext traverses the relation graph breadth-first from nodeID.
// It returns node metadata only (no content). Depth defaults to 2 and is
// capped at 5; visited nodes are never revisited, so cycles terminate.
func (s *Store) BuildContext(ctx context.Context, nodeID int64, maxDepth int) (*ContextResult, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultContextDepth
	}
	if maxDepth > MaxContextDepth {
		maxDepth = MaxContextDepth
	}

	root, err := s.GetNode(ctx, nodeID)
	if err != nil {
		return nil, err
	}

	type queueItem struct {
		id    int64
		depth int
	}

	visited := map[int64]bool{nodeID: true}
	queue := []queueItem{{id: nodeID}}
	connected := []ContextNode{}
	deepest := 0

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		current := queue[0]
		queue = queue[1:]

		if current.depth >= maxDepth {
			continue
		}

		rels, err := s.Relations(ctx, current.id)
		if err != nil {
			return nil, err
		}

		for _, rel := range rels {
			otherID := rel.ToID
			direction := "outgoing"
			if rel.ToID == current.id {
				otherID = rel.FromID
				direction = "incoming"
			}
			if visited[otherID] {
				continue
			}
			visited[otherID] = true

			var node ContextNode
			err := s.db.QueryRowContext(ctx,
				`SELECT id, title, type, project FROM nodes WHERE id = ?`, otherID,
			).Scan(&node.ID, &node.Title, &node.Type, &node.Project)
			if errors.Is(err, sql.ErrNoRows) {
				continue // deleted between queries
			}
			if err != nil {
				return nil, fmt.Errorf("memory: loading node %d: %w", otherID, err)
			}

			node.RelationID = rel.ID
			node.RelationType = rel.Type
			node.Direction = direction
			node.Note = rel.Note
			node.Depth = current.depth + 1
			connected = append(connected, node)

			if node.Depth > deepest {
				deepest = node.Depth
			}
			queue = append(queue, queueItem{id: otherID, depth: node.Depth})
		}
	}

	return &ContextResult{
		Root:       *root,
		Connected:  connected,
		TotalNodes: len(connected),
		MaxDepth:   deepest,
	}, nil
}

// ─── Search (FTS5) ───────────────────────────────────────────────────────────

// Search performs full-text search across nodes. An empty or whitespace-only
// query falls back to the most recently updated nodes.
func (s *Store) Search(ctx context.Context, query string, opts SearchOptions) ([]SearchResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}
	if limit > s.cfg.MaxSearchResults {
		limit = s.cfg.MaxSearchResults
	}

	ftsQuery := sanitizeFTS(query, opts.MatchAny)
	if ftsQuery == "" {
		return s.searchRecent(ctx, opts, limit)
	}

	sqlStr := `
		SELECT n.id, n.type, n.title, n.content, n.project, n.revisions,
		       n.created_at, n.updated_at, fts.rank
		FROM nodes_fts fts
		JOIN nodes n ON n.id = fts.rowid
		WHERE nodes_fts MATCH ?
	`
	args := []any{ftsQuery}
	sqlStr, args = applyFilters(sqlStr, args, "n.", opts)
	sqlStr += " ORDER BY fts.rank LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("memory: search: %w", err)
	}
	return scanResults(rows)
}

// searchRecent returns the most recent nodes without FTS.
func (s *Store) searchRecent(ctx context.Context, opts SearchOptions, limit int) ([]SearchResult, error) {
	sqlStr := `
		SELECT id, type, title, content, project, revisions,
		       created_at, updated_at, 0 AS rank
		FROM nodes
		WHERE 1 = 1
	`
	sqlStr, args := applyFilters(sqlStr, nil, "", opts)
	sqlStr += " ORDER BY updated_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("memory: search recent: %w", err)
	}
	return scanResults(rows)
}

func applyFilters(sqlStr string, args []any, prefix string, opts SearchOptions) (string, []any) {
	if opts.Type != "" {
		sqlStr += " AND " + prefix + "type = ?"
		args = append(args, normalizeType(opts.Type, ""))
	}
	if opts.Project != "" {
		sqlStr += " AND " + prefix + "project = ?"
		args = append(args, opts.Project)
	}
	return sqlStr, args
}

func scanResults(rows *sql.Rows) ([]SearchResult, error) {
	defer func() { _ = rows.Close() }()

	var results []SearchResult
	for rows.Next() {
		var sr SearchResult
		if err := rows.Scan(
			&sr.ID, &sr.Type, &sr.Title, &sr.Content, &sr.Project, &sr.Revisions,
			&sr.CreatedAt, &sr.UpdatedAt, &sr.Rank,
		); err != nil {
			return nil, fmt.Errorf("memory: scanning node: %w", err)
		}
		results = append(results, sr)
	}
	return results, rows.Err()
}

// ─── Stats ───────────────────────────────────────────────────────────────────

// Stats returns aggregate graph statistics.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{NodesByType: map[string]int{}}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM nodes").Scan(&stats.TotalNodes); err != nil {
		return nil, fmt.Errorf("memory: count nodes: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM relations").Scan(&stats.TotalRelations); err != nil {
		return nil, fmt.Errorf("memory: count relations: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT type, COUNT(*) FROM nodes GROUP BY type ORDER BY type")
	if err != nil {
		return nil, fmt.Errorf("memory: count types: %w", err)
	}
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err == nil {
			stats.NodesByType[typ] = n
		}
	}
	_ = rows.Close()

	rows, err = s.db.QueryContext(ctx,
		"SELECT project FROM nodes WHERE project != '' GROUP BY project ORDER BY MAX(updated_at) DESC")
	if err != nil {
		return nil, fmt.Errorf("memory: list projects: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err == nil {
			stats.Projects = append(stats.Projects, p)
		}
	}
	return stats, rows.Err()
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// normalizeType lowercases a node or relation type, using def when empty.
func normalizeType(t, def string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	t = strings.ReplaceAll(t, " ", "_")
	if t == "" {
		return def
	}
	return t
}

// Truncate shortens s to at most limit bytes plus an ellipsis, never
// splitting a UTF-8 sequence.
func Truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return cut(s, limit) + "..."
}

// cut returns the longest prefix of s that fits in n bytes and ends on a
// rune boundary.
func cut(s string, n int) string {
	if n >= len(s) {
		return s
	}
	if n < 0 {
		n = 0
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// privateTagRegex matches <private>...</private> tags and their contents.
var privateTagRegex = regexp.MustCompile(`(?is)<private>.*?</private>`)

// stripPrivateTags removes all <private>...</private> content from a string.
func stripPrivateTags(s string) string {
	result := privateTagRegex.ReplaceAllString(s, "[REDACTED]")
	return strings.TrimSpace(result)
}

// sanitizeFTS wraps each word in quotes for safe FTS5 queries.
// "fix auth bug" → `"fix" "auth" "bug"`, or `"fix" OR "auth" OR "bug"` with any.
func sanitizeFTS(query string, matchAny bool) string {
	words := strings.Fields(query)
	out := words[:0]
	for _, w := range words {
		w = strings.ReplaceAll(w, `"`, "")
		if w == "" {
			continue
		}
		out = append(out, `"`+w+`"`)
	}
	sep := " "
	if matchAny {
		sep = " OR "
	}
	return strings.Join(out, sep)
}

// isUniqueViolation checks if an error is a SQLite UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Now returns the current time formatted for SQLite.
func Now() string {
	return time.Now().UTC().Format("2006-01-02 15:04:05")
}
