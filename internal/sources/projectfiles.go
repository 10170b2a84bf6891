package sources

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/HendryAvila/hoofy-research/internal/memory"
	"github.com/HendryAvila/hoofy-research/internal/research"
)

// ignoreDirs are directories skipped during tree walks.
// Common build outputs, caches, VCS dirs, and dependency directories.
var ignoreDirs = map[string]bool{
	"node_modules": true, ".git": true, "__pycache__": true,
	"vendor": true, "dist": true, "build": true, "target": true,
	".next": true, ".nuxt": true, "venv": true, ".venv": true,
	".idea": true, ".vscode": true, "coverage": true,
	".cache": true, ".tmp": true, ".terraform": true,
}

// authoritativeFiles are manifests and deployment configs. A keyword hit in
// one of them says more about the project than a hit in ordinary source.
var authoritativeFiles = map[string]bool{
	"go.mod": true, "package.json": true, "requirements.txt": true,
	"pyproject.toml": true, "Cargo.toml": true, "pom.xml": true,
	"build.gradle": true, "build.gradle.kts": true, "Gemfile": true,
	"composer.json": true, "mix.exs": true, "pubspec.yaml": true,
	"Dockerfile": true, "docker-compose.yml": true, "docker-compose.yaml": true,
	"compose.yaml": true, "Makefile": true, ".env.example": true,
	"Procfile": true, "fly.toml": true, "README.md": true,
}

// Project-files defaults.
const (
	DefaultMaxFiles    = 2000
	DefaultMaxFileSize = 100 * 1024
	maxMatches         = 10
	maxSnippet         = 160

	// ceiling keeps a keyword scan from ever claiming certainty.
	projectFilesCeiling = 0.95
)

// ProjectFilesOptions configures a ProjectFiles provider.
type ProjectFilesOptions struct {
	Root        string
	MaxFiles    int
	MaxFileSize int64
	Logger      *zap.Logger
}

// ProjectFiles answers questions from the files of the current project.
type ProjectFiles struct {
	root        string
	maxFiles    int
	maxFileSize int64
	logger      *zap.Logger
}

// NewProjectFiles creates a project-files provider rooted at opts.Root.
func NewProjectFiles(opts ProjectFilesOptions) *ProjectFiles {
	p := &ProjectFiles{
		root:        opts.Root,
		maxFiles:    opts.MaxFiles,
		maxFileSize: opts.MaxFileSize,
		logger:      opts.Logger,
	}
	if p.maxFiles <= 0 {
		p.maxFiles = DefaultMaxFiles
	}
	if p.maxFileSize <= 0 {
		p.maxFileSize = DefaultMaxFileSize
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	p.logger = p.logger.With(zap.String("component", "project_files"))
	return p
}

// Kind implements research.Provider.
func (p *ProjectFiles) Kind() research.SourceKind { return research.SourceProjectFiles }

// fileHit is one scored file during a scan.
type fileHit struct {
	path      string
	relevance float64
	hits      []string
	snippet   string
}

// Probe scans the project tree for files mentioning the question's keywords.
func (p *ProjectFiles) Probe(ctx context.Context, question string) (*research.SourceResult, error) {
	keywords := Keywords(question)
	if len(keywords) == 0 {
		return nil, nil
	}

	info, err := os.Stat(p.root)
	if err != nil {
		return nil, research.Unavailable(p.Kind(), fmt.Errorf("project root: %w", err))
	}
	if !info.IsDir() {
		return nil, research.Unavailable(p.Kind(), fmt.Errorf("project root %s is not a directory", p.root))
	}

	var (
		matches  []fileHit
		analyzed int
	)
	walkErr := filepath.WalkDir(p.root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			return nil // graceful degradation
		}
		if d.IsDir() {
			if path != p.root && ignoreDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if analyzed >= p.maxFiles {
			return filepath.SkipAll
		}

		fi, err := d.Info()
		if err != nil || fi.Size() > p.maxFileSize {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil || isBinary(data) {
			return nil
		}
		analyzed++

		rel, _ := filepath.Rel(p.root, path)
		if hit, ok := scoreFile(rel, data, keywords); ok {
			matches = append(matches, hit)
		}
		return nil
	})
	if walkErr != nil {
		if errors.Is(walkErr, context.Canceled) || errors.Is(walkErr, context.DeadlineExceeded) {
			return nil, walkErr
		}
		return nil, research.Unavailable(p.Kind(), walkErr)
	}

	p.logger.Debug("project scan complete",
		zap.Int("files_analyzed", analyzed),
		zap.Int("matches", len(matches)),
	)
	if len(matches) == 0 {
		return nil, nil
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].relevance != matches[j].relevance {
			return matches[i].relevance > matches[j].relevance
		}
		return matches[i].path < matches[j].path
	})
	if len(matches) > maxMatches {
		matches = matches[:maxMatches]
	}

	return &research.SourceResult{
		Kind:       research.SourceProjectFiles,
		Confidence: projectConfidence(matches, keywords),
		Summary:    projectSummary(matches),
		Payload:    projectPayload(matches, analyzed),
	}, nil
}

// scoreFile rates a file by keyword hits in its path (weighted double) and
// content. Manifests and deployment configs get a boost.
func scoreFile(rel string, data []byte, keywords []string) (fileHit, bool) {
	pathHits := MatchedKeywords(keywords, rel)
	content := string(data)
	contentHits := MatchedKeywords(keywords, content)
	if len(pathHits) == 0 && len(contentHits) == 0 {
		return fileHit{}, false
	}

	relevance := float64(2*len(pathHits)+len(contentHits)) / float64(3*len(keywords))
	if authoritativeFiles[filepath.Base(rel)] {
		relevance *= 1.25
	}
	if relevance > 1 {
		relevance = 1
	}

	union := map[string]bool{}
	var hits []string
	for _, k := range append(pathHits, contentHits...) {
		if !union[k] {
			union[k] = true
			hits = append(hits, k)
		}
	}

	return fileHit{
		path:      filepath.ToSlash(rel),
		relevance: relevance,
		hits:      hits,
		snippet:   bestLine(content, keywords),
	}, true
}

// projectConfidence blends the best file's relevance with how many of the
// keywords the matched files cover between them.
func projectConfidence(matches []fileHit, keywords []string) float64 {
	covered := map[string]bool{}
	for _, m := range matches {
		for _, k := range m.hits {
			covered[k] = true
		}
	}
	breadth := float64(len(covered)) / float64(len(keywords))
	return clampConfidence(0.65*matches[0].relevance+0.35*breadth, projectFilesCeiling)
}

func projectSummary(matches []fileHit) string {
	var b strings.Builder
	top := matches[0]
	fmt.Fprintf(&b, "The project files point to %s", top.path)
	if top.snippet != "" {
		fmt.Fprintf(&b, " (%q)", top.snippet)
	}
	b.WriteString(".")
	if len(matches) > 1 {
		others := make([]string, 0, 3)
		for _, m := range matches[1:] {
			if len(others) == 3 {
				break
			}
			others = append(others, m.path)
		}
		fmt.Fprintf(&b, " Also relevant: %s.", strings.Join(others, ", "))
	}
	return b.String()
}

func projectPayload(matches []fileHit, analyzed int) research.ProjectFilesPayload {
	files := make([]research.FileMatch, len(matches))
	for i, m := range matches {
		files[i] = research.FileMatch{Path: m.path, Relevance: m.relevance}
	}
	return research.ProjectFilesPayload{Files: files, FilesAnalyzed: analyzed}
}

// bestLine returns the trimmed line with the most keyword hits.
func bestLine(content string, keywords []string) string {
	best, bestHits := "", 0
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if n := len(MatchedKeywords(keywords, line)); n > bestHits {
			best, bestHits = line, n
		}
	}
	return memory.Truncate(best, maxSnippet)
}

// isBinary reports whether data looks like a binary file.
func isBinary(data []byte) bool {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	return bytes.IndexByte(head, 0) >= 0
}
