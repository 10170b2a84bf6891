package sources

import (
	"path"
	"strings"

	"github.com/HendryAvila/hoofy-research/internal/research"
)

// DefaultMaxQueries caps the number of suggested web searches.
const DefaultMaxQueries = 3

// WebSearch suggests web queries for questions the local sources could not
// answer. It never performs a search; the host decides whether to run them.
type WebSearch struct {
	maxQueries int
}

// NewWebSearch creates a suggester returning at most maxQueries queries.
func NewWebSearch(maxQueries int) *WebSearch {
	if maxQueries <= 0 {
		maxQueries = DefaultMaxQueries
	}
	return &WebSearch{maxQueries: maxQueries}
}

// Suggest implements research.Suggester. The output depends only on its
// inputs: the question itself, its keywords scoped by technology the local
// sources did find, then a documentation lookup.
func (w *WebSearch) Suggest(question string, sources []research.SourceResult) []string {
	q := strings.TrimSpace(strings.TrimRight(strings.TrimSpace(question), "?"))
	if q == "" {
		return nil
	}
	keywords := Keywords(question)
	subject := strings.Join(keywords, " ")

	out := make([]string, 0, w.maxQueries)
	seen := map[string]bool{}
	add := func(s string) {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] || len(out) >= w.maxQueries {
			return
		}
		seen[key] = true
		out = append(out, s)
	}

	add(q)
	for _, tech := range technologies(sources) {
		if !strings.Contains(strings.ToLower(subject), strings.ToLower(tech)) {
			add(tech + " " + subject)
		}
	}
	if subject != "" {
		add(subject + " documentation")
	}
	return out
}

// technologies collects context terms from partial local evidence, in
// source order: detected capabilities, then the ecosystem of the best file.
func technologies(sources []research.SourceResult) []string {
	var out []string
	for _, s := range sources {
		switch p := s.Payload.(type) {
		case research.EnvironmentPayload:
			for _, c := range p.Capabilities {
				if c.Found {
					out = append(out, c.Capability)
				}
			}
		case research.ProjectFilesPayload:
			if len(p.Files) > 0 {
				if eco := ecosystem(path.Base(p.Files[0].Path)); eco != "" {
					out = append(out, eco)
				}
			}
		}
	}
	return out
}

// ecosystem maps a manifest file name to the ecosystem it implies.
func ecosystem(name string) string {
	switch name {
	case "go.mod":
		return "Go"
	case "package.json":
		return "Node.js"
	case "pyproject.toml", "requirements.txt":
		return "Python"
	case "Cargo.toml":
		return "Rust"
	case "pom.xml", "build.gradle", "build.gradle.kts":
		return "Java"
	case "Gemfile":
		return "Ruby"
	case "composer.json":
		return "PHP"
	case "mix.exs":
		return "Elixir"
	case "pubspec.yaml":
		return "Dart"
	default:
		return ""
	}
}
