package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/HendryAvila/hoofy-research/internal/research"
)

// standardSummaryLen bounds each source line in standard mode.
const standardSummaryLen = 200

// Markdown renders r at the given detail level, followed by a token estimate.
func Markdown(r *research.ResearchResult, detailLevel string) string {
	level := ParseDetailLevel(detailLevel)

	var b strings.Builder
	fmt.Fprintf(&b, "## Research: %s\n\n", r.Question)
	fmt.Fprintf(&b, "**Answer:** %s\n\n", r.Answer)
	fmt.Fprintf(&b, "**Confidence:** %s (%s)\n", percent(r.Confidence), r.Metadata.StopReason)
	fmt.Fprintf(&b, "**Sources queried:** %s\n", queried(r.Metadata))
	if r.Metadata.FilesAnalyzed > 0 {
		fmt.Fprintf(&b, "**Files analyzed:** %d\n", r.Metadata.FilesAnalyzed)
	}
	fmt.Fprintf(&b, "**Duration:** %d ms\n", r.Metadata.DurationMs)

	switch level {
	case DetailStandard:
		if len(r.Sources) > 0 {
			b.WriteString("\n### Sources\n")
			for _, s := range r.Sources {
				fmt.Fprintf(&b, "- **%s** (%s): %s\n", s.Kind.DisplayName(), percent(s.Confidence),
					truncate(s.Summary, standardSummaryLen))
			}
		}
	case DetailFull:
		for _, s := range r.Sources {
			fmt.Fprintf(&b, "\n### %s (%s)\n\n%s\n", s.Kind.DisplayName(), percent(s.Confidence), s.Summary)
			writePayload(&b, s.Payload)
		}
	}

	if r.NeedsWebSearch {
		b.WriteString("\n### 🌐 Web search recommended\n")
		b.WriteString("Local sources did not reach the confidence threshold.\n")
		for _, q := range r.WebSearchQueries {
			fmt.Fprintf(&b, "- %s\n", q)
		}
	}

	if level == DetailSummary {
		b.WriteString(SummaryFooter)
	}
	out := b.String()
	return out + TokenFooter(EstimateTokens(out))
}

// JSON renders r as indented JSON.
func JSON(r *research.ResearchResult) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("report: encoding result: %w", err)
	}
	return string(data), nil
}

func writePayload(b *strings.Builder, p research.Payload) {
	switch p := p.(type) {
	case research.ProjectFilesPayload:
		b.WriteString("\n| File | Relevance |\n|------|-----------|\n")
		for _, f := range p.Files {
			fmt.Fprintf(b, "| `%s` | %s |\n", f.Path, percent(f.Relevance))
		}
	case research.KnowledgeGraphPayload:
		b.WriteString("\n")
		for _, n := range p.Nodes {
			if n.Relation != "" {
				fmt.Fprintf(b, "%s#%d (%s) %s [%s, %s]\n", strings.Repeat("  ", n.Depth), n.ID, n.Type, n.Title, n.Relation, n.Direction)
				continue
			}
			fmt.Fprintf(b, "#%d (%s) %s\n", n.ID, n.Type, n.Title)
		}
	case research.EnvironmentPayload:
		b.WriteString("\n")
		for _, c := range p.Capabilities {
			mark := "❌"
			if c.Found {
				mark = "✅"
			}
			fmt.Fprintf(b, "- %s %s: %s\n", mark, c.Capability, c.Detail)
		}
	}
}

func queried(m research.Metadata) string {
	if len(m.SourcesQueried) == 0 {
		return "none"
	}
	names := make([]string, len(m.SourcesQueried))
	for i, k := range m.SourcesQueried {
		names[i] = k.DisplayName()
	}
	return strings.Join(names, ", ")
}

func percent(c float64) string {
	return fmt.Sprintf("%.0f%%", c*100)
}

// truncate cuts s to n bytes on a rune boundary.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
