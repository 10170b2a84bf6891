// Package sources implements the knowledge providers probed by the research
// cascade: project files, the knowledge graph and the local environment. It
// also provides the web search suggester used when local sources fall short.
//
// Providers are read-only. They never write to the project or the graph.
package sources

import (
	"strings"
	"unicode"
)

// Keywords extracts the significant words of a question: lowercased,
// punctuation trimmed, stop words and words shorter than three characters
// removed, duplicates dropped. Order of first appearance is kept.
func Keywords(question string) []string {
	words := strings.Fields(strings.ToLower(question))
	seen := make(map[string]bool, len(words))
	var keywords []string
	for _, w := range words {
		w = strings.Trim(w, ".,;:!?\"'`()[]{}<>")
		if len(w) < 3 || stopWords[w] || seen[w] {
			continue
		}
		seen[w] = true
		keywords = append(keywords, w)
	}
	return keywords
}

// tokens splits text into lowercase alphanumeric runs, keeping short words.
// Environment probing needs "go" and "k8s" that Keywords would drop.
// Hyphenated and underscored words count both whole and by part, so
// "docker-compose" yields "docker-compose", "docker" and "compose".
func tokens(text string) map[string]bool {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_'
	})
	out := make(map[string]bool, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, "-_")
		if f == "" {
			continue
		}
		out[f] = true
		for _, part := range strings.FieldsFunc(f, func(r rune) bool { return r == '-' || r == '_' }) {
			out[part] = true
		}
	}
	return out
}

// MatchedKeywords returns the keywords found in text, ignoring case.
func MatchedKeywords(keywords []string, text string) []string {
	lower := strings.ToLower(text)
	var hits []string
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			hits = append(hits, k)
		}
	}
	return hits
}

// coverage is the fraction of keywords found in text.
func coverage(keywords []string, text string) float64 {
	if len(keywords) == 0 {
		return 0
	}
	return float64(len(MatchedKeywords(keywords, text))) / float64(len(keywords))
}

func clampConfidence(v, ceiling float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > ceiling:
		return ceiling
	default:
		return v
	}
}

// stopWords is a set of common words to filter from keyword matching.
var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "can": true, "had": true,
	"her": true, "was": true, "one": true, "our": true, "out": true,
	"has": true, "its": true, "let": true, "may": true, "who": true,
	"did": true, "get": true, "him": true, "his": true, "how": true,
	"man": true, "new": true, "now": true, "old": true, "see": true,
	"way": true, "day": true, "too": true, "use": true, "she": true,
	"that": true, "with": true, "have": true, "this": true, "will": true,
	"your": true, "from": true, "they": true, "been": true, "said": true,
	"each": true, "which": true, "their": true, "there": true, "about": true,
	"would": true, "make": true, "like": true, "just": true, "over": true,
	"such": true, "take": true, "also": true, "into": true, "than": true,
	"them": true, "then": true, "some": true, "what": true, "when": true,
	"were": true, "other": true, "could": true, "after": true, "should": true,
	// Question scaffolding that carries no subject.
	"does": true, "uses": true, "used": true, "using": true, "where": true,
	"why": true, "any": true, "here": true, "these": true, "those": true,
	"project": true, "repo": true, "repository": true, "codebase": true,
	"currently": true, "there's": true, "what's": true, "we're": true,
}
