package research

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Aggregator folds source results into an overall confidence and a draft
// answer. A zero Aggregator is ready to use. It is owned by a single cascade
// and is not safe for concurrent use.
type Aggregator struct {
	confidence float64
	results    []SourceResult
	primary    int // index into results, meaningful once results is non-empty
}

// NewAggregator returns an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Fold adds r to the running aggregate and returns the updated confidence.
//
// Combination is probabilistic OR: 1 - (1-c_running)*(1-c_new). Corroboration
// can only raise confidence, and the result never leaves [0,1].
func (a *Aggregator) Fold(r SourceResult) float64 {
	c := clamp01(r.Confidence)
	a.confidence = clamp01(1 - (1-a.confidence)*(1-c))
	a.results = append(a.results, r)

	// Re-rank only when strictly better than the current primary.
	if len(a.results) == 1 || c > clamp01(a.results[a.primary].Confidence) {
		a.primary = len(a.results) - 1
	}
	return a.confidence
}

// Confidence returns the current overall confidence.
func (a *Aggregator) Confidence() float64 { return a.confidence }

// Results returns the folded results in fold order.
func (a *Aggregator) Results() []SourceResult {
	out := make([]SourceResult, len(a.results))
	copy(out, a.results)
	return out
}

// Answer synthesizes the answer text. The highest-confidence result supplies
// the primary narrative; the rest follow as corroborating detail in
// descending confidence order (ties keep fold order).
func (a *Aggregator) Answer() string {
	if len(a.results) == 0 {
		return ""
	}

	primary := a.results[a.primary]
	var b strings.Builder
	b.WriteString(narrative(primary))

	rest := make([]SourceResult, 0, len(a.results)-1)
	for i, r := range a.results {
		if i != a.primary {
			rest = append(rest, r)
		}
	}
	if len(rest) == 0 {
		return b.String()
	}

	sort.SliceStable(rest, func(i, j int) bool {
		return clamp01(rest[i].Confidence) > clamp01(rest[j].Confidence)
	})

	b.WriteString("\n\nCorroborating evidence:")
	for _, r := range rest {
		fmt.Fprintf(&b, "\n- %s (%.0f%%): %s", r.Kind.DisplayName(), clamp01(r.Confidence)*100, narrative(r))
	}
	return b.String()
}

// narrative returns the summary text of r, falling back to a generic line.
func narrative(r SourceResult) string {
	s := strings.TrimSpace(r.Summary)
	if s == "" {
		return fmt.Sprintf("%s returned relevant evidence.", r.Kind.DisplayName())
	}
	return s
}

// Combine returns the probabilistic-OR combination of confidences.
func Combine(confidences ...float64) float64 {
	c := 0.0
	for _, v := range confidences {
		c = clamp01(1 - (1-c)*(1-clamp01(v)))
	}
	return c
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
