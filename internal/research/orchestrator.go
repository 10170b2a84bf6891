package research

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// noAnswer is the answer text when no source contributed.
const noAnswer = "No local source produced relevant evidence for this question."

// Orchestrator is the research facade. It owns the configuration and the
// provider set; every Answer call builds its own cascade state, so concurrent
// calls on one Orchestrator do not share mutable state.
type Orchestrator struct {
	mu  sync.RWMutex
	cfg Config

	providers map[SourceKind]Provider
	suggester Suggester
	logger    *zap.Logger
	metrics   *Metrics
	progress  ProgressSink
	now       func() time.Time
}

// Option configures an Orchestrator at construction.
type Option func(*Orchestrator)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics records Prometheus metrics for every call.
func WithMetrics(m *Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithSuggester sets the web search suggester used on escalation.
func WithSuggester(s Suggester) Option {
	return func(o *Orchestrator) { o.suggester = s }
}

// WithDefaultProgress sets the sink used when a call does not pass one.
func WithDefaultProgress(p ProgressSink) Option {
	return func(o *Orchestrator) {
		if p != nil {
			o.progress = p
		}
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// New validates cfg and builds an Orchestrator over providers. Nil providers
// are ignored. Registering a web_search provider or two providers of the same
// kind fails with ErrInvalidConfig.
func New(cfg Config, providers []Provider, opts ...Option) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &Orchestrator{
		cfg:       cfg.clone(),
		providers: make(map[SourceKind]Provider, len(providers)),
		logger:    zap.NewNop(),
		progress:  nopProgress{},
		now:       time.Now,
	}
	for _, p := range providers {
		if p == nil {
			continue
		}
		kind := p.Kind()
		switch {
		case !kind.Valid():
			return nil, fmt.Errorf("%w: provider with unknown kind %q", ErrInvalidConfig, kind)
		case kind == SourceWebSearch:
			return nil, fmt.Errorf("%w: web_search is never probed; register it as a suggester", ErrInvalidConfig)
		}
		if _, dup := o.providers[kind]; dup {
			return nil, fmt.Errorf("%w: duplicate provider for %q", ErrInvalidConfig, kind)
		}
		o.providers[kind] = p
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.With(zap.String("component", "research"))
	return o, nil
}

// Config returns a copy of the current configuration.
func (o *Orchestrator) Config() Config {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.cfg.clone()
}

// SetConfig replaces the configuration. In-flight calls keep the snapshot
// they started with.
func (o *Orchestrator) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	o.mu.Lock()
	o.cfg = cfg.clone()
	o.mu.Unlock()
	return nil
}

// SetConfidenceThreshold updates the early-exit threshold for later calls.
func (o *Orchestrator) SetConfidenceThreshold(v float64) error {
	if err := ValidateThreshold(v); err != nil {
		return err
	}
	o.mu.Lock()
	o.cfg.ConfidenceThreshold = v
	o.mu.Unlock()
	return nil
}

// ConfidenceThreshold returns the current threshold.
func (o *Orchestrator) ConfidenceThreshold() float64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.cfg.ConfidenceThreshold
}

// Kinds returns the registered provider kinds in configured priority order.
func (o *Orchestrator) Kinds() []SourceKind {
	cfg := o.Config()
	var out []SourceKind
	for _, k := range cfg.SourceOrder {
		if _, ok := o.providers[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

// CallOption adjusts a single Answer call without touching the shared
// configuration.
type CallOption func(*callOptions)

type callOptions struct {
	threshold *float64
	parallel  *bool
	progress  ProgressSink
}

// WithThreshold overrides the confidence threshold for one call.
func WithThreshold(v float64) CallOption {
	return func(c *callOptions) { c.threshold = &v }
}

// WithParallel overrides the parallel flag for one call.
func WithParallel(parallel bool) CallOption {
	return func(c *callOptions) { c.parallel = &parallel }
}

// WithProgress sends this call's progress to p.
func WithProgress(p ProgressSink) CallOption {
	return func(c *callOptions) { c.progress = p }
}

// Answer researches question across the configured sources.
//
// It fails only with ErrInvalidInput (empty question) or ErrInvalidConfig
// (bad per-call override), before any provider is invoked. Provider failures,
// deadline expiry and cancellation all yield a (possibly partial) result.
func (o *Orchestrator) Answer(ctx context.Context, question string, opts ...CallOption) (*ResearchResult, error) {
	start := o.now()

	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: question is empty", ErrInvalidInput)
	}

	var call callOptions
	for _, opt := range opts {
		opt(&call)
	}

	cfg := o.Config()
	if call.threshold != nil {
		if err := ValidateThreshold(*call.threshold); err != nil {
			return nil, err
		}
		cfg.ConfidenceThreshold = *call.threshold
	}
	if call.parallel != nil {
		cfg.Parallel = *call.parallel
	}

	sink := o.progress
	if call.progress != nil {
		sink = call.progress
	}

	sink.Progress(progressStart, ProgressTotal, "Starting research")
	o.logger.Debug("research started",
		zap.String("question", question),
		zap.Float64("threshold", cfg.ConfidenceThreshold),
		zap.Bool("parallel", cfg.Parallel),
	)

	c := &cascade{
		cfg:       cfg,
		providers: o.providers,
		logger:    o.logger,
		metrics:   o.metrics,
		progress:  sink,
		now:       o.now,
	}
	out := c.run(ctx, question)

	sources := out.agg.Results()
	sink.Progress(progressAggregating, ProgressTotal,
		fmt.Sprintf("Aggregating %d source(s)", len(sources)))

	confidence := out.agg.Confidence()
	answer := out.agg.Answer()
	if answer == "" {
		answer = noAnswer
	}

	needsWebSearch := confidence < cfg.ConfidenceThreshold || out.stop == StopCancelled
	result := &ResearchResult{
		Question:       question,
		Answer:         answer,
		Confidence:     confidence,
		Sources:        sources,
		NeedsWebSearch: needsWebSearch,
		Metadata: Metadata{
			SourcesQueried: out.queried,
			FilesAnalyzed:  filesAnalyzed(sources),
			StopReason:     out.stop,
		},
	}
	if result.Sources == nil {
		result.Sources = []SourceResult{}
	}
	if result.Metadata.SourcesQueried == nil {
		result.Metadata.SourcesQueried = []SourceKind{}
	}
	if needsWebSearch && o.suggester != nil {
		result.WebSearchQueries = o.suggester.Suggest(question, sources)
	}
	result.Metadata.DurationMs = o.now().Sub(start).Milliseconds()

	o.metrics.observeResult(result)
	o.logger.Info("research finished",
		zap.Float64("confidence", confidence),
		zap.Int("sources", len(sources)),
		zap.Int("queried", len(out.queried)),
		zap.String("stop_reason", string(out.stop)),
		zap.Bool("needs_web_search", needsWebSearch),
		zap.Int64("duration_ms", result.Metadata.DurationMs),
	)
	sink.Progress(progressDone, ProgressTotal, "Research complete")

	return result, nil
}

// filesAnalyzed sums the file counts reported by the project-files source.
func filesAnalyzed(sources []SourceResult) int {
	total := 0
	for _, s := range sources {
		switch p := s.Payload.(type) {
		case ProjectFilesPayload:
			total += p.FilesAnalyzed
		case *ProjectFilesPayload:
			if p != nil {
				total += p.FilesAnalyzed
			}
		}
	}
	return total
}
