package research

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// cascade is the per-call scheduler. It is created for one question and
// never shared, so it needs no locking.
type cascade struct {
	cfg       Config
	providers map[SourceKind]Provider
	logger    *zap.Logger
	metrics   *Metrics
	progress  ProgressSink
	now       func() time.Time
}

// cascadeOutcome is what the scheduler hands back to the orchestrator.
type cascadeOutcome struct {
	agg     *Aggregator
	queried []SourceKind
	stop    StopReason
}

// probeOutcome is the classified result of one provider invocation.
type probeOutcome struct {
	result   *SourceResult
	err      *ProviderError
	duration time.Duration
}

// eligible returns the providers to consider, in priority order.
func (c *cascade) eligible() []Provider {
	var out []Provider
	for _, kind := range c.cfg.SourceOrder {
		if p, ok := c.providers[kind]; ok {
			out = append(out, p)
		}
	}
	return out
}

// run executes the cascade for question. parent is the caller's context;
// the overall deadline is derived from it so external cancellation can be
// told apart from deadline expiry.
func (c *cascade) run(parent context.Context, question string) cascadeOutcome {
	ctx, cancel := context.WithTimeout(parent, c.cfg.OverallDeadline)
	defer cancel()

	providers := c.eligible()
	if c.cfg.Parallel && len(providers) > 1 {
		return c.runParallel(parent, ctx, providers, question)
	}
	return c.runSequential(parent, ctx, providers, question)
}

func (c *cascade) runSequential(parent, ctx context.Context, providers []Provider, question string) cascadeOutcome {
	out := cascadeOutcome{agg: NewAggregator()}

	for i, p := range providers {
		if out.agg.Confidence() >= c.cfg.ConfidenceThreshold {
			out.stop = StopEarlyExit
			return out
		}
		if ctx.Err() != nil {
			out.stop = interruption(parent)
			return out
		}

		out.queried = append(out.queried, p.Kind())
		po := c.invoke(ctx, p, question)
		c.record(&out, p.Kind(), po, i+1, len(providers))
	}

	out.stop = c.finalStop(parent, ctx, out.agg)
	return out
}

// runParallel starts every provider at once and folds results strictly in
// priority order. The early-exit check runs only between in-order folds,
// so the outcome is the same as runSequential for identical provider output.
func (c *cascade) runParallel(parent, ctx context.Context, providers []Provider, question string) cascadeOutcome {
	out := cascadeOutcome{agg: NewAggregator()}
	if out.agg.Confidence() >= c.cfg.ConfidenceThreshold {
		out.stop = StopEarlyExit
		return out
	}

	probeCtx, cancelProbes := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(probeCtx)

	slots := make([]chan probeOutcome, len(providers))
	for i, p := range providers {
		slot := make(chan probeOutcome, 1)
		slots[i] = slot
		g.Go(func() error {
			slot <- c.invoke(gctx, p, question)
			return nil
		})
	}
	defer func() {
		cancelProbes()
		_ = g.Wait()
	}()

	for i, p := range providers {
		if out.agg.Confidence() >= c.cfg.ConfidenceThreshold {
			out.stop = StopEarlyExit
			return out
		}
		if ctx.Err() != nil {
			out.stop = interruption(parent)
			return out
		}

		out.queried = append(out.queried, p.Kind())
		po := <-slots[i]
		c.record(&out, p.Kind(), po, i+1, len(providers))
	}

	out.stop = c.finalStop(parent, ctx, out.agg)
	return out
}

// finalStop classifies a cascade that ran through every provider.
func (c *cascade) finalStop(parent, ctx context.Context, agg *Aggregator) StopReason {
	switch {
	case agg.Confidence() >= c.cfg.ConfidenceThreshold:
		return StopEarlyExit
	case ctx.Err() != nil:
		return interruption(parent)
	default:
		return StopExhausted
	}
}

// interruption tells external cancellation apart from deadline expiry.
func interruption(parent context.Context) StopReason {
	if parent.Err() != nil {
		return StopCancelled
	}
	return StopDeadline
}

// record folds a probe outcome into the running state and reports progress.
func (c *cascade) record(out *cascadeOutcome, kind SourceKind, po probeOutcome, done, total int) {
	var status string
	switch {
	case po.err != nil:
		outcome := outcomeError
		if po.err.Kind == ProviderTimeout {
			outcome = outcomeTimeout
		}
		c.metrics.observeProbe(kind, outcome, po.duration)
		c.logger.Warn("provider failed",
			zap.String("source", string(kind)),
			zap.String("kind", string(po.err.Kind)),
			zap.Duration("duration", po.duration),
			zap.Error(po.err),
		)
		status = fmt.Sprintf("%s failed (%s)", kind.DisplayName(), po.err.Kind)

	case po.result == nil:
		c.metrics.observeProbe(kind, outcomeAbsent, po.duration)
		c.logger.Debug("provider had nothing relevant",
			zap.String("source", string(kind)),
			zap.Duration("duration", po.duration),
		)
		status = fmt.Sprintf("%s: nothing relevant", kind.DisplayName())

	default:
		c.metrics.observeProbe(kind, outcomeHit, po.duration)
		running := out.agg.Fold(*po.result)
		c.logger.Debug("provider result folded",
			zap.String("source", string(kind)),
			zap.Float64("confidence", po.result.Confidence),
			zap.Float64("running", running),
			zap.Duration("duration", po.duration),
		)
		status = fmt.Sprintf("%s: confidence %.0f%% (running %.0f%%)",
			kind.DisplayName(), po.result.Confidence*100, running*100)
	}

	c.progress.Progress(probeMilestone(done, total), ProgressTotal, status)
}

// invoke runs one probe under the per-source timeout. It always returns
// once the timeout or ctx fires, even if the provider ignores ctx; a late
// reply is dropped into a buffered channel and discarded.
func (c *cascade) invoke(ctx context.Context, p Provider, question string) probeOutcome {
	kind := p.Kind()
	start := c.now()

	pctx, cancel := context.WithTimeout(ctx, c.cfg.PerSourceTimeout)
	defer cancel()

	type reply struct {
		result *SourceResult
		err    error
	}
	replies := make(chan reply, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				replies <- reply{err: fmt.Errorf("provider panic: %v", r)}
			}
		}()
		res, err := p.Probe(pctx, question)
		replies <- reply{result: res, err: err}
	}()

	var po probeOutcome
	select {
	case r := <-replies:
		po = c.classify(kind, r.result, r.err)
	case <-pctx.Done():
		po.err = Timeout(kind, pctx.Err())
	}
	po.duration = c.now().Sub(start)
	return po
}

// classify validates a provider reply and turns it into a probeOutcome.
func (c *cascade) classify(kind SourceKind, res *SourceResult, err error) probeOutcome {
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return probeOutcome{err: Timeout(kind, err)}
		}
		return probeOutcome{err: normalizeProviderError(kind, err)}
	}
	if res == nil {
		return probeOutcome{}
	}
	if verr := validateResult(kind, res); verr != nil {
		return probeOutcome{err: Malformed(kind, verr)}
	}

	// Copy so later mutation by the provider cannot reach the result.
	owned := *res
	if owned.Timestamp.IsZero() {
		owned.Timestamp = c.now()
	}
	return probeOutcome{result: &owned}
}
