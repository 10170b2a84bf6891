package research

import (
	"context"
	"fmt"
	"math"
)

// Provider is a single knowledge source.
//
// Probe returns (nil, nil) when the source has nothing relevant; that is a
// valid outcome and distinct from failure. Failures should be reported as
// *ProviderError. Probe must honor ctx cancellation and deadlines.
type Provider interface {
	Kind() SourceKind
	Probe(ctx context.Context, question string) (*SourceResult, error)
}

// ProbeFunc is the function shape of Provider.Probe.
type ProbeFunc func(ctx context.Context, question string) (*SourceResult, error)

// funcProvider adapts a ProbeFunc into a Provider.
type funcProvider struct {
	kind  SourceKind
	probe ProbeFunc
}

// ProviderFunc returns a Provider of the given kind backed by fn.
func ProviderFunc(kind SourceKind, fn ProbeFunc) Provider {
	return funcProvider{kind: kind, probe: fn}
}

func (p funcProvider) Kind() SourceKind { return p.kind }

func (p funcProvider) Probe(ctx context.Context, question string) (*SourceResult, error) {
	return p.probe(ctx, question)
}

// Suggester produces web search queries for escalation. It is never invoked
// as part of the cascade itself.
type Suggester interface {
	Suggest(question string, sources []SourceResult) []string
}

// validateResult rejects results that would break the result invariants.
func validateResult(kind SourceKind, r *SourceResult) error {
	if r.Kind != kind {
		return fmt.Errorf("result kind %q from %q provider", r.Kind, kind)
	}
	if math.IsNaN(r.Confidence) || r.Confidence < 0 || r.Confidence > 1 {
		return fmt.Errorf("confidence %v outside [0,1]", r.Confidence)
	}
	if r.Payload != nil && r.Payload.payloadKind() != kind {
		return fmt.Errorf("payload for %q attached to %q result", r.Payload.payloadKind(), kind)
	}
	return nil
}
