package research

import (
	"fmt"
	"math"
	"time"
)

// Default configuration values.
const (
	DefaultConfidenceThreshold = 0.6
	DefaultPerSourceTimeout    = 5 * time.Second
	DefaultOverallDeadline     = 30 * time.Second
)

// Config controls a cascade.
type Config struct {
	// ConfidenceThreshold stops the cascade once the running confidence
	// reaches it (>=). Must be in [0,1].
	ConfidenceThreshold float64 `json:"confidence_threshold"`

	// SourceOrder is the priority sequence of probed sources. web_search is
	// not allowed here.
	SourceOrder []SourceKind `json:"source_order"`

	PerSourceTimeout time.Duration `json:"per_source_timeout"`
	OverallDeadline  time.Duration `json:"overall_deadline"`

	// Parallel starts every eligible provider at once. Results are still
	// folded in priority order so the outcome matches a sequential run.
	Parallel bool `json:"parallel"`
}

// DefaultConfig returns the default cascade configuration.
func DefaultConfig() Config {
	order := make([]SourceKind, len(DefaultSourceOrder))
	copy(order, DefaultSourceOrder)
	return Config{
		ConfidenceThreshold: DefaultConfidenceThreshold,
		SourceOrder:         order,
		PerSourceTimeout:    DefaultPerSourceTimeout,
		OverallDeadline:     DefaultOverallDeadline,
	}
}

// Validate checks the configuration and returns an error wrapping
// ErrInvalidConfig on the first problem found.
func (c Config) Validate() error {
	if err := ValidateThreshold(c.ConfidenceThreshold); err != nil {
		return err
	}
	if len(c.SourceOrder) == 0 {
		return fmt.Errorf("%w: source order is empty", ErrInvalidConfig)
	}
	seen := make(map[SourceKind]bool, len(c.SourceOrder))
	for _, k := range c.SourceOrder {
		if !k.Valid() {
			return fmt.Errorf("%w: unknown source kind %q", ErrInvalidConfig, k)
		}
		if k == SourceWebSearch {
			return fmt.Errorf("%w: %s is a recommendation, not a probed source", ErrInvalidConfig, k)
		}
		if seen[k] {
			return fmt.Errorf("%w: source %q listed twice", ErrInvalidConfig, k)
		}
		seen[k] = true
	}
	if c.PerSourceTimeout <= 0 {
		return fmt.Errorf("%w: per-source timeout must be positive, got %s", ErrInvalidConfig, c.PerSourceTimeout)
	}
	if c.OverallDeadline <= 0 {
		return fmt.Errorf("%w: overall deadline must be positive, got %s", ErrInvalidConfig, c.OverallDeadline)
	}
	return nil
}

// ValidateThreshold checks that v is a usable confidence threshold.
func ValidateThreshold(v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return fmt.Errorf("%w: confidence threshold %v outside [0,1]", ErrInvalidConfig, v)
	}
	return nil
}

// clone returns a deep copy so a snapshot cannot alias the owner's slice.
func (c Config) clone() Config {
	out := c
	out.SourceOrder = make([]SourceKind, len(c.SourceOrder))
	copy(out.SourceOrder, c.SourceOrder)
	return out
}
