package research

import (
	"context"
	"errors"
	"fmt"
)

// Fatal errors surfaced to callers of the orchestrator. They are never retried.
var (
	// ErrInvalidInput is returned when the question is empty or whitespace-only.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfig is returned for out-of-range thresholds and malformed
	// source orders or timeouts.
	ErrInvalidConfig = errors.New("invalid config")
)

// ProviderErrorKind classifies a provider failure.
type ProviderErrorKind string

const (
	ProviderUnavailable ProviderErrorKind = "unavailable"
	ProviderTimeout     ProviderErrorKind = "timeout"
	ProviderMalformed   ProviderErrorKind = "malformed"
)

// ProviderError is a recoverable failure of a single source. The cascade
// logs it, excludes the source from the result and moves on.
type ProviderError struct {
	Source SourceKind
	Kind   ProviderErrorKind
	Err    error
}

func (e *ProviderError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s provider %s", e.Source, e.Kind)
	}
	return fmt.Sprintf("%s provider %s: %v", e.Source, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Unavailable builds an Unavailable ProviderError.
func Unavailable(source SourceKind, err error) *ProviderError {
	return &ProviderError{Source: source, Kind: ProviderUnavailable, Err: err}
}

// Timeout builds a Timeout ProviderError.
func Timeout(source SourceKind, err error) *ProviderError {
	return &ProviderError{Source: source, Kind: ProviderTimeout, Err: err}
}

// Malformed builds a Malformed ProviderError.
func Malformed(source SourceKind, err error) *ProviderError {
	return &ProviderError{Source: source, Kind: ProviderMalformed, Err: err}
}

// normalizeProviderError maps any error returned by a provider onto a
// *ProviderError for source. Context deadlines become timeouts; anything
// else that is not already classified is treated as unavailable.
func normalizeProviderError(source SourceKind, err error) *ProviderError {
	var pe *ProviderError
	if errors.As(err, &pe) {
		if pe.Source == "" {
			return &ProviderError{Source: source, Kind: pe.Kind, Err: pe.Err}
		}
		return pe
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout(source, err)
	}
	return Unavailable(source, err)
}
