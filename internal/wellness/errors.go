package wellness

import (
	"context"
	"fmt"
)

// UpstreamError reports a failed or malformed store or generator call. It is
// fatal to the request that observed it.
type UpstreamError struct {
	Op    string
	Cause error
}

func (e *UpstreamError) Error() string { return fmt.Sprintf("upstream %s: %v", e.Op, e.Cause) }
func (e *UpstreamError) Unwrap() error { return e.Cause }

// MessageGenerator produces free-form text for a prompt. Its output is not
// trusted to respect any length or content rule.
type MessageGenerator interface {
	Generate(ctx context.Context, prompt string, maxOutputTokens int) (string, error)
}

// Observer receives counters from the wellness flow. A nil Observer is valid.
type Observer interface {
	RecordSkipped(kind string)
	RecordMessage(source string)
	ObserveGeneration(source string, seconds float64, err error)
}

type nopObserver struct{}

func (nopObserver) RecordSkipped(string)                     {}
func (nopObserver) RecordMessage(string)                     {}
func (nopObserver) ObserveGeneration(string, float64, error) {}

func observerOrNop(o Observer) Observer {
	if o == nil {
		return nopObserver{}
	}
	return o
}
