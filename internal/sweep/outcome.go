package sweep

import (
	"context"
	"time"
)

// Status classifies the result of one remote action attempt.
type Status int

const (
	// StatusSuccess: the item was removed.
	StatusSuccess Status = iota
	// StatusAlreadyGone: the target no longer exists. Counts as done.
	StatusAlreadyGone
	// StatusForbidden: the API refuses the mutation. Retrying cannot help,
	// so it also counts as done.
	StatusForbidden
	// StatusRateLimited: the class's limit is exhausted. The item is retried
	// once the window passes.
	StatusRateLimited
	// StatusError: anything else. The item is skipped without ledger credit.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusAlreadyGone:
		return "already_gone"
	case StatusForbidden:
		return "forbidden"
	case StatusRateLimited:
		return "rate_limited"
	default:
		return "error"
	}
}

// Outcome is what an Executor reports back for one attempt.
type Outcome struct {
	Status Status

	// ResetAt is the instant the class's rate limit resets, when the API
	// reported one. Zero means unknown; the scheduler falls back to a fixed
	// delay.
	ResetAt time.Time

	// Err carries detail for StatusError.
	Err error
}

func Success() Outcome       { return Outcome{Status: StatusSuccess} }
func AlreadyGone() Outcome   { return Outcome{Status: StatusAlreadyGone} }
func Forbidden() Outcome     { return Outcome{Status: StatusForbidden} }
func Failed(err error) Outcome { return Outcome{Status: StatusError, Err: err} }

// RateLimited reports a throttle signal. resetAt may be zero when the API
// did not include a reset header.
func RateLimited(resetAt time.Time) Outcome {
	return Outcome{Status: StatusRateLimited, ResetAt: resetAt}
}

// done reports whether the outcome is terminal-success for ledger purposes.
func (o Outcome) done() bool {
	switch o.Status {
	case StatusSuccess, StatusAlreadyGone, StatusForbidden:
		return true
	default:
		return false
	}
}

// Executor performs one action against the remote service.
//
// The scheduler issues at most one Perform at a time; implementations may
// block on network I/O and must honor ctx cancellation.
type Executor interface {
	Perform(ctx context.Context, item Item) Outcome
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, item Item) Outcome

func (f ExecutorFunc) Perform(ctx context.Context, item Item) Outcome { return f(ctx, item) }
