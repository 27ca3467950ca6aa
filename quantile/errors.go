package quantile

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidQuantile is returned when q is outside [0, 1], or when q
	// = 1.0 under Q1Reject.
	ErrInvalidQuantile = errors.New("distquantile: q must be in [0, 1]")
	// ErrEmptyInput is returned when totalSize <= 0.
	ErrEmptyInput = errors.New("distquantile: total size must be > 0")
	// ErrSizeMismatch is returned when the globally-reduced sum of local
	// sizes disagrees with the caller-supplied totalSize.
	ErrSizeMismatch = errors.New("distquantile: sum of local sizes disagrees with total size")
	// ErrNaN is returned when a local buffer contains a NaN value.
	ErrNaN = errors.New("distquantile: input contains NaN")
)

// FatalError wraps an unrecoverable failure: a broken algorithm invariant
// (spec kind 4) or a propagated collective transport failure (spec kind
// 2). Unlike the sentinel errors above, a FatalError indicates the call
// cannot be retried by the caller with the same inputs.
type FatalError struct {
	Op  string
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("distquantile: fatal error in %s: %v", e.Op, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

func rankOutOfRangeError(k int64, n int) error {
	return fmt.Errorf("rank %d out of range for global size %d", k, n)
}
