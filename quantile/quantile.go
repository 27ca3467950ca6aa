// Package quantile computes the k-th smallest float64 across a dataset
// partitioned over many cooperating processes, using random sampling and
// three-way pivot partitioning above a size threshold and a full gather
// below it. See Quantile.
package quantile

import (
	"context"
	"math"

	"github.com/distquantile/distquantile-go/transport"
)

// Quantile is the single externally-callable operation. It must be
// invoked collectively by every process sharing tr, with identical
// totalSize and q on every process; behavior is undefined otherwise. It
// returns the same float64 on every process: a value v present in the
// global dataset such that, with k = floor(q*totalSize) (totalSize-1 for
// q = 1.0 under Q1Clamp), at most k elements are strictly less than v and
// at least k+1 elements are <= v.
//
// local must be exactly this process's slice of the global dataset;
// local may be empty (including nil) on any process, including every
// process but one. Quantile never mutates local.
//
// The sum of len(local) across every process in the communicator must
// equal totalSize; this is checked via a collective reduction before any
// other work happens.
func Quantile(ctx context.Context, tr transport.Transport, local []float64, totalSize int64, q float64, opts ...Option) (float64, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if totalSize <= 0 {
		return 0, ErrEmptyInput
	}
	if math.IsNaN(q) || q < 0 || q > 1 {
		return 0, ErrInvalidQuantile
	}
	if q == 1 && cfg.q1Policy == Q1Reject {
		return 0, ErrInvalidQuantile
	}

	// A NaN on one process must not make that process skip the
	// collective below while its siblings enter it — every process
	// always performs the same reduction, then all decide identically
	// from its globally-reduced result (divergent control flow across
	// processes is forbidden).
	localHasNaN := int64(0)
	for _, v := range local {
		if math.IsNaN(v) {
			localHasNaN = 1
			break
		}
	}

	sums, err := tr.AllreduceSumI64(ctx, []int64{int64(len(local)), localHasNaN})
	if err != nil {
		return 0, &FatalError{Op: "Quantile.checkPreconditions", Err: err}
	}
	if sums[1] > 0 {
		return 0, ErrNaN
	}
	if sums[0] != totalSize {
		return 0, ErrSizeMismatch
	}

	k := int64(q * float64(totalSize))
	if k >= totalSize {
		k = totalSize - 1 // q == 1 under Q1Clamp
	}

	return selectNth(ctx, tr, copyOf(local), k, cfg)
}

func copyOf(local []float64) []float64 {
	out := make([]float64, len(local))
	copy(out, local)
	return out
}
