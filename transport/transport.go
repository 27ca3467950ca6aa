// Package transport abstracts the collective message-passing primitives
// the quantile package needs: topology queries plus all-reduce, gather,
// gatherv and broadcast. It exists so the selection algorithm never talks
// to a concrete cluster runtime directly — callers supply an
// implementation (an adapter over a real MPI-equivalent runtime, or the
// in-memory simulation in this package) and every collective call in
// quantile goes through it.
//
// All methods are collective: every process participating in a Transport
// must call the same method, in the same order, on the same logical round,
// or behavior is undefined (see design note on ordering guarantees).
package transport

import "context"

// Root is the distinguished process that performs pivot selection and
// local-selector gathering.
const Root = 0

// Transport is the minimal set of collective operations the quantile
// package requires. Implementations need not support point-to-point
// messaging; none is used above this package.
type Transport interface {
	// Size returns P, the number of participating processes.
	Size() int
	// Rank returns this process's 0-based identifier in [0, Size()).
	Rank() int

	// AllreduceSumI64 sums vec element-wise across all processes and
	// returns the result, identical on every process. The input vector
	// must have the same length on every process.
	AllreduceSumI64(ctx context.Context, vec []int64) ([]int64, error)

	// GatherI32 collects one int32 from every process onto Root. Returns
	// a slice of length Size() indexed by rank on Root; returns nil on
	// non-root processes.
	GatherI32(ctx context.Context, value int32) ([]int32, error)

	// GathervF64 collects a variable-length slice of float64 from every
	// process onto Root, concatenated in rank order. Returns the
	// concatenated buffer on Root; returns nil on non-root processes.
	GathervF64(ctx context.Context, values []float64) ([]float64, error)

	// BroadcastF64 distributes value from Root to every process. Callers
	// on non-root processes pass an arbitrary placeholder; the returned
	// value is Root's value on every process.
	BroadcastF64(ctx context.Context, value float64) (float64, error)
}
