package quantile

import (
	"context"
	"fmt"

	"github.com/distquantile/distquantile-go/transport"
)

// bucketCounts is the global (c0, c1, c2) triple: counts of elements <lo,
// in [lo,hi), and >=hi across every process.
type bucketCounts struct {
	c0, c1, c2 int64
}

// partition scans local once to count per-bucket sizes, all-reduces them
// into global counts, and returns both. The caller decides which bucket
// contains rank k and calls rebuildBucket to materialize the new local
// slice — partition itself never allocates the rebuilt buffer, per the
// two-pass count-then-copy design.
func partition(ctx context.Context, tr transport.Transport, local []float64, lo, hi float64) (bucketCounts, [3]int64, error) {
	var m0, m1, m2 int64
	for _, v := range local {
		switch {
		case v < lo:
			m0++
		case v < hi:
			m1++
		default:
			m2++
		}
	}

	sums, err := tr.AllreduceSumI64(ctx, []int64{m0, m1, m2})
	if err != nil {
		return bucketCounts{}, [3]int64{}, &FatalError{Op: "partition.allreduce", Err: err}
	}
	if len(sums) != 3 {
		return bucketCounts{}, [3]int64{}, &FatalError{Op: "partition", Err: fmt.Errorf("allreduce_sum_i64 returned %d values, want 3", len(sums))}
	}

	counts := bucketCounts{c0: sums[0], c1: sums[1], c2: sums[2]}
	return counts, [3]int64{m0, m1, m2}, nil
}

// bucket identifies which of the three partitions a recursion continues
// into.
type bucket int

const (
	bucketLow bucket = iota
	bucketMid
	bucketHigh
)

// rebuildBucket performs the second pass: a fresh scan of local copying
// only the elements belonging to which, into a buffer sized exactly to
// localCount so no reallocation is needed.
func rebuildBucket(local []float64, lo, hi float64, which bucket, localCount int64) []float64 {
	out := make([]float64, 0, localCount)
	for _, v := range local {
		switch which {
		case bucketLow:
			if v < lo {
				out = append(out, v)
			}
		case bucketMid:
			if v >= lo && v < hi {
				out = append(out, v)
			}
		case bucketHigh:
			if v >= hi {
				out = append(out, v)
			}
		}
	}
	return out
}
