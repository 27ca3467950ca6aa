package quantile

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/distquantile/distquantile-go/transport"
)

// selectNth drives the overall algorithm: bootstrap the global size,
// dispatch to the small-path Local Selector or alternate between the
// Sample-Based Pivoter and the Three-Way Partitioner until the small path
// triggers. Written as a loop over a rebuilt local slice (design note:
// "recursion -> iteration") rather than true recursion, so stack depth
// stays O(1) regardless of how many levels the algorithm takes.
func selectNth(ctx context.Context, tr transport.Transport, local []float64, k int64, cfg *config) (float64, error) {
	rng := rand.New(rand.NewSource(pivotSeed(cfg.baseSeed, tr.Rank())))
	retriesLeft := cfg.maxPivotRetries
	retriesUsed := 0
	forceLocal := false
	levels := 0

	for {
		sums, err := tr.AllreduceSumI64(ctx, []int64{int64(len(local))})
		if err != nil {
			return 0, &FatalError{Op: "selectNth.allreduceN", Err: err}
		}
		n := sums[0]

		if k < 0 || k >= n {
			return 0, &FatalError{Op: "selectNth", Err: fmt.Errorf("rank %d out of range for global size %d", k, n)}
		}

		if forceLocal || n < cfg.threshold {
			if cfg.stats != nil {
				cfg.stats.Levels = levels
				cfg.stats.FinalN = n
				cfg.stats.FellBackToLocal = forceLocal
				cfg.stats.PivotRetries = retriesUsed
			}
			return localSelect(ctx, tr, local, k)
		}

		pr, err := pivot(ctx, tr, local, k, n, cfg.sampleTotal, rng)
		if err != nil {
			return 0, err
		}

		counts, localCounts, err := partition(ctx, tr, local, pr.lo, pr.hi)
		if err != nil {
			return 0, err
		}

		if counts.c0+counts.c1+counts.c2 != n {
			return 0, &FatalError{Op: "selectNth", Err: fmt.Errorf("bucket counts %d+%d+%d != global size %d", counts.c0, counts.c1, counts.c2, n)}
		}

		// Tie-break: the [>=hi] bucket alone already covers every
		// remaining rank from k onward, so hi is the duplicate-block
		// value sitting on rank k.
		if counts.c2 > n-k {
			if cfg.stats != nil {
				cfg.stats.Levels = levels
				cfg.stats.FinalN = n
				cfg.stats.FellBackToLocal = forceLocal
				cfg.stats.PivotRetries = retriesUsed
			}
			return pr.hi, nil
		}

		if counts.c0 >= k {
			// Degenerate pivot: the low bucket can't legally contain
			// the target rank. Retry with a fresh sample at this same
			// level, then give up and fall back to the Local Selector
			// unconditionally so the algorithm still terminates.
			if retriesLeft > 0 {
				retriesLeft--
				retriesUsed++
				continue
			}
			forceLocal = true
			continue
		}

		levels++
		retriesLeft = cfg.maxPivotRetries
		switch {
		case k < counts.c0:
			local = rebuildBucket(local, pr.lo, pr.hi, bucketLow, localCounts[0])
		case k < counts.c0+counts.c1:
			local = rebuildBucket(local, pr.lo, pr.hi, bucketMid, localCounts[1])
			k -= counts.c0
		default:
			local = rebuildBucket(local, pr.lo, pr.hi, bucketHigh, localCounts[2])
			k -= counts.c0 + counts.c1
		}
	}
}
