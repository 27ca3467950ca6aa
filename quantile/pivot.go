package quantile

import (
	"context"
	"encoding/binary"
	"math"
	"math/rand"

	"github.com/twmb/murmur3"

	"github.com/distquantile/distquantile-go/internal"
	"github.com/distquantile/distquantile-go/transport"
)

// pivotSeed derives a deterministic per-rank PRNG seed from baseSeed and
// rank, the same hash-the-bit-pattern approach the teacher uses to turn a
// float64 into a hash (murmur3.SeedSum64 over the value's raw bytes).
func pivotSeed(baseSeed uint64, rank int) int64 {
	var scratch [8]byte
	binary.LittleEndian.PutUint64(scratch[:], uint64(rank))
	return int64(murmur3.SeedSum64(baseSeed, scratch[:]))
}

// drawSample returns up to sampleSize values drawn uniformly with
// replacement from local, using rng. If local is empty or sampleSize is
// 0, it returns an empty (non-nil) slice so the transport's gatherv count
// contribution is well-formed.
func drawSample(local []float64, sampleSize int, rng *rand.Rand) []float64 {
	if sampleSize <= 0 || len(local) == 0 {
		return []float64{}
	}
	out := make([]float64, sampleSize)
	for i := range out {
		out[i] = local[rng.Intn(len(local))]
	}
	return out
}

// localSampleSize implements spec's s_p = min(ceil(SAMPLE_TOTAL/P), |A_p|).
func localSampleSize(sampleTotal int64, p int, localLen int) int {
	perProcess := int((sampleTotal + int64(p) - 1) / int64(p))
	return internal.Min(perProcess, localLen)
}

// pivotResult is the (lo, hi) bracket the Three-Way Partitioner splits on.
type pivotResult struct {
	lo float64
	hi float64
}

// pivot draws a bounded random subsample from every process, gathers it
// onto Root, and computes a pivot pair bracketing rank k with high
// probability, broadcasting the result to every process.
func pivot(ctx context.Context, tr transport.Transport, local []float64, k, n, sampleTotal int64, rng *rand.Rand) (pivotResult, error) {
	sampleSize := localSampleSize(sampleTotal, tr.Size(), len(local))
	sample := drawSample(local, sampleSize, rng)

	if _, err := tr.GatherI32(ctx, int32(len(sample))); err != nil {
		return pivotResult{}, &FatalError{Op: "pivot.gatherCounts", Err: err}
	}
	gathered, err := tr.GathervF64(ctx, sample)
	if err != nil {
		return pivotResult{}, &FatalError{Op: "pivot.gatherSamples", Err: err}
	}

	var lo, hi float64
	if tr.Rank() == transport.Root {
		lo, hi = computePivotPair(gathered, k, n)
	}

	bLo, err := tr.BroadcastF64(ctx, lo)
	if err != nil {
		return pivotResult{}, &FatalError{Op: "pivot.broadcastLo", Err: err}
	}
	bHi, err := tr.BroadcastF64(ctx, hi)
	if err != nil {
		return pivotResult{}, &FatalError{Op: "pivot.broadcastHi", Err: err}
	}
	return pivotResult{lo: bLo, hi: bHi}, nil
}

// computePivotPair runs on Root only: k' = floor(k*(S/N)), margin =
// ceil(sqrt(S*ln N)), k1 = max(0, k'-margin), k2 = min(S-1, k'+margin),
// lo = sample[k1], hi = sample[k2] via two introselect passes over the
// same (reordered in place between calls) buffer.
func computePivotPair(sample []float64, k, n int64) (lo, hi float64) {
	s := int64(len(sample))
	if s == 0 {
		return 0, 0
	}
	kPrime := int64(float64(k) * (float64(s) / float64(n)))
	margin := int64(math.Ceil(math.Sqrt(float64(s) * math.Log(float64(n)))))

	k1 := kPrime - margin
	if k1 < 0 {
		k1 = 0
	}
	k2 := kPrime + margin
	if k2 > s-1 {
		k2 = s - 1
	}

	lo = internal.QuickSelect(sample, 0, int(s-1), int(k1))
	hi = internal.QuickSelect(sample, 0, int(s-1), int(k2))
	if hi < lo {
		hi = lo
	}
	return lo, hi
}
