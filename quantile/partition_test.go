package quantile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distquantile/distquantile-go/transport"
)

func TestPartitionBucketCounts(t *testing.T) {
	locals := [][]float64{
		{1, 2, 3, 4, 5},
		{6, 7, 8},
		{},
	}
	var got [3]bucketCounts
	var localCounts [3][3]int64
	err := transport.RunInMemory(context.Background(), len(locals), func(ctx context.Context, tr transport.Transport) error {
		counts, lc, err := partition(ctx, tr, locals[tr.Rank()], 3, 7)
		if err != nil {
			return err
		}
		got[tr.Rank()] = counts
		localCounts[tr.Rank()] = lc
		return nil
	})
	require.NoError(t, err)

	// <3: {1,2}; [3,7): {3,4,5,6}; >=7: {7,8}
	want := bucketCounts{c0: 2, c1: 4, c2: 2}
	for rank, counts := range got {
		assert.Equal(t, want, counts, "rank %d", rank)
	}
	assert.Equal(t, [3]int64{2, 3, 0}, localCounts[0])
	assert.Equal(t, [3]int64{0, 1, 2}, localCounts[1])
	assert.Equal(t, [3]int64{0, 0, 0}, localCounts[2])
}

func TestPartitionSumEqualsGlobalSize(t *testing.T) {
	locals := [][]float64{
		{1.5, -2.0, 9.9, 3.0},
		{0.0, 100.0},
	}
	var total int64
	for _, l := range locals {
		total += int64(len(l))
	}
	err := transport.RunInMemory(context.Background(), len(locals), func(ctx context.Context, tr transport.Transport) error {
		counts, _, err := partition(ctx, tr, locals[tr.Rank()], 0, 10)
		if err != nil {
			return err
		}
		assert.Equal(t, total, counts.c0+counts.c1+counts.c2)
		return nil
	})
	require.NoError(t, err)
}

func TestRebuildBucket(t *testing.T) {
	local := []float64{1, 2, 3, 4, 5, 6, 7}
	lo, hi := 3.0, 6.0

	low := rebuildBucket(local, lo, hi, bucketLow, 2)
	assert.Equal(t, []float64{1, 2}, low)

	mid := rebuildBucket(local, lo, hi, bucketMid, 3)
	assert.Equal(t, []float64{3, 4, 5}, mid)

	high := rebuildBucket(local, lo, hi, bucketHigh, 2)
	assert.Equal(t, []float64{6, 7}, high)
}
