package quantile

import (
	"context"

	"github.com/distquantile/distquantile-go/internal"
	"github.com/distquantile/distquantile-go/transport"
)

// localSelect implements the gather-all path: Root gathers every
// process's slice into one contiguous buffer, runs introselect to place
// rank k, and broadcasts the answer back to everyone. Non-root processes
// never allocate the gather buffer.
func localSelect(ctx context.Context, tr transport.Transport, local []float64, k int64) (float64, error) {
	if _, err := tr.GatherI32(ctx, int32(len(local))); err != nil {
		return 0, &FatalError{Op: "localSelect.gatherSizes", Err: err}
	}

	buf, err := tr.GathervF64(ctx, local)
	if err != nil {
		return 0, &FatalError{Op: "localSelect.gatherValues", Err: err}
	}

	var result float64
	if tr.Rank() == transport.Root {
		if k < 0 || int(k) >= len(buf) {
			return 0, &FatalError{Op: "localSelect", Err: rankOutOfRangeError(k, len(buf))}
		}
		result = internal.QuickSelect(buf, 0, len(buf)-1, int(k))
	}

	out, err := tr.BroadcastF64(ctx, result)
	if err != nil {
		return 0, &FatalError{Op: "localSelect.broadcast", Err: err}
	}
	return out, nil
}
