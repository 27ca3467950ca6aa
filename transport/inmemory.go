package transport

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// RunInMemory simulates p cooperating processes as goroutines sharing a
// single address space and runs fn once per simulated process, each given
// a Transport bound to its own rank. It is the harness the quantile
// package's tests run against, and it doubles as a usable single-machine
// Transport for callers that want the algorithm's collective behavior
// without a real cluster runtime.
//
// Every simulated process runs inside an errgroup.Group: if fn returns a
// non-nil error on any process, the group's context is canceled, which
// unblocks every other process waiting inside a collective call (they
// observe ctx.Done() and return a canceled error rather than hanging
// forever), and RunInMemory returns the first error encountered.
func RunInMemory(ctx context.Context, p int, fn func(ctx context.Context, tr Transport) error) error {
	if p <= 0 {
		return fmt.Errorf("transport: p must be > 0, got %d", p)
	}
	h := newHub(p)
	g, gctx := errgroup.WithContext(ctx)
	for rank := 0; rank < p; rank++ {
		rank := rank
		g.Go(func() error {
			tr := &inMemoryTransport{hub: h, rank: rank, size: p}
			return fn(gctx, tr)
		})
	}
	return g.Wait()
}

type inMemoryTransport struct {
	hub  *hub
	rank int
	size int
}

func (t *inMemoryTransport) Size() int { return t.size }
func (t *inMemoryTransport) Rank() int { return t.rank }

func (t *inMemoryTransport) AllreduceSumI64(ctx context.Context, vec []int64) ([]int64, error) {
	res, err := t.hub.rendezvous(ctx, t.rank, append([]int64(nil), vec...), combineAllreduceSumI64)
	if err != nil {
		return nil, &Error{Op: "AllreduceSumI64", Rank: t.rank, Err: err}
	}
	out := res.([]int64)
	return append([]int64(nil), out...), nil
}

func combineAllreduceSumI64(contributions []any) (any, error) {
	var width int
	for _, c := range contributions {
		v := c.([]int64)
		if width == 0 {
			width = len(v)
		} else if len(v) != width {
			return nil, fmt.Errorf("allreduce_sum_i64: inconsistent vector length across processes: %d vs %d", width, len(v))
		}
	}
	sum := make([]int64, width)
	for _, c := range contributions {
		v := c.([]int64)
		for i, x := range v {
			sum[i] += x
		}
	}
	return sum, nil
}

func (t *inMemoryTransport) GatherI32(ctx context.Context, value int32) ([]int32, error) {
	res, err := t.hub.rendezvous(ctx, t.rank, value, combineGatherI32)
	if err != nil {
		return nil, &Error{Op: "GatherI32", Rank: t.rank, Err: err}
	}
	if t.rank != Root {
		return nil, nil
	}
	out := res.([]int32)
	return append([]int32(nil), out...), nil
}

func combineGatherI32(contributions []any) (any, error) {
	out := make([]int32, len(contributions))
	for i, c := range contributions {
		out[i] = c.(int32)
	}
	return out, nil
}

func (t *inMemoryTransport) GathervF64(ctx context.Context, values []float64) ([]float64, error) {
	res, err := t.hub.rendezvous(ctx, t.rank, append([]float64(nil), values...), combineGathervF64)
	if err != nil {
		return nil, &Error{Op: "GathervF64", Rank: t.rank, Err: err}
	}
	if t.rank != Root {
		return nil, nil
	}
	out := res.([]float64)
	return append([]float64(nil), out...), nil
}

func combineGathervF64(contributions []any) (any, error) {
	total := 0
	for _, c := range contributions {
		total += len(c.([]float64))
	}
	out := make([]float64, 0, total)
	for _, c := range contributions {
		out = append(out, c.([]float64)...)
	}
	return out, nil
}

func (t *inMemoryTransport) BroadcastF64(ctx context.Context, value float64) (float64, error) {
	res, err := t.hub.rendezvous(ctx, t.rank, value, combineBroadcastF64)
	if err != nil {
		return 0, &Error{Op: "BroadcastF64", Rank: t.rank, Err: err}
	}
	return res.(float64), nil
}

func combineBroadcastF64(contributions []any) (any, error) {
	return contributions[Root].(float64), nil
}

// hub is the shared synchronization point for one RunInMemory group. Every
// Transport method call on every simulated process funnels through
// rendezvous, which blocks until all p processes have contributed for the
// current round, then runs combine exactly once and releases everyone with
// the same result.
type hub struct {
	p int

	mu  sync.Mutex
	cur *generation
}

type generation struct {
	contributions []any
	count         int
	combined      any
	err           error
	done          chan struct{}
}

func newGeneration(p int) *generation {
	return &generation{contributions: make([]any, p), done: make(chan struct{})}
}

func newHub(p int) *hub {
	return &hub{p: p, cur: newGeneration(p)}
}

// rendezvous contributes value on behalf of rank to the current round,
// waits for the remaining p-1 processes, and returns the single combine
// result computed once by whichever process happens to arrive last.
func (h *hub) rendezvous(ctx context.Context, rank int, value any, combine func([]any) (any, error)) (any, error) {
	h.mu.Lock()
	g := h.cur
	g.contributions[rank] = value
	g.count++
	if g.count == h.p {
		combined, err := combine(g.contributions)
		g.combined = combined
		g.err = err
		h.cur = newGeneration(h.p)
		h.mu.Unlock()
		close(g.done)
		return combined, err
	}
	h.mu.Unlock()

	select {
	case <-g.done:
		return g.combined, g.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
