package quantile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distquantile/distquantile-go/transport"
)

// failingTransport wraps a real in-memory-group member and injects a
// failure from the first call matching failOn, simulating spec kind 2
// (collective transport failure) without needing a real broken cluster.
type failingTransport struct {
	transport.Transport
	failOn string
}

var errInjected = errors.New("injected transport failure")

func (f *failingTransport) AllreduceSumI64(ctx context.Context, vec []int64) ([]int64, error) {
	if f.failOn == "allreduce" {
		return nil, errInjected
	}
	return f.Transport.AllreduceSumI64(ctx, vec)
}

func TestSelectNthPropagatesTransportFailureAsFatal(t *testing.T) {
	cfg := defaultConfig()
	err := transport.RunInMemory(context.Background(), 1, func(ctx context.Context, tr transport.Transport) error {
		ft := &failingTransport{Transport: tr, failOn: "allreduce"}
		_, err := selectNth(ctx, ft, []float64{1, 2, 3}, 1, cfg)
		return err
	})
	require.Error(t, err)
	var fatal *FatalError
	assert.ErrorAs(t, err, &fatal)
	assert.ErrorIs(t, err, errInjected)
}

func TestSelectNthRecordsLevelsInStats(t *testing.T) {
	cfg := defaultConfig()
	cfg.threshold = 10
	var stats Stats
	cfg.stats = &stats

	local := make([]float64, 1000)
	for i := range local {
		local[i] = float64(i)
	}
	v, err := selectNth_singleProcess(t, cfg, local, 500)
	require.NoError(t, err)
	assert.Equal(t, 500.0, v)
	assert.Greater(t, stats.Levels, 0)
	assert.Less(t, stats.FinalN, int64(len(local)))
}

// selectNth_singleProcess runs selectNth under a single simulated
// process, which is sufficient to exercise the sampling+partitioning
// loop (P=1 is a legal topology per the data model).
func selectNth_singleProcess(t *testing.T, cfg *config, local []float64, k int64) (float64, error) {
	t.Helper()
	var result float64
	var retErr error
	err := transport.RunInMemory(context.Background(), 1, func(ctx context.Context, tr transport.Transport) error {
		v, err := selectNth(ctx, tr, local, k, cfg)
		result, retErr = v, err
		return err
	})
	if err != nil {
		return 0, err
	}
	return result, retErr
}
