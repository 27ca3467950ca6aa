package quantile

// Q1Policy controls how the Boundary Adapter resolves q = 1.0, where the
// naive rank k = floor(q*N) = N is out of range [0, N-1].
type Q1Policy int

const (
	// Q1Clamp retains the algorithm's "always returns a value present in
	// the data" property by treating q = 1.0 as rank N-1. This is the
	// default.
	Q1Clamp Q1Policy = iota
	// Q1Reject returns ErrInvalidQuantile for q = 1.0 instead of
	// clamping.
	Q1Reject
)

const (
	// DefaultThreshold is the global size below which Quantile gathers
	// all data to Root and selects locally instead of sampling and
	// partitioning.
	DefaultThreshold = 10_000_000
	// DefaultSampleTotal is the global sample budget the Sample-Based
	// Pivoter draws from across all processes.
	DefaultSampleTotal = 100_000
	// DefaultMaxPivotRetries is the number of times a degenerate pivot
	// (one that fails to shrink the problem) is redrawn before falling
	// back unconditionally to the Local Selector.
	DefaultMaxPivotRetries = 3
	// DefaultBaseSeed seeds the per-rank deterministic PRNGs used by the
	// Sample-Based Pivoter when no seed is supplied.
	DefaultBaseSeed = uint64(0x517cc1b727220a95)
)

type config struct {
	threshold       int64
	sampleTotal     int64
	maxPivotRetries int
	baseSeed        uint64
	q1Policy        Q1Policy
	stats           *Stats
}

func defaultConfig() *config {
	return &config{
		threshold:       DefaultThreshold,
		sampleTotal:     DefaultSampleTotal,
		maxPivotRetries: DefaultMaxPivotRetries,
		baseSeed:        DefaultBaseSeed,
		q1Policy:        Q1Clamp,
	}
}

// Option configures a single Quantile call.
type Option func(*config)

// WithThreshold overrides DefaultThreshold. The default must be preserved
// unless a caller explicitly opts out, since it governs the small-path vs
// sampling-path behavioral boundary.
func WithThreshold(n int64) Option {
	return func(c *config) { c.threshold = n }
}

// WithSampleTotal overrides DefaultSampleTotal.
func WithSampleTotal(n int64) Option {
	return func(c *config) { c.sampleTotal = n }
}

// WithMaxPivotRetries overrides DefaultMaxPivotRetries.
func WithMaxPivotRetries(n int) Option {
	return func(c *config) { c.maxPivotRetries = n }
}

// WithBaseSeed fixes the seed the per-rank PRNGs derive from, making the
// sampling step reproducible. Tests use this to force pivot degeneracy
// deterministically.
func WithBaseSeed(seed uint64) Option {
	return func(c *config) { c.baseSeed = seed }
}

// WithQ1Policy selects how q = 1.0 is resolved. See Q1Policy.
func WithQ1Policy(p Q1Policy) Option {
	return func(c *config) { c.q1Policy = p }
}

// WithStats populates s with diagnostics about the call once Quantile
// returns successfully.
func WithStats(s *Stats) Option {
	return func(c *config) { c.stats = s }
}
