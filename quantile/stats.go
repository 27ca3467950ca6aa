package quantile

// Stats reports per-call diagnostics about how Quantile reached its
// answer. Populate one via WithStats to inspect recursion depth and
// pivot-retry behavior in tests without instrumenting the algorithm
// itself.
type Stats struct {
	// Levels is the number of sampling+partitioning rounds executed
	// before the small-path cutover (or before the duplicate tie-break
	// shortcut returned the upper pivot).
	Levels int
	// FinalN is the global size at the point the Local Selector (or a
	// shortcut) produced the answer.
	FinalN int64
	// PivotRetries is the total number of degenerate-pivot redraws
	// consumed across every level.
	PivotRetries int
	// FellBackToLocal records whether pivot degeneracy exhausted
	// MaxPivotRetries and forced the unconditional Local Selector
	// fallback (spec kind 3), as opposed to a Local Selector dispatch
	// that was simply reached because N had already dropped below
	// Threshold.
	FellBackToLocal bool
}
