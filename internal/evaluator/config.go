package evaluator

// Limits bounds recursion depth and per-loop iteration count, the
// resource model spec.md §5 "CONCURRENCY & RESOURCE MODEL" requires
// every interpretation to enforce. Defaults match SPEC_FULL.md §10.3's
// plang.yaml schema.
type Limits struct {
	MaxRecursion  int
	MaxIterations int
}

// DefaultLimits are used when the loaded plang.yaml supplies none
// (SPEC_FULL.md §10.3).
func DefaultLimits() Limits {
	return Limits{MaxRecursion: 10000, MaxIterations: 25000}
}
