package calculator

// CanonicalPair orders two distinct user IDs so that a symmetric pair always
// maps to the same storage key: lo < hi under plain string comparison.
// Callers must never pass a == b.
func CanonicalPair(a, b string) (lo, hi string) {
	if a < b {
		return a, b
	}
	return b, a
}
