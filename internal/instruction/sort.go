package instruction

import "sort"

// SortResponse applies the canonical sort: Debug messages keep their
// original relative order and form a prefix block; Normal messages follow,
// sorted by upper-case lexicographic key. The same rule is applied to both
// the expected and received sides so row order never causes a spurious
// mismatch.
func SortResponse(r Response) Response {
	debug := r.DebugOnly()
	normal := r.NormalOnly()
	sorted := make([]ResponseMessage, len(normal))
	copy(sorted, normal)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].upperKey() < sorted[j].upperKey()
	})
	out := make([]ResponseMessage, 0, len(debug)+len(sorted))
	out = append(out, debug...)
	out = append(out, sorted...)
	return Response{Messages: out}
}
