/*
Package bsearch provides generic sorted-array binary search helpers
shared by move, bmove, lcpindex and srindex: every one of those
components resolves a position into "the run/sample/breakpoint that
contains it" by binary searching a sorted []int64-like slice, the same
log-r search bwt.go's lookupSkipByOffset does linearly for the teacher's
small skip list.
*/
package bsearch

import "golang.org/x/exp/constraints"

// LastLE returns the largest index i such that xs[i] <= target, or -1
// if no such index exists. xs must be sorted ascending. This is the
// primitive behind "which run contains BWT position p" (p[] search),
// "which run starts before SA value v" (phi_sa search), and similar
// run/breakpoint lookups across the package.
func LastLE[T constraints.Integer](xs []T, target T) int {
	lo, hi := 0, len(xs)
	for lo < hi {
		mid := (lo + hi) / 2
		if xs[mid] <= target {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo - 1
}

// FirstGE returns the smallest index i such that xs[i] >= target, or
// len(xs) if no such index exists. xs must be sorted ascending.
func FirstGE[T constraints.Integer](xs []T, target T) int {
	lo, hi := 0, len(xs)
	for lo < hi {
		mid := (lo + hi) / 2
		if xs[mid] >= target {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}

// Exact returns the index of target in the sorted slice xs, and false
// if target is not present.
func Exact[T constraints.Integer](xs []T, target T) (int, bool) {
	i := FirstGE(xs, target)
	if i < len(xs) && xs[i] == target {
		return i, true
	}
	return 0, false
}

// RunContaining returns the index i such that starts[i] <= pos <
// starts[i+1] (treating a virtual starts[len(starts)] = +inf), i.e.
// the run/interval owning pos in a sorted array of run-start offsets.
// starts must be non-empty and starts[0] <= pos.
func RunContaining[T constraints.Integer](starts []T, pos T) int {
	return LastLE(starts, pos)
}
