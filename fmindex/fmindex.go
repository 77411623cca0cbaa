/*
Package fmindex declares the FM-index collaborator contract (§6):
every higher layer (move, bmove, lcpindex, srindex) borrows one of
these by reference and never constructs a BWT itself. Producing the
BWT, compressing it, and answering rank queries efficiently at scale
are all out of scope here; this package only pins down the interface
and ships an in-memory reference implementation for tests, adapted
from bwt.go/wavelet.go/rsa_bitvector.go's rank machinery.
*/
package fmindex

import "github.com/polytools/rlfm/alphabet"

// RunIterator produces a lazy finite sequence of (char, run_length)
// pairs covering the BWT in order. It may emit physically adjacent
// runs of the same character; callers merge those.
type RunIterator interface {
	// Next returns the next run, or ok=false once the iterator is
	// exhausted.
	Next() (c uint8, length int64, ok bool)
}

// Index is the FM-index collaborator contract of §6. Implementations
// must be safe for concurrent read-only use; there is no mutation
// after construction.
type Index interface {
	// Acc returns the cumulative character count table, acc[0]=0,
	// acc[6]=n.
	Acc() alphabet.Acc

	// Rank1A returns the BWT character at pos and ok[c] = count of c
	// in BWT[0..pos) for every c.
	Rank1A(pos int64) (charAtPos uint8, ok [alphabet.Size]int64)

	// Rank2A computes two Rank1A-style rank vectors at k and l in one
	// call, amortizing any shared traversal.
	Rank2A(k, l int64) (ok, ol [alphabet.Size]int64)

	// Extend1 performs a one-sided backward extension of the interval
	// [lo, hi) by character c, returning the new interval size. Used
	// by tests to cross-check bmove/move against a reference
	// extension.
	Extend1(lo, hi *int64, c uint8) int64

	// RunIter returns a fresh iterator over the BWT's runs, covering
	// [0, n) in order.
	RunIter() RunIterator

	// IsSymmetric reports whether both strands of the text are
	// present (required for bmove.Extend/SMEM to be meaningful).
	IsSymmetric() bool

	// Len returns n, the BWT length.
	Len() int64
}
