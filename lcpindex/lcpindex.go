/*
Package lcpindex implements LcpIndex (§4.3): per-run LCP samples, the
MONI threshold/tau/within_min tables, and the exact/approximate
matching-statistics queries (MS/PML) built on top of them. Like
move.Table, it borrows its FM-index rather than owning it; ψ and LCP
are both derived purely from FM-index rank queries, the same
rank-driven style bwt.go's lfSearch uses for backward search.
*/
package lcpindex

import (
	"log"
	"math"

	"github.com/pkg/errors"

	"github.com/polytools/rlfm/alphabet"
	"github.com/polytools/rlfm/fmindex"
	"github.com/polytools/rlfm/internal/bsearch"
)

// Sentinel errors from the §7 taxonomy.
var (
	ErrEmptyIndex  = errors.New("lcpindex: FM-index is empty")
	ErrInvalidChar = errors.New("lcpindex: pattern contains a symbol outside the alphabet")
)

// InfLCP represents within_min's "+infinity" for single-character
// runs, per §3.
const InfLCP = math.MaxInt32

// Config carries LcpIndex's construction-time knobs.
type Config struct {
	Logger *log.Logger
}

// LcpIndex holds the per-run LCP sample tables over a borrowed
// FM-index. runStarts is always the unsplit run decomposition (§3:
// "LCP runs are always the unsplit decomposition"), independent of any
// split depth a sibling move.Table was built with.
type LcpIndex struct {
	idx fmindex.Index
	acc alphabet.Acc
	n   int64

	runStarts  []int64
	lcpSamples []int64
	thresholds []int64
	tau        []int64
	withinMin  []int64
}

// Build enumerates the FM-index's runs (merging physically adjacent
// runs of equal character) and derives every LCP table in one pass.
func Build(idx fmindex.Index, cfg Config) (*LcpIndex, error) {
	n := idx.Len()
	if n == 0 {
		return nil, ErrEmptyIndex
	}

	L := &LcpIndex{idx: idx, acc: idx.Acc(), n: n}

	it := idx.RunIter()
	var curC uint8
	var curStart int64
	haveRun := false
	pos := int64(0)
	for {
		c, length, ok := it.Next()
		if !ok {
			break
		}
		if length <= 0 {
			continue
		}
		if haveRun && c == curC {
			// physically adjacent iterator block of the same run
		} else {
			if haveRun {
				L.runStarts = append(L.runStarts, curStart)
			}
			curC, curStart = c, pos
			haveRun = true
		}
		pos += length
	}
	if haveRun {
		L.runStarts = append(L.runStarts, curStart)
	}

	r := len(L.runStarts)
	L.lcpSamples = make([]int64, r)
	for i := 1; i < r; i++ {
		L.lcpSamples[i] = L.lcpAt(L.runStarts[i])
	}

	L.buildThresholds()
	L.buildTauWithinMin()

	return L, nil
}

// NumRuns returns r, the number of LCP runs (the unsplit decomposition).
func (L *LcpIndex) NumRuns() int { return len(L.runStarts) }

// RunStart returns run_starts[i].
func (L *LcpIndex) RunStart(i int) int64 { return L.runStarts[i] }

// LCPSample returns lcp_samples[i].
func (L *LcpIndex) LCPSample(i int) int64 { return L.lcpSamples[i] }

// Threshold returns thresholds[i].
func (L *LcpIndex) Threshold(i int) int64 { return L.thresholds[i] }

// Tau returns tau[i].
func (L *LcpIndex) Tau(i int) int64 { return L.tau[i] }

// WithinMin returns within_min[i].
func (L *LcpIndex) WithinMin(i int) int64 { return L.withinMin[i] }

// RunIndexAt returns the LCP-run index owning BWT position pos.
func (L *LcpIndex) RunIndexAt(pos int64) int {
	return bsearch.RunContaining(L.runStarts, clampPos(pos, L.n))
}

func clampPos(p, n int64) int64 {
	if p < 0 {
		return 0
	}
	if p >= n {
		return n - 1
	}
	return p
}

// selectChar finds the BWT position of the k-th (0-indexed)
// occurrence of character c, via binary search on rank.
func (L *LcpIndex) selectChar(c uint8, k int64) int64 {
	lo, hi := int64(0), L.n
	for lo < hi {
		mid := (lo + hi) / 2
		_, ok := L.idx.Rank1A(mid + 1)
		if ok[c] >= k+1 {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}

// psi is the inverse of LF: psi(i) is the BWT position of the suffix
// SA[i]+1.
func (L *LcpIndex) psi(i int64) int64 {
	c := L.acc.CharAt(i)
	return L.selectChar(c, i-L.acc[c])
}

// lcpAt computes the LCP between the suffixes at SA[p-1] and SA[p],
// for p either a run boundary or an interior position. Two sentinels
// meeting counts as a mismatch (they terminate different sequences).
func (L *LcpIndex) lcpAt(p int64) int64 {
	if p <= 0 || p >= L.n {
		return 0
	}
	p1, p2 := p-1, p
	var lcp int64
	for {
		c1 := L.acc.CharAt(p1)
		c2 := L.acc.CharAt(p2)
		if c1 != c2 || c1 == alphabet.Sentinel {
			break
		}
		lcp++
		p1 = L.psi(p1)
		p2 = L.psi(p2)
	}
	return lcp
}

// LCPAt exposes lcpAt for callers (srindex and tests) that need an
// LCP value at an arbitrary position, not just at run boundaries.
func (L *LcpIndex) LCPAt(p int64) int64 { return L.lcpAt(p) }

func (L *LcpIndex) buildThresholds() {
	r := len(L.runStarts)
	L.thresholds = make([]int64, r)
	for i := 0; i < r; i++ {
		var right int64
		if i+1 < r {
			right = L.lcpSamples[i+1]
		}
		left := L.lcpSamples[i]
		if right < left {
			L.thresholds[i] = right
		} else {
			L.thresholds[i] = left
		}
	}
}

// buildTauWithinMin computes, per run, the MONI tau partition point
// and the within-run LCP minimum, scanning each run right-to-left and
// tracking the running minimum exactly as §4.3 describes: tau[i] is
// overwritten on every step for which the running minimum is still >=
// the run's right-hand LCP sample, so it ends up at the last (i.e.
// leftmost) step where that held.
func (L *LcpIndex) buildTauWithinMin() {
	r := len(L.runStarts)
	L.tau = make([]int64, r)
	L.withinMin = make([]int64, r)

	for i := 0; i < r; i++ {
		s := L.runStarts[i]
		var e int64
		if i+1 < r {
			e = L.runStarts[i+1]
		} else {
			e = L.n
		}
		if e-s <= 1 {
			L.tau[i] = s
			L.withinMin[i] = InfLCP
			continue
		}

		var rightLCP int64
		if i+1 < r {
			rightLCP = L.lcpSamples[i+1]
		}

		runningMin := int64(InfLCP)
		tau := s
		for j := e - 1; j >= s+1; j-- {
			v := L.lcpAt(j)
			if v < runningMin {
				runningMin = v
			}
			if runningMin >= rightLCP {
				tau = j - 1
			}
		}
		L.tau[i] = tau
		L.withinMin[i] = runningMin
	}
}
