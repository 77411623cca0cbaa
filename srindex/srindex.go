/*
Package srindex implements SrIndex (§4.4): the subsampled r-index that
answers locate queries on top of a borrowed move.Table. Construction
walks each sequence's suffixes backward via move-structure LF (the
same rank-driven style move.Table itself uses), the way a plain
suffix-array-free BWT index discovers SA values without ever storing
one in full. It keeps an exact toehold at every run's last row, the r
piecewise-linear φ breakpoints, a stride-s subsample of SA values with
an O(1) presence bitvector, and the multi-string correction
(cum_len/text_order_sid) needed to resolve a global SA value back to
(sequence, offset).
*/
package srindex

import (
	"context"
	"log"
	"sort"

	"github.com/pkg/errors"

	"github.com/polytools/rlfm/alphabet"
	"github.com/polytools/rlfm/fmindex"
	"github.com/polytools/rlfm/internal/bsearch"
	"github.com/polytools/rlfm/internal/parallel"
	"github.com/polytools/rlfm/move"
)

// Sentinel errors from the §7 taxonomy.
var (
	ErrEmptyIndex = errors.New("srindex: FM-index is empty")
	ErrIncomplete = errors.New("srindex: phi chain broke before reaching the interval start")
)

// DefaultStride is the recommended subsampling stride s from §4.4.
const DefaultStride = 16

// Config carries SrIndex's construction-time knobs.
type Config struct {
	// Stride is s, the SA subsampling stride. 0 selects DefaultStride.
	// s <= 1 means the subsampled arrays alias the run-boundary arrays.
	Stride int
	Logger *log.Logger
}

func (cfg Config) stride() int {
	if cfg.Stride <= 0 {
		return DefaultStride
	}
	return cfg.Stride
}

func (cfg Config) logger() *log.Logger {
	if cfg.Logger != nil {
		return cfg.Logger
	}
	return log.New(discard{}, "", 0)
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// Position is an SA value resolved to (sequence, offset) by
// multi_locate's binary search on cum_len.
type Position struct {
	Seq    int
	Offset int64
}

// SrIndex borrows a move.Table and adds the φ/toehold/subsample/
// multi-string tables needed for locate.
type SrIndex struct {
	table   *move.Table
	stride  int
	numSeqs int
	n       int64

	phiSA []int64 // SA values at run starts, sorted ascending (φ domain)
	phiDA []int64 // phi_da[i] = φ(phiSA[i]); φ(v) = phiDA[i] + (v - phiSA[i]) for v in [phiSA[i], phiSA[i+1))

	runPos []int64 // BWT position of the LAST row of each run (bwt_end), ascending
	runSA  []int64 // parallel SA values at runPos: the toeholds

	subPos []int64 // subsampled BWT positions, ascending (aliases runPos when stride<=1)
	subSA  []int64 // parallel SA values (aliases runSA when stride<=1)
	subBV  *bitset // O(1) presence test for subPos

	cumLen       []int64 // cum_len[0..numSeqs]: cum_len[k] = sum of dist_j for j<k, cum_len[numSeqs]=n
	textOrderSid []int64 // text_order_sid[0..numSeqs): text-order rank -> sequence id
}

// Build derives every SrIndex table from idx and its move structure,
// following the five construction phases of §4.4.
func Build(ctx context.Context, idx fmindex.Index, table *move.Table, cfg Config) (*SrIndex, error) {
	n := idx.Len()
	if n == 0 {
		return nil, ErrEmptyIndex
	}
	acc := idx.Acc()
	numSeqs := int(acc[1] - acc[0])
	if numSeqs == 0 {
		return nil, ErrEmptyIndex
	}
	stride := cfg.stride()
	r := table.NumRuns()

	// Phase 1: run-boundary scan.
	bwtStart := make([]int64, r)
	bwtEnd := make([]int64, r)
	for i := 0; i < r; i++ {
		bwtStart[i] = table.RunStart(i)
		bwtEnd[i] = bwtStart[i] + table.RunLen(i) - 1
	}

	startRow := make([]int64, numSeqs)
	for k := 0; k < numSeqs; k++ {
		startRow[k] = acc[alphabet.Sentinel] + int64(k)
	}

	// Phase 2, pass A: dist_k, the length of sentinel k's LF cycle
	// (sequence length + 1, the sentinel itself).
	dist := make([]int64, numSeqs)
	if err := parallel.For(ctx, numSeqs, func(_ context.Context, k int) error {
		runIdx := table.RunContaining(startRow[k])
		pos := startRow[k]
		var steps int64
		for {
			next := table.LF(pos, &runIdx)
			steps++
			if next == startRow[k] {
				break
			}
			pos = next
		}
		dist[k] = steps
		return nil
	}); err != nil {
		return nil, err
	}

	// Phase 3: multi-string correction. cum_len[k] is the running sum
	// of prior dist_j, so cum_len[numSeqs] == n exactly (every BWT
	// position belongs to exactly one sentinel's cycle).
	cumLen := make([]int64, numSeqs+1)
	var running int64
	for k := 0; k < numSeqs; k++ {
		cumLen[k] = running
		running += dist[k]
	}
	cumLen[numSeqs] = n
	textOrderSid := make([]int64, numSeqs)
	for k := range textOrderSid {
		textOrderSid[k] = int64(k)
	}

	// Phase 2, pass B: re-walk each sentinel's cycle, computing the
	// corrected (global) SA value at every visited position and
	// collecting the stride-s subsample as we go. saAt is a transient
	// O(n) build buffer: the stored structure stays O(r + n/stride),
	// since only runPos/runSA/phiSA/phiDA/subPos/subSA survive Build.
	saAt := make([]int64, n)
	type posVal struct{ pos, val int64 }
	subBuffers := make([][]posVal, numSeqs)
	if err := parallel.For(ctx, numSeqs, func(_ context.Context, k int) error {
		runIdx := table.RunContaining(startRow[k])
		pos := startRow[k]
		localSA := dist[k] - 1
		global := cumLen[k] + localSA
		saAt[pos] = global
		var subs []posVal
		if stride > 1 && localSA%int64(stride) == 0 {
			subs = append(subs, posVal{pos, global})
		}
		cur := pos
		for step := int64(1); step < dist[k]; step++ {
			next := table.LF(cur, &runIdx)
			localSA = dist[k] - 1 - step
			global = cumLen[k] + localSA
			saAt[next] = global
			if stride > 1 && localSA%int64(stride) == 0 {
				subs = append(subs, posVal{next, global})
			}
			cur = next
		}
		subBuffers[k] = subs
		return nil
	}); err != nil {
		return nil, err
	}

	sr := &SrIndex{
		table: table, stride: stride, numSeqs: numSeqs, n: n,
		cumLen: cumLen, textOrderSid: textOrderSid,
	}

	// Toeholds: run_pos is bwt_end (already ascending, runs are stored
	// in BWT-position order), run_sa is the parallel SA value.
	sr.runPos = make([]int64, r)
	sr.runSA = make([]int64, r)
	for i := 0; i < r; i++ {
		sr.runPos[i] = bwtEnd[i]
		sr.runSA[i] = saAt[bwtEnd[i]]
	}

	// Phase 5: φ. For each run-start position, pair its SA with the SA
	// of the preceding BWT row (wrapping to n-1 if the run starts at
	// 0), then sort by SA value to get the piecewise-linear table.
	phiSARaw := make([]int64, r)
	phiDARaw := make([]int64, r)
	for i := 0; i < r; i++ {
		p := bwtStart[i]
		prevRow := p - 1
		if prevRow < 0 {
			prevRow = n - 1
		}
		phiSARaw[i] = saAt[p]
		phiDARaw[i] = saAt[prevRow]
	}
	order := make([]int, r)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return phiSARaw[order[a]] < phiSARaw[order[b]] })
	sr.phiSA = make([]int64, r)
	sr.phiDA = make([]int64, r)
	for i, j := range order {
		sr.phiSA[i] = phiSARaw[j]
		sr.phiDA[i] = phiDARaw[j]
	}

	// Subsampled arrays: alias the run-boundary arrays when stride<=1,
	// otherwise merge and sort the per-sentinel subsample buffers by
	// BWT position.
	if stride <= 1 {
		sr.subPos = sr.runPos
		sr.subSA = sr.runSA
	} else {
		var pos, vals []int64
		for _, buf := range subBuffers {
			for _, pv := range buf {
				pos = append(pos, pv.pos)
				vals = append(vals, pv.val)
			}
		}
		idxOrder := make([]int, len(pos))
		for i := range idxOrder {
			idxOrder[i] = i
		}
		sort.Slice(idxOrder, func(a, b int) bool { return pos[idxOrder[a]] < pos[idxOrder[b]] })
		sr.subPos = make([]int64, len(pos))
		sr.subSA = make([]int64, len(pos))
		for i, j := range idxOrder {
			sr.subPos[i] = pos[j]
			sr.subSA[i] = vals[j]
		}
	}

	sr.subBV = newBitset(n)
	for _, p := range sr.subPos {
		sr.subBV.set(p)
	}

	return sr, nil
}

// selectChar finds the BWT position of the k-th (0-indexed) occurrence
// of character c via binary search on rank. Kept local to avoid a
// circular dependency on lcpindex, which has the same helper.
func selectChar(idx fmindex.Index, c uint8, k int64) int64 {
	n := idx.Len()
	lo, hi := int64(0), n
	for lo < hi {
		mid := (lo + hi) / 2
		_, ok := idx.Rank1A(mid + 1)
		if ok[c] >= k+1 {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}

// Table returns the borrowed move table.
func (sr *SrIndex) Table() *move.Table { return sr.table }

// Stride returns the configured subsampling stride s.
func (sr *SrIndex) Stride() int { return sr.stride }

// Toehold binary-searches run_pos for an exact match of bwtPos,
// returning the SA value stored there, or -1 if bwtPos is not a run's
// last row.
func (sr *SrIndex) Toehold(bwtPos int64) int64 {
	i, ok := bsearch.Exact(sr.runPos, bwtPos)
	if !ok {
		return -1
	}
	return sr.runSA[i]
}

// Phi evaluates φ(v) = SA[ISA[v]-1], the predecessor-in-text-order
// function, via the piecewise-linear run-start breakpoint table: v is
// looked up against the largest phiSA[k] <= v, and
// φ(v) = phiDA[k] + (v - phiSA[k]). Returns -1 if v < phiSA[0].
func (sr *SrIndex) Phi(v int64) int64 {
	i := bsearch.LastLE(sr.phiSA, v)
	if i < 0 {
		return -1
	}
	return sr.phiDA[i] + (v - sr.phiSA[i])
}

// LocateOne returns the text position (SA value) of the suffix at BWT
// row bwtPos. It walks LF forward, testing sub_bv membership at every
// step; on a hit, the sampled SA plus the accumulated step count gives
// the answer. If the walk crosses a sentinel character before any hit,
// the crossing itself pins down the answer via cum_len, since the row
// the walk just left was exactly the first symbol of the sequence
// whose sentinel row LF lands on. Aborts after stride+n steps, a bound
// that should never be reached.
func (sr *SrIndex) LocateOne(bwtPos int64) int64 {
	pos := bwtPos
	runIdx := sr.table.RunContaining(pos)
	limit := int64(sr.stride) + sr.n
	for steps := int64(0); steps < limit; {
		if sr.subBV.test(pos) {
			if i, ok := bsearch.Exact(sr.subPos, pos); ok {
				return sr.subSA[i] + steps
			}
		}
		c := sr.table.RunChar(runIdx)
		next := sr.table.LF(pos, &runIdx)
		steps++
		if c == alphabet.Sentinel {
			return sr.cumLen[next] + (steps - 1)
		}
		pos = next
	}
	return -1
}

// LocateAll resolves the SA values for BWT rows [lo, hi), capped to at
// most maxPos results (maxPos<=0 means uncapped). It resolves a
// toehold (falling back to LocateOne) at the last row of the interval,
// then walks backward through the interval applying φ: out[i] =
// φ(out[i+1]). If φ ever returns -1 before reaching the start of the
// interval, it fails with ErrIncomplete.
func (sr *SrIndex) LocateAll(lo, hi, maxPos int64) ([]int64, error) {
	if hi <= lo {
		return nil, nil
	}
	n := hi - lo
	if maxPos > 0 && maxPos < n {
		n = maxPos
	}
	out := make([]int64, n)
	toeholdSA := sr.Toehold(hi - 1)
	if toeholdSA < 0 {
		toeholdSA = sr.LocateOne(hi - 1)
	}
	out[n-1] = toeholdSA
	for i := n - 2; i >= 0; i-- {
		v := sr.Phi(out[i+1])
		if v < 0 {
			return nil, ErrIncomplete
		}
		out[i] = v
	}
	return out, nil
}

// seqOffset resolves a global SA value to (sequence, offset) via binary
// search on cum_len, the way multi_locate's spec describes.
func (sr *SrIndex) seqOffset(sa int64) Position {
	i := bsearch.LastLE(sr.cumLen[:sr.numSeqs], sa)
	if i < 0 {
		i = 0
	}
	return Position{Seq: int(sr.textOrderSid[i]), Offset: sa - sr.cumLen[i]}
}

// MultiLocate resolves every row across several BWT intervals (e.g.
// the several hits of an SMEM search) to (sequence, offset) pairs in
// one call, mapping each LocateAll result through cum_len.
func (sr *SrIndex) MultiLocate(intervals [][2]int64) ([][]Position, error) {
	out := make([][]Position, len(intervals))
	for i, iv := range intervals {
		sas, err := sr.LocateAll(iv[0], iv[1], 0)
		if err != nil {
			return nil, err
		}
		positions := make([]Position, len(sas))
		for j, sa := range sas {
			positions[j] = sr.seqOffset(sa)
		}
		out[i] = positions
	}
	return out, nil
}
