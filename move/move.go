/*
Package move implements the r-indexed move structure (§4.1): six
parallel arrays keyed by run index give O(r)-space LF-mapping,
constant-time (bounded by split depth) fast-forward, and the
backward-search primitives every higher layer (bmove, lcpindex,
srindex) is built from. The struct-of-arrays layout mirrors bwt.go's
firstColumnSkipList, generalized from "one entry per distinct
character" to "one entry per BWT run" so it scales to runs instead of
alphabet size.
*/
package move

import (
	"log"
	"math"

	"github.com/pkg/errors"

	"github.com/polytools/rlfm/alphabet"
	"github.com/polytools/rlfm/fmindex"
	"github.com/polytools/rlfm/internal/bsearch"
)

// Sentinel errors from the §7 taxonomy that this package can raise.
var (
	ErrEmptyIndex = errors.New("move: FM-index is empty")
	ErrInvalidChar = errors.New("move: pattern contains a symbol outside the alphabet")
)

// distInfinity marks a character with no occurrence anywhere in the
// BWT during precomputeDist's two sweeps; such entries collapse to 0
// (the character is never queried via reposition) once both sweeps
// complete.
const distInfinity = math.MaxInt16

// Config carries the construction-time knobs spec.md §9 asks to be
// threaded explicitly rather than read from process-wide state: the
// optional split depth and a logging collaborator.
type Config struct {
	// SplitDepth is d in split(d). 0 (the default) means "do not
	// split": runs may be arbitrarily long and fast-forward is
	// unbounded.
	SplitDepth int
	// Logger receives build-time diagnostics. A nil Logger disables
	// logging; Table never changes behavior based on what is logged.
	Logger *log.Logger
}

func (cfg Config) logger() *log.Logger {
	if cfg.Logger != nil {
		return cfg.Logger
	}
	return log.New(discard{}, "", 0)
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// Table is the move structure: r parallel arrays plus the borrowed
// alphabet accumulator table. It never owns the FM-index it was built
// from; queries only need acc, not the backend.
type Table struct {
	acc alphabet.Acc
	n   int64

	p    []int64 // p[i]: BWT position where run i begins
	pi   []int64 // pi[i]: LF image of p[i]
	xi   []int32 // xi[i]: run index containing pi[i]
	ln   []int32 // ln[i]: length of run i ("len" is a predeclared identifier)
	c    []uint8 // c[i]: BWT character of run i
	dist [][alphabet.Size]int16

	splitDepth int

	// cr is the per-run cumulative-rank prefix-sum table used by
	// Count; built lazily on first use since not every caller needs
	// counting.
	cr [][alphabet.Size]int64
}

// NumRuns returns r, the number of move-table rows.
func (t *Table) NumRuns() int { return len(t.p) }

// Len returns n, the BWT length.
func (t *Table) Len() int64 { return t.n }

// Acc returns the borrowed accumulator table.
func (t *Table) Acc() alphabet.Acc { return t.acc }

// SplitDepth returns the split depth the table was built or split at
// (0 if never split).
func (t *Table) SplitDepth() int { return t.splitDepth }

// RunStart returns p[i].
func (t *Table) RunStart(i int) int64 { return t.p[i] }

// RunChar returns c[i].
func (t *Table) RunChar(i int) uint8 { return t.c[i] }

// RunLen returns len[i].
func (t *Table) RunLen(i int) int64 { return int64(t.ln[i]) }

// RunContaining returns the index of the run covering BWT position
// pos, via binary search on p[].
func (t *Table) RunContaining(pos int64) int {
	return bsearch.RunContaining(t.p, pos)
}

// RunPi returns pi[i], the LF image of p[i].
func (t *Table) RunPi(i int) int64 { return t.pi[i] }

// RunXi returns xi[i], the run index containing pi[i].
func (t *Table) RunXi(i int) int { return int(t.xi[i]) }

// Build consumes the FM-index's run iterator and constructs a move
// table over its runs. Physically adjacent runs of equal character
// (iterator-block boundaries may split a logical run) are merged
// before being pushed.
func Build(idx fmindex.Index, cfg Config) (*Table, error) {
	logger := cfg.logger()
	n := idx.Len()
	if n == 0 {
		return nil, ErrEmptyIndex
	}

	t := &Table{acc: idx.Acc(), n: n}

	var cnt [alphabet.Size]int64
	it := idx.RunIter()
	var curC uint8
	var curStart, curLen int64
	haveRun := false
	pos := int64(0)

	push := func(c uint8, start, length int64) {
		t.p = append(t.p, start)
		t.c = append(t.c, c)
		t.ln = append(t.ln, int32(length))
		t.pi = append(t.pi, t.acc[c]+cnt[c])
		cnt[c] += length
	}

	for {
		c, length, ok := it.Next()
		if !ok {
			break
		}
		if length <= 0 {
			continue
		}
		if haveRun && c == curC {
			curLen += length
		} else {
			if haveRun {
				push(curC, curStart, curLen)
			}
			curC, curStart, curLen = c, pos, length
			haveRun = true
		}
		pos += length
	}
	if haveRun {
		push(curC, curStart, curLen)
	}
	if pos != n {
		return nil, errors.Errorf("move: run iterator covered %d positions, want %d", pos, n)
	}

	t.computeXi()
	t.dist = make([][alphabet.Size]int16, len(t.p))

	if cfg.SplitDepth > 1 {
		t.split(cfg.SplitDepth)
	}
	logger.Printf("move: built %d runs over n=%d (split depth %d)", len(t.p), n, cfg.SplitDepth)
	return t, nil
}

// computeXi derives xi[i] for every run by binary search of pi[i]
// against p[].
func (t *Table) computeXi() {
	t.xi = make([]int32, len(t.p))
	for i, target := range t.pi {
		t.xi[i] = int32(bsearch.RunContaining(t.p, target))
	}
}

// maxLen computes the per-run length ceiling for split(d). spec.md's
// design notes leave the exact formula open, requiring only that it
// is >= 1 and monotone in d; n^((d-1)/d) is the shape named by the
// source, computed directly via math.Pow rather than the source's
// hand-rolled log2 approximation (see DESIGN.md).
func maxLen(n int64, d int) int64 {
	if d <= 1 {
		return n
	}
	exp := float64(d-1) / float64(d)
	v := int64(math.Ceil(math.Pow(float64(n), exp)))
	if v < 1 {
		v = 1
	}
	return v
}

// Split splits every run longer than max_len(n, d) into ceil(len /
// max_len) sub-runs of length base or base+1, preserving p/pi
// semantics and invalidating any previously computed dist/cr tables.
func (t *Table) Split(d int) {
	if d <= 1 {
		return
	}
	t.split(d)
}

func (t *Table) split(d int) {
	ml := maxLen(t.n, d)

	var np []int64
	var npi []int64
	var nln []int32
	var nc []uint8

	var cnt [alphabet.Size]int64
	_ = cnt // running counts are already embedded in t.pi; split only subdivides lengths, it does not recompute rank

	for i := range t.p {
		start := t.p[i]
		piStart := t.pi[i]
		length := int64(t.ln[i])
		c := t.c[i]

		nSub := (length + ml - 1) / ml
		if nSub < 1 {
			nSub = 1
		}
		base := length / nSub
		extra := length - base*nSub

		for s := int64(0); s < nSub; s++ {
			subLen := base
			if s < extra {
				subLen++
			}
			np = append(np, start)
			npi = append(npi, piStart)
			nln = append(nln, int32(subLen))
			nc = append(nc, c)
			start += subLen
			piStart += subLen
		}
	}

	t.p, t.pi, t.ln, t.c = np, npi, nln, nc
	t.splitDepth = d
	t.computeXi()
	t.dist = make([][alphabet.Size]int16, len(t.p))
	t.cr = nil
}

// PrecomputeDist fills dist[i][c] for every run/character pair via
// two sweeps: a left-to-right pass records the nearest run of c at or
// before i; a right-to-left pass fills in (or overrides, when strictly
// closer) the nearest run of c at or after i. Ties favor the backward
// value, matching the left-to-right pass running first.
func (t *Table) PrecomputeDist() {
	r := len(t.p)
	dist := make([][alphabet.Size]int16, r)

	var lastSeen [alphabet.Size]int
	for c := 0; c < alphabet.Size; c++ {
		lastSeen[c] = -1
	}
	for i := 0; i < r; i++ {
		lastSeen[t.c[i]] = i
		for c := 0; c < alphabet.Size; c++ {
			if lastSeen[c] >= 0 {
				dist[i][c] = int16(lastSeen[c] - i)
			} else {
				dist[i][c] = distInfinity
			}
		}
	}

	for c := 0; c < alphabet.Size; c++ {
		lastSeen[c] = -1
	}
	for i := r - 1; i >= 0; i-- {
		for c := 0; c < alphabet.Size; c++ {
			if lastSeen[c] < 0 {
				continue
			}
			futureDist := int16(lastSeen[c] - i)
			cur := dist[i][c]
			if cur == distInfinity {
				dist[i][c] = futureDist
			} else if futureDist < -cur {
				dist[i][c] = futureDist
			}
		}
		lastSeen[t.c[i]] = i
	}

	for i := 0; i < r; i++ {
		for c := 0; c < alphabet.Size; c++ {
			if dist[i][c] == distInfinity {
				dist[i][c] = 0
			}
		}
	}
	t.dist = dist
}

// LF computes the LF-mapping image of pos, whose containing run index
// must be *runIdx on entry (p[*runIdx] <= pos < p[*runIdx]+len). It
// updates *runIdx to the run containing the image before returning,
// fast-forwarding/backing-up from xi[*runIdx] by at most a handful of
// steps bounded by the split depth.
func (t *Table) LF(pos int64, runIdx *int) int64 {
	i := *runIdx
	lf := t.pi[i] + (pos - t.p[i])

	dest := int(t.xi[i])
	for dest+1 < len(t.p) && t.p[dest+1] <= lf {
		dest++
	}
	for dest > 0 && t.p[dest] > lf {
		dest--
	}
	*runIdx = dest
	return lf
}

// Reposition returns the index of the nearest run with character c,
// relative to runIdx (0 if c[runIdx] already equals c).
func (t *Table) Reposition(runIdx int, c uint8) int {
	return runIdx + int(t.dist[runIdx][c])
}

// Step is the single backward-search primitive: if the run at *pos
// does not already hold character c, reposition to the nearest run
// that does and snap pos to its start; then perform LF.
func (t *Table) Step(pos *int64, runIdx *int, c uint8) int64 {
	if t.c[*runIdx] != c {
		*runIdx = t.Reposition(*runIdx, c)
		*pos = t.p[*runIdx]
	}
	lf := t.LF(*pos, runIdx)
	*pos = lf
	return lf
}

// buildCR lazily constructs the per-run cumulative rank table used by
// Count: cr[i][c] = count of c in BWT[0 : p[i]).
func (t *Table) buildCR() {
	if t.cr != nil {
		return
	}
	r := len(t.p)
	cr := make([][alphabet.Size]int64, r+1)
	for i := 0; i < r; i++ {
		cr[i+1] = cr[i]
		cr[i+1][t.c[i]] += int64(t.ln[i])
	}
	t.cr = cr
}

// rankAt returns the rank of character c up to (not including) BWT
// position pos, using the run containing pos.
func (t *Table) rankAt(pos int64, c uint8) int64 {
	if pos <= 0 {
		return 0
	}
	if pos >= t.n {
		return t.cr[len(t.p)][c]
	}
	run := bsearch.RunContaining(t.p, pos)
	rank := t.cr[run][c]
	if t.c[run] == c {
		rank += pos - t.p[run]
	}
	return rank
}

// Count performs backward search for pattern (a slice of nt6 codes)
// and returns the number of occurrences in the indexed text. Returns
// (0, ErrInvalidChar) if any symbol falls outside [0, 6).
func (t *Table) Count(pattern []uint8) (int64, error) {
	t.buildCR()
	lo, hi := int64(0), t.n
	for i := len(pattern) - 1; i >= 0; i-- {
		c := pattern[i]
		if !alphabet.Valid(c) {
			return 0, ErrInvalidChar
		}
		if lo >= hi {
			return 0, nil
		}
		lo = t.acc[c] + t.rankAt(lo, c)
		hi = t.acc[c] + t.rankAt(hi, c)
	}
	if hi <= lo {
		return 0, nil
	}
	return hi - lo, nil
}
