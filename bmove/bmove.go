/*
Package bmove implements BMove (§4.2): a sampled cumulative-rank table
layered over a borrowed move.Table, giving rank-at-arbitrary-position
in O(K) scan after an O(log r) run lookup, plus FMD-style bidirectional
extension and SMEM search built on top of it. The sampling scheme
mirrors rsa_bitvector.go's chunk/sub-chunk rank table, generalized from
"bits in a bitvector" to "characters in a run sequence".
*/
package bmove

import (
	"log"

	"github.com/polytools/rlfm/alphabet"
	"github.com/polytools/rlfm/move"
)

// complementOrder is alphabet.Complement applied to 0..5: {0,4,3,2,1,5}.
// Extend must process characters in this order so that the
// reconstructed opposite-coordinate offsets stack correctly for a
// both-strand (symmetric) BWT, per §4.2.
var complementOrder = [alphabet.Size]uint8{0, 4, 3, 2, 1, 5}

// DefaultStride is the recommended sample stride K from §4.2.
const DefaultStride = 64

// Config carries BMove's construction-time knobs.
type Config struct {
	// Stride is K, the sampled cumulative-rank stride. 0 selects
	// DefaultStride.
	Stride int
	Logger *log.Logger
}

func (cfg Config) stride() int {
	if cfg.Stride <= 0 {
		return DefaultStride
	}
	return cfg.Stride
}

// BMove borrows a move.Table and adds the sampled cumulative rank
// table needed for rank1a/rank2a/extend/SMEM.
type BMove struct {
	table   *move.Table
	stride  int
	samples [][alphabet.Size]int64
	totals  [alphabet.Size]int64
}

// Build constructs a BMove over table. table must outlive the
// returned BMove; BMove never copies or mutates it.
func Build(table *move.Table, cfg Config) *BMove {
	stride := cfg.stride()
	r := table.NumRuns()

	bm := &BMove{table: table, stride: stride}
	var cum [alphabet.Size]int64
	for i := 0; i < r; i++ {
		if i%stride == 0 {
			bm.samples = append(bm.samples, cum)
		}
		cum[table.RunChar(i)] += table.RunLen(i)
	}
	bm.totals = cum
	return bm
}

// Table returns the borrowed move table.
func (bm *BMove) Table() *move.Table { return bm.table }

// Rank1A returns the BWT character at pos and ok[c] = count of c in
// BWT[0, pos) for every c, per the boundary rules of §4.2: pos <= 0
// yields all zeros, pos >= n yields the grand totals.
func (bm *BMove) Rank1A(pos int64) (uint8, [alphabet.Size]int64) {
	n := bm.table.Len()
	if pos <= 0 {
		return bm.table.RunChar(0), [alphabet.Size]int64{}
	}
	if pos >= n {
		return 0, bm.totals
	}

	run := bm.table.RunContaining(pos)
	sampleIdx := run / bm.stride
	ok := bm.samples[sampleIdx]
	for j := sampleIdx * bm.stride; j < run; j++ {
		ok[bm.table.RunChar(j)] += bm.table.RunLen(j)
	}
	c := bm.table.RunChar(run)
	ok[c] += pos - bm.table.RunStart(run)
	return c, ok
}

// Rank2A computes two independent Rank1A rank vectors at k and l.
func (bm *BMove) Rank2A(k, l int64) (ok, ol [alphabet.Size]int64) {
	_, ok = bm.Rank1A(k)
	_, ol = bm.Rank1A(l)
	return
}

// Interval is a bidirectional BWT interval: X[0] is the forward-strand
// SA-interval start, X[1] is the reverse-strand SA-interval start, and
// Size is the shared interval length.
type Interval struct {
	X    [2]int64
	Size int64
}

// WholeInterval returns the seed interval covering the entire indexed
// text before any extension.
func (bm *BMove) WholeInterval() Interval {
	return Interval{X: [2]int64{0, 0}, Size: bm.table.Len()}
}

// Extend performs one FMD-style bidirectional extension step: given
// interval ik, it returns the six child intervals. With isBack, out[c]
// is the interval of c prepended to the pattern; without it, out[c] is
// the interval of alphabet.Complement(c) appended to the pattern.
// The opposite coordinate is reconstructed by the standard FMD
// recurrence, processing characters in complementOrder so the six
// outputs tile ik's span on the un-ranked coordinate exactly.
func (bm *BMove) Extend(ik Interval, isBack bool) [alphabet.Size]Interval {
	o := 1
	if isBack {
		o = 0
	}
	lo := ik.X[o]
	hi := ik.X[o] + ik.Size
	rankLo, rankHi := bm.Rank2A(lo, hi)

	acc := bm.table.Acc()
	var out [alphabet.Size]Interval
	opp := 1 - o
	accOffset := ik.X[opp]
	for _, c := range complementOrder {
		out[c].X[o] = acc[c] + rankLo[c]
		out[c].Size = rankHi[c] - rankLo[c]
		out[c].X[opp] = accOffset
		accOffset += out[c].Size
	}
	return out
}
