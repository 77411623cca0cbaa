package lcpindex

import (
	"github.com/polytools/rlfm/alphabet"
	"github.com/polytools/rlfm/move"
)

// MS computes the exact matching-statistics array for pattern,
// processing it right to left per §4.3: extend backward while
// possible; on failure, shrink to the largest d admitted by the LCP
// run boundaries around the current interval and retry, repeating
// until the retry succeeds or d reaches zero (at which point the
// interval resets to the full range of pattern[i] and the match
// length becomes 1, or 0 when pattern[i] does not occur in the text).
func (L *LcpIndex) MS(pattern []uint8) ([]int64, error) {
	n := L.n
	k, l := int64(0), n
	var d int64
	ms := make([]int64, len(pattern))

	for i := len(pattern) - 1; i >= 0; i-- {
		c := pattern[i]
		if !alphabet.Valid(c) {
			return nil, ErrInvalidChar
		}

		_, rk := L.idx.Rank1A(k)
		_, rl := L.idx.Rank1A(l)
		newK := L.acc[c] + rk[c]
		newL := L.acc[c] + rl[c]

		if newL > newK {
			k, l = newK, newL
			d++
		} else {
			for {
				lcpK := L.lcpAt(k)
				lcpL := L.lcpAt(l)
				th := lcpK
				if lcpL > th {
					th = lcpL
				}
				if th < d {
					d = th
				} else {
					d--
				}

				kPos := clampPos(k, n)
				fc := L.acc.CharAt(kPos)
				loRun := L.RunIndexAt(kPos)
				for loRun > 0 && L.lcpSamples[loRun] >= d {
					loRun--
				}
				hiRun := L.RunIndexAt(clampPos(l-1, n))
				for hiRun+1 < len(L.runStarts) && L.lcpSamples[hiRun+1] >= d {
					hiRun++
				}

				k = L.runStarts[loRun]
				if hiRun+1 < len(L.runStarts) {
					l = L.runStarts[hiRun+1]
				} else {
					l = n
				}
				if k < L.acc[fc] {
					k = L.acc[fc]
				}
				if l > L.acc[fc+1] {
					l = L.acc[fc+1]
				}

				_, rk = L.idx.Rank1A(k)
				_, rl = L.idx.Rank1A(l)
				newK = L.acc[c] + rk[c]
				newL = L.acc[c] + rl[c]
				if newL > newK {
					k, l = newK, newL
					break
				}
				if d <= 0 {
					k, l = L.acc[c], L.acc[c+1]
					if l > k {
						d = 1
					} else {
						d = 0
					}
					break
				}
			}
		}
		ms[i] = d
	}
	return ms, nil
}

// PML computes the pseudo-matching-length array for pattern: like MS,
// but on a backward-extension failure it truncates to the run's
// precomputed threshold in a single step instead of exact-searching
// wider run boundaries, trading a possible undershoot of the true MS
// value for O(1) work per mismatch.
func (L *LcpIndex) PML(pattern []uint8) ([]int64, error) {
	n := L.n
	k, l := int64(0), n
	var d int64
	pml := make([]int64, len(pattern))

	for i := len(pattern) - 1; i >= 0; i-- {
		c := pattern[i]
		if !alphabet.Valid(c) {
			return nil, ErrInvalidChar
		}

		_, rk := L.idx.Rank1A(k)
		_, rl := L.idx.Rank1A(l)
		newK := L.acc[c] + rk[c]
		newL := L.acc[c] + rl[c]

		if newL > newK {
			k, l = newK, newL
			d++
		} else {
			kPos := clampPos(k, n)
			runK := L.RunIndexAt(kPos)
			th := L.thresholds[runK]
			if th < d {
				d = th
			} else {
				d--
			}

			fc := L.acc.CharAt(kPos)
			k, l = L.acc[fc], L.acc[fc+1]

			_, rk = L.idx.Rank1A(k)
			_, rl = L.idx.Rank1A(l)
			newK = L.acc[c] + rk[c]
			newL = L.acc[c] + rl[c]
			if newL > newK {
				k, l = newK, newL
			} else {
				d = 0
			}
		}
		pml[i] = d
	}
	return pml, nil
}

// MsStep advances the move+LCP combined walk used by streaming MS
// consumers (§4.3's "ms_step"): it keeps (pos, runIdx) synchronized
// with a move.Table and truncates matchLen using the MONI direction
// rule instead of recomputing an exact interval each step. Returns the
// new match length, or -1 if c is not a valid symbol or Reposition
// finds no run of c (c never occurs in the index, or mt's dist table
// was not filled by PrecomputeDist).
func (L *LcpIndex) MsStep(mt *move.Table, pos *int64, runIdx *int, matchLen int64, c uint8) int64 {
	if !alphabet.Valid(c) {
		return -1
	}

	if mt.RunChar(*runIdx) == c {
		*pos = mt.LF(*pos, runIdx)
		return matchLen + 1
	}

	oldLCPRun := L.RunIndexAt(*pos)
	newRunIdx := mt.Reposition(*runIdx, c)
	if newRunIdx < 0 || newRunIdx >= mt.NumRuns() || mt.RunChar(newRunIdx) != c {
		return -1
	}
	newPos := mt.RunStart(newRunIdx)
	newLCPRun := L.RunIndexAt(newPos)

	var threshold int64
	if newLCPRun < oldLCPRun {
		if *pos < L.tau[oldLCPRun] {
			threshold = L.lcpSamples[oldLCPRun]
		} else {
			threshold = L.withinMin[oldLCPRun]
		}
	} else {
		if *pos >= L.tau[oldLCPRun] {
			if oldLCPRun+1 < len(L.lcpSamples) {
				threshold = L.lcpSamples[oldLCPRun+1]
			}
		} else {
			threshold = L.withinMin[oldLCPRun]
		}
	}

	lo, hi := oldLCPRun, newLCPRun
	if lo > hi {
		lo, hi = hi, lo
	}
	for j := lo + 1; j < hi; j++ {
		if L.lcpSamples[j] < threshold {
			threshold = L.lcpSamples[j]
		}
	}

	if threshold < matchLen {
		matchLen = threshold
	}
	*runIdx = newRunIdx
	*pos = newPos
	*pos = mt.LF(*pos, runIdx)
	return matchLen + 1
}
